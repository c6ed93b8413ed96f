package catalog

import (
	"errors"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mash-protocol/zeroconf-go/pkg/discovery"
	"github.com/mash-protocol/zeroconf-go/pkg/log"
	"github.com/mash-protocol/zeroconf-go/pkg/subscription"
)

// recorder collects notifications per kind.
type recorder struct {
	mu    sync.Mutex
	notes []subscription.Notification
}

func (r *recorder) handle(n subscription.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recorder) all() []subscription.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]subscription.Notification(nil), r.notes...)
}

func (r *recorder) count(kind discovery.EventKind) int {
	n := 0
	for _, note := range r.all() {
		if note.Kind == kind {
			n++
		}
	}
	return n
}

// journalRecorder collects journal events.
type journalRecorder struct {
	mu     sync.Mutex
	events []log.Event
}

func (j *journalRecorder) Log(event log.Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, event)
}

func (j *journalRecorder) all() []log.Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]log.Event(nil), j.events...)
}

type reconcilerFixture struct {
	registry   *Registry
	reconciler *Reconciler
	notes      *recorder
	journal    *journalRecorder
}

func newReconcilerFixture(t *testing.T) *reconcilerFixture {
	t.Helper()
	f := &reconcilerFixture{
		registry: NewRegistry(),
		notes:    &recorder{},
		journal:  &journalRecorder{},
	}
	subs := subscription.NewManager()
	for _, kind := range discovery.AllEventKinds {
		_, err := subs.Subscribe(kind, f.notes.handle)
		require.NoError(t, err)
	}
	f.reconciler = NewReconciler(f.registry, subs, f.journal, nil, nil)
	return f
}

func named(name string) *discovery.ServiceDescriptor {
	return &discovery.ServiceDescriptor{Name: name}
}

func TestReconcilerPrinterScenario(t *testing.T) {
	f := newReconcilerFixture(t)

	assert.True(t, f.reconciler.Apply(discovery.FoundEvent(named("printer"))))
	assert.True(t, f.reconciler.Apply(discovery.ResolvedEvent(&discovery.ServiceDescriptor{
		Name:      "printer",
		Addresses: []string{"10.0.0.5"},
		TXT:       discovery.TXTRecordMap{"ver": "1"},
	})))
	assert.True(t, f.reconciler.Apply(discovery.UpdateEvent(&discovery.ServiceDescriptor{
		Name: "printer",
		TXT:  discovery.TXTRecordMap{"ver": "2"},
	})))

	got, ok := f.registry.Get("printer")
	require.True(t, ok)
	assert.Equal(t, []string{"10.0.0.5"}, got.Addresses)
	assert.Equal(t, discovery.TXTRecordMap{"ver": "2"}, got.TXT)

	notes := f.notes.all()
	require.Len(t, notes, 3)
	assert.Equal(t, discovery.EventFound, notes[0].Kind)
	assert.Equal(t, "printer", notes[0].Name)
	assert.Nil(t, notes[0].Service)
	assert.Equal(t, discovery.EventResolved, notes[1].Kind)
	require.NotNil(t, notes[1].Service)
	assert.Equal(t, []string{"10.0.0.5"}, notes[1].Service.Addresses)
	assert.Equal(t, discovery.EventUpdate, notes[2].Kind)
	require.NotNil(t, notes[2].Service)
	assert.Equal(t, []string{"10.0.0.5"}, notes[2].Service.Addresses)
	assert.Equal(t, "2", notes[2].Service.TXT["ver"])
}

func TestReconcilerPhantomUpdate(t *testing.T) {
	f := newReconcilerFixture(t)

	accepted := f.reconciler.Apply(discovery.UpdateEvent(&discovery.ServiceDescriptor{
		Name: "phantom",
		TXT:  discovery.TXTRecordMap{"x": "1"},
	}))

	assert.False(t, accepted)
	assert.Equal(t, 0, f.registry.Len())
	assert.Equal(t, 0, f.notes.count(discovery.EventUpdate))
	assert.Empty(t, f.journal.all())
}

func TestReconcilerUpdateOnUnresolvedEntryDropped(t *testing.T) {
	f := newReconcilerFixture(t)
	f.reconciler.Apply(discovery.FoundEvent(&discovery.ServiceDescriptor{
		Name: "pending",
		TXT:  discovery.TXTRecordMap{"a": "1"},
	}))

	accepted := f.reconciler.Apply(discovery.UpdateEvent(&discovery.ServiceDescriptor{
		Name: "pending",
		TXT:  discovery.TXTRecordMap{"a": "2"},
	}))

	assert.False(t, accepted)
	got, _ := f.registry.Get("pending")
	assert.Equal(t, "1", got.TXT["a"])
	assert.Equal(t, 0, f.notes.count(discovery.EventUpdate))
}

func TestReconcilerRepeatedRemoveNotifiesTwice(t *testing.T) {
	f := newReconcilerFixture(t)

	f.reconciler.Apply(discovery.FoundEvent(named("a")))
	assert.True(t, f.reconciler.Apply(discovery.RemoveEvent(named("a"))))
	assert.True(t, f.reconciler.Apply(discovery.RemoveEvent(named("a"))))

	assert.Equal(t, 0, f.registry.Len())
	assert.Equal(t, 2, f.notes.count(discovery.EventRemove))
}

func TestReconcilerUpdatesLeaveAddressesAlone(t *testing.T) {
	f := newReconcilerFixture(t)
	f.reconciler.Apply(discovery.ResolvedEvent(&discovery.ServiceDescriptor{
		Name:      "nas",
		Host:      "nas.local",
		Port:      445,
		Addresses: []string{"10.0.0.7", "fe80::7"},
	}))

	for i := range 5 {
		f.reconciler.Apply(discovery.UpdateEvent(&discovery.ServiceDescriptor{
			Name:      "nas",
			Addresses: []string{"192.168.1.1"},
			Port:      1,
			TXT:       discovery.TXTRecordMap{"rev": string(rune('a' + i))},
		}))
	}

	got, _ := f.registry.Get("nas")
	assert.Equal(t, []string{"10.0.0.7", "fe80::7"}, got.Addresses)
	assert.Equal(t, uint16(445), got.Port)
	assert.Equal(t, "nas.local", got.Host)
	assert.Equal(t, "e", got.TXT["rev"])
	assert.Equal(t, 5, f.notes.count(discovery.EventUpdate))
}

func TestReconcilerInformationalEvents(t *testing.T) {
	f := newReconcilerFixture(t)
	boom := errors.New("boom")

	assert.True(t, f.reconciler.Apply(discovery.StartEvent()))
	assert.True(t, f.reconciler.Apply(discovery.ErrorEvent(boom)))
	assert.True(t, f.reconciler.Apply(discovery.StopEvent()))

	notes := f.notes.all()
	require.Len(t, notes, 3)
	assert.Equal(t, discovery.EventStart, notes[0].Kind)
	assert.Equal(t, discovery.EventError, notes[1].Kind)
	assert.ErrorIs(t, notes[1].Err, boom)
	assert.Equal(t, discovery.EventStop, notes[2].Kind)
	assert.Equal(t, 0, f.registry.Len())
}

func TestReconcilerDropsMalformedEvents(t *testing.T) {
	tests := []struct {
		name string
		ev   discovery.Event
	}{
		{"found nil service", discovery.Event{Kind: discovery.EventFound}},
		{"found empty name", discovery.FoundEvent(named(""))},
		{"remove nil service", discovery.Event{Kind: discovery.EventRemove}},
		{"remove empty name", discovery.RemoveEvent(named(""))},
		{"resolved empty name", discovery.ResolvedEvent(&discovery.ServiceDescriptor{Addresses: []string{"10.0.0.1"}})},
		{"update nil service", discovery.Event{Kind: discovery.EventUpdate}},
		{"update empty name", discovery.UpdateEvent(named(""))},
		{"zero kind", discovery.Event{}},
		{"unknown kind", discovery.Event{Kind: discovery.EventKind(42), Service: named("x")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReconcilerFixture(t)
			f.reconciler.Apply(discovery.ResolvedEvent(printer()))
			before := f.registry.Snapshot()
			notesBefore := len(f.notes.all())

			assert.NotPanics(t, func() {
				assert.False(t, f.reconciler.Apply(tt.ev))
			})
			assert.Equal(t, before, f.registry.Snapshot())
			assert.Len(t, f.notes.all(), notesBefore)
			assert.Len(t, f.journal.all(), 1)
		})
	}
}

func TestReconcilerHandlersSeePostMutationState(t *testing.T) {
	registry := NewRegistry()
	subs := subscription.NewManager()
	r := NewReconciler(registry, subs, nil, nil, nil)

	var seenOnFound, seenOnRemove bool
	_, err := subs.Subscribe(discovery.EventFound, func(n subscription.Notification) {
		_, seenOnFound = registry.Get(n.Name)
	})
	require.NoError(t, err)
	_, err = subs.Subscribe(discovery.EventRemove, func(n subscription.Notification) {
		_, seenOnRemove = registry.Snapshot()[n.Name]
	})
	require.NoError(t, err)

	r.Apply(discovery.FoundEvent(named("tv")))
	r.Apply(discovery.RemoveEvent(named("tv")))

	assert.True(t, seenOnFound, "found handler should see the inserted entry")
	assert.False(t, seenOnRemove, "remove handler should not see the deleted entry")
}

func TestReconcilerNotificationServiceIsCopy(t *testing.T) {
	f := newReconcilerFixture(t)
	f.reconciler.Apply(discovery.ResolvedEvent(printer()))

	notes := f.notes.all()
	require.Len(t, notes, 1)
	notes[0].Service.Addresses[0] = "mutated"
	notes[0].Service.TXT["ver"] = "mutated"

	got, _ := f.registry.Get("printer")
	assert.Equal(t, "10.0.0.5", got.Addresses[0])
	assert.Equal(t, "1", got.TXT["ver"])
}

func TestReconcilerJournalsAcceptedEvents(t *testing.T) {
	f := newReconcilerFixture(t)
	f.reconciler.SetSessionID("session-a")

	f.reconciler.Apply(discovery.ResolvedEvent(printer()))
	f.reconciler.Apply(discovery.UpdateEvent(&discovery.ServiceDescriptor{
		Name: "printer",
		TXT:  discovery.TXTRecordMap{"ver": "2"},
	}))
	f.reconciler.SetSessionID("session-b")
	f.reconciler.Apply(discovery.ErrorEvent(errors.New("lost socket")))

	events := f.journal.all()
	require.Len(t, events, 3)

	assert.Equal(t, "session-a", events[0].SessionID)
	assert.Equal(t, discovery.EventResolved, events[0].Kind)
	assert.Equal(t, "printer", events[0].Name)
	require.NotNil(t, events[0].Service)
	assert.Equal(t, []string{"10.0.0.5"}, events[0].Service.Addresses)

	// Update journals the merged descriptor
	require.NotNil(t, events[1].Service)
	assert.Equal(t, []string{"10.0.0.5"}, events[1].Service.Addresses)
	assert.Equal(t, "2", events[1].Service.TXT["ver"])

	assert.Equal(t, "session-b", events[2].SessionID)
	require.NotNil(t, events[2].Error)
	assert.Equal(t, "lost socket", events[2].Error.Message)
}

func TestReconcilerJournalsFoundAndRemoveDescriptors(t *testing.T) {
	f := newReconcilerFixture(t)

	f.reconciler.Apply(discovery.FoundEvent(&discovery.ServiceDescriptor{Name: "printer", FullName: "printer._ipp._tcp.local."}))
	f.reconciler.Apply(discovery.RemoveEvent(named("printer")))

	events := f.journal.all()
	require.Len(t, events, 2)
	require.NotNil(t, events[0].Service)
	assert.Equal(t, "printer._ipp._tcp.local.", events[0].Service.FullName)
	assert.Equal(t, discovery.EventRemove, events[1].Kind)
	assert.NotNil(t, events[1].Service)
}

func TestReconcilerConcurrentApplyAndSnapshot(t *testing.T) {
	registry := NewRegistry()
	subs := subscription.NewManager()
	reconciler := NewReconciler(registry, subs, nil, nil, nil)

	const writers = 4
	const readers = 4
	const rounds = 200
	names := []string{"printer", "scanner", "nas", "camera"}

	var wg sync.WaitGroup
	for w := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range rounds {
				name := names[(w+i)%len(names)]
				reconciler.Apply(discovery.ResolvedEvent(&discovery.ServiceDescriptor{
					Name:      name,
					Host:      name + ".local.",
					Port:      631,
					Addresses: []string{"10.0.0.5"},
					TXT:       discovery.TXTRecordMap{"ver": "1"},
				}))
				reconciler.Apply(discovery.UpdateEvent(&discovery.ServiceDescriptor{
					Name: name,
					TXT:  discovery.TXTRecordMap{"ver": "2"},
				}))
				if i%3 == 0 {
					reconciler.Apply(discovery.RemoveEvent(named(name)))
				}
			}
		}()
	}

	errs := make(chan string, readers*rounds*len(names))
	for r := range readers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range rounds {
				for name, svc := range registry.Snapshot() {
					if svc.Name != name || svc.Host != name+".local." || svc.Port != 631 ||
						len(svc.Addresses) != 1 || svc.TXT["ver"] == "" {
						errs <- name
					}
				}
				switch {
				case r == 0 && i%50 == 0:
					registry.Reset()
				case r == 1:
					id, err := subs.Subscribe(discovery.EventUpdate, func(subscription.Notification) {})
					if err == nil {
						subs.Unsubscribe(id)
					}
				}
			}
		}()
	}

	wg.Wait()
	close(errs)
	var broken []string
	for name := range errs {
		broken = append(broken, name)
	}
	assert.Empty(t, broken, "snapshots contained partially formed entries")
}

func TestReconcilerNotificationCountMatchesAccepted(t *testing.T) {
	f := newReconcilerFixture(t)
	rng := rand.New(rand.NewPCG(1, 2))

	accepted := make(map[discovery.EventKind]int)
	for range 500 {
		ev := randomEvent(rng)
		if f.reconciler.Apply(ev) {
			accepted[ev.Kind]++
		}
	}

	for _, kind := range discovery.AllEventKinds {
		assert.Equal(t, accepted[kind], f.notes.count(kind), "kind %s", kind)
	}
}

func TestReconcilerLastWriteWins(t *testing.T) {
	for seed := range uint64(20) {
		f := newReconcilerFixture(t)
		rng := rand.New(rand.NewPCG(seed, seed*7+1))

		model := make(map[string][]string)
		for range 200 {
			name := []string{"a", "b", "c", "d"}[rng.IntN(4)]
			addrs := []string{"10.0.0." + string(rune('0'+rng.IntN(10)))}
			switch rng.IntN(3) {
			case 0:
				f.reconciler.Apply(discovery.FoundEvent(named(name)))
				model[name] = nil
			case 1:
				f.reconciler.Apply(discovery.ResolvedEvent(&discovery.ServiceDescriptor{Name: name, Addresses: addrs}))
				model[name] = addrs
			case 2:
				f.reconciler.Apply(discovery.RemoveEvent(named(name)))
				delete(model, name)
			}
		}

		snap := f.registry.Snapshot()
		require.Len(t, snap, len(model), "seed %d", seed)
		for name, addrs := range model {
			got, ok := snap[name]
			require.True(t, ok, "seed %d: missing %s", seed, name)
			assert.Equal(t, addrs, got.Addresses, "seed %d: %s", seed, name)
		}
	}
}

func TestReconcilerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	r := NewReconciler(NewRegistry(), subscription.NewManager(), nil, nil, metrics)
	r.Apply(discovery.FoundEvent(named("a")))
	r.Apply(discovery.FoundEvent(named("b")))
	r.Apply(discovery.RemoveEvent(named("a")))
	r.Apply(discovery.UpdateEvent(named("ghost")))

	assert.Equal(t, float64(2), metricValue(t, metrics.events.WithLabelValues("found")))
	assert.Equal(t, float64(1), metricValue(t, metrics.events.WithLabelValues("remove")))
	assert.Equal(t, float64(0), metricValue(t, metrics.events.WithLabelValues("update")))
	assert.Equal(t, float64(1), metricValue(t, metrics.services))

	metrics.scanStarted()
	assert.Equal(t, float64(1), metricValue(t, metrics.scans))
	assert.Equal(t, float64(0), metricValue(t, metrics.services))
}

func TestNewMetricsRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func metricValue(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	if out.Counter != nil {
		return out.Counter.GetValue()
	}
	return out.Gauge.GetValue()
}

func randomEvent(rng *rand.Rand) discovery.Event {
	names := []string{"a", "b", "c", ""}
	svc := &discovery.ServiceDescriptor{Name: names[rng.IntN(len(names))]}
	if rng.IntN(2) == 0 {
		svc.Addresses = []string{"10.0.0.1"}
	}
	if rng.IntN(5) == 0 {
		svc = nil
	}

	switch kind := discovery.AllEventKinds[rng.IntN(len(discovery.AllEventKinds))]; kind {
	case discovery.EventStart:
		return discovery.StartEvent()
	case discovery.EventStop:
		return discovery.StopEvent()
	case discovery.EventError:
		return discovery.ErrorEvent(errors.New("random"))
	default:
		return discovery.Event{Kind: kind, Service: svc}
	}
}
