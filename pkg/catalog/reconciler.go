package catalog

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/mash-protocol/zeroconf-go/pkg/discovery"
	"github.com/mash-protocol/zeroconf-go/pkg/log"
	"github.com/mash-protocol/zeroconf-go/pkg/subscription"
)

// Reconciler folds discovery events into a Registry and notifies
// subscribers. It is the only component that mutates the Registry.
type Reconciler struct {
	mu sync.Mutex

	registry *Registry
	subs     *subscription.Manager
	journal  log.Logger
	logger   *slog.Logger
	metrics  *Metrics

	sessionID atomic.Pointer[string]
}

// NewReconciler creates a reconciler over registry and subs.
// A nil journal disables journaling; a nil logger uses slog.Default.
func NewReconciler(registry *Registry, subs *subscription.Manager, journal log.Logger, logger *slog.Logger, metrics *Metrics) *Reconciler {
	if journal == nil {
		journal = log.NoopLogger{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		registry: registry,
		subs:     subs,
		journal:  journal,
		logger:   logger,
		metrics:  metrics,
	}
}

// SetSessionID sets the scan session recorded with journaled events.
func (r *Reconciler) SetSessionID(id string) {
	r.sessionID.Store(&id)
}

// SessionID returns the current scan session, or "" before the first scan.
func (r *Reconciler) SessionID() string {
	if id := r.sessionID.Load(); id != nil {
		return *id
	}
	return ""
}

// Apply processes one event and reports whether it was accepted.
// Accepted events produce exactly one notification of the same kind,
// delivered after the Registry mutation. Malformed events are dropped.
// Apply must not be called from a notification handler.
func (r *Reconciler) Apply(ev discovery.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := subscription.Notification{Kind: ev.Kind}
	journaled := ev.Service

	switch ev.Kind {
	case discovery.EventStart, discovery.EventStop:

	case discovery.EventError:
		n.Err = ev.Err

	case discovery.EventFound, discovery.EventResolved:
		if ev.Name() == "" {
			return r.drop(ev, "missing name")
		}
		r.registry.Put(ev.Service)
		n.Name = ev.Name()
		if ev.Kind == discovery.EventResolved {
			n.Service = ev.Service.Clone()
		}

	case discovery.EventRemove:
		if ev.Name() == "" {
			return r.drop(ev, "missing name")
		}
		r.registry.Delete(ev.Name())
		n.Name = ev.Name()

	case discovery.EventUpdate:
		if ev.Name() == "" {
			return r.drop(ev, "missing name")
		}
		merged, ok := r.registry.UpdateTXT(ev.Name(), ev.Service.TXT)
		if !ok {
			return r.drop(ev, "no resolved entry")
		}
		n.Name = ev.Name()
		n.Service = merged
		journaled = merged

	default:
		return r.drop(ev, "unknown kind")
	}

	r.journal.Log(log.NewEvent(r.SessionID(), ev.Kind, n.Name, journaled, n.Err))
	r.metrics.eventAccepted(ev.Kind, r.registry.Len())
	r.subs.Notify(n)
	return true
}

func (r *Reconciler) drop(ev discovery.Event, reason string) bool {
	r.logger.Debug("dropping malformed discovery event",
		"kind", ev.Kind.String(),
		"name", ev.Name(),
		"reason", reason)
	return false
}
