package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/mash-protocol/zeroconf-go/pkg/discovery"
	"github.com/mash-protocol/zeroconf-go/pkg/log"
	"github.com/mash-protocol/zeroconf-go/pkg/subscription"
)

// ErrBridgeInstalled is reported through an error notification when Start
// is called while the event bridge is already running.
var ErrBridgeInstalled = errors.New("discovery event bridge already installed")

// Query selects the services a scan looks for. Empty fields take the
// discovery package defaults (http, tcp, local.).
type Query struct {
	ServiceType string
	Protocol    string
	Domain      string
}

// DefaultQuery returns the query used when no fields are set.
func DefaultQuery() Query {
	return Query{
		ServiceType: discovery.DefaultServiceType,
		Protocol:    discovery.DefaultProtocol,
		Domain:      discovery.DefaultDomain,
	}
}

func (q Query) withDefaults() Query {
	d := DefaultQuery()
	if q.ServiceType == "" {
		q.ServiceType = d.ServiceType
	}
	if q.Protocol == "" {
		q.Protocol = d.Protocol
	}
	if q.Domain == "" {
		q.Domain = d.Domain
	}
	return q
}

// String returns the DNS-SD form, e.g. "_http._tcp.local.".
func (q Query) String() string {
	q = q.withDefaults()
	return discovery.ServiceTypeName(q.ServiceType, q.Protocol) + "." + q.Domain
}

// SessionConfig configures a Session.
type SessionConfig struct {
	// Subscriptions configures the subscription manager.
	Subscriptions subscription.Config

	// Journal receives every accepted event. Nil disables the journal.
	Journal log.Logger

	// Metrics exports catalog activity. Nil disables metrics.
	Metrics *Metrics

	// Logger is the operational logger. Nil uses slog.Default.
	Logger *slog.Logger
}

// DefaultSessionConfig returns a SessionConfig with sensible defaults.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Subscriptions: subscription.DefaultConfig(),
	}
}

// Session bridges a discovery provider to the catalog.
type Session struct {
	provider   discovery.Provider
	registry   *Registry
	subs       *subscription.Manager
	reconciler *Reconciler
	metrics    *Metrics
	logger     *slog.Logger

	// local carries errors raised by Session calls into the pump.
	local chan discovery.Event

	mu       sync.Mutex
	done     chan struct{}
	pumpDone chan struct{}
}

// NewSession creates a session over provider and installs the event bridge.
func NewSession(provider discovery.Provider, config SessionConfig) *Session {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := NewRegistry()
	subs := subscription.NewManagerWithConfig(config.Subscriptions)

	s := &Session{
		provider:   provider,
		registry:   registry,
		subs:       subs,
		reconciler: NewReconciler(registry, subs, config.Journal, logger, config.Metrics),
		metrics:    config.Metrics,
		logger:     logger,
		local:      make(chan discovery.Event),
	}
	s.Start()
	return s
}

// Start installs the event bridge. Calling Start while the bridge is
// installed leaves it running and reports ErrBridgeInstalled through an
// error notification.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		s.logger.Warn("event bridge already installed")
		s.reportLocked(ErrBridgeInstalled)
		return
	}

	s.done = make(chan struct{})
	s.pumpDone = make(chan struct{})
	go s.pump(s.done, s.pumpDone)
}

// Close tears down the event bridge and waits for the pump to exit.
// The provider is left untouched; Start may install a new bridge.
// Close must not be called from a notification handler.
func (s *Session) Close() error {
	s.mu.Lock()
	done, pumpDone := s.done, s.pumpDone
	s.done, s.pumpDone = nil, nil
	s.mu.Unlock()

	if done == nil {
		return nil
	}
	close(done)
	<-pumpDone
	return nil
}

// Running reports whether the event bridge is installed.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done != nil
}

func (s *Session) pump(done <-chan struct{}, pumpDone chan<- struct{}) {
	defer close(pumpDone)

	events := s.provider.Events()
	for {
		select {
		case <-done:
			return
		case ev, ok := <-events:
			if !ok {
				s.logger.Debug("provider event channel closed")
				events = nil
				continue
			}
			s.reconciler.Apply(ev)
		case ev := <-s.local:
			s.reconciler.Apply(ev)
		}
	}
}

// Scan clears the registry and starts discovery for q. Failures are
// reported through error notifications.
func (s *Session) Scan(q Query) {
	q = q.withDefaults()

	s.registry.Reset()
	id := uuid.NewString()
	s.reconciler.SetSessionID(id)
	s.metrics.scanStarted()

	s.logger.Info("scan requested", "query", q.String(), "session", id)

	if err := s.provider.BeginScan(q.ServiceType, q.Protocol, q.Domain); err != nil {
		s.report(fmt.Errorf("begin scan %s: %w", q, err))
	}
}

// Stop ends the current scan. Registry contents are preserved.
func (s *Session) Stop() {
	s.logger.Info("stop requested", "session", s.SessionID())

	if err := s.provider.EndScan(); err != nil {
		s.report(fmt.Errorf("end scan: %w", err))
	}
}

// GetServices returns a snapshot of the catalog keyed by service name.
func (s *Session) GetServices() map[string]discovery.ServiceDescriptor {
	return s.registry.Snapshot()
}

// Subscribe registers handler for notifications of kind.
func (s *Session) Subscribe(kind discovery.EventKind, handler subscription.Handler) (uint32, error) {
	return s.subs.Subscribe(kind, handler)
}

// Unsubscribe removes a subscription.
func (s *Session) Unsubscribe(id uint32) error {
	return s.subs.Unsubscribe(id)
}

// Subscriptions returns the active subscriptions.
func (s *Session) Subscriptions() []*subscription.Subscription {
	return s.subs.Subscriptions()
}

// Registry returns the catalog registry for read access.
func (s *Session) Registry() *Registry {
	return s.registry
}

// SessionID returns the identifier of the current scan, or "" before the
// first scan.
func (s *Session) SessionID() string {
	return s.reconciler.SessionID()
}

// report queues err for delivery as an error notification.
func (s *Session) report(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reportLocked(err)
}

func (s *Session) reportLocked(err error) {
	done := s.done
	if done == nil {
		s.logger.Warn("no event bridge, dropping error", "err", err)
		return
	}

	// Delivered from a goroutine so handlers calling Scan or Stop
	// do not block on the pump they are running in.
	go func() {
		select {
		case s.local <- discovery.ErrorEvent(err):
		case <-done:
		}
	}()
}
