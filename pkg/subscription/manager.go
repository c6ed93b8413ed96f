package subscription

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/mash-protocol/zeroconf-go/pkg/discovery"
)

// Manager manages notification subscriptions.
type Manager struct {
	mu sync.RWMutex

	// Configuration
	config Config

	// Active subscriptions by ID
	subscriptions map[uint32]*Subscription

	// Per-kind handler lists in registration order
	kindIndex map[discovery.EventKind][]*Subscription
}

// NewManager creates a new subscription manager with default configuration.
func NewManager() *Manager {
	return NewManagerWithConfig(DefaultConfig())
}

// NewManagerWithConfig creates a new subscription manager with custom configuration.
func NewManagerWithConfig(config Config) *Manager {
	if config.MaxSubscriptions <= 0 {
		config.MaxSubscriptions = DefaultMaxSubscriptions
	}

	return &Manager{
		config:        config,
		subscriptions: make(map[uint32]*Subscription),
		kindIndex:     make(map[discovery.EventKind][]*Subscription),
	}
}

// Subscribe registers handler for kind and returns the subscription ID.
func (m *Manager) Subscribe(kind discovery.EventKind, handler Handler) (uint32, error) {
	if handler == nil {
		return 0, ErrNilHandler
	}
	if !kind.Valid() {
		return 0, ErrInvalidKind
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.subscriptions) >= m.config.MaxSubscriptions {
		return 0, ErrResourceExhausted
	}

	sub := NewSubscription(nextID(), kind, handler)
	m.subscriptions[sub.ID] = sub

	// Copy-on-write so snapshots taken by Notify stay untouched.
	subs := m.kindIndex[kind]
	m.kindIndex[kind] = append(subs[:len(subs):len(subs)], sub)

	return sub.ID, nil
}

// Unsubscribe removes a subscription.
func (m *Manager) Unsubscribe(subscriptionID uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub, exists := m.subscriptions[subscriptionID]
	if !exists {
		return ErrSubscriptionNotFound
	}

	sub.Deactivate()
	delete(m.subscriptions, subscriptionID)

	subs := m.kindIndex[sub.Kind]
	m.kindIndex[sub.Kind] = slices.DeleteFunc(slices.Clone(subs), func(s *Subscription) bool {
		return s.ID == subscriptionID
	})
	if len(m.kindIndex[sub.Kind]) == 0 {
		delete(m.kindIndex, sub.Kind)
	}

	return nil
}

// Notify delivers n to every active subscriber of n.Kind, in registration
// order, and returns how many handlers ran. Handlers run on the caller's
// goroutine without the manager lock held.
func (m *Manager) Notify(n Notification) int {
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}

	m.mu.RLock()
	subs := m.kindIndex[n.Kind]
	m.mu.RUnlock()

	delivered := 0
	for _, sub := range subs {
		if sub.deliver(n) {
			delivered++
		}
	}
	return delivered
}

// Count returns the number of subscriptions for kind.
func (m *Manager) Count(kind discovery.EventKind) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.kindIndex[kind])
}

// Len returns the total number of subscriptions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Subscriptions returns all subscriptions ordered by ID.
func (m *Manager) Subscriptions() []*Subscription {
	m.mu.RLock()
	subs := make([]*Subscription, 0, len(m.subscriptions))
	for _, sub := range m.subscriptions {
		subs = append(subs, sub)
	}
	m.mu.RUnlock()

	slices.SortFunc(subs, func(a, b *Subscription) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return subs
}
