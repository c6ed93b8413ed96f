package subscription

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/mash-protocol/zeroconf-go/pkg/discovery"
)

// Subscription errors.
var (
	ErrNilHandler           = errors.New("nil notification handler")
	ErrInvalidKind          = errors.New("invalid event kind")
	ErrResourceExhausted    = errors.New("maximum subscriptions reached")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// DefaultMaxSubscriptions is the default subscription limit.
const DefaultMaxSubscriptions = 256

// Config holds subscription manager configuration.
type Config struct {
	// MaxSubscriptions is the maximum number of subscriptions allowed.
	MaxSubscriptions int
}

// DefaultConfig returns the default subscription configuration.
func DefaultConfig() Config {
	return Config{
		MaxSubscriptions: DefaultMaxSubscriptions,
	}
}

// Notification is a normalized catalog change delivered to subscribers.
type Notification struct {
	// Kind is the event kind that caused the notification.
	Kind discovery.EventKind

	// Name is the service name (found, remove, resolved, update).
	Name string

	// Service is the full descriptor (resolved, update).
	// It is a copy; handlers may keep it.
	Service *discovery.ServiceDescriptor

	// Err is the provider or setup error (error).
	Err error

	// Timestamp is when the notification was generated.
	Timestamp time.Time
}

// Handler receives notifications.
type Handler func(Notification)

// Subscription is a registered (kind, handler) pair.
type Subscription struct {
	// ID identifies the subscription for Unsubscribe.
	ID uint32

	// Kind is the subscribed event kind.
	Kind discovery.EventKind

	handler Handler
	active  atomic.Bool
}

// NewSubscription creates an active subscription.
func NewSubscription(id uint32, kind discovery.EventKind, handler Handler) *Subscription {
	s := &Subscription{
		ID:      id,
		Kind:    kind,
		handler: handler,
	}
	s.active.Store(true)
	return s
}

// IsActive returns whether the subscription is active.
func (s *Subscription) IsActive() bool {
	return s.active.Load()
}

// Deactivate marks the subscription as inactive.
func (s *Subscription) Deactivate() {
	s.active.Store(false)
}

// deliver invokes the handler if the subscription is still active.
func (s *Subscription) deliver(n Notification) bool {
	if !s.IsActive() {
		return false
	}
	s.handler(n)
	return true
}

// Global subscription ID counter.
var subscriptionIDCounter atomic.Uint32

// nextID generates a unique subscription ID.
func nextID() uint32 {
	return subscriptionIDCounter.Add(1)
}
