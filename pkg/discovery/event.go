package discovery

import (
	"fmt"
	"strings"
)

// EventKind identifies a discovery event.
type EventKind uint8

const (
	// EventStart is emitted when a provider begins browsing.
	EventStart EventKind = iota + 1

	// EventStop is emitted when a provider stops browsing.
	EventStop

	// EventError carries a provider failure.
	EventError

	// EventFound is emitted when a service name is first seen.
	EventFound

	// EventRemove is emitted when a service disappeared.
	EventRemove

	// EventResolved is emitted when a service has addresses.
	EventResolved

	// EventUpdate is emitted when the TXT records of a service changed.
	EventUpdate
)

// AllEventKinds lists every valid kind in declaration order.
var AllEventKinds = []EventKind{
	EventStart, EventStop, EventError,
	EventFound, EventRemove, EventResolved, EventUpdate,
}

// String returns the lowercase event name.
func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventStop:
		return "stop"
	case EventError:
		return "error"
	case EventFound:
		return "found"
	case EventRemove:
		return "remove"
	case EventResolved:
		return "resolved"
	case EventUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// Valid reports whether k is a known kind.
func (k EventKind) Valid() bool {
	return k >= EventStart && k <= EventUpdate
}

// CarriesService reports whether events of this kind carry a descriptor.
func (k EventKind) CarriesService() bool {
	switch k {
	case EventFound, EventRemove, EventResolved, EventUpdate:
		return true
	}
	return false
}

// ParseEventKind parses an event name (case-insensitive).
func ParseEventKind(s string) (EventKind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, k := range AllEventKinds {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEventKind, s)
}

// Event is a single discovery event.
//
// Service is set for found, remove, resolved and update events; Err is set
// for error events. Providers are an untrusted boundary: an event may
// arrive with a nil Service or an empty name and consumers must cope.
type Event struct {
	Kind    EventKind
	Service *ServiceDescriptor
	Err     error
}

// StartEvent returns a start event.
func StartEvent() Event { return Event{Kind: EventStart} }

// StopEvent returns a stop event.
func StopEvent() Event { return Event{Kind: EventStop} }

// ErrorEvent returns an error event carrying err.
func ErrorEvent(err error) Event { return Event{Kind: EventError, Err: err} }

// FoundEvent returns a found event for svc.
func FoundEvent(svc *ServiceDescriptor) Event { return Event{Kind: EventFound, Service: svc} }

// RemoveEvent returns a remove event for svc.
func RemoveEvent(svc *ServiceDescriptor) Event { return Event{Kind: EventRemove, Service: svc} }

// ResolvedEvent returns a resolved event for svc.
func ResolvedEvent(svc *ServiceDescriptor) Event { return Event{Kind: EventResolved, Service: svc} }

// UpdateEvent returns an update event for svc.
func UpdateEvent(svc *ServiceDescriptor) Event { return Event{Kind: EventUpdate, Service: svc} }

// Name returns the service name carried by the event, or "".
func (e Event) Name() string {
	if e.Service == nil {
		return ""
	}
	return e.Service.Name
}

// String returns a short description for logs.
func (e Event) String() string {
	switch {
	case e.Kind == EventError && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Kind.CarriesService():
		return fmt.Sprintf("%s %q", e.Kind, e.Name())
	default:
		return e.Kind.String()
	}
}
