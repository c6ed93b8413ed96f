package log

import (
	"slices"
	"time"

	"github.com/mash-protocol/zeroconf-go/pkg/discovery"
)

// Event is one journal record: a discovery event as the catalog applied it.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event was applied (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the scan session active when the event was
	// applied (UUID). Empty before the first scan.
	SessionID string `cbor:"2,keyasint,omitempty"`

	// Kind is the discovery event kind.
	Kind discovery.EventKind `cbor:"3,keyasint"`

	// Name is the service name for service-carrying kinds.
	Name string `cbor:"4,keyasint,omitempty"`

	// Service holds the descriptor for found, remove, resolved and update
	// events. Update events carry the merged descriptor.
	Service *ServiceRecord `cbor:"5,keyasint,omitempty"`

	// Error holds the error for error events.
	Error *ErrorEventData `cbor:"6,keyasint,omitempty"`
}

// ServiceRecord captures a service descriptor.
type ServiceRecord struct {
	FullName  string            `cbor:"1,keyasint,omitempty"`
	Host      string            `cbor:"2,keyasint,omitempty"`
	Port      uint16            `cbor:"3,keyasint,omitempty"`
	Addresses []string          `cbor:"4,keyasint,omitempty"`
	TXT       map[string]string `cbor:"5,keyasint,omitempty"`
}

// ErrorEventData captures an error event.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`
}

// NewEvent builds a journal event for a discovery event.
func NewEvent(sessionID string, kind discovery.EventKind, name string, svc *discovery.ServiceDescriptor, err error) Event {
	event := Event{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Kind:      kind,
		Name:      name,
	}
	if svc != nil {
		event.Service = &ServiceRecord{
			FullName:  svc.FullName,
			Host:      svc.Host,
			Port:      svc.Port,
			Addresses: slices.Clone(svc.Addresses),
			TXT:       svc.TXT.Clone(),
		}
	}
	if err != nil {
		event.Error = &ErrorEventData{Message: err.Error()}
	}
	return event
}

// Descriptor rebuilds the service descriptor recorded in the event, or nil.
func (e Event) Descriptor() *discovery.ServiceDescriptor {
	if e.Service == nil {
		return nil
	}
	return &discovery.ServiceDescriptor{
		Name:      e.Name,
		FullName:  e.Service.FullName,
		Host:      e.Service.Host,
		Port:      e.Service.Port,
		Addresses: slices.Clone(e.Service.Addresses),
		TXT:       discovery.TXTRecordMap(e.Service.TXT).Clone(),
	}
}
