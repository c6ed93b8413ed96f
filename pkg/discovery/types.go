package discovery

import (
	"errors"
	"slices"
	"strings"
	"time"
)

// Scan defaults.
const (
	// DefaultServiceType is the service type scanned when none is given.
	DefaultServiceType = "http"

	// DefaultProtocol is the transport protocol scanned when none is given.
	DefaultProtocol = "tcp"

	// DefaultDomain is the browse domain used when none is given.
	DefaultDomain = "local."
)

// Provider timing and sizing.
const (
	// DefaultEventBuffer is the capacity of a provider's event channel.
	DefaultEventBuffer = 64

	// DefaultQueryInterval is how often polling providers re-query.
	DefaultQueryInterval = 5 * time.Second

	// DefaultQueryTimeout bounds a single polling query round.
	DefaultQueryTimeout = 2 * time.Second
)

// Discovery errors.
var (
	ErrEmptyServiceType = errors.New("empty service type")
	ErrEmptyProtocol    = errors.New("empty protocol")
	ErrProviderClosed   = errors.New("provider closed")
	ErrBrowseFailed     = errors.New("browse failed")
	ErrUnknownEventKind = errors.New("unknown event kind")
)

// ServiceDescriptor describes one discovered service instance.
//
// A descriptor without addresses is unresolved. Only Name, Addresses and
// TXT have meaning for the catalog; the remaining fields are passed
// through from the provider unchanged.
type ServiceDescriptor struct {
	// Name is the instance name and the catalog key (e.g., "printer").
	Name string `json:"name"`

	// FullName is the fully qualified instance name
	// (e.g., "printer._ipp._tcp.local.").
	FullName string `json:"fullName,omitempty"`

	// Host is the target host name.
	Host string `json:"host,omitempty"`

	// Port is the service port.
	Port uint16 `json:"port,omitempty"`

	// Addresses contains resolved IP addresses in discovery order.
	Addresses []string `json:"addresses,omitempty"`

	// TXT contains the service metadata.
	TXT TXTRecordMap `json:"txt,omitempty"`
}

// IsResolved reports whether the descriptor carries network addresses.
func (d *ServiceDescriptor) IsResolved() bool {
	return d != nil && len(d.Addresses) > 0
}

// Clone returns a deep copy of the descriptor.
func (d *ServiceDescriptor) Clone() *ServiceDescriptor {
	if d == nil {
		return nil
	}
	c := *d
	c.Addresses = slices.Clone(d.Addresses)
	c.TXT = d.TXT.Clone()
	return &c
}

// ServiceTypeName returns the DNS-SD service name for a type and protocol,
// e.g. ("http", "tcp") -> "_http._tcp". Leading underscores are tolerated.
func ServiceTypeName(serviceType, protocol string) string {
	return "_" + strings.TrimPrefix(serviceType, "_") + "._" + strings.TrimPrefix(protocol, "_")
}

// NormalizeDomain strips the trailing root label, "local." -> "local".
func NormalizeDomain(domain string) string {
	return strings.TrimSuffix(domain, ".")
}

// ValidateScan checks a scan request after defaults have been applied.
func ValidateScan(serviceType, protocol string) error {
	if strings.TrimPrefix(serviceType, "_") == "" {
		return ErrEmptyServiceType
	}
	if strings.TrimPrefix(protocol, "_") == "" {
		return ErrEmptyProtocol
	}
	return nil
}
