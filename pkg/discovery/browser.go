package discovery

import (
	"log/slog"
	"net"
	"time"
)

// BrowserConfig configures provider behavior.
type BrowserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// EventBuffer is the capacity of the event channel.
	// Default: DefaultEventBuffer.
	EventBuffer int

	// QueryInterval is the delay between polling rounds (HashicorpProvider only).
	// Default: DefaultQueryInterval.
	QueryInterval time.Duration

	// QueryTimeout bounds one polling round (HashicorpProvider only).
	// Default: DefaultQueryTimeout.
	QueryTimeout time.Duration

	// Logger receives operational log output. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		EventBuffer:   DefaultEventBuffer,
		QueryInterval: DefaultQueryInterval,
		QueryTimeout:  DefaultQueryTimeout,
	}
}

func (c BrowserConfig) withDefaults() BrowserConfig {
	if c.EventBuffer <= 0 {
		c.EventBuffer = DefaultEventBuffer
	}
	if c.QueryInterval <= 0 {
		c.QueryInterval = DefaultQueryInterval
	}
	if c.QueryTimeout <= 0 {
		c.QueryTimeout = DefaultQueryTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// iface resolves the configured interface, or nil for all interfaces.
func (c BrowserConfig) iface() *net.Interface {
	if c.Interface == "" {
		return nil
	}
	iface, err := net.InterfaceByName(c.Interface)
	if err != nil {
		c.Logger.Warn("unknown interface, using all", "interface", c.Interface, "err", err)
		return nil
	}
	return iface
}

// instanceTracker folds raw per-instance observations from an mDNS library
// into catalog events. Addresses announced on several interfaces are merged
// into one descriptor and a service is only removed once no address is left.
type instanceTracker struct {
	services map[string]*ServiceDescriptor
}

func newInstanceTracker() *instanceTracker {
	return &instanceTracker{services: make(map[string]*ServiceDescriptor)}
}

// observe records an announcement and returns the events it implies.
func (t *instanceTracker) observe(svc *ServiceDescriptor) []Event {
	if svc == nil || svc.Name == "" {
		return nil
	}

	existing, found := t.services[svc.Name]
	if !found {
		stored := svc.Clone()
		t.services[svc.Name] = stored

		unresolved := stored.Clone()
		unresolved.Addresses = nil
		events := []Event{FoundEvent(unresolved)}
		if stored.IsResolved() {
			events = append(events, ResolvedEvent(stored.Clone()))
		}
		return events
	}

	if svc.Host != "" {
		existing.Host = svc.Host
	}
	if svc.Port != 0 {
		existing.Port = svc.Port
	}
	if svc.FullName != "" {
		existing.FullName = svc.FullName
	}

	before := len(existing.Addresses)
	existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
	txtChanged := !existing.TXT.Equal(svc.TXT)
	if txtChanged {
		existing.TXT = svc.TXT.Clone()
	}

	switch {
	case len(existing.Addresses) != before:
		return []Event{ResolvedEvent(existing.Clone())}
	case txtChanged && existing.IsResolved():
		return []Event{UpdateEvent(existing.Clone())}
	case txtChanged:
		return []Event{FoundEvent(existing.Clone())}
	}
	return nil
}

// withdraw records a goodbye for svc. Addresses listed in svc are dropped;
// when none remain, or svc lists none, the service is removed.
func (t *instanceTracker) withdraw(svc *ServiceDescriptor) []Event {
	if svc == nil || svc.Name == "" {
		return nil
	}
	existing, found := t.services[svc.Name]
	if !found {
		return nil
	}

	if len(svc.Addresses) > 0 {
		existing.Addresses = removeAddresses(existing.Addresses, svc.Addresses)
	}
	if len(svc.Addresses) == 0 || len(existing.Addresses) == 0 {
		delete(t.services, svc.Name)
		return []Event{RemoveEvent(&ServiceDescriptor{Name: svc.Name, FullName: existing.FullName})}
	}
	return []Event{ResolvedEvent(existing.Clone())}
}

// names returns the tracked service names.
func (t *instanceTracker) names() []string {
	names := make([]string, 0, len(t.services))
	for name := range t.services {
		names = append(names, name)
	}
	return names
}

// mergeAddresses adds new addresses to existing list, avoiding duplicates.
func mergeAddresses(existing, added []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}

	for _, addr := range added {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}

// removeAddresses returns addresses without the entries in gone.
func removeAddresses(addresses, gone []string) []string {
	toRemove := make(map[string]bool, len(gone))
	for _, addr := range gone {
		toRemove[addr] = true
	}

	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}

// ipStrings formats IPv4 then IPv6 addresses.
func ipStrings(v4, v6 []net.IP) []string {
	addrs := make([]string, 0, len(v4)+len(v6))
	for _, ip := range v4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range v6 {
		addrs = append(addrs, ip.String())
	}
	return addrs
}

// emitter delivers events to a provider's channel until the provider closes.
type emitter struct {
	events chan Event
	done   chan struct{}
}

func newEmitter(buffer int) emitter {
	return emitter{
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
}

// emit sends ev, giving up if the provider is closed.
func (e emitter) emit(evs ...Event) bool {
	for _, ev := range evs {
		select {
		case e.events <- ev:
		case <-e.done:
			return false
		}
	}
	return true
}
