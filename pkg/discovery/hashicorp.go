package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/mdns"
)

// QueryFunc matches mdns.Query. Tests inject their own.
type QueryFunc func(params *mdns.QueryParam) error

// HashicorpProvider implements Provider by polling with hashicorp/mdns.
//
// The library has no notion of goodbye packets, so a service is removed
// once it is missing from two consecutive query rounds.
type HashicorpProvider struct {
	config BrowserConfig
	query  QueryFunc
	emitter

	mu        sync.Mutex
	cancel    context.CancelFunc
	closed    bool
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewHashicorpProvider creates a polling provider.
func NewHashicorpProvider(config BrowserConfig) *HashicorpProvider {
	return NewHashicorpProviderWithQuery(config, mdns.Query)
}

// NewHashicorpProviderWithQuery creates a polling provider that queries with fn.
func NewHashicorpProviderWithQuery(config BrowserConfig, fn QueryFunc) *HashicorpProvider {
	config = config.withDefaults()
	return &HashicorpProvider{
		config:  config,
		query:   fn,
		emitter: newEmitter(config.EventBuffer),
	}
}

// Events returns the provider's event stream.
func (p *HashicorpProvider) Events() <-chan Event {
	return p.events
}

// BeginScan starts the query loop, cancelling a loop already running.
func (p *HashicorpProvider) BeginScan(serviceType, protocol, domain string) error {
	if err := ValidateScan(serviceType, protocol); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrProviderClosed
	}
	if p.cancel != nil {
		p.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	p.wg.Add(1)
	go p.queryLoop(ctx, ServiceTypeName(serviceType, protocol), NormalizeDomain(domain))
	return nil
}

// EndScan stops the query loop, if any.
func (p *HashicorpProvider) EndScan() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	return nil
}

// Close stops querying and releases the provider.
func (p *HashicorpProvider) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		if p.cancel != nil {
			p.cancel()
			p.cancel = nil
		}
		p.mu.Unlock()

		close(p.done)
		p.wg.Wait()
	})
	return nil
}

// queryLoop continuously queries for services until ctx ends.
func (p *HashicorpProvider) queryLoop(ctx context.Context, service, domain string) {
	defer p.wg.Done()

	if !p.emit(StartEvent()) {
		return
	}

	tracker := newInstanceTracker()
	missed := make(map[string]int)

	ticker := time.NewTicker(p.config.QueryInterval)
	defer ticker.Stop()

	for {
		seen, err := p.round(ctx, service, domain, tracker)
		if err != nil && ctx.Err() == nil {
			p.config.Logger.Warn("mdns query failed", "service", service, "err", err)
			if !p.emit(ErrorEvent(fmt.Errorf("%w: %s: %w", ErrBrowseFailed, service, err))) {
				return
			}
		}

		if ctx.Err() == nil && err == nil {
			for _, name := range tracker.names() {
				if seen[name] {
					delete(missed, name)
					continue
				}
				missed[name]++
				if missed[name] >= 2 {
					delete(missed, name)
					if !p.emit(tracker.withdraw(&ServiceDescriptor{Name: name})...) {
						return
					}
				}
			}
		}

		select {
		case <-ctx.Done():
			p.emit(StopEvent())
			return
		case <-ticker.C:
		}
	}
}

// round runs one query and feeds its entries to tracker. It returns the
// names seen in this round.
func (p *HashicorpProvider) round(ctx context.Context, service, domain string, tracker *instanceTracker) (map[string]bool, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	seen := make(map[string]bool)

	params := &mdns.QueryParam{
		Service:   service,
		Domain:    domain,
		Timeout:   p.config.QueryTimeout,
		Interface: p.config.iface(),
		Entries:   entries,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- p.query(params)
		close(entries)
	}()

	for entry := range entries {
		svc := hashicorpEntryToDescriptor(entry, service, domain)
		if svc == nil {
			continue
		}
		seen[svc.Name] = true
		if ctx.Err() != nil {
			continue
		}
		if !p.emit(tracker.observe(svc)...) {
			// Drain so the query goroutine can finish.
			for range entries {
			}
			return seen, ErrProviderClosed
		}
	}
	return seen, <-errCh
}

// hashicorpEntryToDescriptor converts a hashicorp/mdns entry to a ServiceDescriptor.
func hashicorpEntryToDescriptor(entry *mdns.ServiceEntry, service, domain string) *ServiceDescriptor {
	if entry == nil {
		return nil
	}
	name := instanceName(entry.Name, service, domain)
	if name == "" {
		return nil
	}

	var addrs []string
	if entry.AddrV4 != nil {
		addrs = append(addrs, entry.AddrV4.String())
	}
	if entry.AddrV6 != nil {
		addrs = append(addrs, entry.AddrV6.String())
	}

	return &ServiceDescriptor{
		Name:      name,
		FullName:  entry.Name,
		Host:      strings.TrimSuffix(entry.Host, "."),
		Port:      uint16(entry.Port),
		Addresses: addrs,
		TXT:       StringsToTXTRecords(entry.InfoFields),
	}
}

// instanceName extracts the instance label from a fully qualified name,
// "My\ Printer._ipp._tcp.local." -> "My Printer".
func instanceName(fullName, service, domain string) string {
	name := strings.TrimSuffix(fullName, ".")
	name = strings.TrimSuffix(name, "."+service+"."+domain)
	return strings.ReplaceAll(name, `\ `, " ")
}

// Ensure HashicorpProvider implements Provider interface.
var _ Provider = (*HashicorpProvider)(nil)
