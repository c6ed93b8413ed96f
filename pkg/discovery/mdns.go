package discovery

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

// BrowseFunc matches zeroconf.Browse. Tests inject their own.
type BrowseFunc func(ctx context.Context, service, domain string, entries, removed chan *zeroconf.ServiceEntry, opts ...zeroconf.ClientOption) error

func zeroconfBrowse(ctx context.Context, service, domain string, entries, removed chan *zeroconf.ServiceEntry, opts ...zeroconf.ClientOption) error {
	return zeroconf.Browse(ctx, service, domain, entries, removed, opts...)
}

// MDNSProvider implements Provider using zeroconf browsing.
type MDNSProvider struct {
	config BrowserConfig
	browse BrowseFunc
	emitter

	mu        sync.Mutex
	cancel    context.CancelFunc
	closed    bool
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewMDNSProvider creates a new zeroconf-backed provider.
func NewMDNSProvider(config BrowserConfig) *MDNSProvider {
	return NewMDNSProviderWithBrowse(config, zeroconfBrowse)
}

// NewMDNSProviderWithBrowse creates a provider that browses with fn.
func NewMDNSProviderWithBrowse(config BrowserConfig, fn BrowseFunc) *MDNSProvider {
	config = config.withDefaults()
	return &MDNSProvider{
		config:  config,
		browse:  fn,
		emitter: newEmitter(config.EventBuffer),
	}
}

// Events returns the provider's event stream.
func (p *MDNSProvider) Events() <-chan Event {
	return p.events
}

// BeginScan starts browsing, cancelling a browse already in progress.
// The superseded browse still reports its stop event.
func (p *MDNSProvider) BeginScan(serviceType, protocol, domain string) error {
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

	service := ServiceTypeName(serviceType, protocol)
	p.wg.Add(1)
	go p.run(ctx, service, NormalizeDomain(domain))
	return nil
}

// EndScan stops the current browse, if any.
func (p *MDNSProvider) EndScan() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	return nil
}

// Close stops browsing and releases the provider. Pending events that
// nobody reads are discarded.
func (p *MDNSProvider) Close() error {
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

// run performs one browse and translates its results until ctx ends.
func (p *MDNSProvider) run(ctx context.Context, service, domain string) {
	defer p.wg.Done()
	logger := p.config.Logger.With("service", service, "domain", domain)

	if !p.emit(StartEvent()) {
		return
	}
	logger.Debug("browse started")

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	browseDone := make(chan struct{})
	go func() {
		defer close(browseDone)
		if err := p.browse(ctx, service, domain, entries, removed, p.browserOptions()...); err != nil && ctx.Err() == nil {
			logger.Warn("browse failed", "err", err)
			p.emit(ErrorEvent(fmt.Errorf("%w: %s: %w", ErrBrowseFailed, service, err)))
		}
	}()

	tracker := newInstanceTracker()
	in, out := entries, removed

loop:
	for {
		select {
		case entry, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			if !p.emit(tracker.observe(entryToDescriptor(entry, service, domain))...) {
				return
			}

		case entry, ok := <-out:
			if !ok {
				out = nil
				continue
			}
			if !p.emit(tracker.withdraw(entryToDescriptor(entry, service, domain))...) {
				return
			}

		case <-browseDone:
			browseDone = nil
			if ctx.Err() == nil {
				// The library gave up on its own; nothing more will arrive.
				break loop
			}

		case <-ctx.Done():
			break loop
		}
	}

	logger.Debug("browse stopped")
	p.emit(StopEvent())
}

// browserOptions returns zeroconf client options based on config.
func (p *MDNSProvider) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption

	if iface := p.config.iface(); iface != nil {
		opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
	}

	return opts
}

// entryToDescriptor converts a zeroconf entry to a ServiceDescriptor.
func entryToDescriptor(entry *zeroconf.ServiceEntry, service, domain string) *ServiceDescriptor {
	if entry == nil {
		return nil
	}
	return &ServiceDescriptor{
		Name:      entry.Instance,
		FullName:  fmt.Sprintf("%s.%s.%s.", entry.Instance, service, domain),
		Host:      entry.HostName,
		Port:      uint16(entry.Port),
		Addresses: ipStrings(entry.AddrIPv4, entry.AddrIPv6),
		TXT:       StringsToTXTRecords(entry.Text),
	}
}

// Ensure MDNSProvider implements Provider interface.
var _ Provider = (*MDNSProvider)(nil)
