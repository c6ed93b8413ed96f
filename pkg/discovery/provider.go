package discovery

// Provider is the control and event surface of an mDNS implementation.
//
// Events returns the channel the provider pushes events to for its whole
// lifetime. BeginScan and EndScan must not block on that channel; events
// caused by them are delivered asynchronously.
type Provider interface {
	// Events returns the provider's event stream.
	Events() <-chan Event

	// BeginScan starts browsing for serviceType/protocol in domain,
	// replacing any browse already in progress.
	BeginScan(serviceType, protocol, domain string) error

	// EndScan stops browsing. Stopping an idle provider is not an error.
	EndScan() error
}
