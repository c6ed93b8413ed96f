// Package catalog maintains an in-memory catalog of network services
// discovered over mDNS/DNS-SD.
//
// A Session owns one discovery.Provider, a Registry keyed by service name,
// and a subscription.Manager. A single pump goroutine drains the
// provider's event channel into a Reconciler, which is the only mutator of
// the Registry. Every accepted event produces exactly one notification of
// the same kind; malformed events are dropped without a notification.
//
//	session := catalog.NewSession(provider, catalog.DefaultSessionConfig())
//	defer session.Close()
//
//	session.Subscribe(discovery.EventResolved, func(n subscription.Notification) {
//	    fmt.Println(n.Name, n.Service.Addresses)
//	})
//	session.Scan(catalog.Query{ServiceType: "ipp"})
//
// Notification handlers run on the pump goroutine. They may call
// GetServices, Scan, Stop, Subscribe and Unsubscribe, but must not call
// Close or Reconciler.Apply.
package catalog
