// Package discovery defines the service descriptors and discovery events
// consumed by the catalog, and the providers that produce them.
//
// A provider wraps an mDNS/DNS-SD implementation and turns its output into
// an unordered stream of Event values:
//
//   - EventStart / EventStop when browsing begins or ends
//   - EventFound when an instance name is first seen
//   - EventResolved when an instance has network addresses
//   - EventUpdate when only the TXT metadata of an instance changed
//   - EventRemove when an instance disappeared
//   - EventError for failures inside the provider
//
// # Service Types
//
// Scans are requested as a (type, protocol, domain) triple, for example
// ("http", "tcp", "local."). ServiceTypeName turns the first two into the
// DNS-SD form "_http._tcp". Providers that expect the domain without the
// trailing root label use NormalizeDomain.
//
// # Providers
//
// MDNSProvider browses with github.com/enbility/zeroconf/v3 and follows
// announcements and goodbye packets as they arrive. HashicorpProvider
// polls with github.com/hashicorp/mdns and derives removals from
// consecutive query rounds.
//
// Packet formats, multicast membership and DNS record parsing stay inside
// those libraries.
package discovery
