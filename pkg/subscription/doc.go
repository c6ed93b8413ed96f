// Package subscription implements the observer registry for catalog
// notifications.
//
// Observers subscribe a handler to one event kind (found, remove, resolved,
// update, start, stop, error). Several handlers may share a kind; they are
// invoked in registration order.
//
// # Notification Delivery
//
// Notify is synchronous: every handler for the kind runs before Notify
// returns. The handler list is copied under the lock and invoked outside
// it, so handlers may subscribe or unsubscribe (themselves or others)
// without corrupting the iteration. A handler removed during a delivery
// is not invoked for the remainder of it.
//
// # Lifecycle
//
// Subscriptions are independent of scans. They survive Scan and Stop and
// end only with Unsubscribe.
package subscription
