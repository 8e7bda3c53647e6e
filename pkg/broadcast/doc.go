// Package broadcast provides a generic in-memory fan-out with latest-value
// delivery.
//
// Each subscriber buffers at most one message. When a new message arrives
// before the previous one was read, the old one is replaced. Senders never
// block, and a slow reader skips intermediate values but always observes the
// most recent one. This fits state-change signals, where only the current
// state matters:
//
//	b := broadcast.NewMemoryBroadcaster[store.Change]()
//	sub := b.Subscribe(ctx)
//	for change := range sub.Receive() {
//		render(change.Next)
//	}
package broadcast
