// Package cache provides a generic, thread-safe LRU cache.
//
// The cache holds at most a fixed number of items; adding one more evicts the
// least recently used item. Items can be protected from eviction with
// WithKeep, which lets owners pin entries that are still in use:
//
//	entries := cache.New[string, *Entry](256,
//		cache.WithKeep(func(_ string, e *Entry) bool { return e.busy() }),
//		cache.WithEvictHook(func(key string, _ *Entry, r cache.Reason) {
//			log.Printf("dropped %s (%s)", key, r)
//		}),
//	)
//
// Get and Put mark an item as recently used; Peek does not. All operations
// are O(1) except Keys, RemoveFunc and Clear, which walk the cache.
package cache
