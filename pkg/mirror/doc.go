// Package mirror projects store state into durable flags that non-reactive
// code (route guards, other processes) can check without subscribing to the
// store.
//
// Two flags exist: auth_token carries the bearer token and is present iff a
// session is active; has_selected_company is a presence marker set iff a
// company is selected. Logout clears both.
//
// The Mirror is attached to the store as a hook and runs synchronously inside
// every transition:
//
//	flags := mirror.NewMemoryFlags()
//	m := mirror.New(flags)
//	s := store.New(store.WithHook(m.Hook()))
//	_ = m.Sync(ctx, s.State()) // drop leftovers from a previous run
//
// Backends implement FlagWriter (and FlagReader for guards): MemoryFlags,
// CookieFlags for a backend that sets browser cookies, and RedisFlags for
// guards running in another process.
package mirror
