// Package selector derives read-only values from store snapshots.
//
// Every function is pure, nil-safe and free of I/O. Pointers returned are the
// ones held by the snapshot, so callers can compare them to detect change:
//
//	prev := selector.SelectedCompany(s.State())
//	// ... dispatch ...
//	if selector.SelectedCompany(s.State()) != prev {
//		// selection moved
//	}
//
// Composite values are built through Memo, which recomputes only when the
// snapshot pointer changes.
package selector
