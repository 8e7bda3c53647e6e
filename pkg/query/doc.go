// Package query gates data fetches on session state and caches their results.
//
// A Definition says which operation to call, how to derive its parameters
// from a store snapshot, and how long results stay fresh. The query is
// enabled only while the caller override is on and every parameter is
// present; a missing token or company id simply disables it, it is never an
// error for the consumer.
//
//	reports := query.New(client, s, query.Definition[ReportsParams, []Report]{
//		Operation: "reports",
//		Params: func(st *store.State) (ReportsParams, error) {
//			if st.SelectedCompany == nil {
//				return ReportsParams{}, query.ErrParameterMissing
//			}
//			return ReportsParams{CompanyID: st.SelectedCompany.ID}, nil
//		},
//		Fetch:      fetchReports,
//		StaleTime:  time.Minute,
//		MaxRetries: 1,
//	})
//
//	obs := reports.Observe()
//	defer obs.Close()
//	res, err := obs.Wait(ctx)
//
// Entries are keyed by operation plus JSON-encoded parameters. Concurrent
// observers of one key share a single in-flight fetch. When the last of them
// goes away the fetch is cancelled, its late result is dropped and the entry
// falls back to what it held before.
//
// A failed fetch is retried MaxRetries times, immediately unless RetryDelay is
// set. After that the entry stays in error until Refetch or Invalidate, or
// until the parameters change and a different entry is used.
package query
