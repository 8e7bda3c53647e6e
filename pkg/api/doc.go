// Package api wires the product endpoints to gated queries.
//
//	s := store.New()
//	queries := query.NewClient()
//	queries.ResetOnLogout(s)
//	svc := api.New(api.DefaultConfig(), s, queries, api.NewExecutor(fetchCfg, s))
//
//	if _, err := svc.SignIn(ctx, token); err != nil { ... }
//	_ = s.Dispatch(ctx, store.SelectCompany{CompanyID: id})
//
//	obs := svc.Reports().Observe()
//	defer obs.Close()
//	res, _ := obs.Wait(ctx)
//
// Queries need the session token, and reports and thread messages also need
// a selected company. Until those are present the queries stay disabled and
// no request is sent.
package api
