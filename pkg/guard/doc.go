// Package guard protects HTTP routes with the durable session flags.
//
// Guards never touch the store; they answer "is a session active" and "is a
// company selected" from the flags the mirror writes, which makes them usable
// in code that has no access to the live session:
//
//	r := chi.NewRouter()
//	flags := guard.Cookies(cookies)
//	r.With(guard.RequireSession(flags, "/login")).Get("/companies", listCompanies)
//	r.With(guard.RequireCompany(flags, "/companies")).Get("/reports", showReports)
package guard
