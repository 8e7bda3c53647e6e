// Package fetch performs the network exchanges behind queries.
//
// Endpoints name one of two configured roots (API_DEV_ROOT or API_CHAT_ROOT)
// and a path with {name} placeholders:
//
//	reports := fetch.Get(fetch.RootDev, "/companies/{company_id}/reports")
//	list, err := fetch.Call[[]Report](ctx, exec, reports, map[string]string{"company_id": id})
//
// Authenticated endpoints carry the current bearer token through an oauth2
// transport. With no token the call fails with ErrAuthMissing before anything
// is sent. Every request carries Accept: application/json and an
// X-Request-ID, taken from the context when present.
//
// A non-2xx response is a *StatusError; it and every transport failure match
// ErrNetworkFailure with errors.Is.
package fetch
