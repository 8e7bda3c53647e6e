package requestid

import "net/http"

// Middleware keeps the id already in the request context, else reuses a valid
// incoming X-Request-ID or assigns a new one. The id is stored in the request
// context and echoed in the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := FromContext(r.Context())
		if id == "" {
			id = r.Header.Get(Header)
		}
		if !Valid(id) {
			id = New()
		}
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), id)))
	})
}
