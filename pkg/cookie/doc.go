// Package cookie wraps net/http cookies with shared defaults and optional
// HMAC-SHA256 signing.
//
// Defaults are application-wide session cookies: Path "/", no MaxAge,
// HttpOnly, SameSite=Lax. Signing supports key rotation: the first secret
// signs, every configured secret verifies.
//
//	m, err := cookie.New([]string{os.Getenv("COOKIE_SECRET")})
//	m.Set(w, "has_selected_company", "true")
//	_ = m.SetSigned(w, "auth_token", token)
//	token, err := m.GetSigned(r, "auth_token")
package cookie
