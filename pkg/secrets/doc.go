// Package secrets seals short values, such as the bearer token kept in the
// auth_token durable flag, before they reach a shared backend.
//
// A Sealer derives an AES-256-GCM key from a 32-byte master key and a context
// string (the flag namespace) with HKDF-SHA-256. Sealed values carry their
// nonce and are base64url encoded, so they fit in cookies and Redis hashes.
//
//	key, _ := secrets.ParseKey(os.Getenv("FLAGS_SECRET"))
//	s, err := secrets.NewSealer(key, "tab-1")
//	if err != nil {
//		return err
//	}
//	sealed, _ := s.Seal(token)
//	token, err = s.Open(sealed)
package secrets
