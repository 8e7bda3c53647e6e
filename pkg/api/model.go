package api

import "time"

type Report struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Title     string    `json:"title"`
	Period    string    `json:"period"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Message struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"thread_id"`
	Author    string    `json:"author"`
	Role      string    `json:"role"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionParams is the parameter set of operations that need only the token.
// Session is a short digest of the token, so entries of different sessions
// never share a key.
type SessionParams struct {
	Session string `json:"session"`
}

type CompanyParams struct {
	CompanyID string `json:"company_id"`
}

type ThreadParams struct {
	CompanyID string `json:"company_id"`
	ThreadID  string `json:"thread_id"`
}
