package models

import "time"

// SessionStatus is the observable state of the user session.
type SessionStatus struct {
	LoggedIn  bool       `json:"logged_in"`
	User      string     `json:"user"`
	UserIRI   string     `json:"user_iri,omitempty"` // token subject
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// LoginResult is the outcome of a login exchange. On failure Token carries the
// upstream error payload and User is "-".
type LoginResult struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    string `json:"user"`
}

// LogoutResult is the outcome of a logout exchange. Message is the upstream
// status message on success and the error payload on failure.
type LogoutResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
