package models

import "github.com/google/uuid"

// SessionUser is the identity the external session provider hands us
// per request. Token issuance and the OAuth handshake happen elsewhere;
// this core only consumes the result.
type SessionUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Session couples the user identity with the upstream bearer token.
// An empty AccessToken means the caller is operating in public,
// read-only mode.
type Session struct {
	User        SessionUser
	AccessToken string
}
