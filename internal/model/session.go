package model

import "time"

// Session is the explicit per-request session object. It is created at
// login, carried through the request context by the auth middleware, and
// torn down on logout.
type Session struct {
	ProfileID string    `json:"profile_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionEventType identifies a session lifecycle transition.
type SessionEventType string

const (
	SessionCreated   SessionEventType = "created"
	SessionRefreshed SessionEventType = "refreshed"
	SessionRevoked   SessionEventType = "revoked"
)

// SessionEvent notifies long-lived clients of session state changes,
// replacing the original push-listener model with an explicit
// subscription interface.
type SessionEvent struct {
	Type      SessionEventType `json:"type"`
	ProfileID string           `json:"profile_id"`
	At        time.Time        `json:"at"`
}
