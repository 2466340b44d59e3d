package session

import (
	"context"
	"time"
)

// Data is the per-session state. LastLogin is session-scoped only and never
// written to the relational store.
type Data struct {
	UserID    uint      `json:"user_id"`
	LastLogin time.Time `json:"last_login"`
}

// Store tracks authenticated sessions across requests.
type Store interface {
	// Create opens a session for the user, recording now as the login time,
	// and returns the opaque session id.
	Create(ctx context.Context, userID uint) (string, error)
	// Get returns the session data, or nil when the id is unknown or expired.
	Get(ctx context.Context, id string) (*Data, error)
	// Delete ends the session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}
