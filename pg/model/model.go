package model

import (
	"context"
	"errors"
	"time"

	"iotower.com/console/session"
)

// ErrSessionNotFound is returned when no session is stored for a profile
var ErrSessionNotFound = errors.New("session not found")

// SessionRecord is a session saved under a profile name, so that a console
// process can resume the session of a previous one
type SessionRecord struct {
	Profile   string           `json:"profile"`
	Snapshot  session.Snapshot `json:"snapshot"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// SessionRepository defines the storage operations for saved sessions
type SessionRepository interface {
	SaveSession(ctx context.Context, rec *SessionRecord) error
	LoadSession(ctx context.Context, profile string) (*SessionRecord, error)
	DeleteSession(ctx context.Context, profile string) error
}
