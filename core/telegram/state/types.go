package state

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Stage identifies a dialogue step.
type Stage string

// StageIdle indicates there is no active conversation with the user.
const StageIdle Stage = "idle"

// Draft accumulates the fields collected so far.
type Draft struct {
	CategoryID  int64   `json:"category_id,omitempty"`
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Link        *string `json:"link,omitempty"`
	PhotoRef    *string `json:"photo_ref,omitempty"`
	DocumentRef *string `json:"document_ref,omitempty"`
}

// Session is the open dialogue of one principal.
type Session struct {
	ID         string    `json:"id"`
	Stage      Stage     `json:"stage"`
	Privileged bool      `json:"privileged,omitempty"`
	Draft      Draft     `json:"draft"`
	StartedAt  time.Time `json:"started_at"`
}

// NewSession opens a session at the given stage with a fresh correlation id.
func NewSession(stage Stage, privileged bool) Session {
	return Session{
		ID:         uuid.NewString(),
		Stage:      stage,
		Privileged: privileged,
		StartedAt:  time.Now().UTC(),
	}
}

// Open reports whether the session is an active dialogue.
func (s Session) Open() bool {
	return s.Stage != "" && s.Stage != StageIdle
}

// Store persists sessions keyed by principal.
type Store interface {
	// Get returns the session and whether one exists.
	Get(ctx context.Context, principal int64) (Session, bool, error)
	Set(ctx context.Context, principal int64, s Session) error
	// Clear is a no-op when nothing is stored.
	Clear(ctx context.Context, principal int64) error
	Ping(ctx context.Context) error
	Close() error
}
