// Package session holds wizard sessions: the evolving configuration of one
// visitor, its undo history, and the phase flag that keeps finalize and
// checkout from running twice at once.
package session

import (
	"context"
	"errors"
	"time"

	"sitewizard/internal/types"
)

var (
	// ErrNotFound is returned by a Store when the session does not exist or
	// has expired.
	ErrNotFound = errors.New("session not found")

	// ErrVersionConflict is returned by Store.Update when the stored session
	// changed since it was read.
	ErrVersionConflict = errors.New("session version conflict")
)

// Session is the persisted state of one wizard run.
type Session struct {
	ID             string              `json:"id"`
	Config         types.Configuration `json:"config"`
	History        History             `json:"history,omitempty"`
	Phase          types.Phase         `json:"phase"`
	PhaseStartedAt time.Time           `json:"phase_started_at,omitempty"`
	Draft          *types.Draft        `json:"draft,omitempty"`
	Version        int64               `json:"version"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// Store persists sessions with optimistic concurrency.
type Store interface {
	// Create stores a new session at version 0.
	Create(ctx context.Context, s *Session) error
	// Get returns the session or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)
	// Update writes s only if the stored version equals s.Version, then
	// increments s.Version. A mismatch returns ErrVersionConflict.
	Update(ctx context.Context, s *Session) error
	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
}

// History is a bounded stack of the configurations that preceded each
// applied action, oldest first.
type History []types.Configuration

// Push returns a new history with cfg on top, dropping the oldest entries
// beyond depth. The receiver is not modified.
func (h History) Push(cfg types.Configuration, depth int) History {
	if depth <= 0 {
		return nil
	}
	out := make(History, 0, len(h)+1)
	out = append(out, h...)
	out = append(out, cfg)
	if len(out) > depth {
		out = out[len(out)-depth:]
	}
	return out
}

// Pop returns the most recent entry and the remaining history.
func (h History) Pop() (types.Configuration, History, bool) {
	if len(h) == 0 {
		return types.Configuration{}, h, false
	}
	last := h[len(h)-1]
	return last, h[:len(h)-1:len(h)-1], true
}
