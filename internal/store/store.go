package store

import (
	"context"
	"errors"

	"github.com/Mayan-101/torc/internal/model/sim"
)

// ErrSessionNotFound reports an unknown session id. Callers see it rather
// than a silently defaulted session.
var ErrSessionNotFound = errors.New("session not found")

// Store is the session persistence contract shared by the request handlers
// and the market loop.
//
// Update applies the mutator as an atomic per-session read-modify-write: a
// tick's mutation never races an answer submission on the same session.
// Sessions returned by Get and Update are deep copies.
type Store interface {
	Create(ctx context.Context, session *sim.Session) error
	Get(ctx context.Context, id string) (sim.Session, error)
	Update(ctx context.Context, id string, mutate func(*sim.Session)) (sim.Session, error)
	Close() error
}
