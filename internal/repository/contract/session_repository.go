package contract

import (
	"context"
	"errors"

	"pm-assistant-be/pkg/store"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository persists wizard sessions between requests.
// Get returns ErrSessionNotFound when the ID is unknown or expired.
type SessionRepository interface {
	Get(ctx context.Context, sessionID string) (*store.Session, error)
	Save(ctx context.Context, session *store.Session) error
	Delete(ctx context.Context, sessionID string) error
}
