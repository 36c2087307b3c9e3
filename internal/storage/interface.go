package storage

import (
	"github.com/RachedNaguez/PcBuilder/internal/model"
)

// Storage persists sessions. Implementations must be safe for concurrent
// use by HTTP handlers.
type Storage interface {
	CreateSession(session *model.Session) error
	GetSession(sessionID string) (*model.Session, error)
	UpdateSession(session *model.Session) error
	DeleteSession(sessionID string) error
	ListSessions() ([]*model.Session, error)

	Init() error
	Close() error
}
