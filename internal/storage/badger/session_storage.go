package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/rsmishra/nivesh/internal/common"
	"github.com/rsmishra/nivesh/internal/models"
)

type sessionStorage struct {
	store  *Store
	logger *common.Logger
}

// NewSessionStorage creates a new ChatStorage backed by BadgerHold.
func NewSessionStorage(store *Store, logger *common.Logger) *sessionStorage {
	return &sessionStorage{store: store, logger: logger}
}

func (s *sessionStorage) SaveSession(_ context.Context, session *models.ChatSession) error {
	if session.ID == "" {
		return fmt.Errorf("session id cannot be empty")
	}
	session.UpdatedAt = time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = session.UpdatedAt
	}

	if err := s.store.db.Upsert(session.ID, session); err != nil {
		return fmt.Errorf("failed to save session '%s': %w", session.ID, err)
	}
	s.logger.Debug().Str("id", session.ID).Int("messages", len(session.Messages)).Msg("Session saved")
	return nil
}

func (s *sessionStorage) GetSession(_ context.Context, id string) (*models.ChatSession, error) {
	var session models.ChatSession
	err := s.store.db.Get(id, &session)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("session '%s' not found", id)
		}
		return nil, fmt.Errorf("failed to get session '%s': %w", id, err)
	}
	return &session, nil
}

func (s *sessionStorage) ListSessions(_ context.Context) ([]*models.ChatSession, error) {
	var sessions []models.ChatSession
	if err := s.store.db.Find(&sessions, nil); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	out := make([]*models.ChatSession, len(sessions))
	for i := range sessions {
		out[i] = &sessions[i]
	}
	return out, nil
}

func (s *sessionStorage) DeleteSession(_ context.Context, id string) error {
	err := s.store.db.Delete(id, models.ChatSession{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete session '%s': %w", id, err)
	}
	s.logger.Debug().Str("id", id).Msg("Session deleted")
	return nil
}
