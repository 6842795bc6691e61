package interfaces

import (
	"context"

	"github.com/rsmishra/nivesh/internal/models"
)

// PortfolioStorage persists enriched portfolio snapshots.
type PortfolioStorage interface {
	SaveSnapshot(ctx context.Context, p *models.Portfolio) error
	GetLatestSnapshot(ctx context.Context) (*models.Portfolio, error)
	GetSnapshot(ctx context.Context, id string) (*models.Portfolio, error)
	ListSnapshots(ctx context.Context) ([]string, error)
}

// ChatStorage persists chat sessions.
type ChatStorage interface {
	SaveSession(ctx context.Context, s *models.ChatSession) error
	GetSession(ctx context.Context, id string) (*models.ChatSession, error)
	ListSessions(ctx context.Context) ([]*models.ChatSession, error)
	DeleteSession(ctx context.Context, id string) error
}

// StorageManager provides access to all storage areas.
type StorageManager interface {
	PortfolioStorage() PortfolioStorage
	ChatStorage() ChatStorage
	Close() error
}
