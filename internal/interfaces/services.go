package interfaces

import (
	"context"

	"github.com/rsmishra/nivesh/internal/models"
)

// PriceFetcher retrieves the most recent tradable price for a symbol.
// It never fails: when every source is exhausted it returns the fallback
// with fresh == false.
type PriceFetcher interface {
	FetchPrice(ctx context.Context, ticker string, fallback float64) (price float64, fresh bool)
}

// PortfolioService ingests statements and maintains the enriched snapshot.
type PortfolioService interface {
	// IngestStatement parses a demat statement PDF, resolves tickers,
	// enriches the holdings and persists a new snapshot.
	IngestStatement(ctx context.Context, pdfPath string) (*models.Portfolio, error)

	// Refresh re-enriches the latest snapshot with current prices and
	// persists the result as a new snapshot.
	Refresh(ctx context.Context) (*models.Portfolio, error)

	// Latest returns the most recent snapshot.
	Latest(ctx context.Context) (*models.Portfolio, error)
}

// ChatService answers portfolio and market questions within a session.
type ChatService interface {
	Chat(ctx context.Context, sessionID, message string) (*ChatResult, error)
	CreateSession(ctx context.Context) (*models.ChatSession, error)
	ListSessions(ctx context.Context) ([]*models.ChatSession, error)
	GetSession(ctx context.Context, id string) (*models.ChatSession, error)
	DeleteSession(ctx context.Context, id string) error
	ResetSession(ctx context.Context, id string) error
}

// ChatResult is the outcome of one chat turn.
type ChatResult struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
	Success   bool   `json:"success"`
}
