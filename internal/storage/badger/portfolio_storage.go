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

type portfolioStorage struct {
	store  *Store
	logger *common.Logger
}

// NewPortfolioStorage creates a new PortfolioStorage backed by BadgerHold.
func NewPortfolioStorage(store *Store, logger *common.Logger) *portfolioStorage {
	return &portfolioStorage{store: store, logger: logger}
}

func (s *portfolioStorage) SaveSnapshot(_ context.Context, portfolio *models.Portfolio) error {
	if portfolio.ID == "" {
		return fmt.Errorf("snapshot id cannot be empty")
	}
	if portfolio.CreatedAt.IsZero() {
		portfolio.CreatedAt = time.Now()
	}

	if err := s.store.db.Upsert(portfolio.ID, portfolio); err != nil {
		return fmt.Errorf("failed to save snapshot '%s': %w", portfolio.ID, err)
	}
	s.logger.Debug().Str("id", portfolio.ID).Int("holdings", len(portfolio.Holdings)).Msg("Snapshot saved")
	return nil
}

func (s *portfolioStorage) GetSnapshot(_ context.Context, id string) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	err := s.store.db.Get(id, &portfolio)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("snapshot '%s' not found", id)
		}
		return nil, fmt.Errorf("failed to get snapshot '%s': %w", id, err)
	}
	return &portfolio, nil
}

func (s *portfolioStorage) GetLatestSnapshot(ctx context.Context) (*models.Portfolio, error) {
	snapshots, err := s.findAll()
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, fmt.Errorf("no portfolio snapshots found")
	}
	latest := snapshots[0]
	return &latest, nil
}

func (s *portfolioStorage) ListSnapshots(_ context.Context) ([]string, error) {
	snapshots, err := s.findAll()
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(snapshots))
	for i, p := range snapshots {
		ids[i] = p.ID
	}
	return ids, nil
}

// findAll returns all snapshots, newest first.
func (s *portfolioStorage) findAll() ([]models.Portfolio, error) {
	var snapshots []models.Portfolio
	if err := s.store.db.Find(&snapshots, nil); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	sort.Slice(snapshots, func(i, j int) bool {
		if snapshots[i].CreatedAt.Equal(snapshots[j].CreatedAt) {
			return snapshots[i].ID > snapshots[j].ID
		}
		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})
	return snapshots, nil
}
