package badger

import (
	"fmt"

	"github.com/rsmishra/nivesh/internal/common"
	"github.com/rsmishra/nivesh/internal/interfaces"
)

// Manager implements interfaces.StorageManager on a single BadgerHold store.
type Manager struct {
	store      *Store
	portfolios *portfolioStorage
	sessions   *sessionStorage
	logger     *common.Logger
}

// NewManager opens the store at the configured path and wires the storage areas.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	store, err := NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	logger.Info().Str("path", config.Storage.Path).Msg("Storage manager initialized")

	return &Manager{
		store:      store,
		portfolios: NewPortfolioStorage(store, logger),
		sessions:   NewSessionStorage(store, logger),
		logger:     logger,
	}, nil
}

func (m *Manager) PortfolioStorage() interfaces.PortfolioStorage {
	return m.portfolios
}

func (m *Manager) ChatStorage() interfaces.ChatStorage {
	return m.sessions
}

func (m *Manager) Close() error {
	return m.store.Close()
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
