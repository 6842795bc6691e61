// Package portfolio ingests demat statements and maintains the enriched
// portfolio snapshot.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/rsmishra/nivesh/internal/common"
	"github.com/rsmishra/nivesh/internal/interfaces"
	"github.com/rsmishra/nivesh/internal/models"
	"github.com/rsmishra/nivesh/internal/resolver"
)

// ErrExtractionNotConfigured is returned by IngestStatement when no LLM
// client is available to parse statements.
var ErrExtractionNotConfigured = errors.New("statement extraction not configured: missing Gemini API key")

// defaultPaceInterval spaces price fetches across holdings to stay polite
// with the market-data provider. The per-request limiter inside the client
// still applies on top.
const defaultPaceInterval = 500 * time.Millisecond

// Service implements PortfolioService.
type Service struct {
	storage  interfaces.PortfolioStorage
	fetcher  interfaces.PriceFetcher
	gemini   interfaces.GeminiClient
	resolver *resolver.Resolver
	pace     *rate.Limiter
	logger   *common.Logger
}

// ServiceOption configures the service.
type ServiceOption func(*Service)

// WithPace sets the limiter that spaces per-holding price fetches.
// Tests pass rate.NewLimiter(rate.Inf, 0) to skip wall-clock delays.
func WithPace(limiter *rate.Limiter) ServiceOption {
	return func(s *Service) {
		s.pace = limiter
	}
}

// NewService creates a new portfolio service.
func NewService(
	storage interfaces.PortfolioStorage,
	fetcher interfaces.PriceFetcher,
	gemini interfaces.GeminiClient,
	res *resolver.Resolver,
	logger *common.Logger,
	opts ...ServiceOption,
) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	s := &Service{
		storage:  storage,
		fetcher:  fetcher,
		gemini:   gemini,
		resolver: res,
		pace:     rate.NewLimiter(rate.Every(defaultPaceInterval), 1),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IngestStatement parses a demat statement PDF, resolves each holding to a
// canonical ticker, enriches the batch with live prices and persists the
// result as a fresh snapshot.
func (s *Service) IngestStatement(ctx context.Context, pdfPath string) (*models.Portfolio, error) {
	if s.gemini == nil {
		return nil, ErrExtractionNotConfigured
	}

	s.logger.Info().Str("path", pdfPath).Msg("Ingesting statement")

	text, err := extractPDFText(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to extract statement text: %w", err)
	}

	holdings, err := s.gemini.ExtractHoldings(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to extract holdings: %w", err)
	}
	if len(holdings) == 0 {
		return nil, fmt.Errorf("no holdings found in statement")
	}

	s.resolveTickers(holdings)

	portfolio := &models.Portfolio{
		ID:        newSnapshotID(),
		Holdings:  holdings,
		CreatedAt: time.Now(),
	}

	s.Enrich(ctx, portfolio)

	if err := s.storage.SaveSnapshot(ctx, portfolio); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	s.logger.Info().Int("holdings", len(holdings)).Str("id", portfolio.ID).Msg("Statement ingested")
	return portfolio, nil
}

// Refresh re-enriches the latest snapshot with current prices and persists
// the result as a new snapshot. The prior snapshot is left untouched.
func (s *Service) Refresh(ctx context.Context) (*models.Portfolio, error) {
	latest, err := s.storage.GetLatestSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("no portfolio to refresh: %w", err)
	}

	fresh := &models.Portfolio{
		ID:        newSnapshotID(),
		Holdings:  append([]models.Holding(nil), latest.Holdings...),
		CreatedAt: time.Now(),
	}

	s.Enrich(ctx, fresh)

	if err := s.storage.SaveSnapshot(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	return fresh, nil
}

// newSnapshotID returns a timestamped identifier with a random suffix so
// snapshots created within the same second stay distinct.
func newSnapshotID() string {
	return time.Now().Format("20060102_150405") + "_" + uuid.New().String()[:8]
}

// Latest returns the most recent snapshot.
func (s *Service) Latest(ctx context.Context) (*models.Portfolio, error) {
	return s.storage.GetLatestSnapshot(ctx)
}

// resolveTickers assigns a canonical ticker to every holding. Unresolved
// holdings keep the raw hint as a symbol of last resort, or the UNKNOWN
// sentinel if there is no hint either.
func (s *Service) resolveTickers(holdings []models.Holding) {
	for i := range holdings {
		h := &holdings[i]
		if ticker, ok := s.resolver.Resolve(h.ISIN, h.TickerSymbol); ok {
			h.TickerSymbol = ticker
			s.logger.Debug().Str("isin", h.ISIN).Str("ticker", ticker).Msg("Resolved ticker")
			continue
		}
		if h.TickerSymbol == "" {
			h.TickerSymbol = models.UnknownTicker
		}
		s.logger.Warn().Str("isin", h.ISIN).Str("ticker", h.TickerSymbol).Msg("Identifier unresolved")
	}
}

// Enrich populates market fields and aggregate totals on the snapshot,
// holding by holding in input order. A holding whose price cannot be
// fetched degrades to its cost basis with PriceFresh false; no failure
// aborts the batch, and every derived field is written on every pass.
func (s *Service) Enrich(ctx context.Context, p *models.Portfolio) {
	var totalInvestment, totalCurrentValue float64
	succeeded := 0

	for i := range p.Holdings {
		h := &p.Holdings[i]

		avgBuyPrice := h.AvgBuyPrice
		if avgBuyPrice == 0 {
			avgBuyPrice = h.BuyPrice
		}

		investedValue := h.InvestedValue
		if investedValue == 0 {
			investedValue = h.Quantity * avgBuyPrice
		}
		totalInvestment += investedValue

		// On a cancelled context the fetch below fails fast and the
		// holding falls back to its cost basis; the batch still
		// completes with every field populated.
		if err := s.pace.Wait(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("Enrichment pacing interrupted")
		}

		currentPrice, fresh := s.fetcher.FetchPrice(ctx, h.TickerSymbol, avgBuyPrice)
		currentValue := h.Quantity * currentPrice
		totalCurrentValue += currentValue

		pnlAbsolute := currentValue - investedValue
		pnlPercentage := 0.0
		if avgBuyPrice > 0 {
			pnlPercentage = (currentPrice - avgBuyPrice) / avgBuyPrice * 100
		}

		h.AvgBuyPrice = avgBuyPrice
		h.InvestedValue = models.Round2(investedValue)
		h.CurrentPrice = models.Round2(currentPrice)
		h.CurrentValue = models.Round2(currentValue)
		h.PnLAbsolute = models.Round2(pnlAbsolute)
		h.PnLPercentage = models.Round2(pnlPercentage)
		h.PriceFresh = fresh

		if fresh {
			succeeded++
		}
	}

	p.TotalInvestment = models.Round2(totalInvestment)
	p.TotalCurrentValue = models.Round2(totalCurrentValue)
	p.TotalPnL = models.Round2(totalCurrentValue - totalInvestment)
	if totalInvestment > 0 {
		p.TotalPnLPercentage = models.Round2((totalCurrentValue - totalInvestment) / totalInvestment * 100)
	} else {
		p.TotalPnLPercentage = 0
	}
	p.EnrichedAt = time.Now()

	s.logger.Info().
		Int("holdings", len(p.Holdings)).
		Int("fresh", succeeded).
		Int("stale", len(p.Holdings)-succeeded).
		Msg("Portfolio enriched")
}

// Ensure Service implements PortfolioService
var _ interfaces.PortfolioService = (*Service)(nil)
