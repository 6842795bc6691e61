// Package chat provides the portfolio Q&A agent and session management.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rsmishra/nivesh/internal/common"
	"github.com/rsmishra/nivesh/internal/interfaces"
	"github.com/rsmishra/nivesh/internal/models"
)

const (
	// historyWindow is how many prior messages are replayed into the
	// system prompt for conversational context.
	historyWindow = 10

	// titleLimit caps a session title derived from the first message.
	titleLimit = 50

	defaultTitle = "New Chat"
)

// ErrNotConfigured is returned by Chat when no LLM client is available.
var ErrNotConfigured = errors.New("chat not configured: missing Gemini API key")

// Service implements ChatService.
type Service struct {
	sessions   interfaces.ChatStorage
	portfolios interfaces.PortfolioStorage
	gemini     interfaces.GeminiClient
	fetcher    interfaces.PriceFetcher
	market     interfaces.MarketDataClient
	logger     *common.Logger
}

// NewService creates a new chat service.
func NewService(
	sessions interfaces.ChatStorage,
	portfolios interfaces.PortfolioStorage,
	gemini interfaces.GeminiClient,
	fetcher interfaces.PriceFetcher,
	market interfaces.MarketDataClient,
	logger *common.Logger,
) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		sessions:   sessions,
		portfolios: portfolios,
		gemini:     gemini,
		fetcher:    fetcher,
		market:     market,
		logger:     logger,
	}
}

const systemPromptTemplate = `You are a helpful portfolio assistant for an Indian stock market investor.

PORTFOLIO DATA:
%s

GUIDELINES:
- Be helpful and provide actionable insights.
- Use tools to fetch live prices or detailed holding data when needed.
- Reference specific holdings when relevant.
- Format amounts in Indian style (rupee symbol, lakhs/crores).
- Holdings flagged as stale were priced at their buy cost because no live quote was available; say so instead of reporting them as flat.

RECENT CONVERSATION:
%s`

// Chat runs one conversational turn in the given session, creating the
// session if the id is empty or unknown.
func (s *Service) Chat(ctx context.Context, sessionID, message string) (*interfaces.ChatResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("message cannot be empty")
	}
	if s.gemini == nil {
		return nil, ErrNotConfigured
	}

	session := s.getOrCreateSession(ctx, sessionID)

	systemPrompt := fmt.Sprintf(systemPromptTemplate,
		s.portfolioContext(ctx),
		formatHistory(session.RecentMessages(historyWindow)))

	response, err := s.gemini.ChatWithTools(ctx, systemPrompt, message, s.tools())
	if err != nil {
		// The agent's failure is part of the conversation, not an API
		// error; the session stays usable.
		s.logger.Error().Err(err).Str("session", session.ID).Msg("Chat turn failed")
		return &interfaces.ChatResult{
			Response:  fmt.Sprintf("Sorry, I encountered an error: %v", err),
			SessionID: session.ID,
			Success:   false,
		}, nil
	}

	now := time.Now()
	session.Messages = append(session.Messages,
		models.ChatMessage{Role: models.RoleUser, Content: message, CreatedAt: now},
		models.ChatMessage{Role: models.RoleAssistant, Content: response, CreatedAt: now},
	)
	if session.Title == defaultTitle {
		session.Title = deriveTitle(message)
	}

	if err := s.sessions.SaveSession(ctx, session); err != nil {
		s.logger.Error().Err(err).Str("session", session.ID).Msg("Failed to save session")
	}

	return &interfaces.ChatResult{
		Response:  response,
		SessionID: session.ID,
		Success:   true,
	}, nil
}

// CreateSession creates a new empty session.
func (s *Service) CreateSession(ctx context.Context) (*models.ChatSession, error) {
	session := newSession()
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// ListSessions returns all sessions, most recently updated first.
func (s *Service) ListSessions(ctx context.Context) ([]*models.ChatSession, error) {
	return s.sessions.ListSessions(ctx)
}

// GetSession returns a session with its messages.
func (s *Service) GetSession(ctx context.Context, id string) (*models.ChatSession, error) {
	return s.sessions.GetSession(ctx, id)
}

// DeleteSession removes a session and its messages.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	return s.sessions.DeleteSession(ctx, id)
}

// ResetSession clears a session's history but keeps the session.
func (s *Service) ResetSession(ctx context.Context, id string) error {
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return err
	}
	session.Messages = nil
	session.Title = defaultTitle
	return s.sessions.SaveSession(ctx, session)
}

func (s *Service) getOrCreateSession(ctx context.Context, sessionID string) *models.ChatSession {
	if sessionID != "" {
		if session, err := s.sessions.GetSession(ctx, sessionID); err == nil {
			return session
		}
		s.logger.Debug().Str("session", sessionID).Msg("Session not found, creating new one")
	}
	return newSession()
}

func newSession() *models.ChatSession {
	now := time.Now()
	return &models.ChatSession{
		ID:        uuid.New().String(),
		Title:     defaultTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// portfolioContext formats the latest snapshot for the system prompt.
func (s *Service) portfolioContext(ctx context.Context) string {
	portfolio, err := s.portfolios.GetLatestSnapshot(ctx)
	if err != nil {
		return "No portfolio data available."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Total Investment: %.2f\n", portfolio.TotalInvestment)
	fmt.Fprintf(&sb, "Current Value: %.2f\n", portfolio.TotalCurrentValue)
	fmt.Fprintf(&sb, "Total P&L: %+.2f (%+.2f%%)\n", portfolio.TotalPnL, portfolio.TotalPnLPercentage)
	fmt.Fprintf(&sb, "Number of Holdings: %d\n\nHoldings:\n", len(portfolio.Holdings))
	for _, h := range portfolio.Holdings {
		fmt.Fprintf(&sb, "- %s: %.2f units @ %.2f, P&L %+.2f%%", h.TickerSymbol, h.Quantity, h.AvgBuyPrice, h.PnLPercentage)
		if !h.PriceFresh {
			sb.WriteString(" (stale price)")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatHistory(messages []models.ChatMessage) string {
	if len(messages) == 0 {
		return "No previous conversation."
	}
	var sb strings.Builder
	for _, m := range messages {
		fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Content)
	}
	return sb.String()
}

func deriveTitle(message string) string {
	title := strings.TrimSpace(message)
	if len(title) > titleLimit {
		title = title[:titleLimit] + "..."
	}
	if title == "" {
		return defaultTitle
	}
	return title
}

// Ensure Service implements ChatService
var _ interfaces.ChatService = (*Service)(nil)
