// Package interfaces defines service contracts for Nivesh
package interfaces

import (
	"context"

	"github.com/rsmishra/nivesh/internal/models"
)

// MarketDataClient provides access to the market-data provider.
type MarketDataClient interface {
	// GetQuote retrieves the live quote for a symbol
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)

	// GetPriceSummary retrieves the lighter quote-summary price block
	GetPriceSummary(ctx context.Context, symbol string) (*models.Quote, error)

	// GetDailyBars retrieves a short trailing window of daily bars
	GetDailyBars(ctx context.Context, symbol string, days int) (*models.ChartResponse, error)
}

// GeminiClient provides access to the Gemini API.
type GeminiClient interface {
	// GenerateContent generates AI content from a prompt
	GenerateContent(ctx context.Context, prompt string) (string, error)

	// ExtractHoldings extracts structured holdings from statement text
	ExtractHoldings(ctx context.Context, statementText string) ([]models.Holding, error)

	// ChatWithTools runs a bounded function-calling loop over the given
	// tool set and returns the final text response.
	ChatWithTools(ctx context.Context, systemPrompt, userMessage string, tools []ToolDefinition) (string, error)
}

// ToolDefinition describes one callable tool exposed to the chat agent.
type ToolDefinition struct {
	Name        string
	Description string
	// Parameters maps parameter name to a human-readable description.
	// All parameters are strings; tools parse what they need.
	Parameters map[string]string
	// Handler executes the tool and returns a JSON-encoded result.
	Handler func(ctx context.Context, args map[string]string) (string, error)
}
