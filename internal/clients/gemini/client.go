// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"github.com/rsmishra/nivesh/internal/common"
	"github.com/rsmishra/nivesh/internal/interfaces"
	"github.com/rsmishra/nivesh/internal/models"
)

const (
	DefaultModel = "gemini-2.0-flash"

	// maxToolRounds bounds the function-calling loop so a misbehaving
	// model cannot spin tool calls forever.
	maxToolRounds = 6
)

// Client implements the GeminiClient interface
type Client struct {
	client *genai.Client
	model  string
	logger *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client: genaiClient,
		model:  DefaultModel,
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// GenerateContent generates AI content from a prompt
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug().Str("model", c.model).Msg("Generating content")

	contents := genai.Text(prompt)
	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(result)
}

// holdingsSchema describes the JSON the model must return for statement
// extraction: an object with a holdings array of raw holding records.
var holdingsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"holdings": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"stock_name":     {Type: genai.TypeString, Description: "Full company/fund name as shown in the statement"},
					"isin":           {Type: genai.TypeString, Description: "ISIN code like INE... or INF..."},
					"quantity":       {Type: genai.TypeNumber, Description: "Number of shares/units held"},
					"avg_buy_price":  {Type: genai.TypeNumber, Description: "Average purchase price per share (Avg Unit Cost)"},
					"ticker_symbol":  {Type: genai.TypeString, Description: "Leave empty, resolved later from the ISIN"},
					"sector":         {Type: genai.TypeString, Description: "Industry sector"},
					"invested_value": {Type: genai.TypeNumber, Description: "Total amount invested, 0 if not shown"},
				},
				Required: []string{"stock_name", "quantity", "avg_buy_price"},
			},
		},
	},
	Required: []string{"holdings"},
}

const extractionPrompt = `You are a specialized financial data extractor for Indian demat statements.

TASK: Extract all holdings from the provided statement.

RULES:
1. Extract the ISIN code (starts with INE or INF) for every holding where it appears.
2. Keep the full stock_name exactly as shown in the statement.
3. Extract the quantity (number of shares/units) and the average buy price (Avg Unit Cost).
4. Leave ticker_symbol empty - it will be resolved later using the ISIN.
5. Extract sector and invested_value when the statement shows them, otherwise leave them zero/empty.

Statement content:
`

// ExtractHoldings extracts structured holdings from statement text
func (c *Client) ExtractHoldings(ctx context.Context, statementText string) ([]models.Holding, error) {
	c.logger.Debug().Str("model", c.model).Int("chars", len(statementText)).Msg("Extracting holdings from statement")

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   holdingsSchema,
	}

	contents := genai.Text(extractionPrompt + statementText)
	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("failed to extract holdings: %w", err)
	}

	text, err := extractTextFromResponse(result)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Holdings []models.Holding `json:"holdings"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse extracted holdings: %w", err)
	}

	return payload.Holdings, nil
}

// ChatWithTools runs a bounded function-calling loop: the model either
// answers directly or requests tool calls, whose results are fed back until
// a text answer arrives.
func (c *Client) ChatWithTools(ctx context.Context, systemPrompt, userMessage string, tools []interfaces.ToolDefinition) (string, error) {
	c.logger.Debug().Str("model", c.model).Int("tools", len(tools)).Msg("Chat with tools")

	byName := make(map[string]interfaces.ToolDefinition, len(tools))
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, tool := range tools {
		byName[tool.Name] = tool
		decls = append(decls, toFunctionDeclaration(tool))
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}
	if len(decls) > 0 {
		config.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	contents := []*genai.Content{genai.NewContentFromText(userMessage, genai.RoleUser)}

	for round := 0; round < maxToolRounds; round++ {
		result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
		if err != nil {
			return "", fmt.Errorf("failed to generate content: %w", err)
		}

		if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
			return "", fmt.Errorf("no content generated")
		}
		candidate := result.Candidates[0]

		calls := result.FunctionCalls()
		if len(calls) == 0 {
			return extractTextFromResponse(result)
		}

		contents = append(contents, candidate.Content)

		parts := make([]*genai.Part, 0, len(calls))
		for _, call := range calls {
			output := c.executeTool(ctx, byName, call)
			parts = append(parts, genai.NewPartFromFunctionResponse(call.Name, map[string]any{"result": output}))
		}
		contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
	}

	return "", fmt.Errorf("tool loop exceeded %d rounds without a final answer", maxToolRounds)
}

// executeTool runs one requested tool call; failures are reported back to
// the model as tool output rather than aborting the conversation.
func (c *Client) executeTool(ctx context.Context, byName map[string]interfaces.ToolDefinition, call *genai.FunctionCall) string {
	tool, ok := byName[call.Name]
	if !ok {
		c.logger.Warn().Str("tool", call.Name).Msg("Model requested unknown tool")
		return fmt.Sprintf(`{"error":"unknown tool %s"}`, call.Name)
	}

	args := make(map[string]string, len(call.Args))
	for k, v := range call.Args {
		if s, ok := v.(string); ok {
			args[k] = s
		} else {
			args[k] = fmt.Sprintf("%v", v)
		}
	}

	c.logger.Debug().Str("tool", call.Name).Msg("Executing tool call")

	output, err := tool.Handler(ctx, args)
	if err != nil {
		c.logger.Warn().Err(err).Str("tool", call.Name).Msg("Tool call failed")
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	return output
}

func toFunctionDeclaration(tool interfaces.ToolDefinition) *genai.FunctionDeclaration {
	properties := make(map[string]*genai.Schema, len(tool.Parameters))
	for name, description := range tool.Parameters {
		properties[name] = &genai.Schema{Type: genai.TypeString, Description: description}
	}

	decl := &genai.FunctionDeclaration{
		Name:        tool.Name,
		Description: tool.Description,
	}
	if len(properties) > 0 {
		decl.Parameters = &genai.Schema{
			Type:       genai.TypeObject,
			Properties: properties,
		}
	}
	return decl
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	return text, nil
}

// Ensure Client implements GeminiClient
var _ interfaces.GeminiClient = (*Client)(nil)
