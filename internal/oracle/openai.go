package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"

	"github.com/noah-isme/shift-scheduler-api/internal/dto"
)

// ErrMissingAssignments is returned when the model reply has no assignments array.
var ErrMissingAssignments = errors.New("oracle reply has no assignments field")

const systemPrompt = `You staff hospital shifts. You receive JSON describing shifts, their positions and the eligible candidates for each position.
Reply with JSON only, shaped as {"assignments":[{"shift_id":"...","position_id":"...","employee_id":"..."}]}.
Rules: only pick employees listed as candidates for that position; never give one employee two shifts on the same date;
never exceed requiredCount; spread hours evenly using hoursSoFar; avoid HIGH or CRITICAL fatigue tiers when others are available;
respect prefersWeekends when possible.`

// Config configures the OpenAI compatible endpoint.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}

// OpenAIOracle asks a chat-completion model for assignment suggestions.
type OpenAIOracle struct {
	client openai.Client
	cfg    Config
	logger *zap.Logger
}

// NewOpenAIOracle builds an oracle against the configured endpoint.
func NewOpenAIOracle(cfg Config, logger *zap.Logger) *OpenAIOracle {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIOracle{client: openai.NewClient(opts...), cfg: cfg, logger: logger}
}

// Suggest sends the request and parses the model reply. Any transport or
// format problem is returned as an error; callers treat it as no suggestions.
func (o *OpenAIOracle) Suggest(ctx context.Context, req dto.OracleRequest) ([]dto.OracleSuggestion, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode oracle request: %w", err)
	}

	jsonReply := shared.NewResponseFormatJSONObjectParam()
	response, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: o.cfg.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(string(payload)),
		},
		Temperature:    openai.Float(o.cfg.Temperature),
		MaxTokens:      openai.Int(int64(o.cfg.MaxTokens)),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{OfJSONObject: &jsonReply},
	})
	if err != nil {
		return nil, fmt.Errorf("oracle completion: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("oracle returned no choices")
	}

	suggestions, err := ParseSuggestions(response.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("oracle replied", zap.Int("shifts", len(req.Shifts)), zap.Int("suggestions", len(suggestions)))
	return suggestions, nil
}

// ParseSuggestions extracts the assignments array from a model reply,
// tolerating markdown code fences around the JSON.
func ParseSuggestions(content string) ([]dto.OracleSuggestion, error) {
	body := strings.TrimSpace(content)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	}
	if start, end := strings.Index(body, "{"), strings.LastIndex(body, "}"); start >= 0 && end > start {
		body = body[start : end+1]
	}

	var reply struct {
		Assignments *[]dto.OracleSuggestion `json:"assignments"`
	}
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		return nil, fmt.Errorf("decode oracle reply: %w", err)
	}
	if reply.Assignments == nil {
		return nil, ErrMissingAssignments
	}
	return *reply.Assignments, nil
}
