// Package oracle adapts the OpenAI chat-completions API to the TextOracle
// port. The oracle is a best-effort external service; this package only moves
// text in and out, all response interpretation happens in the analyzer.
package oracle

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"riskwatch/internal/bootstrap/config"
	"riskwatch/internal/bootstrap/logging"
	"riskwatch/internal/errs"
	"riskwatch/internal/ports"
)

// ErrNotConfigured is returned by Generate on a disabled oracle. Callers are
// expected to check Available first and degrade to sentinel values.
var ErrNotConfigured = errors.New("oracle is not configured")

// New builds a TextOracle from config. A missing API key yields the disabled
// variant instead of an error: submissions still work, they just store
// sentinel analysis values.
func New(ctx context.Context, cfg config.OracleConfig) ports.TextOracle {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "oracle"))

	if cfg.APIKey == "" {
		logging.Warn(logCtx, "oracle disabled, no api key configured")
		return Disabled{}
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	logging.Info(logCtx, "oracle client initialized", slog.String("model", cfg.Model))
	return &Client{
		api:     openai.NewClient(opts...),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

// Client is the live oracle backed by the OpenAI API.
type Client struct {
	api     openai.Client
	model   string
	timeout time.Duration
}

var _ ports.TextOracle = (*Client)(nil)

func (c *Client) Available() bool { return true }

// Generate performs one blocking completion call bounded by the configured
// timeout. Expiry surfaces as an ordinary error; the analyzer folds it into
// its general failure path.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		return "", errs.Wrap(err, "chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// Disabled is the explicit "oracle unavailable" variant.
type Disabled struct{}

var _ ports.TextOracle = Disabled{}

func (Disabled) Available() bool { return false }

func (Disabled) Generate(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}
