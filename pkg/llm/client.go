// Package llm wraps the Anthropic SDK behind a minimal completion
// interface so pipeline stages can be tested against stub clients.
package llm

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

// Client performs a single prompt completion against the model service.
// The service may be slow, unavailable, or return non-JSON text; callers
// must route responses through llmjson and have a defined fallback.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Request describes one completion call.
type Request struct {
	Model       string
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int64
}

// Usage tracks token consumption for cost attribution.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Response is the model's reply.
type Response struct {
	Text  string
	Usage Usage
}

type sdkClient struct {
	client sdk.Client
}

// NewClient creates a Client backed by the official SDK.
func NewClient(apiKey string) Client {
	return &sdkClient{
		client: sdk.NewClient(option.WithAPIKey(apiKey)),
	}
}

func (c *sdkClient) Complete(ctx context.Context, req Request) (*Response, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(req.Model),
		MaxTokens: req.MaxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = sdk.Float(req.Temperature)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "llm: complete")
	}

	var parts []string
	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}

	return &Response{
		Text: strings.Join(parts, "\n"),
		Usage: Usage{
			InputTokens:  msg.Usage.InputTokens,
			OutputTokens: msg.Usage.OutputTokens,
		},
	}, nil
}
