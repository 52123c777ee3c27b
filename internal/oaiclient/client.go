// Package oaiclient wraps the OpenAI SDK for Bedrock's OpenAI-compatible
// endpoints, exposing only the calls discovery and probing need.
package oaiclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
)

// Client issues model-listing, chat-completions, and responses calls
// against one OpenAI-compatible endpoint.
type Client struct {
	api       openai.Client
	prompt    string
	maxTokens int64
}

// New builds a client for the given base URL. The transport carries SigV4
// signing; the API key is a placeholder the endpoint ignores. Retries stay
// off so every probe is exactly one attempt.
func New(baseURL string, transport http.RoundTripper, timeout time.Duration, prompt string, maxTokens int64) *Client {
	// The SDK resolves paths relative to the base URL, so it must end in "/".
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	api := openai.NewClient(
		option.WithAPIKey("sigv4"),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(&http.Client{Transport: transport, Timeout: timeout}),
		option.WithMaxRetries(0),
	)
	return &Client{api: api, prompt: prompt, maxTokens: maxTokens}
}

// ListModels returns the IDs of every model the endpoint advertises, in
// the endpoint's return order.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	var ids []string
	iter := c.api.Models.ListAutoPaging(ctx)
	for iter.Next() {
		ids = append(ids, iter.Current().ID)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}
	return ids, nil
}

// Complete issues one minimal chat-completions call.
func (c *Client) Complete(ctx context.Context, model string) error {
	_, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     shared.ChatModel(model),
		Messages:  []openai.ChatCompletionMessageParamUnion{openai.UserMessage(c.prompt)},
		MaxTokens: openai.Int(c.maxTokens),
	})
	return err
}

// Respond issues one minimal responses-API call.
func (c *Client) Respond(ctx context.Context, model string) error {
	_, err := c.api.Responses.New(ctx, responses.ResponseNewParams{
		Model:           shared.ResponsesModel(model),
		Input:           responses.ResponseNewParamsInputUnion{OfString: openai.String(c.prompt)},
		MaxOutputTokens: openai.Int(c.maxTokens),
	})
	return err
}
