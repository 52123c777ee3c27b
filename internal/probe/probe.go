// Package probe performs bounded-time test invocations against one
// (model, scope, API variant) cell and reduces the outcome to a verdict.
package probe

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"golang.org/x/time/rate"

	"github.com/everstacklabs/bedrockscan/internal/catalog"
	"github.com/everstacklabs/bedrockscan/internal/profiles"
)

// Variant is one of the four calling conventions probed per matrix cell.
type Variant string

const (
	VariantInvoke          Variant = "invoke"
	VariantConverse        Variant = "converse"
	VariantChatCompletions Variant = "chat-completions"
	VariantResponses       Variant = "responses"
)

// Variants is the fixed column order of the matrix.
var Variants = []Variant{VariantInvoke, VariantConverse, VariantChatCompletions, VariantResponses}

// Verdict is the binary outcome recorded per cell.
type Verdict int

const (
	Unsupported Verdict = iota
	Supported
)

// Mark renders the verdict as the single-character matrix marker.
func (v Verdict) Mark() string {
	if v == Supported {
		return "✓"
	}
	return "✗"
}

// Result is the outcome of probing one cell. Indeterminate results stay
// Unsupported in the matrix but carry the raw error so the error log can
// distinguish transient failures from true incompatibility.
type Result struct {
	Verdict       Verdict
	Indeterminate bool
	Err           error
}

// Target is one (model, scope) pair under probe. InvokeID is the identifier
// handed to the model-invocation APIs: the inference profile ID when the
// scope came from a profile, the bare model ID for direct invocation. The
// OpenAI-compatible variants always address the bare model ID.
type Target struct {
	Model    catalog.Model
	Scope    profiles.Scope
	InvokeID string
}

// BedrockAPI is the slice of the bedrock-runtime client the prober needs.
// *bedrockruntime.Client satisfies it.
type BedrockAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// ChatCompleter issues one chat-completions call against the
// OpenAI-compatible bedrock-runtime endpoint.
type ChatCompleter interface {
	Complete(ctx context.Context, model string) error
}

// Responder issues one responses-API call against the mantle endpoint.
type Responder interface {
	Respond(ctx context.Context, model string) error
}

// Prober probes one cell at a time. It never lets an invocation error
// escape; every failure becomes a Result.
type Prober struct {
	Bedrock   BedrockAPI
	Chat      ChatCompleter
	Responses Responder
	Limiter   *rate.Limiter
	Prompt    string
	MaxTokens int32
	Timeout   time.Duration
}

// Probe runs one test invocation for the given variant, bounded by the
// configured timeout.
func (p *Prober) Probe(ctx context.Context, target Target, variant Variant) Result {
	if p.Limiter != nil {
		if err := p.Limiter.Wait(ctx); err != nil {
			return toResult(err)
		}
	}

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	var err error
	switch variant {
	case VariantInvoke:
		err = p.invoke(ctx, target.InvokeID)
	case VariantConverse:
		err = p.converse(ctx, target.InvokeID)
	case VariantChatCompletions:
		err = p.Chat.Complete(ctx, target.Model.ID)
	case VariantResponses:
		err = p.Responses.Respond(ctx, target.Model.ID)
	}
	return toResult(err)
}

func toResult(err error) Result {
	if err == nil {
		return Result{Verdict: Supported}
	}
	verdict, indeterminate := classify(err)
	return Result{Verdict: verdict, Indeterminate: indeterminate, Err: err}
}

// unifiedBody is the default invoke_model request shape shared by most
// model families.
type unifiedBody struct {
	Messages        []unifiedMessage `json:"messages"`
	InferenceConfig unifiedInference `json:"inferenceConfig"`
}

type unifiedMessage struct {
	Role    string           `json:"role"`
	Content []unifiedContent `json:"content"`
}

type unifiedContent struct {
	Text string `json:"text"`
}

type unifiedInference struct {
	MaxNewTokens int32 `json:"max_new_tokens"`
}

// anthropicBody is the vendor-specific invoke_model shape for Claude-family
// models, which predates the unified schema.
type anthropicBody struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int32              `json:"max_tokens"`
	Messages         []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// invoke tries the unified request schema first. Some model families reject
// it outright with a validation error, so one retry with the Anthropic
// payload runs before concluding the API is unsupported.
func (p *Prober) invoke(ctx context.Context, modelID string) error {
	body, err := json.Marshal(unifiedBody{
		Messages:        []unifiedMessage{{Role: "user", Content: []unifiedContent{{Text: p.Prompt}}}},
		InferenceConfig: unifiedInference{MaxNewTokens: p.MaxTokens},
	})
	if err != nil {
		return err
	}

	firstErr := p.invokeRaw(ctx, modelID, body)
	if firstErr == nil || !isValidationErr(firstErr) {
		return firstErr
	}

	fallback, err := json.Marshal(anthropicBody{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        p.MaxTokens,
		Messages:         []anthropicMessage{{Role: "user", Content: p.Prompt}},
	})
	if err != nil {
		return firstErr
	}
	if err := p.invokeRaw(ctx, modelID, fallback); err != nil {
		// Report the original validation failure; the fallback was a
		// best-effort second schema, not a second verdict.
		return firstErr
	}
	return nil
}

func (p *Prober) invokeRaw(ctx context.Context, modelID string, body []byte) error {
	_, err := p.Bedrock.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	return err
}

func (p *Prober) converse(ctx context.Context, modelID string) error {
	_, err := p.Bedrock.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(modelID),
		Messages: []types.Message{{
			Role:    types.ConversationRoleUser,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: p.Prompt}},
		}},
		InferenceConfig: &types.InferenceConfiguration{MaxTokens: aws.Int32(p.MaxTokens)},
	})
	return err
}
