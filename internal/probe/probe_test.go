package probe

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"

	"github.com/everstacklabs/bedrockscan/internal/catalog"
	"github.com/everstacklabs/bedrockscan/internal/profiles"
)

type fakeBedrock struct {
	invokeErrs   []error // one entry per expected InvokeModel call
	invokeBodies []string
	invokeIDs    []string
	converseErr  error
	converseID   string
}

func (f *fakeBedrock) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.invokeBodies = append(f.invokeBodies, string(params.Body))
	f.invokeIDs = append(f.invokeIDs, *params.ModelId)
	err := f.invokeErrs[len(f.invokeBodies)-1]
	if err != nil {
		return nil, err
	}
	return &bedrockruntime.InvokeModelOutput{}, nil
}

func (f *fakeBedrock) Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.converseID = *params.ModelId
	if f.converseErr != nil {
		return nil, f.converseErr
	}
	return &bedrockruntime.ConverseOutput{}, nil
}

type fakeCompleter struct {
	err   error
	model string
}

func (f *fakeCompleter) Complete(ctx context.Context, model string) error {
	f.model = model
	return f.err
}

type fakeResponder struct {
	err   error
	model string
}

func (f *fakeResponder) Respond(ctx context.Context, model string) error {
	f.model = model
	return f.err
}

func newTarget() Target {
	return Target{
		Model:    catalog.Model{ID: "anthropic.claude-3-haiku-20240307-v1:0", Service: catalog.ServiceRuntime},
		Scope:    profiles.ScopeRegional,
		InvokeID: "us.anthropic.claude-3-haiku-20240307-v1:0",
	}
}

func newProber(bedrock *fakeBedrock, chat *fakeCompleter, resp *fakeResponder) *Prober {
	return &Prober{
		Bedrock:   bedrock,
		Chat:      chat,
		Responses: resp,
		Prompt:    "Hi",
		MaxTokens: 10,
		Timeout:   time.Second,
	}
}

func TestInvokeFirstSchemaSucceeds(t *testing.T) {
	br := &fakeBedrock{invokeErrs: []error{nil}}
	p := newProber(br, &fakeCompleter{}, &fakeResponder{})

	res := p.Probe(context.Background(), newTarget(), VariantInvoke)
	if res.Verdict != Supported {
		t.Fatalf("verdict = %v, want Supported", res.Verdict)
	}
	if len(br.invokeBodies) != 1 {
		t.Fatalf("expected 1 invocation, got %d", len(br.invokeBodies))
	}
	if !strings.Contains(br.invokeBodies[0], "inferenceConfig") {
		t.Errorf("first attempt should use the unified schema, got: %s", br.invokeBodies[0])
	}
	if br.invokeIDs[0] != "us.anthropic.claude-3-haiku-20240307-v1:0" {
		t.Errorf("invoke should address the profile target, got %q", br.invokeIDs[0])
	}
}

func TestInvokeFallsBackToAnthropicSchema(t *testing.T) {
	br := &fakeBedrock{invokeErrs: []error{
		&smithy.GenericAPIError{Code: "ValidationException"},
		nil,
	}}
	p := newProber(br, &fakeCompleter{}, &fakeResponder{})

	res := p.Probe(context.Background(), newTarget(), VariantInvoke)
	if res.Verdict != Supported {
		t.Fatalf("verdict = %v, want Supported after fallback", res.Verdict)
	}
	if len(br.invokeBodies) != 2 {
		t.Fatalf("expected 2 invocations, got %d", len(br.invokeBodies))
	}
	if !strings.Contains(br.invokeBodies[1], "anthropic_version") {
		t.Errorf("fallback should use the Anthropic schema, got: %s", br.invokeBodies[1])
	}
}

func TestInvokeBothSchemasRejected(t *testing.T) {
	br := &fakeBedrock{invokeErrs: []error{
		&smithy.GenericAPIError{Code: "ValidationException"},
		&smithy.GenericAPIError{Code: "ValidationException"},
	}}
	p := newProber(br, &fakeCompleter{}, &fakeResponder{})

	res := p.Probe(context.Background(), newTarget(), VariantInvoke)
	if res.Verdict != Unsupported {
		t.Fatalf("verdict = %v, want Unsupported", res.Verdict)
	}
	if res.Indeterminate {
		t.Error("double validation failure is a classified rejection, not indeterminate")
	}
	if len(br.invokeBodies) != 2 {
		t.Fatalf("expected 2 invocations, got %d", len(br.invokeBodies))
	}
}

func TestInvokeNoFallbackOnNonValidationError(t *testing.T) {
	br := &fakeBedrock{invokeErrs: []error{
		&smithy.GenericAPIError{Code: "ThrottlingException"},
	}}
	p := newProber(br, &fakeCompleter{}, &fakeResponder{})

	res := p.Probe(context.Background(), newTarget(), VariantInvoke)
	if res.Verdict != Unsupported || !res.Indeterminate {
		t.Fatalf("got (%v, %v), want indeterminate Unsupported", res.Verdict, res.Indeterminate)
	}
	if len(br.invokeBodies) != 1 {
		t.Fatalf("throttling must not trigger the schema fallback, got %d calls", len(br.invokeBodies))
	}
}

func TestConverse(t *testing.T) {
	br := &fakeBedrock{}
	p := newProber(br, &fakeCompleter{}, &fakeResponder{})

	res := p.Probe(context.Background(), newTarget(), VariantConverse)
	if res.Verdict != Supported {
		t.Fatalf("verdict = %v, want Supported", res.Verdict)
	}
	if br.converseID != "us.anthropic.claude-3-haiku-20240307-v1:0" {
		t.Errorf("converse should address the profile target, got %q", br.converseID)
	}
}

func TestConverseNotFound(t *testing.T) {
	br := &fakeBedrock{converseErr: &smithy.GenericAPIError{Code: "ResourceNotFoundException"}}
	p := newProber(br, &fakeCompleter{}, &fakeResponder{})

	res := p.Probe(context.Background(), newTarget(), VariantConverse)
	if res.Verdict != Unsupported || res.Indeterminate {
		t.Fatalf("got (%v, %v), want classified Unsupported", res.Verdict, res.Indeterminate)
	}
}

func TestOpenAIVariantsUseBareModelID(t *testing.T) {
	chat := &fakeCompleter{}
	resp := &fakeResponder{}
	p := newProber(&fakeBedrock{}, chat, resp)
	target := newTarget()

	if res := p.Probe(context.Background(), target, VariantChatCompletions); res.Verdict != Supported {
		t.Fatalf("chat verdict = %v, want Supported", res.Verdict)
	}
	if chat.model != target.Model.ID {
		t.Errorf("chat-completions should address the bare model ID, got %q", chat.model)
	}

	if res := p.Probe(context.Background(), target, VariantResponses); res.Verdict != Supported {
		t.Fatalf("responses verdict = %v, want Supported", res.Verdict)
	}
	if resp.model != target.Model.ID {
		t.Errorf("responses should address the bare model ID, got %q", resp.model)
	}
}

func TestProbeNeverPropagatesErrors(t *testing.T) {
	resp := &fakeResponder{err: context.DeadlineExceeded}
	p := newProber(&fakeBedrock{}, &fakeCompleter{}, resp)

	res := p.Probe(context.Background(), newTarget(), VariantResponses)
	if res.Verdict != Unsupported || !res.Indeterminate || res.Err == nil {
		t.Fatalf("timeout must fold into an indeterminate Unsupported result, got %+v", res)
	}
}
