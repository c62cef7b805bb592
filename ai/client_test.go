package ai

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/guardianhq/guardian/config"
	"github.com/guardianhq/guardian/errors"
)

// mockService implements Service for testing. It records every prompt
// and system prompt it receives so tests can compare what the adapter
// actually sends downstream.
type mockService struct {
	generateFunc func(ctx context.Context, prompt, systemPrompt string) (string, error)

	mu            sync.Mutex
	prompts       []string
	systemPrompts []string
}

func (m *mockService) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.systemPrompts = append(m.systemPrompts, systemPrompt)
	m.mu.Unlock()

	if m.generateFunc != nil {
		return m.generateFunc(ctx, prompt, systemPrompt)
	}
	return "", nil
}

func (m *mockService) GenerateSync(prompt, systemPrompt string) (string, error) {
	return m.Generate(context.Background(), prompt, systemPrompt)
}

func (m *mockService) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

func testConfig(rpm int) *config.Config {
	cfg := config.DefaultConfig()
	cfg.AI.RateLimit = rpm
	cfg.AI.MaxContextTokens = 0 // keep token estimation out of unit tests
	return cfg
}

func newTestClient(rpm int, svc Service) *Client {
	return NewClientWithService(testConfig(rpm), zap.NewNop(), nil, svc)
}

// TestGenerateCombinedPrompt verifies the prompt the adapter hands the
// service: without history the caller's prompt passes through exactly,
// with history the rendered preamble precedes it.
func TestGenerateCombinedPrompt(t *testing.T) {
	svc := &mockService{}
	client := newTestClient(0, svc)

	_, err := client.Generate(context.Background(), "next?", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "next?", svc.lastPrompt())

	history := []any{
		Turn{Role: RoleUser, Text: "hi"},
		Turn{Role: RoleModel, Text: "hello"},
	}
	_, err = client.Generate(context.Background(), "next?", "", history)
	require.NoError(t, err)
	assert.Equal(t, "Previous conversation:\nuser: hi\nmodel: hello\n\nCurrent user request:\nnext?", svc.lastPrompt())
}

// TestSyncAndAsyncBuildIdenticalPrompts verifies the shared
// prompt-construction invariant: for the same inputs, both entry points
// send the service byte-identical combined prompts.
func TestSyncAndAsyncBuildIdenticalPrompts(t *testing.T) {
	svc := &mockService{}
	client := newTestClient(0, svc)

	history := []any{
		Message{Type: "human", Content: "scan the host"},
		Message{Type: "ai", Content: "done"},
		map[string]any{"role": "user", "parts": []any{map[string]any{"text": "report?"}}},
	}

	_, err := client.Generate(context.Background(), "summarize", "be terse", history)
	require.NoError(t, err)
	_, err = client.GenerateSync("summarize", "be terse", history)
	require.NoError(t, err)

	require.Len(t, svc.prompts, 2)
	assert.Equal(t, svc.prompts[0], svc.prompts[1])
	assert.Equal(t, svc.systemPrompts[0], svc.systemPrompts[1])
}

// TestGenerateReturnsBackendText verifies the adapter returns the
// service's text unchanged.
func TestGenerateReturnsBackendText(t *testing.T) {
	svc := &mockService{
		generateFunc: func(context.Context, string, string) (string, error) {
			return "  raw text, untouched  ", nil
		},
	}
	client := newTestClient(0, svc)

	text, err := client.Generate(context.Background(), "p", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "  raw text, untouched  ", text)
}

// TestDispatchFailurePropagates verifies that a backend failure surfaces
// as a typed provider error whose chain still contains the original
// cause, and never as a silently empty result.
func TestDispatchFailurePropagates(t *testing.T) {
	cause := stderrors.New("backend exploded")
	svc := &mockService{
		generateFunc: func(context.Context, string, string) (string, error) {
			return "", cause
		},
	}
	client := newTestClient(0, svc)

	_, err := client.Generate(context.Background(), "p", "", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)

	var gerr *errors.GuardianError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, errors.ProviderError, gerr.Type)

	_, err = client.GenerateSync("p", "", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
}

// TestGenerateWithReasoning verifies the reasoning-augmented path end to
// end: the instructional suffix is appended to the outgoing prompt and
// the labeled sections come back split.
func TestGenerateWithReasoning(t *testing.T) {
	svc := &mockService{
		generateFunc: func(context.Context, string, string) (string, error) {
			return "REASONING: because X\nRESPONSE: do Y", nil
		},
	}
	client := newTestClient(0, svc)

	reply, err := client.GenerateWithReasoning(context.Background(), "what now?", "sys", nil)
	require.NoError(t, err)
	assert.Equal(t, "because X", reply.Reasoning)
	assert.Equal(t, "do Y", reply.Response)

	sent := svc.lastPrompt()
	assert.True(t, strings.HasPrefix(sent, "what now?"))
	assert.Contains(t, sent, "1. REASONING:")
	assert.Contains(t, sent, "2. RESPONSE:")
}

// TestGenerateWithReasoningDegrades verifies that unmarked output is not
// an error: the raw text survives in the response with the sentinel in
// the reasoning field.
func TestGenerateWithReasoningDegrades(t *testing.T) {
	svc := &mockService{
		generateFunc: func(context.Context, string, string) (string, error) {
			return "free-form answer", nil
		},
	}
	client := newTestClient(0, svc)

	reply, err := client.GenerateWithReasoning(context.Background(), "q", "sys", nil)
	require.NoError(t, err)
	assert.Equal(t, NoReasoningProvided, reply.Reasoning)
	assert.Equal(t, "free-form answer", reply.Response)
}

// TestDefaultSystemPrompt verifies that the configured system prompt is
// applied when the caller supplies none, and overridden when they do.
func TestDefaultSystemPrompt(t *testing.T) {
	svc := &mockService{}
	cfg := testConfig(0)
	cfg.AI.SystemPrompt = "configured default"
	client := NewClientWithService(cfg, zap.NewNop(), nil, svc)

	_, err := client.Generate(context.Background(), "p", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "configured default", svc.systemPrompts[0])

	_, err = client.Generate(context.Background(), "p", "caller override", nil)
	require.NoError(t, err)
	assert.Equal(t, "caller override", svc.systemPrompts[1])
}

// TestRateLimitAppliesAcrossPaths verifies the throttle sits in front of
// both entry points: a sync call immediately after an async one still
// waits out the interval.
func TestRateLimitAppliesAcrossPaths(t *testing.T) {
	svc := &mockService{}
	client := newTestClient(1200, svc) // 50ms interval

	start := time.Now()
	_, err := client.Generate(context.Background(), "first", "", nil)
	require.NoError(t, err)
	_, err = client.GenerateSync("second", "", nil)
	require.NoError(t, err)
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 45*time.Millisecond)
}
