package llm

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/ziadkadry99/bizmate/internal/errs"
)

// MockProvider is a test provider that records calls and returns canned responses.
type MockProvider struct {
	mu       sync.Mutex
	Calls    []CompletionRequest
	Response *CompletionResponse
	Err      error
	ProvName string
}

func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		ProvName: name,
		Response: &CompletionResponse{
			Content:      "mock response",
			InputTokens:  10,
			OutputTokens: 20,
			Model:        "mock-model",
			FinishReason: "stop",
		},
	}
}

func (m *MockProvider) Name() string {
	return m.ProvName
}

func (m *MockProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// --- Tests ---

func TestMockProviderRecordsCalls(t *testing.T) {
	mock := NewMockProvider("test")
	ctx := context.Background()

	req := CompletionRequest{
		Model:    "test-model",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	}

	resp, err := mock.Complete(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Content != "mock response" {
		t.Errorf("expected 'mock response', got %q", resp.Content)
	}

	if mock.CallCount() != 1 {
		t.Errorf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestFactoryReturnsErrorForMissingAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	providers := []string{"anthropic", "openai"}
	for _, p := range providers {
		_, err := NewProvider(p, "some-model")
		if err == nil {
			t.Errorf("expected error for provider %q with missing API key", p)
		}
	}
}

func TestFactoryReturnsErrorForUnknownProvider(t *testing.T) {
	_, err := NewProvider("unknown", "some-model")
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestFactoryCreatesOllamaWithoutAPIKey(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "http://localhost:11434")
	provider, err := NewProvider("ollama", "llama3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.Name() != "ollama" {
		t.Errorf("expected name 'ollama', got %q", provider.Name())
	}
}

func TestGatewayClassifiesErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.TransportKind
	}{
		{"timeout", context.DeadlineExceeded, errs.TransportTimeout},
		{"no content", errNoContent, errs.TransportShape},
		{"quota status", &apiStatusError{status: http.StatusTooManyRequests, message: "slow down"}, errs.TransportQuota},
		{"context window", &apiStatusError{status: http.StatusBadRequest, kind: "invalid_request_error", message: "prompt is too long"}, errs.TransportContextWindow},
		{"generic", errors.New("connection reset"), errs.TransportGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider("test")
			mock.Err = tt.err
			gw := NewGateway(mock, time.Second)

			_, err := gw.Complete(context.Background(), CompletionRequest{})
			var terr *errs.TransportError
			if !errors.As(err, &terr) {
				t.Fatalf("expected TransportError, got %v", err)
			}
			if terr.Kind != tt.want {
				t.Errorf("Kind = %q, want %q", terr.Kind, tt.want)
			}
		})
	}
}

func TestGatewayEnforcesTimeout(t *testing.T) {
	slow := &slowProvider{delay: 500 * time.Millisecond}
	gw := NewGateway(slow, 50*time.Millisecond)

	start := time.Now()
	_, err := gw.Complete(context.Background(), CompletionRequest{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	var terr *errs.TransportError
	if !errors.As(err, &terr) || terr.Kind != errs.TransportTimeout {
		t.Fatalf("expected timeout transport error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("call did not respect the deadline, took %v", elapsed)
	}
}

type slowProvider struct {
	delay time.Duration
}

func (s *slowProvider) Name() string { return "slow" }

func (s *slowProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.delay):
		return &CompletionResponse{Content: "too late"}, nil
	}
}

func TestRateLimiterAllowsWithinBudget(t *testing.T) {
	mock := NewMockProvider("test")
	limited := NewRateLimitedProvider(mock, 60)

	for i := 0; i < 3; i++ {
		if _, err := limited.Complete(context.Background(), CompletionRequest{}); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if mock.CallCount() != 3 {
		t.Errorf("expected 3 calls, got %d", mock.CallCount())
	}
}
