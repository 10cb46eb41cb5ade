package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ziadkadry99/bizmate/internal/errs"
)

// errNoContent is returned by providers when the response carried no
// usable content field.
var errNoContent = errors.New("response contained no usable content")

// apiStatusError is a non-2xx reply from an HTTP provider.
type apiStatusError struct {
	status  int
	kind    string
	message string
}

func (e *apiStatusError) Error() string {
	if e.kind != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.status, e.kind, e.message)
	}
	return fmt.Sprintf("api error %d: %s", e.status, e.message)
}

// Gateway wraps a Provider with the per-call deadline and maps provider
// failures into the errs.Transport taxonomy. All engine code talks to
// the model through a Gateway, never a bare Provider.
type Gateway struct {
	provider Provider
	timeout  time.Duration
}

// NewGateway creates a Gateway. A non-positive timeout falls back to 60s.
func NewGateway(provider Provider, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Gateway{provider: provider, timeout: timeout}
}

func (g *Gateway) Name() string {
	return g.provider.Name()
}

func (g *Gateway) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.provider.Complete(ctx, req)
	if err != nil {
		return nil, classify(err)
	}
	return resp, nil
}

// classify maps a raw provider error onto the transport taxonomy.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &errs.TransportError{Kind: errs.TransportTimeout, Err: err}
	}
	if errors.Is(err, errNoContent) {
		return &errs.TransportError{Kind: errs.TransportShape, Err: err}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &errs.TransportError{Kind: kindForStatus(apiErr.HTTPStatusCode, apiErr.Message), Err: err}
	}

	var statusErr *apiStatusError
	if errors.As(err, &statusErr) {
		return &errs.TransportError{Kind: kindForStatus(statusErr.status, statusErr.kind+" "+statusErr.message), Err: err}
	}

	return &errs.TransportError{Kind: errs.TransportGeneric, Err: err}
}

func kindForStatus(status int, message string) errs.TransportKind {
	if status == http.StatusTooManyRequests {
		return errs.TransportQuota
	}
	lower := strings.ToLower(message)
	if strings.Contains(lower, "context_length") ||
		strings.Contains(lower, "context window") ||
		strings.Contains(lower, "maximum context") ||
		strings.Contains(lower, "prompt is too long") {
		return errs.TransportContextWindow
	}
	if strings.Contains(lower, "quota") || strings.Contains(lower, "rate limit") {
		return errs.TransportQuota
	}
	return errs.TransportGeneric
}
