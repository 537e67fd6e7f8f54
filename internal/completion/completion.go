// Package completion talks to hosted language-model APIs. Credentials stay on
// the server; callers only pass a prompt and a quality tier.
package completion

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Tier selects the model class used for a request.
type Tier string

const (
	// TierPreview is the fast, cheap model used for the free teaser.
	TierPreview Tier = "preview"
	// TierFull is the high-quality model used for the paid report.
	TierFull Tier = "full"
)

// Request is a single prompt/completion call.
type Request struct {
	System    string
	Prompt    string
	Tier      Tier
	MaxTokens int
}

// Provider generates text for a request.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

var (
	ErrNotConfigured = errors.New("provider API key not configured")
	ErrEmptyResponse = errors.New("empty response from provider")
)

// Models maps each tier to a provider-specific model name.
type Models struct {
	Preview string
	Full    string
}

func (m Models) For(tier Tier) string {
	if tier == TierFull {
		return m.Full
	}
	return m.Preview
}

// StatusError is returned when a provider answers with a non-2xx status.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Provider, e.StatusCode, e.Body)
}

// IsTransient reports whether a failed call is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
