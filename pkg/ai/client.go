package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/acta-generator/pkg/config"
)

// Completer sends one prompt to a text completion model and returns its raw reply
type Completer interface {
	// Name returns the provider name
	Name() string

	// Complete sends the prompt and returns the model text as is.
	// Every failure is a *ServiceError.
	Complete(ctx context.Context, prompt string) (string, error)
}

// ServiceError means the model call itself failed: network, timeout,
// credentials, quota or an empty reply
type ServiceError struct {
	Provider   string
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// QuotaExceeded reports an upstream rate limit or exhausted quota
func (e *ServiceError) QuotaExceeded() bool {
	if e.StatusCode == http.StatusTooManyRequests {
		return true
	}
	msg := strings.ToLower(e.Error())
	return strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "quota")
}

// Temporary reports whether a repeat call may succeed
func (e *ServiceError) Temporary() bool {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= 500:
		return true
	case e.StatusCode >= 400:
		return false
	}
	if errors.Is(e.Err, context.Canceled) {
		return false
	}
	return isTransient(e.Err)
}

func newServiceError(provider string, statusCode int, err error) *ServiceError {
	if statusCode == 0 && err != nil {
		statusCode = statusFromMessage(err.Error())
	}
	return &ServiceError{Provider: provider, StatusCode: statusCode, Err: err}
}

// SDK errors carry the HTTP code only in their message, e.g. "Error 429, Message: ..."
var statusPattern = regexp.MustCompile(`(?i)\berror (\d{3})\b`)

func statusFromMessage(msg string) int {
	m := statusPattern.FindStringSubmatch(msg)
	if m == nil {
		return 0
	}
	code, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return code
}

// isTransient checks if an error without HTTP status should trigger a retry
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := strings.ToLower(err.Error())

	// Network errors
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "network unreachable") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "i/o timeout") ||
		strings.Contains(errStr, "eof") {
		return true
	}

	// Server side overload
	if strings.Contains(errStr, "unavailable") ||
		strings.Contains(errStr, "overloaded") ||
		strings.Contains(errStr, "try again") {
		return true
	}

	return false
}

// New builds the configured provider wrapped with metrics and, when enabled, retries
func New(ctx context.Context, cfg *config.LLMConfig, logger *zap.Logger) (Completer, error) {
	var (
		base Completer
		err  error
	)

	switch cfg.Provider {
	case config.ProviderGemini:
		base, err = NewGeminiClient(ctx, cfg, nil)
	case config.ProviderGroq:
		base = NewGroqClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	var c Completer = NewInstrumented(base)
	if cfg.MaxRetries > 0 {
		c = NewRetrying(c, cfg.MaxRetries, logger)
	}
	return c, nil
}
