package ai

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type scriptedCompleter struct {
	errs  []error
	calls int
}

func (s *scriptedCompleter) Name() string { return "fake" }

func (s *scriptedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls++
	if s.calls <= len(s.errs) {
		return "", s.errs[s.calls-1]
	}
	return "{}", nil
}

func TestRetrying_RecoversFromTemporaryErrors(t *testing.T) {
	fake := &scriptedCompleter{errs: []error{
		&ServiceError{Provider: "fake", StatusCode: http.StatusServiceUnavailable, Err: errors.New("busy")},
		&ServiceError{Provider: "fake", StatusCode: http.StatusTooManyRequests, Err: errors.New("slow down")},
	}}
	r := NewRetrying(fake, 3, zap.NewNop()).WithIntervals(time.Millisecond, 5*time.Millisecond)

	text, err := r.Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "{}", text)
	assert.Equal(t, 3, fake.calls)
}

func TestRetrying_StopsOnPermanentError(t *testing.T) {
	fake := &scriptedCompleter{errs: []error{
		&ServiceError{Provider: "fake", StatusCode: http.StatusUnauthorized, Err: errors.New("bad key")},
	}}
	r := NewRetrying(fake, 3, nil).WithIntervals(time.Millisecond, 5*time.Millisecond)

	_, err := r.Complete(context.Background(), "p")
	var se *ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Equal(t, 1, fake.calls)
}

func TestRetrying_GivesUpAfterMaxRetries(t *testing.T) {
	busy := &ServiceError{Provider: "fake", StatusCode: http.StatusBadGateway, Err: errors.New("down")}
	fake := &scriptedCompleter{errs: []error{busy, busy, busy, busy}}
	r := NewRetrying(fake, 2, nil).WithIntervals(time.Millisecond, 5*time.Millisecond)

	_, err := r.Complete(context.Background(), "p")
	var se *ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 3, fake.calls)
}

func TestInstrumented_PassesThrough(t *testing.T) {
	fake := &scriptedCompleter{}
	i := NewInstrumented(fake)

	text, err := i.Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "{}", text)
	assert.Equal(t, "fake", i.Name())
}
