package ai

import (
	"context"
	"time"

	"github.com/johnquangdev/acta-generator/pkg/metrics"
)

// Instrumented records call latency and outcome for the wrapped Completer
type Instrumented struct {
	next Completer
}

func NewInstrumented(next Completer) *Instrumented {
	return &Instrumented{next: next}
}

func (i *Instrumented) Name() string {
	return i.next.Name()
}

func (i *Instrumented) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := i.next.Complete(ctx, prompt)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.LLMRequestDuration.WithLabelValues(i.next.Name(), outcome).Observe(time.Since(start).Seconds())
	return text, err
}
