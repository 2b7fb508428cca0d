package metrics

import (
	"context"
	"errors"
	"time"

	"pm-assistant-be/internal/pkg/logger"
	"pm-assistant-be/pkg/llm"
)

type operationKey struct{}

// WithOperation labels LLM calls made with ctx, e.g. "recommendation" or "chat".
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey{}, op)
}

func operationFrom(ctx context.Context) string {
	if op, ok := ctx.Value(operationKey{}).(string); ok && op != "" {
		return op
	}
	return "unknown"
}

type instrumentedProvider struct {
	next   llm.LLMProvider
	logger logger.ILogger
}

// InstrumentLLM records latency and outcome of every call made through p.
func InstrumentLLM(p llm.LLMProvider, log logger.ILogger) llm.LLMProvider {
	return &instrumentedProvider{next: p, logger: log}
}

func (p *instrumentedProvider) observe(ctx context.Context, start time.Time, err error) {
	op := operationFrom(ctx)
	elapsed := time.Since(start)
	LLMRequestDuration.WithLabelValues(op).Observe(elapsed.Seconds())

	if errors.Is(err, llm.ErrTruncated) {
		LLMRequestsTotal.WithLabelValues(op, "truncated").Inc()
		p.logger.Warn("LLM", "LLM reply hit the token limit", map[string]interface{}{
			"operation":   op,
			"duration_ms": elapsed.Milliseconds(),
		})
		return
	}
	if err != nil {
		LLMRequestsTotal.WithLabelValues(op, "error").Inc()
		p.logger.Error("LLM", "LLM call failed", map[string]interface{}{
			"operation":   op,
			"duration_ms": elapsed.Milliseconds(),
			"error":       err,
		})
		return
	}
	LLMRequestsTotal.WithLabelValues(op, "ok").Inc()
	p.logger.Debug("LLM", "LLM call completed", map[string]interface{}{
		"operation":   op,
		"duration_ms": elapsed.Milliseconds(),
	})
}

func (p *instrumentedProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	start := time.Now()
	out, err := p.next.Chat(ctx, history, opts...)
	p.observe(ctx, start, err)
	return out, err
}

func (p *instrumentedProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	start := time.Now()
	out, err := p.next.Generate(ctx, prompt, opts...)
	p.observe(ctx, start, err)
	return out, err
}
