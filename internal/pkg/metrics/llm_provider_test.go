package metrics

import (
	"context"
	"errors"
	"testing"

	"pm-assistant-be/internal/pkg/logger"
	"pm-assistant-be/pkg/llm"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	reply string
	err   error
}

func (s stubProvider) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return s.reply, s.err
}

func (s stubProvider) Generate(context.Context, string, ...llm.Option) (string, error) {
	return s.reply, s.err
}

func TestInstrumentLLMCountsOutcomes(t *testing.T) {
	okBefore := testutil.ToFloat64(LLMRequestsTotal.WithLabelValues("metrics_test", "ok"))
	errBefore := testutil.ToFloat64(LLMRequestsTotal.WithLabelValues("metrics_test", "error"))

	ctx := WithOperation(context.Background(), "metrics_test")

	good := InstrumentLLM(stubProvider{reply: "hi"}, logger.NewNopLogger())
	out, err := good.Generate(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "hi", out)

	bad := InstrumentLLM(stubProvider{err: errors.New("quota")}, logger.NewNopLogger())
	_, err = bad.Chat(ctx, nil)
	assert.Error(t, err)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(LLMRequestsTotal.WithLabelValues("metrics_test", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(LLMRequestsTotal.WithLabelValues("metrics_test", "error")))
}

func TestInstrumentLLMCountsTruncation(t *testing.T) {
	before := testutil.ToFloat64(LLMRequestsTotal.WithLabelValues("metrics_test_cut", "truncated"))
	ctx := WithOperation(context.Background(), "metrics_test_cut")

	cut := InstrumentLLM(stubProvider{reply: "部分", err: llm.ErrTruncated}, logger.NewNopLogger())
	out, err := cut.Generate(ctx, "p")
	assert.ErrorIs(t, err, llm.ErrTruncated)
	assert.Equal(t, "部分", out)

	assert.Equal(t, before+1, testutil.ToFloat64(LLMRequestsTotal.WithLabelValues("metrics_test_cut", "truncated")))
}

func TestOperationDefaultsToUnknown(t *testing.T) {
	assert.Equal(t, "unknown", operationFrom(context.Background()))
	assert.Equal(t, "chat", operationFrom(WithOperation(context.Background(), "chat")))
}
