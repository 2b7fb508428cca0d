package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pm-assistant-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeOllama(t *testing.T, reply string) (*httptest.Server, *chatRequest) {
	t.Helper()
	got := &chatRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func newTestProvider(t *testing.T, baseURL string) *Provider {
	t.Helper()
	p, err := NewProvider(Config{BaseURL: baseURL + "/", Model: "llama3", Timeout: time.Second})
	require.NoError(t, err)
	return p
}

func TestNewProviderRequiresModel(t *testing.T) {
	_, err := NewProvider(Config{BaseURL: DefaultBaseURL})
	assert.Error(t, err)
}

func TestOllamaChat(t *testing.T) {
	srv, got := newFakeOllama(t, `{"message":{"role":"assistant","content":"了解しました"},"done":true,"done_reason":"stop"}`)
	p := newTestProvider(t, srv.URL)

	out, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "日本語で答えてください"},
		{Role: llm.RoleUser, Content: "hi"},
		{Role: "model", Content: "hello"},
		{Role: llm.RoleSystem, Content: "簡潔に"},
		{Role: llm.RoleUser, Content: "again"},
	}, llm.WithMaxTokens(150), llm.WithTemperature(0.3))

	require.NoError(t, err)
	assert.Equal(t, "了解しました", out)
	assert.Equal(t, "llama3", got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, []message{
		{Role: llm.RoleSystem, Content: "日本語で答えてください\n\n簡潔に"},
		{Role: llm.RoleUser, Content: "hi"},
		{Role: llm.RoleAssistant, Content: "hello"},
		{Role: llm.RoleUser, Content: "again"},
	}, got.Messages)
	assert.Equal(t, 150, got.Options.NumPredict)
	assert.Equal(t, 0.3, got.Options.Temperature)
}

func TestOllamaModelOverride(t *testing.T) {
	srv, got := newFakeOllama(t, `{"message":{"role":"assistant","content":"ok"},"done":true}`)
	p := newTestProvider(t, srv.URL)

	_, err := p.Generate(context.Background(), "hi", llm.WithModel("qwen2"))
	require.NoError(t, err)
	assert.Equal(t, "qwen2", got.Model)
	assert.Zero(t, got.Options.NumPredict)
}

func TestOllamaTruncatedReplyKeepsText(t *testing.T) {
	srv, _ := newFakeOllama(t, `{"message":{"role":"assistant","content":"{\"next_questions\": [\"リスク"},"done":true,"done_reason":"length"}`)
	p := newTestProvider(t, srv.URL)

	out, err := p.Generate(context.Background(), "hi", llm.WithMaxTokens(5))
	assert.ErrorIs(t, err, llm.ErrTruncated)
	assert.Equal(t, `{"next_questions": ["リスク`, out)
}

func TestOllamaSystemOnlyHistory(t *testing.T) {
	p := newTestProvider(t, "http://127.0.0.1:0")
	_, err := p.Chat(context.Background(), []llm.Message{{Role: llm.RoleSystem, Content: "x"}})
	assert.Error(t, err)
}

func TestOllamaErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)
	_, err := p.Generate(context.Background(), "hi")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestOllamaEmptyReply(t *testing.T) {
	srv, _ := newFakeOllama(t, `{"message":{"role":"assistant","content":""},"done":true}`)
	p := newTestProvider(t, srv.URL)

	_, err := p.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}
