package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pm-assistant-be/pkg/llm"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultTimeout = 120 * time.Second

	// doneReasonLength is what Ollama reports when num_predict cut the reply short.
	doneReasonLength = "length"
)

// Provider talks to a local Ollama server through its non-streaming /api/chat endpoint.
type Provider struct {
	baseURL   string
	modelName string
	client    *http.Client
}

var _ llm.LLMProvider = &Provider{}

type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("ollama model name is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Provider{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		modelName: cfg.Model,
		client:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type chatRequest struct {
	Model    string       `json:"model"`
	Messages []message    `json:"messages"`
	Stream   bool         `json:"stream"`
	Options  modelOptions `json:"options"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type modelOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatResponse struct {
	Message    message `json:"message"`
	Done       bool    `json:"done"`
	DoneReason string  `json:"done_reason"`
}

// toMessages folds every system message into a single leading one, the same shape
// the Gemini provider sends as its system instruction.
func toMessages(history []llm.Message) []message {
	out := make([]message, 0, len(history)+1)
	var system []string
	for _, msg := range history {
		switch msg.Role {
		case llm.RoleSystem:
			system = append(system, msg.Content)
		case llm.RoleAssistant, "model":
			out = append(out, message{Role: llm.RoleAssistant, Content: msg.Content})
		default:
			out = append(out, message{Role: llm.RoleUser, Content: msg.Content})
		}
	}
	if len(system) == 0 {
		return out
	}
	return append([]message{{Role: llm.RoleSystem, Content: strings.Join(system, "\n\n")}}, out...)
}

func (p *Provider) buildRequest(history []llm.Message, options *llm.Options) (chatRequest, error) {
	messages := toMessages(history)
	if len(messages) == 0 || messages[len(messages)-1].Role == llm.RoleSystem {
		return chatRequest{}, fmt.Errorf("ollama chat: no user or assistant messages")
	}

	model := p.modelName
	if options.Model != "" {
		model = options.Model
	}
	return chatRequest{
		Model:    model,
		Messages: messages,
		Options: modelOptions{
			Temperature: options.Temperature,
			NumPredict:  options.MaxTokens,
		},
	}, nil
}

// decodeReply turns an /api/chat body into the reply text. A reply cut by the
// token limit comes back with llm.ErrTruncated so callers still get the text.
func decodeReply(model string, body []byte) (string, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode ollama reply: %w", err)
	}
	if strings.TrimSpace(resp.Message.Content) == "" {
		return "", llm.ErrEmptyResponse
	}
	if resp.DoneReason == doneReasonLength {
		return resp.Message.Content, fmt.Errorf("ollama %s: %w", model, llm.ErrTruncated)
	}
	return resp.Message.Content, nil
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	payload, err := p.buildRequest(history, llm.ApplyOptions(opts...))
	if err != nil {
		return "", err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode ollama request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("build ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read ollama reply: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama chat: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return decodeReply(payload.Model, body)
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}
