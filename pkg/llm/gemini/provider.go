package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pm-assistant-be/pkg/llm"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-1.5-flash"

// GeminiProvider talks to the Gemini API through the official genai SDK.
type GeminiProvider struct {
	client    *genai.Client
	modelName string
	timeout   time.Duration
}

var _ llm.LLMProvider = &GeminiProvider{}

type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	// BaseURL overrides the API endpoint. Empty means the public Gemini API.
	BaseURL string
}

func NewGeminiProvider(ctx context.Context, cfg Config) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiProvider{
		client:    client,
		modelName: cfg.Model,
		timeout:   cfg.Timeout,
	}, nil
}

// toContents maps generic messages onto Gemini contents. System messages are
// folded into the system instruction because Gemini has no system role.
func toContents(history []llm.Message) ([]*genai.Content, *genai.Content) {
	contents := make([]*genai.Content, 0, len(history))
	var system []string
	for _, msg := range history {
		switch msg.Role {
		case llm.RoleSystem:
			system = append(system, msg.Content)
		case llm.RoleAssistant, "model":
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	if len(system) == 0 {
		return contents, nil
	}
	return contents, genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
}

func (g *GeminiProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(opts...)

	model := g.modelName
	if options.Model != "" {
		model = options.Model
	}

	contents, system := toContents(history)
	if len(contents) == 0 {
		return "", fmt.Errorf("gemini chat: no user or model messages")
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(float32(options.Temperature)),
		SystemInstruction: system,
	}
	if options.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(options.MaxTokens)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, contents, genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", llm.ErrEmptyResponse
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		return text, fmt.Errorf("gemini %s: %w", model, llm.ErrTruncated)
	}
	return text, nil
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return g.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}
