package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"pm-assistant-be/internal/pkg/logger"
	"pm-assistant-be/internal/repository/memory"
	"pm-assistant-be/pkg/events"
	"pm-assistant-be/pkg/llm"
)

type fakeCall struct {
	Prompt  string
	History []llm.Message
	Options *llm.Options
}

// fakeLLM answers by prompt content so concurrent calls stay deterministic.
type fakeLLM struct {
	mu      sync.Mutex
	calls   []fakeCall
	respond func(prompt string) (string, error)
}

func (f *fakeLLM) record(c fakeCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeLLM) Calls() []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fakeCall(nil), f.calls...)
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, opts ...llm.Option) (string, error) {
	f.record(fakeCall{Prompt: prompt, Options: llm.ApplyOptions(opts...)})
	return f.respond(prompt)
}

func (f *fakeLLM) Chat(_ context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	f.record(fakeCall{History: history, Options: llm.ApplyOptions(opts...)})
	return f.respond(history[len(history)-1].Content)
}

type fakeMailer struct {
	mu   sync.Mutex
	err  error
	sent []string
}

func (m *fakeMailer) SendSubmissionNotice(requirements string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, requirements)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	err    error
	events []events.Event
}

func (p *fakePublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *fakePublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

const recommendationReply = "以下が推奨です。\n```json\n{" +
	`"推奨するプログラミング言語": [{"言語": "Go", "理由": "並行処理に強い"}],` +
	`"ツール、開発環境": [{"ツール": "Git"}],` +
	`"必要なコストと期間": {"コスト": "300万円", "期間": "6ヶ月"},` +
	`"その他検討が必要なこと": ["セキュリティ対策"]` +
	"}\n```"

var errModelDown = errors.New("connection refused")

// scriptedLLM routes on the prompt templates used by the wizard.
func scriptedLLM() *fakeLLM {
	return &fakeLLM{respond: func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "プロジェクト概要:"):
			return recommendationReply, nil
		case strings.Contains(prompt, "次に尋ねる可能性が高い質問"):
			return `{"next_questions": ["リスクは？", "体制は？", "テスト方針は？"]}`, nil
		case strings.Contains(prompt, "次の質問に簡潔に回答"):
			return "リスクは要件の曖昧さです。", nil
		case strings.Contains(prompt, "リソース配分やスケジュール管理"):
			return "3人体制で進めてください。", nil
		}
		return "こんにちは", nil
	}}
}

type wizardFixture struct {
	svc       IWizardService
	repo      *memory.SessionRepository
	llm       *fakeLLM
	mailer    *fakeMailer
	publisher *fakePublisher
}

func newWizardFixture(model *fakeLLM) *wizardFixture {
	f := &wizardFixture{
		repo:      memory.NewSessionRepository(time.Hour),
		llm:       model,
		mailer:    &fakeMailer{},
		publisher: &fakePublisher{},
	}
	f.svc = NewWizardService(
		f.repo,
		f.llm,
		f.mailer,
		f.publisher,
		ModelSettings{Temperature: 0.7, ShortMaxTokens: 150},
		NewSessionLocks(),
		logger.NewNopLogger(),
	)
	return f
}
