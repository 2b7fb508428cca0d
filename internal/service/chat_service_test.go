package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pm-assistant-be/internal/dto"
	"pm-assistant-be/internal/pkg/logger"
	"pm-assistant-be/internal/repository/memory"
	"pm-assistant-be/pkg/llm"
	"pm-assistant-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatFixture(t *testing.T, model *fakeLLM, stage store.Stage) (IChatService, *memory.SessionRepository) {
	t.Helper()
	repo := memory.NewSessionRepository(time.Hour)
	session := store.NewSession("s1")
	session.Stage = stage
	require.NoError(t, repo.Save(context.Background(), session))

	svc := NewChatService(repo, model, 0.7, 0, NewSessionLocks(), logger.NewNopLogger(), logger.NewNopLogger())
	return svc, repo
}

func TestSendMessageSendsWholeHistory(t *testing.T) {
	ctx := context.Background()
	model := &fakeLLM{respond: func(prompt string) (string, error) {
		return "返信: " + prompt, nil
	}}
	svc, _ := newChatFixture(t, model, store.StageInProgress)

	first, err := svc.SendMessage(ctx, "s1", "進捗が遅れています")
	require.NoError(t, err)
	assert.Equal(t, "返信: 進捗が遅れています", first.Reply)

	second, err := svc.SendMessage(ctx, "s1", "どうすれば？")
	require.NoError(t, err)
	assert.Equal(t, []dto.ChatMessageDTO{
		{Role: store.ChatRoleUser, Text: "進捗が遅れています"},
		{Role: store.ChatRoleAssistant, Text: "返信: 進捗が遅れています"},
		{Role: store.ChatRoleUser, Text: "どうすれば？"},
		{Role: store.ChatRoleAssistant, Text: "返信: どうすれば？"},
	}, second.History)

	calls := model.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleUser, Content: "進捗が遅れています"},
		{Role: llm.RoleAssistant, Content: "返信: 進捗が遅れています"},
		{Role: llm.RoleUser, Content: "どうすれば？"},
	}, calls[1].History)

	history, err := svc.History(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, history, 4)
}

func TestSendMessageGuards(t *testing.T) {
	ctx := context.Background()

	t.Run("other stage", func(t *testing.T) {
		svc, _ := newChatFixture(t, scriptedLLM(), store.StagePlan)
		_, err := svc.SendMessage(ctx, "s1", "hi")
		assert.ErrorIs(t, err, ErrWrongStage)
		_, err = svc.History(ctx, "s1")
		assert.ErrorIs(t, err, ErrWrongStage)
	})

	t.Run("blank message", func(t *testing.T) {
		svc, _ := newChatFixture(t, scriptedLLM(), store.StageInProgress)
		_, err := svc.SendMessage(ctx, "s1", " \n ")
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("model failure leaves history untouched", func(t *testing.T) {
		model := &fakeLLM{respond: func(string) (string, error) { return "", errModelDown }}
		svc, repo := newChatFixture(t, model, store.StageInProgress)
		_, err := svc.SendMessage(ctx, "s1", "hi")
		assert.ErrorIs(t, err, ErrLLMUnavailable)

		session, err := repo.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Empty(t, session.ChatHistory)
	})
}

func TestStreamMessageEmitsPerCharacter(t *testing.T) {
	ctx := context.Background()
	model := &fakeLLM{respond: func(string) (string, error) { return "了解です", nil }}
	svc, repo := newChatFixture(t, model, store.StageInProgress)

	var chunks []string
	resp, err := svc.StreamMessage(ctx, "s1", "状況を共有します", func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"了", "解", "で", "す"}, chunks)
	assert.Equal(t, "了解です", resp.Reply)

	session, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, session.ChatHistory, 2)
}

func TestStreamMessageStoresTurnWhenReceiverLeaves(t *testing.T) {
	ctx := context.Background()
	model := &fakeLLM{respond: func(string) (string, error) { return strings.Repeat("あ", 10), nil }}
	svc, repo := newChatFixture(t, model, store.StageInProgress)

	gone := errors.New("connection closed")
	sent := 0
	_, err := svc.StreamMessage(ctx, "s1", "hi", func(string) error {
		sent++
		if sent == 3 {
			return gone
		}
		return nil
	})
	assert.ErrorIs(t, err, gone)

	session, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, session.ChatHistory, 2)
	assert.Equal(t, strings.Repeat("あ", 10), session.ChatHistory[1].Text)
}

func TestConcurrentMessagesKeepBothTurns(t *testing.T) {
	ctx := context.Background()
	model := &fakeLLM{respond: func(prompt string) (string, error) {
		time.Sleep(20 * time.Millisecond)
		return "返信: " + prompt, nil
	}}
	svc, repo := newChatFixture(t, model, store.StageInProgress)

	errs := make(chan error, 2)
	for _, text := range []string{"一つ目", "二つ目"} {
		go func() {
			_, err := svc.SendMessage(ctx, "s1", text)
			errs <- err
		}()
	}
	require.NoError(t, <-errs)
	require.NoError(t, <-errs)

	session, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, session.ChatHistory, 4)
}

func TestTruncatedChatReplyIsKept(t *testing.T) {
	ctx := context.Background()
	model := &fakeLLM{respond: func(string) (string, error) { return "途中まで", llm.ErrTruncated }}
	svc, _ := newChatFixture(t, model, store.StageInProgress)

	resp, err := svc.SendMessage(ctx, "s1", "hi")
	require.NoError(t, err)
	assert.Equal(t, "途中まで", resp.Reply)
}
