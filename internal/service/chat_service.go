// FILE: internal/service/chat_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pm-assistant-be/internal/dto"
	"pm-assistant-be/internal/pkg/logger"
	"pm-assistant-be/internal/pkg/metrics"
	"pm-assistant-be/internal/repository/contract"
	"pm-assistant-be/pkg/llm"
	"pm-assistant-be/pkg/store"
)

// IChatService is the free-form conversation of the in-progress stage.
type IChatService interface {
	History(ctx context.Context, sessionID string) ([]dto.ChatMessageDTO, error)
	SendMessage(ctx context.Context, sessionID, text string) (*dto.ChatReplyResponse, error)
	// StreamMessage calls emit once per character of the reply.
	StreamMessage(ctx context.Context, sessionID, text string, emit func(chunk string) error) (*dto.ChatReplyResponse, error)
}

type chatService struct {
	sessions    contract.SessionRepository
	llm         llm.LLMProvider
	temperature float64
	charDelay   time.Duration
	locks       *SessionLocks
	logger      logger.ILogger
	transcript  logger.ILogger
}

func NewChatService(
	sessions contract.SessionRepository,
	llmProvider llm.LLMProvider,
	temperature float64,
	charDelay time.Duration,
	locks *SessionLocks,
	log logger.ILogger,
	transcript logger.ILogger,
) IChatService {
	return &chatService{
		sessions:    sessions,
		llm:         llmProvider,
		temperature: temperature,
		charDelay:   charDelay,
		locks:       locks,
		logger:      log,
		transcript:  transcript,
	}
}

func (s *chatService) History(ctx context.Context, sessionID string) ([]dto.ChatMessageDTO, error) {
	unlock, err := s.locks.Lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, err := loadSession(ctx, s.sessions, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Stage != store.StageInProgress {
		return nil, ErrWrongStage
	}
	return toChatDTOs(session.ChatHistory), nil
}

func (s *chatService) SendMessage(ctx context.Context, sessionID, text string) (*dto.ChatReplyResponse, error) {
	unlock, err := s.locks.Lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, reply, err := s.reply(ctx, sessionID, text, "sync")
	if err != nil {
		return nil, err
	}
	if err := s.store(ctx, session, text, reply); err != nil {
		return nil, err
	}
	return &dto.ChatReplyResponse{Reply: reply, History: toChatDTOs(session.ChatHistory)}, nil
}

// StreamMessage stores the turn even when the receiver goes away mid-stream,
// since the reply was already produced. The session stays locked while streaming.
func (s *chatService) StreamMessage(ctx context.Context, sessionID, text string, emit func(chunk string) error) (*dto.ChatReplyResponse, error) {
	unlock, err := s.locks.Lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, reply, err := s.reply(ctx, sessionID, text, "stream")
	if err != nil {
		return nil, err
	}

	streamErr := llm.StreamRunes(ctx, reply, s.charDelay, emit)

	if err := s.store(context.WithoutCancel(ctx), session, text, reply); err != nil {
		return nil, err
	}
	if streamErr != nil {
		s.logger.Warn("Chat", "Stream interrupted", map[string]interface{}{
			"session_id": sessionID,
			"error":      streamErr,
		})
		return nil, streamErr
	}
	return &dto.ChatReplyResponse{Reply: reply, History: toChatDTOs(session.ChatHistory)}, nil
}

// reply asks the model with the full history plus the new user message.
// The session is not modified.
func (s *chatService) reply(ctx context.Context, sessionID, text, mode string) (*store.Session, string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, "", ErrEmptyInput
	}

	session, err := loadSession(ctx, s.sessions, sessionID)
	if err != nil {
		return nil, "", err
	}
	if session.Stage != store.StageInProgress {
		return nil, "", ErrWrongStage
	}

	history := make([]llm.Message, 0, len(session.ChatHistory)+1)
	for _, entry := range session.ChatHistory {
		history = append(history, llm.Message{Role: toLLMRole(entry.Role), Content: entry.Text})
	}
	history = append(history, llm.Message{Role: llm.RoleUser, Content: text})

	answer, err := s.llm.Chat(
		metrics.WithOperation(ctx, "chat"),
		history,
		llm.WithTemperature(s.temperature),
	)
	if errors.Is(err, llm.ErrTruncated) {
		err = nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}
	metrics.ChatTurns.WithLabelValues(mode).Inc()
	return session, answer, nil
}

func (s *chatService) store(ctx context.Context, session *store.Session, text, reply string) error {
	session.AppendChat(store.ChatRoleUser, strings.TrimSpace(text))
	session.AppendChat(store.ChatRoleAssistant, reply)
	if err := saveSession(ctx, s.sessions, session); err != nil {
		return err
	}

	s.transcript.Info("Chat", "turn", map[string]interface{}{
		"session_id": session.ID,
		"user":       strings.TrimSpace(text),
		"assistant":  reply,
		"turns":      len(session.ChatHistory) / 2,
	})
	return nil
}

func toLLMRole(role string) string {
	if role == store.ChatRoleAssistant {
		return llm.RoleAssistant
	}
	return llm.RoleUser
}
