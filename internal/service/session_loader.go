package service

import (
	"context"
	"errors"

	"pm-assistant-be/internal/constant"
	"pm-assistant-be/internal/dto"
	"pm-assistant-be/internal/repository/contract"
	"pm-assistant-be/pkg/advisor"
	"pm-assistant-be/pkg/store"
)

// loadSession returns the stored session or a fresh one for first-time visitors.
func loadSession(ctx context.Context, repo contract.SessionRepository, sessionID string) (*store.Session, error) {
	s, err := repo.Get(ctx, sessionID)
	if errors.Is(err, contract.ErrSessionNotFound) {
		return store.NewSession(sessionID), nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func saveSession(ctx context.Context, repo contract.SessionRepository, s *store.Session) error {
	s.Touch()
	return repo.Save(ctx, s)
}

func toChatDTOs(entries []store.ChatEntry) []dto.ChatMessageDTO {
	out := make([]dto.ChatMessageDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.ChatMessageDTO{Role: e.Role, Text: e.Text})
	}
	return out
}

// toSessionView renders the session for the page. The recommendation is only
// rendered once the wizard reached the result step.
func toSessionView(s *store.Session) *dto.SessionView {
	view := &dto.SessionView{
		Stage:          string(s.Stage),
		Step:           s.Step,
		Requirements:   s.Requirements,
		Period:         s.Period,
		Budget:         s.Budget,
		DetailedAdvice: s.DetailedAdvice,
	}

	if s.Recommendation != nil && s.Step >= store.StepResult {
		view.Recommendation = advisor.RenderRecommendation(s.Recommendation)
	}

	if s.Stage == store.StageExecute && s.Step == store.StepAdvice {
		if s.NextQuestions == nil {
			view.NextQuestionsNotice = constant.NextQuestionsMissing
		} else {
			view.NextQuestions = s.NextQuestions
		}
	}

	if s.Stage == store.StageInProgress {
		view.ChatHistory = toChatDTOs(s.ChatHistory)
	}
	return view
}
