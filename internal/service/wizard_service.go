// FILE: internal/service/wizard_service.go
// Stage/step state machine behind the plan and execute wizards.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pm-assistant-be/internal/constant"
	"pm-assistant-be/internal/dto"
	"pm-assistant-be/internal/pkg/logger"
	"pm-assistant-be/internal/pkg/mailer"
	"pm-assistant-be/internal/pkg/metrics"
	"pm-assistant-be/internal/repository/contract"
	"pm-assistant-be/pkg/advisor"
	"pm-assistant-be/pkg/events"
	"pm-assistant-be/pkg/llm"
	"pm-assistant-be/pkg/store"

	"golang.org/x/sync/errgroup"
)

type IWizardService interface {
	GetState(ctx context.Context, sessionID string) (*dto.SessionView, error)
	SelectStage(ctx context.Context, sessionID, stage string) (*dto.SessionView, error)
	SubmitRequirements(ctx context.Context, sessionID string, stage store.Stage, requirements string) (*dto.SubmitRequirementsResponse, error)
	SubmitDetails(ctx context.Context, sessionID, period string, budget int64) (*dto.SessionView, error)
	AskNextQuestion(ctx context.Context, sessionID string, index int) (*dto.FollowUpResponse, error)
	Reset(ctx context.Context, sessionID string) (*dto.SessionView, error)
}

// ModelSettings are the two model configurations the wizard uses: the default one
// and a short one for the follow-up question list.
type ModelSettings struct {
	Temperature    float64
	ShortMaxTokens int
}

type wizardService struct {
	sessions  contract.SessionRepository
	llm       llm.LLMProvider
	mailer    mailer.IEmailService
	publisher IPublisherService
	settings  ModelSettings
	locks     *SessionLocks
	logger    logger.ILogger
}

func NewWizardService(
	sessions contract.SessionRepository,
	llmProvider llm.LLMProvider,
	emailService mailer.IEmailService,
	publisher IPublisherService,
	settings ModelSettings,
	locks *SessionLocks,
	log logger.ILogger,
) IWizardService {
	return &wizardService{
		sessions:  sessions,
		llm:       llmProvider,
		mailer:    emailService,
		publisher: publisher,
		settings:  settings,
		locks:     locks,
		logger:    log,
	}
}

func (s *wizardService) GetState(ctx context.Context, sessionID string) (*dto.SessionView, error) {
	unlock, err := s.locks.Lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, err := loadSession(ctx, s.sessions, sessionID)
	if err != nil {
		return nil, err
	}
	// the execute flow starts at step 1 as soon as it is shown
	if session.Stage == store.StageExecute && session.Step == store.StepUnset {
		session.Step = store.StepInput
		if err := saveSession(ctx, s.sessions, session); err != nil {
			return nil, err
		}
	}
	return toSessionView(session), nil
}

func (s *wizardService) SelectStage(ctx context.Context, sessionID, stage string) (*dto.SessionView, error) {
	selected := store.ParseStage(stage)
	if selected == store.StageUnset {
		return nil, ErrInvalidStage
	}

	unlock, err := s.locks.Lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, err := loadSession(ctx, s.sessions, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Stage != store.StageUnset {
		return nil, ErrStageAlreadySelected
	}

	session.Stage = selected
	if selected == store.StageExecute {
		session.Step = store.StepInput
	}
	if err := saveSession(ctx, s.sessions, session); err != nil {
		return nil, err
	}

	s.logger.Info("Wizard", "Stage selected", map[string]interface{}{"session_id": sessionID, "stage": selected})
	return toSessionView(session), nil
}

// SubmitRequirements runs the recommendation round trip for the plan and execute flows.
func (s *wizardService) SubmitRequirements(ctx context.Context, sessionID string, stage store.Stage, requirements string) (*dto.SubmitRequirementsResponse, error) {
	requirements = strings.TrimSpace(requirements)
	if requirements == "" {
		return nil, ErrEmptyInput
	}

	unlock, err := s.locks.Lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, err := loadSession(ctx, s.sessions, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Stage != stage || (stage != store.StagePlan && stage != store.StageExecute) {
		return nil, ErrWrongStage
	}
	if session.Step != store.StepUnset && session.Step != store.StepInput {
		return nil, ErrWrongStep
	}

	reply, err := s.generate(ctx, "recommendation",
		advisor.BuildRecommendationPrompt(requirements),
		llm.WithTemperature(s.settings.Temperature),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}

	recommendation, parsed := advisor.ParseRecommendation(reply)

	var notification *dto.NotificationResult
	if parsed {
		notification = s.notify(requirements)
	} else {
		metrics.ReplyParseFailures.WithLabelValues("recommendation").Inc()
		s.logger.Warn("Wizard", "Recommendation reply had no parseable JSON", map[string]interface{}{
			"session_id":  sessionID,
			"reply_bytes": len(reply),
		})
	}

	session.Requirements = requirements
	session.Recommendation = recommendation
	session.Step = store.StepResult
	if err := saveSession(ctx, s.sessions, session); err != nil {
		return nil, err
	}
	metrics.WizardTransitions.WithLabelValues(string(stage), strconv.Itoa(store.StepResult)).Inc()

	s.publish(ctx, events.New(events.TypeProjectSubmitted, map[string]interface{}{
		"session_id":   sessionID,
		"stage":        string(stage),
		"requirements": requirements,
		"parsed":       parsed,
	}))

	return &dto.SubmitRequirementsResponse{
		Session:      toSessionView(session),
		Parsed:       parsed,
		Notification: notification,
	}, nil
}

// notify sends the submission mail. Failures become a message for the user.
func (s *wizardService) notify(requirements string) *dto.NotificationResult {
	if err := s.mailer.SendSubmissionNotice(requirements); err != nil {
		metrics.NotificationEmails.WithLabelValues("error").Inc()
		return &dto.NotificationResult{
			Sent:    false,
			Message: fmt.Sprintf(constant.MailFailedMessageTmpl, err),
		}
	}
	metrics.NotificationEmails.WithLabelValues("sent").Inc()
	return &dto.NotificationResult{Sent: true, Message: constant.MailSentMessage}
}

func (s *wizardService) SubmitDetails(ctx context.Context, sessionID, period string, budget int64) (*dto.SessionView, error) {
	period = strings.TrimSpace(period)
	if period == "" || budget <= 0 {
		return nil, ErrEmptyInput
	}

	unlock, err := s.locks.Lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, err := loadSession(ctx, s.sessions, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Stage != store.StageExecute {
		return nil, ErrWrongStage
	}
	if session.Step != store.StepResult {
		return nil, ErrWrongStep
	}

	qc := advisor.QuestionContext{Requirements: session.Requirements, Period: period, Budget: budget}

	var adviceReply, questionsReply string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		adviceReply, err = s.generate(gctx, "detailed_advice",
			advisor.BuildAdvicePrompt(session.Requirements, period, budget),
			llm.WithTemperature(s.settings.Temperature),
		)
		return err
	})
	g.Go(func() error {
		var err error
		questionsReply, err = s.generate(gctx, "next_questions",
			advisor.BuildNextQuestionsPrompt(qc),
			llm.WithTemperature(s.settings.Temperature),
			llm.WithMaxTokens(s.settings.ShortMaxTokens),
		)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}

	questions, ok := advisor.ParseNextQuestions(questionsReply)
	if !ok {
		metrics.ReplyParseFailures.WithLabelValues("next_questions").Inc()
	}

	session.Period = period
	session.Budget = budget
	session.DetailedAdvice = adviceReply
	session.NextQuestions = questions
	session.Step = store.StepAdvice
	if err := saveSession(ctx, s.sessions, session); err != nil {
		return nil, err
	}
	metrics.WizardTransitions.WithLabelValues(string(store.StageExecute), strconv.Itoa(store.StepAdvice)).Inc()

	s.publish(ctx, events.New(events.TypeAdviceGenerated, map[string]interface{}{
		"session_id": sessionID,
		"period":     period,
		"budget":     budget,
		"questions":  len(questions),
	}))

	return toSessionView(session), nil
}

// AskNextQuestion echoes the chosen suggestion (1-based) and answers it.
func (s *wizardService) AskNextQuestion(ctx context.Context, sessionID string, index int) (*dto.FollowUpResponse, error) {
	unlock, err := s.locks.Lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, err := loadSession(ctx, s.sessions, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Stage != store.StageExecute {
		return nil, ErrWrongStage
	}
	if session.Step != store.StepAdvice {
		return nil, ErrWrongStep
	}
	if index < 1 || index > len(session.NextQuestions) {
		return nil, ErrQuestionOutOfRange
	}

	question := session.NextQuestions[index-1]
	qc := advisor.QuestionContext{Requirements: session.Requirements, Period: session.Period, Budget: session.Budget}

	answer, err := s.generate(ctx, "follow_up",
		advisor.BuildFollowUpPrompt(qc, session.DetailedAdvice, question),
		llm.WithTemperature(s.settings.Temperature),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}

	return &dto.FollowUpResponse{Index: index, Question: question, Answer: answer}, nil
}

func (s *wizardService) Reset(ctx context.Context, sessionID string) (*dto.SessionView, error) {
	unlock, err := s.locks.Lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, err := loadSession(ctx, s.sessions, sessionID)
	if err != nil {
		return nil, err
	}
	session.Reset()
	if err := saveSession(ctx, s.sessions, session); err != nil {
		return nil, err
	}
	s.logger.Info("Wizard", "Session reset", map[string]interface{}{"session_id": sessionID})
	return toSessionView(session), nil
}

// generate calls the model under the metrics label op. A reply cut at the token
// limit is used as is; the parsers fall back to placeholders when it is incomplete.
func (s *wizardService) generate(ctx context.Context, op, prompt string, opts ...llm.Option) (string, error) {
	reply, err := s.llm.Generate(metrics.WithOperation(ctx, op), prompt, opts...)
	if errors.Is(err, llm.ErrTruncated) {
		return reply, nil
	}
	return reply, err
}

func (s *wizardService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Wizard", "Failed to publish event", map[string]interface{}{
			"event_type": event.EventType(),
			"error":      err,
		})
	}
}
