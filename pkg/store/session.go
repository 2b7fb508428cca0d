package store

import (
	"strings"
	"time"
)

// Stage is the top-level flow the user picked on the landing form.
type Stage string

const (
	StageUnset      Stage = ""
	StagePlan       Stage = "plan"
	StageExecute    Stage = "execute"
	StageInProgress Stage = "in_progress"
)

// Labels shown on the landing form. ParseStage accepts either these or the enum value.
const (
	StagePlanLabel       = "立案段階：どのように開発を始めたらいいか（手法・予算など）を相談したい"
	StageExecuteLabel    = "実行段階：ある程度計画は決まっているので、より具体的な相談がしたい"
	StageInProgressLabel = "進行中：すでに実行中で、今の状況を踏まえて今後について相談したい"
)

func (s Stage) Valid() bool {
	switch s {
	case StagePlan, StageExecute, StageInProgress:
		return true
	}
	return false
}

// ParseStage maps a submitted radio value onto a Stage. Unknown input yields StageUnset.
func ParseStage(value string) Stage {
	v := strings.TrimSpace(value)
	if s := Stage(v); s.Valid() {
		return s
	}
	switch {
	case strings.Contains(v, "立案段階"):
		return StagePlan
	case strings.Contains(v, "実行段階"):
		return StageExecute
	case strings.Contains(v, "進行中"):
		return StageInProgress
	}
	return StageUnset
}

// Wizard positions. StepUnset behaves like StepInput for the plan flow.
const (
	StepUnset  = 0
	StepInput  = 1
	StepResult = 2
	StepAdvice = 3
)

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

type ChatEntry struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Recommendation is the decoded model reply: category name to a list, an object or plain text.
type Recommendation map[string]interface{}

// Session is everything a single visitor has entered or received so far.
type Session struct {
	ID             string         `json:"id"`
	Stage          Stage          `json:"stage"`
	Step           int            `json:"step"`
	Requirements   string         `json:"requirements"`
	Recommendation Recommendation `json:"recommendation,omitempty"`
	Period         string         `json:"period"`
	Budget         int64          `json:"budget"`
	DetailedAdvice string         `json:"detailed_advice"`
	NextQuestions  []string       `json:"next_questions"`
	ChatHistory    []ChatEntry    `json:"chat_history"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func NewSession(id string) *Session {
	return &Session{ID: id, UpdatedAt: time.Now()}
}

// Reset clears every field except the identity.
func (s *Session) Reset() {
	*s = Session{ID: s.ID, UpdatedAt: time.Now()}
}

func (s *Session) AppendChat(role, text string) {
	s.ChatHistory = append(s.ChatHistory, ChatEntry{Role: role, Text: text})
}

func (s *Session) Touch() {
	s.UpdatedAt = time.Now()
}

// Clone returns a copy that shares no slices or maps with s.
func (s *Session) Clone() *Session {
	c := *s
	if s.Recommendation != nil {
		c.Recommendation = make(Recommendation, len(s.Recommendation))
		for k, v := range s.Recommendation {
			c.Recommendation[k] = v
		}
	}
	// nil and empty NextQuestions mean different things, so emptiness survives the copy
	if s.NextQuestions != nil {
		c.NextQuestions = append(make([]string, 0, len(s.NextQuestions)), s.NextQuestions...)
	}
	if s.ChatHistory != nil {
		c.ChatHistory = append(make([]ChatEntry, 0, len(s.ChatHistory)), s.ChatHistory...)
	}
	return &c
}
