package dto

import "pm-assistant-be/pkg/advisor"

type SelectStageRequest struct {
	// Either the enum value or the option label text.
	Stage string `json:"stage" validate:"required"`
}

type SubmitRequirementsRequest struct {
	Requirements string `json:"requirements" validate:"required,max=10000"`
}

type SubmitDetailsRequest struct {
	Period string `json:"period" validate:"required,max=200"`
	Budget int64  `json:"budget" validate:"gt=0"`
}

// NotificationResult is the user-visible outcome of the submission email.
type NotificationResult struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}

type ChatMessageDTO struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// SessionView is what the page renders for the current stage and step.
type SessionView struct {
	Stage               string            `json:"stage"`
	Step                int               `json:"step"`
	Requirements        string            `json:"requirements,omitempty"`
	Recommendation      []advisor.Section `json:"recommendation,omitempty"`
	Period              string            `json:"period,omitempty"`
	Budget              int64             `json:"budget,omitempty"`
	DetailedAdvice      string            `json:"detailed_advice,omitempty"`
	NextQuestions       []string          `json:"next_questions,omitempty"`
	NextQuestionsNotice string            `json:"next_questions_notice,omitempty"`
	ChatHistory         []ChatMessageDTO  `json:"chat_history,omitempty"`
}

type SubmitRequirementsResponse struct {
	Session      *SessionView        `json:"session"`
	Parsed       bool                `json:"parsed"`
	Notification *NotificationResult `json:"notification,omitempty"`
}

type FollowUpResponse struct {
	Index    int    `json:"index"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
