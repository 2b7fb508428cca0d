package advisor

import (
	"encoding/json"
	"fmt"

	"pm-assistant-be/internal/constant"
)

func BuildRecommendationPrompt(requirements string) string {
	return fmt.Sprintf(constant.RecommendationPromptTmpl, requirements)
}

func BuildAdvicePrompt(requirements, period string, budget int64) string {
	return fmt.Sprintf(constant.AdvicePromptTmpl, requirements, period, budget)
}

// QuestionContext is the wizard state the next-questions prompt is grounded on.
type QuestionContext struct {
	Requirements string `json:"requirements"`
	Period       string `json:"period"`
	Budget       int64  `json:"budget"`
}

func BuildNextQuestionsPrompt(qc QuestionContext) string {
	raw, err := json.Marshal(qc)
	if err != nil {
		// a struct of strings and ints always marshals
		raw = []byte(fmt.Sprintf("%+v", qc))
	}
	return fmt.Sprintf(constant.NextQuestionsPromptTmpl, raw)
}

func BuildFollowUpPrompt(qc QuestionContext, advice, question string) string {
	return fmt.Sprintf(constant.FollowUpPromptTmpl, qc.Requirements, qc.Period, qc.Budget, advice, question)
}
