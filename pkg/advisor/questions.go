package advisor

import (
	"encoding/json"

	"pm-assistant-be/internal/constant"
)

// ParseNextQuestions reads {"next_questions": [...]} out of a model reply.
//
//   - unparseable reply: a single placeholder question, ok=false
//   - key missing: empty list
//   - key present but not a list: nil, which the view reports as unavailable
func ParseNextQuestions(reply string) (questions []string, ok bool) {
	raw, err := ExtractJSONObject(reply)
	if err != nil {
		return []string{constant.InfoUnavailable}, false
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return []string{constant.InfoUnavailable}, false
	}

	value, found := payload[constant.NextQuestionsKey]
	if !found {
		return []string{}, true
	}
	items, isList := value.([]interface{})
	if !isList {
		return nil, true
	}

	questions = make([]string, 0, len(items))
	for _, item := range items {
		questions = append(questions, textOf(item))
	}
	return questions, true
}
