package advisor

import (
	"encoding/json"
	"fmt"
	"strconv"

	"pm-assistant-be/internal/constant"
	"pm-assistant-be/pkg/store"
)

// Categories lists the recommendation keys in display order.
var Categories = []string{
	constant.CategoryLanguages,
	constant.CategoryTools,
	constant.CategoryCostAndPeriod,
	constant.CategoryConsiderations,
}

// PlaceholderRecommendation is stored when the model reply cannot be decoded.
func PlaceholderRecommendation() store.Recommendation {
	rec := make(store.Recommendation, len(Categories))
	for _, c := range Categories {
		rec[c] = constant.InfoUnavailable
	}
	return rec
}

// ParseRecommendation decodes the model reply. ok is false when the placeholder
// mapping was substituted.
func ParseRecommendation(reply string) (rec store.Recommendation, ok bool) {
	raw, err := ExtractJSONObject(reply)
	if err != nil {
		return PlaceholderRecommendation(), false
	}
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return PlaceholderRecommendation(), false
	}
	return rec, true
}

// Section is one rendered recommendation category. Exactly one of Items or Notice is set.
type Section struct {
	Title  string   `json:"title"`
	Items  []string `json:"items,omitempty"`
	Notice string   `json:"notice,omitempty"`
}

// RenderRecommendation turns the loosely typed mapping into display sections.
func RenderRecommendation(rec store.Recommendation) []Section {
	return []Section{
		renderChoices(constant.CategoryLanguages, rec, constant.FieldLanguage),
		renderChoices(constant.CategoryTools, rec, constant.FieldTool),
		renderCostAndPeriod(rec),
		renderList(constant.CategoryConsiderations, rec),
	}
}

func lookup(rec store.Recommendation, key string) interface{} {
	v, ok := rec[key]
	if !ok || v == nil {
		return constant.InfoMissing
	}
	return v
}

func renderChoices(title string, rec store.Recommendation, nameField string) Section {
	value := lookup(rec, title)
	items, ok := value.([]interface{})
	if !ok {
		return Section{Title: title, Notice: textOf(value)}
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			lines = append(lines, textOf(item))
			continue
		}
		name := fieldOr(obj, nameField, constant.ValueUnknown)
		reason := fieldOr(obj, constant.FieldReason, constant.ReasonMissing)
		lines = append(lines, fmt.Sprintf("%s: %s", name, reason))
	}
	return Section{Title: title, Items: lines}
}

func renderCostAndPeriod(rec store.Recommendation) Section {
	title := constant.CategoryCostAndPeriod
	value := lookup(rec, title)
	obj, ok := value.(map[string]interface{})
	if !ok {
		return Section{Title: title, Notice: textOf(value)}
	}
	return Section{
		Title: title,
		Items: []string{
			fmt.Sprintf("%s: %s", constant.FieldCost, fieldOr(obj, constant.FieldCost, constant.ValueUnknown)),
			fmt.Sprintf("%s: %s", constant.FieldPeriod, fieldOr(obj, constant.FieldPeriod, constant.ValueUnknown)),
		},
	}
}

func renderList(title string, rec store.Recommendation) Section {
	value := lookup(rec, title)
	items, ok := value.([]interface{})
	if !ok {
		return Section{Title: title, Notice: textOf(value)}
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, textOf(item))
	}
	return Section{Title: title, Items: lines}
}

func fieldOr(obj map[string]interface{}, key, fallback string) string {
	v, ok := obj[key]
	if !ok || v == nil {
		return fallback
	}
	if s := textOf(v); s != "" {
		return s
	}
	return fallback
}

// textOf renders scalars as-is and anything structured as compact JSON.
func textOf(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}
