package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
)

const systemInstruction = "You are a senior engineer writing build plans for developers. Respond only with valid JSON."

type modelPromptPayload struct {
	Prompt      string   `json:"prompt"`
	Suggestions []string `json:"suggestions"`
}

func buildModelRequest(tool domain.ToolDescriptor, in domain.GeneratorInput) string {
	locale := coalesce(in.Locale, "en")
	sb := &strings.Builder{}
	sb.WriteString("Respond strictly with JSON matching this schema: ")
	sb.WriteString(`{"prompt":string,"suggestions":string[]}`)
	fmt.Fprintf(sb, ". Use locale '%s' for language choices. The prompt field holds a markdown build plan.", locale)
	if in.IsRefinement() {
		sb.WriteString(" Extend the existing plan below with the selected enhancements. Keep every existing section and add an 'Updated Features' section.")
		fmt.Fprintf(sb, "\nSelected enhancements: %s", strings.Join(in.Selected, "; "))
		fmt.Fprintf(sb, "\nExisting plan:\n%s", in.PriorPrompt)
		return sb.String()
	}
	fmt.Fprintf(sb, " Write a build plan for a %s project.", coalesce(tool.Name, tool.Key))
	if tool.Key == domain.ToolGame {
		sb.WriteString(" Also return up to eight short feature suggestions the user could add later.")
	} else {
		sb.WriteString(" Return an empty suggestions array.")
	}
	sb.WriteString("\nInput details:")
	for _, step := range tool.Steps {
		for _, fd := range step.Fields {
			var v string
			if fd.Kind == domain.FieldList {
				v = strings.Join(in.Fields.Items(fd.Name), ", ")
			} else {
				v = in.Fields.Text(fd.Name)
			}
			if v == "" {
				continue
			}
			fmt.Fprintf(sb, "\n%s=%q", fd.Name, v)
		}
	}
	return sb.String()
}

// normalizeList trims entries and drops blanks and case-insensitive duplicates.
func normalizeList(items []string) []string {
	seen := make(map[string]struct{})
	result := []string{}
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		lower := strings.ToLower(item)
		if _, ok := seen[lower]; ok {
			continue
		}
		seen[lower] = struct{}{}
		result = append(result, item)
	}
	return result
}

func coalesce(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}

func parseModelPayload[T any](raw string) (T, error) {
	var zero T
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return zero, errors.New("empty payload")
	}
	var decoded T
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return zero, err
	}
	return decoded, nil
}

// outputFromModel turns raw model text into generator output. Model text that
// carries no prompt is an error so the caller can fall back.
func outputFromModel(raw, provider string, cost int64) (*domain.GeneratorOutput, error) {
	parsed, err := parseModelPayload[modelPromptPayload](raw)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(parsed.Prompt)
	if text == "" {
		return nil, errors.New("payload has no prompt")
	}
	return &domain.GeneratorOutput{
		PromptText:     text,
		Suggestions:    normalizeList(parsed.Suggestions),
		CreditsCharged: cost,
		Provider:       provider,
	}, nil
}

func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
