// Package ai holds the provider-agnostic generative assistants: competency
// extraction for the fallback scorer, the scripted interview, and the
// report writers. Providers only need to implement Generator.
package ai

import (
	"context"
	"strings"
)

// Generator produces a textual completion for a prompt. Implementations
// wrap a concrete provider SDK and must be safe for sequential reuse.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// extractJSON strips markdown code fences and stray backticks around a JSON
// payload returned by a model.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

// fillTemplate replaces {{KEY}} placeholders in a prompt template.
func fillTemplate(template string, replacements map[string]string) string {
	for key, value := range replacements {
		template = strings.ReplaceAll(template, "{{"+key+"}}", value)
	}
	return template
}
