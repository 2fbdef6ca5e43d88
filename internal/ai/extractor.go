package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/decisionhq/recruit-ranker/internal/heuristic"
	"github.com/decisionhq/recruit-ranker/internal/logger"
)

//go:embed prompts/competencies.md
var competenciesTemplate string

const defaultMaxLogLength = 200

// Extractor asks a generative model to structure the free-text competency
// section of a requisition into the profile consumed by the keyword scorer.
type Extractor struct {
	generator Generator
	logger    *zap.Logger
	maxLogLen int
}

func NewExtractor(generator Generator, log *zap.Logger, maxLogLength int) *Extractor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Extractor{
		generator: generator,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// Competencies extracts the required and desirable competencies, plus known
// synonyms, from a requisition's competency text.
func (e *Extractor) Competencies(ctx context.Context, competenciesText string) (*heuristic.CompetencyProfile, error) {
	prompt := fillTemplate(competenciesTemplate, map[string]string{
		"COMPETENCIES_TEXT": competenciesText,
	})

	e.logger.Debug("competency extraction request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("competency extraction response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, e.maxLogLen)),
	)

	return parseCompetencies(raw)
}

func parseCompetencies(raw string) (*heuristic.CompetencyProfile, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("empty competency extraction response")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("parse competency extraction response: %w", err)
	}

	profile := &heuristic.CompetencyProfile{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           profile,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("build competency decoder: %w", err)
	}
	if err := decoder.Decode(payload); err != nil {
		return nil, fmt.Errorf("decode competency extraction response: %w", err)
	}

	if profile.Empty() {
		return nil, fmt.Errorf("competency extraction returned no competencies")
	}

	return profile, nil
}
