package ai

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/decisionhq/recruit-ranker/internal/logger"
	"github.com/decisionhq/recruit-ranker/internal/store"
)

//go:embed prompts/report.md
var reportTemplate string

//go:embed prompts/comparative.md
var comparativeTemplate string

// Reporter turns interview transcripts into per-candidate reports and, once
// at least two reports exist, into a comparative hiring recommendation.
type Reporter struct {
	generator Generator
	logger    *zap.Logger
	maxLogLen int
}

func NewReporter(generator Generator, log *zap.Logger, maxLogLength int) *Reporter {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Reporter{
		generator: generator,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// InterviewReport writes the structured evaluation of a finished interview.
func (r *Reporter) InterviewReport(ctx context.Context, req *store.Requisition, candidateName string, transcript []Turn) (string, error) {
	if req == nil {
		return "", fmt.Errorf("requisition is required")
	}
	if len(transcript) == 0 {
		return "", fmt.Errorf("transcript is empty")
	}

	prompt := fillTemplate(reportTemplate, map[string]string{
		"REQUISITION_TITLE": req.Title,
		"CANDIDATE_NAME":    candidateName,
		"TRANSCRIPT":        FormatTranscript(transcript),
	})

	return r.generate(ctx, "interview report", prompt)
}

// ComparativeAnalysis ranks the finalists of a requisition based on their
// individual interview reports and writes a recommendation for the client.
func (r *Reporter) ComparativeAnalysis(ctx context.Context, req *store.Requisition, reports []string) (string, error) {
	if req == nil {
		return "", fmt.Errorf("requisition is required")
	}
	if len(reports) < 2 {
		return "", fmt.Errorf("comparative analysis needs at least 2 reports, got %d", len(reports))
	}

	prompt := fillTemplate(comparativeTemplate, map[string]string{
		"REQUISITION_TITLE": req.Title,
		"CLIENT":            req.Client,
		"REPORTS":           strings.Join(reports, "\n\n---\n\n"),
	})

	return r.generate(ctx, "comparative analysis", prompt)
}

func (r *Reporter) generate(ctx context.Context, kind, prompt string) (string, error) {
	r.logger.Debug(kind+" request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, r.maxLogLen)),
	)

	raw, err := r.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	r.logger.Debug(kind+" response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, r.maxLogLen)),
	)

	report := strings.TrimSpace(raw)
	if report == "" {
		return "", fmt.Errorf("empty %s response", kind)
	}

	return report, nil
}
