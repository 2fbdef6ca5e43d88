package ai

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/decisionhq/recruit-ranker/internal/logger"
	"github.com/decisionhq/recruit-ranker/internal/store"
)

//go:embed prompts/interview.md
var interviewTemplate string

const (
	// RoleInterviewer marks turns produced by the assistant.
	RoleInterviewer = "Interviewer"
	// RoleCandidate marks turns typed by the interviewee.
	RoleCandidate = "Candidate"

	// DefaultMaxQuestions bounds the interview length when no limit is configured.
	DefaultMaxQuestions = 7
)

// Turn is a single exchange in an interview transcript.
type Turn struct {
	Role    string
	Content string
}

// Interviewer drives a one-question-at-a-time screening interview for a
// candidate against a requisition.
type Interviewer struct {
	generator    Generator
	logger       *zap.Logger
	maxQuestions int
	maxLogLen    int
}

func NewInterviewer(generator Generator, log *zap.Logger, maxQuestions, maxLogLength int) *Interviewer {
	if maxQuestions <= 0 {
		maxQuestions = DefaultMaxQuestions
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Interviewer{
		generator:    generator,
		logger:       log,
		maxQuestions: maxQuestions,
		maxLogLen:    maxLogLength,
	}
}

// MaxQuestions reports the configured question cap.
func (i *Interviewer) MaxQuestions() int {
	return i.maxQuestions
}

// NextQuestion produces the next interviewer turn given the conversation so
// far. questionNumber is 1-based.
func (i *Interviewer) NextQuestion(ctx context.Context, req *store.Requisition, cand *store.Candidate, transcript []Turn, questionNumber int) (string, error) {
	if req == nil {
		return "", fmt.Errorf("requisition is required")
	}
	if cand == nil {
		return "", fmt.Errorf("candidate is required")
	}

	prompt := fillTemplate(interviewTemplate, map[string]string{
		"QUESTION_NUMBER":          strconv.Itoa(questionNumber),
		"MAX_QUESTIONS":            strconv.Itoa(i.maxQuestions),
		"REQUISITION_TITLE":        req.Title,
		"REQUISITION_COMPETENCIES": req.Competencies(),
		"CANDIDATE_NAME":           cand.FullName,
		"CANDIDATE_TEXT":           cand.Text(),
		"TRANSCRIPT":               FormatTranscript(transcript),
	})

	i.logger.Debug("interview question request",
		zap.String("requisition_id", req.ID),
		zap.String("candidate_id", cand.ID),
		zap.Int("question_number", questionNumber),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, i.maxLogLen)),
	)

	raw, err := i.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	i.logger.Debug("interview question response",
		zap.String("requisition_id", req.ID),
		zap.String("candidate_id", cand.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, i.maxLogLen)),
	)

	question := strings.TrimSpace(raw)
	if question == "" {
		return "", fmt.Errorf("empty interview response")
	}

	return question, nil
}

// FormatTranscript renders an interview transcript as the plain text block
// used inside prompts and saved reports.
func FormatTranscript(transcript []Turn) string {
	if len(transcript) == 0 {
		return "(the interview has not started yet)"
	}

	lines := make([]string, 0, len(transcript))
	for _, turn := range transcript {
		lines = append(lines, fmt.Sprintf("%s: %s", turn.Role, turn.Content))
	}

	return strings.Join(lines, "\n")
}
