package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string {
	return "stub-model"
}

func TestExtractorCompetencies(t *testing.T) {
	stub := &stubGenerator{response: "```json\n" + `{
		"obrigatorias": ["Python", "SQL"],
		"desejaveis": ["Docker"],
		"sinonimos": {"Python": ["Django", "Flask"]}
	}` + "\n```"}

	extractor := NewExtractor(stub, nil, 0)

	profile, err := extractor.Competencies(context.Background(), "Python e SQL obrigatórios, Docker desejável")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(profile.Required) != 2 || profile.Required[0] != "Python" {
		t.Fatalf("unexpected required competencies: %v", profile.Required)
	}
	if len(profile.Desirable) != 1 || profile.Desirable[0] != "Docker" {
		t.Fatalf("unexpected desirable competencies: %v", profile.Desirable)
	}
	if len(profile.Synonyms["Python"]) != 2 {
		t.Fatalf("unexpected synonyms: %v", profile.Synonyms)
	}

	if !strings.Contains(stub.lastPrompt, "Python e SQL obrigatórios") {
		t.Fatalf("expected the competency text in the prompt")
	}
	if strings.Contains(stub.lastPrompt, "{{COMPETENCIES_TEXT}}") {
		t.Fatalf("placeholder must be replaced")
	}
}

func TestExtractorGeneratorError(t *testing.T) {
	genErr := errors.New("quota exceeded")
	extractor := NewExtractor(&stubGenerator{err: genErr}, nil, 0)

	if _, err := extractor.Competencies(context.Background(), "text"); !errors.Is(err, genErr) {
		t.Fatalf("expected generator error, got %v", err)
	}
}

func TestExtractorMalformedResponse(t *testing.T) {
	cases := []struct {
		name     string
		response string
	}{
		{"not json", "sorry, I cannot help with that"},
		{"empty", "```json\n```"},
		{"no competencies", `{"obrigatorias": [], "desejaveis": [], "sinonimos": {}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			extractor := NewExtractor(&stubGenerator{response: tc.response}, nil, 0)
			if _, err := extractor.Competencies(context.Background(), "text"); err == nil {
				t.Fatalf("expected error for %s response", tc.name)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"{\"a\": 1}", `{"a": 1}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"  `{\"a\": 1}`  ", `{"a": 1}`},
	}

	for _, tc := range cases {
		if got := extractJSON(tc.in); got != tc.want {
			t.Fatalf("extractJSON(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
