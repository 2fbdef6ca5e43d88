package ai

import (
	"context"
	"strings"
	"testing"

	"github.com/decisionhq/recruit-ranker/internal/store"
)

func TestReporterInterviewReport(t *testing.T) {
	stub := &stubGenerator{response: "### Final Interview Report - Ana Souza\n**1. Overall Score:** 8"}
	reporter := NewReporter(stub, nil, 0)

	req := &store.Requisition{ID: "100", Title: "Go Developer"}
	transcript := []Turn{
		{Role: RoleInterviewer, Content: "Q1"},
		{Role: RoleCandidate, Content: "A1"},
	}

	report, err := reporter.InterviewReport(context.Background(), req, "Ana Souza", transcript)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(report, "Overall Score") {
		t.Fatalf("unexpected report: %q", report)
	}

	for _, want := range []string{"Go Developer", "Ana Souza", "Interviewer: Q1"} {
		if !strings.Contains(stub.lastPrompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}

	if _, err := reporter.InterviewReport(context.Background(), req, "Ana Souza", nil); err == nil {
		t.Fatalf("expected error for empty transcript")
	}
}

func TestReporterComparativeAnalysis(t *testing.T) {
	stub := &stubGenerator{response: "1. Ana Souza\n2. Bruno Lima"}
	reporter := NewReporter(stub, nil, 0)

	req := &store.Requisition{ID: "100", Title: "Go Developer", Client: "Acme Corp"}
	reports := []string{"report for Ana", "report for Bruno"}

	analysis, err := reporter.ComparativeAnalysis(context.Background(), req, reports)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis == "" {
		t.Fatalf("expected an analysis")
	}

	for _, want := range []string{"Acme Corp", "report for Ana", "report for Bruno"} {
		if !strings.Contains(stub.lastPrompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}

	if _, err := reporter.ComparativeAnalysis(context.Background(), req, reports[:1]); err == nil {
		t.Fatalf("expected error for a single report")
	}
}
