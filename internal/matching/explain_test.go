package matching

import (
	"errors"
	"math"
	"testing"
)

func TestExplain(t *testing.T) {
	pipeline, _, err := Fit(trainingTable(), Options{Seed: 42, FitOnFull: true}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	contributions, err := Explain(pipeline, "golang kubernetes sales", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contributions) == 0 {
		t.Fatalf("expected contributions for in-vocabulary terms")
	}

	// Ranked by magnitude.
	for i := 1; i < len(contributions); i++ {
		if math.Abs(contributions[i].Value) > math.Abs(contributions[i-1].Value) {
			t.Fatalf("contributions not ranked by magnitude: %v", contributions)
		}
	}

	byFeature := map[string]float64{}
	for _, c := range contributions {
		byFeature[c.Feature] = c.Value
	}
	if byFeature["golang"] <= 0 {
		t.Fatalf("expected golang to push the score up, got %f", byFeature["golang"])
	}
	if byFeature["sales"] >= 0 {
		t.Fatalf("expected sales to push the score down, got %f", byFeature["sales"])
	}

	truncated, err := Explain(pipeline, "golang kubernetes sales", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(truncated) != 2 {
		t.Fatalf("expected 2 contributions, got %d", len(truncated))
	}
}

func TestExplainUnsupportedClassifier(t *testing.T) {
	pipeline := &Pipeline{
		Vectorizer: NewVectorizer(10),
		Classifier: &Classifier{Kind: "forest"},
	}

	if _, err := Explain(pipeline, "anything", 5); !errors.Is(err, ErrExplanationUnavailable) {
		t.Fatalf("expected ErrExplanationUnavailable, got %v", err)
	}

	if _, err := Explain(nil, "anything", 5); !errors.Is(err, ErrExplanationUnavailable) {
		t.Fatalf("expected ErrExplanationUnavailable for nil pipeline, got %v", err)
	}
}
