package matching

import (
	"errors"
	"math"
	"testing"
)

func TestVectorizerFitAndTransform(t *testing.T) {
	v := NewVectorizer(0)
	docs := []string{
		"golang developer with kubernetes experience",
		"golang engineer and the kubernetes operator",
		"frontend developer",
	}

	if err := v.Fit(docs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := v.Vocabulary["golang"]; !ok {
		t.Fatalf("expected golang in vocabulary")
	}
	if _, ok := v.Vocabulary["golang developer"]; !ok {
		t.Fatalf("expected bigram in vocabulary")
	}
	if _, ok := v.Vocabulary["the"]; ok {
		t.Fatalf("stop word must be excluded")
	}
	if _, ok := v.Vocabulary["and the"]; ok {
		t.Fatalf("bigrams must be built after stop word removal")
	}
	if _, ok := v.Vocabulary["engineer and"]; ok {
		t.Fatalf("bigrams must skip removed stop words, got vocabulary %v", v.Terms())
	}
	if _, ok := v.Vocabulary["engineer kubernetes"]; !ok {
		t.Fatalf("expected bigram over the stop word gap")
	}

	vec := v.Transform("golang golang kubernetes")
	if len(vec) == 0 {
		t.Fatalf("expected non-empty vector")
	}

	// L2 normalized.
	sum := 0.0
	for _, f := range vec {
		sum += f.Value * f.Value
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("expected unit norm, got %f", math.Sqrt(sum))
	}

	if len(v.Transform("completely unknown terms")) != 0 {
		t.Fatalf("all-unknown document must yield an empty vector")
	}
}

func TestVectorizerMaxFeatures(t *testing.T) {
	v := NewVectorizer(2)
	docs := []string{
		"alpha beta gamma",
		"alpha beta",
		"alpha",
	}

	if err := v.Fit(docs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(v.Vocabulary) != 2 {
		t.Fatalf("expected capped vocabulary of 2, got %d", len(v.Vocabulary))
	}
	// Ranked by document frequency, ties broken lexicographically.
	if _, ok := v.Vocabulary["alpha"]; !ok {
		t.Fatalf("most frequent term must survive the cap")
	}
	if _, ok := v.Vocabulary["alpha beta"]; !ok {
		t.Fatalf("expected tie broken in favor of the lexicographically smaller term, got %v", v.Terms())
	}
}

func TestVectorizerEmptyVocabulary(t *testing.T) {
	v := NewVectorizer(10)

	err := v.Fit([]string{"", "a a a", "the of and"})
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestVectorizerDeterminism(t *testing.T) {
	docs := []string{"alpha beta", "beta gamma", "gamma alpha"}

	first := NewVectorizer(10)
	second := NewVectorizer(10)
	if err := first.Fit(docs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := second.Fit(docs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for term, index := range first.Vocabulary {
		if second.Vocabulary[term] != index {
			t.Fatalf("vocabulary order differs between fits for %q", term)
		}
	}
}
