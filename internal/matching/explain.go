package matching

import (
	"errors"
	"math"
	"sort"
)

// ErrExplanationUnavailable is returned when the fitted classifier belongs
// to a family the explainer does not support. Callers degrade to "no
// explanation" instead of failing the scoring workflow.
var ErrExplanationUnavailable = errors.New("explanation unavailable for this classifier")

// Contribution attributes part of a document's score to one vocabulary
// feature. Positive values push the score up.
type Contribution struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
}

// Explain decomposes the score of one document into per-feature signed
// contributions, ranked by magnitude and truncated to topK (non-positive
// topK keeps all non-zero features). Only the linear classifier family is
// supported: for it, weight times feature value is the exact additive
// contribution to the decision function.
func Explain(p *Pipeline, doc string, topK int) ([]Contribution, error) {
	if p == nil || p.Classifier == nil || p.Classifier.Kind != KindLinear {
		return nil, ErrExplanationUnavailable
	}

	terms := p.Vectorizer.Terms()
	vec := p.Vectorizer.Transform(doc)

	contributions := make([]Contribution, 0, len(vec))
	for _, f := range vec {
		value := p.Classifier.Weights[f.Index] * f.Value
		if value == 0 {
			continue
		}
		contributions = append(contributions, Contribution{Feature: terms[f.Index], Value: value})
	}

	sort.Slice(contributions, func(i, j int) bool {
		vi, vj := math.Abs(contributions[i].Value), math.Abs(contributions[j].Value)
		if vi != vj {
			return vi > vj
		}
		return contributions[i].Feature < contributions[j].Feature
	})

	if topK > 0 && len(contributions) > topK {
		contributions = contributions[:topK]
	}

	return contributions, nil
}
