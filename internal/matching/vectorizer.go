// Package matching fits and applies the text-classification pipeline scoring
// candidate/requisition pairs: a bounded-vocabulary TF-IDF representation of
// the document text wrapped in a balanced linear classifier.
package matching

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/floats"
)

// ErrModelUnavailable marks a pipeline that could not be produced, e.g. when
// vectorization finds an empty vocabulary. Callers fall back to the keyword
// scorer instead of crashing.
var ErrModelUnavailable = errors.New("matching model unavailable")

// DefaultMaxFeatures bounds the TF-IDF vocabulary.
const DefaultMaxFeatures = 3000

// Feature is one non-zero entry of a document vector.
type Feature struct {
	Index int
	Value float64
}

// SparseVector is a document's TF-IDF representation: non-zero features
// ordered by index.
type SparseVector []Feature

// Vectorizer converts documents to L2-normalized TF-IDF vectors over a
// bounded vocabulary of unigrams and bigrams with english stop words
// removed. Fields are exported for artifact encoding.
type Vectorizer struct {
	MaxFeatures int
	Vocabulary  map[string]int
	IDF         []float64
}

// NewVectorizer returns an unfitted vectorizer. A non-positive maxFeatures
// falls back to DefaultMaxFeatures.
func NewVectorizer(maxFeatures int) *Vectorizer {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	return &Vectorizer{MaxFeatures: maxFeatures}
}

// Fit learns the vocabulary and inverse document frequencies from the given
// documents. Terms are ranked by document frequency (ties broken
// lexicographically) and the vocabulary is capped at MaxFeatures.
func (v *Vectorizer) Fit(docs []string) error {
	df := map[string]int{}
	for _, doc := range docs {
		seen := map[string]struct{}{}
		for _, term := range extractTerms(doc) {
			seen[term] = struct{}{}
		}
		for term := range seen {
			df[term]++
		}
	}

	if len(df) == 0 {
		return fmt.Errorf("%w: empty vocabulary", ErrModelUnavailable)
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if df[terms[i]] != df[terms[j]] {
			return df[terms[i]] > df[terms[j]]
		}
		return terms[i] < terms[j]
	})

	if len(terms) > v.MaxFeatures {
		terms = terms[:v.MaxFeatures]
	}

	v.Vocabulary = make(map[string]int, len(terms))
	v.IDF = make([]float64, len(terms))
	total := float64(len(docs))
	for i, term := range terms {
		v.Vocabulary[term] = i
		// Smoothed inverse document frequency.
		v.IDF[i] = math.Log((1+total)/(1+float64(df[term]))) + 1
	}

	return nil
}

// Transform vectorizes one document against the fitted vocabulary. Unknown
// terms are ignored; an all-unknown document yields an empty vector.
func (v *Vectorizer) Transform(doc string) SparseVector {
	counts := map[int]float64{}
	for _, term := range extractTerms(doc) {
		if index, ok := v.Vocabulary[term]; ok {
			counts[index]++
		}
	}

	vec := make(SparseVector, 0, len(counts))
	for index, count := range counts {
		vec = append(vec, Feature{Index: index, Value: count * v.IDF[index]})
	}
	sort.Slice(vec, func(i, j int) bool { return vec[i].Index < vec[j].Index })

	values := make([]float64, len(vec))
	for i, f := range vec {
		values[i] = f.Value
	}
	if norm := floats.Norm(values, 2); norm > 0 {
		for i := range vec {
			vec[i].Value /= norm
		}
	}

	return vec
}

// Terms returns the vocabulary ordered by feature index.
func (v *Vectorizer) Terms() []string {
	terms := make([]string, len(v.Vocabulary))
	for term, index := range v.Vocabulary {
		terms[index] = term
	}
	return terms
}

// extractTerms lowercases the document, splits it on non-letter/digit runes,
// drops single-rune tokens and english stop words, and appends bigrams of
// the surviving tokens.
func extractTerms(doc string) []string {
	tokens := strings.FieldsFunc(strings.ToLower(doc), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	kept := tokens[:0]
	for _, token := range tokens {
		if len([]rune(token)) < 2 {
			continue
		}
		if _, stop := englishStopWords[token]; stop {
			continue
		}
		kept = append(kept, token)
	}

	terms := make([]string, 0, len(kept)*2)
	terms = append(terms, kept...)
	for i := 0; i+1 < len(kept); i++ {
		terms = append(terms, kept[i]+" "+kept[i+1])
	}

	return terms
}
