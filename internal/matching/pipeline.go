package matching

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/decisionhq/recruit-ranker/internal/dataset"
	"go.uber.org/zap"
)

// Options configures a pipeline fit.
type Options struct {
	// MaxFeatures bounds the TF-IDF vocabulary (default 3000).
	MaxFeatures int
	// TestFraction is the held-out share used only for the F1 report
	// (default 0.2).
	TestFraction float64
	// Seed drives the train/test shuffle, keeping fits deterministic.
	Seed int64
	// FitOnFull refits the returned pipeline on every row passed in; the
	// held-out fold then serves only the F1 report. When false the
	// deployed pipeline is the one fit on the 80% fold.
	FitOnFull bool
}

func (o Options) withDefaults() Options {
	if o.MaxFeatures <= 0 {
		o.MaxFeatures = DefaultMaxFeatures
	}
	if o.TestFraction <= 0 || o.TestFraction >= 1 {
		o.TestFraction = 0.2
	}
	return o
}

// Metrics reports the held-out evaluation of a fit, for trust calibration
// only: the F1 score does not affect the deployed pipeline.
type Metrics struct {
	F1         float64
	Evaluated  bool
	Stratified bool
	TrainRows  int
	TestRows   int
	FitRows    int
}

// Pipeline is a fitted vectorizer + classifier pair. Once fit, Score is
// deterministic and side-effect free.
type Pipeline struct {
	Vectorizer *Vectorizer
	Classifier *Classifier
}

// Fit trains a pipeline on the labeled table. The table is split 80/20
// (stratified when both classes have at least two members) to report an F1
// metric; the returned pipeline is then refit according to opts.FitOnFull.
// A single-class table yields dataset.ErrInsufficientLabelDiversity and a
// vectorization failure yields ErrModelUnavailable.
func Fit(table *dataset.Table, opts Options, logger *zap.Logger) (*Pipeline, *Metrics, error) {
	opts = opts.withDefaults()

	neg, pos := table.LabelCounts()
	if neg == 0 || pos == 0 {
		return nil, nil, dataset.ErrInsufficientLabelDiversity
	}

	docs := table.Documents()
	labels := table.Labels()

	trainIdx, testIdx, stratified := splitIndices(labels, opts.TestFraction, opts.Seed)

	metrics := &Metrics{
		Stratified: stratified,
		TrainRows:  len(trainIdx),
		TestRows:   len(testIdx),
	}

	evaluate(docs, labels, trainIdx, testIdx, opts, metrics, logger)

	fitIdx := trainIdx
	if opts.FitOnFull {
		fitIdx = allIndices(len(docs))
	}
	metrics.FitRows = len(fitIdx)

	pipeline, err := fitOn(docs, labels, fitIdx, opts.MaxFeatures)
	if err != nil {
		return nil, nil, err
	}

	if logger != nil {
		logger.Info("matching pipeline fitted",
			zap.Int("fit_rows", metrics.FitRows),
			zap.Bool("fit_on_full", opts.FitOnFull),
			zap.Bool("stratified_split", metrics.Stratified),
			zap.Bool("evaluated", metrics.Evaluated),
			zap.Float64("f1", metrics.F1),
		)
	}

	return pipeline, metrics, nil
}

// Score returns the success probability of each document, in input order.
func (p *Pipeline) Score(docs []string) []float64 {
	scores := make([]float64, len(docs))
	for i, doc := range docs {
		scores[i] = p.Classifier.Predict(p.Vectorizer.Transform(doc))
	}
	return scores
}

func fitOn(docs []string, labels []int, idx []int, maxFeatures int) (*Pipeline, error) {
	subsetDocs := make([]string, len(idx))
	subsetLabels := make([]int, len(idx))
	for i, j := range idx {
		subsetDocs[i] = docs[j]
		subsetLabels[i] = labels[j]
	}

	vectorizer := NewVectorizer(maxFeatures)
	if err := vectorizer.Fit(subsetDocs); err != nil {
		return nil, err
	}

	vectors := make([]SparseVector, len(subsetDocs))
	for i, doc := range subsetDocs {
		vectors[i] = vectorizer.Transform(doc)
	}

	classifier := trainClassifier(vectors, subsetLabels, len(vectorizer.IDF))

	return &Pipeline{Vectorizer: vectorizer, Classifier: classifier}, nil
}

// evaluate fits a scratch pipeline on the train fold and fills in the F1
// metric from the held-out fold. Evaluation failures are reported, never
// fatal: a tiny table may not support a split at all.
func evaluate(docs []string, labels []int, trainIdx, testIdx []int, opts Options, metrics *Metrics, logger *zap.Logger) {
	if len(trainIdx) == 0 || len(testIdx) == 0 {
		return
	}

	trainNeg, trainPos := 0, 0
	for _, i := range trainIdx {
		if labels[i] == 1 {
			trainPos++
		} else {
			trainNeg++
		}
	}
	if trainNeg == 0 || trainPos == 0 {
		if logger != nil {
			logger.Debug("skipping held-out evaluation", zap.String("reason", "single-class train fold"))
		}
		return
	}

	scratch, err := fitOn(docs, labels, trainIdx, opts.MaxFeatures)
	if err != nil {
		if logger != nil {
			logger.Debug("skipping held-out evaluation", zap.Error(err))
		}
		return
	}

	actual := make([]int, len(testIdx))
	predicted := make([]int, len(testIdx))
	for i, j := range testIdx {
		actual[i] = labels[j]
		if scratch.Classifier.Predict(scratch.Vectorizer.Transform(docs[j])) >= 0.5 {
			predicted[i] = 1
		}
	}

	metrics.F1 = f1Score(actual, predicted)
	metrics.Evaluated = true
}

// splitIndices produces a deterministic train/test partition. Stratification
// by label is applied when both classes have at least two members, else it
// falls back to an unstratified shuffle.
func splitIndices(labels []int, testFraction float64, seed int64) (train, test []int, stratified bool) {
	n := len(labels)
	rng := rand.New(rand.NewSource(seed))

	testCount := int(math.Round(testFraction * float64(n)))
	if testCount == 0 || testCount >= n {
		return allIndices(n), nil, false
	}

	var negIdx, posIdx []int
	for i, label := range labels {
		if label == 1 {
			posIdx = append(posIdx, i)
		} else {
			negIdx = append(negIdx, i)
		}
	}

	if len(negIdx) >= 2 && len(posIdx) >= 2 {
		for _, class := range [][]int{negIdx, posIdx} {
			class := class
			rng.Shuffle(len(class), func(i, j int) { class[i], class[j] = class[j], class[i] })
			take := int(math.Round(testFraction * float64(len(class))))
			if take == 0 {
				take = 1
			}
			if take >= len(class) {
				take = len(class) - 1
			}
			test = append(test, class[:take]...)
			train = append(train, class[take:]...)
		}
		return train, test, true
	}

	idx := allIndices(n)
	rng.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	return idx[testCount:], idx[:testCount], false
}

func allIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func f1Score(actual, predicted []int) float64 {
	tp, fp, fn := 0, 0, 0
	for i := range actual {
		switch {
		case predicted[i] == 1 && actual[i] == 1:
			tp++
		case predicted[i] == 1 && actual[i] == 0:
			fp++
		case predicted[i] == 0 && actual[i] == 1:
			fn++
		}
	}
	if tp == 0 {
		return 0
	}
	precision := float64(tp) / float64(tp+fp)
	recall := float64(tp) / float64(tp+fn)
	return 2 * precision * recall / (precision + recall)
}

// String renders the metric line shown to operators.
func (m *Metrics) String() string {
	if !m.Evaluated {
		return fmt.Sprintf("pipeline fitted on %d rows (held-out evaluation skipped: too little data)", m.FitRows)
	}
	return fmt.Sprintf("pipeline fitted on %d rows (held-out F1 %.2f over %d test rows)", m.FitRows, m.F1, m.TestRows)
}
