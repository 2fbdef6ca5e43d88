package matching

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// KindLinear identifies the linear classifier family. The explainer only
// supports this family.
const KindLinear = "linear"

const (
	trainEpochs       = 400
	trainLearningRate = 2.0
	trainL2           = 1e-4
)

// Classifier is a binary logistic regression model over sparse TF-IDF
// vectors. Fields are exported for artifact encoding.
type Classifier struct {
	Kind    string
	Weights []float64
	Bias    float64
}

// trainClassifier fits a logistic regression with full-batch gradient
// descent and balanced class weights: positive outcomes are rare in the
// historical data, so each class contributes equally to the loss. Weights
// start at zero and no randomness is involved, making training fully
// deterministic for a given input.
func trainClassifier(vectors []SparseVector, labels []int, dim int) *Classifier {
	n := len(vectors)
	clf := &Classifier{Kind: KindLinear, Weights: make([]float64, dim)}
	if n == 0 || dim == 0 {
		return clf
	}

	pos := 0
	for _, label := range labels {
		if label == 1 {
			pos++
		}
	}
	neg := n - pos

	// Balanced class weights: n / (2 * class count).
	posWeight, negWeight := 1.0, 1.0
	if pos > 0 && neg > 0 {
		posWeight = float64(n) / (2 * float64(pos))
		negWeight = float64(n) / (2 * float64(neg))
	}

	grad := make([]float64, dim)
	for epoch := 0; epoch < trainEpochs; epoch++ {
		for i := range grad {
			grad[i] = 0
		}
		gradBias := 0.0

		for i, vec := range vectors {
			p := sigmoid(dotSparse(clf.Weights, vec) + clf.Bias)
			residual := p - float64(labels[i])
			if labels[i] == 1 {
				residual *= posWeight
			} else {
				residual *= negWeight
			}
			for _, f := range vec {
				grad[f.Index] += residual * f.Value
			}
			gradBias += residual
		}

		// Ridge penalty folded into the gradient, then one descent step.
		floats.AddScaled(grad, trainL2*float64(n), clf.Weights)
		floats.AddScaled(clf.Weights, -trainLearningRate/float64(n), grad)
		clf.Bias -= trainLearningRate / float64(n) * gradBias
	}

	return clf
}

// Predict returns the success probability for one document vector.
func (c *Classifier) Predict(vec SparseVector) float64 {
	return sigmoid(dotSparse(c.Weights, vec) + c.Bias)
}

func dotSparse(weights []float64, vec SparseVector) float64 {
	sum := 0.0
	for _, f := range vec {
		sum += weights[f.Index] * f.Value
	}
	return sum
}

func sigmoid(z float64) float64 {
	if z > 30 {
		return 1
	}
	if z < -30 {
		return 0
	}
	return 1 / (1 + math.Exp(-z))
}
