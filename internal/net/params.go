package net

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/backprop/internal/activations"
	"github.com/FlavioCFOliveira/backprop/internal/loss"
)

// Sizes returns a copy of the layer widths.
func (n *Network) Sizes() []int {
	return append([]int(nil), n.sizes...)
}

// Depth returns the number of layers, input included.
func (n *Network) Depth() int {
	return len(n.sizes)
}

// LearningRate returns the rate used by Update.
func (n *Network) LearningRate() float64 {
	return n.lr
}

// Activations returns the activation of every layer transition.
func (n *Network) Activations() []activations.Activation {
	return append([]activations.Activation(nil), n.acts...)
}

// LossFunction returns the configured loss.
func (n *Network) LossFunction() loss.Loss {
	return n.loss
}

// Passes returns the number of Loss calls accumulated since the last Update.
func (n *Network) Passes() int {
	return n.passes
}

// Weights returns copies of the weight matrices.
func (n *Network) Weights() []*mat.Dense {
	return copyAll(n.weights)
}

// Biases returns copies of the bias columns.
func (n *Network) Biases() []*mat.Dense {
	return copyAll(n.biases)
}

func copyAll(ms []*mat.Dense) []*mat.Dense {
	out := make([]*mat.Dense, len(ms))
	for i, m := range ms {
		out[i] = mat.DenseCopyOf(m)
	}
	return out
}

// NumParams returns the total number of weights and biases.
func (n *Network) NumParams() int {
	total := 0
	for i := range n.weights {
		total += len(n.weights[i].RawMatrix().Data) + len(n.biases[i].RawMatrix().Data)
	}
	return total
}

// Params returns all parameters flattened: for each layer, the weights in
// row-major order followed by the biases.
func (n *Network) Params() []float64 {
	return flatten(n.weights, n.biases, n.NumParams())
}

// Gradients returns the accumulated gradient, flattened in the order of Params.
// It is the raw sum over passes, not the average.
func (n *Network) Gradients() []float64 {
	return flatten(n.gradW, n.gradB, n.NumParams())
}

func flatten(ws, bs []*mat.Dense, size int) []float64 {
	params := make([]float64, 0, size)
	for i := range ws {
		params = append(params, ws[i].RawMatrix().Data...)
		params = append(params, bs[i].RawMatrix().Data...)
	}
	return params
}

// SetParams overwrites all parameters from a slice laid out like Params.
// The gradient accumulator and the intermediate cache are left alone.
func (n *Network) SetParams(params []float64) error {
	if len(params) != n.NumParams() {
		return fmt.Errorf("%w: %d parameters, network has %d", ErrShape, len(params), n.NumParams())
	}
	offset := 0
	for i := range n.weights {
		offset += copy(n.weights[i].RawMatrix().Data, params[offset:])
		offset += copy(n.biases[i].RawMatrix().Data, params[offset:])
	}
	return nil
}
