// Package net provides a fully connected feed-forward network with hand-derived
// backpropagation and mini-batch gradient accumulation.
//
// A training cycle is Forward then Loss, repeated once per example of a batch,
// followed by a single Update:
//
//	for _, ex := range batch {
//		if _, err := n.Forward(ex.X); err != nil { ... }
//		if _, err := n.Loss(ex.Y); err != nil { ... }
//	}
//	err := n.Update()
//
// Forward overwrites the intermediate cache that the next Loss consumes. Loss
// adds into the gradient accumulator and never overwrites it. Update applies
// the batch-averaged gradient and clears both.
//
// A Network is not safe for concurrent use.
package net

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/backprop/internal/activations"
	"github.com/FlavioCFOliveira/backprop/internal/loss"
	"github.com/FlavioCFOliveira/backprop/internal/opt"
)

// DefaultLearningRate is used when Config.LearningRate is zero.
const DefaultLearningRate = 0.01

// DefaultSlope is the negative slope of the LeakyReLU used when no activation is configured.
const DefaultSlope = 0.1

// Config describes a network.
type Config struct {
	// Sizes lists the layer widths, input first and output last.
	Sizes []int

	// Activations holds either one activation shared by every layer transition
	// or exactly one per transition. Empty means LeakyReLU(DefaultSlope).
	Activations []activations.Activation

	// Loss defaults to MSE.
	Loss loss.Loss

	// LearningRate is the step used by Update. Zero means DefaultLearningRate.
	LearningRate float64

	// Rand draws the initial parameters. Nil seeds from the clock.
	Rand *rand.Rand
}

// Network is a stack of affine layers, each followed by an elementwise activation.
type Network struct {
	sizes   []int
	weights []*mat.Dense // weights[i] is sizes[i+1] x sizes[i]
	biases  []*mat.Dense // biases[i] is sizes[i+1] x 1
	acts    []activations.Activation
	loss    loss.Loss
	lr      float64

	// Intermediate cache written by Forward and read by Loss. pre[i] and post[i]
	// are layer i before and after its activation; post[0] is the input and
	// pre[0] is nil. Both are nil when no Forward is pending.
	pre  []*mat.Dense
	post []*mat.Dense

	// Gradient accumulator, shaped like weights and biases.
	gradW  []*mat.Dense
	gradB  []*mat.Dense
	passes int
}

// New creates a network with randomly initialized parameters.
//
// Entries of weights[i] and biases[i] are drawn from a standard normal scaled
// by 1/sqrt(sizes[i]*sizes[i+1]).
func New(cfg Config) (*Network, error) {
	if len(cfg.Sizes) < 2 {
		return nil, fmt.Errorf("%w: need input and output sizes, got %d sizes", ErrConfiguration, len(cfg.Sizes))
	}
	for i, s := range cfg.Sizes {
		if s <= 0 {
			return nil, fmt.Errorf("%w: size %d is %d", ErrConfiguration, i, s)
		}
	}

	transitions := len(cfg.Sizes) - 1
	acts := make([]activations.Activation, transitions)
	switch len(cfg.Activations) {
	case 0:
		shared := activations.NewLeakyReLU(DefaultSlope)
		for i := range acts {
			acts[i] = shared
		}
	case 1:
		for i := range acts {
			acts[i] = cfg.Activations[0]
		}
	case transitions:
		copy(acts, cfg.Activations)
	default:
		return nil, fmt.Errorf("%w: %d activations for %d layer transitions", ErrConfiguration, len(cfg.Activations), transitions)
	}
	for i, a := range acts {
		if a == nil {
			return nil, fmt.Errorf("%w: activation %d is nil", ErrConfiguration, i)
		}
	}

	lossFn := cfg.Loss
	if lossFn == nil {
		lossFn = loss.MSE{}
	}

	lr := cfg.LearningRate
	if lr == 0 {
		lr = DefaultLearningRate
	}
	if err := checkRate(lr); err != nil {
		return nil, err
	}

	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	n := &Network{
		sizes:   append([]int(nil), cfg.Sizes...),
		weights: make([]*mat.Dense, transitions),
		biases:  make([]*mat.Dense, transitions),
		acts:    acts,
		loss:    lossFn,
		lr:      lr,
		gradW:   make([]*mat.Dense, transitions),
		gradB:   make([]*mat.Dense, transitions),
	}
	for i := 0; i < transitions; i++ {
		in, out := cfg.Sizes[i], cfg.Sizes[i+1]
		scale := 1 / math.Sqrt(float64(in*out))
		n.weights[i] = randomDense(rng, out, in, scale)
		n.biases[i] = randomDense(rng, out, 1, scale)
		n.gradW[i] = mat.NewDense(out, in, nil)
		n.gradB[i] = mat.NewDense(out, 1, nil)
	}
	return n, nil
}

func randomDense(rng *rand.Rand, r, c int, scale float64) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = scale * rng.NormFloat64()
	}
	return mat.NewDense(r, c, data)
}

func checkRate(lr float64) error {
	if !(lr > 0) || math.IsInf(lr, 1) {
		return fmt.Errorf("%w: learning rate %v", ErrConfiguration, lr)
	}
	return nil
}

// column returns a copy of x as a size x 1 column. A 1 x size row is transposed.
func column(x mat.Matrix, size int) (*mat.Dense, error) {
	if x == nil {
		return nil, fmt.Errorf("%w: nil value, want %dx1", ErrShape, size)
	}
	r, c := x.Dims()
	switch {
	case r == size && c == 1:
		return mat.DenseCopyOf(x), nil
	case r == 1 && c == size:
		return mat.DenseCopyOf(x.T()), nil
	default:
		return nil, fmt.Errorf("%w: want %dx1 or 1x%d, got %dx%d", ErrShape, size, size, r, c)
	}
}

// Forward propagates x through every layer and returns the output column.
//
// x must be a column or a row of the input size. On success the intermediate
// cache is replaced; the gradient accumulator is never touched. On error
// nothing changes.
func (n *Network) Forward(x mat.Matrix) (*mat.Dense, error) {
	in, err := column(x, n.sizes[0])
	if err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}

	depth := len(n.sizes)
	pre := make([]*mat.Dense, depth)
	post := make([]*mat.Dense, depth)
	post[0] = in

	acc := in
	for i, w := range n.weights {
		var z mat.Dense
		z.Mul(w, acc)
		z.Add(&z, n.biases[i])
		pre[i+1] = &z
		post[i+1] = n.acts[i].Forward(&z)
		acc = post[i+1]
	}

	n.pre, n.post = pre, post
	return mat.DenseCopyOf(acc), nil
}

// Loss compares the output of the last Forward with expected, accumulates the
// parameter gradients of that loss and returns it.
//
// A loss.Values target is read as a column of the output size, rows are
// transposed. Other targets are handed to the loss function as is. The
// intermediate cache stays valid, so calling Loss twice accumulates twice.
func (n *Network) Loss(expected loss.Target) (float64, error) {
	if n.post == nil {
		return 0, fmt.Errorf("%w: Loss called without a pending Forward", ErrInvalidState)
	}
	if v, ok := expected.(loss.Values); ok {
		m, err := column(v.M, n.sizes[len(n.sizes)-1])
		if err != nil {
			return 0, fmt.Errorf("target: %w", err)
		}
		expected = loss.Values{M: m}
	}

	out := n.post[len(n.post)-1]
	l, err := n.loss.Loss(out, expected)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrShape, err)
	}
	grad, err := n.loss.Backward(out, expected)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrShape, err)
	}

	n.backward(grad)
	n.passes++
	return l, nil
}

// backward adds the gradients implied by dLdOut, the loss gradient w.r.t. the
// network output, into the accumulator.
func (n *Network) backward(dLdOut *mat.Dense) {
	grad := dLdOut // dL/d(post[t+1])
	for t := len(n.weights) - 1; t >= 0; t-- {
		// delta = dL/d(pre[t+1])
		var delta mat.Dense
		delta.MulElem(grad, n.acts[t].Backward(n.pre[t+1]))

		var dW mat.Dense
		dW.Mul(&delta, n.post[t].T())
		n.gradW[t].Add(n.gradW[t], &dW)
		n.gradB[t].Add(n.gradB[t], &delta)

		if t > 0 {
			var up mat.Dense
			up.Mul(n.weights[t].T(), &delta)
			grad = &up
		}
	}
}

// Update applies the batch-averaged gradient with the configured learning rate.
func (n *Network) Update() error {
	return n.UpdateWithRate(n.lr)
}

// UpdateWithRate subtracts lr times the accumulated gradient divided by the
// number of Loss calls since the last update, then zeroes the accumulator and
// drops the intermediate cache. It fails without changes when nothing has been
// accumulated.
func (n *Network) UpdateWithRate(lr float64) error {
	if err := checkRate(lr); err != nil {
		return err
	}
	if n.passes == 0 {
		return fmt.Errorf("%w: Update called with no accumulated gradient", ErrInvalidState)
	}

	step := opt.SGD{LearningRate: lr}.Averaged(n.passes)
	for i := range n.weights {
		step.StepInPlace(n.weights[i].RawMatrix().Data, n.gradW[i].RawMatrix().Data)
		step.StepInPlace(n.biases[i].RawMatrix().Data, n.gradB[i].RawMatrix().Data)
		n.gradW[i].Zero()
		n.gradB[i].Zero()
	}
	n.passes = 0
	n.pre, n.post = nil, nil
	return nil
}

// Train runs Forward and Loss for one example and returns its loss.
// The gradient is accumulated, not applied.
func (n *Network) Train(x mat.Matrix, expected loss.Target) (float64, error) {
	if _, err := n.Forward(x); err != nil {
		return 0, err
	}
	return n.Loss(expected)
}

// TrainBatch accumulates every example, applies one Update and returns the mean loss.
func (n *Network) TrainBatch(xs []mat.Matrix, ys []loss.Target) (float64, error) {
	if len(xs) != len(ys) {
		return 0, fmt.Errorf("%w: %d inputs for %d targets", ErrShape, len(xs), len(ys))
	}
	if len(xs) == 0 {
		return 0, fmt.Errorf("%w: empty batch", ErrInvalidState)
	}

	var total float64
	for i := range xs {
		l, err := n.Train(xs[i], ys[i])
		if err != nil {
			return 0, fmt.Errorf("example %d: %w", i, err)
		}
		total += l
	}
	if err := n.Update(); err != nil {
		return 0, err
	}
	return total / float64(len(xs)), nil
}
