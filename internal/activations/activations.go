// Package activations provides elementwise activation functions and their derivatives.
package activations

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Activation is an elementwise activation function with derivative.
// Implementations are stateless apart from their configuration.
type Activation interface {
	// Activate computes f(x)
	Activate(x float64) float64

	// Derivative computes f'(x)
	Derivative(x float64) float64

	// Forward applies f to every element of x. The result has the shape of x.
	Forward(x mat.Matrix) *mat.Dense

	// Backward evaluates f' at every element of x. The result has the shape of x.
	Backward(x mat.Matrix) *mat.Dense
}

// apply maps f over every element of x into a new matrix.
func apply(x mat.Matrix, f func(float64) float64) *mat.Dense {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 { return f(v) }, x)
	return &out
}

// Identity activation function.
type Identity struct{}

// Activate returns x unchanged
func (Identity) Activate(x float64) float64 {
	return x
}

// Derivative is always 1
func (Identity) Derivative(float64) float64 {
	return 1
}

func (i Identity) Forward(x mat.Matrix) *mat.Dense  { return apply(x, i.Activate) }
func (i Identity) Backward(x mat.Matrix) *mat.Dense { return apply(x, i.Derivative) }

// LeakyReLU activation function to prevent dying neurons.
// Zero is treated as non-negative, so the derivative at x = 0 is 1.
type LeakyReLU struct {
	Alpha float64 // Slope for x < 0
}

// NewLeakyReLU creates a LeakyReLU with the given alpha value.
func NewLeakyReLU(alpha float64) *LeakyReLU {
	return &LeakyReLU{Alpha: alpha}
}

// NewReLU creates a rectifier: a LeakyReLU with a flat negative side.
func NewReLU() *LeakyReLU {
	return NewLeakyReLU(0)
}

// Activate computes x if x >= 0, else alpha*x
func (l *LeakyReLU) Activate(x float64) float64 {
	if x >= 0 {
		return x
	}
	return l.Alpha * x
}

// Derivative returns 1 if x >= 0, else alpha
func (l *LeakyReLU) Derivative(x float64) float64 {
	if x >= 0 {
		return 1
	}
	return l.Alpha
}

func (l *LeakyReLU) Forward(x mat.Matrix) *mat.Dense  { return apply(x, l.Activate) }
func (l *LeakyReLU) Backward(x mat.Matrix) *mat.Dense { return apply(x, l.Derivative) }

// Sigmoid activation function.
type Sigmoid struct{}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Activate computes sigmoid(x)
func (Sigmoid) Activate(x float64) float64 {
	return sigmoid(x)
}

// Derivative computes sigmoid(x) * (1 - sigmoid(x))
func (Sigmoid) Derivative(x float64) float64 {
	sigma := sigmoid(x)
	return sigma * (1 - sigma)
}

func (s Sigmoid) Forward(x mat.Matrix) *mat.Dense  { return apply(x, s.Activate) }
func (s Sigmoid) Backward(x mat.Matrix) *mat.Dense { return apply(x, s.Derivative) }

// Tanh activation function.
type Tanh struct{}

// Activate computes tanh(x)
func (Tanh) Activate(x float64) float64 {
	return math.Tanh(x)
}

// Derivative computes 1 - tanh(x)^2
func (Tanh) Derivative(x float64) float64 {
	tanhX := math.Tanh(x)
	return 1 - tanhX*tanhX
}

func (t Tanh) Forward(x mat.Matrix) *mat.Dense  { return apply(x, t.Activate) }
func (t Tanh) Backward(x mat.Matrix) *mat.Dense { return apply(x, t.Derivative) }

// Name returns the registry name of a built-in activation.
// A LeakyReLU with zero slope is reported as "ReLU".
func Name(a Activation) (string, error) {
	switch v := a.(type) {
	case Identity, *Identity:
		return "Identity", nil
	case *LeakyReLU:
		if v.Alpha == 0 {
			return "ReLU", nil
		}
		return "LeakyReLU", nil
	case Sigmoid, *Sigmoid:
		return "Sigmoid", nil
	case Tanh, *Tanh:
		return "Tanh", nil
	default:
		return "", fmt.Errorf("unknown activation type %T", a)
	}
}

// ByName rebuilds an activation from its registry name.
// alpha is only used by "LeakyReLU".
func ByName(name string, alpha float64) (Activation, error) {
	switch name {
	case "Identity":
		return Identity{}, nil
	case "ReLU":
		return NewReLU(), nil
	case "LeakyReLU":
		return NewLeakyReLU(alpha), nil
	case "Sigmoid":
		return Sigmoid{}, nil
	case "Tanh":
		return Tanh{}, nil
	default:
		return nil, fmt.Errorf("unknown activation %q", name)
	}
}

// Slope returns the negative-side slope of a, or 0 for activations without one.
func Slope(a Activation) float64 {
	if l, ok := a.(*LeakyReLU); ok {
		return l.Alpha
	}
	return 0
}
