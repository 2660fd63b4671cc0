// Package loss provides loss functions and their gradients w.r.t. the network output.
package loss

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrTarget is returned when a target does not fit the loss function or the output.
var ErrTarget = errors.New("loss: target does not match output")

// Target is the expected outcome a Loss compares an output against.
// The concrete type a loss accepts depends on the loss.
type Target interface {
	target()
}

// Values is an elementwise target with the same shape as the output.
type Values struct {
	M mat.Matrix
}

func (Values) target() {}

// Vec builds a column Values target.
func Vec(v ...float64) Values {
	return Values{M: mat.NewDense(len(v), 1, v)}
}

// Class is the index of the true class in a score column.
type Class int

func (Class) target() {}

// Loss is a loss function with derivative.
type Loss interface {
	// Loss computes the scalar loss between output and expected.
	Loss(output mat.Matrix, expected Target) (float64, error)

	// Backward computes the gradient of the loss w.r.t. output.
	// The result has the shape of output.
	Backward(output mat.Matrix, expected Target) (*mat.Dense, error)
}

// MSE (Mean Squared Error) loss.
type MSE struct{}

func (MSE) diff(output mat.Matrix, expected Target) (*mat.Dense, error) {
	v, ok := expected.(Values)
	if !ok || v.M == nil {
		return nil, fmt.Errorf("%w: MSE needs a Values target, got %T", ErrTarget, expected)
	}
	or, oc := output.Dims()
	er, ec := v.M.Dims()
	if or != er || oc != ec {
		return nil, fmt.Errorf("%w: output is %dx%d, target is %dx%d", ErrTarget, or, oc, er, ec)
	}
	var d mat.Dense
	d.Sub(output, v.M)
	return &d, nil
}

// Loss computes mean squared error: (1/n) * sum((output - expected)^2)
func (m MSE) Loss(output mat.Matrix, expected Target) (float64, error) {
	d, err := m.diff(output, expected)
	if err != nil {
		return 0, err
	}
	data := d.RawMatrix().Data
	return floats.Dot(data, data) / float64(len(data)), nil
}

// Backward computes gradient: (2/n) * (output - expected)
func (m MSE) Backward(output mat.Matrix, expected Target) (*mat.Dense, error) {
	d, err := m.diff(output, expected)
	if err != nil {
		return nil, err
	}
	r, c := d.Dims()
	d.Scale(2/float64(r*c), d)
	return d, nil
}

// CrossEntropy loss over an unnormalized score column and a true class index.
//
// With Stable unset the log-sum-exp is taken as is, so logits above roughly
// 709 overflow to +Inf. Stable subtracts the maximum score first.
type CrossEntropy struct {
	Stable bool
}

func (c CrossEntropy) scores(output mat.Matrix, expected Target) ([]float64, int, error) {
	class, ok := expected.(Class)
	if !ok {
		return nil, 0, fmt.Errorf("%w: CrossEntropy needs a Class target, got %T", ErrTarget, expected)
	}
	r, cols := output.Dims()
	if cols != 1 {
		return nil, 0, fmt.Errorf("%w: CrossEntropy needs a score column, got %dx%d", ErrTarget, r, cols)
	}
	if int(class) < 0 || int(class) >= r {
		return nil, 0, fmt.Errorf("%w: class %d out of range [0, %d)", ErrTarget, class, r)
	}
	return mat.Col(nil, 0, output), int(class), nil
}

func (c CrossEntropy) shift(s []float64) float64 {
	if !c.Stable {
		return 0
	}
	return floats.Max(s)
}

// Loss computes -output[class] + log(sum(exp(output)))
func (c CrossEntropy) Loss(output mat.Matrix, expected Target) (float64, error) {
	s, class, err := c.scores(output, expected)
	if err != nil {
		return 0, err
	}
	m := c.shift(s)
	var sum float64
	for _, v := range s {
		sum += math.Exp(v - m)
	}
	return -s[class] + m + math.Log(sum), nil
}

// Backward computes softmax(output) with 1 subtracted at the true class.
func (c CrossEntropy) Backward(output mat.Matrix, expected Target) (*mat.Dense, error) {
	s, class, err := c.scores(output, expected)
	if err != nil {
		return nil, err
	}
	m := c.shift(s)
	for i, v := range s {
		s[i] = math.Exp(v - m)
	}
	floats.Scale(1/floats.Sum(s), s)
	s[class] -= 1
	return mat.NewDense(len(s), 1, s), nil
}

// Name returns the registry name of a built-in loss.
func Name(l Loss) (string, error) {
	switch v := l.(type) {
	case MSE, *MSE:
		return "MSE", nil
	case CrossEntropy:
		if v.Stable {
			return "StableCrossEntropy", nil
		}
		return "CrossEntropy", nil
	case *CrossEntropy:
		return Name(*v)
	default:
		return "", fmt.Errorf("unknown loss type %T", l)
	}
}

// ByName rebuilds a loss from its registry name.
func ByName(name string) (Loss, error) {
	switch name {
	case "MSE":
		return MSE{}, nil
	case "CrossEntropy":
		return CrossEntropy{}, nil
	case "StableCrossEntropy":
		return CrossEntropy{Stable: true}, nil
	default:
		return nil, fmt.Errorf("unknown loss %q", name)
	}
}
