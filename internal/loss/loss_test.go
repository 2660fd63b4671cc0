// Package loss provides unit tests for loss functions.
package loss

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func col(v ...float64) *mat.Dense {
	return mat.NewDense(len(v), 1, v)
}

// TestMSELoss tests MSE forward.
func TestMSELoss(t *testing.T) {
	tests := []struct {
		name     string
		output   []float64
		expected []float64
		want     float64
	}{
		{"Perfect prediction", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"Single error", []float64{1, 2}, []float64{1.5, 2}, 0.125},
		{"Multiple errors", []float64{1, 2, 3}, []float64{0, 1, 2}, 1},
		{"Large error", []float64{10}, []float64{0}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MSE{}.Loss(col(tt.output...), Vec(tt.expected...))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

// TestMSEBackward tests MSE gradient 2*(o-e)/N.
func TestMSEBackward(t *testing.T) {
	grad, err := MSE{}.Backward(col(1, 2), Vec(1.5, 2))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-0.5, 0}, grad.RawMatrix().Data, 1e-12)

	// N counts every element, not just rows.
	out := mat.NewDense(2, 2, []float64{1, 1, 1, 1})
	grad, err = MSE{}.Backward(out, Values{M: mat.NewDense(2, 2, nil)})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 0.5, 0.5, 0.5}, grad.RawMatrix().Data, 1e-12)
}

// TestMSEIdentity tests zero loss and zero gradient on an exact match.
func TestMSEIdentity(t *testing.T) {
	out := col(0.3, -1.2, 4)
	l, err := MSE{}.Loss(out, Values{M: out})
	require.NoError(t, err)
	assert.Zero(t, l)

	grad, err := MSE{}.Backward(out, Values{M: out})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, grad.RawMatrix().Data)
}

// TestMSETargetMismatch tests error handling for bad targets.
func TestMSETargetMismatch(t *testing.T) {
	_, err := MSE{}.Loss(col(1, 2), Vec(1))
	assert.ErrorIs(t, err, ErrTarget)

	_, err = MSE{}.Backward(col(1, 2), Class(0))
	assert.ErrorIs(t, err, ErrTarget)

	_, err = MSE{}.Loss(col(1, 2), Values{})
	assert.ErrorIs(t, err, ErrTarget)
}

// TestCrossEntropyLoss tests the log-sum-exp form.
func TestCrossEntropyLoss(t *testing.T) {
	tests := []struct {
		name   string
		output []float64
		class  Class
		want   float64
	}{
		{"Uniform scores", []float64{0, 0}, 0, math.Log(2)},
		{"Near certainty", []float64{10, -10}, 0, 0},
		{"Confidently wrong", []float64{10, -10}, 1, 20},
		{"Three classes", []float64{1, 2, 3}, 2, -3 + math.Log(math.Exp(1)+math.Exp(2)+math.Exp(3))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CrossEntropy{}.Loss(col(tt.output...), tt.class)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-4)
		})
	}
}

// TestCrossEntropyBackward tests softmax minus one-hot.
func TestCrossEntropyBackward(t *testing.T) {
	grad, err := CrossEntropy{}.Backward(col(0, 0), Class(1))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, -0.5}, grad.RawMatrix().Data, 1e-12)

	grad, err = CrossEntropy{}.Backward(col(1, 2, 3), Class(0))
	require.NoError(t, err)
	var sum float64
	for _, v := range grad.RawMatrix().Data {
		sum += v
	}
	assert.InDelta(t, 0, sum, 1e-12, "softmax - onehot sums to zero")
	assert.Less(t, grad.At(0, 0), 0.0)
}

// TestCrossEntropyGradientNumeric compares Backward with a central difference of Loss.
func TestCrossEntropyGradientNumeric(t *testing.T) {
	const h = 1e-6
	scores := []float64{0.2, -1.3, 0.7, 2.1}
	for _, ce := range []CrossEntropy{{}, {Stable: true}} {
		grad, err := ce.Backward(col(scores...), Class(2))
		require.NoError(t, err)
		for i := range scores {
			plus := append([]float64(nil), scores...)
			minus := append([]float64(nil), scores...)
			plus[i] += h
			minus[i] -= h
			lp, err := ce.Loss(col(plus...), Class(2))
			require.NoError(t, err)
			lm, err := ce.Loss(col(minus...), Class(2))
			require.NoError(t, err)
			assert.InDelta(t, (lp-lm)/(2*h), grad.At(i, 0), 1e-6)
		}
	}
}

// TestCrossEntropyOverflow documents the precision boundary of the default form.
func TestCrossEntropyOverflow(t *testing.T) {
	out := col(1000, 0)

	l, err := CrossEntropy{}.Loss(out, Class(0))
	require.NoError(t, err)
	assert.True(t, math.IsInf(l, 1), "unshifted log-sum-exp overflows, got %v", l)

	l, err = CrossEntropy{Stable: true}.Loss(out, Class(0))
	require.NoError(t, err)
	assert.InDelta(t, 0, l, 1e-9)

	grad, err := CrossEntropy{Stable: true}.Backward(out, Class(1))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, -1}, grad.RawMatrix().Data, 1e-9)
}

// TestCrossEntropyTargetErrors tests error handling for bad targets.
func TestCrossEntropyTargetErrors(t *testing.T) {
	tests := []struct {
		name   string
		output mat.Matrix
		target Target
	}{
		{"Values target", col(1, 2), Vec(1, 0)},
		{"Class too large", col(1, 2), Class(2)},
		{"Negative class", col(1, 2), Class(-1)},
		{"Row output", mat.NewDense(1, 2, []float64{1, 2}), Class(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CrossEntropy{}.Loss(tt.output, tt.target)
			assert.ErrorIs(t, err, ErrTarget)
			_, err = CrossEntropy{}.Backward(tt.output, tt.target)
			assert.ErrorIs(t, err, ErrTarget)
		})
	}
}

// TestNameRoundTrip tests the loss registry.
func TestNameRoundTrip(t *testing.T) {
	for _, l := range []Loss{MSE{}, CrossEntropy{}, CrossEntropy{Stable: true}} {
		name, err := Name(l)
		require.NoError(t, err)
		rebuilt, err := ByName(name)
		require.NoError(t, err)
		assert.Equal(t, l, rebuilt)
	}

	_, err := ByName("Huber")
	assert.Error(t, err)
}
