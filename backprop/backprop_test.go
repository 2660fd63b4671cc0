package backprop_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/backprop/backprop"
)

// TestTrainingCycle runs forward, loss and update through the public API.
func TestTrainingCycle(t *testing.T) {
	n, err := backprop.New(backprop.Config{
		Sizes:        []int{2, 4, 3},
		Activations:  []backprop.Activation{backprop.LeakyReLU(0.1), backprop.Identity},
		Loss:         backprop.StableCrossEntropy(),
		LearningRate: 0.1,
		Rand:         rand.New(rand.NewSource(8)),
	})
	require.NoError(t, err)

	x := mat.NewVecDense(2, []float64{0.5, -0.5})
	var first, last float64
	for i := 0; i < 200; i++ {
		_, err := n.Forward(x)
		require.NoError(t, err)
		l, err := n.Loss(backprop.Class(2))
		require.NoError(t, err)
		require.NoError(t, n.Update())
		if i == 0 {
			first = l
		}
		last = l
	}
	assert.Less(t, last, first)

	assert.ErrorIs(t, n.Update(), backprop.ErrInvalidState)
	_, err = n.Forward(mat.NewVecDense(3, nil))
	assert.ErrorIs(t, err, backprop.ErrShape)
	_, err = backprop.New(backprop.Config{Sizes: []int{1}})
	assert.ErrorIs(t, err, backprop.ErrConfiguration)
}
