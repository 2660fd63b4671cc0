// Package opt provides benchmarks for optimizers.
package opt

import "testing"

// BenchmarkSGDStepInPlace benchmarks SGD in-place update.
func BenchmarkSGDStepInPlace(b *testing.B) {
	params := make([]float64, 10000)
	grads := make([]float64, 10000)
	for i := range grads {
		grads[i] = float64(i) * 1e-4
	}
	sgd := SGD{LearningRate: 0.01}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sgd.StepInPlace(params, grads)
	}
}
