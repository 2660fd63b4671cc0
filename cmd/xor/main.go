package main

import (
	"fmt"
	"log"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/backprop/internal/activations"
	"github.com/FlavioCFOliveira/backprop/internal/checkpoint"
	"github.com/FlavioCFOliveira/backprop/internal/loss"
	"github.com/FlavioCFOliveira/backprop/internal/net"
)

func main() {
	fmt.Println("=== XOR Training Example ===")

	// Create a simple XOR network: 2 inputs -> 3 hidden -> 1 output
	// The XOR function cannot be solved by a single-layer perceptron
	// but can be solved by a multi-layer perceptron with hidden layers
	network, err := net.New(net.Config{
		Sizes:        []int{2, 3, 1},
		Activations:  []activations.Activation{activations.Tanh{}, activations.Sigmoid{}},
		Loss:         loss.MSE{},
		LearningRate: 0.5,
	})
	if err != nil {
		log.Fatal("Error creating network:", err)
	}

	fmt.Printf("Network architecture: %v\n", network.Sizes())
	fmt.Println("Activation functions: Tanh (hidden), Sigmoid (output)")
	fmt.Println("Loss function: MSE")
	fmt.Printf("Learning rate: %v, one update per epoch\n", network.LearningRate())

	// XOR training data
	trainX := []mat.Matrix{
		mat.NewVecDense(2, []float64{0, 0}),
		mat.NewVecDense(2, []float64{0, 1}),
		mat.NewVecDense(2, []float64{1, 0}),
		mat.NewVecDense(2, []float64{1, 1}),
	}
	trainY := []loss.Target{loss.Vec(0), loss.Vec(1), loss.Vec(1), loss.Vec(0)}

	// Train for 5000 epochs, the whole set is one mini-batch
	for epoch := 0; epoch < 5000; epoch++ {
		l, err := network.TrainBatch(trainX, trainY)
		if err != nil {
			log.Fatal("Error training:", err)
		}
		if epoch%500 == 0 {
			fmt.Printf("Epoch %d, Loss: %.6f\n", epoch, l)
		}
	}

	// Test the network
	fmt.Println("\nTesting trained network:")
	for i := range trainX {
		pred, err := network.Forward(trainX[i])
		if err != nil {
			log.Fatal("Error running network:", err)
		}
		fmt.Printf("Input: %v, Predicted: %.4f, Target: %v\n",
			mat.Formatted(trainX[i].T()), pred.At(0, 0), trainY[i].(loss.Values).M.At(0, 0))
	}

	// Save the trained network
	fmt.Println("\nSaving network to disk...")
	if err := checkpoint.Save("xor_network.gob", network); err != nil {
		log.Fatal("Error saving network:", err)
	}
	fmt.Println("Network saved successfully!")

	// Load the network back
	fmt.Println("Loading network from disk...")
	loaded, err := checkpoint.Load("xor_network.gob")
	if err != nil {
		log.Fatal("Error loading network:", err)
	}
	fmt.Println("Network loaded successfully!")

	// Verify loaded network produces same predictions
	fmt.Println("\nVerifying loaded network:")
	allMatch := true
	for i := range trainX {
		original, err := network.Forward(trainX[i])
		if err != nil {
			log.Fatal("Error running network:", err)
		}
		restored, err := loaded.Forward(trainX[i])
		if err != nil {
			log.Fatal("Error running loaded network:", err)
		}
		match := "OK"
		if math.Abs(original.At(0, 0)-restored.At(0, 0)) > 1e-12 {
			match = "MISMATCH"
			allMatch = false
		}
		fmt.Printf("Input: %v, Original: %.4f, Loaded: %.4f [%s]\n",
			mat.Formatted(trainX[i].T()), original.At(0, 0), restored.At(0, 0), match)
	}

	if allMatch {
		fmt.Println("\nSUCCESS: All predictions match between original and loaded network!")
	} else {
		fmt.Println("\nFAILURE: Predictions differ between original and loaded network!")
	}
}
