package main

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/backprop/internal/activations"
	"github.com/FlavioCFOliveira/backprop/internal/loss"
	"github.com/FlavioCFOliveira/backprop/internal/net"
	"github.com/FlavioCFOliveira/backprop/internal/trainlog"
)

const (
	batches   = 3000
	batchSize = 20
	window    = 100
	curveFile = "losses.csv"
)

func main() {
	fmt.Println("=== Constant Target Training Example ===")

	// 3 inputs -> 4 hidden -> 2 outputs, ReLU everywhere, MSE against ones.
	network, err := net.New(net.Config{
		Sizes:       []int{3, 4, 2},
		Activations: []activations.Activation{activations.NewReLU()},
	})
	if err != nil {
		log.Fatal("Error creating network:", err)
	}

	fmt.Printf("Network architecture: %v\n", network.Sizes())
	fmt.Println("Activation functions: ReLU")
	fmt.Println("Loss function: MSE")
	fmt.Printf("Learning rate: %v, batches: %d x %d\n", network.LearningRate(), batches, batchSize)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	input := func() *mat.Dense {
		return mat.NewDense(3, 1, []float64{rng.Float64(), rng.Float64(), rng.Float64()})
	}
	target := loss.Vec(1, 1)

	recorder := trainlog.NewRecorder(window)
	for b := 0; b < batches; b++ {
		for i := 0; i < batchSize; i++ {
			if _, err := network.Train(input(), target); err != nil {
				log.Fatal("Error training:", err)
			}
		}
		l, err := network.Train(input(), target)
		if err != nil {
			log.Fatal("Error training:", err)
		}
		recorder.Record(l)

		if err := network.Update(); err != nil {
			log.Fatal("Error updating:", err)
		}

		if b%500 == 0 {
			avg := recorder.MovingAverage()
			fmt.Printf("Batch %d, Loss: %.6f, Moving average: %.6f\n", b, l, avg[len(avg)-1])
		}
	}

	out, err := network.Forward(input())
	if err != nil {
		log.Fatal("Error running network:", err)
	}
	fmt.Printf("\nFinal output: %v\n", mat.Formatted(out.T()))

	if err := recorder.SaveCSV(curveFile); err != nil {
		log.Fatal("Error saving loss curve:", err)
	}
	fmt.Printf("Loss curve written to %s\n", curveFile)
}
