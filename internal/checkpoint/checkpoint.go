// Package checkpoint saves and restores networks using gob encoding.
//
// It only uses the public parameter API of net.Network, so the network itself
// knows nothing about persistence. The gradient accumulator and the
// intermediate cache are not stored: a restored network starts READY.
package checkpoint

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/FlavioCFOliveira/backprop/internal/activations"
	"github.com/FlavioCFOliveira/backprop/internal/loss"
	"github.com/FlavioCFOliveira/backprop/internal/net"
)

// LayerConfig holds what is needed to rebuild the activation of one layer transition.
type LayerConfig struct {
	InSize     int
	OutSize    int
	Activation string
	Slope      float64
}

// Header describes a saved network.
type Header struct {
	Sizes        []int
	Layers       []LayerConfig
	Loss         string
	LearningRate float64
}

// Save saves the network to a file.
func Save(filename string, n *net.Network) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := Encode(file, n); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Load loads a network from a file.
func Load(filename string) (*net.Network, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Decode(file)
}

// Encode writes the header followed by the flattened parameters.
func Encode(w io.Writer, n *net.Network) error {
	hdr, err := headerOf(n)
	if err != nil {
		return err
	}

	encoder := gob.NewEncoder(w)
	if err := encoder.Encode(hdr); err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	if err := encoder.Encode(n.Params()); err != nil {
		return fmt.Errorf("failed to encode params: %w", err)
	}
	return nil
}

// Decode reads a network written by Encode.
func Decode(r io.Reader) (*net.Network, error) {
	decoder := gob.NewDecoder(r)

	var hdr Header
	if err := decoder.Decode(&hdr); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	var params []float64
	if err := decoder.Decode(&params); err != nil {
		return nil, fmt.Errorf("failed to read parameters: %w", err)
	}

	acts := make([]activations.Activation, len(hdr.Layers))
	for i, cfg := range hdr.Layers {
		act, err := activations.ByName(cfg.Activation, cfg.Slope)
		if err != nil {
			return nil, fmt.Errorf("failed to create layer %d: %w", i, err)
		}
		acts[i] = act
	}
	lossFn, err := loss.ByName(hdr.Loss)
	if err != nil {
		return nil, fmt.Errorf("failed to create loss: %w", err)
	}

	n, err := net.New(net.Config{
		Sizes:        hdr.Sizes,
		Activations:  acts,
		Loss:         lossFn,
		LearningRate: hdr.LearningRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild network: %w", err)
	}
	if err := n.SetParams(params); err != nil {
		return nil, fmt.Errorf("failed to restore parameters: %w", err)
	}
	return n, nil
}

func headerOf(n *net.Network) (Header, error) {
	sizes := n.Sizes()
	hdr := Header{
		Sizes:        sizes,
		LearningRate: n.LearningRate(),
	}
	for i, act := range n.Activations() {
		name, err := activations.Name(act)
		if err != nil {
			return Header{}, fmt.Errorf("failed to encode layer %d: %w", i, err)
		}
		hdr.Layers = append(hdr.Layers, LayerConfig{
			InSize:     sizes[i],
			OutSize:    sizes[i+1],
			Activation: name,
			Slope:      activations.Slope(act),
		})
	}
	lossName, err := loss.Name(n.LossFunction())
	if err != nil {
		return Header{}, fmt.Errorf("failed to encode loss: %w", err)
	}
	hdr.Loss = lossName
	return hdr, nil
}
