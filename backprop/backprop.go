// Package backprop re-exports the network, activations and losses for use
// outside this module.
package backprop

import (
	"github.com/FlavioCFOliveira/backprop/internal/activations"
	"github.com/FlavioCFOliveira/backprop/internal/loss"
	"github.com/FlavioCFOliveira/backprop/internal/net"
)

// Re-export common types for easier access
type (
	Network    = net.Network
	Config     = net.Config
	Activation = activations.Activation
	Loss       = loss.Loss
	Target     = loss.Target
	Values     = loss.Values
	Class      = loss.Class
)

// Errors
var (
	ErrConfiguration = net.ErrConfiguration
	ErrShape         = net.ErrShape
	ErrInvalidState  = net.ErrInvalidState
)

// New creates a network, see net.New.
func New(cfg Config) (*Network, error) {
	return net.New(cfg)
}

// Activations
var (
	Identity = activations.Identity{}
	Sigmoid  = activations.Sigmoid{}
	Tanh     = activations.Tanh{}
)

func ReLU() Activation {
	return activations.NewReLU()
}

func LeakyReLU(slope float64) Activation {
	return activations.NewLeakyReLU(slope)
}

// Losses
var (
	MSE          = loss.MSE{}
	CrossEntropy = loss.CrossEntropy{}
)

// StableCrossEntropy subtracts the largest score before exponentiating.
func StableCrossEntropy() Loss {
	return loss.CrossEntropy{Stable: true}
}

// Vec builds a column target for elementwise losses.
func Vec(v ...float64) Values {
	return loss.Vec(v...)
}
