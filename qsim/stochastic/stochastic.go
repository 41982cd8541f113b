// Package stochastic provides the pluggable sources of randomness that drive
// the simulated optical devices: photon counts, yes/no decisions, and noise
// applied to states and measurement bases.
//
// Every random provider draws from an explicitly supplied rand.Source, so a
// simulation seeded the same way replays exactly.
package stochastic

import (
	"github.com/alan-christopher/qsim/qsim/quantum"
	"golang.org/x/exp/rand"
)

// An IntProvider returns a freshly sampled integer on each call.
type IntProvider interface {
	Int() int
}

// A BoolProvider returns a freshly sampled decision on each call.
type BoolProvider interface {
	Bool() bool
}

// A StateTransform returns a (possibly randomly) perturbed copy of a state.
// The result need not be normalized.
type StateTransform interface {
	TransformState(quantum.State) quantum.State
}

// A BasisTransform returns a (possibly randomly) perturbed copy of a basis.
type BasisTransform interface {
	TransformBasis(quantum.Basis) quantum.Basis
}

// IntFunc adapts an ordinary function to the IntProvider interface.
type IntFunc func() int

// Int implements IntProvider.
func (f IntFunc) Int() int { return f() }

// BoolFunc adapts an ordinary function to the BoolProvider interface.
type BoolFunc func() bool

// Bool implements BoolProvider.
func (f BoolFunc) Bool() bool { return f() }

// StateFunc adapts an ordinary function to the StateTransform interface.
type StateFunc func(quantum.State) quantum.State

// TransformState implements StateTransform.
func (f StateFunc) TransformState(s quantum.State) quantum.State { return f(s) }

// BasisFunc adapts an ordinary function to the BasisTransform interface.
type BasisFunc func(quantum.Basis) quantum.Basis

// TransformBasis implements BasisTransform.
func (f BasisFunc) TransformBasis(b quantum.Basis) quantum.Basis { return f(b) }

// NewSource returns a new pseudo-random source seeded with seed.
func NewSource(seed uint64) rand.Source {
	return rand.NewSource(seed)
}

// NewRand returns a new pseudo-random generator seeded with seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(NewSource(seed))
}
