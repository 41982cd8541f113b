// Package quantum provides a minimal model of single-photon polarization
// qubits: two-amplitude states, measurement bases, and pulses of photons.
package quantum

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

// Epsilon is the tolerance used when comparing squared norms and determinants.
const Epsilon = 1e-4

var (
	// ErrInvalidState indicates a state whose amplitudes are both (nearly)
	// zero, which cannot be normalized.
	ErrInvalidState = errors.New("quantum: 0|0>+0|1> is not a valid state")
	// ErrDegenerateBasis indicates a basis whose vectors are not linearly
	// independent, or, for Validate, not orthonormal.
	ErrDegenerateBasis = errors.New("quantum: degenerate basis")
	// ErrEmptyPulse is returned when extracting from a pulse with no qubits.
	ErrEmptyPulse = errors.New("quantum: extract from empty pulse")
	// ErrIndexOutOfRange is returned on out of bounds pulse access.
	ErrIndexOutOfRange = errors.New("quantum: pulse index out of range")
	// ErrQubitOwned is returned when inserting a qubit that still belongs to a
	// pulse.
	ErrQubitOwned = errors.New("quantum: qubit already belongs to a pulse")
)

// An Amplitude is the complex coefficient on one basis vector.
type Amplitude = complex128

// A State is a pair of amplitudes over two orthonormal basis vectors, i.e.
// Alpha|0> + Beta|1> in the computational basis.
type State struct {
	Alpha Amplitude
	Beta  Amplitude
}

// A Basis is a pair of orthonormal states spanning the state space. Measuring
// in a basis yields false for First and true for Second.
type Basis struct {
	First  State
	Second State
}

var (
	Zero  = State{1, 0}
	One   = State{0, 1}
	Plus  = State{complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0)}
	Minus = State{complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0)}

	// Rectilinear is the computational {|0>, |1>} basis.
	Rectilinear = Basis{Zero, One}
	// Diagonal is the Hadamard {|+>, |->} basis.
	Diagonal = Basis{Plus, Minus}
)

// SquaredNorm returns |Alpha|^2 + |Beta|^2.
func (s State) SquaredNorm() float64 {
	return sqAbs(s.Alpha) + sqAbs(s.Beta)
}

// Equal reports whether s and o agree amplitude-wise within tol.
func (s State) Equal(o State, tol float64) bool {
	return cmplx.Abs(s.Alpha-o.Alpha) <= tol && cmplx.Abs(s.Beta-o.Beta) <= tol
}

func (s State) String() string {
	return fmt.Sprintf("%v|0> + %v|1>", s.Alpha, s.Beta)
}

// Normalize rescales s to unit norm. States already within Epsilon of unit
// norm are returned unchanged, so Normalize is idempotent.
func Normalize(s State) (State, error) {
	sum := s.SquaredNorm()
	if sum < Epsilon*Epsilon {
		return State{}, ErrInvalidState
	}
	if math.Abs(sum-1) <= Epsilon {
		return s, nil
	}
	n := complex(math.Sqrt(sum), 0)
	return State{s.Alpha / n, s.Beta / n}, nil
}

// ChangeBasis re-expresses s as coefficients over the vectors of b, i.e. it
// returns (x, y) such that s = x*b.First + y*b.Second.
func ChangeBasis(s State, b Basis) (State, error) {
	a1, b1 := b.First.Alpha, b.First.Beta
	a2, b2 := b.Second.Alpha, b.Second.Beta
	det := a1*b2 - b1*a2
	if cmplx.Abs(det) < Epsilon {
		return State{}, fmt.Errorf("%w: determinant %v", ErrDegenerateBasis, det)
	}
	return State{
		Alpha: (s.Alpha*b2 - s.Beta*a2) / det,
		Beta:  (s.Alpha*b1 - s.Beta*a1) / (a2*b1 - b2*a1),
	}, nil
}

// Compose is the inverse of ChangeBasis: it interprets c as coefficients over
// the vectors of b and returns the resulting computational-basis state.
func (b Basis) Compose(c State) State {
	return State{
		Alpha: c.Alpha*b.First.Alpha + c.Beta*b.Second.Alpha,
		Beta:  c.Alpha*b.First.Beta + c.Beta*b.Second.Beta,
	}
}

// Validate checks that b is orthonormal within Epsilon.
func (b Basis) Validate() error {
	for _, v := range []State{b.First, b.Second} {
		if math.Abs(v.SquaredNorm()-1) > Epsilon {
			return fmt.Errorf("%w: %v is not normalized", ErrDegenerateBasis, v)
		}
	}
	// <First|Second>
	inner := cmplx.Conj(b.First.Alpha)*b.Second.Alpha + cmplx.Conj(b.First.Beta)*b.Second.Beta
	if cmplx.Abs(inner) > Epsilon {
		return fmt.Errorf("%w: inner product %v", ErrDegenerateBasis, inner)
	}
	return nil
}

func sqAbs(a Amplitude) float64 {
	return real(a)*real(a) + imag(a)*imag(a)
}
