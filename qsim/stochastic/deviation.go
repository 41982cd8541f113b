package stochastic

import (
	"math"
	"math/cmplx"

	"github.com/alan-christopher/qsim/qsim/quantum"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// CentiRadian is the width of the catalog's centiradian state deviation.
const CentiRadian = 0.01

// A UniformDeviation jitters a state on the Bloch sphere: its polar angle
// theta and relative phase phi are each shifted by an independent draw from
// Uniform(-Width, Width). The global phase of the zero amplitude is kept.
type UniformDeviation struct {
	dist distuv.Uniform
}

// NewUniformDeviation returns a UniformDeviation of the given width, in
// radians.
func NewUniformDeviation(width float64, src rand.Source) *UniformDeviation {
	width = math.Abs(width)
	return &UniformDeviation{dist: distuv.Uniform{Min: -width, Max: width, Src: src}}
}

// Width returns the maximum per-angle deviation, in radians.
func (u *UniformDeviation) Width() float64 {
	return u.dist.Max
}

// TransformState implements StateTransform.
func (u *UniformDeviation) TransformState(s quantum.State) quantum.State {
	norm := math.Sqrt(s.SquaredNorm())
	if norm == 0 {
		return s
	}
	zeroMag, oneMag := cmplx.Abs(s.Alpha)/norm, cmplx.Abs(s.Beta)/norm

	var theta, phi float64
	phase := complex(1, 0)
	switch {
	case zeroMag == 0:
		theta = math.Pi
	case oneMag == 0:
		theta = 0
	default:
		phase = s.Alpha / complex(cmplx.Abs(s.Alpha), 0)
		phi = cmplx.Phase(s.Beta) - cmplx.Phase(s.Alpha)
		theta = 2 * math.Acos(math.Min(zeroMag, 1))
	}

	theta += u.dist.Rand()
	phi += u.dist.Rand()
	return quantum.State{
		Alpha: phase * complex(math.Cos(theta/2), 0),
		Beta:  phase * cmplx.Exp(complex(0, phi)) * complex(math.Sin(theta/2), 0),
	}
}

// A UniformMisalignment models a detector whose polarizer is rotated by a
// small random angle drawn from Uniform(-Width, Width) for each measurement.
// Both basis vectors are rotated together, so the result stays orthonormal.
type UniformMisalignment struct {
	dist distuv.Uniform
}

// NewUniformMisalignment returns a UniformMisalignment of the given width, in
// radians.
func NewUniformMisalignment(width float64, src rand.Source) *UniformMisalignment {
	width = math.Abs(width)
	return &UniformMisalignment{dist: distuv.Uniform{Min: -width, Max: width, Src: src}}
}

// Width returns the maximum rotation, in radians.
func (u *UniformMisalignment) Width() float64 {
	return u.dist.Max
}

// TransformBasis implements BasisTransform.
func (u *UniformMisalignment) TransformBasis(b quantum.Basis) quantum.Basis {
	delta := u.dist.Rand()
	return quantum.Basis{
		First:  rotate(b.First, delta),
		Second: rotate(b.Second, delta),
	}
}

func rotate(s quantum.State, delta float64) quantum.State {
	c, sn := complex(math.Cos(delta), 0), complex(math.Sin(delta), 0)
	return quantum.State{
		Alpha: c*s.Alpha - sn*s.Beta,
		Beta:  sn*s.Alpha + c*s.Beta,
	}
}
