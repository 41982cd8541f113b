package photon

import (
	"errors"
	"fmt"

	"github.com/alan-christopher/qsim/qsim/quantum"
	"github.com/alan-christopher/qsim/qsim/stochastic"
	"golang.org/x/exp/rand"
)

// A DetectorOpts packages together the providers driving a Detector. All
// provider fields and Rand must be non-nil.
type DetectorOpts struct {
	// Efficiency decides whether the detector fires at all; false models a
	// photon that goes unregistered.
	Efficiency stochastic.BoolProvider
	// BasisChoice picks the measurement basis when none is requested:
	// false for rectilinear, true for diagonal.
	BasisChoice stochastic.BoolProvider
	// BasisNoise models polarizer misalignment, applied to every selected
	// basis.
	BasisNoise stochastic.BasisTransform
	// DarkCountRate is the rate of spurious clicks. It is recorded for
	// reporting but does not influence detection.
	DarkCountRate float64
	// Rand selects which photon of a pulse is measured and samples
	// measurement outcomes.
	Rand *rand.Rand
}

// A Detector measures single photons from incoming pulses.
type Detector struct {
	opts DetectorOpts
}

// NewDetector returns a new Detector, or an error if opts is incomplete.
func NewDetector(opts DetectorOpts) (*Detector, error) {
	if opts.Efficiency == nil {
		return nil, errors.New("must provide Efficiency")
	}
	if opts.BasisChoice == nil {
		return nil, errors.New("must provide BasisChoice")
	}
	if opts.BasisNoise == nil {
		return nil, errors.New("must provide BasisNoise")
	}
	if opts.Rand == nil {
		return nil, errors.New("must provide Rand")
	}
	if opts.DarkCountRate < 0 {
		return nil, fmt.Errorf("negative DarkCountRate: %f", opts.DarkCountRate)
	}
	return &Detector{opts: opts}, nil
}

// DarkCountRate returns the configured dark count rate.
func (d *Detector) DarkCountRate() float64 {
	return d.opts.DarkCountRate
}

// Detect implements Receiver. The efficiency provider is consulted first; if
// it declines, no qubit is touched and the detection carries NoClick.
// Otherwise one photon, chosen uniformly, is measured in the (possibly
// misaligned) selected basis. An empty pulse never clicks.
func (d *Detector) Detect(pulse *quantum.Pulse, c Choice) (Detection, error) {
	if !d.opts.Efficiency.Bool() {
		return Detection{Outcome: NoClick, Basis: Random}, nil
	}
	c = c.resolve(d.opts.BasisChoice)
	basis := d.opts.BasisNoise.TransformBasis(c.Basis())
	if pulse.Size() == 0 {
		return Detection{Outcome: NoClick, Basis: c}, nil
	}
	q, err := pulse.At(d.opts.Rand.Intn(pulse.Size()))
	if err != nil {
		return Detection{}, err
	}
	obs, err := q.MeasureIn(basis, d.opts.Rand)
	if err != nil {
		return Detection{}, fmt.Errorf("measuring in %v basis: %w", c, err)
	}
	return Detection{Outcome: OutcomeOf(obs), Basis: c}, nil
}
