package photon

import (
	"errors"
	"fmt"

	"github.com/alan-christopher/qsim/qsim/quantum"
	"github.com/alan-christopher/qsim/qsim/stochastic"
)

// An EmitterOpts packages together the providers driving an Emitter. All
// fields must be non-nil.
type EmitterOpts struct {
	// PulseCount samples the number of photons in each pulse.
	PulseCount stochastic.IntProvider
	// BasisChoice picks the encoding basis when none is requested:
	// false for rectilinear, true for diagonal.
	BasisChoice stochastic.BoolProvider
	// StateNoise is applied independently to every emitted photon.
	StateNoise stochastic.StateTransform
}

// An Emitter prepares pulses of identically-encoded photons.
type Emitter struct {
	opts EmitterOpts
}

// NewEmitter returns a new Emitter, or an error if opts is incomplete.
func NewEmitter(opts EmitterOpts) (*Emitter, error) {
	if opts.PulseCount == nil {
		return nil, errors.New("must provide PulseCount")
	}
	if opts.BasisChoice == nil {
		return nil, errors.New("must provide BasisChoice")
	}
	if opts.StateNoise == nil {
		return nil, errors.New("must provide StateNoise")
	}
	return &Emitter{opts: opts}, nil
}

// CreatePulse emits a pulse of photons prepared in state s. The number of
// photons is sampled from the pulse count provider, and each photon's state is
// independently perturbed by the state noise.
func (e *Emitter) CreatePulse(s quantum.State) (*quantum.Pulse, error) {
	n := e.opts.PulseCount.Int()
	if n < 0 {
		return nil, fmt.Errorf("negative photon count: %d", n)
	}
	qubits := make([]*quantum.Qubit, 0, n)
	for i := 0; i < n; i++ {
		q, err := quantum.NewQubit(e.opts.StateNoise.TransformState(s))
		if err != nil {
			return nil, fmt.Errorf("preparing photon %d of %d: %w", i, n, err)
		}
		qubits = append(qubits, q)
	}
	return quantum.NewPulse(qubits...)
}

// EncodeBit implements Sender. In the rectilinear basis false and true map to
// |0> and |1>; in the diagonal basis, to |+> and |->.
func (e *Emitter) EncodeBit(bit bool, c Choice) (*quantum.Pulse, Choice, error) {
	c = c.resolve(e.opts.BasisChoice)
	b := c.Basis()
	s := b.First
	if bit {
		s = b.Second
	}
	p, err := e.CreatePulse(s)
	if err != nil {
		return nil, c, err
	}
	return p, c, nil
}
