package photon

import (
	"errors"
	"fmt"

	"github.com/alan-christopher/qsim/qsim/quantum"
	"github.com/alan-christopher/qsim/qsim/stochastic"
)

// A ChannelOpts packages together the providers driving a Channel. All fields
// must be non-nil.
type ChannelOpts struct {
	// Absorption decides, per photon, whether it is lost in the medium.
	Absorption stochastic.BoolProvider
	// StateNoise models decoherence in transit, applied once per photon.
	StateNoise stochastic.StateTransform
}

// A Channel is a lossy, noisy optical medium, e.g. a fiber.
type Channel struct {
	opts ChannelOpts
}

// NewChannel returns a new Channel, or an error if opts is incomplete.
func NewChannel(opts ChannelOpts) (*Channel, error) {
	if opts.Absorption == nil {
		return nil, errors.New("must provide Absorption")
	}
	if opts.StateNoise == nil {
		return nil, errors.New("must provide StateNoise")
	}
	return &Channel{opts: opts}, nil
}

// Propagate implements Link. Every photon of pulse is perturbed by the
// channel's state noise and then possibly absorbed; the survivors are returned
// in a new pulse. pulse is left empty.
func (c *Channel) Propagate(pulse *quantum.Pulse) (*quantum.Pulse, error) {
	out, err := quantum.NewPulse()
	if err != nil {
		return nil, err
	}
	for pulse.Size() > 0 {
		q, err := pulse.Extract()
		if err != nil {
			return nil, err
		}
		if err := q.SetState(c.opts.StateNoise.TransformState(q.State())); err != nil {
			return nil, fmt.Errorf("applying channel noise: %w", err)
		}
		if c.opts.Absorption.Bool() {
			continue
		}
		if err := out.Insert(q); err != nil {
			return nil, err
		}
	}
	return out, nil
}
