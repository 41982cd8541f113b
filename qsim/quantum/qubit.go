package quantum

import (
	"golang.org/x/exp/rand"
)

// MeasurementScale is the number of integer buckets the unit probability
// interval is quantized into when sampling a measurement outcome.
const MeasurementScale = 100000000

// A Qubit is a single simulated photon. Its state is mutated in place by
// measurement, which collapses it onto the observed basis vector.
type Qubit struct {
	state State
	owner *Pulse
}

// NewQubit returns a qubit in state s, renormalized if necessary.
func NewQubit(s State) (*Qubit, error) {
	n, err := Normalize(s)
	if err != nil {
		return nil, err
	}
	return &Qubit{state: n}, nil
}

// State returns the current state of q.
func (q *Qubit) State() State {
	return q.state
}

// SetState replaces the state of q with s, renormalized if necessary. On error
// q is left unchanged.
func (q *Qubit) SetState(s State) error {
	n, err := Normalize(s)
	if err != nil {
		return err
	}
	q.state = n
	return nil
}

// Measure measures q in the computational basis, collapsing it to |0> or |1>
// and returning true iff |1> was observed.
func (q *Qubit) Measure(r *rand.Rand) bool {
	observation := performMeasure(q.state.Alpha, q.state.Beta, r)
	if observation {
		q.state = One
	} else {
		q.state = Zero
	}
	return observation
}

// MeasureIn measures q in basis b, collapsing it to b.First or b.Second and
// returning true iff b.Second was observed.
func (q *Qubit) MeasureIn(b Basis, r *rand.Rand) (bool, error) {
	c, err := ChangeBasis(q.state, b)
	if err != nil {
		return false, err
	}
	observation := performMeasure(c.Alpha, c.Beta, r)
	if observation {
		q.state = b.Second
	} else {
		q.state = b.First
	}
	return observation, nil
}

// performMeasure samples the Born rule over the two amplitudes, returning true
// with probability |one|^2 / (|zero|^2 + |one|^2). The probabilities are
// quantized to MeasurementScale buckets, so outcomes with probability below
// 1/MeasurementScale never occur.
func performMeasure(zero, one Amplitude, r *rand.Rand) bool {
	probZero := int64(sqAbs(zero) * MeasurementScale)
	probOne := int64(sqAbs(one) * MeasurementScale)
	if probZero+probOne <= 0 {
		return false
	}
	return r.Int63n(probZero+probOne) >= probZero
}
