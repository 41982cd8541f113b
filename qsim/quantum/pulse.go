package quantum

import "fmt"

// A Pulse is the set of photons carrying one transmitted symbol. Qubits are
// moved in and out of a pulse, never shared: a qubit belongs to at most one
// pulse at a time.
type Pulse struct {
	qubits []*Qubit
}

// NewPulse returns a pulse holding qs, in order.
func NewPulse(qs ...*Qubit) (*Pulse, error) {
	p := &Pulse{qubits: make([]*Qubit, 0, len(qs))}
	for _, q := range qs {
		if err := p.Insert(q); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Size returns the number of qubits in p.
func (p *Pulse) Size() int {
	return len(p.qubits)
}

// At returns the i-th qubit of p without removing it.
func (p *Pulse) At(i int) (*Qubit, error) {
	if i < 0 || i >= len(p.qubits) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(p.qubits))
	}
	return p.qubits[i], nil
}

// Insert appends q to p, transferring ownership of q to p.
func (p *Pulse) Insert(q *Qubit) error {
	if q.owner != nil {
		return ErrQubitOwned
	}
	q.owner = p
	p.qubits = append(p.qubits, q)
	return nil
}

// Extract removes and returns the most recently inserted qubit.
func (p *Pulse) Extract() (*Qubit, error) {
	n := len(p.qubits)
	if n == 0 {
		return nil, ErrEmptyPulse
	}
	q := p.qubits[n-1]
	p.qubits[n-1] = nil
	p.qubits = p.qubits[:n-1]
	q.owner = nil
	return q, nil
}
