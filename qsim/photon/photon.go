// Package photon provides simulated optical devices for sending qubits
// encoded as polarized photons: an Emitter, a lossy Channel, and a Detector.
package photon

import (
	"fmt"
	"strings"

	"github.com/alan-christopher/qsim/qsim/quantum"
	"github.com/alan-christopher/qsim/qsim/stochastic"
)

// A Sender encodes classical bits into pulses of photons.
type Sender interface {
	// EncodeBit returns a pulse encoding bit in the basis selected by c,
	// along with the basis actually used. If c is Random the basis is sampled.
	EncodeBit(bit bool, c Choice) (*quantum.Pulse, Choice, error)
}

// A Link carries pulses from one party to another.
type Link interface {
	// Propagate consumes pulse and returns the photons that survived
	// transit.
	Propagate(pulse *quantum.Pulse) (*quantum.Pulse, error)
}

// A Receiver decodes pulses of photons into classical bits.
type Receiver interface {
	// Detect measures one photon of pulse in the basis selected by c. If c is
	// Random the basis is sampled.
	Detect(pulse *quantum.Pulse, c Choice) (Detection, error)
}

// A Choice selects the basis used to encode or measure a bit.
type Choice int

const (
	// Random defers the choice of basis to the device's basis provider.
	Random Choice = iota
	Rectilinear
	Diagonal
)

// ChoiceOf maps a sampled basis decision onto a Choice: false selects
// Rectilinear and true selects Diagonal.
func ChoiceOf(diagonal bool) Choice {
	if diagonal {
		return Diagonal
	}
	return Rectilinear
}

// ParseChoice parses the textual form of a Choice.
func ParseChoice(s string) (Choice, error) {
	switch strings.ToLower(s) {
	case "", "random", "auto":
		return Random, nil
	case "rectilinear", "rect", "+":
		return Rectilinear, nil
	case "diagonal", "diag", "x":
		return Diagonal, nil
	}
	return Random, fmt.Errorf("unknown basis choice %q", s)
}

func (c Choice) String() string {
	switch c {
	case Random:
		return "random"
	case Rectilinear:
		return "rectilinear"
	case Diagonal:
		return "diagonal"
	}
	return fmt.Sprintf("Choice(%d)", int(c))
}

// Basis returns the basis selected by c. Random has no basis of its own and
// yields the rectilinear one.
func (c Choice) Basis() quantum.Basis {
	if c == Diagonal {
		return quantum.Diagonal
	}
	return quantum.Rectilinear
}

func (c Choice) resolve(p stochastic.BoolProvider) Choice {
	if c != Random {
		return c
	}
	return ChoiceOf(p.Bool())
}

// An Outcome is the classical result of a detection attempt.
type Outcome int8

const (
	// NoClick indicates that no photon was registered.
	NoClick Outcome = -1
	Zero    Outcome = 0
	One     Outcome = 1
)

// OutcomeOf converts an observed bit into an Outcome.
func OutcomeOf(bit bool) Outcome {
	if bit {
		return One
	}
	return Zero
}

// Clicked reports whether o carries a bit.
func (o Outcome) Clicked() bool {
	return o != NoClick
}

// Bit returns the observed bit. It is false for NoClick.
func (o Outcome) Bit() bool {
	return o == One
}

func (o Outcome) String() string {
	switch o {
	case NoClick:
		return "-"
	case Zero:
		return "0"
	case One:
		return "1"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// A Detection is the result of a Detect call.
type Detection struct {
	Outcome Outcome
	// Basis is the basis measured in. It is Random if the detector failed to
	// fire before a basis was selected.
	Basis Choice
}
