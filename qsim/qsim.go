// Package qsim simulates transmitting classical bits over a quantum link, with
// or without an eavesdropper, and scores how well each party learned the
// source bits.
package qsim

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alan-christopher/qsim/qsim/bitmap"
	"github.com/alan-christopher/qsim/qsim/photon"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// A Kind names a transmission scenario.
type Kind int

const (
	// Direct sends every pulse straight from sender to receiver.
	Direct Kind = iota
	// PhotonNumberSplitting places an eavesdropper on the link who siphons
	// one photon off every pulse.
	PhotonNumberSplitting
)

// ParseKind parses the textual form of a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "direct":
		return Direct, nil
	case "pns", "photon-number-splitting":
		return PhotonNumberSplitting, nil
	}
	return Direct, fmt.Errorf("unknown scenario %q", s)
}

func (k Kind) String() string {
	switch k {
	case Direct:
		return "direct"
	case PhotonNumberSplitting:
		return "pns"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Stats packages together the metrics of one transmission. Percentages are in
// [0, 100] and count only positions at which both compared parties detected a
// photon; they are 0 when there are no such positions.
type Stats struct {
	Pulses         int
	PhotonsEmitted int
	// PhotonsArrived counts photons surviving the channel, before any
	// eavesdropping.
	PhotonsArrived int
	Detections     int
	EveDetections  int
	// Regenerated counts pulses Eve replaced with her own.
	Regenerated int
	// Forwarded counts pulses Eve passed on after splitting off a photon.
	Forwarded int

	ReceiverAccuracy     float64
	EveAccuracy          float64
	EveReceiverAgreement float64
	// BasisMatchRate is the percentage of positions detected by both Eve and
	// the receiver at which they measured in the same basis.
	BasisMatchRate float64
}

// A Result holds the per-symbol outcome of a transmission. Basis bitmaps hold
// true for the diagonal basis. Bits are false wherever the matching detection
// mask is false.
type Result struct {
	RunID uuid.UUID
	Kind  Kind

	Source      bitmap.Dense
	SenderBases bitmap.Dense

	Received      bitmap.Dense
	Detected      bitmap.Dense
	ReceiverBases bitmap.Dense

	EveBits     bitmap.Dense
	EveDetected bitmap.Dense
	EveBases    bitmap.Dense

	Stats Stats
}

// ReceivedString renders the receiver's bits, with '-' for missed pulses.
func (r Result) ReceivedString() string {
	return FormatOutcomes(r.Received, r.Detected)
}

// EveString renders Eve's bits, with '-' for missed pulses.
func (r Result) EveString() string {
	return FormatOutcomes(r.EveBits, r.EveDetected)
}

// FormatOutcomes renders bits as '0'/'1', substituting '-' wherever detected
// is unset.
func FormatOutcomes(bits, detected bitmap.Dense) string {
	var sb strings.Builder
	for i := 0; i < bits.Size(); i++ {
		o := photon.NoClick
		if detected.Get(i) {
			o = photon.OutcomeOf(bits.Get(i))
		}
		sb.WriteString(o.String())
	}
	return sb.String()
}

// A Scenario transmits source strings over a simulated link.
type Scenario interface {
	// Transmit sends each bit of source in turn and reports what every party
	// observed.
	Transmit(source bitmap.Dense) (Result, error)
}

// An Eavesdropper packages together the devices Eve uses to attack the link.
type Eavesdropper struct {
	// Receiver measures the photons Eve splits off. Must be non-nil.
	Receiver photon.Receiver
	// Sender regenerates pulses Eve has emptied. Must be non-nil.
	Sender photon.Sender
	// Basis is the basis Eve measures in.
	Basis photon.Choice
}

// An Opts packages together the arguments necessary to construct a new
// Scenario.
type Opts struct {
	// Sender, Channel and Receiver are the legitimate devices. Must be
	// non-nil.
	Sender   photon.Sender
	Channel  photon.Link
	Receiver photon.Receiver

	// SenderBasis and ReceiverBasis select the encoding and measurement
	// bases. Random defers to each device's own basis provider.
	SenderBasis   photon.Choice
	ReceiverBasis photon.Choice

	// Eve attacks the link. Required for PhotonNumberSplitting, ignored
	// otherwise.
	Eve *Eavesdropper

	// Log receives per-symbol debug events. Defaults to a disabled logger.
	Log *zerolog.Logger

	// Transcript, if non-nil, receives a framed record of every symbol.
	Transcript io.Writer
}

// NewScenario returns a new Scenario of the given kind, configured in
// accordance with opts, or an error if the options are nonsensical.
func NewScenario(kind Kind, opts Opts) (Scenario, error) {
	if opts.Sender == nil {
		return nil, errors.New("must provide Sender")
	}
	if opts.Channel == nil {
		return nil, errors.New("must provide Channel")
	}
	if opts.Receiver == nil {
		return nil, errors.New("must provide Receiver")
	}
	log := zerolog.Nop()
	if opts.Log != nil {
		log = *opts.Log
	}
	l := &link{opts: opts, log: log}
	if opts.Transcript != nil {
		l.transcript = NewTranscriptWriter(opts.Transcript)
	}

	switch kind {
	case Direct:
		return &direct{link: l}, nil
	case PhotonNumberSplitting:
		if opts.Eve == nil {
			return nil, errors.New("must provide Eve for a photon number splitting attack")
		}
		if opts.Eve.Receiver == nil || opts.Eve.Sender == nil {
			return nil, errors.New("must provide both Eve.Sender and Eve.Receiver")
		}
		return &pns{link: l, eve: *opts.Eve}, nil
	}
	return nil, fmt.Errorf("unsupported scenario %v", kind)
}
