package qsim

import (
	"fmt"

	"github.com/alan-christopher/qsim/qsim/bitmap"
	"github.com/alan-christopher/qsim/qsim/photon"
	"github.com/alan-christopher/qsim/qsim/quantum"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// A Symbol records everything that happened to one transmitted bit.
type Symbol struct {
	Index       int
	Bit         bool
	SenderBasis photon.Choice
	// Emitted and Arrived count the photons leaving the sender and
	// surviving the channel.
	Emitted int
	Arrived int

	// Eve is NoClick when there is no eavesdropper or nothing arrived.
	Eve         photon.Detection
	Regenerated bool
	Forwarded   bool

	Received photon.Detection
}

// An interceptor acts on a pulse between the channel and the receiver,
// returning the pulse the receiver sees.
type interceptor func(sym *Symbol, pulse *quantum.Pulse) (*quantum.Pulse, error)

// A link holds the legitimate devices shared by every scenario.
type link struct {
	opts       Opts
	log        zerolog.Logger
	transcript *TranscriptWriter
}

// A direct transmits pulses straight from sender to receiver.
type direct struct {
	*link
}

// A pns runs a photon number splitting attack on the link.
type pns struct {
	*link
	eve Eavesdropper
}

// Transmit implements the Scenario interface.
func (d *direct) Transmit(source bitmap.Dense) (Result, error) {
	return d.transmit(Direct, source, nil)
}

// Transmit implements the Scenario interface.
func (p *pns) Transmit(source bitmap.Dense) (Result, error) {
	return p.transmit(PhotonNumberSplitting, source, p.split)
}

// split siphons one photon off pulse and measures it. If that empties the
// pulse, Eve replaces it with one encoding her own observation in the basis she
// measured in; if she observed nothing, the receiver gets the empty pulse.
// Otherwise the remaining photons are forwarded untouched.
func (p *pns) split(sym *Symbol, pulse *quantum.Pulse) (*quantum.Pulse, error) {
	if pulse.Size() == 0 {
		return pulse, nil
	}
	q, err := pulse.Extract()
	if err != nil {
		return nil, err
	}
	stolen, err := quantum.NewPulse(q)
	if err != nil {
		return nil, err
	}
	sym.Eve, err = p.eve.Receiver.Detect(stolen, p.eve.Basis)
	if err != nil {
		return nil, fmt.Errorf("eve measuring symbol %d: %w", sym.Index, err)
	}
	if pulse.Size() > 0 {
		sym.Forwarded = true
		return pulse, nil
	}
	if !sym.Eve.Outcome.Clicked() {
		return pulse, nil
	}
	regen, _, err := p.eve.Sender.EncodeBit(sym.Eve.Outcome.Bit(), sym.Eve.Basis)
	if err != nil {
		return nil, fmt.Errorf("eve regenerating symbol %d: %w", sym.Index, err)
	}
	sym.Regenerated = true
	return regen, nil
}

func (l *link) transmit(kind Kind, source bitmap.Dense, intercept interceptor) (Result, error) {
	n := source.Size()
	res := Result{
		RunID:         uuid.New(),
		Kind:          kind,
		Source:        source,
		SenderBases:   bitmap.NewDense(nil, n),
		Received:      bitmap.NewDense(nil, n),
		Detected:      bitmap.NewDense(nil, n),
		ReceiverBases: bitmap.NewDense(nil, n),
		EveBits:       bitmap.NewDense(nil, n),
		EveDetected:   bitmap.NewDense(nil, n),
		EveBases:      bitmap.NewDense(nil, n),
	}
	log := l.log.With().Str("run", res.RunID.String()).Stringer("scenario", kind).Logger()
	if l.transcript != nil {
		if err := l.transcript.WriteHeader(Header{RunID: res.RunID, Kind: kind, Symbols: n}); err != nil {
			return Result{}, fmt.Errorf("writing transcript header: %w", err)
		}
	}

	for i := 0; i < n; i++ {
		sym, err := l.sendSymbol(i, source.Get(i), intercept)
		if err != nil {
			return Result{}, err
		}
		res.record(sym)
		log.Debug().
			Int("symbol", sym.Index).
			Bool("bit", sym.Bit).
			Stringer("senderBasis", sym.SenderBasis).
			Int("emitted", sym.Emitted).
			Int("arrived", sym.Arrived).
			Stringer("eve", sym.Eve.Outcome).
			Bool("regenerated", sym.Regenerated).
			Stringer("receiverBasis", sym.Received.Basis).
			Stringer("received", sym.Received.Outcome).
			Msg("symbol transmitted")
		if l.transcript != nil {
			if err := l.transcript.WriteSymbol(sym); err != nil {
				return Result{}, fmt.Errorf("writing transcript symbol %d: %w", i, err)
			}
		}
	}

	res.score()
	log.Debug().
		Int("pulses", res.Stats.Pulses).
		Int("detections", res.Stats.Detections).
		Float64("receiverAccuracy", res.Stats.ReceiverAccuracy).
		Float64("eveAccuracy", res.Stats.EveAccuracy).
		Float64("eveReceiverAgreement", res.Stats.EveReceiverAgreement).
		Msg("transmission complete")
	return res, nil
}

func (l *link) sendSymbol(i int, bit bool, intercept interceptor) (Symbol, error) {
	sym := Symbol{
		Index: i,
		Bit:   bit,
		Eve:   photon.Detection{Outcome: photon.NoClick},
	}
	pulse, basis, err := l.opts.Sender.EncodeBit(bit, l.opts.SenderBasis)
	if err != nil {
		return Symbol{}, fmt.Errorf("encoding symbol %d: %w", i, err)
	}
	sym.SenderBasis = basis
	sym.Emitted = pulse.Size()

	pulse, err = l.opts.Channel.Propagate(pulse)
	if err != nil {
		return Symbol{}, fmt.Errorf("propagating symbol %d: %w", i, err)
	}
	sym.Arrived = pulse.Size()

	if intercept != nil {
		if pulse, err = intercept(&sym, pulse); err != nil {
			return Symbol{}, err
		}
	}

	sym.Received, err = l.opts.Receiver.Detect(pulse, l.opts.ReceiverBasis)
	if err != nil {
		return Symbol{}, fmt.Errorf("detecting symbol %d: %w", i, err)
	}
	return sym, nil
}

func (r *Result) record(sym Symbol) {
	i := sym.Index
	r.Stats.Pulses++
	r.Stats.PhotonsEmitted += sym.Emitted
	r.Stats.PhotonsArrived += sym.Arrived
	r.SenderBases.Set(i, sym.SenderBasis == photon.Diagonal)
	if sym.Received.Outcome.Clicked() {
		r.Stats.Detections++
		r.Detected.Set(i, true)
		r.Received.Set(i, sym.Received.Outcome.Bit())
		r.ReceiverBases.Set(i, sym.Received.Basis == photon.Diagonal)
	}
	if sym.Eve.Outcome.Clicked() {
		r.Stats.EveDetections++
		r.EveDetected.Set(i, true)
		r.EveBits.Set(i, sym.Eve.Outcome.Bit())
		r.EveBases.Set(i, sym.Eve.Basis == photon.Diagonal)
	}
	if sym.Regenerated {
		r.Stats.Regenerated++
	}
	if sym.Forwarded {
		r.Stats.Forwarded++
	}
}

func (r *Result) score() {
	both := bitmap.And(r.Detected, r.EveDetected)
	r.Stats.ReceiverAccuracy = percent(bitmap.Agreement(r.Received, r.Source, r.Detected))
	r.Stats.EveAccuracy = percent(bitmap.Agreement(r.EveBits, r.Source, r.EveDetected))
	r.Stats.EveReceiverAgreement = percent(bitmap.Agreement(r.EveBits, r.Received, both))
	r.Stats.BasisMatchRate = percent(bitmap.Agreement(r.EveBases, r.ReceiverBases, both))
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}
