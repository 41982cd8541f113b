package qsim

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/alan-christopher/qsim/qsim/bitmap"
	"github.com/alan-christopher/qsim/qsim/photon"
	"github.com/alan-christopher/qsim/qsim/quantum"
	"github.com/alan-christopher/qsim/qsim/stochastic"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type devices struct {
	photons    stochastic.IntProvider
	absorption stochastic.BoolProvider
	basis      stochastic.BoolProvider
	seed       uint64
}

func idealDevices() devices {
	return devices{
		photons:    stochastic.ConstInt(1),
		absorption: stochastic.ConstBool(false),
		basis:      stochastic.ConstBool(false),
		seed:       1,
	}
}

func newEmitter(t *testing.T, d devices) *photon.Emitter {
	t.Helper()
	e, err := photon.NewEmitter(photon.EmitterOpts{
		PulseCount:  d.photons,
		BasisChoice: d.basis,
		StateNoise:  stochastic.IdentityState(),
	})
	require.NoError(t, err)
	return e
}

func newChannel(t *testing.T, d devices) *photon.Channel {
	t.Helper()
	c, err := photon.NewChannel(photon.ChannelOpts{
		Absorption: d.absorption,
		StateNoise: stochastic.IdentityState(),
	})
	require.NoError(t, err)
	return c
}

func newDetector(t *testing.T, d devices, seed uint64) *photon.Detector {
	t.Helper()
	det, err := photon.NewDetector(photon.DetectorOpts{
		Efficiency:  stochastic.ConstBool(true),
		BasisChoice: d.basis,
		BasisNoise:  stochastic.IdentityBasis(),
		Rand:        stochastic.NewRand(seed),
	})
	require.NoError(t, err)
	return det
}

func directOpts(t *testing.T, d devices) Opts {
	return Opts{
		Sender:        newEmitter(t, d),
		Channel:       newChannel(t, d),
		Receiver:      newDetector(t, d, d.seed),
		SenderBasis:   photon.Rectilinear,
		ReceiverBasis: photon.Rectilinear,
	}
}

func withEve(t *testing.T, opts Opts, d devices, basis photon.Choice) Opts {
	opts.Eve = &Eavesdropper{
		Receiver: newDetector(t, d, d.seed+100),
		Sender:   newEmitter(t, devices{photons: stochastic.ConstInt(1), basis: d.basis}),
		Basis:    basis,
	}
	return opts
}

func mustBits(t *testing.T, s string) bitmap.Dense {
	t.Helper()
	d, err := bitmap.FromString(s)
	require.NoError(t, err)
	return d
}

func TestDirectIdeal(t *testing.T) {
	s, err := NewScenario(Direct, directOpts(t, idealDevices()))
	require.NoError(t, err)

	res, err := s.Transmit(mustBits(t, "1010"))
	require.NoError(t, err)
	assert.Equal(t, "1010", res.ReceivedString())
	assert.Equal(t, "----", res.EveString())
	assert.Equal(t, 100.0, res.Stats.ReceiverAccuracy)
	assert.Equal(t, 4, res.Stats.Pulses)
	assert.Equal(t, 4, res.Stats.Detections)
	assert.Equal(t, 4, res.Stats.PhotonsEmitted)
	assert.Equal(t, 4, res.Stats.PhotonsArrived)
	assert.Zero(t, res.Stats.EveDetections)
	assert.Zero(t, res.Stats.EveAccuracy)
	assert.Equal(t, Direct, res.Kind)
}

func TestDirectDiagonal(t *testing.T) {
	opts := directOpts(t, idealDevices())
	opts.SenderBasis = photon.Diagonal
	opts.ReceiverBasis = photon.Diagonal
	s, err := NewScenario(Direct, opts)
	require.NoError(t, err)

	res, err := s.Transmit(mustBits(t, "0110 1001"))
	require.NoError(t, err)
	assert.Equal(t, "01101001", res.ReceivedString())
	assert.Equal(t, "11111111", res.SenderBases.String())
	assert.Equal(t, "11111111", res.ReceiverBases.String())
}

func TestDirectLossyChannel(t *testing.T) {
	d := idealDevices()
	d.absorption = stochastic.CycleBool(false, true)
	s, err := NewScenario(Direct, directOpts(t, d))
	require.NoError(t, err)

	res, err := s.Transmit(mustBits(t, "1111"))
	require.NoError(t, err)
	assert.Equal(t, "1-1-", res.ReceivedString())
	assert.Equal(t, 2, res.Stats.Detections)
	assert.Equal(t, 2, res.Stats.PhotonsArrived)
	assert.Equal(t, 100.0, res.Stats.ReceiverAccuracy)
}

func TestDirectEmptyInput(t *testing.T) {
	s, err := NewScenario(Direct, directOpts(t, idealDevices()))
	require.NoError(t, err)

	res, err := s.Transmit(bitmap.Empty())
	require.NoError(t, err)
	assert.Equal(t, "", res.ReceivedString())
	assert.Zero(t, res.Stats.ReceiverAccuracy)
	assert.Zero(t, res.Stats.Pulses)
}

func TestPNSAlignedSinglePhotons(t *testing.T) {
	d := idealDevices()
	s, err := NewScenario(PhotonNumberSplitting, withEve(t, directOpts(t, d), d, photon.Rectilinear))
	require.NoError(t, err)

	res, err := s.Transmit(mustBits(t, "1100 1010"))
	require.NoError(t, err)
	assert.Equal(t, "11001010", res.ReceivedString())
	assert.Equal(t, "11001010", res.EveString())
	assert.Equal(t, 100.0, res.Stats.ReceiverAccuracy)
	assert.Equal(t, 100.0, res.Stats.EveAccuracy)
	assert.Equal(t, 100.0, res.Stats.EveReceiverAgreement)
	assert.Equal(t, 100.0, res.Stats.BasisMatchRate)
	assert.Equal(t, 8, res.Stats.Regenerated)
	assert.Zero(t, res.Stats.Forwarded)
}

func TestPNSForwardsMultiPhotonPulses(t *testing.T) {
	d := idealDevices()
	d.photons = stochastic.ConstInt(3)
	s, err := NewScenario(PhotonNumberSplitting, withEve(t, directOpts(t, d), d, photon.Rectilinear))
	require.NoError(t, err)

	res, err := s.Transmit(mustBits(t, "0110"))
	require.NoError(t, err)
	assert.Equal(t, "0110", res.ReceivedString())
	assert.Equal(t, "0110", res.EveString())
	assert.Equal(t, 4, res.Stats.Forwarded)
	assert.Zero(t, res.Stats.Regenerated)
	assert.Equal(t, 12, res.Stats.PhotonsEmitted)
}

func TestPNSEmptyPulses(t *testing.T) {
	d := idealDevices()
	d.absorption = stochastic.ConstBool(true)
	s, err := NewScenario(PhotonNumberSplitting, withEve(t, directOpts(t, d), d, photon.Rectilinear))
	require.NoError(t, err)

	res, err := s.Transmit(mustBits(t, "101"))
	require.NoError(t, err)
	assert.Equal(t, "---", res.ReceivedString())
	assert.Equal(t, "---", res.EveString())
	assert.Zero(t, res.Stats.Regenerated)
	assert.Zero(t, res.Stats.EveReceiverAgreement)
}

func TestPNSRandomBases(t *testing.T) {
	const n = 4000
	d := idealDevices()
	d.basis = stochastic.NewBernoulli(0.5, stochastic.NewSource(7))
	opts := withEve(t, directOpts(t, d), d, photon.Random)
	opts.SenderBasis = photon.Random
	opts.ReceiverBasis = photon.Random
	s, err := NewScenario(PhotonNumberSplitting, opts)
	require.NoError(t, err)

	res, err := s.Transmit(bitmap.Random(stochastic.NewRand(11), n))
	require.NoError(t, err)
	assert.Equal(t, n, res.Stats.Detections)
	assert.Equal(t, n, res.Stats.Regenerated)
	assert.InDelta(t, 50, res.Stats.BasisMatchRate, 3)
	assert.InDelta(t, 75, res.Stats.EveReceiverAgreement, 3)
	assert.InDelta(t, 50+res.Stats.BasisMatchRate/2, res.Stats.EveReceiverAgreement, 3)
	assert.InDelta(t, 75, res.Stats.EveAccuracy, 3)
}

func TestTransmitLogsSymbols(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)
	opts := directOpts(t, idealDevices())
	opts.Log = &log
	s, err := NewScenario(Direct, opts)
	require.NoError(t, err)

	_, err = s.Transmit(mustBits(t, "101"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], `"message":"symbol transmitted"`)
	assert.Contains(t, lines[0], `"scenario":"direct"`)
	assert.Contains(t, lines[3], `"message":"transmission complete"`)
}

func TestTransmitWritesTranscript(t *testing.T) {
	var buf bytes.Buffer
	d := idealDevices()
	opts := withEve(t, directOpts(t, d), d, photon.Rectilinear)
	opts.Transcript = &buf
	s, err := NewScenario(PhotonNumberSplitting, opts)
	require.NoError(t, err)

	res, err := s.Transmit(mustBits(t, "10"))
	require.NoError(t, err)

	rd := NewTranscriptReader(&buf)
	rec, err := rd.Next()
	require.NoError(t, err)
	require.NotNil(t, rec.Header)
	assert.Equal(t, res.RunID, rec.Header.RunID)
	assert.Equal(t, PhotonNumberSplitting, rec.Header.Kind)
	assert.Equal(t, 2, rec.Header.Symbols)
	for i, bit := range []bool{true, false} {
		rec, err := rd.Next()
		require.NoError(t, err)
		require.NotNil(t, rec.Symbol)
		assert.Equal(t, i, rec.Symbol.Index)
		assert.Equal(t, bit, rec.Symbol.Bit)
		assert.True(t, rec.Symbol.Regenerated)
		assert.Equal(t, photon.OutcomeOf(bit), rec.Symbol.Received.Outcome)
	}
	_, err = rd.Next()
	assert.True(t, errors.Is(err, io.EOF))
}

type failingSender struct{}

func (failingSender) EncodeBit(bool, photon.Choice) (*quantum.Pulse, photon.Choice, error) {
	return nil, photon.Random, errors.New("laser on fire")
}

func TestNewScenarioValidation(t *testing.T) {
	d := idealDevices()
	full := withEve(t, directOpts(t, d), d, photon.Rectilinear)
	tcs := []struct {
		name string
		kind Kind
		edit func(o *Opts)
	}{
		{"no sender", Direct, func(o *Opts) { o.Sender = nil }},
		{"no channel", Direct, func(o *Opts) { o.Channel = nil }},
		{"no receiver", Direct, func(o *Opts) { o.Receiver = nil }},
		{"no eve", PhotonNumberSplitting, func(o *Opts) { o.Eve = nil }},
		{"eve without sender", PhotonNumberSplitting, func(o *Opts) { o.Eve = &Eavesdropper{Receiver: o.Eve.Receiver} }},
		{"unknown kind", Kind(42), func(o *Opts) {}},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			opts := full
			tc.edit(&opts)
			_, err := NewScenario(tc.kind, opts)
			assert.Error(t, err)
		})
	}
}

func TestTransmitPropagatesDeviceErrors(t *testing.T) {
	opts := directOpts(t, idealDevices())
	opts.Sender = failingSender{}
	s, err := NewScenario(Direct, opts)
	require.NoError(t, err)
	_, err = s.Transmit(mustBits(t, "1"))
	assert.ErrorContains(t, err, "laser on fire")
}

func TestParseKind(t *testing.T) {
	tcs := []struct {
		in   string
		want Kind
		eErr bool
	}{
		{"direct", Direct, false},
		{"PNS", PhotonNumberSplitting, false},
		{"photon-number-splitting", PhotonNumberSplitting, false},
		{"intercept-resend", Direct, true},
	}
	for _, tc := range tcs {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseKind(tc.in)
			if tc.eErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			again, err := ParseKind(got.String())
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestFormatOutcomes(t *testing.T) {
	got := FormatOutcomes(mustBits(t, "1010"), mustBits(t, "1101"))
	assert.Equal(t, "10-0", got)
}
