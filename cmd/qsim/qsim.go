// qsim transmits a string of bits over a simulated quantum link and reports
// what the receiver, and optionally an eavesdropper, observed. When any of the
// sweep flags are given it instead runs every combination of their values and
// outputs a CSV of aggregate statistics for each combination.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alan-christopher/qsim/qsim"
	"github.com/alan-christopher/qsim/qsim/bitmap"
	"github.com/alan-christopher/qsim/qsim/catalog"
	"github.com/alan-christopher/qsim/qsim/photon"
	"github.com/alan-christopher/qsim/qsim/stochastic"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
	"golang.org/x/exp/rand"
)

var (
	scenario   = flag.String("scenario", "direct", "The scenario to run: direct or pns.")
	bits       = flag.String("bits", "", "The bits to transmit, e.g. 1010. Overrides --random-bits.")
	randomBits = flag.Int("random-bits", 1000, "The number of random bits to transmit when --bits is unset.")
	config     = flag.String("config", "", "A YAML device catalog to merge over the built-in one.")

	emitter     = flag.String("emitter", catalog.IdealEmitter, "The sender's emitter.")
	channel     = flag.String("channel", catalog.IdealChannel, "The channel between sender and receiver.")
	detector    = flag.String("detector", catalog.IdealDetector, "The receiver's detector.")
	eveEmitter  = flag.String("eve-emitter", catalog.IdealEmitter, "The emitter Eve regenerates pulses with.")
	eveDetector = flag.String("eve-detector", catalog.IdealDetector, "The detector Eve measures split photons with.")

	senderBasis   = flag.String("sender-basis", "random", "The sender's basis: random, rectilinear or diagonal.")
	receiverBasis = flag.String("receiver-basis", "random", "The receiver's basis: random, rectilinear or diagonal.")
	eveBasis      = flag.String("eve-basis", "random", "Eve's basis: random, rectilinear or diagonal.")

	seed = flag.Uint64("seed", 1, "Seeds every random source.")

	mu         = flag.Float64Slice("mu", []float64{0}, "Sweep: mean extra photons per pulse.")
	absorption = flag.Float64Slice("absorption", []float64{0}, "Sweep: probability a photon is absorbed in the channel.")
	deviation  = flag.Float64Slice("deviation", []float64{0}, "Sweep: maximum state deviation in radians.")
	efficiency = flag.Float64Slice("efficiency", []float64{1}, "Sweep: probability the receiver's detector fires.")
	trials     = flag.Int("trials", 1, "Sweep: transmissions per combination.")

	transcript = flag.String("transcript", "", "Write a transcript of a single run to this file.")
	logLevel   = flag.String("log-level", "info", "One of debug, info, warn or error.")
	pretty     = flag.Bool("pretty", false, "Log in human readable form rather than JSON.")
)

// A runner packages together the settings shared by single runs and sweeps.
type runner struct {
	kind                  qsim.Kind
	sender, receiver, eve photon.Choice
	log                   zerolog.Logger
	transcript            io.Writer
}

func main() {
	flag.Parse()
	log := newLogger(*logLevel, *pretty)
	if err := run(log); err != nil {
		log.Fatal().Err(err).Msg("qsim failed")
	}
}

func run(log zerolog.Logger) error {
	r := &runner{log: log}
	var err error
	if r.kind, err = qsim.ParseKind(*scenario); err != nil {
		return err
	}
	if r.sender, err = photon.ParseChoice(*senderBasis); err != nil {
		return err
	}
	if r.receiver, err = photon.ParseChoice(*receiverBasis); err != nil {
		return err
	}
	if r.eve, err = photon.ParseChoice(*eveBasis); err != nil {
		return err
	}

	var base catalog.Config
	if *config != "" {
		f, err := os.Open(*config)
		if err != nil {
			return err
		}
		base, err = catalog.ParseConfig(f)
		f.Close()
		if err != nil {
			return err
		}
	}

	if sweeping() {
		return sweep(r, base)
	}
	base.Seed = *seed
	c, err := catalog.New(base)
	if err != nil {
		return err
	}
	if *transcript != "" {
		f, err := os.Create(*transcript)
		if err != nil {
			return err
		}
		defer f.Close()
		r.transcript = f
	}
	return r.single(c)
}

func sweeping() bool {
	for _, inp := range append(inputs, "trials") {
		if flag.CommandLine.Changed(inp) {
			return true
		}
	}
	return false
}

// scenario builds the configured scenario out of devices from c. Eve's devices
// are only built for a photon number splitting attack.
func (r *runner) scenario(c *catalog.Catalog, emitterName, channelName, detectorName string) (qsim.Scenario, error) {
	e, err := c.EmitterAs("sender", emitterName)
	if err != nil {
		return nil, err
	}
	ch, err := c.Channel(channelName)
	if err != nil {
		return nil, err
	}
	d, err := c.DetectorAs("receiver", detectorName)
	if err != nil {
		return nil, err
	}
	opts := qsim.Opts{
		Sender:        e,
		Channel:       ch,
		Receiver:      d,
		SenderBasis:   r.sender,
		ReceiverBasis: r.receiver,
		Log:           &r.log,
		Transcript:    r.transcript,
	}
	if r.kind == qsim.PhotonNumberSplitting {
		ee, err := c.EmitterAs("eve", *eveEmitter)
		if err != nil {
			return nil, err
		}
		ed, err := c.DetectorAs("eve", *eveDetector)
		if err != nil {
			return nil, err
		}
		opts.Eve = &qsim.Eavesdropper{Receiver: ed, Sender: ee, Basis: r.eve}
	}
	return qsim.NewScenario(r.kind, opts)
}

// source returns the bits to transmit.
func (r *runner) source(rnd *rand.Rand) (bitmap.Dense, error) {
	if *bits != "" {
		return bitmap.FromString(*bits)
	}
	if *randomBits < 0 {
		return bitmap.Dense{}, fmt.Errorf("negative --random-bits: %d", *randomBits)
	}
	return bitmap.Random(rnd, *randomBits), nil
}

func (r *runner) single(c *catalog.Catalog) error {
	s, err := r.scenario(c, *emitter, *channel, *detector)
	if err != nil {
		return err
	}
	src, err := r.source(stochastic.NewRand(*seed))
	if err != nil {
		return err
	}
	res, err := s.Transmit(src)
	if err != nil {
		return err
	}

	fmt.Printf("source:   %s\n", res.Source)
	fmt.Printf("received: %s\n", res.ReceivedString())
	if r.kind == qsim.PhotonNumberSplitting {
		fmt.Printf("eve:      %s\n", res.EveString())
	}
	st := res.Stats
	fmt.Printf("receiver accuracy:      %6.2f%%\n", st.ReceiverAccuracy)
	if r.kind == qsim.PhotonNumberSplitting {
		fmt.Printf("eve accuracy:           %6.2f%%\n", st.EveAccuracy)
		fmt.Printf("eve/receiver agreement: %6.2f%%\n", st.EveReceiverAgreement)
	}
	r.log.Info().
		Str("run", res.RunID.String()).
		Stringer("scenario", res.Kind).
		Int("pulses", st.Pulses).
		Int("photonsEmitted", st.PhotonsEmitted).
		Int("photonsArrived", st.PhotonsArrived).
		Int("detections", st.Detections).
		Int("eveDetections", st.EveDetections).
		Int("regenerated", st.Regenerated).
		Int("forwarded", st.Forwarded).
		Float64("basisMatchRate", st.BasisMatchRate).
		Msg("run complete")
	return nil
}
