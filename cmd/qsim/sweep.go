package main

import (
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/alan-christopher/qsim/qsim"
	"github.com/alan-christopher/qsim/qsim/catalog"
	"github.com/alan-christopher/qsim/qsim/stochastic"
	flag "github.com/spf13/pflag"
	"gonum.org/v1/gonum/stat"
)

const sweepDevice = "sweep"

var (
	inputs = []string{"mu", "absorption", "deviation", "efficiency"}
	// TODO: pull the column list out of the Experiment type with reflection.
	columns = []string{"Scenario", "Mu", "Absorption", "Deviation", "Efficiency",
		"Trials", "Bits", "DetectionRate", "ReceiverAccuracy", "ReceiverAccuracyStdDev",
		"EveAccuracy", "EveAccuracyStdDev", "EveReceiverAgreement",
		"EveReceiverAgreementStdDev", "Regenerated", "Forwarded"}
)

// An Experiment packages together the aggregated result of transmitting under
// a single parameterization for easy formatting.
type Experiment struct {
	// Fields corresponding to experiment parameters
	Scenario   qsim.Kind
	Mu         float64
	Absorption float64
	Deviation  float64
	Efficiency float64
	Trials     int
	Bits       int

	// Fields corresponding to experiment results, averaged over trials
	DetectionRate              float64
	ReceiverAccuracy           float64
	ReceiverAccuracyStdDev     float64
	EveAccuracy                float64
	EveAccuracyStdDev          float64
	EveReceiverAgreement       float64
	EveReceiverAgreementStdDev float64
	Regenerated                float64
	Forwarded                  float64
}

// sweepConfig returns base extended with providers and devices named "sweep"
// parameterized by exp.
func sweepConfig(base catalog.Config, exp *Experiment) catalog.Config {
	cfg := base
	cfg.Providers = copyMap(base.Providers)
	cfg.Emitters = copyMap(base.Emitters)
	cfg.Channels = copyMap(base.Channels)
	cfg.Detectors = copyMap(base.Detectors)

	cfg.Providers["sweep-pulse"] = catalog.ProviderSpec{Kind: catalog.KindPoisson, Mean: exp.Mu}
	cfg.Providers["sweep-absorption"] = catalog.ProviderSpec{Kind: catalog.KindBernoulli, P: exp.Absorption}
	cfg.Providers["sweep-deviation"] = catalog.ProviderSpec{Kind: catalog.KindUniformDeviation, Width: exp.Deviation}
	cfg.Providers["sweep-efficiency"] = catalog.ProviderSpec{Kind: catalog.KindBernoulli, P: exp.Efficiency}
	cfg.Emitters[sweepDevice] = catalog.EmitterSpec{
		PulseCount:  "sweep-pulse",
		BasisChoice: "ideal-basis-choice",
		StateNoise:  "sweep-deviation",
	}
	cfg.Channels[sweepDevice] = catalog.ChannelSpec{
		Absorption: "sweep-absorption",
		StateNoise: "sweep-deviation",
	}
	cfg.Detectors[sweepDevice] = catalog.DetectorSpec{
		Efficiency:  "sweep-efficiency",
		BasisChoice: "ideal-basis-choice",
		BasisNoise:  "ideal-basis-deviation",
	}
	return cfg
}

func copyMap[V any](m map[string]V) map[string]V {
	r := make(map[string]V, len(m))
	for k, v := range m {
		r[k] = v
	}
	return r
}

// sweep runs every combination of the sweep flags, printing one CSV line per
// combination.
func sweep(r *runner, base catalog.Config) error {
	fmt.Println(header())
	tmpl := template.Must(template.New("line").Parse(lineTmpl()))
	var args [][]interface{}
	for _, inp := range inputs {
		vals := lookupInput(inp)
		if len(vals) == 0 {
			return fmt.Errorf("--%s needs at least one value", inp)
		}
		args = append(args, vals)
	}
	var firstErr error
	applyCartesian(func(args []interface{}) {
		exp := &Experiment{
			Scenario:   r.kind,
			Mu:         args[inpIndex("mu")].(float64),
			Absorption: args[inpIndex("absorption")].(float64),
			Deviation:  args[inpIndex("deviation")].(float64),
			Efficiency: args[inpIndex("efficiency")].(float64),
			Trials:     *trials,
		}
		if err := r.experiment(base, exp); err != nil {
			r.log.Error().Err(err).Interface("experiment", exp).Msg("experiment failed")
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		if err := tmpl.Execute(os.Stdout, exp); err != nil {
			r.log.Fatal().Err(err).Msg("BUG: could not fill in line template")
		}
	}, args)
	return firstErr
}

func (r *runner) experiment(base catalog.Config, exp *Experiment) error {
	var recv, eve, agree []float64
	var detections, regenerated, forwarded float64
	for trial := 0; trial < exp.Trials; trial++ {
		cfg := sweepConfig(base, exp)
		cfg.Seed = *seed + uint64(trial)
		c, err := catalog.New(cfg)
		if err != nil {
			return err
		}
		s, err := r.scenario(c, sweepDevice, sweepDevice, sweepDevice)
		if err != nil {
			return err
		}
		src, err := r.source(stochastic.NewRand(cfg.Seed))
		if err != nil {
			return err
		}
		res, err := s.Transmit(src)
		if err != nil {
			return fmt.Errorf("trial %d: %w", trial, err)
		}
		exp.Bits = src.Size()
		recv = append(recv, res.Stats.ReceiverAccuracy)
		eve = append(eve, res.Stats.EveAccuracy)
		agree = append(agree, res.Stats.EveReceiverAgreement)
		detections += float64(res.Stats.Detections) / float64(max(1, res.Stats.Pulses))
		regenerated += float64(res.Stats.Regenerated)
		forwarded += float64(res.Stats.Forwarded)
	}
	if exp.Trials == 0 {
		return nil
	}
	n := float64(exp.Trials)
	exp.DetectionRate = detections / n
	exp.Regenerated = regenerated / n
	exp.Forwarded = forwarded / n
	exp.ReceiverAccuracy, exp.ReceiverAccuracyStdDev = meanStdDev(recv)
	exp.EveAccuracy, exp.EveAccuracyStdDev = meanStdDev(eve)
	exp.EveReceiverAgreement, exp.EveReceiverAgreementStdDev = meanStdDev(agree)
	return nil
}

func meanStdDev(x []float64) (mean, std float64) {
	if len(x) < 2 {
		return stat.Mean(x, nil), 0
	}
	return stat.MeanStdDev(x, nil)
}

func inpIndex(v string) int {
	for i, inp := range inputs {
		if inp == v {
			return i
		}
	}
	return -1
}

func header() string {
	return strings.Join(columns, ", ")
}

func lineTmpl() string {
	var els []string
	for _, c := range columns {
		els = append(els, "{{."+c+"}}")
	}
	return strings.Join(els, ", ") + "\n"
}

func lookupInput(name string) []interface{} {
	var r []interface{}
	v, err := flag.CommandLine.GetFloat64Slice(name)
	if err != nil {
		panic(fmt.Sprintf("unknown type for input %s: %v", name, err))
	}
	for _, val := range v {
		r = append(r, val)
	}
	return r
}

// applyCartesian calls f once for every element of the cartesian product of
// args.
func applyCartesian(f func([]interface{}), args [][]interface{}) {
	for i := range args {
		if len(args[i]) == 1 {
			continue
		}
		l := make([][]interface{}, len(args))
		r := make([][]interface{}, len(args))
		copy(l, args)
		copy(r, args)
		l[i] = args[i][:1]
		r[i] = args[i][1:]
		applyCartesian(f, l)
		applyCartesian(f, r)
		return
	}
	x := make([]interface{}, 0, len(args))
	for _, a := range args {
		x = append(x, a[0])
	}
	f(x)
}
