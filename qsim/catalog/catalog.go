// Package catalog builds named photon devices from named stochastic providers.
// A catalog is described in YAML; every catalog also carries a set of
// built-in providers and devices modelling ideal and near-ideal hardware.
package catalog

import (
	"fmt"
	"hash/fnv"
	"io"
	"sort"

	"github.com/alan-christopher/qsim/qsim/photon"
	"github.com/alan-christopher/qsim/qsim/quantum"
	"github.com/alan-christopher/qsim/qsim/stochastic"
	"golang.org/x/exp/rand"
	"gopkg.in/yaml.v2"
)

// Provider kinds understood by a ProviderSpec.
const (
	KindConstInt            = "const-int"
	KindPoisson             = "poisson"
	KindConstBool           = "const-bool"
	KindBernoulli           = "bernoulli"
	KindIdentity            = "identity"
	KindUniformDeviation    = "uniform-deviation"
	KindIdentityBasis       = "identity-basis"
	KindUniformMisalignment = "uniform-misalignment"
)

// A ProviderSpec describes one stochastic provider. Which fields are consulted
// depends on Kind.
type ProviderSpec struct {
	Kind string `yaml:"kind"`
	// Count is the photon count of a const-int provider.
	Count int `yaml:"count"`
	// Value is the output of a const-bool provider.
	Value bool `yaml:"value"`
	// Mean is the mean of a poisson provider. Pulses hold 1 + Poisson(Mean)
	// photons.
	Mean float64 `yaml:"mean"`
	// P is the probability a bernoulli provider yields true.
	P float64 `yaml:"p"`
	// Width is the maximum angle, in radians, of a uniform deviation or
	// misalignment.
	Width float64 `yaml:"width"`
}

// An EmitterSpec names the providers driving an emitter.
type EmitterSpec struct {
	PulseCount  string `yaml:"pulseCount"`
	BasisChoice string `yaml:"basisChoice"`
	StateNoise  string `yaml:"stateNoise"`
}

// A ChannelSpec names the providers driving a channel.
type ChannelSpec struct {
	Absorption string `yaml:"absorption"`
	StateNoise string `yaml:"stateNoise"`
}

// A DetectorSpec names the providers driving a detector.
type DetectorSpec struct {
	Efficiency    string  `yaml:"efficiency"`
	BasisChoice   string  `yaml:"basisChoice"`
	BasisNoise    string  `yaml:"basisNoise"`
	DarkCountRate float64 `yaml:"darkCountRate"`
}

// A Config describes a catalog. Entries override built-ins of the same name.
type Config struct {
	// Seed derives the random source of every provider the catalog builds.
	Seed      uint64                  `yaml:"seed"`
	Providers map[string]ProviderSpec `yaml:"providers"`
	Emitters  map[string]EmitterSpec  `yaml:"emitters"`
	Channels  map[string]ChannelSpec  `yaml:"channels"`
	Detectors map[string]DetectorSpec `yaml:"detectors"`
}

// Built-in device names.
const (
	IdealEmitter       = "ideal-emitter"
	PoissonEmitter     = "poisson-emitter"
	IdealChannel       = "ideal-channel"
	AlmostIdealChannel = "almost-ideal-channel"
	IdealDetector      = "ideal-detector"
)

// Builtin returns the providers and devices present in every catalog.
func Builtin() Config {
	return Config{
		Providers: map[string]ProviderSpec{
			"ideal-pulse":                 {Kind: KindConstInt, Count: 1},
			"poisson-pulse":               {Kind: KindPoisson, Mean: 0.1},
			"ideal-basis-choice":          {Kind: KindBernoulli, P: 0.5},
			"always-rectilinear":          {Kind: KindConstBool, Value: false},
			"ideal-efficiency":            {Kind: KindConstBool, Value: true},
			"ideal-absorption":            {Kind: KindConstBool, Value: false},
			"almost-ideal-absorption":     {Kind: KindBernoulli, P: 0.1},
			"ideal-state-deviation":       {Kind: KindIdentity},
			"centiradian-state-deviation": {Kind: KindUniformDeviation, Width: stochastic.CentiRadian},
			"ideal-basis-deviation":       {Kind: KindIdentityBasis},
		},
		Emitters: map[string]EmitterSpec{
			IdealEmitter:   {PulseCount: "ideal-pulse", BasisChoice: "ideal-basis-choice", StateNoise: "ideal-state-deviation"},
			PoissonEmitter: {PulseCount: "poisson-pulse", BasisChoice: "ideal-basis-choice", StateNoise: "centiradian-state-deviation"},
		},
		Channels: map[string]ChannelSpec{
			IdealChannel:       {Absorption: "ideal-absorption", StateNoise: "ideal-state-deviation"},
			AlmostIdealChannel: {Absorption: "almost-ideal-absorption", StateNoise: "centiradian-state-deviation"},
		},
		Detectors: map[string]DetectorSpec{
			IdealDetector: {Efficiency: "ideal-efficiency", BasisChoice: "ideal-basis-choice", BasisNoise: "ideal-basis-deviation"},
		},
	}
}

// A Catalog constructs devices by name.
type Catalog struct {
	cfg Config
}

// ParseConfig parses a YAML catalog description from r. Unknown fields are
// errors.
func ParseConfig(r io.Reader) (Config, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("reading catalog: %w", err)
	}
	var cfg Config
	if err := yaml.UnmarshalStrict(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing catalog: %w", err)
	}
	return cfg, nil
}

// Load parses a YAML catalog from r and merges it over the built-ins.
func Load(r io.Reader) (*Catalog, error) {
	cfg, err := ParseConfig(r)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

// New merges cfg over the built-ins and checks that every device refers to
// providers of a suitable kind.
func New(cfg Config) (*Catalog, error) {
	merged := Builtin()
	merged.Seed = cfg.Seed
	for k, v := range cfg.Providers {
		merged.Providers[k] = v
	}
	for k, v := range cfg.Emitters {
		merged.Emitters[k] = v
	}
	for k, v := range cfg.Channels {
		merged.Channels[k] = v
	}
	for k, v := range cfg.Detectors {
		merged.Detectors[k] = v
	}
	c := &Catalog{cfg: merged}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) validate() error {
	for _, name := range sortedKeys(c.cfg.Providers) {
		if err := validateProvider(c.cfg.Providers[name]); err != nil {
			return fmt.Errorf("provider %q: %w", name, err)
		}
	}
	for _, name := range sortedKeys(c.cfg.Emitters) {
		if _, err := c.Emitter(name); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(c.cfg.Channels) {
		if _, err := c.Channel(name); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(c.cfg.Detectors) {
		if _, err := c.Detector(name); err != nil {
			return err
		}
	}
	return nil
}

func validateProvider(p ProviderSpec) error {
	switch p.Kind {
	case KindConstInt:
		if p.Count < 0 {
			return fmt.Errorf("negative count %d", p.Count)
		}
	case KindPoisson:
		if p.Mean < 0 {
			return fmt.Errorf("negative mean %f", p.Mean)
		}
	case KindBernoulli:
		if p.P < 0 || p.P > 1 {
			return fmt.Errorf("probability %f outside [0, 1]", p.P)
		}
	case KindUniformDeviation:
		if p.Width < 0 {
			return fmt.Errorf("negative width %f", p.Width)
		}
	case KindUniformMisalignment:
		if p.Width < 0 {
			return fmt.Errorf("negative width %f", p.Width)
		}
		m := stochastic.NewUniformMisalignment(p.Width, rand.NewSource(1))
		if err := m.TransformBasis(quantum.Diagonal).Validate(); err != nil {
			return err
		}
	case KindConstBool, KindIdentity, KindIdentityBasis:
	default:
		return fmt.Errorf("unknown kind %q", p.Kind)
	}
	return nil
}

// Names returns the sorted names of the catalog's emitters, channels and
// detectors.
func (c *Catalog) Names() (emitters, channels, detectors []string) {
	return sortedKeys(c.cfg.Emitters), sortedKeys(c.cfg.Channels), sortedKeys(c.cfg.Detectors)
}

// Emitter builds a fresh emitter named name.
func (c *Catalog) Emitter(name string) (*photon.Emitter, error) {
	return c.emitter(name, "emitter/"+name)
}

// EmitterAs builds a fresh emitter named name whose random sources are
// additionally keyed on role, so two parties using the same emitter model
// sample independently.
func (c *Catalog) EmitterAs(role, name string) (*photon.Emitter, error) {
	return c.emitter(name, role+"/emitter/"+name)
}

func (c *Catalog) emitter(name, scope string) (*photon.Emitter, error) {
	spec, ok := c.cfg.Emitters[name]
	if !ok {
		return nil, fmt.Errorf("unknown emitter %q", name)
	}
	pc, err := c.intProvider(scope, spec.PulseCount)
	if err != nil {
		return nil, fmt.Errorf("emitter %q pulse count: %w", name, err)
	}
	bc, err := c.boolProvider(scope, spec.BasisChoice)
	if err != nil {
		return nil, fmt.Errorf("emitter %q basis choice: %w", name, err)
	}
	sn, err := c.stateTransform(scope, spec.StateNoise)
	if err != nil {
		return nil, fmt.Errorf("emitter %q state noise: %w", name, err)
	}
	return photon.NewEmitter(photon.EmitterOpts{
		PulseCount:  pc,
		BasisChoice: bc,
		StateNoise:  sn,
	})
}

// Channel builds a fresh channel named name.
func (c *Catalog) Channel(name string) (*photon.Channel, error) {
	spec, ok := c.cfg.Channels[name]
	if !ok {
		return nil, fmt.Errorf("unknown channel %q", name)
	}
	scope := "channel/" + name
	ab, err := c.boolProvider(scope, spec.Absorption)
	if err != nil {
		return nil, fmt.Errorf("channel %q absorption: %w", name, err)
	}
	sn, err := c.stateTransform(scope, spec.StateNoise)
	if err != nil {
		return nil, fmt.Errorf("channel %q state noise: %w", name, err)
	}
	return photon.NewChannel(photon.ChannelOpts{
		Absorption: ab,
		StateNoise: sn,
	})
}

// Detector builds a fresh detector named name.
func (c *Catalog) Detector(name string) (*photon.Detector, error) {
	return c.detector(name, "detector/"+name)
}

// DetectorAs is the Detector counterpart of EmitterAs.
func (c *Catalog) DetectorAs(role, name string) (*photon.Detector, error) {
	return c.detector(name, role+"/detector/"+name)
}

func (c *Catalog) detector(name, scope string) (*photon.Detector, error) {
	spec, ok := c.cfg.Detectors[name]
	if !ok {
		return nil, fmt.Errorf("unknown detector %q", name)
	}
	ef, err := c.boolProvider(scope, spec.Efficiency)
	if err != nil {
		return nil, fmt.Errorf("detector %q efficiency: %w", name, err)
	}
	bc, err := c.boolProvider(scope, spec.BasisChoice)
	if err != nil {
		return nil, fmt.Errorf("detector %q basis choice: %w", name, err)
	}
	bn, err := c.basisTransform(scope, spec.BasisNoise)
	if err != nil {
		return nil, fmt.Errorf("detector %q basis noise: %w", name, err)
	}
	return photon.NewDetector(photon.DetectorOpts{
		Efficiency:    ef,
		BasisChoice:   bc,
		BasisNoise:    bn,
		DarkCountRate: spec.DarkCountRate,
		Rand:          rand.New(c.source(scope, "measurement")),
	})
}

func (c *Catalog) lookup(name string) (ProviderSpec, error) {
	p, ok := c.cfg.Providers[name]
	if !ok {
		return ProviderSpec{}, fmt.Errorf("unknown provider %q", name)
	}
	return p, nil
}

func (c *Catalog) intProvider(scope, name string) (stochastic.IntProvider, error) {
	p, err := c.lookup(name)
	if err != nil {
		return nil, err
	}
	switch p.Kind {
	case KindConstInt:
		return stochastic.ConstInt(p.Count), nil
	case KindPoisson:
		return stochastic.NewPoisson(p.Mean, c.source(scope, name)), nil
	}
	return nil, fmt.Errorf("provider %q of kind %q does not yield photon counts", name, p.Kind)
}

func (c *Catalog) boolProvider(scope, name string) (stochastic.BoolProvider, error) {
	p, err := c.lookup(name)
	if err != nil {
		return nil, err
	}
	switch p.Kind {
	case KindConstBool:
		return stochastic.ConstBool(p.Value), nil
	case KindBernoulli:
		return stochastic.NewBernoulli(p.P, c.source(scope, name)), nil
	}
	return nil, fmt.Errorf("provider %q of kind %q does not yield booleans", name, p.Kind)
}

func (c *Catalog) stateTransform(scope, name string) (stochastic.StateTransform, error) {
	p, err := c.lookup(name)
	if err != nil {
		return nil, err
	}
	switch p.Kind {
	case KindIdentity:
		return stochastic.IdentityState(), nil
	case KindUniformDeviation:
		return stochastic.NewUniformDeviation(p.Width, c.source(scope, name)), nil
	}
	return nil, fmt.Errorf("provider %q of kind %q does not transform states", name, p.Kind)
}

func (c *Catalog) basisTransform(scope, name string) (stochastic.BasisTransform, error) {
	p, err := c.lookup(name)
	if err != nil {
		return nil, err
	}
	switch p.Kind {
	case KindIdentityBasis:
		return stochastic.IdentityBasis(), nil
	case KindUniformMisalignment:
		return stochastic.NewUniformMisalignment(p.Width, c.source(scope, name)), nil
	}
	return nil, fmt.Errorf("provider %q of kind %q does not transform bases", name, p.Kind)
}

// source returns a random source seeded from the catalog seed, the device
// scope and the provider name.
func (c *Catalog) source(scope, name string) rand.Source {
	h := fnv.New64a()
	io.WriteString(h, scope)
	h.Write([]byte{0})
	io.WriteString(h, name)
	return stochastic.NewSource(c.cfg.Seed ^ h.Sum64())
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
