package stochastic

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// A Poisson yields photon counts of 1 + k, k ~ Poisson(Mu), modelling an
// attenuated laser that always emits at least one photon.
type Poisson struct {
	dist distuv.Poisson
}

// NewPoisson returns a Poisson photon counter with mean extra photons mu.
// A non-positive mu yields exactly one photon every time.
func NewPoisson(mu float64, src rand.Source) *Poisson {
	return &Poisson{dist: distuv.Poisson{Lambda: mu, Src: src}}
}

// Mu returns the mean number of extra photons per pulse.
func (p *Poisson) Mu() float64 {
	return p.dist.Lambda
}

// Int implements IntProvider.
func (p *Poisson) Int() int {
	if p.dist.Lambda <= 0 {
		return 1
	}
	return 1 + int(p.dist.Rand())
}

// A Bernoulli yields true with a fixed probability.
type Bernoulli struct {
	dist distuv.Bernoulli
}

// NewBernoulli returns a Bernoulli decision provider which is true with
// probability p. p is clamped to [0, 1].
func NewBernoulli(p float64, src rand.Source) *Bernoulli {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return &Bernoulli{dist: distuv.Bernoulli{P: p, Src: src}}
}

// P returns the probability of a true outcome.
func (b *Bernoulli) P() float64 {
	return b.dist.P
}

// Bool implements BoolProvider.
func (b *Bernoulli) Bool() bool {
	return b.dist.Rand() == 1
}
