package elcs

import "math/rand"

// Runtime is the shared context struct: hyperparameters, the single PRNG,
// and the attribute schema, shared by pointer across every Classifier and
// the ClassifierSet. No Classifier owns a back-pointer to its population or
// to this Runtime — config, engine, and rng live on one struct rather than
// being embedded separately on each owner.
//
// Draw order is fixed per iteration and must not be reordered: covering
// (per attribute a spec draw, followed by a radius draw for a specified
// continuous attribute, then the continuous-phenotype radius), with a
// deletion pass after any cover that overflows N; then the prediction
// tie-break when accuracy is tracked; then in RunGA the selection draws for
// both parents, the crossover draws, the mutation draws for each offspring,
// and finally the deletion roulette draws. Changing this order changes the
// bitwise result of a seeded run.
type Runtime struct {
	Hyper  Hyperparameters
	Schema FormatData
	rng    *rand.Rand
}

// NewRuntime seeds the PRNG from Hyper.RandomSeed, or from seedFallback() if
// nil (Fit and Reboot pass the wall clock) (detail: "randomSeed(int|none)").
func NewRuntime(hyper Hyperparameters, schema FormatData, seedFallback func() int64) *Runtime {
	var seed int64
	if hyper.RandomSeed != nil {
		seed = *hyper.RandomSeed
	} else {
		seed = seedFallback()
	}
	return &Runtime{Hyper: hyper, Schema: schema, rng: rand.New(rand.NewSource(seed))}
}

func (rt *Runtime) float64() float64        { return rt.rng.Float64() }
func (rt *Runtime) intn(n int) int          { return rt.rng.Intn(n) }
func (rt *Runtime) uniform(lo, hi float64) float64 {
	return lo + rt.float64()*(hi-lo)
}
func (rt *Runtime) bernoulli(p float64) bool { return rt.float64() < p }
