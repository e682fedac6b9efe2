package elcs

import "sort"

// Prediction is the aggregated vote over a match set.
type Prediction struct {
	HasMatch    bool
	Discrete    *float64
	Continuous  *float64
	Probabilities map[float64]float64 // discrete only
}

// Predict aggregates cs.MatchSet into a Prediction. For discrete phenotypes,
// each matching classifier's (fitness*numerosity) is accumulated as a vote
// for its label; the label with the most votes wins, with a uniform random
// tie-break, and probabilities are the normalized vote vector (uniform if
// all votes are zero). For continuous phenotypes, the prediction is the
// fitness-weighted mean of each matching classifier's phenotype midpoint.
// HasMatch is uniformly len(MatchSet) > 0 for both discrete and continuous
// phenotypes.
func (cs *ClassifierSet) Predict(rt *Runtime) Prediction {
	if len(cs.MatchSet) == 0 {
		return Prediction{HasMatch: false}
	}

	if rt.Schema.Phenotype.Kind == Discrete {
		return cs.predictDiscrete(rt)
	}
	return cs.predictContinuous()
}

func (cs *ClassifierSet) predictDiscrete(rt *Runtime) Prediction {
	votes := map[float64]float64{}
	var total float64
	for _, idx := range cs.MatchSet {
		c := cs.PopSet[idx]
		weight := c.Stats.Fitness * float64(c.Stats.Numerosity)
		votes[*c.Phenotype.Disc] += weight
		total += weight
	}

	best, bestVote := bestLabel(votes, rt)

	probs := map[float64]float64{}
	if total > 0 {
		for label, v := range votes {
			probs[label] = v / total
		}
	} else {
		for label := range votes {
			probs[label] = 1.0 / float64(len(votes))
		}
	}
	_ = bestVote
	label := best
	return Prediction{HasMatch: true, Discrete: &label, Probabilities: probs}
}

// bestLabel breaks ties by drawing a single RNG value; to keep that draw
// deterministic for a given seed regardless of Go's randomized map iteration
// order, candidate labels are sorted before the tie-break draw.
func bestLabel(votes map[float64]float64, rt *Runtime) (float64, float64) {
	labels := make([]float64, 0, len(votes))
	for label := range votes {
		labels = append(labels, label)
	}
	sort.Float64s(labels)

	var tied []float64
	bestVote := -1.0
	for _, label := range labels {
		v := votes[label]
		switch {
		case v > bestVote:
			bestVote = v
			tied = []float64{label}
		case v == bestVote:
			tied = append(tied, label)
		}
	}
	if len(tied) == 1 {
		return tied[0], bestVote
	}
	return tied[rt.intn(len(tied))], bestVote
}

func (cs *ClassifierSet) predictContinuous() Prediction {
	var weighted, totalWeight float64
	for _, idx := range cs.MatchSet {
		c := cs.PopSet[idx]
		mid := (c.Phenotype.Cont.Lo + c.Phenotype.Cont.Hi) / 2
		weighted += mid * c.Stats.Fitness
		totalWeight += c.Stats.Fitness
	}
	var mean float64
	if totalWeight > 0 {
		mean = weighted / totalWeight
	}
	return Prediction{HasMatch: true, Continuous: &mean}
}
