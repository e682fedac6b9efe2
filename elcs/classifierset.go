package elcs

import "math"

// ClassifierSet is the rule population plus the transient match/correct set
// views over it: an index-ordered slice population, rather than a
// map-keyed async one, driven synchronously once per training instance by
// TrainLoop.
type ClassifierSet struct {
	PopSet        []*Classifier
	MicroPopSize  int
	MatchSet      []int
	CorrectSet    []int
	coveringCount int
}

// NewClassifierSet returns an empty population.
func NewClassifierSet() *ClassifierSet {
	return &ClassifierSet{}
}

// CoveringCount returns how many times MakeMatchSet has had to invent a
// covering classifier so far, cumulative across the run. A value that grows
// roughly linearly with iteration count signals the population never
// settles into stable niches for the data, usually because N is too small
// or PSpec is biased away from the attributes that matter.
func (cs *ClassifierSet) CoveringCount() int { return cs.coveringCount }

// MakeMatchSet builds cs.MatchSet from scratch against (x, missing),
// covering as needed. For discrete phenotypes, covering triggers if no
// matching classifier advocates y; for continuous phenotypes, covering
// triggers if the match set is empty.
func (cs *ClassifierSet) MakeMatchSet(x []float64, missing []bool, y float64, iteration int, rt *Runtime) {
	cs.MatchSet = cs.MatchSet[:0]
	for i, c := range cs.PopSet {
		if c.Match(x, missing, rt) {
			cs.MatchSet = append(cs.MatchSet, i)
		}
	}

	for cs.needsCovering(x, y, rt) {
		aveMatchSetSize := float64(len(cs.MatchSet))
		covered := initializeByCovering(x, missing, y, iteration, aveMatchSetSize, rt)
		idx := cs.addClassifierToPopulation(covered, true)
		cs.MatchSet = append(cs.MatchSet, idx)
		cs.coveringCount++
		if cs.MicroPopSize > rt.Hyper.N {
			cs.Deletion(iteration, rt)
		}
	}
}

// MakeEvalMatchSet is MakeMatchSet without the covering loop, used for
// inference: predict/predict_proba never grow the population.
func (cs *ClassifierSet) MakeEvalMatchSet(x []float64, missing []bool, rt *Runtime) {
	cs.MatchSet = cs.MatchSet[:0]
	for i, c := range cs.PopSet {
		if c.Match(x, missing, rt) {
			cs.MatchSet = append(cs.MatchSet, i)
		}
	}
}

func (cs *ClassifierSet) needsCovering(x []float64, y float64, rt *Runtime) bool {
	if len(cs.MatchSet) == 0 {
		return true
	}
	if rt.Schema.Phenotype.Kind == Continuous {
		return false
	}
	for _, idx := range cs.MatchSet {
		ph := cs.PopSet[idx].Phenotype
		if ph.Disc != nil && *ph.Disc == y {
			return false
		}
	}
	return true
}

// addClassifierToPopulation inserts c, folding it into an existing
// structurally-equal macro-classifier (numerosity++) unless covering is
// true, in which case the just-created classifier is always appended
// (detail: "skip equivalence check if covering=true"). Returns the
// PopSet index of the (possibly pre-existing) classifier.
func (cs *ClassifierSet) addClassifierToPopulation(c *Classifier, covering bool) int {
	if !covering {
		key := c.dedupKey()
		for i, existing := range cs.PopSet {
			if existing.dedupKey() == key {
				existing.Stats.Numerosity++
				cs.MicroPopSize++
				return i
			}
		}
	}
	cs.PopSet = append(cs.PopSet, c)
	cs.MicroPopSize++
	return len(cs.PopSet) - 1
}

// MakeCorrectSet builds cs.CorrectSet as the subset of cs.MatchSet whose
// phenotype matches y.
func (cs *ClassifierSet) MakeCorrectSet(y float64) {
	cs.CorrectSet = cs.CorrectSet[:0]
	for _, idx := range cs.MatchSet {
		ph := cs.PopSet[idx].Phenotype
		if ph.Disc != nil {
			if *ph.Disc == y {
				cs.CorrectSet = append(cs.CorrectSet, idx)
			}
		} else if ph.Cont.contains(y) {
			cs.CorrectSet = append(cs.CorrectSet, idx)
		}
	}
}

func contains(set []int, v int) bool {
	for _, e := range set {
		if e == v {
			return true
		}
	}
	return false
}

// UpdateSets applies the per-match-set-member bookkeeping update:
// matchCount/correctCount increments, EMA-updated aveMatchSetSize gated by
// experience, accuracy recompute, and EMA-updated fitness toward
// accuracy^Nu.
func (cs *ClassifierSet) UpdateSets(rt *Runtime) {
	setSize := float64(len(cs.MatchSet))
	for _, idx := range cs.MatchSet {
		c := cs.PopSet[idx]
		c.Stats.MatchCount++
		if c.Stats.experience() > int(1/rt.Hyper.Beta) {
			c.Stats.AveMatchSetSize += rt.Hyper.Beta * (setSize - c.Stats.AveMatchSetSize)
		} else {
			n := float64(c.Stats.MatchCount)
			c.Stats.AveMatchSetSize = (c.Stats.AveMatchSetSize*(n-1) + setSize) / n
		}
		if contains(cs.CorrectSet, idx) {
			c.Stats.CorrectCount++
		}
		c.Stats.Accuracy = float64(c.Stats.CorrectCount) / float64(c.Stats.MatchCount)

		target := math.Pow(c.Stats.Accuracy, rt.Hyper.Nu)
		if c.Stats.experience() > int(1/rt.Hyper.Beta) {
			c.Stats.Fitness += rt.Hyper.Beta * (target - c.Stats.Fitness)
		} else {
			n := float64(c.Stats.MatchCount)
			c.Stats.Fitness = (c.Stats.Fitness*(n-1) + target) / n
		}
	}
}

// DoCorrectSetSubsumption finds the most general subsumption-capable
// classifier in the correct set and absorbs every classifier it subsumes
// (numerosity transferred, subsumed entries removed from PopSet and both
// transient sets).
func (cs *ClassifierSet) DoCorrectSetSubsumption(rt *Runtime) {
	if len(cs.CorrectSet) == 0 {
		return
	}
	var subsumerIdx = -1
	for _, idx := range cs.CorrectSet {
		c := cs.PopSet[idx]
		if float64(c.Stats.experience()) <= rt.Hyper.ThetaSub || c.Stats.Accuracy <= rt.Hyper.AccSub {
			continue
		}
		if subsumerIdx == -1 || len(c.SpecifiedAttList) < len(cs.PopSet[subsumerIdx].SpecifiedAttList) {
			subsumerIdx = idx
		}
	}
	if subsumerIdx == -1 {
		return
	}
	subsumer := cs.PopSet[subsumerIdx]

	toRemove := map[int]bool{}
	for _, idx := range cs.CorrectSet {
		if idx == subsumerIdx {
			continue
		}
		other := cs.PopSet[idx]
		if isMoreGeneral(subsumer, other) && phenotypeCompatible(subsumer.Phenotype, other.Phenotype) {
			subsumer.Stats.Numerosity += other.Stats.Numerosity
			// The numerosity now lives on the subsumer, so zero it here to
			// keep removeIndices from also subtracting it from MicroPopSize.
			other.Stats.Numerosity = 0
			toRemove[idx] = true
		}
	}
	if len(toRemove) > 0 {
		cs.removeIndices(toRemove)
	}
}

// removeIndices deletes the PopSet entries keyed by original index in
// toRemove, subtracting their numerosity from MicroPopSize and renumbering
// MatchSet/CorrectSet references to match the shrunk PopSet. This keeps the index-based transient sets valid
// in the same step a deletion occurs.
func (cs *ClassifierSet) removeIndices(toRemove map[int]bool) {
	remap := make([]int, len(cs.PopSet))
	newPop := make([]*Classifier, 0, len(cs.PopSet)-len(toRemove))
	for i, c := range cs.PopSet {
		if toRemove[i] {
			cs.MicroPopSize -= c.Stats.Numerosity
			remap[i] = -1
			continue
		}
		remap[i] = len(newPop)
		newPop = append(newPop, c)
	}
	cs.PopSet = newPop
	cs.MatchSet = remapIndices(cs.MatchSet, remap)
	cs.CorrectSet = remapIndices(cs.CorrectSet, remap)
}

func remapIndices(set []int, remap []int) []int {
	out := set[:0]
	for _, idx := range set {
		if r := remap[idx]; r != -1 {
			out = append(out, r)
		}
	}
	return out
}

// RunGA skips if the correct set is empty or not
// yet due (numerosity-weighted average time since last GA <= ThetaGA); else
// select two parents, optionally crossover, always mutate, optionally
// GA-subsume, else insert, then run a deletion pass.
func (cs *ClassifierSet) RunGA(iteration int, x []float64, missing []bool, y float64, rt *Runtime) {
	if len(cs.CorrectSet) == 0 {
		return
	}
	var numerositySum, weightedAge float64
	for _, idx := range cs.CorrectSet {
		c := cs.PopSet[idx]
		n := float64(c.Stats.Numerosity)
		numerositySum += n
		weightedAge += n * float64(iteration-c.Stats.TimeStampGA)
	}
	if numerositySum == 0 || weightedAge/numerositySum <= rt.Hyper.ThetaGA {
		return
	}

	for _, idx := range cs.CorrectSet {
		cs.PopSet[idx].Stats.TimeStampGA = iteration
	}

	p1 := cs.selectParent(rt)
	p2 := cs.selectParent(rt)

	off1 := initializeByCopy(p1, iteration, rt)
	off2 := initializeByCopy(p2, iteration, rt)

	if p1 != p2 && rt.bernoulli(rt.Hyper.Chi) {
		uniformCrossover(off1, off2, rt)
	}
	mutate(off1, x, missing, y, rt)
	mutate(off2, x, missing, y, rt)

	cs.insertOffspring(off1, p1, p2, iteration, rt)
	cs.insertOffspring(off2, p1, p2, iteration, rt)

	if cs.MicroPopSize > rt.Hyper.N {
		cs.Deletion(iteration, rt)
	}
}

func (cs *ClassifierSet) insertOffspring(off, p1, p2 *Classifier, iteration int, rt *Runtime) {
	if rt.Hyper.DoGASubsumption {
		if subsumes(p1, off, rt) {
			p1.Stats.Numerosity++
			cs.MicroPopSize++
			return
		}
		if subsumes(p2, off, rt) {
			p2.Stats.Numerosity++
			cs.MicroPopSize++
			return
		}
	}
	idx := cs.addClassifierToPopulation(off, false)
	if idx == len(cs.PopSet)-1 && cs.PopSet[idx] == off {
		cs.MatchSet = append(cs.MatchSet, idx)
		cs.CorrectSet = append(cs.CorrectSet, idx)
	}
}

// selectParent dispatches to tournament or roulette selection over
// cs.CorrectSet, per rt.Hyper.SelectionMethod.
func (cs *ClassifierSet) selectParent(rt *Runtime) *Classifier {
	if rt.Hyper.SelectionMethod == SelectionRoulette {
		return cs.selectRoulette(rt)
	}
	return cs.selectTournament(rt)
}

// selectTournament samples ceil(ThetaSel * Σnumerosity) micro-classifiers
// (with replacement, weighted by numerosity) from the correct set and
// returns the one with maximum fitness.
func (cs *ClassifierSet) selectTournament(rt *Runtime) *Classifier {
	var total int
	for _, idx := range cs.CorrectSet {
		total += cs.PopSet[idx].Stats.Numerosity
	}
	sampleSize := int(math.Ceil(rt.Hyper.ThetaSel * float64(total)))
	if sampleSize < 1 {
		sampleSize = 1
	}

	var best *Classifier
	for i := 0; i < sampleSize; i++ {
		cand := cs.pickWeightedByNumerosity(rt)
		if best == nil || cand.Stats.Fitness > best.Stats.Fitness {
			best = cand
		}
	}
	return best
}

func (cs *ClassifierSet) pickWeightedByNumerosity(rt *Runtime) *Classifier {
	var total int
	for _, idx := range cs.CorrectSet {
		total += cs.PopSet[idx].Stats.Numerosity
	}
	r := rt.intn(total)
	for _, idx := range cs.CorrectSet {
		c := cs.PopSet[idx]
		r -= c.Stats.Numerosity
		if r < 0 {
			return c
		}
	}
	return cs.PopSet[cs.CorrectSet[len(cs.CorrectSet)-1]]
}

// selectRoulette picks a macro-classifier from the correct set with
// probability proportional to fitness.
func (cs *ClassifierSet) selectRoulette(rt *Runtime) *Classifier {
	var total float64
	for _, idx := range cs.CorrectSet {
		total += cs.PopSet[idx].Stats.Fitness
	}
	if total <= 0 {
		return cs.PopSet[cs.CorrectSet[rt.intn(len(cs.CorrectSet))]]
	}
	r := rt.float64() * total
	for _, idx := range cs.CorrectSet {
		c := cs.PopSet[idx]
		r -= c.Stats.Fitness
		if r <= 0 {
			return c
		}
	}
	return cs.PopSet[cs.CorrectSet[len(cs.CorrectSet)-1]]
}

// Deletion loops while MicroPopSize > N, roulette-selecting by deletion
// vote, decrementing numerosity, and removing the classifier entirely once
// its numerosity reaches 0.
func (cs *ClassifierSet) Deletion(iteration int, rt *Runtime) {
	for cs.MicroPopSize > rt.Hyper.N {
		if len(cs.PopSet) == 0 {
			return
		}
		meanFitness := 0.0
		for _, c := range cs.PopSet {
			meanFitness += c.Stats.Fitness
		}
		meanFitness /= float64(cs.MicroPopSize)

		votes := make([]float64, len(cs.PopSet))
		var total float64
		for i, c := range cs.PopSet {
			votes[i] = deletionVote(c, meanFitness, rt)
			total += votes[i]
		}
		chosen := len(cs.PopSet) - 1
		if total <= 0 {
			// Every vote is zero: pick uniformly so the loop still brings
			// MicroPopSize down to N.
			chosen = rt.intn(len(cs.PopSet))
		} else {
			r := rt.float64() * total
			for i, v := range votes {
				r -= v
				if r <= 0 {
					chosen = i
					break
				}
			}
		}

		c := cs.PopSet[chosen]
		c.Stats.Numerosity--
		cs.MicroPopSize--
		if c.Stats.Numerosity <= 0 {
			// c.Stats.Numerosity is already 0, so removeIndices' own
			// MicroPopSize -= c.Stats.Numerosity decrement is a no-op here.
			cs.removeIndices(map[int]bool{chosen: true})
		}
	}
}

// ClearSets empties the transient match/correct sets between iterations,
// leaving PopSet untouched.
func (cs *ClassifierSet) ClearSets() {
	cs.MatchSet = cs.MatchSet[:0]
	cs.CorrectSet = cs.CorrectSet[:0]
}
