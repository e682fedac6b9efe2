package elcs

// subsumes reports whether a subsumes b: a must be experienced and accurate
// enough, strictly more general (every specified attribute of a is
// specified in b with an enclosing/equal condition, and a specifies
// strictly fewer attributes than b), and phenotype-compatible.
func subsumes(a, b *Classifier, rt *Runtime) bool {
	if float64(a.Stats.experience()) <= rt.Hyper.ThetaSub {
		return false
	}
	if a.Stats.Accuracy <= rt.Hyper.AccSub {
		return false
	}
	if !isMoreGeneral(a, b) {
		return false
	}
	return phenotypeCompatible(a.Phenotype, b.Phenotype)
}

// isMoreGeneral reports whether a's condition is a strict structural
// generalization of b's: every attribute a specifies is also specified by b
// with an enclosing condition, a specifies no attribute b does not, and a's
// specified-attribute set is a strict subset of b's (equal-length sets
// never subsume, even if a's intervals are wider).
func isMoreGeneral(a, b *Classifier) bool {
	if len(a.SpecifiedAttList) >= len(b.SpecifiedAttList) {
		return false
	}
	bIdx := make(map[int]int, len(b.SpecifiedAttList))
	for i, attr := range b.SpecifiedAttList {
		bIdx[attr] = i
	}
	for i, attr := range a.SpecifiedAttList {
		j, ok := bIdx[attr]
		if !ok {
			return false
		}
		ca, cb := a.Condition[i], b.Condition[j]
		if ca.Disc != nil {
			if cb.Disc == nil || *ca.Disc != *cb.Disc {
				return false
			}
		} else {
			if cb.Cont == nil || !ca.Cont.encloses(*cb.Cont) {
				return false
			}
		}
	}
	return true
}

func phenotypeCompatible(a, b PhenotypeValue) bool {
	if a.Disc != nil {
		return b.Disc != nil && *a.Disc == *b.Disc
	}
	return b.Cont != nil && a.Cont.encloses(*b.Cont)
}

// deletionVote computes c's vote weight in the roulette-wheel deletion
// pass. meanFitness is Σfitness/microPopSize over the whole population.
func deletionVote(c *Classifier, meanFitness float64, rt *Runtime) float64 {
	vote0 := c.Stats.AveMatchSetSize * float64(c.Stats.Numerosity)
	if float64(c.Stats.experience()) <= rt.Hyper.ThetaDel {
		return vote0
	}
	perMicroFitness := c.Stats.Fitness / float64(c.Stats.Numerosity)
	if perMicroFitness >= rt.Hyper.Delta*meanFitness || perMicroFitness == 0 {
		return vote0
	}
	return vote0 * meanFitness / perMicroFitness
}
