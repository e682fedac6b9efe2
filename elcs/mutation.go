package elcs

import "sort"

// uniformCrossover operates in place on p1/p2: over the
// union of specified attributes, each candidate attribute is swapped between
// offspring with probability 0.5 (a single-specified attribute is
// transferred to the unspecified side; a both-specified attribute swaps its
// value/interval). Continuous phenotypes swap one endpoint with probability
// 0.5 and renormalize so Lo<=Hi; discrete phenotypes are never crossed.
// Both offspring's fitness becomes the average of the parents' accuracy
// scaled by FitnessReduction. Returns true if any attribute or the
// phenotype actually changed.
func uniformCrossover(p1, p2 *Classifier, rt *Runtime) bool {
	union := map[int]struct{}{}
	for _, a := range p1.SpecifiedAttList {
		union[a] = struct{}{}
	}
	for _, a := range p2.SpecifiedAttList {
		union[a] = struct{}{}
	}
	attrs := make([]int, 0, len(union))
	for a := range union {
		attrs = append(attrs, a)
	}
	sort.Ints(attrs)

	changed := false
	for _, attr := range attrs {
		if !rt.bernoulli(0.5) {
			continue
		}
		i1, has1 := indexOf(p1.SpecifiedAttList, attr)
		i2, has2 := indexOf(p2.SpecifiedAttList, attr)

		switch {
		case has1 && has2:
			p1.Condition[i1], p2.Condition[i2] = p2.Condition[i2], p1.Condition[i1]
			changed = true
		case has1 && !has2:
			moveSpecifiedAttr(p1, p2, attr, i1)
			changed = true
		case !has1 && has2:
			moveSpecifiedAttr(p2, p1, attr, i2)
			changed = true
		}
	}

	if rt.Schema.Phenotype.Kind == Continuous && rt.bernoulli(0.5) {
		if rt.bernoulli(0.5) {
			p1.Phenotype.Cont.Lo, p2.Phenotype.Cont.Lo = p2.Phenotype.Cont.Lo, p1.Phenotype.Cont.Lo
		} else {
			p1.Phenotype.Cont.Hi, p2.Phenotype.Cont.Hi = p2.Phenotype.Cont.Hi, p1.Phenotype.Cont.Hi
		}
		normalizeInterval(p1.Phenotype.Cont)
		normalizeInterval(p2.Phenotype.Cont)
		changed = true
	}

	resortCondition(p1)
	resortCondition(p2)

	avgAcc := (p1.Stats.Accuracy + p2.Stats.Accuracy) / 2
	p1.Stats.Fitness = avgAcc * rt.Hyper.FitnessReduction
	p2.Stats.Fitness = avgAcc * rt.Hyper.FitnessReduction
	return changed
}

func indexOf(list []int, v int) (int, bool) {
	for i, e := range list {
		if e == v {
			return i, true
		}
	}
	return 0, false
}

// moveSpecifiedAttr transfers attr from src (where it is specified at
// srcIdx) to dst (where it is unspecified), leaving it unspecified in src.
func moveSpecifiedAttr(src, dst *Classifier, attr, srcIdx int) {
	cond := src.Condition[srcIdx]
	src.SpecifiedAttList = append(src.SpecifiedAttList[:srcIdx], src.SpecifiedAttList[srcIdx+1:]...)
	src.Condition = append(src.Condition[:srcIdx], src.Condition[srcIdx+1:]...)
	dst.SpecifiedAttList = append(dst.SpecifiedAttList, attr)
	dst.Condition = append(dst.Condition, cond)
}

func resortCondition(c *Classifier) {
	order := make([]int, len(c.SpecifiedAttList))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return c.SpecifiedAttList[order[i]] < c.SpecifiedAttList[order[j]]
	})
	attrs := make([]int, len(order))
	cond := make([]CondElem, len(order))
	for i, idx := range order {
		attrs[i] = c.SpecifiedAttList[idx]
		cond[i] = c.Condition[idx]
	}
	c.SpecifiedAttList = attrs
	c.Condition = cond
}

func normalizeInterval(iv *Interval) {
	if iv.Lo > iv.Hi {
		iv.Lo, iv.Hi = iv.Hi, iv.Lo
	}
}

// clampIntervalAround widens iv just enough to keep y enclosed, pulling
// whichever endpoint drifted past y back to y. A mutated continuous
// phenotype must never stop matching the instance that is covering it.
func clampIntervalAround(iv *Interval, y float64) {
	if y < iv.Lo {
		iv.Lo = y
	}
	if y > iv.Hi {
		iv.Hi = y
	}
}

// mutate operates in place on c, using state x/missing as the source of
// newly-specified attribute values. y is the covering instance's phenotype;
// for a continuous phenotype, mutation must never move the interval so that
// y falls outside it. Returns true if any attribute or the phenotype
// changed.
func mutate(c *Classifier, x []float64, missing []bool, y float64, rt *Runtime) bool {
	changed := false

	specifiedSet := make(map[int]int, len(c.SpecifiedAttList))
	for i, a := range c.SpecifiedAttList {
		specifiedSet[a] = i
	}

	for attrIdx := 0; attrIdx < rt.Schema.NumAttributes; attrIdx++ {
		if !rt.bernoulli(rt.Hyper.Upsilon) {
			continue
		}
		info := rt.Schema.Attributes[attrIdx]
		if i, specified := specifiedSet[attrIdx]; specified {
			switch info.Kind {
			case Discrete:
				// generalize/remove: drop the attribute from the condition.
				c.SpecifiedAttList = append(c.SpecifiedAttList[:i], c.SpecifiedAttList[i+1:]...)
				c.Condition = append(c.Condition[:i], c.Condition[i+1:]...)
				for a, idx := range specifiedSet {
					if idx > i {
						specifiedSet[a] = idx - 1
					}
				}
				delete(specifiedSet, attrIdx)
			case Continuous:
				r := (info.Max - info.Min) * 0.1
				iv := c.Condition[i].Cont
				if rt.bernoulli(0.5) {
					iv.Lo += rt.uniform(-r, r)
				} else {
					iv.Hi += rt.uniform(-r, r)
				}
				normalizeInterval(iv)
			}
			changed = true
		} else {
			if missing != nil && missing[attrIdx] && !rt.Hyper.MatchForMissingness {
				continue
			}
			var elem CondElem
			switch info.Kind {
			case Discrete:
				elem = discElem(x[attrIdx])
			case Continuous:
				radius := rt.uniform(0, (info.Max-info.Min)/2)
				elem = contElem(Interval{Lo: x[attrIdx] - radius, Hi: x[attrIdx] + radius})
			}
			c.SpecifiedAttList = append(c.SpecifiedAttList, attrIdx)
			c.Condition = append(c.Condition, elem)
			specifiedSet[attrIdx] = len(c.SpecifiedAttList) - 1
			changed = true
		}
	}
	resortCondition(c)

	switch rt.Schema.Phenotype.Kind {
	case Discrete:
		if rt.bernoulli(rt.Hyper.Upsilon) {
			labels := rt.Schema.Phenotype.Labels
			if len(labels) > 1 {
				current := *c.Phenotype.Disc
				var candidate float64
				for {
					candidate = labels[rt.intn(len(labels))]
					if candidate != current {
						break
					}
				}
				c.Phenotype.Disc = &candidate
				changed = true
			}
		}
	case Continuous:
		if rt.bernoulli(rt.Hyper.Upsilon) {
			ph := rt.Schema.Phenotype
			r := (ph.Max - ph.Min) * 0.1
			iv := c.Phenotype.Cont
			iv.Lo += rt.uniform(-r, r)
			iv.Hi += rt.uniform(-r, r)
			normalizeInterval(iv)
			clampIntervalAround(iv, y)
			changed = true
		}
	}

	return changed
}
