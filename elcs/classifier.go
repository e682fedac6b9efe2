package elcs

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"
)

// Stats holds a classifier's bookkeeping fields. Fitness and Accuracy stay
// in [0,1]; Numerosity >= 1; CorrectCount <= MatchCount.
type Stats struct {
	Fitness         float64
	Accuracy        float64
	Numerosity      int
	AveMatchSetSize float64
	TimeStampGA     int
	InitTimeStamp   int
	MatchCount      int
	CorrectCount    int
	DeletionVote    float64
}

func (s Stats) experience() int { return s.MatchCount }

// Classifier is one rule: a condition over SpecifiedAttList/Condition and a
// consequent Phenotype, plus its Stats.
type Classifier struct {
	SpecifiedAttList []int
	Condition        []CondElem
	Phenotype        PhenotypeValue
	Stats            Stats
}

// Match reports whether the classifier's condition matches an instance:
// missing values match iff MatchForMissingness; unspecified attributes
// always match.
func (c *Classifier) Match(x []float64, missing []bool, rt *Runtime) bool {
	for i, attrIdx := range c.SpecifiedAttList {
		if missing != nil && missing[attrIdx] {
			if !rt.Hyper.MatchForMissingness {
				return false
			}
			continue
		}
		cond := c.Condition[i]
		v := x[attrIdx]
		switch rt.Schema.Attributes[attrIdx].Kind {
		case Discrete:
			if *cond.Disc != v {
				return false
			}
		case Continuous:
			if !cond.Cont.contains(v) {
				return false
			}
		}
	}
	return true
}

// initializeByCovering builds a new classifier that matches x and advocates
// y. aveMatchSetSize is the size of the match set *before* this classifier
// is added to it.
func initializeByCovering(x []float64, missing []bool, y float64, iteration int, aveMatchSetSize float64, rt *Runtime) *Classifier {
	c := &Classifier{}
	for attrIdx := 0; attrIdx < rt.Schema.NumAttributes; attrIdx++ {
		if missing != nil && missing[attrIdx] && !rt.Hyper.MatchForMissingness {
			continue
		}
		if !rt.bernoulli(rt.Hyper.PSpec) {
			continue
		}
		c.SpecifiedAttList = append(c.SpecifiedAttList, attrIdx)
		info := rt.Schema.Attributes[attrIdx]
		switch info.Kind {
		case Discrete:
			c.Condition = append(c.Condition, discElem(x[attrIdx]))
		case Continuous:
			radius := rt.uniform(0, (info.Max-info.Min)/2)
			c.Condition = append(c.Condition, contElem(Interval{Lo: x[attrIdx] - radius, Hi: x[attrIdx] + radius}))
		}
	}

	switch rt.Schema.Phenotype.Kind {
	case Discrete:
		c.Phenotype = discPhenotype(y)
	case Continuous:
		ph := rt.Schema.Phenotype
		radius := rt.uniform(0, (ph.Max-ph.Min)/2)
		c.Phenotype = contPhenotype(Interval{Lo: y - radius, Hi: y + radius})
	}

	c.Stats = Stats{
		Fitness:         rt.Hyper.InitFitness,
		Accuracy:        1.0,
		Numerosity:      1,
		AveMatchSetSize: aveMatchSetSize,
		TimeStampGA:     iteration,
		InitTimeStamp:   iteration,
	}
	return c
}

// initializeByCopy deep-copies parent's condition/phenotype: numerosity
// resets to 1, fitness is discounted by FitnessReduction, accuracy and
// aveMatchSetSize are inherited, counts reset.
func initializeByCopy(parent *Classifier, iteration int, rt *Runtime) *Classifier {
	c := &Classifier{
		SpecifiedAttList: append([]int(nil), parent.SpecifiedAttList...),
		Condition:        deepCopyCondition(parent.Condition),
		Phenotype:        deepCopyPhenotype(parent.Phenotype),
	}
	c.Stats = Stats{
		Fitness:         parent.Stats.Fitness * rt.Hyper.FitnessReduction,
		Accuracy:        parent.Stats.Accuracy,
		Numerosity:      1,
		AveMatchSetSize: parent.Stats.AveMatchSetSize,
		TimeStampGA:     iteration,
		InitTimeStamp:   iteration,
	}
	return c
}

func deepCopyCondition(cond []CondElem) []CondElem {
	out := make([]CondElem, len(cond))
	for i, e := range cond {
		if e.Disc != nil {
			out[i] = discElem(*e.Disc)
		} else {
			out[i] = contElem(*e.Cont)
		}
	}
	return out
}

func deepCopyPhenotype(p PhenotypeValue) PhenotypeValue {
	if p.Disc != nil {
		return discPhenotype(*p.Disc)
	}
	return contPhenotype(*p.Cont)
}

// dedupKey returns a deterministic structural-equality key over the sorted
// SpecifiedAttList, Condition, and Phenotype, used by ClassifierSet to fold
// duplicate macro-classifiers into a numerosity increment rather than a new
// population entry: fields are written in a fixed deterministic order into
// a hasher rather than compared struct-by-struct.
func (c *Classifier) dedupKey() [32]byte {
	order := make([]int, len(c.SpecifiedAttList))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return c.SpecifiedAttList[order[i]] < c.SpecifiedAttList[order[j]]
	})

	h := sha256.New()
	var buf [8]byte
	for _, idx := range order {
		binary.LittleEndian.PutUint64(buf[:], uint64(c.SpecifiedAttList[idx]))
		h.Write(buf[:])
		e := c.Condition[idx]
		if e.Disc != nil {
			h.Write([]byte{0})
			binary.LittleEndian.PutUint64(buf[:], asUint64(*e.Disc))
			h.Write(buf[:])
		} else {
			h.Write([]byte{1})
			binary.LittleEndian.PutUint64(buf[:], asUint64(e.Cont.Lo))
			h.Write(buf[:])
			binary.LittleEndian.PutUint64(buf[:], asUint64(e.Cont.Hi))
			h.Write(buf[:])
		}
	}
	if c.Phenotype.Disc != nil {
		h.Write([]byte{0})
		binary.LittleEndian.PutUint64(buf[:], asUint64(*c.Phenotype.Disc))
		h.Write(buf[:])
	} else {
		h.Write([]byte{1})
		binary.LittleEndian.PutUint64(buf[:], asUint64(c.Phenotype.Cont.Lo))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], asUint64(c.Phenotype.Cont.Hi))
		h.Write(buf[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func asUint64(f float64) uint64 {
	return uint64(int64(f * 1e9))
}
