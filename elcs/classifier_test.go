package elcs

import "testing"

func testRuntime(t *testing.T, hyper Hyperparameters) *Runtime {
	t.Helper()
	schema := FormatData{
		NumAttributes: 3,
		Attributes: []AttributeInfo{
			{Kind: Discrete, Min: 0, Max: 1},
			{Kind: Continuous, Min: 0, Max: 10},
			{Kind: Discrete, Min: 0, Max: 2},
		},
		Phenotype: Phenotype{Kind: Discrete, Labels: []float64{0, 1}},
	}
	seed := int64(42)
	hyper.RandomSeed = &seed
	if err := hyper.Validate(); err != nil {
		t.Fatalf("invalid hyperparameters in test fixture: %v", err)
	}
	return NewRuntime(hyper, schema, func() int64 { return 0 })
}

// TestInvariant_SpecifiedAttListMatchesCondition covers the invariant
// len(SpecifiedAttList) == len(Condition), unique in-range indices, after
// covering.
func TestInvariant_SpecifiedAttListMatchesCondition(t *testing.T) {
	rt := testRuntime(t, DefaultHyperparameters())
	x := []float64{1, 5, 2}
	c := initializeByCovering(x, nil, 1, 0, 0, rt)

	if len(c.SpecifiedAttList) != len(c.Condition) {
		t.Fatalf("len mismatch: %d attrs vs %d conditions", len(c.SpecifiedAttList), len(c.Condition))
	}
	seen := map[int]bool{}
	for _, a := range c.SpecifiedAttList {
		if a < 0 || a >= rt.Schema.NumAttributes {
			t.Fatalf("attribute index %d out of range", a)
		}
		if seen[a] {
			t.Fatalf("duplicate attribute index %d", a)
		}
		seen[a] = true
	}
}

// TestInvariant_CoveredClassifierMatchesSourceInstance covers the covering
// guarantee: a freshly-covered classifier must match the
// instance it was covered from.
func TestInvariant_CoveredClassifierMatchesSourceInstance(t *testing.T) {
	hyper := DefaultHyperparameters()
	hyper.PSpec = 1.0 // force every attribute specified, worst case for matching
	rt := testRuntime(t, hyper)
	x := []float64{1, 5, 2}
	c := initializeByCovering(x, nil, 1, 0, 0, rt)

	if !c.Match(x, nil, rt) {
		t.Fatalf("covered classifier does not match its source instance")
	}
}

// TestInvariant_CoveredStatsInRange covers Stats invariants
// for a freshly-covered classifier.
func TestInvariant_CoveredStatsInRange(t *testing.T) {
	rt := testRuntime(t, DefaultHyperparameters())
	c := initializeByCovering([]float64{1, 5, 2}, nil, 1, 7, 3.5, rt)

	if c.Stats.Numerosity != 1 {
		t.Fatalf("expected numerosity 1, got %d", c.Stats.Numerosity)
	}
	if c.Stats.Accuracy != 1.0 {
		t.Fatalf("expected accuracy 1.0, got %v", c.Stats.Accuracy)
	}
	if c.Stats.Fitness != rt.Hyper.InitFitness {
		t.Fatalf("expected fitness %v, got %v", rt.Hyper.InitFitness, c.Stats.Fitness)
	}
	if c.Stats.AveMatchSetSize != 3.5 {
		t.Fatalf("expected aveMatchSetSize 3.5, got %v", c.Stats.AveMatchSetSize)
	}
	if c.Stats.CorrectCount != 0 || c.Stats.MatchCount != 0 {
		t.Fatalf("expected zero counts, got %+v", c.Stats)
	}
}

// TestInvariant_IntervalLoLEHi covers interval invariant for
// continuous conditions produced by covering.
func TestInvariant_IntervalLoLEHi(t *testing.T) {
	hyper := DefaultHyperparameters()
	hyper.PSpec = 1.0
	rt := testRuntime(t, hyper)
	for i := 0; i < 50; i++ {
		c := initializeByCovering([]float64{1, 5, 2}, nil, 1, 0, 0, rt)
		for _, e := range c.Condition {
			if e.Cont != nil && e.Cont.Lo > e.Cont.Hi {
				t.Fatalf("interval Lo > Hi: %+v", e.Cont)
			}
		}
	}
}

func TestInitializeByCopy(t *testing.T) {
	rt := testRuntime(t, DefaultHyperparameters())
	parent := initializeByCovering([]float64{1, 5, 2}, nil, 1, 4, 0, rt)
	parent.Stats.Fitness = 0.8
	parent.Stats.Accuracy = 0.9

	child := initializeByCopy(parent, 10, rt)
	if child.Stats.Numerosity != 1 {
		t.Fatalf("expected numerosity 1, got %d", child.Stats.Numerosity)
	}
	if child.Stats.Fitness != parent.Stats.Fitness*rt.Hyper.FitnessReduction {
		t.Fatalf("fitness not discounted correctly")
	}
	if child.Stats.Accuracy != parent.Stats.Accuracy {
		t.Fatalf("accuracy should be inherited")
	}
	if child.Stats.TimeStampGA != 10 || child.Stats.InitTimeStamp != 10 {
		t.Fatalf("timestamps should be set to the copy iteration")
	}
	// mutating the child must not affect the parent (deep copy).
	if len(child.Condition) > 0 {
		if child.Condition[0].Disc != nil {
			*child.Condition[0].Disc = -999
			if parent.Condition[0].Disc != nil && *parent.Condition[0].Disc == -999 {
				t.Fatalf("copy is not deep: mutating child affected parent")
			}
		}
	}
}

func TestDedupKeyStableAcrossEquivalentClassifiers(t *testing.T) {
	a := &Classifier{
		SpecifiedAttList: []int{2, 0},
		Condition:        []CondElem{discElem(1), discElem(0)},
		Phenotype:        discPhenotype(1),
	}
	b := &Classifier{
		SpecifiedAttList: []int{0, 2},
		Condition:        []CondElem{discElem(0), discElem(1)},
		Phenotype:        discPhenotype(1),
	}
	if a.dedupKey() != b.dedupKey() {
		t.Fatalf("structurally equivalent classifiers (different attribute order) should share a dedup key")
	}

	c := &Classifier{
		SpecifiedAttList: []int{0, 2},
		Condition:        []CondElem{discElem(0), discElem(2)},
		Phenotype:        discPhenotype(1),
	}
	if a.dedupKey() == c.dedupKey() {
		t.Fatalf("structurally different classifiers should not share a dedup key")
	}
}

func TestMatchForMissingness(t *testing.T) {
	rt := testRuntime(t, DefaultHyperparameters())
	c := &Classifier{
		SpecifiedAttList: []int{0},
		Condition:        []CondElem{discElem(1)},
		Phenotype:        discPhenotype(1),
	}
	missing := []bool{true, false, false}

	if c.Match([]float64{1, 0, 0}, missing, rt) {
		t.Fatalf("expected no match: missing attribute with MatchForMissingness=false")
	}

	rt.Hyper.MatchForMissingness = true
	if !c.Match([]float64{1, 0, 0}, missing, rt) {
		t.Fatalf("expected match: missing attribute with MatchForMissingness=true")
	}
}
