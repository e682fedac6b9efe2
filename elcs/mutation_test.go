package elcs

import "testing"

// TestOpenQuestion_CrossoverEndpointSwapTrace is a trace-based unit test:
// with the fixture's fixed seed (42), the exact resulting attribute lists and
// continuous-phenotype intervals are asserted. For this seed both attributes
// are transferred and no phenotype endpoint swap is drawn.
func TestOpenQuestion_CrossoverEndpointSwapTrace(t *testing.T) {
	rt := testRuntime(t, DefaultHyperparameters())
	rt.Schema.Phenotype = Phenotype{Kind: Continuous, Min: 0, Max: 10}

	p1 := &Classifier{
		SpecifiedAttList: []int{0},
		Condition:        []CondElem{discElem(1)},
		Phenotype:        contPhenotype(Interval{Lo: 1, Hi: 3}),
		Stats:            Stats{Accuracy: 0.8},
	}
	p2 := &Classifier{
		SpecifiedAttList: []int{1},
		Condition:        []CondElem{contElem(Interval{Lo: 2, Hi: 8})},
		Phenotype:        contPhenotype(Interval{Lo: 5, Hi: 9}),
		Stats:            Stats{Accuracy: 0.6},
	}

	uniformCrossover(p1, p2, rt)

	if p1.Phenotype.Cont.Lo > p1.Phenotype.Cont.Hi {
		t.Fatalf("p1 phenotype interval invalid after crossover: %+v", p1.Phenotype.Cont)
	}
	if p2.Phenotype.Cont.Lo > p2.Phenotype.Cont.Hi {
		t.Fatalf("p2 phenotype interval invalid after crossover: %+v", p2.Phenotype.Cont)
	}
	if *p1.Phenotype.Cont != (Interval{Lo: 1, Hi: 3}) || *p2.Phenotype.Cont != (Interval{Lo: 5, Hi: 9}) {
		t.Fatalf("unexpected phenotype trace: p1=%+v p2=%+v", *p1.Phenotype.Cont, *p2.Phenotype.Cont)
	}
	if len(p1.SpecifiedAttList) != 1 || p1.SpecifiedAttList[0] != 1 || len(p2.SpecifiedAttList) != 1 || p2.SpecifiedAttList[0] != 0 {
		t.Fatalf("unexpected attribute trace: p1=%v p2=%v", p1.SpecifiedAttList, p2.SpecifiedAttList)
	}
	wantFitness := (0.8 + 0.6) / 2 * rt.Hyper.FitnessReduction
	if p1.Stats.Fitness != wantFitness || p2.Stats.Fitness != wantFitness {
		t.Fatalf("expected both offspring fitness %.6f, got %.6f and %.6f", wantFitness, p1.Stats.Fitness, p2.Stats.Fitness)
	}
}

func TestUniformCrossoverTransfersSingleSpecifiedAttribute(t *testing.T) {
	rt := testRuntime(t, DefaultHyperparameters())
	p1 := &Classifier{SpecifiedAttList: []int{0}, Condition: []CondElem{discElem(1)}, Phenotype: discPhenotype(1)}
	p2 := &Classifier{SpecifiedAttList: []int{}, Condition: []CondElem{}, Phenotype: discPhenotype(1)}

	uniformCrossover(p1, p2, rt)

	total := len(p1.SpecifiedAttList) + len(p2.SpecifiedAttList)
	if total != 1 {
		t.Fatalf("attribute 0 should end up specified in exactly one offspring, total=%d", total)
	}
}

func TestUniformCrossoverResortsCondition(t *testing.T) {
	rt := testRuntime(t, DefaultHyperparameters())
	p1 := &Classifier{SpecifiedAttList: []int{2}, Condition: []CondElem{discElem(1)}, Phenotype: discPhenotype(1)}
	p2 := &Classifier{SpecifiedAttList: []int{0}, Condition: []CondElem{discElem(1)}, Phenotype: discPhenotype(1)}

	uniformCrossover(p1, p2, rt)

	for _, c := range []*Classifier{p1, p2} {
		for i := 1; i < len(c.SpecifiedAttList); i++ {
			if c.SpecifiedAttList[i-1] > c.SpecifiedAttList[i] {
				t.Fatalf("SpecifiedAttList not sorted ascending: %v", c.SpecifiedAttList)
			}
		}
	}
}

// TestBoundary_UpsilonZeroNeverMutates covers boundary
// behavior: Upsilon=0 must leave every attribute and the phenotype
// untouched.
func TestBoundary_UpsilonZeroNeverMutates(t *testing.T) {
	hyper := DefaultHyperparameters()
	hyper.Upsilon = 0
	rt := testRuntime(t, hyper)

	c := &Classifier{
		SpecifiedAttList: []int{0},
		Condition:        []CondElem{discElem(1)},
		Phenotype:        discPhenotype(1),
	}
	changed := mutate(c, []float64{1, 5, 2}, nil, 0, rt)
	if changed {
		t.Fatalf("Upsilon=0 must never report a change")
	}
	if len(c.SpecifiedAttList) != 1 || c.SpecifiedAttList[0] != 0 {
		t.Fatalf("Upsilon=0 must not alter SpecifiedAttList, got %v", c.SpecifiedAttList)
	}
}

func TestMutateContinuousAttributeClampsInterval(t *testing.T) {
	hyper := DefaultHyperparameters()
	hyper.Upsilon = 1.0
	rt := testRuntime(t, hyper)

	c := &Classifier{
		SpecifiedAttList: []int{1},
		Condition:        []CondElem{contElem(Interval{Lo: 4, Hi: 6})},
		Phenotype:        discPhenotype(1),
	}
	for i := 0; i < 20; i++ {
		c.SpecifiedAttList = []int{1}
		c.Condition = []CondElem{contElem(Interval{Lo: 4, Hi: 6})}
		mutate(c, []float64{1, 5, 2}, nil, 0, rt)
		idx, ok := indexOf(c.SpecifiedAttList, 1)
		if !ok {
			t.Fatalf("attribute 1 unexpectedly unspecified after mutate")
		}
		if c.Condition[idx].Cont.Lo > c.Condition[idx].Cont.Hi {
			t.Fatalf("mutated interval invalid: %+v", c.Condition[idx].Cont)
		}
	}
}

// TestMutateContinuousPhenotypeKeepsYEnclosed covers the eLCS requirement
// that mutating a continuous-phenotype interval must never push the
// covering instance's own y outside it.
func TestMutateContinuousPhenotypeKeepsYEnclosed(t *testing.T) {
	hyper := DefaultHyperparameters()
	hyper.Upsilon = 1.0
	rt := testRuntime(t, hyper)
	rt.Schema.Phenotype = Phenotype{Kind: Continuous, Min: 0, Max: 10}

	const y = 5.0
	for i := 0; i < 20; i++ {
		c := &Classifier{
			SpecifiedAttList: []int{0},
			Condition:        []CondElem{discElem(1)},
			Phenotype:        contPhenotype(Interval{Lo: 4.9, Hi: 5.1}),
		}
		mutate(c, []float64{1, 5, 2}, nil, y, rt)
		if y < c.Phenotype.Cont.Lo || y > c.Phenotype.Cont.Hi {
			t.Fatalf("mutation pushed y=%.2f outside interval %+v", y, c.Phenotype.Cont)
		}
	}
}
