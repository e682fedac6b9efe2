package elcs

import "testing"

func xorDataset() ([][]float64, []float64) {
	X := [][]float64{}
	y := []float64{}
	for a := 0.0; a <= 1; a++ {
		for b := 0.0; b <= 1; b++ {
			for rep := 0; rep < 25; rep++ {
				X = append(X, []float64{a, b})
				if a != b {
					y = append(y, 1)
				} else {
					y = append(y, 0)
				}
			}
		}
	}
	return X, y
}

func trainXOR(t *testing.T, seed int64, iterations int) *Model {
	t.Helper()
	X, y := xorDataset()
	env, err := NewSliceEnvironment(X, y, 2, nil)
	if err != nil {
		t.Fatalf("environment construction failed: %v", err)
	}
	hyper := DefaultHyperparameters()
	hyper.LearningIterations = iterations
	hyper.N = 200
	hyper.RandomSeed = &seed
	model, err := NewModel(hyper, nil)
	if err != nil {
		t.Fatalf("NewModel failed: %v", err)
	}
	if err := model.Fit(env); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	return model
}

// TestScenario_XORDiscrete covers XOR-discrete concrete
// scenario: the model must learn a non-trivial rule set and reach
// reasonable coverage on the training distribution.
func TestScenario_XORDiscrete(t *testing.T) {
	model := trainXOR(t, 1, 400)
	X, _ := xorDataset()

	coverage, err := model.FinalInstanceCoverage(X)
	if err != nil {
		t.Fatalf("FinalInstanceCoverage failed: %v", err)
	}
	if coverage < 0.5 {
		t.Fatalf("expected reasonable coverage on the training distribution, got %v", coverage)
	}
	if model.Set.MicroPopSize == 0 {
		t.Fatalf("expected a non-empty trained population")
	}
}

// TestLaw_Determinism: the same seed and instance order must produce a
// bitwise-equal PopSet (modulo canonical ordering).
func TestLaw_Determinism(t *testing.T) {
	m1 := trainXOR(t, 7, 150)
	m2 := trainXOR(t, 7, 150)

	p1 := m1.sortedPopSetCopy()
	p2 := m2.sortedPopSetCopy()
	if len(p1) != len(p2) {
		t.Fatalf("same seed must produce the same population size: %d vs %d", len(p1), len(p2))
	}
	for i := range p1 {
		if p1[i].dedupKey() != p2[i].dedupKey() {
			t.Fatalf("same seed must produce a structurally identical population at index %d", i)
		}
		if p1[i].Stats.Numerosity != p2[i].Stats.Numerosity {
			t.Fatalf("same seed must produce identical numerosity at index %d", i)
		}
	}
}

func TestFitTwiceReturnsIllegalState(t *testing.T) {
	X := [][]float64{{0, 0}, {1, 1}}
	y := []float64{0, 1}
	env, _ := NewSliceEnvironment(X, y, 2, nil)
	hyper := DefaultHyperparameters()
	hyper.LearningIterations = 5
	model, err := NewModel(hyper, nil)
	if err != nil {
		t.Fatalf("NewModel failed: %v", err)
	}
	if err := model.Fit(env); err != nil {
		t.Fatalf("first Fit failed: %v", err)
	}
	if err := model.Fit(env); err == nil {
		t.Fatalf("second Fit must fail")
	} else if _, ok := err.(*IllegalStateError); !ok {
		t.Fatalf("expected *IllegalStateError, got %T", err)
	}
}

func TestExportMethodsRejectUntrainedModel(t *testing.T) {
	hyper := DefaultHyperparameters()
	model, err := NewModel(hyper, nil)
	if err != nil {
		t.Fatalf("NewModel failed: %v", err)
	}
	if _, err := model.Score([][]float64{{1}}, []float64{1}); err == nil {
		t.Fatalf("Score on an untrained model must fail")
	}
	if _, _, err := model.Predict([][]float64{{1}}); err == nil {
		t.Fatalf("Predict on an untrained model must fail")
	}
}

// TestScenario_MissingnessOnDiscrete: an instance with a missing discrete
// attribute, trained with MatchForMissingness=true, must not error out and
// must still be predictable.
func TestScenario_MissingnessOnDiscrete(t *testing.T) {
	X := [][]float64{
		{0, 1}, {1, 1}, {0, 0}, {1, 0},
		{MissingValue, 1}, {MissingValue, 0},
	}
	y := []float64{0, 1, 0, 1, 0, 1}
	env, err := NewSliceEnvironment(X, y, 2, nil)
	if err != nil {
		t.Fatalf("environment construction failed: %v", err)
	}
	hyper := DefaultHyperparameters()
	hyper.LearningIterations = 60
	hyper.N = 50
	hyper.MatchForMissingness = true
	model, err := NewModel(hyper, nil)
	if err != nil {
		t.Fatalf("NewModel failed: %v", err)
	}
	if err := model.Fit(env); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if _, _, err := model.Predict(X); err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
}
