package elcs

import (
	"sort"
	"time"
)

// IterationReport is what TrainLoop hands to a Recorder after each training
// iteration, letting an external collaborator track accuracy/generality over
// time without TrainLoop depending on any concrete logging/export package.
type IterationReport struct {
	Iteration      int
	MatchSetSize   int
	CorrectSetSize int
	PopSize        int
	MicroPopSize   int
	Accuracy       float64 // only meaningful if TrackAccuracyWhileFit
	AveGenerality  float64
	CoveringCount  int // cumulative covering events so far this run
}

// Recorder receives per-iteration reports during Fit. The zero-value
// noopRecorder is used when the caller supplies none.
type Recorder interface {
	Record(IterationReport)
}

type noopRecorder struct{}

func (noopRecorder) Record(IterationReport) {}

// Model is the trained (or training) estimator: a Runtime plus a
// ClassifierSet, matching eLCS.py's top-level object in shape (hyperparams +
// population + a hasTrained guard) but re-architected so the
// population never holds a back-reference to it.
type Model struct {
	Runtime    *Runtime
	Set        *ClassifierSet
	Recorder   Recorder
	hyper      Hyperparameters
	hasTrained bool
}

// NewModel validates hyper and constructs a fresh, untrained Model.
func NewModel(hyper Hyperparameters, recorder Recorder) (*Model, error) {
	if err := hyper.Validate(); err != nil {
		return nil, err
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Model{hyper: hyper, Recorder: recorder}, nil
}

// Fit runs the full training loop described in /
// eLCS.py's fit()+runIteration(): LearningIterations draws of
// (get-instance → match → correct-set → update → [subsumption] → GA →
// deletion → clear). Fit may be called at most once per Model.
func (m *Model) Fit(env Environment) error {
	if m.hasTrained {
		return illegalState("Fit", "model has already been trained")
	}

	rt := NewRuntime(m.hyper, env.FormatData(), func() int64 { return time.Now().UnixNano() })
	m.Runtime = rt
	m.Set = NewClassifierSet()

	for iteration := 0; iteration < rt.Hyper.LearningIterations; iteration++ {
		x, missing, y, ok := env.NewInstance()
		if !ok {
			break
		}

		m.Set.MakeMatchSet(x, missing, y, iteration, rt)

		var accuracy float64
		if rt.Hyper.TrackAccuracyWhileFit {
			pred := m.Set.Predict(rt)
			accuracy = decisionScore(pred, y, rt.Schema.Phenotype)
		}

		m.Set.MakeCorrectSet(y)
		m.Set.UpdateSets(rt)

		if rt.Hyper.DoCorrectSetSubsumption {
			m.Set.DoCorrectSetSubsumption(rt)
		}

		m.Set.RunGA(iteration, x, missing, y, rt)
		if m.Set.MicroPopSize > rt.Hyper.N {
			m.Set.Deletion(iteration, rt)
		}

		m.Recorder.Record(IterationReport{
			Iteration:      iteration,
			MatchSetSize:   len(m.Set.MatchSet),
			CorrectSetSize: len(m.Set.CorrectSet),
			PopSize:        len(m.Set.PopSet),
			MicroPopSize:   m.Set.MicroPopSize,
			Accuracy:       accuracy,
			AveGenerality:  aveGenerality(m.Set, rt),
			CoveringCount:  m.Set.CoveringCount(),
		})

		m.Set.ClearSets()
	}

	m.hasTrained = true
	return nil
}

// decisionScore mirrors eLCS.py's Prediction.getDecision() accuracy-tracking
// formula: exact match for discrete phenotypes (1 or 0), and
// 1 - |pred-y|/phenotypeRange for continuous ones.
func decisionScore(pred Prediction, y float64, pheno Phenotype) float64 {
	if !pred.HasMatch {
		return 0
	}
	if pred.Discrete != nil {
		if *pred.Discrete == y {
			return 1
		}
		return 0
	}
	rng := pheno.Max - pheno.Min
	if rng == 0 {
		return 1
	}
	diff := *pred.Continuous - y
	if diff < 0 {
		diff = -diff
	}
	score := 1 - diff/rng
	if score < 0 {
		score = 0
	}
	return score
}

func aveGenerality(cs *ClassifierSet, rt *Runtime) float64 {
	if len(cs.PopSet) == 0 {
		return 0
	}
	var sum float64
	for _, c := range cs.PopSet {
		generality := 1 - float64(len(c.SpecifiedAttList))/float64(rt.Schema.NumAttributes)
		sum += generality * float64(c.Stats.Numerosity)
	}
	return sum / float64(cs.MicroPopSize)
}

// Predict returns the discrete label (or continuous value) for each row of
// X, using MakeEvalMatchSet (no covering), A row with no
// matching rule yields ErrEmptyModel as that row's error rather than failing
// the whole call.
func (m *Model) Predict(X [][]float64) ([]float64, []error, error) {
	if !m.hasTrained {
		return nil, nil, illegalState("Predict", "model has not been trained")
	}
	out := make([]float64, len(X))
	errs := make([]error, len(X))
	for i, row := range X {
		missing := missingMask(row)
		m.Set.MakeEvalMatchSet(row, missing, m.Runtime)
		pred := m.Set.Predict(m.Runtime)
		m.Set.ClearSets()
		if !pred.HasMatch {
			errs[i] = ErrEmptyModel
			continue
		}
		if pred.Discrete != nil {
			out[i] = *pred.Discrete
		} else {
			out[i] = *pred.Continuous
		}
	}
	return out, errs, nil
}

// PredictProba returns per-class probabilities for each row of X, discrete
// phenotypes only.
func (m *Model) PredictProba(X [][]float64) ([]map[float64]float64, []error, error) {
	if !m.hasTrained {
		return nil, nil, illegalState("PredictProba", "model has not been trained")
	}
	if m.Runtime.Schema.Phenotype.Kind != Discrete {
		return nil, nil, invalidInput("PredictProba is only defined for discrete phenotypes")
	}
	out := make([]map[float64]float64, len(X))
	errs := make([]error, len(X))
	for i, row := range X {
		missing := missingMask(row)
		m.Set.MakeEvalMatchSet(row, missing, m.Runtime)
		pred := m.Set.Predict(m.Runtime)
		m.Set.ClearSets()
		if !pred.HasMatch {
			errs[i] = ErrEmptyModel
			continue
		}
		out[i] = pred.Probabilities
	}
	return out, errs, nil
}

func missingMask(row []float64) []bool {
	mask := make([]bool, len(row))
	for i, v := range row {
		mask[i] = v == MissingValue
	}
	return mask
}

// Score computes balanced accuracy over (X, y), mirroring eLCS.py's
// score()'s use of balanced_accuracy_score. Only meaningful for discrete
// phenotypes.
func (m *Model) Score(X [][]float64, y []float64) (float64, error) {
	if !m.hasTrained {
		return 0, illegalState("Score", "model has not been trained")
	}
	preds, errs, err := m.Predict(X)
	if err != nil {
		return 0, err
	}

	perClassCorrect := map[float64]int{}
	perClassTotal := map[float64]int{}
	for i, yi := range y {
		if errs[i] != nil {
			continue
		}
		perClassTotal[yi]++
		if preds[i] == yi {
			perClassCorrect[yi]++
		}
	}
	if len(perClassTotal) == 0 {
		return 0, nil
	}
	var sum float64
	for label, total := range perClassTotal {
		if total > 0 {
			sum += float64(perClassCorrect[label]) / float64(total)
		}
	}
	return sum / float64(len(perClassTotal)), nil
}

// FinalInstanceCoverage returns the fraction of X matched by at least one
// rule in the trained population.
func (m *Model) FinalInstanceCoverage(X [][]float64) (float64, error) {
	if !m.hasTrained {
		return 0, illegalState("FinalInstanceCoverage", "model has not been trained")
	}
	covered := 0
	for _, row := range X {
		m.Set.MakeEvalMatchSet(row, missingMask(row), m.Runtime)
		if len(m.Set.MatchSet) > 0 {
			covered++
		}
		m.Set.ClearSets()
	}
	return float64(covered) / float64(len(X)), nil
}

// AttributeSpecificityList returns, per attribute, the fraction of
// micro-classifiers that specify it.
func (m *Model) AttributeSpecificityList() ([]float64, error) {
	if !m.hasTrained {
		return nil, illegalState("AttributeSpecificityList", "model has not been trained")
	}
	counts := make([]float64, m.Runtime.Schema.NumAttributes)
	for _, c := range m.Set.PopSet {
		for _, attr := range c.SpecifiedAttList {
			counts[attr] += float64(c.Stats.Numerosity)
		}
	}
	for i := range counts {
		counts[i] /= float64(m.Set.MicroPopSize)
	}
	return counts, nil
}

// AttributeAccuracyList returns, per attribute, the numerosity-weighted mean
// accuracy of the micro-classifiers that specify it.
func (m *Model) AttributeAccuracyList() ([]float64, error) {
	if !m.hasTrained {
		return nil, illegalState("AttributeAccuracyList", "model has not been trained")
	}
	sums := make([]float64, m.Runtime.Schema.NumAttributes)
	weights := make([]float64, m.Runtime.Schema.NumAttributes)
	for _, c := range m.Set.PopSet {
		for _, attr := range c.SpecifiedAttList {
			w := float64(c.Stats.Numerosity)
			sums[attr] += c.Stats.Accuracy * w
			weights[attr] += w
		}
	}
	out := make([]float64, len(sums))
	for i := range out {
		if weights[i] > 0 {
			out[i] = sums[i] / weights[i]
		}
	}
	return out, nil
}

// Snapshot is the opaque-to-the-core payload persistence implementations
// serialize: the population, its micro-population size, and the globals
// (hyperparameters, schema, and iteration count already consumed) needed to
// resume training.
type Snapshot struct {
	Hyper         Hyperparameters
	Schema        FormatData
	PopSet        []Classifier
	MicroPopSize  int
	IterationsRun int
}

// ToSnapshot captures the trained (or mid-training) model's state. Only
// meaningful once the Runtime/Set have been constructed, i.e. after Fit has
// started.
func (m *Model) ToSnapshot(iterationsRun int) (Snapshot, error) {
	if m.Set == nil || m.Runtime == nil {
		return Snapshot{}, illegalState("ToSnapshot", "model has not started training")
	}
	pop := make([]Classifier, len(m.Set.PopSet))
	for i, c := range m.Set.PopSet {
		pop[i] = *c
	}
	return Snapshot{
		Hyper:         m.Runtime.Hyper,
		Schema:        m.Runtime.Schema,
		PopSet:        pop,
		MicroPopSize:  m.Set.MicroPopSize,
		IterationsRun: iterationsRun,
	}, nil
}

// Reboot restores a Model from a Snapshot, mirroring eLCS.py's
// rebootPopulation(): PopSet and MicroPopSize are restored verbatim and
// nothing is recomputed. Reboot itself runs no training; it sets
// LearningIterations to additionalIterations and marks the model trained,
// so Fit refuses it and further training goes through ContinueFit.
func Reboot(snap Snapshot, additionalIterations int, recorder Recorder) (*Model, error) {
	hyper := snap.Hyper
	// LearningIterations=0 is valid for Reboot (load-only, no further
	// training) even though Hyperparameters.Validate requires it positive
	// for a fresh Fit; validate every other field against a throwaway
	// positive value instead.
	validationCopy := hyper
	validationCopy.LearningIterations = additionalIterations
	if validationCopy.LearningIterations <= 0 {
		validationCopy.LearningIterations = 1
	}
	if err := validationCopy.Validate(); err != nil {
		return nil, err
	}
	hyper.LearningIterations = additionalIterations
	if recorder == nil {
		recorder = noopRecorder{}
	}

	rt := NewRuntime(hyper, snap.Schema, func() int64 { return time.Now().UnixNano() })

	set := NewClassifierSet()
	set.MicroPopSize = snap.MicroPopSize
	for _, c := range snap.PopSet {
		cc := c
		set.PopSet = append(set.PopSet, &cc)
	}

	m := &Model{Runtime: rt, Set: set, Recorder: recorder, hyper: hyper, hasTrained: true}
	return m, nil
}

// ContinueFit runs additionalIterations more iterations against env on a
// model produced by Reboot, picking up the iteration counter where the
// snapshot left off. Unlike Fit, ContinueFit may be called on an
// already-"trained" rebooted model, matching rebootPopulation's extend-and-
// keep-training semantics.
func (m *Model) ContinueFit(env Environment, startIteration int) error {
	rt := m.Runtime
	for i := 0; i < rt.Hyper.LearningIterations; i++ {
		iteration := startIteration + i
		x, missing, y, ok := env.NewInstance()
		if !ok {
			break
		}
		m.Set.MakeMatchSet(x, missing, y, iteration, rt)
		var accuracy float64
		if rt.Hyper.TrackAccuracyWhileFit {
			pred := m.Set.Predict(rt)
			accuracy = decisionScore(pred, y, rt.Schema.Phenotype)
		}
		m.Set.MakeCorrectSet(y)
		m.Set.UpdateSets(rt)
		if rt.Hyper.DoCorrectSetSubsumption {
			m.Set.DoCorrectSetSubsumption(rt)
		}
		m.Set.RunGA(iteration, x, missing, y, rt)
		if m.Set.MicroPopSize > rt.Hyper.N {
			m.Set.Deletion(iteration, rt)
		}
		m.Recorder.Record(IterationReport{
			Iteration: iteration, MatchSetSize: len(m.Set.MatchSet), CorrectSetSize: len(m.Set.CorrectSet),
			PopSize: len(m.Set.PopSet), MicroPopSize: m.Set.MicroPopSize, Accuracy: accuracy,
			AveGenerality: aveGenerality(m.Set, rt), CoveringCount: m.Set.CoveringCount(),
		})
		m.Set.ClearSets()
	}
	m.hasTrained = true
	return nil
}

// sortedPopSetCopy returns PopSet ordered by dedupKey (the structural hash),
// a canonical order used to compare two populations rule by rule.
func (m *Model) sortedPopSetCopy() []*Classifier {
	out := append([]*Classifier(nil), m.Set.PopSet...)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].dedupKey(), out[j].dedupKey()
		return string(a[:]) < string(b[:])
	})
	return out
}
