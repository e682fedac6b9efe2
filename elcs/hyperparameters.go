package elcs

// SelectionMethod chooses how ClassifierSet.RunGA picks parents from the
// correct set.
type SelectionMethod string

const (
	SelectionTournament SelectionMethod = "tournament"
	SelectionRoulette   SelectionMethod = "roulette"
)

// Hyperparameters holds every tunable of the learning algorithm, with the
// defaults and validation rules Field names follow the
// teacher's EvolutionConfig/DefaultEvolutionConfig convention
// (intelligence/types.go) of a flat struct plus a Default* constructor.
type Hyperparameters struct {
	LearningIterations int
	N                  int
	PSpec              float64
	DiscreteAttributeLimit int
	Nu                 float64
	Chi                float64
	Upsilon            float64
	ThetaGA            float64
	ThetaDel           float64
	ThetaSub           float64
	AccSub             float64
	Beta               float64
	Delta              float64
	InitFitness        float64
	FitnessReduction   float64
	DoCorrectSetSubsumption bool
	DoGASubsumption         bool
	SelectionMethod         SelectionMethod
	ThetaSel                float64
	RandomSeed              *int64
	MatchForMissingness     bool
	TrackAccuracyWhileFit   bool
}

// DefaultHyperparameters returns documented defaults.
func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		LearningIterations:     10000,
		N:                      1000,
		PSpec:                  0.5,
		DiscreteAttributeLimit: 10,
		Nu:                     5,
		Chi:                    0.8,
		Upsilon:                0.04,
		ThetaGA:                25,
		ThetaDel:               20,
		ThetaSub:               20,
		AccSub:                 0.99,
		Beta:                   0.2,
		Delta:                  0.1,
		InitFitness:            0.01,
		FitnessReduction:       0.1,
		DoCorrectSetSubsumption: false,
		DoGASubsumption:         true,
		SelectionMethod:         SelectionTournament,
		ThetaSel:                0.5,
		RandomSeed:              nil,
		MatchForMissingness:     false,
		TrackAccuracyWhileFit:   false,
	}
}

// Validate checks every range constraint, returning the
// first violation as an *InvalidHyperparameterError, mirroring
// SimplePopulationManager.UpdateConfig's range-check idiom
// (intelligence/population-manager.go).
func (h Hyperparameters) Validate() error {
	switch {
	case h.LearningIterations <= 0:
		return invalidHyperparameter("LearningIterations", "must be > 0")
	case h.N <= 0:
		return invalidHyperparameter("N", "must be > 0")
	case h.PSpec < 0 || h.PSpec > 1:
		return invalidHyperparameter("PSpec", "must be in [0,1]")
	case h.Nu <= 0:
		return invalidHyperparameter("Nu", "must be > 0")
	case h.Chi < 0 || h.Chi > 1:
		return invalidHyperparameter("Chi", "must be in [0,1]")
	case h.Upsilon < 0 || h.Upsilon > 1:
		return invalidHyperparameter("Upsilon", "must be in [0,1]")
	case h.ThetaGA < 0:
		return invalidHyperparameter("ThetaGA", "must be >= 0")
	case h.ThetaDel < 0:
		return invalidHyperparameter("ThetaDel", "must be >= 0")
	case h.ThetaSub < 0:
		return invalidHyperparameter("ThetaSub", "must be >= 0")
	case h.AccSub < 0 || h.AccSub > 1:
		return invalidHyperparameter("AccSub", "must be in [0,1]")
	case h.Beta <= 0 || h.Beta > 1:
		return invalidHyperparameter("Beta", "must be in (0,1]")
	case h.Delta < 0 || h.Delta > 1:
		return invalidHyperparameter("Delta", "must be in [0,1]")
	case h.InitFitness < 0 || h.InitFitness > 1:
		return invalidHyperparameter("InitFitness", "must be in [0,1]")
	case h.FitnessReduction < 0 || h.FitnessReduction > 1:
		return invalidHyperparameter("FitnessReduction", "must be in [0,1]")
	case h.SelectionMethod != SelectionTournament && h.SelectionMethod != SelectionRoulette:
		return invalidHyperparameter("SelectionMethod", `must be "tournament" or "roulette"`)
	case h.ThetaSel <= 0 || h.ThetaSel > 1:
		return invalidHyperparameter("ThetaSel", "must be in (0,1]")
	case h.DiscreteAttributeLimit < 0:
		return invalidHyperparameter("DiscreteAttributeLimit", "must be >= 0")
	}
	return nil
}
