package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/lcslab/go-elcs/elcs"
)

// fileConfig mirrors stojg-playlist-sorter/config/config.go's GAConfig: a
// flat, toml-tagged struct with a DefaultConfig()/LoadConfig()/SaveConfig()
// trio, generalized from GA fitness weights to elcs.Hyperparameters.
type fileConfig struct {
	LearningIterations      int     `toml:"learning_iterations"`
	N                       int     `toml:"n"`
	PSpec                   float64 `toml:"p_spec"`
	DiscreteAttributeLimit  int     `toml:"discrete_attribute_limit"`
	Nu                      float64 `toml:"nu"`
	Chi                     float64 `toml:"chi"`
	Upsilon                 float64 `toml:"upsilon"`
	ThetaGA                 float64 `toml:"theta_ga"`
	ThetaDel                float64 `toml:"theta_del"`
	ThetaSub                float64 `toml:"theta_sub"`
	AccSub                  float64 `toml:"acc_sub"`
	Beta                    float64 `toml:"beta"`
	Delta                   float64 `toml:"delta"`
	InitFitness             float64 `toml:"init_fitness"`
	FitnessReduction        float64 `toml:"fitness_reduction"`
	DoCorrectSetSubsumption bool    `toml:"do_correct_set_subsumption"`
	DoGASubsumption         bool    `toml:"do_ga_subsumption"`
	SelectionMethod         string  `toml:"selection_method"`
	ThetaSel                float64 `toml:"theta_sel"`
	RandomSeed              *int64  `toml:"random_seed"`
	MatchForMissingness     bool    `toml:"match_for_missingness"`
	TrackAccuracyWhileFit   bool    `toml:"track_accuracy_while_fit"`
}

func defaultFileConfig() fileConfig {
	h := elcs.DefaultHyperparameters()
	return fileConfig{
		LearningIterations: h.LearningIterations, N: h.N, PSpec: h.PSpec,
		DiscreteAttributeLimit: h.DiscreteAttributeLimit, Nu: h.Nu, Chi: h.Chi, Upsilon: h.Upsilon,
		ThetaGA: h.ThetaGA, ThetaDel: h.ThetaDel, ThetaSub: h.ThetaSub, AccSub: h.AccSub,
		Beta: h.Beta, Delta: h.Delta, InitFitness: h.InitFitness, FitnessReduction: h.FitnessReduction,
		DoCorrectSetSubsumption: h.DoCorrectSetSubsumption, DoGASubsumption: h.DoGASubsumption,
		SelectionMethod: string(h.SelectionMethod), ThetaSel: h.ThetaSel,
		RandomSeed: h.RandomSeed, MatchForMissingness: h.MatchForMissingness,
		TrackAccuracyWhileFit: h.TrackAccuracyWhileFit,
	}
}

// loadConfig loads hyperparameters from a TOML file, falling back to
// defaults if it does not exist, exactly as stojg-playlist-sorter/
// config/config.go's LoadConfig does for GA parameters.
func loadConfig(path string) (fileConfig, error) {
	if path == "" {
		return defaultFileConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultFileConfig(), nil
		}
		return defaultFileConfig(), fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := defaultFileConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return defaultFileConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

func (c fileConfig) toHyperparameters() elcs.Hyperparameters {
	return elcs.Hyperparameters{
		LearningIterations: c.LearningIterations, N: c.N, PSpec: c.PSpec,
		DiscreteAttributeLimit: c.DiscreteAttributeLimit, Nu: c.Nu, Chi: c.Chi, Upsilon: c.Upsilon,
		ThetaGA: c.ThetaGA, ThetaDel: c.ThetaDel, ThetaSub: c.ThetaSub, AccSub: c.AccSub,
		Beta: c.Beta, Delta: c.Delta, InitFitness: c.InitFitness, FitnessReduction: c.FitnessReduction,
		DoCorrectSetSubsumption: c.DoCorrectSetSubsumption, DoGASubsumption: c.DoGASubsumption,
		SelectionMethod: elcs.SelectionMethod(c.SelectionMethod), ThetaSel: c.ThetaSel,
		RandomSeed: c.RandomSeed, MatchForMissingness: c.MatchForMissingness,
		TrackAccuracyWhileFit: c.TrackAccuracyWhileFit,
	}
}
