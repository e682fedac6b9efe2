// Command elcs trains and serves eLCS classifier models from the command
// line. Subcommand dispatch plus per-subcommand flag.FlagSet and a
// TOML hyperparameter file (no per-hyperparameter flags) follow the shape of
// stojg-playlist-sorter/main.go (stdlib flag, --visual branching to a
// bubbletea TUI) rather than a cobra-based CLI, since cobra is never
// actually imported by that repo's own application code — only pulled in
// indirectly by its linter toolchain.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/lcslab/go-elcs/elcs"
	"github.com/lcslab/go-elcs/persistence"
	"github.com/lcslab/go-elcs/serve"
	"github.com/lcslab/go-elcs/tracking"
	"github.com/lcslab/go-elcs/tracking/tui"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 1
	}

	switch args[0] {
	case "train":
		return runTrain(args[1:])
	case "predict":
		return runPredict(args[1:])
	case "serve":
		return runServe(args[1:])
	default:
		usage()
		return 1
	}
}

func usage() {
	fmt.Println("Usage: elcs <train|predict|serve> [flags]")
}

func runTrain(args []string) int {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	dataPath := fs.String("data", "", "training dataset CSV (features..., phenotype)")
	configPath := fs.String("config", "", "TOML hyperparameter config file")
	snapshotOut := fs.String("snapshot-out", "", "write a signed snapshot to this path")
	visual := fs.Bool("visual", false, "show a live bubbletea training dashboard")
	csvOut := fs.String("tracking-csv", "", "write per-iteration tracking data to this CSV path (with -visual the file is created but left empty)")
	fs.Parse(args)

	if *dataPath == "" {
		fmt.Println("train: -data is required")
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Printf("train: %v", err)
		return 1
	}
	hyper := cfg.toHyperparameters()

	X, y, err := loadDataset(*dataPath)
	if err != nil {
		log.Printf("train: %v", err)
		return 1
	}
	env, err := elcs.NewSliceEnvironment(X, y, hyper.DiscreteAttributeLimit, nil)
	if err != nil {
		log.Printf("train: %v", err)
		return 1
	}

	var recorder elcs.Recorder
	var updates chan tui.Update
	if *csvOut != "" {
		f, err := os.Create(*csvOut)
		if err != nil {
			log.Printf("train: %v", err)
			return 1
		}
		defer f.Close()
		recorder = tracking.NewCSVRecorder(f, 50)
	}
	if *visual {
		updates = make(chan tui.Update, 16)
		recorder = tui.ChannelRecorder{Updates: updates}
		go func() {
			_ = tui.Run(updates, hyper.LearningIterations)
		}()
	}

	model, err := elcs.NewModel(hyper, recorder)
	if err != nil {
		log.Printf("train: %v", err)
		return 1
	}
	if err := model.Fit(env); err != nil {
		log.Printf("train: %v", err)
		return 1
	}
	if updates != nil {
		close(updates)
	}

	coverage, _ := model.FinalInstanceCoverage(X)
	fmt.Printf("trained: micro_pop_size=%d coverage=%.4f\n", model.Set.MicroPopSize, coverage)

	if *snapshotOut != "" {
		store, err := persistence.NewFileStore(*snapshotOut)
		if err != nil {
			log.Printf("train: %v", err)
			return 1
		}
		snap, err := model.ToSnapshot(hyper.LearningIterations)
		if err != nil {
			log.Printf("train: %v", err)
			return 1
		}
		if err := store.Save(snap); err != nil {
			log.Printf("train: %v", err)
			return 1
		}
		fmt.Printf("snapshot written to %s\n", *snapshotOut)
	}
	return 0
}

func runPredict(args []string) int {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	snapshotPath := fs.String("snapshot", "", "signed snapshot file produced by train -snapshot-out")
	dataPath := fs.String("data", "", "CSV to predict over, in the training layout (features..., phenotype); the last column is ignored")
	out := fs.String("out", "predictions.csv", "where to write predictions")
	fs.Parse(args)

	if *snapshotPath == "" || *dataPath == "" {
		fmt.Println("predict: -snapshot and -data are required")
		return 1
	}

	store, err := persistence.NewFileStore(*snapshotPath)
	if err != nil {
		log.Printf("predict: %v", err)
		return 1
	}
	snap, err := store.Load()
	if err != nil {
		log.Printf("predict: %v", err)
		return 1
	}
	model, err := elcs.Reboot(snap, 0, nil)
	if err != nil {
		log.Printf("predict: %v", err)
		return 1
	}

	X, _, err := loadDataset(*dataPath)
	if err != nil {
		log.Printf("predict: %v", err)
		return 1
	}
	preds, errs, err := model.Predict(X)
	if err != nil {
		log.Printf("predict: %v", err)
		return 1
	}
	if err := writePredictions(*out, preds, errs); err != nil {
		log.Printf("predict: %v", err)
		return 1
	}
	fmt.Printf("predictions written to %s\n", *out)
	return 0
}

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	snapshotPath := fs.String("snapshot", "", "signed snapshot file produced by train -snapshot-out")
	addr := fs.String("addr", ":50051", "gRPC listen address")
	fs.Parse(args)

	if *snapshotPath == "" {
		fmt.Println("serve: -snapshot is required")
		return 1
	}

	store, err := persistence.NewFileStore(*snapshotPath)
	if err != nil {
		log.Printf("serve: %v", err)
		return 1
	}
	snap, err := store.Load()
	if err != nil {
		log.Printf("serve: %v", err)
		return 1
	}
	model, err := elcs.Reboot(snap, 0, nil)
	if err != nil {
		log.Printf("serve: %v", err)
		return 1
	}

	if err := serve.StartInferenceServer(*addr, model); err != nil {
		log.Printf("serve: %v", err)
		return 1
	}
	return 0
}
