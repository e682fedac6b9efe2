package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/lcslab/go-elcs/elcs"
)

// loadDataset reads a CSV file with no header, treating the last column as
// the phenotype y and every other column as a feature of X. A blank cell is
// read as elcs.MissingValue.
func loadDataset(path string) ([][]float64, []float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse dataset CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("dataset is empty")
	}

	X := make([][]float64, len(rows))
	y := make([]float64, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			return nil, nil, fmt.Errorf("row %d: need at least one feature column plus phenotype", i)
		}
		xRow := make([]float64, len(row)-1)
		for j, cell := range row[:len(row)-1] {
			if cell == "" {
				xRow[j] = elcs.MissingValue
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d col %d: %w", i, j, err)
			}
			xRow[j] = v
		}
		yv, err := strconv.ParseFloat(row[len(row)-1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d phenotype: %w", i, err)
		}
		X[i] = xRow
		y[i] = yv
	}
	return X, y, nil
}

func writePredictions(path string, preds []float64, errs []error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create predictions file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()
	for i, p := range preds {
		if errs[i] != nil {
			if err := w.Write([]string{"no_prediction"}); err != nil {
				return err
			}
			continue
		}
		if err := w.Write([]string{strconv.FormatFloat(p, 'g', -1, 64)}); err != nil {
			return err
		}
	}
	return nil
}
