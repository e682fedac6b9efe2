// Package analysis renders a trained run's iteration-tracking CSV export
// (tracking.CSVRecorder) into a PNG rolling-accuracy chart. It is an
// external collaborator, never imported by the elcs core,'s
// carve-out for iteration tracking/logging/CSV export.
package analysis

import (
	"encoding/csv"
	"io"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// RollingAccuracyPNG reads a tracking.CSVRecorder-formatted CSV from src and
// writes a rolling-accuracy-vs-iteration line chart to dst as a PNG of the
// given width/height (inches).
func RollingAccuracyPNG(src io.Reader, dst io.Writer, width, height float64) error {
	pts, err := readRollingAccuracy(src)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = "Rolling accuracy over training iterations"
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "rolling accuracy"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line)
	p.Legend.Add("rolling accuracy", line)

	writer, err := p.WriterTo(vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = writer.WriteTo(dst)
	return err
}

func readRollingAccuracy(src io.Reader) (plotter.XYs, error) {
	r := csv.NewReader(src)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return plotter.XYs{}, nil
	}

	header := rows[0]
	iterCol, accCol := -1, -1
	for i, name := range header {
		switch name {
		case "iteration":
			iterCol = i
		case "rolling_accuracy":
			accCol = i
		}
	}

	pts := make(plotter.XYs, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if iterCol < 0 || accCol < 0 {
			continue
		}
		x, err := strconv.ParseFloat(row[iterCol], 64)
		if err != nil {
			continue
		}
		y, err := strconv.ParseFloat(row[accCol], 64)
		if err != nil {
			continue
		}
		pts = append(pts, plotter.XY{X: x, Y: y})
	}
	return pts, nil
}
