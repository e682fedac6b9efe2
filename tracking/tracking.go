// Package tracking is the external iteration-tracking collaborator the core
// training loop in elcs delegates to: it observes
// elcs.IterationReport values without the core ever depending on it.
package tracking

import (
	"encoding/csv"
	"io"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/lcslab/go-elcs/elcs"
)

// MovingAverage implements elcs.Recorder with a sliding window over
// accuracy and generality, mirroring skeLCS.py's trackingAccuracy /
// movingAvgCount=50 bookkeeping. Construct it with NewMovingAverage, which
// substitutes 50 for a zero window.
type MovingAverage struct {
	Window int

	reports []elcs.IterationReport
	head    int
	full    bool
}

// NewMovingAverage returns a Recorder with the given window size (0 means
// the eLCS.py default of 50).
func NewMovingAverage(window int) *MovingAverage {
	if window <= 0 {
		window = 50
	}
	return &MovingAverage{Window: window, reports: make([]elcs.IterationReport, window)}
}

func (m *MovingAverage) Record(r elcs.IterationReport) {
	m.reports[m.head] = r
	m.head = (m.head + 1) % m.Window
	if m.head == 0 {
		m.full = true
	}
}

func (m *MovingAverage) window() []elcs.IterationReport {
	if m.full {
		return m.reports
	}
	return m.reports[:m.head]
}

// Accuracy returns the rolling mean accuracy over the window, computed with
// gonum/stat.Mean rather than a hand-rolled running sum.
func (m *MovingAverage) Accuracy() float64 {
	w := m.window()
	if len(w) == 0 {
		return 0
	}
	vals := make([]float64, len(w))
	for i, r := range w {
		vals[i] = r.Accuracy
	}
	return stat.Mean(vals, nil)
}

// Generality returns the rolling mean population generality over the window.
func (m *MovingAverage) Generality() float64 {
	w := m.window()
	if len(w) == 0 {
		return 0
	}
	vals := make([]float64, len(w))
	for i, r := range w {
		vals[i] = r.AveGenerality
	}
	return stat.Mean(vals, nil)
}

// CSVRecorder wraps a MovingAverage and additionally streams every
// iteration's report to a CSV writer, grounding "CSV export"
// external collaborator carve-out.
type CSVRecorder struct {
	*MovingAverage
	w          *csv.Writer
	wroteHeader bool
}

// NewCSVRecorder wraps dst with a CSV writer; window follows MovingAverage's
// zero-means-50 rule.
func NewCSVRecorder(dst io.Writer, window int) *CSVRecorder {
	return &CSVRecorder{MovingAverage: NewMovingAverage(window), w: csv.NewWriter(dst)}
}

func (c *CSVRecorder) Record(r elcs.IterationReport) {
	c.MovingAverage.Record(r)
	if !c.wroteHeader {
		_ = c.w.Write([]string{"iteration", "match_set_size", "correct_set_size", "pop_size", "micro_pop_size", "accuracy", "ave_generality", "rolling_accuracy"})
		c.wroteHeader = true
	}
	_ = c.w.Write([]string{
		strconv.Itoa(r.Iteration),
		strconv.Itoa(r.MatchSetSize),
		strconv.Itoa(r.CorrectSetSize),
		strconv.Itoa(r.PopSize),
		strconv.Itoa(r.MicroPopSize),
		strconv.FormatFloat(r.Accuracy, 'g', -1, 64),
		strconv.FormatFloat(r.AveGenerality, 'g', -1, 64),
		strconv.FormatFloat(c.MovingAverage.Accuracy(), 'g', -1, 64),
	})
	c.w.Flush()
}
