// Package tui is a live training-progress dashboard, a bubbletea-based
// external collaborator kept separate from the core training loop. It is
// modeled on stojg-playlist-sorter/cli.go's
// progress-channel pattern (a goroutine runs the long task and streams
// updates over a channel while the UI loop renders them) and its tui/
// package's use of bubbletea/bubbles/lipgloss, generalized from GA-fitness
// progress to elcs.IterationReport progress.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lcslab/go-elcs/elcs"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	statStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// Update is sent over the channel passed to Run each time TrainLoop records
// an iteration.
type Update struct {
	Report elcs.IterationReport
	Done   bool
}

// ChannelRecorder implements elcs.Recorder by forwarding every report onto a
// channel for the dashboard (or any other consumer) to read, mirroring the
// GAUpdate channel idiom in stojg-playlist-sorter/cli.go.
type ChannelRecorder struct {
	Updates chan<- Update
}

func (c ChannelRecorder) Record(r elcs.IterationReport) {
	c.Updates <- Update{Report: r}
}

type model struct {
	updates  <-chan Update
	total    int
	last     elcs.IterationReport
	bar      progress.Model
	finished bool
}

// New constructs the dashboard's bubbletea model. total is the configured
// LearningIterations, used to size the progress bar.
func New(updates <-chan Update, total int) tea.Model {
	return model{updates: updates, total: total, bar: progress.New(progress.WithDefaultGradient())}
}

func (m model) Init() tea.Cmd {
	return waitForUpdate(m.updates)
}

func waitForUpdate(updates <-chan Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return Update{Done: true}
		}
		return u
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case Update:
		if msg.Done {
			m.finished = true
			return m, tea.Quit
		}
		m.last = msg.Report
		return m, waitForUpdate(m.updates)
	}
	return m, nil
}

func (m model) View() string {
	if m.finished {
		return statStyle.Render("training complete\n")
	}
	frac := 0.0
	if m.total > 0 {
		frac = float64(m.last.Iteration) / float64(m.total)
	}
	return fmt.Sprintf(
		"%s\n%s\n%s\n",
		titleStyle.Render("go-elcs training"),
		m.bar.ViewAs(frac),
		statStyle.Render(fmt.Sprintf(
			"iteration %d/%d  pop=%d (micro=%d)  match=%d correct=%d  accuracy=%.4f generality=%.4f  covering=%d",
			m.last.Iteration, m.total, m.last.PopSize, m.last.MicroPopSize,
			m.last.MatchSetSize, m.last.CorrectSetSize, m.last.Accuracy, m.last.AveGenerality,
			m.last.CoveringCount,
		)),
	)
}

// Run drives the dashboard until the updates channel closes or the user
// quits.
func Run(updates <-chan Update, total int) error {
	_, err := tea.NewProgram(New(updates, total)).Run()
	return err
}
