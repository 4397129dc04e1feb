// Package watch shows a fragment in the terminal while its deferred values
// settle.
package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/stamp/log"
	"github.com/ardnew/stamp/tmpl"
)

// Styles.
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	docStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

const defaultWidth = 80

// changedMsg is sent after one or more placeholders settle.
type changedMsg struct{}

// settledMsg is sent once every placeholder has settled or failed.
type settledMsg struct{ err error }

// model is the Bubble Tea model of the live view.
type model struct {
	frag     *tmpl.Fragment
	logger   log.Logger
	spinner  spinner.Model
	title    string
	doc      string
	pending  int
	width    int
	settled  bool
	canceled bool
	err      error
}

func newModel(frag *tmpl.Fragment, title string, logger log.Logger) model {
	return model{
		frag:   frag,
		logger: logger,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(pendingStyle),
		),
		title:   title,
		doc:     frag.String(),
		pending: frag.Pending(),
		width:   defaultWidth,
	}
}

// Run shows frag on out until all of its placeholders settle or the user
// quits. Quitting cancels the placeholders still pending. Run returns the
// first placeholder failure.
func Run(ctx context.Context, frag *tmpl.Fragment, title string, out io.Writer) error {
	m := newModel(frag, title, log.Default())

	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithOutput(out))

	final, err := p.Run()
	if err != nil {
		return err
	}

	if fm, ok := final.(model); ok {
		return fm.err
	}

	return nil
}

// wait returns a command that blocks until frag changes or settles.
func wait(frag *tmpl.Fragment) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-frag.Changed():
			return changedMsg{}
		case <-frag.Done():
			return settledMsg{err: frag.Err()}
		}
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, wait(m.frag))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.frag.Cancel()
			m.canceled = true

			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case changedMsg:
		m.refresh()
		m.logger.Debug("watch refresh", slog.Int("pending", m.pending))

		return m, wait(m.frag)

	case settledMsg:
		m.refresh()
		m.settled = true
		m.err = msg.err

		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd

		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m *model) refresh() {
	m.doc = m.frag.String()
	m.pending = m.frag.Pending()
}

func (m model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteByte(' ')

	switch {
	case m.err != nil:
		sb.WriteString(errorStyle.Render("✗ " + m.err.Error()))
	case m.settled:
		sb.WriteString(doneStyle.Render("✔ settled"))
	case m.canceled:
		sb.WriteString(errorStyle.Render("✗ canceled"))
	default:
		sb.WriteString(m.spinner.View())
		sb.WriteString(pendingStyle.Render(fmt.Sprintf("%d pending", m.pending)))
	}

	sb.WriteByte('\n')
	sb.WriteString(docStyle.Width(max(m.width-2, 1)).Render(m.doc))
	sb.WriteByte('\n')

	if !m.settled && !m.canceled {
		sb.WriteString(hintStyle.Render("q: quit"))
		sb.WriteByte('\n')
	}

	return sb.String()
}
