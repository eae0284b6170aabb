// Package tui renders resolution progress in the terminal.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/vidlink-cli/vidlink/color"
	"github.com/vidlink-cli/vidlink/icon"
	"github.com/vidlink-cli/vidlink/pipeline"
	"github.com/vidlink-cli/vidlink/style"
)

var paddingStyle = lipgloss.NewStyle().Padding(1, 2)

type (
	eventMsg pipeline.Event
	doneMsg  struct{}
)

// attempt is the last known state of one provider.
type attempt struct {
	provider string
	state    pipeline.State
	err      error
}

type model struct {
	title    string
	spinnerC spinner.Model
	attempts []*attempt
	events   <-chan pipeline.Event
	done     <-chan struct{}
	cancel   context.CancelFunc
	width    int
	aborted  bool
}

func newModel(title string, events <-chan pipeline.Event, done <-chan struct{}, cancel context.CancelFunc) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(color.Accent)

	return &model{
		title:    title,
		spinnerC: s,
		events:   events,
		done:     done,
		cancel:   cancel,
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinnerC.Tick, m.wait())
}

// wait delivers the next event, or doneMsg once the resolution returned and every event was drained.
func (m *model) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case e := <-m.events:
			return eventMsg(e)
		case <-m.done:
			select {
			case e := <-m.events:
				return eventMsg(e)
			default:
				return doneMsg{}
			}
		}
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			m.aborted = true
			m.cancel()
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case eventMsg:
		m.record(pipeline.Event(msg))
		return m, m.wait()
	case doneMsg:
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinnerC, cmd = m.spinnerC.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *model) record(e pipeline.Event) {
	if n := len(m.attempts); n > 0 && m.attempts[n-1].provider == e.Provider {
		m.attempts[n-1].state = e.State
		m.attempts[n-1].err = e.Err
		return
	}
	m.attempts = append(m.attempts, &attempt{provider: e.Provider, state: e.State, err: e.Err})
}

func (m *model) View() string {
	lines := []string{style.Title(m.title), ""}

	for _, a := range m.attempts {
		var line string
		switch {
		case !a.state.Terminal():
			line = fmt.Sprintf("%s %s %s", m.spinnerC.View(), style.Provider(a.provider), style.Faint(a.state.String()))
		case a.state == pipeline.StateFailed:
			reason := ""
			if a.err != nil {
				reason = a.err.Error()
			}
			line = fmt.Sprintf("%s %s %s", icon.Get(icon.Fail), style.Provider(a.provider), style.Failure(reason))
		default:
			line = fmt.Sprintf("%s %s", icon.Get(icon.Success), style.Provider(a.provider))
		}

		if m.width > 4 {
			line = truncate.StringWithTail(line, uint(m.width-4), "…")
		}
		lines = append(lines, line)
	}

	if len(m.attempts) == 0 {
		lines = append(lines, m.spinnerC.View()+" "+style.Faint("starting"))
	}

	return paddingStyle.Render(strings.Join(lines, "\n"))
}

// Run calls fn while rendering the progress of each provider attempt on stderr.
// fn must hand the observer to the pipeline. Pressing q or ctrl+c cancels ctx.
func Run[T any](ctx context.Context, title string, fn func(ctx context.Context, observer pipeline.Observer) (T, error)) (T, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan pipeline.Event, 64)
	done := make(chan struct{})

	var (
		result T
		err    error
	)

	go func() {
		defer close(done)
		result, err = fn(ctx, func(e pipeline.Event) {
			select {
			case events <- e:
			case <-ctx.Done():
			}
		})
	}()

	m := newModel(title, events, done, cancel)
	_, runErr := tea.NewProgram(m, tea.WithOutput(os.Stderr)).Run()

	// the UI may be gone before the resolution returns
	go func() {
		for {
			select {
			case <-events:
			case <-done:
				return
			}
		}
	}()
	<-done

	switch {
	case err != nil:
		return result, err
	case m.aborted:
		return result, context.Canceled
	case runErr != nil:
		return result, runErr
	}
	return result, nil
}
