// Package tui is an interactive terminal tuner for the offset of a running
// autobrightd.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	refreshInterval = 500 * time.Millisecond
	callTimeout     = 2 * time.Second
	barWidth        = 40
)

// Backend is the subset of the D-Bus client the tuner uses.
type Backend interface {
	Increase(ctx context.Context, value int) (string, error)
	Decrease(ctx context.Context, value int) (string, error)
	Offset(ctx context.Context) (int, error)
	Brightness(ctx context.Context) (int, error)
}

type keyMap struct {
	Increase key.Binding
	Decrease key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Increase, k.Decrease, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultKeys() keyMap {
	return keyMap{
		Increase: key.NewBinding(key.WithKeys("up", "k", "+"), key.WithHelp("↑/k/+", "increase")),
		Decrease: key.NewBinding(key.WithKeys("down", "j", "-"), key.WithHelp("↓/j/-", "decrease")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q/esc", "quit")),
	}
}

type Model struct {
	backend Backend
	watch   <-chan int
	step    int
	minimum int
	maximum int

	offset     int
	brightness int
	status     string
	err        error
	loaded     bool

	styles   Styles
	keys     keyMap
	help     help.Model
	progress progress.Model
}

// NewModel builds the tuner. watch may be nil; when set, offset changes made
// elsewhere (tray, other clients) show up immediately.
func NewModel(backend Backend, watch <-chan int, step, minimum, maximum int) Model {
	styles := NewStyles(AmberTheme())
	return Model{
		backend:  backend,
		watch:    watch,
		step:     step,
		minimum:  minimum,
		maximum:  maximum,
		styles:   styles,
		keys:     defaultKeys(),
		help:     help.New(),
		progress: styles.NewThemedProgress(barWidth),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchStatus(), m.scheduleRefresh(), m.waitForOffset())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Increase):
			return m, m.adjust(m.step)
		case key.Matches(msg, m.keys.Decrease):
			return m, m.adjust(-m.step)
		}

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case statusMsg:
		m.err = msg.err
		if msg.err == nil {
			m.offset = msg.offset
			m.brightness = msg.brightness
			m.loaded = true
		}
		return m, nil

	case adjustedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = msg.status
		}
		return m, m.fetchStatus()

	case offsetChangedMsg:
		m.offset = msg.offset
		return m, m.waitForOffset()

	case refreshTickMsg:
		return m, tea.Batch(m.fetchStatus(), m.scheduleRefresh())
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Autobright tuner"))
	b.WriteString("\n")

	if !m.loaded && m.err == nil {
		b.WriteString(m.styles.Subtle.Render("  connecting to autobrightd..."))
		b.WriteString("\n")
	} else {
		b.WriteString(fmt.Sprintf("  %s %s\n",
			m.styles.Normal.Render("Offset:    "),
			m.styles.Bold.Render(fmt.Sprintf("%+d", m.offset))))
		b.WriteString(fmt.Sprintf("  %s %s %s\n",
			m.styles.Normal.Render("Brightness:"),
			m.progress.ViewAs(m.fraction()),
			m.styles.Bold.Render(fmt.Sprintf("%d", m.brightness))))
		b.WriteString(fmt.Sprintf("  %s\n",
			m.styles.Subtle.Render(fmt.Sprintf("range %d..%d, step %d", m.minimum, m.maximum, m.step))))
	}

	if m.err != nil {
		b.WriteString("\n  ")
		b.WriteString(m.styles.Error.Render(m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n  ")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

// fraction maps the brightness onto [0,1] for the progress bar.
func (m Model) fraction() float64 {
	span := m.maximum - m.minimum
	if span <= 0 {
		return 1
	}
	f := float64(m.brightness-m.minimum) / float64(span)
	return max(0, min(1, f))
}

func (m Model) adjust(delta int) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()

		var (
			status string
			err    error
		)
		if delta >= 0 {
			status, err = backend.Increase(ctx, delta)
		} else {
			status, err = backend.Decrease(ctx, -delta)
		}
		return adjustedMsg{status: status, err: err}
	}
}

func (m Model) fetchStatus() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()

		off, err := backend.Offset(ctx)
		if err != nil {
			return statusMsg{err: err}
		}
		b, err := backend.Brightness(ctx)
		if err != nil {
			return statusMsg{err: err}
		}
		return statusMsg{offset: off, brightness: b}
	}
}

func (m Model) scheduleRefresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

func (m Model) waitForOffset() tea.Cmd {
	if m.watch == nil {
		return nil
	}
	watch := m.watch
	return func() tea.Msg {
		v, ok := <-watch
		if !ok {
			return nil
		}
		return offsetChangedMsg{offset: v}
	}
}
