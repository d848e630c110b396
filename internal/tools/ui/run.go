package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const defaultTimeout = 2 * time.Minute

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

type actionMsg struct {
	details []string
	err     error
	elapsed time.Duration
}

type model struct {
	title   string
	timeout time.Duration
	details []string
	err     error
	elapsed time.Duration
	done    bool
	action  func(context.Context) ([]string, error)
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		timeout := m.timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		start := time.Now()
		details, err := m.action(ctx)
		return actionMsg{details: details, err: err, elapsed: time.Since(start)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if !m.done {
				m.err = context.Canceled
			}
			return m, tea.Quit
		}
	case actionMsg:
		m.details = msg.details
		m.err = msg.err
		m.elapsed = msg.elapsed
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	if !m.done {
		b.WriteString("\nRunning...\n")
		return b.String()
	}
	if m.err != nil {
		fmt.Fprintf(&b, "%s: %v\n", failStyle.Render("FAILED"), m.err)
	} else {
		b.WriteString(okStyle.Render("OK"))
		b.WriteString("\n")
	}
	for _, d := range m.details {
		b.WriteString("- " + d + "\n")
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("took %s", m.elapsed.Round(time.Millisecond))))
	b.WriteString("\n")
	return b.String()
}

// Run renders action progress in the terminal with the default timeout.
func Run(title string, action func(context.Context) ([]string, error)) ([]string, error) {
	return RunWithTimeout(title, defaultTimeout, action)
}

func RunWithTimeout(title string, timeout time.Duration, action func(context.Context) ([]string, error)) ([]string, error) {
	m := model{title: title, timeout: timeout, action: action}
	p := tea.NewProgram(m)
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	res := final.(model)
	return res.details, res.err
}
