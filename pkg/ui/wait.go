package ui

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Waiter blocks for a bounded period, returning early if ctx ends.
type Waiter interface {
	Wait(ctx context.Context, d time.Duration, label string) error
}

type SleepWaiter struct{}

func (SleepWaiter) Wait(ctx context.Context, d time.Duration, _ string) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SpinnerWaiter shows a spinner with label on a terminal for the wait duration.
type SpinnerWaiter struct {
	Out io.Writer
}

type waitDoneMsg struct{}

type waitModel struct {
	spinner spinner.Model
	label   string
	d       time.Duration
	done    bool
}

func (m waitModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.Tick(m.d, func(time.Time) tea.Msg { return waitDoneMsg{} }))
}

func (m waitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case waitDoneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.done = true
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m waitModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.label + "\n"
}

func (w SpinnerWaiter) Wait(ctx context.Context, d time.Duration, label string) error {
	if d <= 0 {
		return nil
	}
	m := waitModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		label:   label,
		d:       d,
	}
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithOutput(w.Out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Terminal trouble should not shorten the grace period.
		return SleepWaiter{}.Wait(ctx, d, label)
	}
	return nil
}
