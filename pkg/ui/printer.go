package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes advisory status lines. Colors are dropped automatically
// when the writer is not a terminal.
type Printer struct {
	out io.Writer

	title  lipgloss.Style
	ok     lipgloss.Style
	warn   lipgloss.Style
	fail   lipgloss.Style
	info   lipgloss.Style
	detail lipgloss.Style
}

func NewPrinter(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out:    out,
		title:  r.NewStyle().Bold(true),
		ok:     r.NewStyle().Foreground(lipgloss.Color("2")),
		warn:   r.NewStyle().Foreground(lipgloss.Color("3")),
		fail:   r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		info:   r.NewStyle().Foreground(lipgloss.Color("6")),
		detail: r.NewStyle().Faint(true),
	}
}

func (p *Printer) Title(format string, args ...interface{}) {
	fmt.Fprintln(p.out, p.title.Render(fmt.Sprintf(format, args...)))
}

func (p *Printer) OK(format string, args ...interface{}) {
	p.line(p.ok, "✓", format, args...)
}

func (p *Printer) Warn(format string, args ...interface{}) {
	p.line(p.warn, "!", format, args...)
}

func (p *Printer) Fail(format string, args ...interface{}) {
	p.line(p.fail, "✗", format, args...)
}

func (p *Printer) Info(format string, args ...interface{}) {
	p.line(p.info, "·", format, args...)
}

// Detail prints an indented secondary line under the previous status line.
func (p *Printer) Detail(format string, args ...interface{}) {
	fmt.Fprintln(p.out, "  "+p.detail.Render(fmt.Sprintf(format, args...)))
}

func (p *Printer) line(style lipgloss.Style, mark, format string, args ...interface{}) {
	fmt.Fprintf(p.out, "%s %s\n", style.Render(mark), fmt.Sprintf(format, args...))
}
