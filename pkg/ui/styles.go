package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	WarnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	InfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	ActiveStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
)

// Printer writes status lines to w. A nil writer discards everything.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = io.Discard
	}
	return &Printer{w: w}
}

func (p *Printer) Plain(format string, args ...any) {
	fmt.Fprintln(p.w, fmt.Sprintf(format, args...))
}

func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.w, SuccessStyle.Render(fmt.Sprintf(format, args...)))
}

func (p *Printer) Error(format string, args ...any) {
	fmt.Fprintln(p.w, ErrorStyle.Render(fmt.Sprintf(format, args...)))
}

func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintln(p.w, WarnStyle.Render(fmt.Sprintf(format, args...)))
}

func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintln(p.w, InfoStyle.Render(fmt.Sprintf(format, args...)))
}
