// Package report carries all user-facing console output. Components receive
// a Reporter instead of printing, so tests can capture what a command says.
package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Reporter is the output capability handed to commands and engines
type Reporter interface {
	// Success prints a line prefixed with a check mark
	Success(msg string)
	// Error prints a line prefixed with a cross
	Error(msg string)
	// Warning prints a line prefixed with a warning sign
	Warning(msg string)
	// Info prints a line prefixed with an info marker
	Info(msg string)
	// Step prints an indented progress line for one item of a batch
	Step(msg string)
	// Heading prints a bold heading line
	Heading(msg string)
	// Println prints a plain line
	Println(msg string)
	// Table prints a titled table
	Table(title string, headers []string, rows [][]string, aligns []Align)
}

type styles struct {
	success lipgloss.Style
	err     lipgloss.Style
	warning lipgloss.Style
	info    lipgloss.Style
	step    lipgloss.Style
	heading lipgloss.Style
}

// Console is the Reporter used by the CLI. Colors are emitted only when the
// writer is a terminal that supports them.
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	styles styles
}

// NewConsole creates a console reporter writing to out
func NewConsole(out io.Writer) *Console {
	r := lipgloss.NewRenderer(out)
	return &Console{
		out: out,
		styles: styles{
			success: r.NewStyle().Foreground(lipgloss.Color("2")),
			err:     r.NewStyle().Foreground(lipgloss.Color("1")),
			warning: r.NewStyle().Foreground(lipgloss.Color("3")),
			info:    r.NewStyle().Foreground(lipgloss.Color("4")),
			step:    r.NewStyle().Foreground(lipgloss.Color("6")),
			heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("4")),
		},
	}
}

// Success prints msg after a green check mark
func (c *Console) Success(msg string) {
	c.write(c.styles.success.Render("✓") + " " + msg)
}

// Error prints msg after a red cross
func (c *Console) Error(msg string) {
	c.write(c.styles.err.Render("✗") + " " + msg)
}

// Warning prints msg after a yellow warning sign
func (c *Console) Warning(msg string) {
	c.write(c.styles.warning.Render("⚠") + " " + msg)
}

// Info prints msg after a blue info marker
func (c *Console) Info(msg string) {
	c.write(c.styles.info.Render("ℹ") + " " + msg)
}

// Step prints an indented arrow line
func (c *Console) Step(msg string) {
	c.write("  " + c.styles.step.Render("→") + " " + msg)
}

// Heading prints msg in bold
func (c *Console) Heading(msg string) {
	c.write(c.styles.heading.Render(msg))
}

// Println prints msg unstyled
func (c *Console) Println(msg string) {
	c.write(msg)
}

// Table renders a bordered table
func (c *Console) Table(title string, headers []string, rows [][]string, aligns []Align) {
	c.write(RenderTable(title, headers, rows, aligns))
}

func (c *Console) write(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, line)
}

// Discard is a Reporter that drops everything
var Discard Reporter = NewConsole(io.Discard)
