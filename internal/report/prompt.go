package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// Prompter asks the user yes/no questions
type Prompter interface {
	Confirm(message string, def bool) (bool, error)
}

// Answer is a Prompter that always returns the same answer without asking
type Answer bool

// Confirm returns the fixed answer
func (a Answer) Confirm(string, bool) (bool, error) {
	return bool(a), nil
}

// TerminalPrompter reads answers from In. When In is a terminal the question
// is run as a single-key bubbletea prompt, otherwise answers are read line by line.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer
}

// NewTerminalPrompter prompts on stdin/stdout
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stdout}
}

// Confirm returns def when the user just presses enter or input ends
func (p *TerminalPrompter) Confirm(message string, def bool) (bool, error) {
	if IsTerminal(p.In) {
		return p.confirmInteractive(message, def)
	}
	return p.confirmLines(message, def)
}

func (p *TerminalPrompter) confirmLines(message string, def bool) (bool, error) {
	reader := bufio.NewReader(p.In)
	for {
		fmt.Fprintf(p.Out, "%s [%s]: ", message, hint(def))
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}

		answer, ok := parseAnswer(line, def)
		if ok {
			return answer, nil
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.Out)
			return def, nil
		}
		fmt.Fprintln(p.Out, "Error: invalid input")
	}
}

func (p *TerminalPrompter) confirmInteractive(message string, def bool) (bool, error) {
	prog := tea.NewProgram(confirmModel{message: message, def: def},
		tea.WithInput(p.In), tea.WithOutput(p.Out))
	final, err := prog.Run()
	if err != nil {
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}
	m, ok := final.(confirmModel)
	if !ok || m.aborted {
		return false, nil
	}
	return m.answer, nil
}

// parseAnswer maps a typed line onto yes/no; ok is false for unrecognised input
func parseAnswer(line string, def bool) (answer bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
		return def, true
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	}
	return false, false
}

func hint(def bool) string {
	if def {
		return "Y/n"
	}
	return "y/N"
}

// IsTerminal reports whether r is a file attached to a terminal
func IsTerminal(r interface{}) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type confirmModel struct {
	message string
	def     bool
	answer  bool
	done    bool
	aborted bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "y", "Y":
		m.answer, m.done = true, true
	case "n", "N":
		m.answer, m.done = false, true
	case "enter":
		m.answer, m.done = m.def, true
	case "ctrl+c", "esc":
		m.aborted = true
		return m, tea.Quit
	default:
		return m, nil
	}
	return m, tea.Quit
}

func (m confirmModel) View() string {
	if m.done {
		answer := "No"
		if m.answer {
			answer = "Yes"
		}
		return fmt.Sprintf("%s %s\n", m.message, answer)
	}
	if m.aborted {
		return fmt.Sprintf("%s\n", m.message)
	}
	return fmt.Sprintf("%s [%s]: ", m.message, hint(m.def))
}
