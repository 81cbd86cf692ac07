package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/debimpact/pkg/errors"
	"github.com/matzehuels/debimpact/pkg/resolve"
)

// Prompt styles
var (
	promptLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	promptInputStyle = lipgloss.NewStyle().Foreground(colorWhite)
	promptDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	promptErrStyle   = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// TargetPrompt - Interactive target entry
// =============================================================================

type promptStep int

const (
	stepTargets promptStep = iota
	stepFilter
)

// TargetPrompt is the bubbletea model that asks for target packages and
// whether architecture-independent packages should be left out.
type TargetPrompt struct {
	Mode          resolve.Mode
	Targets       []string
	FilterPureAll bool
	Done          bool
	Cancelled     bool

	step  promptStep
	input []rune
	err   string
}

// NewTargetPrompt creates a prompt. filter is the answer used when the
// filter question is confirmed with enter.
func NewTargetPrompt(mode resolve.Mode, filter bool) TargetPrompt {
	return TargetPrompt{Mode: mode, FilterPureAll: filter}
}

func (m TargetPrompt) Init() tea.Cmd {
	return nil
}

func (m TargetPrompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.Cancelled = true
		return m, tea.Quit
	}

	if m.step == stepTargets {
		switch key.Type {
		case tea.KeyRunes:
			m.input = append(m.input, key.Runes...)
			m.err = ""
		case tea.KeySpace:
			m.input = append(m.input, ' ')
		case tea.KeyBackspace:
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
			}
		case tea.KeyEnter:
			targets, err := errors.NormalizeTargets(errors.SplitTargets(string(m.input)))
			if err == nil {
				err = errors.ValidateDebianNames(targets)
			}
			if err != nil {
				m.err = errors.UserMessage(err)
				return m, nil
			}
			m.Targets = targets
			m.step = stepFilter
		}
		return m, nil
	}

	switch strings.ToLower(key.String()) {
	case "y":
		m.FilterPureAll = true
	case "n":
		m.FilterPureAll = false
	case "enter":
	default:
		return m, nil
	}
	m.Done = true
	return m, tea.Quit
}

func (m TargetPrompt) View() string {
	var b strings.Builder

	noun := "binary"
	if m.Mode == resolve.ModeSource {
		noun = "source"
	}
	b.WriteString(StyleTitle.Render("Reverse build-dependency analysis"))
	b.WriteString("\n\n")
	b.WriteString(promptLabelStyle.Render(fmt.Sprintf("Target %s packages", noun)))
	b.WriteString(promptDimStyle.Render(" (comma-separated)"))
	b.WriteString("\n")

	if m.step == stepTargets {
		b.WriteString("› " + promptInputStyle.Render(string(m.input)) + "█\n")
		if m.err != "" {
			b.WriteString(promptErrStyle.Render(m.err) + "\n")
		}
		b.WriteString("\n" + promptDimStyle.Render("enter: continue  esc: quit"))
		return b.String()
	}

	b.WriteString("› " + promptInputStyle.Render(strings.Join(m.Targets, ", ")) + "\n\n")
	def := "Y/n"
	if !m.FilterPureAll {
		def = "y/N"
	}
	b.WriteString(promptLabelStyle.Render("Exclude Architecture: all packages?"))
	b.WriteString(promptDimStyle.Render(" [" + def + "]"))
	b.WriteString("\n")
	return b.String()
}

// promptTargets runs the prompt on the terminal.
func promptTargets(ctx context.Context, mode resolve.Mode, filter bool) ([]string, bool, error) {
	p := tea.NewProgram(NewTargetPrompt(mode, filter), tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return nil, false, fmt.Errorf("prompt: %w", err)
	}
	m := final.(TargetPrompt)
	if m.Cancelled || !m.Done {
		return nil, false, context.Canceled
	}
	return m.Targets, m.FilterPureAll, nil
}
