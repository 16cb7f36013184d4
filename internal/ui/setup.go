package ui

import (
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rotisserie/eris"
	"golang.org/x/term"

	"github.com/ayyo42069/BRGBC/internal/utils"
)

var (
	ErrSelectionAborted = eris.New("selection aborted")
	ErrNoInteractiveTTY = eris.New("no interactive terminal available")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("213")).
			Bold(true)
	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("246"))
	pointerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("213"))
	inactivePointerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))
	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
	selectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("219")).
				Bold(true)
	instructionKeyStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("213")).
				Bold(true)
	instructionTextStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))
	instructionDividerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))
	summaryLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("246"))
	summaryValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Bold(true)
	emptyStateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// Option is one selectable row in a setup list.
type Option struct {
	Label string
}

// SetupConfig names which selections still need user input. Selections the
// caller already made via flags are skipped and their initial index is used
// as-is.
type SetupConfig struct {
	RequireStrip bool
	RequireInput bool
	InitialStrip int
	InitialInput int
}

// SetupResult carries the chosen indices into the strips and inputs slices.
type SetupResult struct {
	StripIndex int
	InputIndex int
}

// RunSetup walks the user through selecting an LED strip and an audio input
// device. It returns ErrNoInteractiveTTY when a selection is required but
// stdin/stdout is not a terminal.
func RunSetup(strips []Option, inputs []Option, cfg SetupConfig) (SetupResult, error) {
	if !cfg.RequireStrip && !cfg.RequireInput {
		return SetupResult{
			StripIndex: utils.ClampIndex(cfg.InitialStrip, len(strips)),
			InputIndex: utils.ClampIndex(cfg.InitialInput, len(inputs)),
		}, nil
	}

	if !isInteractiveTerminal() {
		return SetupResult{}, ErrNoInteractiveTTY
	}

	program := tea.NewProgram(newSetupModel(strips, inputs, cfg))
	finalModel, err := program.Run()
	if err != nil {
		return SetupResult{}, err
	}

	result := finalModel.(setupModel)
	if result.err != nil {
		return SetupResult{}, result.err
	}

	return SetupResult{
		StripIndex: utils.ClampIndex(result.stripIndex, len(strips)),
		InputIndex: utils.ClampIndex(result.inputIndex, len(inputs)),
	}, nil
}

type setupStep int

const (
	stepSelectStrip setupStep = iota
	stepSelectInput
	stepConfirm
	stepDone
)

type setupModel struct {
	step   setupStep
	cfg    SetupConfig
	strips []Option
	inputs []Option

	cursor     int
	stripIndex int
	inputIndex int
	err        error
}

func newSetupModel(strips []Option, inputs []Option, cfg SetupConfig) setupModel {
	m := setupModel{
		strips:     strips,
		inputs:     inputs,
		cfg:        cfg,
		stripIndex: utils.ClampIndex(cfg.InitialStrip, len(strips)),
		inputIndex: utils.ClampIndex(cfg.InitialInput, len(inputs)),
	}

	switch {
	case cfg.RequireStrip && len(strips) > 0:
		m.step = stepSelectStrip
		m.cursor = utils.ClampIndex(cfg.InitialStrip, len(strips))
	case cfg.RequireInput && len(inputs) > 0:
		m.step = stepSelectInput
		m.cursor = utils.ClampIndex(cfg.InitialInput, len(inputs))
	default:
		m.step = stepConfirm
	}

	return m
}

func (m setupModel) Init() tea.Cmd {
	return nil
}

func (m setupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.step == stepDone {
		return m, tea.Quit
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.err = ErrSelectionAborted
			return m, tea.Quit
		case "up", "k":
			items := m.currentItems()
			if len(items) > 0 {
				m.cursor = wrapIndex(m.cursor-1, len(items))
			}
		case "down", "j":
			items := m.currentItems()
			if len(items) > 0 {
				m.cursor = wrapIndex(m.cursor+1, len(items))
			}
		case "shift+tab", "left", "h":
			switch m.step {
			case stepSelectInput:
				if m.cfg.RequireStrip && len(m.strips) > 0 {
					m.inputIndex = m.cursor
					m.step = stepSelectStrip
					m.cursor = utils.ClampIndex(m.stripIndex, len(m.strips))
				}
			case stepConfirm:
				if m.cfg.RequireInput {
					m.step = stepSelectInput
					m.cursor = utils.ClampIndex(m.inputIndex, len(m.inputs))
				} else if m.cfg.RequireStrip {
					m.step = stepSelectStrip
					m.cursor = utils.ClampIndex(m.stripIndex, len(m.strips))
				}
			}
		case "enter":
			switch m.step {
			case stepSelectStrip:
				m.stripIndex = m.cursor
				if m.cfg.RequireInput && len(m.inputs) > 0 {
					m.step = stepSelectInput
					m.cursor = utils.ClampIndex(m.inputIndex, len(m.inputs))
				} else {
					m.step = stepConfirm
					m.cursor = 0
				}
			case stepSelectInput:
				m.inputIndex = m.cursor
				m.step = stepConfirm
				m.cursor = 0
			case stepConfirm:
				m.step = stepDone
				return m, tea.Quit
			}
		}
	}

	return m, nil
}

func (m setupModel) View() string {
	switch m.step {
	case stepSelectStrip:
		return renderStripPickView(m)
	case stepSelectInput:
		return renderInputView(m)
	case stepConfirm:
		return renderSummaryView(m)
	default:
		return ""
	}
}

func (m setupModel) currentItems() []Option {
	switch m.step {
	case stepSelectInput:
		return m.inputs
	case stepSelectStrip:
		return m.strips
	default:
		return nil
	}
}

func renderStripPickView(m setupModel) string {
	instructions := []string{"↑/k ↓/j move", "enter confirm", "esc cancel"}

	lines := []string{
		"",
		titleStyle.Render("Select an LED strip"),
		"",
		renderOptionList(m.strips, m.cursor),
		"",
		renderInstructions(instructions),
		"",
	}
	return strings.Join(lines, "\n")
}

func renderInputView(m setupModel) string {
	instructions := []string{"↑/k ↓/j move", "enter confirm"}
	if m.cfg.RequireStrip {
		instructions = append(instructions, "←/h back")
	}
	instructions = append(instructions, "esc cancel")

	lines := []string{
		"",
		titleStyle.Render("Select an audio input device"),
	}

	if m.cfg.RequireStrip {
		lines = append(lines,
			"",
			renderSummaryRow("Strip", m.selectedStripLabel()),
		)
	}

	lines = append(lines,
		"",
		renderOptionList(m.inputs, m.cursor),
		"",
		renderInstructions(instructions),
		"",
	)

	return strings.Join(lines, "\n")
}

func renderSummaryView(m setupModel) string {
	instructions := []string{"enter start", "←/h edit", "esc cancel"}

	lines := []string{
		"",
		titleStyle.Render("Ready to start"),
		"",
		renderSummaryRow("Strip", m.selectedStripLabel()),
		renderSummaryRow("Input", m.selectedInputLabel()),
		"",
		renderInstructions(instructions),
		"",
	}
	return strings.Join(lines, "\n")
}

func (m setupModel) selectedStripLabel() string {
	if m.stripIndex >= 0 && m.stripIndex < len(m.strips) {
		return m.strips[m.stripIndex].Label
	}
	return "not selected"
}

func (m setupModel) selectedInputLabel() string {
	if m.inputIndex >= 0 && m.inputIndex < len(m.inputs) {
		return m.inputs[m.inputIndex].Label
	}
	return "not selected"
}

func renderPointer(active bool) string {
	if active {
		return pointerStyle.Render("›")
	}
	return inactivePointerStyle.Render(" ")
}

func renderOptionLabel(text string, active bool) string {
	if active {
		return selectedItemStyle.Render(text)
	}
	return itemStyle.Render(text)
}

func renderOptionList(items []Option, cursor int) string {
	if len(items) == 0 {
		return emptyStateStyle.Render("No options detected")
	}

	rows := make([]string, len(items))
	for i, item := range items {
		rows[i] = lipgloss.JoinHorizontal(lipgloss.Left,
			renderPointer(cursor == i),
			" ",
			renderOptionLabel(item.Label, cursor == i),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderInstructions(parts []string) string {
	if len(parts) == 0 {
		return ""
	}

	if len(parts) == 1 {
		return renderInstruction(parts[0])
	}

	var segments []string
	for i, part := range parts {
		if i > 0 {
			segments = append(segments, instructionDividerStyle.Render(" · "))
		}
		segments = append(segments, renderInstruction(part))
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, segments...)
}

func renderInstruction(part string) string {
	tokens := strings.Fields(part)
	if len(tokens) == 0 {
		return ""
	}
	if len(tokens) == 1 {
		return instructionTextStyle.Render(tokens[0])
	}

	var segments []string
	keyTokens := tokens[:len(tokens)-1]
	for i, token := range keyTokens {
		if i > 0 {
			segments = append(segments, instructionTextStyle.Render(" "))
		}
		segments = append(segments, instructionKeyStyle.Render(token))
	}
	segments = append(segments, instructionTextStyle.Render(" "))
	segments = append(segments, instructionTextStyle.Render(tokens[len(tokens)-1]))
	return lipgloss.JoinHorizontal(lipgloss.Left, segments...)
}

func renderSummaryRow(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Left,
		summaryLabelStyle.Render(label+": "),
		summaryValueStyle.Render(value),
	)
}

func wrapIndex(idx, length int) int {
	if length <= 0 {
		return 0
	}
	idx = idx % length
	if idx < 0 {
		idx += length
	}
	return idx
}

func isInteractiveTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
