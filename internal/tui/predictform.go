package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smartpaddy/advisor/internal/predict"
	"github.com/smartpaddy/advisor/internal/report"
	"github.com/smartpaddy/advisor/pkg/domain"
)

type predictionDoneMsg struct {
	out predict.Outcome
}

type copyResultMsg struct {
	err error
}

// copyToClipboard is swapped out in tests.
var copyToClipboard = clipboard.WriteAll

var fieldPlaceholders = [predict.NumFields]string{"28", "6.5", "120", "0.5", "75"}

type predictModel struct {
	predictor predict.Predictor
	inputs    [predict.NumFields]textinput.Model
	focus     predict.Field
	editing   bool
	orch      predict.Orchestrator
	spinner   spinner.Model
	formErr   string
	status    string
	width     int
}

func newPredictModel(p predict.Predictor) predictModel {
	m := predictModel{predictor: p, editing: true}
	for f := predict.Field(0); f < predict.NumFields; f++ {
		ti := textinput.New()
		ti.Placeholder = fieldPlaceholders[f]
		ti.Prompt = ""
		ti.CharLimit = 24
		ti.Width = 14
		ti.PlaceholderStyle = inputPlaceholderStyle
		m.inputs[f] = ti
	}
	m.inputs[predict.FieldTemperature].Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle
	m.spinner = sp
	return m
}

func (m predictModel) Init() tea.Cmd {
	return textinput.Blink
}

// detach drops the in-flight cycle, if any.
func (m *predictModel) detach() {
	m.orch.Detach()
}

func (m predictModel) form() predict.Form {
	var f predict.Form
	for i := range m.inputs {
		f[i] = m.inputs[i].Value()
	}
	return f
}

func (m predictModel) Update(msg tea.Msg) (predictModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.orch.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case predictionDoneMsg:
		if !m.orch.Apply(msg.out) {
			return m, nil
		}
		if e := m.orch.Err(); e != nil {
			return m, expireIfUnauthorized(e)
		}
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			m.status = "Copy failed: " + msg.err.Error()
		} else {
			m.status = "Recommendation copied to clipboard"
		}
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateNav(msg)
	}

	if m.editing {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m predictModel) updateEditing(msg tea.KeyMsg) (predictModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		m.inputs[m.focus].Blur()
		return m, nil
	case "tab", "down":
		return m.focusField((m.focus + 1) % predict.NumFields), nil
	case "shift+tab", "up":
		return m.focusField((m.focus - 1 + predict.NumFields) % predict.NumFields), nil
	case "ctrl+s":
		return m.submit()
	case "enter":
		if m.focus == predict.NumFields-1 {
			return m.submit()
		}
		return m.focusField(m.focus + 1), nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m predictModel) updateNav(msg tea.KeyMsg) (predictModel, tea.Cmd) {
	switch msg.String() {
	case "enter", "i":
		m.editing = true
		return m.focusField(m.focus), nil
	case "ctrl+s":
		return m.submit()
	case "c":
		view, ok := m.orch.View()
		if !ok {
			return m, nil
		}
		text := report.PlainText(view)
		return m, func() tea.Msg {
			return copyResultMsg{err: copyToClipboard(text)}
		}
	}
	return m, nil
}

func (m predictModel) focusField(f predict.Field) predictModel {
	m.focus = f
	for i := range m.inputs {
		if predict.Field(i) == f {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return m
}

func (m predictModel) submit() (predictModel, tea.Cmd) {
	sub, err := m.orch.Begin(m.form())
	if errors.Is(err, predict.ErrBusy) {
		return m, nil
	}
	var verr *predict.ValidationError
	if errors.As(err, &verr) {
		m.formErr = verr.Error()
		m.editing = true
		return m.focusField(verr.Field), nil
	}
	if err != nil {
		m.formErr = err.Error()
		return m, nil
	}

	m.formErr = ""
	m.status = ""
	p := m.predictor
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		return predictionDoneMsg{out: predict.Run(context.Background(), p, sub)}
	})
}

func (m predictModel) View() string {
	var b strings.Builder
	for f := predict.Field(0); f < predict.NumFields; f++ {
		cursor := " "
		if m.editing && f == m.focus {
			cursor = inputPromptStyle.Render(">")
		}
		fmt.Fprintf(&b, " %s %s %s\n", cursor, labelStyle.Render(f.Label()), m.inputs[f].View())
	}
	b.WriteString("\n")

	if m.orch.Busy() {
		b.WriteString("   " + buttonDisabledStyle.Render(m.spinner.View()+" Predicting...") + "\n")
	} else {
		b.WriteString("   " + buttonStyle.Render("Get Recommendation") + "\n")
	}
	if m.formErr != "" {
		b.WriteString("\n   " + errorStyle.Render(m.formErr) + "\n")
	}
	if e := m.orch.Err(); e != nil {
		b.WriteString("\n   " + errorStyle.Render(e.Message) + "\n")
	}
	if view, ok := m.orch.View(); ok {
		b.WriteString("\n" + renderStageView(view, m.width))
	}
	if m.status != "" {
		b.WriteString("\n   " + dimStyle.Render(m.status) + "\n")
	}
	return b.String()
}

// renderStageView draws one card per stage followed by the fertilizer card.
func renderStageView(view domain.StageView, width int) string {
	cardWidth := width - 6
	if cardWidth < 30 {
		cardWidth = 30
	}

	var b strings.Builder
	b.WriteString("   " + sectionHeaderStyle.Render("Cultivation Plan") + "\n")
	for _, s := range view.Stages {
		var lines []string
		lines = append(lines, sectionHeaderStyle.Render(s.Name))
		if len(s.Fields) == 0 {
			lines = append(lines, dimStyle.Render("no recommendations"))
		}
		for _, f := range s.Fields {
			value := truncStr(domain.FormatValue(f.Value), cardWidth-lipgloss.Width(f.Label)-4)
			lines = append(lines, dimStyle.Render(f.Label+": ")+normalStyle.Render(value))
		}
		b.WriteString(indent(stageCardStyle.Width(cardWidth).Render(strings.Join(lines, "\n")), 3) + "\n")
	}

	if nutrients := report.Nutrients(view.Fertilizer); nutrients != nil {
		lines := []string{goldStyle.Bold(true).Render("Fertilizer Recommendation")}
		for _, n := range nutrients {
			lines = append(lines, dimStyle.Render(n.Name+": ")+normalStyle.Render(n.Amount+" kg"))
		}
		b.WriteString(indent(fertilizerCardStyle.Width(cardWidth).Render(strings.Join(lines, "\n")), 3) + "\n")
	}
	return b.String()
}

func indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	return pad + strings.ReplaceAll(s, "\n", "\n"+pad)
}

func (m predictModel) helpKeys() string {
	if m.editing {
		return helpEntry("tab", "next") + "  " + helpEntry("enter", "next/submit") + "  " + helpEntry("ctrl+s", "submit") + "  " + helpEntry("esc", "nav")
	}
	keys := helpEntry("1-2", "tabs") + "  " + helpEntry("enter", "edit") + "  " + helpEntry("ctrl+s", "submit")
	if _, ok := m.orch.View(); ok {
		keys += "  " + helpEntry("c", "copy")
	}
	return keys + "  " + helpEntry("L", "logout") + "  " + helpEntry("q", "quit")
}
