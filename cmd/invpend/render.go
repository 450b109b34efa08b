package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/milosgajdos/go-invpend/config"
	"github.com/milosgajdos/go-invpend/matrix"
	"github.com/milosgajdos/go-invpend/model"
	"github.com/milosgajdos/go-invpend/sim"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(16)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 2)
)

// renderPreview plots every state trajectory as an ASCII graph
func renderPreview(traj *sim.Trajectory, c config.PreviewConfig) string {
	rows := matrix.Rows(traj.State)
	graphs := make([]string, 0, len(rows))

	for i, data := range rows {
		caption := fmt.Sprintf("x%d", i)
		if i < len(model.StateLabels) {
			caption = model.StateLabels[i]
		}

		graphs = append(graphs, asciigraph.Plot(data,
			asciigraph.Height(c.Height),
			asciigraph.Width(c.Width),
			asciigraph.Caption(caption),
		))
	}

	return strings.Join(graphs, "\n\n")
}

// renderSummary renders the final plant mode, settling time and final state
func renderSummary(traj *sim.Trajectory) (string, error) {
	limits := model.DefaultLimits()

	modes, err := limits.Modes(traj, model.Ref)
	if err != nil {
		return "", err
	}
	mode := modes[len(modes)-1]

	settling := failStyle.Render("not settled")
	if t, ok, err := limits.SettlingTime(traj, model.Ref); err != nil {
		return "", err
	} else if ok {
		settling = okStyle.Render(fmt.Sprintf("%.2f s", t))
	}

	modeStyle := okStyle
	if mode != model.Holding {
		modeStyle = failStyle
	}

	final := traj.StateAt(traj.Len() - 1)

	lines := []string{
		headerStyle.Render(model.Title),
		labelStyle.Render("samples") + valueStyle.Render(fmt.Sprintf("%d", traj.Len())),
		labelStyle.Render("reference") + valueStyle.Render(fmt.Sprintf("%v m", model.Ref)),
		labelStyle.Render("initial force") + valueStyle.Render(fmt.Sprintf("%.4f N", traj.Input.At(0, 0))),
		labelStyle.Render("final mode") + modeStyle.Render(mode.String()),
		labelStyle.Render("settling time") + settling,
		labelStyle.Render("final state"),
		valueStyle.Render(fmt.Sprintf("%v", matrix.Format(final))),
	}

	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)), nil
}
