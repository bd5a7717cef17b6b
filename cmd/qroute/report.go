package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-qroute/pkg/roadgraph"
	"github.com/dd0wney/cluso-qroute/pkg/rollout"
	"github.com/dd0wney/cluso-qroute/pkg/training"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF"))

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Width(14)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00")).
			Bold(true)
)

type report struct {
	RunID        string
	Start, Goal  roadgraph.NodeID
	Path         rollout.Path
	Cost         float64
	ReachedGoal  bool
	Episodes     int
	GoalEpisodes int
	Epsilon      float64
	Duration     time.Duration
	Replayed     bool
}

func reportFromResult(res *training.Result, start, goal roadgraph.NodeID) report {
	return report{
		RunID:        res.RunID,
		Start:        start,
		Goal:         goal,
		Path:         res.Path,
		Cost:         res.Cost,
		ReachedGoal:  res.ReachedGoal,
		Episodes:     res.Episodes,
		GoalEpisodes: res.GoalEpisodes,
		Epsilon:      res.Epsilon,
		Duration:     res.Duration,
	}
}

func renderReport(w io.Writer, r report) error {
	title := "Learned route"
	if r.Replayed {
		title = "Replayed route"
	}

	status := successStyle.Render("reached goal")
	if !r.ReachedGoal {
		status = warnStyle.Render("did not reach goal")
	}

	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
	}

	rows := []string{
		row("Run", r.RunID),
		row("From / to", fmt.Sprintf("%d → %d", r.Start, r.Goal)),
		row("Route", r.Path.String()),
		row("Hops", fmt.Sprintf("%d (%d revisits)", r.Path.Hops(), r.Path.Revisits())),
		row("Cost", fmt.Sprintf("%g", r.Cost)),
		row("Status", status),
		row("Episodes", fmt.Sprintf("%d (%d reached goal)", r.Episodes, r.GoalEpisodes)),
		row("Epsilon", fmt.Sprintf("%.4f", r.Epsilon)),
	}
	if r.Duration > 0 {
		rows = append(rows, row("Duration", r.Duration.Round(time.Millisecond).String()))
	}

	out := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		boxStyle.Render(strings.Join(rows, "\n")))
	_, err := fmt.Fprintln(w, out)
	return err
}
