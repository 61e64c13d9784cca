package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/mpv-sponsorblock/internal/stats"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func render(sum stats.Summary, now time.Time) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("SponsorBlock"))
	sb.WriteString("\n")

	if sum.Count == 0 {
		sb.WriteString("  ")
		sb.WriteString(dimStyle.Render("No segments skipped yet"))
		return sb.String()
	}

	fmt.Fprintf(&sb, "  %s %s\n", labelStyle.Render("Skipped:"), humanize.Comma(int64(sum.Count))+" segments")
	fmt.Fprintf(&sb, "  %s %s\n", labelStyle.Render("Time saved:"), formatSeconds(sum.Seconds))
	fmt.Fprintf(&sb, "  %s %s (%s)\n", labelStyle.Render("Last skip:"),
		humanize.RelTime(sum.LastSkip, now, "ago", "from now"), sum.LastVideo)

	sb.WriteString("\n")
	width := 0
	for _, c := range sum.Categories {
		width = max(width, lipgloss.Width(c.Category))
	}
	for _, c := range sum.Categories {
		fmt.Fprintf(&sb, "  %-*s  %6s  %s\n", width, c.Category,
			humanize.Comma(int64(c.Count)), dimStyle.Render(formatSeconds(c.Seconds)))
	}

	sb.WriteString(strings.Repeat("─", 40))
	return sb.String()
}

func formatSeconds(s float64) string {
	return time.Duration(s * float64(time.Second)).Round(time.Second).String()
}
