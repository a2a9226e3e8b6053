package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/openkraft/prodcheck/internal/domain"
)

// ── warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	info    = lipgloss.Color("#8B949E") // soft blue-gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	gradeColors = map[string]lipgloss.Color{
		"A": success,
		"B": lipgloss.Color("#A3E635"), // lime
		"C": warning,
		"F": danger,
	}

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	failTagStyle  = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	hintStyle     = lipgloss.NewStyle().Foreground(info).Italic(true)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderReport formats a finished run for the terminal. With verbose set,
// passing tests are listed too; otherwise only their count is shown.
func RenderReport(report *domain.Report, verbose bool) string {
	var b strings.Builder
	sum := report.Summary

	// ── Header ──
	grade := domain.GradeFor(sum.PassPercentage)
	title := headerStyle.Render("prodcheck")
	subtitle := dimStyle.Render("Production Readiness  " + report.Target)
	pctStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(gradeColor(grade)).
		Render(fmt.Sprintf("%.1f%% passed  %s", sum.PassPercentage, grade))
	verdict := failTagStyle.Render("NOT PRODUCTION READY")
	if sum.ProductionReady {
		verdict = lipgloss.NewStyle().Bold(true).Foreground(success).Render("PRODUCTION READY")
	}

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + pctStyled + "\n" + verdict))
	b.WriteString("\n\n")

	// ── Sections ──
	for i, sec := range report.Sections {
		renderSection(&b, sec, verbose)
		if i < len(report.Sections)-1 {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString("  " + separatorLine)
	b.WriteString("\n\n")

	// ── Totals ──
	fmt.Fprintf(&b, "  %s  %s  %s  %s  %s\n",
		titleStyle.Render("Tests"),
		dimStyle.Render(fmt.Sprintf("%d total", sum.TotalTests)),
		passStyle.Render(fmt.Sprintf("%d passed", sum.TestsPassed)),
		failTagStyle.Render(fmt.Sprintf("%d failed", sum.TestsFailed)),
		warnTagStyle.Render(fmt.Sprintf("%d warnings", sum.TestsWarned)),
	)
	fmt.Fprintf(&b, "  %s\n", dimStyle.Render(fmt.Sprintf("Completed in %.2fs", sum.DurationSeconds)))

	// ── Issues ──
	issues := collectIssues(report)
	if len(issues) > 0 {
		b.WriteString("\n  " + titleStyle.Render("Remediation") + "\n\n")
		for _, t := range issues {
			fmt.Fprintf(&b, "    %s %s\n", statusTag(t.Status), t.Name)
			if t.Remediation != "" {
				fmt.Fprintf(&b, "          %s\n", hintStyle.Render(t.Remediation))
			}
		}
	} else {
		b.WriteString("\n  " + passStyle.Render("No issues found.") + "\n")
	}

	b.WriteString("\n")
	return b.String()
}

func renderSection(b *strings.Builder, sec domain.SectionResult, verbose bool) {
	passed := sec.Count(domain.StatusPass)
	total := len(sec.Tests)
	pct := 0
	if total > 0 {
		pct = passed * 100 / total
	}

	name := sectionStyle.Render(padRight(sec.Name, 16))
	bar := coloredBar(pct, 20)
	count := dimStyle.Render(fmt.Sprintf("%d/%d", passed, total))
	state := passStyle.Render("passed")
	if !sec.Passed {
		state = failStyle.Render("failed")
	}
	fmt.Fprintf(b, "  %s %s  %s  %s\n", name, bar, count, state)

	for _, t := range sec.Tests {
		if t.Status == domain.StatusPass && !verbose {
			continue
		}
		renderTest(b, t)
	}
}

func renderTest(b *strings.Builder, t domain.CheckResult) {
	var icon string
	switch t.Status {
	case domain.StatusPass:
		icon = passStyle.Render("●")
	case domain.StatusWarning:
		icon = warnStyle.Render("●")
	default:
		icon = failStyle.Render("●")
	}

	name := padRight(t.Name, 36)
	if t.Message != "" {
		fmt.Fprintf(b, "    %s %s %s\n", icon, name, faintStyle.Render(t.Message))
	} else {
		fmt.Fprintf(b, "    %s %s\n", icon, name)
	}
}

func statusTag(s domain.Status) string {
	if s == domain.StatusFail {
		return failTagStyle.Render("fail")
	}
	return warnTagStyle.Render("warn")
}

// collectIssues returns failed tests before warnings, each group in run order.
func collectIssues(report *domain.Report) []domain.CheckResult {
	var fails, warns []domain.CheckResult
	for _, sec := range report.Sections {
		for _, t := range sec.Tests {
			switch t.Status {
			case domain.StatusFail:
				fails = append(fails, t)
			case domain.StatusWarning:
				warns = append(warns, t)
			}
		}
	}
	return append(fails, warns...)
}

// RenderSections lists the known sections, marking the enabled ones.
func RenderSections(enabled []string) string {
	on := make(map[string]bool, len(enabled))
	for _, s := range enabled {
		on[s] = true
	}

	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Sections") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 40)) + "\n\n")
	for i, s := range domain.SectionOrder {
		mark := faintStyle.Render("○")
		if on[s] {
			mark = passStyle.Render("●")
		}
		fmt.Fprintf(&b, "  %s %s %s\n", mark, dimStyle.Render(fmt.Sprintf("%d.", i+1)), s)
	}
	return b.String()
}

// RenderHistory lists earlier runs oldest first, with the change in pass
// percentage against the previous run.
func RenderHistory(entries []domain.RunEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No run history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Run History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for i, e := range entries {
		hash := e.CommitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		if hash == "" {
			hash = "·······"
		}
		day := e.Timestamp
		if len(day) > 10 {
			day = day[:10]
		}

		pct := lipgloss.NewStyle().
			Foreground(scoreColor(int(e.PassPercentage))).
			Render(fmt.Sprintf("%5.1f%%", e.PassPercentage))
		verdict := passStyle.Render("ready")
		if !e.ProductionReady {
			verdict = failStyle.Render(fmt.Sprintf("%d failed", e.TestsFailed))
		}

		line := fmt.Sprintf("  %s  %s  %s  %s  %s", dimStyle.Render(day), faintStyle.Render(hash), pct, e.Grade, verdict)
		if i > 0 {
			diff := e.PassPercentage - entries[i-1].PassPercentage
			if diff > 0 {
				line += "  " + passStyle.Render(fmt.Sprintf("↑%.1f", diff))
			} else if diff < 0 {
				line += "  " + failStyle.Render(fmt.Sprintf("↓%.1f", -diff))
			}
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// RenderPaths lists written report files.
func RenderPaths(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		fmt.Fprintf(&b, "  %s %s\n", dimStyle.Render("report"), p)
	}
	return b.String()
}

func coloredBar(score, width int) string {
	filled := max(0, min(score*width/100, width))
	empty := width - filled

	color := scoreColor(score)
	filledStr := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	emptyStr := lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("░", empty))
	return filledStr + emptyStr
}

func scoreColor(score int) lipgloss.Color {
	switch {
	case score >= 80:
		return success
	case score >= 60:
		return lipgloss.Color("#A3E635") // lime
	case score >= 40:
		return warning
	default:
		return danger
	}
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func gradeColor(grade string) lipgloss.Color {
	if c, ok := gradeColors[grade]; ok {
		return c
	}
	return fg
}
