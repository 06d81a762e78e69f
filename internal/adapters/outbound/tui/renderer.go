package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/camelcase"

	"github.com/a11yfix/a11yfix/internal/domain"
)

// ── Warm palette ──
var (
	accent    = lipgloss.Color("#D97706") // amber
	fg        = lipgloss.Color("#E8E6E3") // warm light gray
	dim       = lipgloss.Color("#6B7280") // muted gray
	faint     = lipgloss.Color("#3F3F46") // very dim
	success   = lipgloss.Color("#22C55E") // green
	danger    = lipgloss.Color("#EF4444") // red
	warning   = lipgloss.Color("#F59E0B") // amber-yellow
	info      = lipgloss.Color("#8B949E") // soft blue-gray
	skipColor = lipgloss.Color("#4B5563") // dark gray
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

	severityColors = map[domain.Severity]lipgloss.Color{
		domain.SeverityCritical: danger,
		domain.SeveritySerious:  lipgloss.Color("#FB923C"), // orange
		domain.SeverityModerate: warning,
		domain.SeverityMinor:    info,
	}

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	skipStyle     = lipgloss.NewStyle().Foreground(skipColor)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderValidation renders the outcome of a validation pass.
func RenderValidation(results *domain.ValidationResults) string {
	var b strings.Builder

	// ── Header ──
	sum := results.Summary
	title := headerStyle.Render("a11yfix")
	subtitle := dimStyle.Render("Fix Validation")
	if results.URL != "" {
		subtitle += "\n" + faintStyle.Render(results.URL)
	}
	pct := int(sum.ValidatedPct)
	scoreStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(pctColor(pct)).
		Render(fmt.Sprintf("%d / %d validated", sum.Validated, sum.Total))

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + scoreStyled))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "  %s %s  %s\n",
		titleStyle.Render(padRight("validated", 12)),
		coloredBar(pct, 30),
		dimStyle.Render(fmt.Sprintf("%.1f%%", sum.ValidatedPct)))

	b.WriteString("\n")
	b.WriteString("  " + separatorLine)
	b.WriteString("\n\n")

	if len(results.Issues) == 0 {
		b.WriteString("  " + dimStyle.Render("No issues in report.") + "\n\n")
		return b.String()
	}

	issues := append([]domain.IssueStatus{}, results.Issues...)
	sort.SliceStable(issues, func(i, j int) bool {
		if (issues[i].Status == domain.StateValidated) != (issues[j].Status == domain.StateValidated) {
			return issues[i].Status != domain.StateValidated
		}
		return issues[i].Severity.Rank() < issues[j].Severity.Rank()
	})

	if sum.Manual > 0 {
		b.WriteString("  " + titleStyle.Render("Needs manual review") + "  " +
			warnStyle.Render(fmt.Sprintf("%d issues", sum.Manual)) + "\n\n")
	}
	for _, is := range issues {
		renderIssueStatus(&b, is)
	}

	b.WriteString("\n")
	return b.String()
}

func renderIssueStatus(b *strings.Builder, is domain.IssueStatus) {
	icon := passStyle.Render("●")
	if is.Status != domain.StateValidated {
		icon = failStyle.Render("●")
	}

	fmt.Fprintf(b, "    %s %s %s\n", icon, severityTag(is.Severity), fileStyle.Render(is.Element))
	msg := is.Message
	if is.WCAGCriteria != "" {
		msg += "  " + faintStyle.Render("WCAG "+is.WCAGCriteria)
	}
	if msg != "" {
		fmt.Fprintf(b, "              %s\n", dimStyle.Render(msg))
	}
	if is.Status != domain.StateValidated && is.Reason != "" {
		fmt.Fprintf(b, "              %s\n", skipStyle.Render(is.Reason))
	}
}

// RenderIssue is the one-screen summary of an issue shown before a decision.
func RenderIssue(issue domain.Issue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s %s\n", severityTag(issue.Severity), titleStyle.Render(issue.Label()))
	if issue.Message != "" {
		fmt.Fprintf(&b, "  %s\n", dimStyle.Render(issue.Message))
	}
	var meta []string
	if issue.Category != "" {
		meta = append(meta, Humanize(issue.Category))
	}
	if issue.WCAGCriteria != "" {
		meta = append(meta, "WCAG "+issue.WCAGCriteria)
	}
	if n := issue.Instances(); n > 1 {
		meta = append(meta, fmt.Sprintf("%d instances", n))
	}
	if len(meta) > 0 {
		fmt.Fprintf(&b, "  %s\n", faintStyle.Render(strings.Join(meta, " · ")))
	}
	return b.String()
}

// Humanize turns an identifier such as "textAlternatives" or "aria_roles"
// into "Text Alternatives" / "Aria Roles".
func Humanize(id string) string {
	var words []string
	for _, part := range strings.FieldsFunc(id, func(r rune) bool { return r == '_' || r == '-' || r == ' ' }) {
		for _, w := range camelcase.Split(part) {
			if w = strings.TrimSpace(w); w != "" {
				words = append(words, strings.ToUpper(w[:1])+w[1:])
			}
		}
	}
	return strings.Join(words, " ")
}

func severityTag(s domain.Severity) string {
	label := string(s)
	if label == "" {
		label = "unknown"
	}
	color, ok := severityColors[s]
	if !ok {
		color = dim
	}
	return lipgloss.NewStyle().Foreground(color).Bold(s == domain.SeverityCritical).Render(padRight(label, 8))
}

func coloredBar(pct, width int) string {
	filled := max(0, min(pct*width/100, width))
	empty := width - filled

	color := pctColor(pct)
	filledStr := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	emptyStr := lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("░", empty))
	return filledStr + emptyStr
}

func pctColor(pct int) lipgloss.Color {
	switch {
	case pct >= 80:
		return success
	case pct >= 60:
		return lipgloss.Color("#A3E635") // lime
	case pct >= 40:
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
