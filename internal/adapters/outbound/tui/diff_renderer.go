package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/a11yfix/a11yfix/internal/domain"
)

var (
	delStyle = lipgloss.NewStyle().Foreground(danger).Strikethrough(true)
	insStyle = lipgloss.NewStyle().Foreground(success).Underline(true)
)

// RenderPrompt renders what an operator is asked to decide on: the issue, the
// target file if any, and the change.
func RenderPrompt(p domain.Prompt) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(RenderIssue(p.Issue))
	if p.File != "" {
		fmt.Fprintf(&b, "  %s %s\n", dimStyle.Render("file"), fileStyle.Render(p.File))
	}
	b.WriteString("\n")
	b.WriteString(RenderChange(p.Before, p.After))
	return b.String()
}

// RenderChange shows before and after as -/+ lines followed by an inline
// character diff.
func RenderChange(before, after string) string {
	var b strings.Builder
	for _, l := range strings.Split(before, "\n") {
		fmt.Fprintf(&b, "  %s %s\n", failStyle.Render("-"), l)
	}
	for _, l := range strings.Split(after, "\n") {
		fmt.Fprintf(&b, "  %s %s\n", passStyle.Render("+"), l)
	}

	inline := InlineDiff(before, after)
	if inline != "" {
		b.WriteString("\n  " + inline + "\n")
	}
	return b.String()
}

// InlineDiff renders a semantic character diff of two snippets with deletions
// struck through and insertions underlined.
func InlineDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString(delStyle.Render(d.Text))
		case diffmatchpatch.DiffInsert:
			b.WriteString(insStyle.Render(d.Text))
		default:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

// ChangedText returns only the inserted fragments of after relative to before.
func ChangedText(before, after string) []string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(before, after, false))
	var out []string
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffInsert {
			out = append(out, d.Text)
		}
	}
	return out
}
