package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/a11yfix/a11yfix/internal/domain"
)

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle          = lipgloss.NewStyle().Foreground(dim).Italic(true)
)

// RenderPatchSummary renders the outcome of a patch run grouped by outcome.
func RenderPatchSummary(summary *domain.PatchSummary) string {
	var b strings.Builder

	// Header
	title := "Patch"
	if summary.DryRun {
		title = "Patch (dry run)"
	}
	counts := []string{
		passStyle.Render(fmt.Sprintf("%d applied", summary.Applied)),
	}
	if summary.DryRun {
		counts = []string{passStyle.Render(fmt.Sprintf("%d would apply", summary.WouldApply))}
	}
	counts = append(counts,
		warnStyle.Render(fmt.Sprintf("%d not found", summary.NotFound)),
		failStyle.Render(fmt.Sprintf("%d failed", summary.Failed)),
		skipStyle.Render(fmt.Sprintf("%d skipped", summary.Skipped)),
	)
	header := titleStyle.Render(title) + "\n" + strings.Join(counts, "  ")
	if summary.Commit != "" {
		hash := summary.Commit
		if len(hash) > 7 {
			hash = hash[:7]
		}
		header += "\n" + dimStyle.Render("at "+hash)
	}
	b.WriteString(boxStyle.Render(header))
	b.WriteString("\n")

	sections := []struct {
		title    string
		outcomes []string
		icon     string
	}{
		{"Applied", []string{domain.OutcomeApplied, domain.OutcomeWouldApply}, passStyle.Render("●")},
		{"Not Found", []string{domain.OutcomeNotFound}, warnStyle.Render("●")},
		{"Failed", []string{domain.OutcomeFailed, domain.OutcomeInvalid}, failStyle.Render("●")},
		{"Skipped", []string{domain.OutcomeDeclined, domain.OutcomeDuplicate, domain.OutcomeAlreadyApplied}, skipStyle.Render("○")},
	}
	for _, s := range sections {
		renderOutcomeSection(&b, s.title, s.icon, filterResults(summary.Results, s.outcomes...))
	}

	if summary.DryRun && summary.WouldApply > 0 {
		b.WriteString("\n")
		b.WriteString("  " + hintStyle.Render("Re-run without --dry-run to write these fixes."))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func renderOutcomeSection(b *strings.Builder, title, icon string, results []domain.PatchResult) {
	if len(results) == 0 {
		return
	}

	b.WriteString("\n")
	fmt.Fprintf(b, "  %s %s\n",
		sectionHeaderStyle.Render(title),
		dimStyle.Render(fmt.Sprintf("(%d)", len(results))),
	)

	for _, r := range results {
		line := fmt.Sprintf("    %s %s", icon, r.Issue.Label())
		if r.File != "" {
			line += "  " + fileStyle.Render(r.File)
		}
		if r.Outcome != domain.OutcomeApplied && r.Outcome != domain.OutcomeWouldApply {
			line += "  " + faintStyle.Render(r.Outcome)
		}
		b.WriteString(line + "\n")
		if r.Reason != "" && r.Outcome != domain.OutcomeNotFound {
			fmt.Fprintf(b, "      %s\n", dimStyle.Render(r.Reason))
		}
	}
}

func filterResults(results []domain.PatchResult, outcomes ...string) []domain.PatchResult {
	var out []domain.PatchResult
	for _, r := range results {
		for _, o := range outcomes {
			if r.Outcome == o {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
