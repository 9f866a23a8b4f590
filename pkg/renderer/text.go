package renderer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/northcutted/scanmodel/pkg/types"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("105")). // Purple
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("10")) // Green

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")). // Red
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	severityStyles = map[types.Severity]lipgloss.Style{
		types.SeverityCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		types.SeverityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
		types.SeverityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		types.SeverityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	}
)

// renderText lays out a report for a terminal.
func renderText(ctx ReportContext, opts RenderOptions) string {
	paint := func(style lipgloss.Style, s string) string {
		if opts.NoColor {
			return s
		}
		return style.Render(s)
	}

	var b strings.Builder
	fmt.Fprintln(&b, paint(titleStyle, ctx.Title))

	status := paint(okStyle, "success")
	if !ctx.Success {
		status = paint(failStyle, "failed")
	}
	fmt.Fprintf(&b, "Status:    %s\n", status)
	fmt.Fprintf(&b, "Timestamp: %s\n", ctx.Timestamp.Format("2006-01-02 15:04:05 UTC"))
	if ctx.Error != "" {
		fmt.Fprintf(&b, "Error:     %s\n", paint(failStyle, ctx.Error))
	}
	if ctx.Summary != nil {
		fmt.Fprintf(&b, "Summary:   %d total, %d successful, %d failed\n", ctx.Summary.Total, ctx.Summary.Successful, ctx.Summary.Failed)
	}

	if ctx.Kind == types.ResultKindFindings {
		counts := make([]string, 0, 4)
		for _, sev := range types.AllSeverities() {
			counts = append(counts, paint(severityStyles[sev], fmt.Sprintf("%s=%d", sev, ctx.Counts.BySeverity[sev])))
		}
		fmt.Fprintf(&b, "\nFindings (%d): %s\n", ctx.Counts.Total, strings.Join(counts, " "))

		for _, v := range ctx.Findings {
			label := fmt.Sprintf("[%-8s]", strings.ToUpper(v.Severity.String()))
			fmt.Fprintf(&b, "  %s %s  %s\n", paint(severityStyles[v.Severity], label), v.ID, v.Description)
			if v.CVE != nil {
				fmt.Fprintf(&b, "             %s\n", paint(dimStyle, "cve: "+*v.CVE))
			}
			if v.Impact != nil {
				fmt.Fprintf(&b, "             %s\n", paint(dimStyle, "impact: "+*v.Impact))
			}
			if v.Recommendation != nil {
				fmt.Fprintf(&b, "             %s\n", paint(dimStyle, "fix: "+*v.Recommendation))
			}
		}
		if ctx.Hidden > 0 {
			fmt.Fprintf(&b, "  %s\n", paint(dimStyle, fmt.Sprintf("(%d lower-severity finding(s) hidden)", ctx.Hidden)))
		}
	}

	if len(ctx.PatchesApplied) > 0 {
		fmt.Fprintf(&b, "\nPatches applied (%d):\n", len(ctx.PatchesApplied))
		for _, id := range ctx.PatchesApplied {
			fmt.Fprintf(&b, "  - %s\n", id)
		}
	}

	return b.String()
}
