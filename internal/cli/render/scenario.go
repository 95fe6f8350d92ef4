package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/trebuchet-org/chefkit/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	passStyle     = color.New(color.FgGreen)
	failStyle     = color.New(color.FgRed)
	skipStyle     = color.New(color.FgYellow)
	poolStyle     = color.New(color.Bold)
	durationStyle = color.New(color.Faint)
)

// ScenarioRenderer renders adapter suite reports
type ScenarioRenderer struct {
	out     io.Writer
	verbose bool
}

// NewScenarioRenderer creates a new scenario renderer. Verbose prints every
// check, not only the failed ones.
func NewScenarioRenderer(out io.Writer, verbose bool) *ScenarioRenderer {
	return &ScenarioRenderer{out: out, verbose: verbose}
}

// Render renders the suite report
func (r *ScenarioRenderer) Render(report *domain.SuiteReport) error {
	if hc := report.Context; hc != nil {
		fmt.Fprintf(r.out, "%s %s  %s %s\n\n",
			labelStyle.Sprint("adapter"), hc.Adapter.Hex(),
			labelStyle.Sprint("vault"), hc.TestAdapter.Hex())
	}

	for _, s := range report.Reports {
		r.renderScenario(s)
	}

	passed, failed, skipped := report.Counts()
	summary := fmt.Sprintf("%d passed, %d failed, %d skipped", passed, failed, skipped)
	if failed > 0 {
		fmt.Fprintln(r.out, FormatError(summary))
	} else {
		fmt.Fprintln(r.out, FormatSuccess(summary))
	}
	return nil
}

func (r *ScenarioRenderer) renderScenario(s *domain.ScenarioReport) {
	switch {
	case s.Skipped:
		fmt.Fprintf(r.out, "%s %s %s\n", skipStyle.Sprint("-"), poolStyle.Sprint(s.PoolName), skipStyle.Sprint("(deprecated)"))
		return
	case s.Passed():
		fmt.Fprintf(r.out, "%s %s", passStyle.Sprint("✓"), poolStyle.Sprint(s.PoolName))
	default:
		fmt.Fprintf(r.out, "%s %s", failStyle.Sprint("✗"), poolStyle.Sprint(s.PoolName))
	}
	fmt.Fprintf(r.out, " %s %s\n", r.harvest(s.Harvest), durationStyle.Sprintf("(%s)", s.Duration.Round(time.Millisecond)))

	checks := s.Checks
	if !r.verbose {
		checks = s.FailedChecks()
	}
	if len(checks) > 0 {
		fmt.Fprintln(r.out, indent(renderChecks(checks), "    "))
	}
	if s.Error != "" {
		fmt.Fprintf(r.out, "    %s\n", FormatError(s.Error))
	}
}

func (r *ScenarioRenderer) harvest(h domain.HarvestOutcome) string {
	label := "Harvest " + HarvestLabel(h.Status)
	if h.Reason != "" && h.Status != domain.HarvestSucceeded {
		label += ": " + h.Reason
	}
	switch h.Status {
	case domain.HarvestSucceeded:
		return passStyle.Sprint(label)
	case domain.HarvestSwapFailed:
		return skipStyle.Sprint(label)
	case domain.HarvestFailed:
		return failStyle.Sprint(label)
	default:
		return durationStyle.Sprint(label)
	}
}

// HarvestLabel titles a harvest status for display
func HarvestLabel(status domain.HarvestStatus) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(status), "-", " "))
}

func renderChecks(checks []domain.ScenarioCheck) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Options.SeparateHeader = false
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})

	for _, c := range checks {
		mark := passStyle.Sprint("✓")
		if !c.Passed {
			mark = failStyle.Sprint("✗")
		}
		t.AppendRow(table.Row{mark, c.Name, c.Expected, c.Actual})
	}
	return t.Render()
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
