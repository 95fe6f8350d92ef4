package render

import (
	"fmt"
	"io"
	"regexp"
	"sort"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
	"github.com/trebuchet-org/chefkit/internal/domain"
	"github.com/trebuchet-org/chefkit/internal/usecase"
)

var (
	chainBg         = color.BgCyan
	chainHeader     = color.New(chainBg, color.FgBlack)
	chainHeaderBold = color.New(chainBg, color.FgBlack, color.Bold)
	contractStyle   = color.New(color.FgGreen, color.Bold)
	addressStyle    = color.New(color.FgWhite)
	timestampStyle  = color.New(color.Faint)
	argsStyle       = color.New(color.Faint)

	ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[mGKHF]`)
)

// TableData holds the cells of a table before rendering
type TableData [][]string

// DeploymentsRenderer renders recorded deployments grouped by chain
type DeploymentsRenderer struct {
	out io.Writer
}

// NewDeploymentsRenderer creates a new deployments renderer
func NewDeploymentsRenderer(out io.Writer) *DeploymentsRenderer {
	return &DeploymentsRenderer{out: out}
}

// RenderDeploymentList renders deployments in a tree per chain
func (r *DeploymentsRenderer) RenderDeploymentList(result *usecase.DeploymentListResult) error {
	if len(result.Deployments) == 0 {
		fmt.Fprintln(r.out, "No deployments found")
		return nil
	}

	byChain := lo.GroupBy(result.Deployments, func(d *domain.Deployment) uint64 { return d.ChainID })
	chainIDs := lo.Keys(byChain)
	sort.Slice(chainIDs, func(i, j int) bool { return chainIDs[i] < chainIDs[j] })

	tables := make(map[uint64]TableData, len(chainIDs))
	for _, chainID := range chainIDs {
		tables[chainID] = r.buildDeploymentTable(byChain[chainID])
	}
	widths := calculateTableColumnWidths(lo.Values(tables))

	for idx, chainID := range chainIDs {
		treePrefix := "├─"
		continuationPrefix := "│ "
		if idx == len(chainIDs)-1 {
			treePrefix = "└─"
			continuationPrefix = "  "
		}

		label := fmt.Sprintf("%-12s", "chain:")
		value := fmt.Sprintf("%-30s", chainLabel(chainID, byChain[chainID]))
		fmt.Fprintf(r.out, "%s%s%s\n", treePrefix, chainHeader.Sprintf(" ⛓ %s ", label), chainHeaderBold.Sprint(value))
		fmt.Fprintln(r.out, continuationPrefix)
		fmt.Fprint(r.out, renderTableWithWidths(tables[chainID], widths, continuationPrefix))
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out)
	}

	fmt.Fprintf(r.out, "Total deployments: %d\n", len(result.Deployments))
	return nil
}

func chainLabel(chainID uint64, deployments []*domain.Deployment) string {
	for _, d := range deployments {
		if d.Network != "" {
			return fmt.Sprintf("%d (%s)", chainID, d.Network)
		}
	}
	return fmt.Sprintf("%d", chainID)
}

// buildDeploymentTable sorts by name, newest first within a name
func (r *DeploymentsRenderer) buildDeploymentTable(deployments []*domain.Deployment) TableData {
	sorted := make([]*domain.Deployment, len(deployments))
	copy(sorted, deployments)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Name == sorted[j].Name {
			return sorted[i].DeployedAt.After(sorted[j].DeployedAt)
		}
		return sorted[i].Name < sorted[j].Name
	})

	tableData := make(TableData, 0, len(sorted))
	for _, d := range sorted {
		args := ""
		if oracle, ok := d.Args["oracle"]; ok {
			args = argsStyle.Sprintf("oracle %s", shortAddress(oracle))
		}
		tableData = append(tableData, []string{
			contractStyle.Sprint(d.Name),
			addressStyle.Sprint(d.Address.Hex()),
			args,
			timestampStyle.Sprint(d.DeployedAt.Format("2006-01-02 15:04:05")),
		})
	}
	return tableData
}

func shortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

// renderTableWithWidths renders a table with specific column widths
func renderTableWithWidths(tableData TableData, columnWidths []int, continuationPrefix string) string {
	if len(tableData) == 0 {
		return ""
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateRows = false
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateHeader = false
	t.Style().Options.SeparateColumns = false
	t.Style().Box = table.BoxStyle{
		PaddingRight: "   ",
	}

	colConfigs := make([]table.ColumnConfig, len(columnWidths))
	for i, width := range columnWidths {
		if i == 0 {
			width += len([]rune(continuationPrefix))
		}
		colConfigs[i] = table.ColumnConfig{
			Number:   i + 1,
			Align:    text.AlignLeft,
			WidthMin: width,
			WidthMax: width,
		}
	}
	t.SetColumnConfigs(colConfigs)

	for _, row := range tableData {
		tableRow := make(table.Row, len(row))
		for i, cell := range row {
			if i == 0 {
				tableRow[i] = continuationPrefix + cell
			} else {
				tableRow[i] = cell
			}
		}
		t.AppendRow(tableRow)
	}

	return t.Render()
}

// stripAnsiCodes removes ANSI escape sequences from a string
func stripAnsiCodes(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// calculateTableColumnWidths returns the widest visible cell of each column
// across all tables
func calculateTableColumnWidths(tables []TableData) []int {
	maxCols := 0
	for _, t := range tables {
		for _, row := range t {
			maxCols = max(maxCols, len(row))
		}
	}

	widths := make([]int, maxCols)
	for _, t := range tables {
		for _, row := range t {
			for i, cell := range row {
				widths[i] = max(widths[i], len([]rune(stripAnsiCodes(cell))))
			}
		}
	}
	return widths
}
