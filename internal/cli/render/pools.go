package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/chefkit/internal/usecase"
)

// PoolsRenderer renders the pool fixture list
type PoolsRenderer struct {
	out io.Writer
}

// NewPoolsRenderer creates a new pools renderer
func NewPoolsRenderer(out io.Writer) *PoolsRenderer {
	return &PoolsRenderer{out: out}
}

// Render renders the pools as a table
func (r *PoolsRenderer) Render(result *usecase.ListPoolsResult) error {
	if len(result.Pools) == 0 {
		fmt.Fprintln(r.out, "No pools found")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "PID", "Underlying", "Harvest", "Status"})

	for _, p := range result.Pools {
		underlying := "-"
		if u, err := p.Pool.UnderlyingToken(); err == nil {
			underlying = u.Hex()
		}
		pid := p.Pool.PID
		if pid == "" {
			pid = "0"
		}
		harvest := labelStyle.Sprint("no")
		if p.HarvestEligible {
			harvest = passStyle.Sprint("yes")
		}
		status := passStyle.Sprint("active")
		if p.Pool.Deprecated {
			status = skipStyle.Sprint("deprecated")
		}
		t.AppendRow(table.Row{p.Name, pid, underlying, harvest, status})
	}
	t.Render()

	fmt.Fprintf(r.out, "%d of %d pools\n", len(result.Pools), result.Total)
	return nil
}
