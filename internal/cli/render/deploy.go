package render

import (
	"fmt"
	"io"

	"github.com/trebuchet-org/chefkit/internal/usecase"
)

// DeployRenderer renders an adapter deployment
type DeployRenderer struct {
	out io.Writer
}

// NewDeployRenderer creates a new deploy renderer
func NewDeployRenderer(out io.Writer) *DeployRenderer {
	return &DeployRenderer{out: out}
}

// Render prints the deployed address the way deploy scripts report it
func (r *DeployRenderer) Render(result *usecase.DeployAdapterResult) error {
	d := result.Deployment
	fmt.Fprintf(r.out, "%s deployed to: %s\n", d.Name, d.Address.Hex())
	fmt.Fprintf(r.out, "  %s %s\n", labelStyle.Sprint("tx:      "), d.TxHash.Hex())
	fmt.Fprintf(r.out, "  %s %s\n", labelStyle.Sprint("deployer:"), d.Deployer.Hex())
	fmt.Fprintf(r.out, "  %s %d\n", labelStyle.Sprint("chain:   "), d.ChainID)
	return nil
}
