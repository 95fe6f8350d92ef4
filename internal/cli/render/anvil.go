package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/trebuchet-org/chefkit/internal/usecase"
)

// AnvilRenderer renders anvil operation results
type AnvilRenderer struct {
	out io.Writer
}

// NewAnvilRenderer creates a new anvil renderer
func NewAnvilRenderer(out io.Writer) *AnvilRenderer {
	return &AnvilRenderer{out: out}
}

// Render renders the anvil operation result
func (r *AnvilRenderer) Render(result *usecase.ManageAnvilResult) error {
	switch result.Operation {
	case usecase.AnvilStart, usecase.AnvilRestart:
		return r.renderStart(result)
	case usecase.AnvilStop:
		fmt.Fprintln(r.out, FormatSuccess(result.Message))
		return nil
	case usecase.AnvilStatus:
		return r.renderStatus(result)
	case usecase.AnvilLogs:
		return nil
	default:
		return fmt.Errorf("unknown operation: %s", result.Operation)
	}
}

func (r *AnvilRenderer) renderStart(result *usecase.ManageAnvilResult) error {
	fmt.Fprintln(r.out, FormatSuccess(result.Message))
	if result.Status == nil {
		return nil
	}
	color.New(color.FgYellow).Fprintf(r.out, "📋 Logs: %s\n", result.Status.LogFile)
	color.New(color.FgBlue).Fprintf(r.out, "🌐 RPC URL: %s\n", result.Status.RPCURL)
	if result.Instance != nil && result.Instance.IsFork() {
		color.New(color.FgCyan).Fprintf(r.out, "🍴 Fork: %s @ %d\n", result.Instance.ForkURL, result.Instance.ForkBlockNumber)
	}
	return nil
}

func (r *AnvilRenderer) renderStatus(result *usecase.ManageAnvilResult) error {
	color.New(color.FgCyan, color.Bold).Fprintf(r.out, "📊 Anvil Status ('%s'):\n", result.Instance.Name)

	status := result.Status
	if status == nil || !status.Running {
		color.New(color.FgRed).Fprintln(r.out, "Status: 🔴 Not running")
		color.New(color.FgHiBlack).Fprintf(r.out, "PID file: %s\n", result.Instance.PidFile)
		color.New(color.FgHiBlack).Fprintf(r.out, "Log file: %s\n", result.Instance.LogFile)
		return nil
	}

	color.New(color.FgGreen).Fprintf(r.out, "Status: 🟢 Running (PID %d)\n", status.PID)
	color.New(color.FgBlue).Fprintf(r.out, "RPC URL: %s\n", status.RPCURL)
	color.New(color.FgYellow).Fprintf(r.out, "Log file: %s\n", status.LogFile)

	if status.RPCHealthy {
		color.New(color.FgGreen).Fprintf(r.out, "RPC Health: ✅ Responding (chain %d, block %d)\n", status.ChainID, status.BlockNumber)
	} else {
		color.New(color.FgRed).Fprintln(r.out, "RPC Health: ❌ Not responding")
		if status.Error != "" {
			color.New(color.FgHiBlack).Fprintf(r.out, "  %s\n", status.Error)
		}
	}
	if result.Instance.IsFork() {
		color.New(color.FgCyan).Fprintf(r.out, "Fork: %s @ %d\n", result.Instance.ForkURL, result.Instance.ForkBlockNumber)
	}
	return nil
}

// RenderLogsHeader renders the header for logs streaming
func (r *AnvilRenderer) RenderLogsHeader(name string) {
	color.New(color.FgCyan, color.Bold).Fprintf(r.out, "📋 Showing anvil '%s' logs (Ctrl+C to exit):\n\n", name)
}
