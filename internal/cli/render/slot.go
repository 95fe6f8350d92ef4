package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/chefkit/internal/usecase"
)

var (
	labelStyle   = color.New(color.Faint)
	valueStyle   = color.New(color.FgWhite, color.Bold)
	slotKeyStyle = color.New(color.FgCyan)
)

// SlotRenderer renders balance slot results
type SlotRenderer struct {
	out io.Writer
}

// NewSlotRenderer creates a new slot renderer
func NewSlotRenderer(out io.Writer) *SlotRenderer {
	return &SlotRenderer{out: out}
}

func (r *SlotRenderer) field(label string, value string) {
	fmt.Fprintf(r.out, "  %s %s\n", labelStyle.Sprintf("%-12s", label+":"), value)
}

// RenderLocate renders a located balances slot
func (r *SlotRenderer) RenderLocate(result *usecase.LocateBalanceSlotResult) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Balances mapping found for %s", result.Token.Hex())))
	r.field("Index", valueStyle.Sprint(result.Slot.Index))
	r.field("Convention", result.Slot.Convention().String())
	r.field("Conv. B", fmt.Sprint(result.Slot.UsesConventionB))
	r.field("Probe", result.Account.Hex())
	r.field("Slot key", slotKeyStyle.Sprint(result.Key.String()))
	r.field("Probes", fmt.Sprint(result.Probes))
	return nil
}

// RenderSetBalance renders a balance write
func (r *SlotRenderer) RenderSetBalance(result *usecase.SetTokenBalanceResult) error {
	amount := usecase.FormatUnits(result.Raw, result.Decimals)
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Set balance of %s to %s", result.Account.Hex(), amount)))
	r.field("Token", result.Token.Hex())
	r.field("Slot", result.Slot.String())
	r.field("Slot key", slotKeyStyle.Sprint(result.Key.String()))
	r.field("Raw", result.Raw.String())
	r.field("Decimals", fmt.Sprint(result.Decimals))
	return nil
}

// RenderSelfTest renders the locator self test as a table
func (r *SlotRenderer) RenderSelfTest(result *usecase.VerifyLocatorResult) error {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Index", "Convention", "Found", "Result"})

	for _, c := range result.Cases {
		found := "-"
		if c.Found != nil {
			found = c.Found.String()
		}
		status := passStyle.Sprint("ok")
		switch {
		case !c.Passed:
			status = failStyle.Sprintf("FAIL %s", c.Reason)
		case c.ExpectNotFound:
			status = passStyle.Sprint("ok (not found beyond bound)")
		}
		t.AppendRow(table.Row{c.Layout.Index, c.Layout.Convention.String(), found, status})
	}
	t.Render()

	if result.Passed() {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Locator verified against %d layouts (bound %d)", len(result.Cases), result.Bound)))
		return nil
	}
	fmt.Fprintln(r.out, FormatError("locator self test failed"))
	return nil
}
