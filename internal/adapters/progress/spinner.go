package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/trebuchet-org/chefkit/internal/usecase"
)

// SpinnerSink renders progress events as a terminal spinner.
// Events with Spinner unset stop the spinner and print the message.
type SpinnerSink struct {
	mu      sync.Mutex
	spinner *spinner.Spinner
	out     io.Writer
	stage   string
	started time.Time
}

// NewSpinnerSink creates a spinner sink writing to stderr
func NewSpinnerSink() *SpinnerSink {
	return newSpinnerSink(os.Stderr)
}

func newSpinnerSink(out io.Writer) *SpinnerSink {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.HideCursor = false
	return &SpinnerSink{spinner: s, out: out}
}

// OnProgress handles progress events
func (r *SpinnerSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.Stage != r.stage {
		r.stage = event.Stage
		r.started = time.Now()
	}

	if event.Spinner {
		r.spinner.Suffix = " " + r.describe(event)
		if !r.spinner.Active() {
			r.spinner.Start()
		}
		return
	}

	if r.spinner.Active() {
		r.spinner.Stop()
	}
	if event.Message != "" {
		fmt.Fprintf(r.out, "%s %s\n", color.New(color.FgGreen).Sprint("✓"), r.describe(event))
	}
}

func (r *SpinnerSink) describe(event usecase.ProgressEvent) string {
	msg := event.Message
	if event.Total > 0 {
		msg = fmt.Sprintf("[%d/%d] %s", event.Current, event.Total, msg)
	}
	if !event.Spinner && !r.started.IsZero() {
		msg += color.New(color.Faint).Sprintf(" (%s)", time.Since(r.started).Round(time.Millisecond))
	}
	return msg
}

// Info prints an info message
func (r *SpinnerSink) Info(message string) {
	r.printPaused(color.New(color.FgCyan), message)
}

// Error prints an error message
func (r *SpinnerSink) Error(message string) {
	r.printPaused(color.New(color.FgRed), message)
}

// Stop halts the spinner if it is running
func (r *SpinnerSink) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.spinner.Active() {
		r.spinner.Stop()
	}
}

func (r *SpinnerSink) printPaused(c *color.Color, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wasActive := r.spinner.Active()
	if wasActive {
		r.spinner.Stop()
	}

	c.Fprintln(r.out, message)

	if wasActive {
		r.spinner.Start()
	}
}

var _ usecase.ProgressSink = (*SpinnerSink)(nil)
