// Package progress provides terminal progress indicators.
package progress

import (
	"os"

	"github.com/pterm/pterm"

	"github.com/relayvcs/ugit/internal/termcolor"
)

// Spinner displays an animated spinner on stderr while a long-running
// operation is in progress. It is only displayed when stderr is a TTY; in
// non-interactive environments (piped output, CI, test harnesses) it is
// silent, matching pterm's own RawOutput fallback.
type Spinner struct {
	msg      string
	printer  *pterm.SpinnerPrinter
	disabled bool
}

// New creates a Spinner that will display msg alongside the animation.
func New(msg string) *Spinner {
	return &Spinner{msg: msg, disabled: !termcolor.IsTerminal(os.Stderr.Fd())}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	if s.disabled {
		return
	}
	printer, err := pterm.DefaultSpinner.WithWriter(os.Stderr).Start(s.msg)
	if err != nil {
		s.disabled = true
		return
	}
	s.printer = printer
}

// Stop halts the spinner animation and clears the line.
func (s *Spinner) Stop() {
	if s.printer == nil {
		return
	}
	_ = s.printer.Stop() //nolint:errcheck // best-effort terminal cleanup
	s.printer = nil
}
