// Package report prints verdicts, group results and performance figures.
package report

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/jenska/m68kbench/internal/bench"
	"github.com/jenska/m68kbench/internal/runner"
)

const (
	green = "\x1b[32m"
	red   = "\x1b[31m"
	reset = "\x1b[0m"
)

type Reporter struct {
	w       io.Writer
	color   bool
	verbose bool
}

// New creates a reporter on w. Colour is enabled when w is a terminal.
func New(w io.Writer) *Reporter {
	r := &Reporter{w: w}
	if f, ok := w.(*os.File); ok {
		r.color = term.IsTerminal(int(f.Fd()))
	}
	return r
}

// SetColor forces colour output on or off.
func (r *Reporter) SetColor(on bool) {
	r.color = on
}

// SetVerbose makes Scenarios print passing verdicts as well.
func (r *Reporter) SetVerbose(on bool) {
	r.verbose = on
}

func (r *Reporter) status(passed bool) string {
	text, code := "FAIL", red
	if passed {
		text, code = "PASS", green
	}
	if !r.color {
		return text
	}
	return code + text + reset
}

func (r *Reporter) Header(title string) {
	fmt.Fprintf(r.w, "=== %s ===\n", title)
}

// Verdict prints one scenario outcome.
func (r *Reporter) Verdict(v runner.Verdict) {
	s := v.Scenario
	kind := s.Kind.String()
	if v.Tag != "" {
		kind = v.Tag
	}
	fmt.Fprintf(r.w, "[%s] %-9s %-19s vector=%08x cycles=%d/%d  %s\n",
		r.status(v.Passed), kind, s.Level, s.Vector, v.Cycles, s.Cycles, v.Details)
}

// Scenarios prints the verdicts of a catalog run followed by its summary.
// Passing verdicts are printed in verbose mode only.
func (r *Reporter) Scenarios(sum runner.Summary) {
	r.Header("Interrupt Scenarios")
	for _, v := range sum.Verdicts {
		if v.Passed && !r.verbose {
			continue
		}
		r.Verdict(v)
	}
	r.Summary(sum)
}

func (r *Reporter) Summary(sum runner.Summary) {
	r.Header("Interrupt Test Summary")
	fmt.Fprintf(r.w, "Total tests: %d\n", sum.Total)
	fmt.Fprintf(r.w, "Passed: %d\n", sum.Passed)
	fmt.Fprintf(r.w, "Failed: %d\n", sum.Failed)
	fmt.Fprintf(r.w, "Success rate: %.1f%%\n", sum.SuccessRate())
}

// Groups prints the top-level group results and reports whether all passed.
func (r *Reporter) Groups(results []bench.Result) bool {
	r.Header("Test Groups")
	all := true
	for _, res := range results {
		fmt.Fprintf(r.w, "[%s] %-20s %s\n", r.status(res.Passed), res.Name, res.Details)
		all = all && res.Passed
	}
	if all {
		fmt.Fprintln(r.w, "All tests passed")
	} else {
		fmt.Fprintln(r.w, "Some tests failed")
	}
	return all
}

func (r *Reporter) Performance(stats bench.Stats) {
	r.Header("Performance")
	fmt.Fprintf(r.w, "Total cycles: %d\n", stats.Ticks)
	fmt.Fprintf(r.w, "Timed cycles: %d\n", stats.Timed)
	fmt.Fprintf(r.w, "Execution time: %s\n", stats.Elapsed)
	fmt.Fprintf(r.w, "Time per cycle: %s\n", stats.PerTick())
}
