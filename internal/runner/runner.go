// Package runner drives the interrupt scenario catalog through a bench and
// turns each run into a verdict.
package runner

import (
	"fmt"
	"strings"
	"time"

	"github.com/jenska/m68kbench/internal/bench"
	"github.com/jenska/m68kbench/internal/bus"
	"github.com/jenska/m68kbench/internal/core"
	"github.com/jenska/m68kbench/internal/irq"
	"github.com/jenska/m68kbench/internal/logging"
	"github.com/jenska/m68kbench/internal/scenario"
)

const (
	// IntermediateLimit caps waits whose outcome is not the verdict.
	IntermediateLimit = 50

	// DefaultVectorWatch is the number of ticks run after an acknowledge to
	// see whether the core fetched the scenario's vector.
	DefaultVectorWatch = 64
)

type (
	Config struct {
		// VectorWatch bounds the informational vector fetch check. Zero
		// disables it.
		VectorWatch int
	}

	// Verdict is the outcome of one scenario.
	Verdict struct {
		Scenario scenario.Scenario
		Passed   bool
		Observed bool
		Cycles   int
		Details  string
		Elapsed  time.Duration

		// Tag is the catalog kind tag of a rejected line; empty otherwise.
		Tag string
	}

	// Summary aggregates the verdicts of a catalog run.
	Summary struct {
		Total    int
		Passed   int
		Failed   int
		Verdicts []Verdict
	}

	// Runner executes scenarios one at a time on a shared bench.
	Runner struct {
		cfg   Config
		bench *bench.Bench
		log   *logging.Logger

		watch   uint32
		armed   bool
		fetched bool
	}

	condition func(p *bus.Pins) bool
)

func DefaultConfig() Config {
	return Config{VectorWatch: DefaultVectorWatch}
}

// New creates a runner on b. The runner installs itself as the responder
// observer.
func New(b *bench.Bench, cfg Config) *Runner {
	r := &Runner{cfg: cfg, bench: b, log: b.Logger()}
	b.Responder().SetObserver(r.observe)
	return r
}

func (r *Runner) SetLogger(l *logging.Logger) {
	if l == nil {
		l = logging.Discard()
	}
	r.log = l
}

// SuccessRate returns the pass percentage, 0 for an empty run.
func (s Summary) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Passed) * 100 / float64(s.Total)
}

func (s *Summary) add(v Verdict) {
	s.Total++
	if v.Passed {
		s.Passed++
	} else {
		s.Failed++
	}
	s.Verdicts = append(s.Verdicts, v)
}

// Run executes scenarios in order.
func (r *Runner) Run(scenarios []scenario.Scenario) Summary {
	var sum Summary
	for _, s := range scenarios {
		sum.add(r.RunOne(s))
	}
	return sum
}

// RunCatalog executes the catalog's scenarios and records every rejected
// line as a failed verdict after them.
func (r *Runner) RunCatalog(c scenario.Catalog) Summary {
	sum := r.Run(c.Scenarios)
	for _, rejected := range c.Rejected {
		r.log.Warnf("%v", rejected)
		sum.add(Verdict{
			Scenario: scenario.Scenario{Line: rejected.Line},
			Details:  rejected.Error(),
			Tag:      rejected.Tag,
		})
	}
	return sum
}

// RunOne resets the bench, applies the scenario's stimulus and waits for the
// expected acknowledge.
func (r *Runner) RunOne(s scenario.Scenario) Verdict {
	start := time.Now()
	r.log.Debugf("running %s line %d: %s", s, s.Line, s.Notes)

	r.bench.Reset()
	r.watch = s.Vector
	r.armed = false
	r.fetched = false

	var v Verdict
	switch s.Kind {
	case scenario.Int, scenario.Priority, scenario.Mask, scenario.Timing, scenario.State:
		v = r.interrupt(s, acknowledged)
	case scenario.Ack:
		v = r.interrupt(s, acknowledgeCycle)
	case scenario.Exception:
		v = r.exception(s)
	case scenario.Nested:
		v = r.nested(s)
	case scenario.RTE:
		v = r.returnFromInterrupt(s)
	case scenario.Vector:
		v = r.elapse(s)
	default:
		v = fail(s, fmt.Sprintf("unsupported scenario kind %s", s.Kind))
	}
	v.Elapsed = time.Since(start)

	if v.Passed {
		r.log.Debugf("%s passed after %d cycles", s, v.Cycles)
	} else {
		r.log.Debugf("%s failed: %s", s, v.Details)
	}
	return v
}

func acknowledged(p *bus.Pins) bool {
	return p.FC == bus.FCInterruptAck && p.VPA
}

func acknowledgeCycle(p *bus.Pins) bool {
	return p.FC == bus.FCInterruptAck
}

func released(p *bus.Pins) bool {
	return !p.VPA
}

// wait ticks until cond holds or limit ticks have run.
func (r *Runner) wait(limit int, cond condition) (int, bool) {
	p := r.bench.Pins()
	cycles := 0
	for cycles < limit {
		r.bench.Tick()
		cycles++
		if cond(p) {
			return cycles, true
		}
	}
	return cycles, false
}

func (r *Runner) interrupt(s scenario.Scenario, cond condition) Verdict {
	level, err := s.Priority()
	if err != nil {
		return fail(s, err.Error())
	}
	r.bench.Pins().IPL = level

	cycles, ok := r.wait(2*s.Cycles, cond)
	return r.verdict(s, cycles, ok)
}

func (r *Runner) exception(s scenario.Scenario) Verdict {
	p := r.bench.Pins()
	switch strings.TrimSpace(s.Level) {
	case "bus_error", "illegal_instruction":
		p.BERR = true
	case "address_error":
		if f, ok := r.bench.Core().(core.AddressFaulter); ok {
			f.MisalignNext()
		} else {
			p.BERR = true
		}
	default:
		return fail(s, fmt.Sprintf("unknown exception %q", s.Level))
	}

	cycles, ok := r.wait(2*s.Cycles, acknowledged)
	return r.verdict(s, cycles, ok)
}

// nested applies the inner level, withdraws it once acknowledged, waits for
// the handshake to finish and then applies the outer level. Only the second
// wait is judged.
func (r *Runner) nested(s scenario.Scenario) Verdict {
	outer, inner, err := s.Pair()
	if err != nil {
		return fail(s, err.Error())
	}
	p := r.bench.Pins()

	p.IPL = inner
	if _, ok := r.wait(IntermediateLimit, acknowledged); !ok {
		return fail(s, fmt.Sprintf("inner level %d not acknowledged within %d cycles", inner, IntermediateLimit))
	}
	p.IPL = 0
	if _, ok := r.wait(IntermediateLimit, released); !ok {
		return fail(s, "VPA not released after inner acknowledge")
	}

	p.IPL = outer
	cycles, ok := r.wait(2*s.Cycles, acknowledged)
	return r.verdict(s, cycles, ok)
}

// returnFromInterrupt takes the interrupt and then lets the expected number
// of cycles elapse.
func (r *Runner) returnFromInterrupt(s scenario.Scenario) Verdict {
	level, err := s.Priority()
	if err != nil {
		return fail(s, err.Error())
	}
	r.bench.Pins().IPL = level
	if _, ok := r.wait(IntermediateLimit, acknowledged); !ok {
		return fail(s, fmt.Sprintf("level %d not acknowledged within %d cycles", level, IntermediateLimit))
	}
	return r.elapse(s)
}

// elapse passes once the expected number of cycles has gone by.
func (r *Runner) elapse(s scenario.Scenario) Verdict {
	if s.Cycles <= 0 {
		return fail(s, fmt.Sprintf("expected cycles %d", s.Cycles))
	}
	count := 0
	cycles, ok := r.wait(2*s.Cycles, func(*bus.Pins) bool {
		count++
		return count >= s.Cycles
	})
	return judge(s, cycles, ok)
}

func (r *Runner) verdict(s scenario.Scenario, cycles int, observed bool) Verdict {
	v := judge(s, cycles, observed)
	if !observed {
		return v
	}

	acks := r.bench.Tracker().Acknowledged()
	if len(acks) > 0 {
		v.Details += "; " + describe(acks[len(acks)-1])
	}
	if r.cfg.VectorWatch > 0 {
		r.armed = true
		for i := 0; i < r.cfg.VectorWatch && !r.fetched; i++ {
			r.bench.Tick()
		}
		if r.fetched {
			v.Details += fmt.Sprintf("; vector %08x fetched", s.Vector)
		} else {
			v.Details += fmt.Sprintf("; vector %08x not fetched", s.Vector)
		}
	}
	return v
}

func (r *Runner) observe(tx bus.Transaction) {
	if r.armed && !tx.Write && tx.FC == bus.FCSupervisorData && tx.Addr == r.watch {
		r.fetched = true
	}
}

func judge(s scenario.Scenario, cycles int, observed bool) Verdict {
	v := Verdict{Scenario: s, Observed: observed, Cycles: cycles}
	switch {
	case !observed:
		v.Details = fmt.Sprintf("not observed within %d cycles", cycles)
	case cycles < s.Cycles || cycles > 2*s.Cycles:
		v.Details = fmt.Sprintf("timing mismatch: expected %d cycles, got %d", s.Cycles, cycles)
	default:
		v.Passed = true
		v.Details = fmt.Sprintf("observed after %d cycles", cycles)
	}
	return v
}

func fail(s scenario.Scenario, details string) Verdict {
	return Verdict{Scenario: s, Details: details}
}

func describe(a irq.Ack) string {
	if a.Exception != irq.ExceptionNone {
		return "acknowledged " + a.Exception.String()
	}
	return fmt.Sprintf("acknowledged level %d", a.Level)
}
