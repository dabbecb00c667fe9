package m68kbench

import (
	"github.com/jenska/m68kbench/internal/bench"
	"github.com/jenska/m68kbench/internal/bus"
	"github.com/jenska/m68kbench/internal/core"
	"github.com/jenska/m68kbench/internal/irq"
	"github.com/jenska/m68kbench/internal/runner"
	"github.com/jenska/m68kbench/internal/scenario"
)

const (
	Upper = bus.Upper
	Lower = bus.Lower
	Word  = bus.Word

	SinglePending = irq.SinglePending
	Prioritized   = irq.Prioritized

	FCInterruptAck = bus.FCInterruptAck
)

type (
	Pins          = bus.Pins
	Lane          = bus.Lane
	Memory        = bus.Memory
	Responder     = bus.Responder
	Transaction   = bus.Transaction
	BusConfig     = bus.Config
	AddressError  = bus.AddressError
	BusError      = bus.BusError
	Tracker       = irq.Tracker
	TrackerConfig = irq.Config
	Policy        = irq.Policy
	Ack           = irq.Ack
	Core          = bench.Core
	Dumper        = bench.Dumper
	Bench         = bench.Bench
	BenchConfig   = bench.Config
	GroupResult   = bench.Result
	Scenario      = scenario.Scenario
	Catalog       = scenario.Catalog
	Kind          = scenario.Kind
	Verdict       = runner.Verdict
	Summary       = runner.Summary
	StandIn       = core.StandIn
	CoreConfig    = core.Config
)

func DefaultBenchConfig() BenchConfig {
	return bench.DefaultConfig()
}

// NewBench builds a bench around c.
func NewBench(cfg BenchConfig, c Core) *Bench {
	return bench.New(cfg, c)
}

// NewStandIn returns the behavioural core model with default settings.
func NewStandIn() *StandIn {
	return core.NewStandIn(core.DefaultConfig())
}

func NewMemory() *Memory {
	return bus.NewMemory()
}

func NewResponder(cfg BusConfig, m *Memory) *Responder {
	return bus.NewResponder(cfg, m)
}

func NewTracker(cfg TrackerConfig) *Tracker {
	return irq.NewTracker(cfg)
}

// LoadScenarios reads a scenario catalog. Malformed lines are skipped; lines
// with an unknown kind are kept as rejections.
func LoadScenarios(path string) (Catalog, error) {
	return scenario.Load(path)
}

// RunScenarios runs the catalog on b and returns the summary. Every rejected
// line counts as a failure.
func RunScenarios(b *Bench, c Catalog) Summary {
	return runner.New(b, runner.DefaultConfig()).RunCatalog(c)
}
