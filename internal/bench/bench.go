// Package bench wires the clock, the bus responder, the acknowledge tracker
// and a core into a single-threaded, cycle-stepped test bench.
package bench

import (
	"time"

	"github.com/jenska/m68kbench/internal/bus"
	"github.com/jenska/m68kbench/internal/irq"
	"github.com/jenska/m68kbench/internal/logging"
)

const (
	// ResetTicks is the number of ticks the reset and power-up lines are held.
	ResetTicks = 10
	// SettleTicks is the number of ticks run after reset is released.
	SettleTicks = 5

	// DefaultIRQPeriod is the number of ticks between interrupt requests of
	// the pulse generator.
	DefaultIRQPeriod = 50
)

type (
	// Core is the device under test. Eval is called once per tick, after the
	// responder and the tracker have updated the pins.
	Core interface {
		Eval(p *bus.Pins)
	}

	// Dumper records the pin state after every tick.
	Dumper interface {
		Dump(time uint64, p *bus.Pins) error
	}

	Config struct {
		Bus         bus.Config
		IRQ         irq.Config
		TimeStep    uint64
		Performance bool

		// IRQPeriod and IRQLevel drive the interrupt pulse generator used by
		// the Interrupt Handling group.
		IRQPeriod int
		IRQLevel  uint8
	}

	// Stats is the performance summary of a bench.
	Stats struct {
		Ticks   uint64
		Timed   uint64
		Elapsed time.Duration
	}

	Bench struct {
		cfg Config

		pins      bus.Pins
		clock     *bus.Clock
		responder *bus.Responder
		tracker   *irq.Tracker
		core      Core
		dumper    Dumper
		log       *logging.Logger

		pulse   pulse
		ticks   uint64
		timed   uint64
		elapsed time.Duration
	}
)

func DefaultConfig() Config {
	return Config{
		Bus:       bus.DefaultConfig(),
		IRQ:       irq.DefaultConfig(),
		TimeStep:  bus.DefaultTimeStep,
		IRQPeriod: DefaultIRQPeriod,
		IRQLevel:  1,
	}
}

// New builds a bench around core. The memory image is seeded with the
// power-up patterns.
func New(cfg Config, core Core) *Bench {
	mem := bus.NewMemory()
	bus.InitPatterns(mem)

	return &Bench{
		cfg:       cfg,
		clock:     bus.NewClock(cfg.TimeStep),
		responder: bus.NewResponder(cfg.Bus, mem),
		tracker:   irq.NewTracker(cfg.IRQ),
		core:      core,
		log:       logging.Discard(),
	}
}

func (b *Bench) SetDumper(d Dumper) {
	b.dumper = d
}

func (b *Bench) SetLogger(l *logging.Logger) {
	if l == nil {
		l = logging.Discard()
	}
	b.log = l
}

func (b *Bench) Logger() *logging.Logger {
	return b.log
}

func (b *Bench) Pins() *bus.Pins {
	return &b.pins
}

func (b *Bench) Responder() *bus.Responder {
	return b.responder
}

func (b *Bench) Memory() *bus.Memory {
	return b.responder.Memory()
}

func (b *Bench) Tracker() *irq.Tracker {
	return b.tracker
}

func (b *Bench) Core() Core {
	return b.core
}

// Time returns the simulated time.
func (b *Bench) Time() uint64 {
	return b.clock.Time()
}

// Tick advances the bench by one clock toggle.
func (b *Bench) Tick() {
	b.clock.Tick(&b.pins)
	b.clock.Phase(&b.pins)
	b.responder.Step(&b.pins)
	b.pulse.step(&b.pins)
	if b.pins.Clk {
		b.tracker.Step(&b.pins)
	}
	b.core.Eval(&b.pins)

	if b.dumper != nil {
		if err := b.dumper.Dump(b.clock.Time(), &b.pins); err != nil {
			b.log.Errorf("trace dump failed, tracing disabled: %v", err)
			b.dumper = nil
		}
	}
	b.ticks++
}

// Reset clears the pins and the bench components, holds reset for
// ResetTicks and lets the core settle for SettleTicks. The memory image is
// kept.
func (b *Bench) Reset() {
	b.pins.Clear()
	b.clock.Reset()
	b.responder.Reset()
	b.tracker.Reset()

	b.pins.Reset = true
	b.pins.PwrUp = true
	for range ResetTicks {
		b.Tick()
	}
	b.pins.Reset = false
	b.pins.PwrUp = false
	for range SettleTicks {
		b.Tick()
	}
}

// RunCycles advances n ticks. With performance monitoring enabled the wall
// time is accumulated.
func (b *Bench) RunCycles(n int) {
	if n <= 0 {
		return
	}
	var start time.Time
	if b.cfg.Performance {
		start = time.Now()
	}
	for range n {
		b.Tick()
	}
	if b.cfg.Performance {
		b.elapsed += time.Since(start)
		b.timed += uint64(n)
	}
}

// Stats returns the number of ticks run and the accumulated wall time.
func (b *Bench) Stats() Stats {
	return Stats{Ticks: b.ticks, Timed: b.timed, Elapsed: b.elapsed}
}

// PerTick returns the average wall time per timed tick, 0 before any timed
// run.
func (s Stats) PerTick() time.Duration {
	if s.Timed == 0 {
		return 0
	}
	return s.Elapsed / time.Duration(s.Timed)
}

// SetInterruptPulse enables the pulse generator: every period ticks level is
// driven on IPL and held until the request is acknowledged with VPA in an
// interrupt acknowledge cycle. A zero period disables it and withdraws a
// request still held.
func (b *Bench) SetInterruptPulse(period int, level uint8) {
	if b.pulse.active {
		b.pins.IPL = 0
	}
	b.pulse = pulse{period: period, level: level & 7}
}

type pulse struct {
	period  int
	level   uint8
	counter int
	active  bool
}

func (g *pulse) step(p *bus.Pins) {
	if g.period <= 0 {
		return
	}
	if g.active {
		if p.VPA && p.FC == bus.FCInterruptAck {
			g.active = false
			p.IPL = 0
		}
		return
	}
	g.counter++
	if g.counter >= g.period {
		g.active = true
		g.counter = 0
		p.IPL = g.level
	}
}
