package irq

import (
	"slices"

	"github.com/jenska/m68kbench/internal/bus"
)

// DefaultHold is the number of evaluated clock edges VPA stays asserted.
const DefaultHold = 4

type (
	// Exception is the kind of exception the tracker holds pending.
	Exception int

	// Policy selects how interrupt requests are latched.
	Policy int

	Config struct {
		Policy Policy
		Hold   int
	}

	// Ack records one autovector acknowledge issued by the tracker.
	Ack struct {
		Level     uint8
		Exception Exception
	}

	// Tracker watches IPL and BERR, and answers interrupt acknowledge cycles
	// (FC 7) with VPA.
	Tracker struct {
		cfg Config

		level     uint8
		exception Exception
		queue     *Controller

		holding bool
		hold    int

		acks []Ack
	}
)

const (
	ExceptionNone Exception = iota
	ExceptionBusError
)

const (
	// SinglePending tracks at most one interrupt and one exception. A new
	// level is ignored until the pending one has been acknowledged.
	SinglePending Policy = iota
	// Prioritized keeps every latched level and acknowledges the highest.
	Prioritized
)

func (e Exception) String() string {
	switch e {
	case ExceptionNone:
		return "none"
	case ExceptionBusError:
		return "bus_error"
	default:
		return "unknown"
	}
}

func (p Policy) String() string {
	switch p {
	case SinglePending:
		return "single"
	case Prioritized:
		return "priority"
	default:
		return "unknown"
	}
}

// ParsePolicy maps a policy name back to its value.
func ParsePolicy(name string) (Policy, bool) {
	switch name {
	case "single", "":
		return SinglePending, true
	case "priority", "prioritized":
		return Prioritized, true
	}
	return SinglePending, false
}

func DefaultConfig() Config {
	return Config{Policy: SinglePending, Hold: DefaultHold}
}

func NewTracker(cfg Config) *Tracker {
	if cfg.Hold <= 0 {
		cfg.Hold = DefaultHold
	}
	return &Tracker{cfg: cfg, queue: NewController()}
}

// Policy returns the latching policy in effect.
func (t *Tracker) Policy() Policy {
	return t.cfg.Policy
}

// PendingLevel returns the pending interrupt level, 0 when none.
func (t *Tracker) PendingLevel() uint8 {
	if t.cfg.Policy == Prioritized {
		return t.queue.Highest()
	}
	return t.level
}

// PendingException returns the pending exception.
func (t *Tracker) PendingException() Exception {
	return t.exception
}

// Holding reports whether the tracker is currently driving VPA.
func (t *Tracker) Holding() bool {
	return t.holding
}

// Acknowledged returns a copy of the acknowledges issued since the last reset.
func (t *Tracker) Acknowledged() []Ack {
	return slices.Clone(t.acks)
}

// Reset clears the pending state and the VPA hold.
func (t *Tracker) Reset() {
	t.level = 0
	t.exception = ExceptionNone
	t.queue.Reset()
	t.holding = false
	t.hold = 0
	t.acks = nil
}

// Step evaluates one positive clock edge.
func (t *Tracker) Step(p *bus.Pins) {
	t.latch(p)

	if p.FC == bus.FCInterruptAck {
		if level, ok := t.takeInterrupt(); ok {
			t.assert(p, Ack{Level: level})
		} else if t.exception != ExceptionNone {
			t.assert(p, Ack{Exception: t.exception})
			t.exception = ExceptionNone
		}
	}

	if t.holding {
		t.hold++
		if t.hold >= t.cfg.Hold {
			p.VPA = false
			t.holding = false
			t.hold = 0
		}
	}
}

func (t *Tracker) latch(p *bus.Pins) {
	if p.IPL > 0 {
		switch t.cfg.Policy {
		case Prioritized:
			if !t.queue.IsPending(p.IPL) {
				_ = t.queue.Request(p.IPL & 7)
			}
		default:
			if t.level == 0 {
				t.level = p.IPL & 7
			}
		}
	}

	if p.BERR && t.exception == ExceptionNone {
		t.exception = ExceptionBusError
	}
}

func (t *Tracker) takeInterrupt() (uint8, bool) {
	if t.cfg.Policy == Prioritized {
		return t.queue.Acknowledge(0)
	}
	if t.level == 0 {
		return 0, false
	}
	level := t.level
	t.level = 0
	return level, true
}

func (t *Tracker) assert(p *bus.Pins, ack Ack) {
	p.VPA = true
	t.holding = true
	t.acks = append(t.acks, ack)
}
