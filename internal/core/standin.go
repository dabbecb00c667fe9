// Package core provides a behavioural stand-in for the 68000 core the bench
// drives. It runs real bus cycles with the standard eight-state timing but
// executes no instructions: it fetches the reset vector, prefetches
// sequentially and performs the acknowledge and exception-processing cycles
// an interrupt or bus fault would cause.
package core

import (
	"slices"

	"github.com/jenska/m68kbench/internal/bus"
)

const (
	// DefaultSamples is the number of consecutive cycle-end IPL samples a
	// level must hold before it is recognised.
	DefaultSamples = 2

	// IACKBase is the acknowledge cycle address; the level sits in A1-A3.
	IACKBase uint32 = 0xfffff1

	AutoVectorBase      = 24
	SpuriousVector      = 24
	UninitializedVector = 15
	BusErrorVector      = 2
	AddressErrorVector  = 3

	// frameWords is the number of stack writes per exception.
	frameWords = 3

	addressMask uint32 = 0xffffff
)

type (
	Config struct {
		// Mask is the interrupt priority mask; levels at or below are ignored,
		// except level 7.
		Mask    uint8
		Samples int
	}

	// AddressFaulter is implemented by cores that can be told to issue a
	// misaligned access on their next fetch.
	AddressFaulter interface {
		MisalignNext()
	}

	kind int

	cycle struct {
		kind       kind
		addr       uint32
		fc         uint8
		write      bool
		lane       bus.Lane
		data       uint16
		level      uint8
		vector     int // for exception acknowledge cycles
		misaligned bool
	}

	// StandIn is a cycle-stepped core model. One call to Eval advances one
	// bus state; eight states make a cycle, S4 waits for a termination.
	StandIn struct {
		cfg Config

		state int
		cur   cycle
		plan  []cycle

		boot     int
		bootWord [4]uint16
		pc       uint32
		ssp      uint32

		sampled uint8
		samples int
		irq     uint8
		fault   int

		misalign   bool
		berr       bool
		autovector bool
		latched    uint16
		vectorHigh uint16

		cycles  uint64
		vectors []int
	}
)

const (
	kindBoot kind = iota
	kindFetch
	kindAck
	kindPush
	kindVectorHigh
	kindVectorLow
)

func DefaultConfig() Config {
	return Config{Samples: DefaultSamples}
}

func NewStandIn(cfg Config) *StandIn {
	if cfg.Samples <= 0 {
		cfg.Samples = DefaultSamples
	}
	cfg.Mask &= 7
	return &StandIn{cfg: cfg}
}

// MisalignNext makes the next boot or prefetch read use an odd word address.
func (c *StandIn) MisalignNext() {
	c.misalign = true
}

// Cycles returns the number of bus cycles completed since reset.
func (c *StandIn) Cycles() uint64 {
	return c.cycles
}

// PC returns the next prefetch address.
func (c *StandIn) PC() uint32 {
	return c.pc
}

// Vectors returns a copy of the vector numbers taken since reset, oldest
// first.
func (c *StandIn) Vectors() []int {
	return slices.Clone(c.vectors)
}

// Eval advances the core by one state.
func (c *StandIn) Eval(p *bus.Pins) {
	if p.Reset {
		c.reset(p)
		return
	}

	switch c.state {
	case 0:
		c.begin(p)
	case 2:
		p.AS = true
		p.UDS = c.cur.lane != bus.Lower
		p.LDS = c.cur.lane != bus.Upper
	case 4:
		switch {
		case p.BERR:
			c.berr = true
		case c.cur.kind == kindAck && p.VPA:
			c.autovector = true
		case !p.DTACK:
			return
		}
	case 6:
		if !c.berr && !c.cur.write {
			c.latched = p.DataIn
		}
	case 7:
		p.AS = false
		p.UDS = false
		p.LDS = false
		p.Write = false
		c.finish(p)
		c.state = 0
		return
	}
	c.state++
}

func (c *StandIn) reset(p *bus.Pins) {
	p.AS = false
	p.UDS = false
	p.LDS = false
	p.Write = false
	p.FC = 0
	p.Addr = 0

	c.state = 0
	c.cur = cycle{}
	c.plan = c.plan[:0]
	c.boot = 0
	c.pc = 0
	c.ssp = 0
	c.sampled = 0
	c.samples = 0
	c.irq = 0
	c.fault = 0
	c.misalign = false
	c.berr = false
	c.autovector = false
	c.cycles = 0
	c.vectors = nil
}

func (c *StandIn) begin(p *bus.Pins) {
	c.berr = false
	c.autovector = false
	c.latched = 0
	c.cur = c.next()

	p.FC = c.cur.fc
	p.Addr = c.cur.addr & addressMask
	p.Write = c.cur.write
	if c.cur.write {
		p.DataOut = c.cur.data
	}
}

func (c *StandIn) next() cycle {
	switch {
	case len(c.plan) > 0:
		next := c.plan[0]
		c.plan = c.plan[1:]
		return next
	case c.fault != 0:
		return cycle{kind: kindAck, addr: IACKBase, fc: bus.FCInterruptAck, lane: bus.Lower, vector: c.fault}
	case c.irq != 0:
		return cycle{kind: kindAck, addr: IACKBase | uint32(c.irq)<<1, fc: bus.FCInterruptAck, lane: bus.Lower, level: c.irq}
	}

	var next cycle
	if c.boot < len(c.bootWord) {
		next = cycle{kind: kindBoot, addr: uint32(c.boot) * 2, fc: bus.FCSupervisorProg, lane: bus.Word}
	} else {
		next = cycle{kind: kindFetch, addr: c.pc, fc: bus.FCSupervisorProg, lane: bus.Word}
		c.pc += 2
	}
	if c.misalign {
		next.addr |= 1
		next.misaligned = true
		c.misalign = false
	}
	return next
}

func (c *StandIn) finish(p *bus.Pins) {
	c.cycles++

	switch c.cur.kind {
	case kindBoot:
		c.bootWord[c.boot] = c.latched
		c.boot++
		switch c.boot {
		case 2:
			c.ssp = uint32(c.bootWord[0])<<16 | uint32(c.bootWord[1])
		case 4:
			c.pc = uint32(c.bootWord[2])<<16 | uint32(c.bootWord[3])
		}
	case kindAck:
		c.acknowledged()
		return
	case kindVectorHigh:
		c.vectorHigh = c.latched
		return
	case kindVectorLow:
		c.pc = uint32(c.vectorHigh)<<16 | uint32(c.latched)
		return
	case kindPush:
		return
	}

	if c.berr {
		c.fault = BusErrorVector
		if c.cur.misaligned {
			c.fault = AddressErrorVector
		}
		return
	}
	c.sample(p.IPL)
}

func (c *StandIn) sample(ipl uint8) {
	ipl &= 7
	if ipl == 0 || (ipl <= c.cfg.Mask && ipl != 7) {
		c.sampled = 0
		c.samples = 0
		return
	}
	if ipl == c.sampled {
		c.samples++
	} else {
		c.sampled = ipl
		c.samples = 1
	}
	if c.samples >= c.cfg.Samples {
		c.irq = ipl
	}
}

func (c *StandIn) acknowledged() {
	var vector int
	switch {
	case c.cur.vector != 0:
		vector = c.cur.vector
	case c.autovector:
		vector = AutoVectorBase + int(c.cur.level)
	case c.berr:
		vector = SpuriousVector
	default:
		vector = int(c.latched & 0xff)
		if vector == 0 {
			vector = UninitializedVector
		}
	}

	c.fault = 0
	c.irq = 0
	c.sampled = 0
	c.samples = 0
	c.vectors = append(c.vectors, vector)

	// An exception taken during the reset vector fetch abandons it; the
	// handler address replaces the initial PC.
	c.boot = len(c.bootWord)

	pc := c.pc
	frame := [frameWords]uint16{uint16(pc), uint16(pc >> 16), 0x2700}
	for _, word := range frame {
		c.ssp -= 2
		c.plan = append(c.plan, cycle{kind: kindPush, addr: c.ssp, fc: bus.FCSupervisorData, write: true, lane: bus.Word, data: word})
	}
	address := uint32(vector) << 2
	c.plan = append(c.plan,
		cycle{kind: kindVectorHigh, addr: address, fc: bus.FCSupervisorData, lane: bus.Word},
		cycle{kind: kindVectorLow, addr: address + 2, fc: bus.FCSupervisorData, lane: bus.Word},
	)
}
