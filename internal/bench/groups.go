package bench

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jenska/m68kbench/internal/bus"
	"github.com/jenska/m68kbench/internal/logging"
)

const (
	BasicBase        uint32 = 0x1000
	MemoryBase       uint32 = 0x2000
	InterruptHandler uint32 = 0x0100
	ExternalBase     uint32 = 0x3000

	StackTop uint32 = 0x00010000

	BasicTicks     = 100
	MemoryTicks    = 150
	InterruptTicks = 200
	ExternalTicks  = 300

	autoVector1 uint32 = (24 + 1) << 2
)

// Result is the outcome of one top-level test group.
type Result struct {
	Name    string
	Passed  bool
	Details string
	Cycles  int
	Elapsed time.Duration
}

// RunGroups runs the program-driven groups in order. programPath names the
// program used by the External Program group.
func (b *Bench) RunGroups(programPath string) []Result {
	return []Result{
		b.BasicFunctionality(),
		b.MemoryAccess(),
		b.InterruptHandling(),
		b.ExternalProgram(programPath),
	}
}

func (b *Bench) BasicFunctionality() Result {
	return b.runGroup("Basic Functionality", BasicTicks, func() error {
		return b.installSource(BasicBase, bus.PlaceholderProgram)
	})
}

func (b *Bench) MemoryAccess() Result {
	return b.runGroup("Memory Access", MemoryTicks, func() error {
		return b.installSource(MemoryBase, bus.MemoryTestProgram)
	})
}

// InterruptHandling runs the placeholder program with the level-1
// autovector pointing at InterruptHandler and the pulse generator enabled.
// The group passes only if at least one interrupt was acknowledged.
func (b *Bench) InterruptHandling() Result {
	defer b.SetInterruptPulse(0, 0)

	res := b.runGroup("Interrupt Handling", InterruptTicks, func() error {
		if err := b.installSource(BasicBase, bus.PlaceholderProgram); err != nil {
			return err
		}
		n, err := bus.InstallProgram(b.Memory(), InterruptHandler, bus.PlaceholderProgram)
		if err != nil {
			return err
		}
		b.logListing(InterruptHandler, n)
		writeLong(b.Memory(), autoVector1, InterruptHandler)
		b.SetInterruptPulse(b.cfg.IRQPeriod, b.cfg.IRQLevel)
		return nil
	})
	if !res.Passed {
		return res
	}

	acks := b.tracker.Acknowledged()
	if len(acks) == 0 {
		res.Passed = false
		res.Details += ", no interrupt acknowledged"
		return res
	}
	res.Details += fmt.Sprintf(", %d interrupts acknowledged", len(acks))
	return res
}

// ExternalProgram loads path at ExternalBase. Binary (.bin) and hex (.hex)
// images are loaded as is; any other file is treated as source and stands in
// for the placeholder program.
func (b *Bench) ExternalProgram(path string) Result {
	return b.runGroup("External Program", ExternalTicks, func() error {
		b.log.Infof("loading test program from %s", path)
		_, err := b.LoadProgram(path, ExternalBase)
		return err
	})
}

// LoadProgram installs the program named by path at base and points the
// reset vector at it. It returns the number of bytes installed.
func (b *Bench) LoadProgram(path string, base uint32) (int, error) {
	var (
		n   int
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bin":
		n, err = bus.LoadBinaryFile(b.Memory(), path, base)
	case ".hex":
		n, err = bus.LoadHexFile(b.Memory(), path, base)
	default:
		n, err = bus.InstallProgram(b.Memory(), base, bus.PlaceholderProgram)
	}
	if err != nil {
		return n, err
	}
	b.logListing(base, n)
	b.bootFrom(base)
	return n, nil
}

func (b *Bench) installSource(base uint32, src string) error {
	n, err := bus.InstallProgram(b.Memory(), base, src)
	if err != nil {
		return err
	}
	b.logListing(base, n)
	b.bootFrom(base)
	return nil
}

// logListing writes a disassembly of the n bytes installed at base at debug
// level.
func (b *Bench) logListing(base uint32, n int) {
	if !b.log.Enabled(logging.LevelDebug) {
		return
	}
	lines, err := bus.Listing(b.Memory(), base, n)
	for _, line := range lines {
		b.log.Debugf("  %s", line)
	}
	if err != nil {
		b.log.Warnf("disassembly at %08x stopped: %v", base, err)
	}
}

func (b *Bench) bootFrom(base uint32) {
	writeLong(b.Memory(), 0, StackTop)
	writeLong(b.Memory(), 4, base)
}

func (b *Bench) runGroup(name string, ticks int, setup func() error) Result {
	start := time.Now()
	if err := setup(); err != nil {
		b.log.Errorf("%s: %v", name, err)
		return Result{Name: name, Details: err.Error(), Elapsed: time.Since(start)}
	}

	b.Reset()
	b.RunCycles(ticks)

	served := b.responder.Completed()
	b.log.Debugf("%s: %d bus transactions in %d cycles", name, served, ticks)
	return Result{
		Name:    name,
		Passed:  served > 0,
		Details: fmt.Sprintf("%d bus transactions", served),
		Cycles:  ticks,
		Elapsed: time.Since(start),
	}
}

func writeLong(m *bus.Memory, address, value uint32) {
	m.WriteWord(address, uint16(value>>16))
	m.WriteWord(address+2, uint16(value))
}
