// Package trace writes the bench pin state as a VCD waveform.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jenska/m68kbench/internal/bus"
)

// DefaultFile is the trace file name used by the CLI.
const DefaultFile = "fx68k_main_trace.vcd"

type signal struct {
	id    string
	name  string
	width int
	value func(p *bus.Pins) uint64
}

func bit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

var signals = []signal{
	{"!", "clk", 1, func(p *bus.Pins) uint64 { return bit(p.Clk) }},
	{"\"", "enPhi1", 1, func(p *bus.Pins) uint64 { return bit(p.EnPhi1) }},
	{"#", "enPhi2", 1, func(p *bus.Pins) uint64 { return bit(p.EnPhi2) }},
	{"$", "reset", 1, func(p *bus.Pins) uint64 { return bit(p.Reset) }},
	{"%", "pwrUp", 1, func(p *bus.Pins) uint64 { return bit(p.PwrUp) }},
	{"&", "halt", 1, func(p *bus.Pins) uint64 { return bit(p.Halt) }},
	{"'", "as", 1, func(p *bus.Pins) uint64 { return bit(p.AS) }},
	{"(", "uds", 1, func(p *bus.Pins) uint64 { return bit(p.UDS) }},
	{")", "lds", 1, func(p *bus.Pins) uint64 { return bit(p.LDS) }},
	{"*", "rw", 1, func(p *bus.Pins) uint64 { return bit(!p.Write) }},
	{"+", "dtack", 1, func(p *bus.Pins) uint64 { return bit(p.DTACK) }},
	{",", "vpa", 1, func(p *bus.Pins) uint64 { return bit(p.VPA) }},
	{"-", "berr", 1, func(p *bus.Pins) uint64 { return bit(p.BERR) }},
	{".", "ipl", 3, func(p *bus.Pins) uint64 { return uint64(p.IPL & 7) }},
	{"/", "fc", 3, func(p *bus.Pins) uint64 { return uint64(p.FC & 7) }},
	{"0", "addr", 24, func(p *bus.Pins) uint64 { return uint64(p.Addr & 0xffffff) }},
	{"1", "dataIn", 16, func(p *bus.Pins) uint64 { return uint64(p.DataIn) }},
	{"2", "dataOut", 16, func(p *bus.Pins) uint64 { return uint64(p.DataOut) }},
}

// Writer emits a value change dump. The header is written on the first Dump;
// later dumps only list the signals that changed.
type Writer struct {
	w      *bufio.Writer
	closer io.Closer
	module string

	started bool
	last    []uint64
}

// NewWriter writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w), module: "fx68k", last: make([]uint64, len(signals))}
}

// Create opens path for writing.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	w := NewWriter(f)
	w.closer = f
	return w, nil
}

// Dump records p at time.
func (v *Writer) Dump(time uint64, p *bus.Pins) error {
	if !v.started {
		v.started = true
		v.header()
		fmt.Fprintf(v.w, "#%d\n$dumpvars\n", time)
		for i, s := range signals {
			v.last[i] = s.value(p)
			v.change(s, v.last[i])
		}
		_, err := v.w.WriteString("$end\n")
		return err
	}

	stamped := false
	for i, s := range signals {
		value := s.value(p)
		if value == v.last[i] {
			continue
		}
		if !stamped {
			fmt.Fprintf(v.w, "#%d\n", time)
			stamped = true
		}
		v.last[i] = value
		v.change(s, value)
	}
	return nil
}

func (v *Writer) header() {
	fmt.Fprintln(v.w, "$timescale 1ns $end")
	fmt.Fprintf(v.w, "$scope module %s $end\n", v.module)
	for _, s := range signals {
		fmt.Fprintf(v.w, "$var wire %d %s %s $end\n", s.width, s.id, s.name)
	}
	fmt.Fprintln(v.w, "$upscope $end")
	fmt.Fprintln(v.w, "$enddefinitions $end")
}

func (v *Writer) change(s signal, value uint64) {
	if s.width == 1 {
		fmt.Fprintf(v.w, "%d%s\n", value, s.id)
		return
	}
	fmt.Fprintf(v.w, "b%s %s\n", strconv.FormatUint(value, 2), s.id)
}

// Flush writes buffered changes.
func (v *Writer) Flush() error {
	return v.w.Flush()
}

// Close flushes and closes the underlying file, if the writer opened it.
func (v *Writer) Close() error {
	err := v.w.Flush()
	if v.closer != nil {
		if cerr := v.closer.Close(); err == nil {
			err = cerr
		}
		v.closer = nil
	}
	return err
}
