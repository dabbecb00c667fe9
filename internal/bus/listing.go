package bus

import (
	"encoding/binary"

	"github.com/jenska/m68kdasm"
)

// Disassemble decodes size bytes of the word map starting at base. An odd
// trailing byte is ignored.
func Disassemble(m *Memory, base uint32, size int) ([]m68kdasm.Instruction, error) {
	data := make([]byte, max(size, 0)&^1)
	for off := 0; off < len(data); off += 2 {
		binary.BigEndian.PutUint16(data[off:], m.ReadWord(base+uint32(off)))
	}
	return m68kdasm.DisassembleRange(data, base)
}

// Listing returns one "address: instruction" line per decoded instruction.
// Lines decoded before an error are returned with it.
func Listing(m *Memory, base uint32, size int) ([]string, error) {
	instructions, err := Disassemble(m, base, size)
	lines := make([]string, 0, len(instructions))
	for _, inst := range instructions {
		lines = append(lines, inst.String())
	}
	return lines, err
}
