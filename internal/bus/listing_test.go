package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisassembleInstalledProgram(t *testing.T) {
	m := NewMemory()
	n, err := InstallProgram(m, 0x1000, PlaceholderProgram)
	require.NoError(t, err)

	instructions, err := Disassemble(m, 0x1000, n)
	require.NoError(t, err)

	var got []string
	for _, inst := range instructions {
		got = append(got, inst.Assembly())
	}
	assert.Equal(t, []string{"MOVEQ #0, D0", "MOVEQ #1, D1", "ADD.W D0, D1", "RTS"}, got)
	assert.Equal(t, uint32(0x1006), instructions[3].Address)
}

func TestListing(t *testing.T) {
	m := NewMemory()
	InstallWords(m, 0x2000, []uint16{0x4e71, 0x4e75})

	lines, err := Listing(m, 0x2000, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"00002000: NOP", "00002002: RTS"}, lines)

	lines, err = Listing(m, 0x2000, 0)
	require.NoError(t, err)
	assert.Empty(t, lines)
}
