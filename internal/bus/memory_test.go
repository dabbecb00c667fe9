package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryWordRoundTrip(t *testing.T) {
	m := NewMemory()

	m.Write(Word, 0x1000, 0xbeef)
	assert.Equal(t, uint16(0xbeef), m.Read(Word, 0x1000))
}

func TestMemoryByteLanes(t *testing.T) {
	tests := []struct {
		name string
		lane Lane
		data uint16
		want uint16
	}{
		{"upper", Upper, 0xab00, 0xabff},
		{"lower", Lower, 0x00cd, 0xffcd},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMemory()
			m.Write(tt.lane, 0x2001, tt.data)
			assert.Equal(t, tt.want, m.Read(tt.lane, 0x2001))
		})
	}
}

func TestMemoryAbsentEntriesReadZero(t *testing.T) {
	m := NewMemory()
	for _, lane := range []Lane{Word, Upper, Lower} {
		assert.Zero(t, m.Read(lane, 0x4000), "%s read of empty image", lane)
	}
}

func TestMemoryWordMapWinsOverBytes(t *testing.T) {
	m := NewMemory()
	m.WriteByte(0x10, 0x12)
	m.WriteWord(0x10, 0x3456)

	assert.Equal(t, uint16(0x3456), m.Read(Upper, 0x10))
}

func TestMemoryByteWriteLeavesWordMap(t *testing.T) {
	m := NewMemory()
	m.Write(Upper, 0x20, 0x7700)

	_, ok := m.LookupWord(0x20)
	assert.False(t, ok, "byte write created a word entry")

	b, ok := m.LookupByte(0x20)
	require.True(t, ok)
	assert.Equal(t, uint8(0x77), b)
}

func TestMemoryReset(t *testing.T) {
	m := NewMemory()
	m.WriteWord(0, 1)
	m.WriteByte(1, 2)
	m.Reset()

	words, bytes := m.Len()
	assert.Zero(t, words)
	assert.Zero(t, bytes)
}

func TestInitPatterns(t *testing.T) {
	m := NewMemory()
	InitPatterns(m)

	checks := []struct {
		address uint32
		want    uint16
	}{
		{0xf000, 0xdead},
		{0xfffe, 0xdead},
		{0x1000, 0x1000},
		{0x1ffe, 0x1ffe},
		{0x0000, 0x0000},
		{0x01fe, 0x0000},
	}
	for _, c := range checks {
		got, ok := m.LookupWord(c.address)
		require.True(t, ok, "pattern at %04x missing", c.address)
		assert.Equal(t, c.want, got, "pattern at %04x", c.address)
	}
}
