package scenario

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWellFormedLine(t *testing.T) {
	c, err := Parse(strings.NewReader("INT,2,00000068,autovector2,12,basic level-2 IRQ\n"))
	require.NoError(t, err)
	assert.Zero(t, c.Skipped)
	assert.Empty(t, c.Rejected)
	require.Len(t, c.Scenarios, 1)

	s := c.Scenarios[0]
	assert.Equal(t, Int, s.Kind)
	assert.Equal(t, "2", s.Level)
	assert.Equal(t, uint32(0x68), s.Vector)
	assert.Equal(t, "autovector2", s.Handler)
	assert.Equal(t, 12, s.Cycles)
	assert.Equal(t, "basic level-2 IRQ", s.Notes)
	assert.Equal(t, 1, s.Line)
}

func TestParseSkipsMalformedLines(t *testing.T) {
	src := `# header
INT,2,00000068,autovector2,12,ok

INT,3,0000006C,autovector3
`
	c, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	assert.Len(t, c.Scenarios, 1)
	assert.Equal(t, 1, c.Skipped)
	assert.Equal(t, 2, c.Scenarios[0].Line)
}

func TestParseSkipsBadFields(t *testing.T) {
	for _, line := range []string{
		"INT,2,zz,h,12,bad vector",
		"INT,2,00000068,h,twelve,bad cycles",
	} {
		c, err := Parse(strings.NewReader(line))
		require.NoError(t, err)
		assert.Empty(t, c.Scenarios, line)
		assert.Empty(t, c.Rejected, line)
		assert.Equal(t, 1, c.Skipped, line)
	}
}

func TestParseRejectsUnknownKind(t *testing.T) {
	src := `INT,2,00000068,autovector2,12,ok
# comment
INTERRUPT,2,00000068,autovector2,12,typo kind
int,3,zz,h,x,lower case tag
`
	c, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	assert.Zero(t, c.Skipped)
	require.Len(t, c.Scenarios, 1)
	require.Len(t, c.Rejected, 2)

	assert.Equal(t, Rejected{Tag: "INTERRUPT", Line: 3, Text: "INTERRUPT,2,00000068,autovector2,12,typo kind"}, c.Rejected[0])
	assert.Equal(t, "int", c.Rejected[1].Tag)
	assert.Equal(t, 4, c.Rejected[1].Line)
	assert.EqualError(t, c.Rejected[0], `line 3: unknown scenario kind "INTERRUPT"`)
}

func TestNotesKeepCommas(t *testing.T) {
	c, err := Parse(strings.NewReader("MASK,4,0x70,h,12,mask 3, level 4\n"))
	require.NoError(t, err)
	require.Len(t, c.Scenarios, 1)
	assert.Equal(t, "mask 3, level 4", c.Scenarios[0].Notes)
	assert.Equal(t, uint32(0x70), c.Scenarios[0].Vector)
}

func TestEmptyNotes(t *testing.T) {
	c, err := Parse(strings.NewReader("ACK,5,00000074,h,8,\n"))
	require.NoError(t, err)
	assert.Zero(t, c.Skipped)
	require.Len(t, c.Scenarios, 1)
	assert.Empty(t, c.Scenarios[0].Notes)
}

func TestKindRoundTrip(t *testing.T) {
	for _, tag := range []string{"INT", "EXCEPTION", "PRIORITY", "NESTED", "RTE", "MASK", "ACK", "VECTOR", "TIMING", "STATE"} {
		k, ok := ParseKind(tag)
		require.True(t, ok, tag)
		assert.Equal(t, tag, k.String())
	}
	_, ok := ParseKind("int")
	assert.False(t, ok)
	assert.Equal(t, "Kind(42)", Kind(42).String())
}

func TestPriority(t *testing.T) {
	level, err := Scenario{Level: "7"}.Priority()
	require.NoError(t, err)
	assert.Equal(t, uint8(7), level)

	_, err = Scenario{Level: "8"}.Priority()
	assert.Error(t, err)
	_, err = Scenario{Level: "bus_error"}.Priority()
	assert.Error(t, err)
}

func TestPair(t *testing.T) {
	outer, inner, err := Scenario{Level: "1-3"}.Pair()
	require.NoError(t, err)
	assert.Equal(t, uint8(1), outer)
	assert.Equal(t, uint8(3), inner)

	_, _, err = Scenario{Level: "3"}.Pair()
	assert.Error(t, err)
	_, _, err = Scenario{Level: "1-9"}.Pair()
	assert.Error(t, err)
}

func TestLoadCatalog(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "testdata", "interrupt_test_vectors.txt"))
	require.NoError(t, err)
	assert.Zero(t, c.Skipped)
	assert.Empty(t, c.Rejected)
	assert.Len(t, c.Scenarios, 20)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
