package trace

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jenska/m68kbench/internal/bus"
)

func TestHeaderAndInitialValues(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	p := &bus.Pins{Clk: true, IPL: 5, Addr: 0x68}
	require.NoError(t, w.Dump(5, p))
	require.NoError(t, w.Flush())

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "$timescale 1ns $end\n"))
	assert.Contains(t, out, "$scope module fx68k $end")
	assert.Contains(t, out, "$var wire 1 ! clk $end")
	assert.Contains(t, out, "$var wire 24 0 addr $end")
	assert.Contains(t, out, "$enddefinitions $end")
	assert.Contains(t, out, "#5\n$dumpvars\n1!\n")
	assert.Contains(t, out, "b101 .\n")
	assert.Contains(t, out, "b1101000 0\n")
	assert.True(t, strings.HasSuffix(out, "$end\n"))
}

func TestOnlyChangesAreWritten(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	p := &bus.Pins{}

	require.NoError(t, w.Dump(5, p))
	require.NoError(t, w.Flush())
	buf.Reset()

	require.NoError(t, w.Dump(10, p))
	require.NoError(t, w.Flush())
	assert.Empty(t, buf.String())

	p.AS = true
	p.FC = 7
	require.NoError(t, w.Dump(15, p))
	require.NoError(t, w.Flush())
	assert.Equal(t, "#15\n1'\nb111 /\n", buf.String())
}

func TestCreateAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	w, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, w.Dump(0, &bus.Pins{}))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "$dumpvars")
}

func TestCreateFailsOnBadPath(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "missing", "trace.vcd"))
	assert.Error(t, err)
}
