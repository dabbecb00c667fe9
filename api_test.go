package m68kbench

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicAPIRunsCatalog(t *testing.T) {
	catalog, err := LoadScenarios(filepath.Join("testdata", "interrupt_test_vectors.txt"))
	require.NoError(t, err)
	require.Empty(t, catalog.Rejected)

	b := NewBench(DefaultBenchConfig(), NewStandIn())
	sum := RunScenarios(b, catalog)
	assert.Equal(t, len(catalog.Scenarios), sum.Total)
	assert.Zero(t, sum.Failed)
}

func TestPublicAPIResponder(t *testing.T) {
	mem := NewMemory()
	r := NewResponder(BusConfig{AlignmentCheck: true}, mem)

	var seen []Transaction
	r.SetObserver(func(tx Transaction) { seen = append(seen, tx) })

	p := &Pins{AS: true, UDS: true, LDS: true, Addr: 0x101}
	r.Step(p)

	require.Len(t, seen, 1)
	var ae AddressError
	require.ErrorAs(t, seen[0].Err, &ae)
	assert.Equal(t, uint32(0x101), uint32(ae))
}

func TestPublicAPITracker(t *testing.T) {
	tr := NewTracker(TrackerConfig{Policy: Prioritized})
	p := &Pins{IPL: 4, FC: FCInterruptAck}
	tr.Step(p)

	assert.True(t, p.VPA)
	assert.Equal(t, []Ack{{Level: 4}}, tr.Acknowledged())
}
