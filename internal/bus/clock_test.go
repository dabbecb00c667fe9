package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClockTogglesAndAdvancesTime(t *testing.T) {
	c := NewClock(0)
	var p Pins

	c.Tick(&p)
	assert.True(t, p.Clk)
	assert.Equal(t, uint64(DefaultTimeStep), c.Time())

	c.Tick(&p)
	assert.False(t, p.Clk)
	assert.Equal(t, uint64(2*DefaultTimeStep), c.Time())
}

func TestClockPhasesAlternate(t *testing.T) {
	c := NewClock(1)
	var p Pins

	for i := 0; i < 8; i++ {
		c.Phase(&p)
		assert.NotEqual(t, p.EnPhi1, p.EnPhi2, "phase %d", i)
		assert.Equal(t, i%2 == 1, p.EnPhi1, "phase %d", i)
	}
}

func TestClockResetKeepsTime(t *testing.T) {
	c := NewClock(10)
	var p Pins
	c.Tick(&p)
	c.Phase(&p)
	c.Reset()

	assert.Equal(t, uint64(10), c.Time())
	c.Phase(&p)
	assert.True(t, p.EnPhi2, "first phase after reset should enable phi2")
}
