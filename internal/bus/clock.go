package bus

// DefaultTimeStep is the simulated time added per clock toggle (10 units per
// period).
const DefaultTimeStep = 5

// Clock drives the core clock line and the two non-overlapping enable phases.
type Clock struct {
	step  uint64
	time  uint64
	phase int
}

func NewClock(step uint64) *Clock {
	if step == 0 {
		step = DefaultTimeStep
	}
	return &Clock{step: step}
}

// Tick toggles the clock line and advances simulated time by one step.
func (c *Clock) Tick(p *Pins) {
	p.Clk = !p.Clk
	c.time += c.step
}

// Phase advances the four-phase counter and derives EnPhi1/EnPhi2 from it.
func (c *Clock) Phase(p *Pins) {
	c.phase = (c.phase + 1) % 4
	p.EnPhi1 = c.phase == 0 || c.phase == 2
	p.EnPhi2 = c.phase == 1 || c.phase == 3
}

// Time returns the simulated time since the clock was created.
func (c *Clock) Time() uint64 {
	return c.time
}

// Reset rewinds the phase counter. Simulated time is monotonic and is kept.
func (c *Clock) Reset() {
	c.phase = 0
}
