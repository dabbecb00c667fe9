package irq

import "fmt"

// AutoVectorBase is the vector number of the level 0 autovector; level n uses
// AutoVectorBase+n.
const AutoVectorBase = 24

// Controller keeps one pending flag per priority level and resolves the
// highest one at acknowledge time.
type Controller struct {
	pending  [8]bool
	maxLevel uint8
}

func NewController() *Controller {
	return &Controller{}
}

// Request marks level as pending. Level 0 is ignored.
func (c *Controller) Request(level uint8) error {
	if level > 7 {
		return fmt.Errorf("invalid interrupt level %d", level)
	}
	if level == 0 {
		return nil
	}

	c.pending[level] = true
	if level > c.maxLevel {
		c.maxLevel = level
	}
	return nil
}

// IsPending reports whether level is waiting to be acknowledged.
func (c *Controller) IsPending(level uint8) bool {
	return level <= 7 && c.pending[level]
}

// Highest returns the highest pending level, 0 when none is pending.
func (c *Controller) Highest() uint8 {
	return c.maxLevel
}

// Acknowledge clears and returns the highest pending level above mask.
func (c *Controller) Acknowledge(mask uint8) (uint8, bool) {
	if c.maxLevel <= mask {
		return 0, false
	}

	level := c.maxLevel
	c.pending[level] = false

	c.maxLevel = 0
	for l := uint8(7); l > 0; l-- {
		if c.pending[l] {
			c.maxLevel = l
			break
		}
	}
	return level, true
}

// Reset drops every pending level.
func (c *Controller) Reset() {
	c.pending = [8]bool{}
	c.maxLevel = 0
}
