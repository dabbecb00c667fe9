package bus

import "fmt"

// Function codes driven by the core on FC0-FC2.
const (
	FCUserData       uint8 = 1
	FCUserProgram    uint8 = 2
	FCSupervisorData uint8 = 5
	FCSupervisorProg uint8 = 6
	FCInterruptAck   uint8 = 7
)

// Pins is the signal state shared between the core and the bench components.
// Strobe and handshake fields are true when asserted, whatever their
// electrical polarity on the real part.
type Pins struct {
	Clk    bool
	EnPhi1 bool
	EnPhi2 bool

	Reset bool
	PwrUp bool
	Halt  bool

	Addr    uint32
	DataIn  uint16 // responder -> core
	DataOut uint16 // core -> responder

	AS    bool
	UDS   bool
	LDS   bool
	Write bool

	DTACK bool
	VPA   bool
	BERR  bool

	IPL uint8
	FC  uint8
}

// Lane returns the byte lane selected by the current data strobes.
func (p *Pins) Lane() Lane {
	switch {
	case p.UDS && !p.LDS:
		return Upper
	case !p.UDS && p.LDS:
		return Lower
	default:
		return Word
	}
}

// Clear returns every signal to its inactive level.
func (p *Pins) Clear() {
	*p = Pins{}
}

func (p *Pins) String() string {
	return fmt.Sprintf("clk=%t as=%t uds=%t lds=%t w=%t dtack=%t vpa=%t berr=%t ipl=%d fc=%d addr=%08x din=%04x dout=%04x",
		p.Clk, p.AS, p.UDS, p.LDS, p.Write, p.DTACK, p.VPA, p.BERR, p.IPL, p.FC, p.Addr, p.DataIn, p.DataOut)
}
