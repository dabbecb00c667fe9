package bus

// DefaultDelay is the inter-access gap reloaded into the acknowledge counter
// whenever the address strobe is released.
const DefaultDelay = 2

type (
	// Config holds the responder timing parameters.
	Config struct {
		// Delay is the number of ticks a transaction waits in Pending before
		// it is serviced. It is reloaded every time the strobe is released.
		Delay int

		// AlignmentCheck terminates word accesses at odd addresses with BERR
		// instead of DTACK.
		AlignmentCheck bool
	}

	// Transaction is one bus cycle as seen by the responder.
	Transaction struct {
		Addr  uint32
		Write bool
		Lane  Lane
		Data  uint16
		FC    uint8
		Err   error
	}

	// Observer receives each transaction once it has been serviced.
	Observer func(Transaction)

	// State of the responder handshake.
	State int

	// Responder answers the core's strobes with data and DTACK.
	Responder struct {
		cfg      Config
		mem      *Memory
		state    State
		delay    int
		tx       Transaction
		faulted  bool
		observer Observer
		faults   map[uint32]struct{}

		completed uint64
	}
)

const (
	Idle State = iota
	Pending
	Acknowledged
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Acknowledged:
		return "acknowledged"
	default:
		return "unknown"
	}
}

func DefaultConfig() Config {
	return Config{Delay: DefaultDelay, AlignmentCheck: true}
}

// NewResponder creates a responder serving mem. A nil mem gets a fresh image.
func NewResponder(cfg Config, mem *Memory) *Responder {
	if mem == nil {
		mem = NewMemory()
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	r := &Responder{cfg: cfg, mem: mem, faults: make(map[uint32]struct{})}
	r.Reset()
	return r
}

// Memory returns the image the responder serves.
func (r *Responder) Memory() *Memory {
	return r.mem
}

// SetObserver installs a callback that sees every serviced transaction.
func (r *Responder) SetObserver(o Observer) {
	r.observer = o
}

// FaultAt makes every access to address end with BERR.
func (r *Responder) FaultAt(address uint32) {
	r.faults[address] = struct{}{}
}

// ClearFaults removes all addresses registered with FaultAt.
func (r *Responder) ClearFaults() {
	clear(r.faults)
}

// State returns the current handshake state.
func (r *Responder) State() State {
	return r.state
}

// Delay returns the remaining acknowledge countdown.
func (r *Responder) Delay() int {
	return r.delay
}

// Completed returns the number of transactions serviced since the last reset.
func (r *Responder) Completed() uint64 {
	return r.completed
}

// Reset returns the responder to Idle with a full countdown. The memory
// image survives resets.
func (r *Responder) Reset() {
	r.state = Idle
	r.delay = r.cfg.Delay
	r.tx = Transaction{}
	r.faulted = false
	r.completed = 0
}

// Step advances the handshake by one tick against the current pin state.
func (r *Responder) Step(p *Pins) {
	switch r.state {
	case Idle:
		if !p.AS {
			p.DTACK = false
			return
		}
		r.tx = Transaction{Addr: p.Addr, Write: p.Write, Lane: p.Lane(), FC: p.FC}
		r.state = Pending
		r.pending(p)
	case Pending:
		if !p.AS {
			// The core abandoned the cycle before it was acknowledged.
			r.tx = Transaction{}
			r.delay = r.cfg.Delay
			r.state = Idle
			return
		}
		r.pending(p)
	case Acknowledged:
		if p.AS {
			return
		}
		p.DTACK = false
		if r.faulted {
			p.BERR = false
			r.faulted = false
		}
		r.delay = r.cfg.Delay
		r.state = Idle
	}
}

func (r *Responder) pending(p *Pins) {
	if r.delay > 0 {
		r.delay--
		return
	}
	r.service(p)
	r.state = Acknowledged
}

func (r *Responder) service(p *Pins) {
	tx := &r.tx

	if r.cfg.AlignmentCheck && tx.Lane == Word && tx.Addr&1 != 0 {
		r.fault(p, AddressError(tx.Addr))
		return
	}
	if _, ok := r.faults[tx.Addr]; ok {
		r.fault(p, BusError(tx.Addr))
		return
	}

	if tx.Write {
		tx.Data = p.DataOut
		r.mem.Write(tx.Lane, tx.Addr, tx.Data)
	} else {
		tx.Data = r.mem.Read(tx.Lane, tx.Addr)
		p.DataIn = tx.Data
	}
	p.DTACK = true
	r.notify()
}

func (r *Responder) fault(p *Pins, err error) {
	r.tx.Err = err
	p.BERR = true
	r.faulted = true
	r.notify()
}

func (r *Responder) notify() {
	r.completed++
	if r.observer != nil {
		r.observer(r.tx)
	}
}
