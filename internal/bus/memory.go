package bus

// Memory is the responder's memory image. Words and bytes are kept in two
// independent maps so that lane-selected accesses can land on addresses that
// were never written as words. Reads never fail; absent entries read as a
// defined default.
type Memory struct {
	words map[uint32]uint16
	bytes map[uint32]uint8
}

func NewMemory() *Memory {
	return &Memory{
		words: make(map[uint32]uint16),
		bytes: make(map[uint32]uint8),
	}
}

// ReadWord returns the word stored at address, or 0x0000 if none was stored.
func (m *Memory) ReadWord(address uint32) uint16 {
	return m.words[address]
}

// WriteWord stores value in the word map.
func (m *Memory) WriteWord(address uint32, value uint16) {
	m.words[address] = value
}

// LookupWord reports whether the word map holds address.
func (m *Memory) LookupWord(address uint32) (uint16, bool) {
	v, ok := m.words[address]
	return v, ok
}

// LookupByte reports whether the byte map holds address.
func (m *Memory) LookupByte(address uint32) (uint8, bool) {
	v, ok := m.bytes[address]
	return v, ok
}

// WriteByte stores value in the byte map.
func (m *Memory) WriteByte(address uint32, value uint8) {
	m.bytes[address] = value
}

// Read services a read on the given lane. The word map wins when it holds the
// address; byte lanes fall back to the byte map and drive the unused half of
// the bus as all ones.
func (m *Memory) Read(lane Lane, address uint32) uint16 {
	if v, ok := m.words[address]; ok {
		return v
	}

	switch lane {
	case Upper:
		if b, ok := m.bytes[address]; ok {
			return uint16(b)<<8 | 0x00ff
		}
	case Lower:
		if b, ok := m.bytes[address]; ok {
			return 0xff00 | uint16(b)
		}
	}
	return 0x0000
}

// Write commits data on the given lane. Upper takes the high byte of the data
// bus, Lower the low byte.
func (m *Memory) Write(lane Lane, address uint32, data uint16) {
	switch lane {
	case Upper:
		m.bytes[address] = uint8(data >> 8)
	case Lower:
		m.bytes[address] = uint8(data)
	default:
		m.words[address] = data
	}
}

// Len returns the number of word and byte entries held.
func (m *Memory) Len() (words, bytes int) {
	return len(m.words), len(m.bytes)
}

// Reset drops every entry.
func (m *Memory) Reset() {
	clear(m.words)
	clear(m.bytes)
}
