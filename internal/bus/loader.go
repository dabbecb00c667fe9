package bus

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	asm "github.com/jenska/m68kasm"
)

// PlaceholderProgram is the fixed sequence installed by the bench groups. It is
// kept as source and assembled on demand.
const PlaceholderProgram = `
	MOVEQ   #0,D0
	MOVEQ   #1,D1
	ADD.W   D0,D1
	RTS
`

// MemoryTestProgram exercises data reads and writes through A0/A1.
const MemoryTestProgram = `
	MOVEQ   #0,D0
	MOVEQ   #1,D1
	MOVE.L  D0,(A0)
	MOVE.L  D1,(A1)
	MOVE.L  (A0),D0
	MOVE.L  (A1),D1
	RTS
`

// AssembleProgram assembles 68000 source into big-endian words.
func AssembleProgram(src string) ([]uint16, error) {
	code, err := asm.AssembleString(src)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	return toWords(code), nil
}

// InstallWords stores words into the word map starting at base.
func InstallWords(m *Memory, base uint32, words []uint16) {
	for i, w := range words {
		m.WriteWord(base+uint32(i)*2, w)
	}
}

// InstallProgram assembles src and installs it at base. It returns the number
// of bytes installed.
func InstallProgram(m *Memory, base uint32, src string) (int, error) {
	words, err := AssembleProgram(src)
	if err != nil {
		return 0, err
	}
	InstallWords(m, base, words)
	return len(words) * 2, nil
}

// LoadBinary reads raw big-endian 16-bit words from r into the word map. A
// trailing odd byte is ignored. It returns the number of bytes installed.
func LoadBinary(m *Memory, r io.Reader, base uint32) (int, error) {
	br := bufio.NewReader(r)
	address := base
	var buf [2]byte
	for {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return int(address - base), err
		}
		m.WriteWord(address, binary.BigEndian.Uint16(buf[:]))
		address += 2
	}
	return int(address - base), nil
}

// LoadBinaryFile is LoadBinary on a named file.
func LoadBinaryFile(m *Memory, path string, base uint32) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open binary file: %w", err)
	}
	defer f.Close()
	return LoadBinary(m, f, base)
}

// LoadHex reads a simplified Intel HEX stream: ':' followed by a two digit
// byte count, a four digit address offset, a two digit record type (ignored)
// and the data bytes. Data bytes are paired into big-endian words stored at
// base+offset. Blank lines and lines starting with ';' or '#' are skipped.
func LoadHex(m *Memory, r io.Reader, base uint32) (int, error) {
	scanner := bufio.NewScanner(r)
	installed := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] != ':' {
			continue
		}
		record := line[1:]
		if len(record) < 8 {
			continue
		}

		length, err := strconv.ParseUint(record[0:2], 16, 8)
		if err != nil {
			return installed, fmt.Errorf("line %d: bad length: %w", lineNo, err)
		}
		offset, err := strconv.ParseUint(record[2:6], 16, 16)
		if err != nil {
			return installed, fmt.Errorf("line %d: bad offset: %w", lineNo, err)
		}

		data := record[8:]
		if len(data) > int(length)*2 {
			data = data[:length*2]
		}
		if len(data)%2 != 0 {
			data = data[:len(data)-1]
		}
		payload, err := hex.DecodeString(data)
		if err != nil {
			return installed, fmt.Errorf("line %d: bad data: %w", lineNo, err)
		}

		address := base + uint32(offset)
		for i := 0; i < len(payload); i += 2 {
			word := uint16(payload[i]) << 8
			if i+1 < len(payload) {
				word |= uint16(payload[i+1])
			}
			m.WriteWord(address+uint32(i), word)
		}
		installed += len(payload)
	}
	return installed, scanner.Err()
}

// LoadHexFile is LoadHex on a named file.
func LoadHexFile(m *Memory, path string, base uint32) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open hex file: %w", err)
	}
	defer f.Close()
	return LoadHex(m, f, base)
}

// InitPatterns seeds the image with the stack, data and vector table patterns
// the bench expects after power-up.
func InitPatterns(m *Memory) {
	for address := uint32(0xf000); address <= 0xfffe; address += 2 {
		m.WriteWord(address, 0xdead)
	}
	for address := uint32(0x1000); address < 0x2000; address += 2 {
		m.WriteWord(address, uint16(address))
	}
	for address := uint32(0x0000); address < 0x0200; address += 2 {
		m.WriteWord(address, 0x0000)
	}
}

func toWords(code []byte) []uint16 {
	words := make([]uint16, 0, (len(code)+1)/2)
	for i := 0; i < len(code); i += 2 {
		w := uint16(code[i]) << 8
		if i+1 < len(code) {
			w |= uint16(code[i+1])
		}
		words = append(words, w)
	}
	return words
}
