// Package scenario reads the interrupt scenario catalog.
//
// Each catalog line holds six comma separated fields:
//
//	kind,level,hex_vector_address,handler_name,expected_cycles,notes
//
// Blank lines and lines starting with '#' are ignored.
package scenario

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Kind is the closed set of scenario classes.
type Kind int

const (
	Int Kind = iota
	Exception
	Priority
	Nested
	RTE
	Mask
	Ack
	Vector
	Timing
	State
)

var kindNames = [...]string{
	Int:       "INT",
	Exception: "EXCEPTION",
	Priority:  "PRIORITY",
	Nested:    "NESTED",
	RTE:       "RTE",
	Mask:      "MASK",
	Ack:       "ACK",
	Vector:    "VECTOR",
	Timing:    "TIMING",
	State:     "STATE",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps a catalog tag to its Kind.
func ParseKind(tag string) (Kind, bool) {
	tag = strings.TrimSpace(tag)
	for k, name := range kindNames {
		if name == tag {
			return Kind(k), true
		}
	}
	return 0, false
}

// Fields is the number of comma separated fields in a catalog line.
const Fields = 6

// Scenario is one catalog entry.
type Scenario struct {
	Kind    Kind
	Level   string
	Vector  uint32
	Handler string
	Cycles  int
	Notes   string

	// Line is the 1-based catalog line the scenario was read from.
	Line int
}

func (s Scenario) String() string {
	return fmt.Sprintf("%s %s (%s)", s.Kind, s.Level, s.Handler)
}

// Priority parses Level as a single interrupt priority 0-7.
func (s Scenario) Priority() (uint8, error) {
	return parseLevel(s.Level)
}

// Pair parses a NESTED level of the form "outer-inner".
func (s Scenario) Pair() (outer, inner uint8, err error) {
	first, second, ok := strings.Cut(s.Level, "-")
	if !ok {
		return 0, 0, fmt.Errorf("nested level %q: want outer-inner", s.Level)
	}
	if outer, err = parseLevel(first); err != nil {
		return 0, 0, err
	}
	if inner, err = parseLevel(second); err != nil {
		return 0, 0, err
	}
	return outer, inner, nil
}

func parseLevel(text string) (uint8, error) {
	level, err := strconv.ParseUint(strings.TrimSpace(text), 10, 8)
	if err != nil {
		return 0, fmt.Errorf("level %q: %w", text, err)
	}
	if level > 7 {
		return 0, fmt.Errorf("level %d out of range", level)
	}
	return uint8(level), nil
}

// Rejected is a six-field catalog line whose kind tag is not one of the
// known kinds. Rejected lines are reported as failures, not skipped.
type Rejected struct {
	Tag  string
	Line int
	Text string
}

func (r Rejected) Error() string {
	return fmt.Sprintf("line %d: unknown scenario kind %q", r.Line, r.Tag)
}

// Catalog is the result of reading a scenario file.
type Catalog struct {
	Scenarios []Scenario
	Rejected  []Rejected

	// Skipped counts lines with fewer than six fields and lines with an
	// unparsable vector address or cycle count.
	Skipped int
}

// Parse reads a catalog. Malformed lines are skipped and counted; lines with
// an unknown kind are collected in Rejected.
func Parse(r io.Reader) (Catalog, error) {
	var (
		c      Catalog
		lineNo int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		s, err := parseLine(line)
		var rejected Rejected
		switch {
		case errors.As(err, &rejected):
			rejected.Line = lineNo
			rejected.Text = line
			c.Rejected = append(c.Rejected, rejected)
		case err != nil:
			c.Skipped++
		default:
			s.Line = lineNo
			c.Scenarios = append(c.Scenarios, s)
		}
	}
	return c, scanner.Err()
}

// Load reads the catalog at path.
func Load(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("could not open test vector file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

var errMalformed = errors.New("malformed catalog line")

func parseLine(line string) (Scenario, error) {
	fields, ok := tokenize(line)
	if !ok {
		return Scenario{}, errMalformed
	}
	kind, ok := ParseKind(fields[0])
	if !ok {
		return Scenario{}, Rejected{Tag: strings.TrimSpace(fields[0])}
	}

	vector, err := parseHex(fields[2])
	if err != nil {
		return Scenario{}, errMalformed
	}
	cycles, err := strconv.Atoi(strings.TrimSpace(fields[4]))
	if err != nil {
		return Scenario{}, errMalformed
	}
	return Scenario{
		Kind:    kind,
		Level:   strings.TrimSpace(fields[1]),
		Vector:  vector,
		Handler: strings.TrimSpace(fields[3]),
		Cycles:  cycles,
		Notes:   fields[5],
	}, nil
}

func parseHex(text string) (uint32, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(strings.TrimPrefix(text, "0x"), "0X")
	v, err := strconv.ParseUint(text, 16, 32)
	return uint32(v), err
}

// tokenize splits a line into exactly Fields fields; the last one takes the
// remainder of the line, commas included.
func tokenize(line string) ([Fields]string, bool) {
	var fields [Fields]string
	parts := strings.SplitN(line, ",", Fields)
	if len(parts) != Fields {
		return fields, false
	}
	copy(fields[:], parts)
	return fields, true
}
