package bus

// Lane selects which half of the 16-bit data bus a transfer uses.
type Lane int

const (
	Word Lane = iota
	Upper
	Lower
)

func (l Lane) String() string {
	switch l {
	case Word:
		return "word"
	case Upper:
		return "upper"
	case Lower:
		return "lower"
	default:
		return "unknown"
	}
}
