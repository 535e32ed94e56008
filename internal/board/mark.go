package board

import "fmt"

type Mark uint8

const (
	Empty Mark = iota
	Nought
	Cross
)

// Marks - the two playable marks in turn order. Nought always moves first.
var Marks = [2]Mark{Nought, Cross}

func (that Mark) String() string {
	switch that {
	case Nought:
		return "O"
	case Cross:
		return "X"
	default:
		return "."
	}
}

// Opponent - returns the other playable mark, Empty for Empty.
func (that Mark) Opponent() Mark {
	switch that {
	case Nought:
		return Cross
	case Cross:
		return Nought
	default:
		return Empty
	}
}

func parseMark(symbol rune) (Mark, error) {
	switch symbol {
	case '.':
		return Empty, nil
	case 'O':
		return Nought, nil
	case 'X':
		return Cross, nil
	default:
		return Empty, fmt.Errorf("%w: unknown mark %q", ErrInvalidSnapshot, symbol)
	}
}
