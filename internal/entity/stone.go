package entity

import (
	"errors"
	"fmt"
)

// Stone is the content of a single board cell.
type Stone uint8

const (
	Empty Stone = iota
	Black
	White
)

var ErrUnknownStone = errors.New("unknown stone")

// Opponent returns the other player. Empty has no opponent.
func (that Stone) Opponent() Stone {
	switch that {
	case Black:
		return White
	case White:
		return Black
	default:
		return Empty
	}
}

// Glyph is the character used to draw the stone on a text board.
func (that Stone) Glyph() string {
	switch that {
	case Black:
		return "●"
	case White:
		return "○"
	default:
		return "+"
	}
}

func (that Stone) String() string {
	switch that {
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return "empty"
	}
}

func (that Stone) MarshalText() ([]byte, error) {
	if that > White {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStone, uint8(that))
	}
	return []byte(that.String()), nil
}

func (that *Stone) UnmarshalText(text []byte) error {
	switch string(text) {
	case "empty", "":
		*that = Empty
	case "black":
		*that = Black
	case "white":
		*that = White
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStone, text)
	}
	return nil
}
