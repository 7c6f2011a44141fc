package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidBoard = errors.New("invalid board")

// Board is a square grid stored row by row. Size never changes after NewBoard.
type Board struct {
	Size  int     `json:"size"`
	Cells []Stone `json:"cells"`
}

func NewBoard(size int) Board {
	return Board{
		Size:  size,
		Cells: make([]Stone, size*size),
	}
}

// UnmarshalJSON rejects boards whose cells do not fill a Size x Size grid,
// so At and With never index past the stored cells.
func (that *Board) UnmarshalJSON(data []byte) error {
	type plain Board

	var board plain
	if err := json.Unmarshal(data, &board); err != nil {
		return err
	}

	if board.Size < 0 || len(board.Cells) != board.Size*board.Size {
		return fmt.Errorf("%w: size %d with %d cells", ErrInvalidBoard, board.Size, len(board.Cells))
	}

	*that = Board(board)

	return nil
}

// InBounds reports whether (row, col) is a cell of the board.
func (that Board) InBounds(row, col int) bool {
	return row >= 0 && row < that.Size && col >= 0 && col < that.Size
}

// At returns the stone at (row, col). Callers check InBounds first.
func (that Board) At(row, col int) Stone {
	return that.Cells[row*that.Size+col]
}

// With returns a copy of the board with (row, col) set to stone.
func (that Board) With(row, col int, stone Stone) Board {
	cells := make([]Stone, len(that.Cells))
	copy(cells, that.Cells)
	cells[row*that.Size+col] = stone

	return Board{Size: that.Size, Cells: cells}
}

// Capacity is the number of cells on the board.
func (that Board) Capacity() int {
	return that.Size * that.Size
}

// String draws the board with column letters and row numbers, e.g.
//
//	   A B C
//	 1 ● + +
//	 2 + ○ +
//	 3 + + +
func (that Board) String() string {
	var sb strings.Builder

	sb.WriteString("   ")
	for col := range that.Size {
		if col > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(byte('A' + col))
	}
	sb.WriteByte('\n')

	for row := range that.Size {
		if row+1 < 10 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(row + 1))
		for col := range that.Size {
			sb.WriteByte(' ')
			sb.WriteString(that.At(row, col).Glyph())
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}
