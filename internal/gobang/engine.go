// Package gobang applies moves to a five-in-a-row game and decides when it ends.
//
// Every function takes a game by value and returns a new value; a rejected
// move hands back the input untouched together with the reason.
package gobang

import (
	"fmt"

	"github.com/rocketscienceinc/gobang-backend/internal/apperror"
	"github.com/rocketscienceinc/gobang-backend/internal/entity"
)

const (
	DefaultBoardSize = 15
	WinLength        = 5
)

type direction struct {
	dr, dc int
}

// horizontal, vertical, diagonal down, diagonal up
var directions = [4]direction{
	{0, 1},
	{1, 0},
	{1, 1},
	{1, -1},
}

// Reset returns a fresh game: empty board, black to move.
func Reset(id string, size int) entity.Game {
	return entity.NewGame(id, size)
}

// ApplyMove places the current player's stone at (row, col).
func ApplyMove(game entity.Game, row, col int) (entity.Game, error) {
	if err := validateMove(game, row, col); err != nil {
		return game, fmt.Errorf("invalid move (%d, %d): %w", row, col, err)
	}

	player := game.Turn

	next := game
	next.Board = game.Board.With(row, col, player)
	next.MoveCount++
	next.LastMove = &entity.Move{Row: row, Col: col}

	switch {
	case CheckWin(next.Board, row, col, player):
		next.Status = entity.StatusWon
		next.Winner = player
	case next.MoveCount == next.Board.Capacity():
		next.Status = entity.StatusDraw
	default:
		next.Turn = player.Opponent()
	}

	return next, nil
}

// validateMove - checks if the move can be played.
func validateMove(game entity.Game, row, col int) error {
	if err := game.ConfirmInProgress(); err != nil {
		return err
	}

	if !game.Board.InBounds(row, col) {
		return apperror.ErrOutOfBounds
	}

	if game.Board.At(row, col) != entity.Empty {
		return apperror.ErrCellOccupied
	}

	return nil
}

// CheckWin reports whether the stone at (row, col) completes a line of
// WinLength or more for player. Longer lines count.
func CheckWin(board entity.Board, row, col int, player entity.Stone) bool {
	for _, d := range directions {
		count := 1

		for i := 1; i < WinLength; i++ {
			r, c := row+d.dr*i, col+d.dc*i
			if !board.InBounds(r, c) || board.At(r, c) != player {
				break
			}
			count++
		}

		for i := 1; i < WinLength; i++ {
			r, c := row-d.dr*i, col-d.dc*i
			if !board.InBounds(r, c) || board.At(r, c) != player {
				break
			}
			count++
		}

		if count >= WinLength {
			return true
		}
	}

	return false
}
