package entity

import (
	"fmt"

	"github.com/rocketscienceinc/gobang-backend/internal/apperror"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusDraw       Status = "draw"
)

// Move is a cell coordinate on the board.
type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Game is the full state of one gobang session.
type Game struct {
	ID        string `json:"id"`
	Board     Board  `json:"board"`
	Turn      Stone  `json:"turn"`
	MoveCount int    `json:"move_count"`
	Status    Status `json:"status"`
	Winner    Stone  `json:"winner"`
	LastMove  *Move  `json:"last_move,omitempty"`
}

func NewGame(id string, size int) Game {
	return Game{
		ID:     id,
		Board:  NewBoard(size),
		Turn:   Black,
		Status: StatusInProgress,
		Winner: Empty,
	}
}

func (that Game) IsInProgress() bool {
	return that.Status == StatusInProgress
}

func (that Game) IsWon() bool {
	return that.Status == StatusWon
}

func (that Game) IsDraw() bool {
	return that.Status == StatusDraw
}

// IsFinished reports whether the game reached a terminal state.
func (that Game) IsFinished() bool {
	return that.IsWon() || that.IsDraw()
}

// ConfirmInProgress returns apperror.ErrGameFinished for terminal games.
func (that Game) ConfirmInProgress() error {
	switch that.Status {
	case StatusInProgress:
		return nil
	case StatusWon, StatusDraw:
		return apperror.ErrGameFinished
	default:
		return fmt.Errorf("unknown game status: %s", that.Status)
	}
}

// Announcement is the status line shown to players.
func (that Game) Announcement() string {
	switch that.Status {
	case StatusWon:
		return fmt.Sprintf("Game over! %s wins!", displayName(that.Winner))
	case StatusDraw:
		return "Game over! Draw."
	default:
		return fmt.Sprintf("%s's turn", displayName(that.Turn))
	}
}

func displayName(stone Stone) string {
	switch stone {
	case Black:
		return "Black (●)"
	case White:
		return "White (○)"
	default:
		return "Nobody"
	}
}
