package apperror

import "errors"

var (
	ErrGameFinished     = errors.New("game is already finished")
	ErrOutOfBounds      = errors.New("cell is out of bounds")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrGameNotFound     = errors.New("game not found")
	ErrInvalidBoardSize = errors.New("invalid board size")
)

// IsRejectedMove reports whether err is one of the engine's move rejections.
func IsRejectedMove(err error) bool {
	return errors.Is(err, ErrGameFinished) ||
		errors.Is(err, ErrOutOfBounds) ||
		errors.Is(err, ErrCellOccupied)
}
