package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/gobang-backend/internal/apperror"
	"github.com/rocketscienceinc/gobang-backend/internal/entity"
	"github.com/rocketscienceinc/gobang-backend/internal/gobang"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

// GameManager drives gobang sessions stored in a repository.
// Updates to one game are serialized within the process.
type GameManager struct {
	logger    *slog.Logger
	gameRepo  gameRepo
	boardSize int
	locks     *gameLocks
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo, boardSize int) *GameManager {
	return &GameManager{
		logger:    logger.With("component", "game_manager"),
		gameRepo:  gameRepo,
		boardSize: boardSize,
		locks:     newGameLocks(),
	}
}

// NewGame stores a fresh game under a new ID.
func (that *GameManager) NewGame(ctx context.Context) (*entity.Game, error) {
	game := gobang.Reset(uuid.NewString(), that.boardSize)

	if err := that.gameRepo.CreateOrUpdate(ctx, &game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	that.logger.Info("game created", "gameID", game.ID, "size", that.boardSize)

	return &game, nil
}

func (that *GameManager) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// MakeMove plays the current player's stone at (row, col).
//
// A rejected move returns the stored game together with the rejection error
// and leaves storage untouched.
func (that *GameManager) MakeMove(ctx context.Context, id string, row, col int) (*entity.Game, error) {
	log := that.logger.With("method", "MakeMove", "gameID", id, "row", row, "col", col)

	unlock := that.locks.lock(id)
	defer unlock()

	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	next, err := gobang.ApplyMove(*game, row, col)
	if apperror.IsRejectedMove(err) {
		log.Debug("move rejected", "reason", err)
		return game, err
	}

	if err != nil {
		return nil, fmt.Errorf("failed to apply move: %w", err)
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, &next); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	if next.IsFinished() {
		log.Info("game finished", "status", next.Status, "winner", next.Winner, "moves", next.MoveCount)
		log.Debug("final board", "board", next.Board.String())
	}

	return &next, nil
}

// ResetGame replaces the stored game with a fresh one under the same ID.
func (that *GameManager) ResetGame(ctx context.Context, id string) (*entity.Game, error) {
	unlock := that.locks.lock(id)
	defer unlock()

	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	fresh := gobang.Reset(game.ID, game.Board.Size)
	if err = that.gameRepo.CreateOrUpdate(ctx, &fresh); err != nil {
		return nil, fmt.Errorf("failed to reset game: %w", err)
	}

	that.logger.Info("game reset", "gameID", id)

	return &fresh, nil
}

// EndGame removes the game from storage.
func (that *GameManager) EndGame(ctx context.Context, id string) error {
	unlock := that.locks.lock(id)
	defer unlock()

	if err := that.gameRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.logger.Info("game ended", "gameID", id)

	return nil
}
