package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/gobang-backend/internal/apperror"
	"github.com/rocketscienceinc/gobang-backend/internal/entity"
)

const gameStatusLeave = "leave"

func (that *Server) handleNewGame(ctx context.Context, c *conn, action string, _ Request) error {
	game, err := that.gameUseCase.NewGame(ctx)
	if err != nil {
		that.logger.Error("failed to create game", "error", err)
		return c.sendError(action, "failed to create a new game")
	}

	that.subscribe(game.ID, c)

	return c.send(action, Response{Game: game, Message: game.Announcement()})
}

// handleGameState subscribes the connection to a game and returns its state.
func (that *Server) handleGameState(ctx context.Context, c *conn, action string, req Request) error {
	if req.GameID == "" {
		return c.sendError(action, "game_id is required")
	}

	game, err := that.gameUseCase.GetGame(ctx, req.GameID)
	if err != nil {
		return that.sendUseCaseError(c, action, req.GameID, nil, err)
	}

	that.subscribe(game.ID, c)

	return c.send(action, Response{Game: game, Message: game.Announcement()})
}

func (that *Server) handleGameMove(ctx context.Context, c *conn, action string, req Request) error {
	if req.GameID == "" || req.Row == nil || req.Col == nil {
		return c.sendError(action, "game_id, row and col are required")
	}

	game, err := that.gameUseCase.MakeMove(ctx, req.GameID, *req.Row, *req.Col)
	if err != nil {
		return that.sendUseCaseError(c, action, req.GameID, game, err)
	}

	that.subscribe(game.ID, c)
	that.broadcast(action, game)

	return nil
}

func (that *Server) handleGameReset(ctx context.Context, c *conn, action string, req Request) error {
	if req.GameID == "" {
		return c.sendError(action, "game_id is required")
	}

	game, err := that.gameUseCase.ResetGame(ctx, req.GameID)
	if err != nil {
		return that.sendUseCaseError(c, action, req.GameID, nil, err)
	}

	that.subscribe(game.ID, c)
	that.broadcast(action, game)

	return nil
}

func (that *Server) handleGameLeave(ctx context.Context, c *conn, action string, req Request) error {
	if req.GameID == "" {
		return c.sendError(action, "game_id is required")
	}

	if err := that.gameUseCase.EndGame(ctx, req.GameID); err != nil {
		return that.sendUseCaseError(c, action, req.GameID, nil, err)
	}

	for _, subscriber := range that.dropGame(req.GameID) {
		if err := subscriber.send(action, Response{Message: gameStatusLeave}); err != nil {
			that.logger.Error("failed to send game update", "gameID", req.GameID, "error", err)
		}
	}

	return nil
}

// broadcast sends the game to every connection following it.
func (that *Server) broadcast(action string, game *entity.Game) {
	log := that.logger.With("method", "broadcast", "gameID", game.ID)

	payload := Response{Game: game, Message: game.Announcement()}
	for _, subscriber := range that.subscribersOf(game.ID) {
		if err := subscriber.send(action, payload); err != nil {
			log.Error("failed to send game update", "error", err)
		}
	}

	if game.IsFinished() {
		log.Info("game finished", "status", game.Status, "winner", game.Winner)
	}
}

func (that *Server) sendUseCaseError(c *conn, action, gameID string, game *entity.Game, err error) error {
	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		return c.sendError(action, fmt.Sprintf("game %s: %v", gameID, apperror.ErrGameNotFound))
	case apperror.IsRejectedMove(err):
		return c.send(action, Response{Game: game, Error: err.Error()})
	default:
		that.logger.Error("request failed", "action", action, "gameID", gameID, "error", err)
		return c.sendError(action, "internal error")
	}
}
