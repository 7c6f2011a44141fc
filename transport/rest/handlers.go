package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/gobang-backend/internal/apperror"
	"github.com/rocketscienceinc/gobang-backend/internal/entity"
)

type gameUseCase interface {
	NewGame(ctx context.Context) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	MakeMove(ctx context.Context, id string, row, col int) (*entity.Game, error)
	ResetGame(ctx context.Context, id string) (*entity.Game, error)
	EndGame(ctx context.Context, id string) error
}

// GameResponse is the body of every successful game endpoint.
type GameResponse struct {
	Game    *entity.Game `json:"game"`
	Message string       `json:"message"`
}

// MoveRequest is the body of POST /games/{id}/moves. Both coordinates are required.
type MoveRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

type ErrorResponse struct {
	Error string       `json:"error"`
	Game  *entity.Game `json:"game,omitempty"`
}

type handlers struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
}

func newHandlers(logger *slog.Logger, gameUseCase gameUseCase) *handlers {
	return &handlers{
		logger:      logger.With("component", "rest"),
		gameUseCase: gameUseCase,
	}
}

func (that *handlers) newGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.gameUseCase.NewGame(r.Context())
	if err != nil {
		that.writeError(w, "newGame", nil, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, GameResponse{Game: game, Message: game.Announcement()})
}

func (that *handlers) getGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.gameUseCase.GetGame(r.Context(), r.PathValue("id"))
	if err != nil {
		that.writeError(w, "getGame", nil, err)
		return
	}

	that.writeJSON(w, http.StatusOK, GameResponse{Game: game, Message: game.Announcement()})
}

func (that *handlers) makeMove(w http.ResponseWriter, r *http.Request) {
	var move MoveRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&move); err != nil {
		that.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid move body"})
		return
	}

	if move.Row == nil || move.Col == nil {
		that.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "row and col are required"})
		return
	}

	game, err := that.gameUseCase.MakeMove(r.Context(), r.PathValue("id"), *move.Row, *move.Col)
	if err != nil {
		that.writeError(w, "makeMove", game, err)
		return
	}

	that.writeJSON(w, http.StatusOK, GameResponse{Game: game, Message: game.Announcement()})
}

func (that *handlers) resetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.gameUseCase.ResetGame(r.Context(), r.PathValue("id"))
	if err != nil {
		that.writeError(w, "resetGame", nil, err)
		return
	}

	that.writeJSON(w, http.StatusOK, GameResponse{Game: game, Message: game.Announcement()})
}

func (that *handlers) endGame(w http.ResponseWriter, r *http.Request) {
	if err := that.gameUseCase.EndGame(r.Context(), r.PathValue("id")); err != nil {
		that.writeError(w, "endGame", nil, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *handlers) writeError(w http.ResponseWriter, method string, game *entity.Game, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", method, "error", err)
		that.writeJSON(w, status, ErrorResponse{Error: http.StatusText(status)})
		return
	}

	that.writeJSON(w, status, ErrorResponse{Error: err.Error(), Game: game})
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrOutOfBounds):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrCellOccupied), errors.Is(err, apperror.ErrGameFinished):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
