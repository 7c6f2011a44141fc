package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/gobang-backend/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type gameUseCase interface {
	NewGame(ctx context.Context) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	MakeMove(ctx context.Context, id string, row, col int) (*entity.Game, error)
	ResetGame(ctx context.Context, id string) (*entity.Game, error)
	EndGame(ctx context.Context, id string) error
}

type handlerFunc func(ctx context.Context, c *conn, action string, req Request) error

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	upgrader    websocket.Upgrader

	handlers map[string]handlerFunc

	// subscribers per game ID
	subscribersMutex sync.RWMutex
	subscribers      map[string]map[*conn]struct{}
}

func New(logger *slog.Logger, gameUseCase gameUseCase) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		gameUseCase: gameUseCase,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		subscribers: make(map[string]map[*conn]struct{}),
	}

	server.handlers = map[string]handlerFunc{
		actionNewGame:   server.handleNewGame,
		actionGameState: server.handleGameState,
		actionGameMove:  server.handleGameMove,
		actionGameReset: server.handleGameReset,
		actionGameLeave: server.handleGameLeave,
	}

	return server
}

// Handler returns the http handler serving the /ws endpoint.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(ctx),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	ws, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := &conn{ws: ws}

	defer func() {
		that.unsubscribeAll(c)
		_ = ws.Close()
	}()

	log.Info("WebSocket connection established", "remote", r.RemoteAddr)

	if err = that.handleMessages(ctx, c); err != nil {
		log.Debug("connection closed", "error", err)
	}
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, c *conn) error {
	log := that.logger.With("method", "handleMessages")

	for {
		var message Message
		if err := c.ws.ReadJSON(&message); err != nil {
			if !isMalformedMessage(err) {
				return fmt.Errorf("failed to read message: %w", err)
			}

			log.Warn("failed to unmarshal message", "error", err)
			if err = c.sendError(actionError, "invalid message"); err != nil {
				return err
			}
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			if err := c.sendError(message.Action, "unknown action"); err != nil {
				return err
			}
			continue
		}

		var req Request
		if len(message.Payload) > 0 {
			if err := json.Unmarshal(message.Payload, &req); err != nil {
				if err = c.sendError(message.Action, "invalid payload"); err != nil {
					return err
				}
				continue
			}
		}

		if err := handler(ctx, c, message.Action, req); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// isMalformedMessage reports whether a ReadJSON error came from a bad frame body
// rather than from the connection. gorilla turns a truncated body into io.ErrUnexpectedEOF.
func isMalformedMessage(err error) bool {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)

	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF)
}

func (that *Server) subscribe(gameID string, c *conn) {
	that.subscribersMutex.Lock()
	defer that.subscribersMutex.Unlock()

	conns, ok := that.subscribers[gameID]
	if !ok {
		conns = make(map[*conn]struct{})
		that.subscribers[gameID] = conns
	}
	conns[c] = struct{}{}
}

func (that *Server) unsubscribeAll(c *conn) {
	that.subscribersMutex.Lock()
	defer that.subscribersMutex.Unlock()

	for gameID, conns := range that.subscribers {
		delete(conns, c)
		if len(conns) == 0 {
			delete(that.subscribers, gameID)
		}
	}
}

func (that *Server) dropGame(gameID string) []*conn {
	that.subscribersMutex.Lock()
	defer that.subscribersMutex.Unlock()

	conns := make([]*conn, 0, len(that.subscribers[gameID]))
	for c := range that.subscribers[gameID] {
		conns = append(conns, c)
	}
	delete(that.subscribers, gameID)

	return conns
}

func (that *Server) subscribersOf(gameID string) []*conn {
	that.subscribersMutex.RLock()
	defer that.subscribersMutex.RUnlock()

	conns := make([]*conn, 0, len(that.subscribers[gameID]))
	for c := range that.subscribers[gameID] {
		conns = append(conns, c)
	}

	return conns
}
