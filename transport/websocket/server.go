package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/chatgames-backend/internal/entity"
)

const (
	writeWait       = 10 * time.Second
	shutdownTimeout = 5 * time.Second
	maxMessageBytes = 64 << 10
)

type chatRouter interface {
	Route(ctx context.Context, in entity.Input) (*entity.Result, error)
}

type handlerFunc func(ctx context.Context, msg *Message) (ResponsePayload, error)

type Server struct {
	logger   *slog.Logger
	router   chatRouter
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, router chatRouter) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		router: router,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionChat] = server.handleChat

	return server
}

// Handler - serves the /ws endpoint, connections are closed once ctx is canceled.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	// no read/write timeouts here, they would stay on hijacked connections
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	})
	defer stop()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveConnection", "remote", r.RemoteAddr)

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageBytes)

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	log.Info("WebSocket connection established")

	if err = that.handleMessages(ctx, conn); err != nil {
		log.Error("error handling messages", "error", err)
	}

	log.Info("WebSocket connection closed")
}

// handleMessages - processes messages from the client until it disconnects.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleMessages")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && ctx.Err() == nil {
				return fmt.Errorf("failed to read message: %w", err)
			}
			return nil
		}

		var msg Message
		if err = json.Unmarshal(data, &msg); err != nil {
			log.Debug("failed to unmarshal message", "error", err)
			if err = that.send(conn, "", ResponsePayload{Error: "invalid message"}); err != nil {
				return err
			}
			continue
		}

		handler, ok := that.handlers[msg.Action]
		if !ok {
			if err = that.send(conn, msg.Action, ResponsePayload{Error: "unknown action"}); err != nil {
				return err
			}
			continue
		}

		payload, err := handler(ctx, &msg)
		if err != nil {
			log.Error("error processing message", "action", msg.Action, "error", err)
			payload = ResponsePayload{Error: "internal error"}
		}

		if err = that.send(conn, msg.Action, payload); err != nil {
			return err
		}
	}
}

func (that *Server) handleChat(ctx context.Context, msg *Message) (ResponsePayload, error) {
	in, err := decodeInput(msg.Payload)
	if err != nil || in.UserID == "" || in.GroupID == "" {
		return ResponsePayload{Error: "user_id and group_id are required"}, nil
	}

	result, err := that.router.Route(ctx, in)
	if err != nil {
		return ResponsePayload{}, fmt.Errorf("failed to route message: %w", err)
	}

	return ResponsePayload{Messages: result.Messages}, nil
}

func (that *Server) send(conn *websocket.Conn, action string, payload ResponsePayload) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err := conn.WriteJSON(Message{Action: action, Payload: payload}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}
