package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/chatgames-backend/internal/entity"
)

const (
	headerRequestID = "X-Request-ID"
	maxBodyBytes    = 64 << 10
)

type errorResponse struct {
	Error string `json:"error"`
}

type chatHandler struct {
	logger *slog.Logger
	router chatRouter
}

// NewChatHandler - accepts one chat event as JSON and answers with the bot replies.
func NewChatHandler(logger *slog.Logger, router chatRouter) http.Handler {
	return &chatHandler{
		logger: logger.With("component", "rest"),
		router: router,
	}
}

func (that *chatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get(headerRequestID)
	if _, err := uuid.Parse(requestID); err != nil {
		requestID = uuid.NewString()
	}
	w.Header().Set(headerRequestID, requestID)

	log := that.logger.With("method", "chat", "request_id", requestID)

	var in entity.Input
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		log.Debug("failed to decode request", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if in.UserID == "" || in.GroupID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id and group_id are required"})
		return
	}

	result, err := that.router.Route(r.Context(), in)
	if err != nil {
		log.Error("failed to route message", "group_id", in.GroupID, "user_id", in.UserID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	if result.Messages == nil {
		result.Messages = []entity.Message{}
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
