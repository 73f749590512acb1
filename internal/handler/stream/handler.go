package stream

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mentalmate/mindbot/backend/internal/service/pipeline"
	"github.com/mentalmate/mindbot/backend/pkg/apperrors"
	"github.com/mentalmate/mindbot/backend/pkg/logger"
	"github.com/mentalmate/mindbot/backend/pkg/utils"
)

// Handler manages streaming replies via Server-Sent Events
type Handler struct {
	pipeline *pipeline.Pipeline
	log      *logger.Logger
}

// New creates a new stream handler
func New(pipe *pipeline.Pipeline, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		pipeline: pipe,
		log:      log.With("component", "stream"),
	}
}

// StreamResponse represents a streaming response chunk
type StreamResponse struct {
	Event     string `json:"event"`
	Content   string `json:"content,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Data      any    `json:"data,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
	Error     string `json:"error,omitempty"`
}

// RegisterRoutes 注册流式路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{sessionID}", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	userMessage := r.URL.Query().Get("message")
	if strings.TrimSpace(userMessage) == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	if err := h.HandleStreamRequest(r.Context(), w, sessionID, userMessage, r.URL.Query().Get("language")); err != nil {
		h.log.Warn("stream request failed", "session_id", sessionID, "error", err)
	}
}

// sseWriter opens the event stream lazily so errors raised before the first event can
// still be answered with a plain JSON status.
type sseWriter struct {
	w         http.ResponseWriter
	flusher   http.Flusher
	sessionID string
	opened    bool
}

func (s *sseWriter) open() {
	if s.opened {
		return
	}
	s.opened = true
	utils.SetupSSEHeaders(s.w)
	s.w.WriteHeader(http.StatusOK)
	s.send(StreamResponse{Event: "start"})
}

func (s *sseWriter) send(resp StreamResponse) {
	s.open()
	resp.SessionID = s.sessionID
	utils.SendSSEChunk(s.w, s.flusher, resp)
}

// HandleStreamRequest runs one user turn and streams its progress
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID, userMessage, language string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		err := errors.New("streaming unsupported")
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return err
	}

	out := &sseWriter{w: w, flusher: flusher, sessionID: sessionID}
	result, err := h.pipeline.SubmitUserMessage(ctx, sessionID, userMessage,
		pipeline.WithLanguage(language),
		pipeline.WithDeltaSink(func(delta string) {
			out.send(StreamResponse{Event: "delta", Content: delta})
		}),
	)
	if err != nil {
		if !out.opened {
			utils.RespondErr(w, err)
			return err
		}
		out.send(StreamResponse{Event: "error", Error: err.Error(), Data: apperrors.HTTPStatus(err)})
		return err
	}

	if result.Crisis {
		out.send(StreamResponse{Event: "crisis", Data: result.Hotlines})
	}
	for _, msg := range result.Replies {
		out.send(StreamResponse{Event: "message", Content: msg.Content, Data: msg})
	}
	switch {
	case result.Suppressed:
		out.send(StreamResponse{Event: "status", Content: "human_driven"})
	case result.Cancelled:
		out.send(StreamResponse{Event: "status", Content: "cancelled"})
	}
	if len(result.Suggestions) > 0 {
		out.send(StreamResponse{Event: "suggestions", Data: result.Suggestions})
	}
	out.send(StreamResponse{
		Event:    "end",
		Finished: true,
		Data: map[string]bool{
			"speak":  result.Speak,
			"notify": result.Notify,
		},
	})

	h.log.Debug("stream completed", "session_id", sessionID, "replies", len(result.Replies))
	return nil
}
