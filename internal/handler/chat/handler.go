package chat

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mentalmate/mindbot/backend/internal/middleware"
	"github.com/mentalmate/mindbot/backend/internal/service/admin"
	chatService "github.com/mentalmate/mindbot/backend/internal/service/chat"
	"github.com/mentalmate/mindbot/backend/internal/service/pipeline"
	"github.com/mentalmate/mindbot/backend/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc  *chatService.Service
	pipeline *pipeline.Pipeline
	admin    *admin.Controller
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service, pipe *pipeline.Pipeline, adminCtrl *admin.Controller) *Handler {
	return &Handler{
		chatSvc:  chatSvc,
		pipeline: pipe,
		admin:    adminCtrl,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleCreateSession)
	r.Get("/sessions/current", h.handleCurrentSession)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", h.handleGetSession)
		r.Get("/messages", h.handleListMessages)
		r.Post("/messages", h.handleSendMessage)
		r.Post("/end", h.handleEndSession)
		r.Post("/specialist", h.handleRequestSpecialist)
	})
}

// handleCreateSession 创建会话，首条消息为persona开场白
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID    string `json:"userId"`
		UserName  string `json:"userName"`
		PersonaID string `json:"personaId"`
		Language  string `json:"language"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondErr(w, err)
		return
	}

	userID := strings.TrimSpace(payload.UserID)
	if userID == "" {
		userID = strings.TrimSpace(r.Header.Get(middleware.UserHeader))
	}

	session, err := h.pipeline.StartSession(r.Context(), userID, payload.UserName, payload.PersonaID, payload.Language)
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, session)
}

// handleCurrentSession 返回用户最近创建的会话
func (h *Handler) handleCurrentSession(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		userID = strings.TrimSpace(r.Header.Get(middleware.UserHeader))
	}
	if userID == "" {
		utils.RespondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	session, err := h.chatSvc.CurrentSession(r.Context(), userID)
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

// handleGetSession 返回会话快照
func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

// handleListMessages 返回会话消息记录
func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chatSvc.LoadTranscript(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, messages)
}

// handleSendMessage 提交用户消息并返回本轮结果
func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Content  string `json:"content"`
		Language string `json:"language"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondErr(w, err)
		return
	}

	result, err := h.pipeline.SubmitUserMessage(r.Context(), chi.URLParam(r, "sessionID"), payload.Content, pipeline.WithLanguage(payload.Language))
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

// handleEndSession 结束会话
func (h *Handler) handleEndSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.pipeline.EndSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

// handleRequestSpecialist 用户请求危机支持专员介入
func (h *Handler) handleRequestSpecialist(w http.ResponseWriter, r *http.Request) {
	session, err := h.admin.RequestSpecialist(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}
