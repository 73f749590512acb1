package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	adminService "github.com/mentalmate/mindbot/backend/internal/service/admin"
	"github.com/mentalmate/mindbot/backend/pkg/utils"
)

// Handler 管理台的HTTP处理器
type Handler struct {
	ctrl *adminService.Controller
}

// New 创建管理台处理器
func New(ctrl *adminService.Controller) *Handler {
	return &Handler{ctrl: ctrl}
}

// RegisterRoutes 注册管理台路由，调用方负责挂载鉴权中间件
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions", h.handleListSessions)
	r.Get("/sessions/flagged", h.handleListFlagged)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Post("/join", h.handleJoin)
		r.Post("/leave", h.handleLeave)
		r.Post("/flag", h.handleFlag)
		r.Post("/messages", h.handleSendMessage)
		r.Put("/notes", h.handleSaveNotes)
	})
}

type adminPayload struct {
	AdminName string `json:"adminName"`
	Content   string `json:"content"`
	Reason    string `json:"reason"`
	Notes     string `json:"notes"`
}

// handleListSessions 列出全部会话
func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.ctrl.ListSessions(r.Context()))
}

// handleListFlagged 列出被标记的会话
func (h *Handler) handleListFlagged(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.ctrl.ListFlagged(r.Context()))
}

// handleJoin 管理员接管会话
func (h *Handler) handleJoin(w http.ResponseWriter, r *http.Request) {
	var payload adminPayload
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondErr(w, err)
		return
	}

	session, err := h.ctrl.JoinSession(r.Context(), chi.URLParam(r, "sessionID"), payload.AdminName)
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

// handleLeave 管理员退出，会话交还给机器人
func (h *Handler) handleLeave(w http.ResponseWriter, r *http.Request) {
	var payload adminPayload
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondErr(w, err)
		return
	}

	session, err := h.ctrl.LeaveSession(r.Context(), chi.URLParam(r, "sessionID"), payload.AdminName)
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

// handleFlag 标记会话
func (h *Handler) handleFlag(w http.ResponseWriter, r *http.Request) {
	var payload adminPayload
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondErr(w, err)
		return
	}

	session, err := h.ctrl.FlagSession(r.Context(), chi.URLParam(r, "sessionID"), payload.Reason)
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

// handleSendMessage 管理员发送消息
func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload adminPayload
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondErr(w, err)
		return
	}

	msg, err := h.ctrl.SendMessage(r.Context(), chi.URLParam(r, "sessionID"), payload.AdminName, payload.Content)
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, msg)
}

// handleSaveNotes 保存会话备注
func (h *Handler) handleSaveNotes(w http.ResponseWriter, r *http.Request) {
	var payload adminPayload
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondErr(w, err)
		return
	}

	session, err := h.ctrl.SaveNotes(r.Context(), chi.URLParam(r, "sessionID"), payload.Notes)
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}
