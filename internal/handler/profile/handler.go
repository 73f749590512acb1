package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mentalmate/mindbot/backend/internal/middleware"
	modelprofile "github.com/mentalmate/mindbot/backend/internal/model/profile"
	"github.com/mentalmate/mindbot/backend/internal/service/history"
	profileService "github.com/mentalmate/mindbot/backend/internal/service/profile"
	"github.com/mentalmate/mindbot/backend/internal/service/settings"
	"github.com/mentalmate/mindbot/backend/pkg/utils"
)

// Handler 当前用户资料、设置与历史的HTTP处理器
type Handler struct {
	profiles *profileService.Service
	settings settings.Store
	history  history.Store
}

// New 创建用户资料处理器
func New(profiles *profileService.Service, settingsStore settings.Store, historyStore history.Store) *Handler {
	return &Handler{
		profiles: profiles,
		settings: settingsStore,
		history:  historyStore,
	}
}

// RegisterRoutes 注册 /me 下的路由，要求请求携带用户标识
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/me", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/profile", h.handleGetProfile)
		r.Put("/profile", h.handleUpdateProfile)
		r.Post("/mood", h.handleRecordMood)
		r.Post("/goals", h.handleAddGoal)
		r.Post("/goals/{goalID}/toggle", h.handleToggleGoal)
		r.Post("/resources/{resourceID}/toggle", h.handleToggleResource)
		r.Post("/contacts", h.handleAddContact)
		r.Get("/settings", h.handleGetSettings)
		r.Put("/settings", h.handleUpdateSettings)
		r.Get("/history", h.handleHistory)
	})
}

// handleGetProfile 返回用户资料，首次访问时创建
func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.EnsureProfile(r.Context(), middleware.UserID(r.Context()), "", "")
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}

// handleUpdateProfile 更新名字与偏好的persona
func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name             string `json:"name"`
		PreferredPersona string `json:"preferredPersona"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondErr(w, err)
		return
	}

	p, err := h.profiles.EnsureProfile(r.Context(), middleware.UserID(r.Context()), payload.Name, payload.PreferredPersona)
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}

// handleRecordMood 记录心情评分（1-10）
func (h *Handler) handleRecordMood(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Mood int `json:"mood"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondErr(w, err)
		return
	}

	result, err := h.profiles.RecordMood(r.Context(), middleware.UserID(r.Context()), payload.Mood)
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

// handleAddGoal 新增目标
func (h *Handler) handleAddGoal(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondErr(w, err)
		return
	}

	goal, err := h.profiles.AddGoal(r.Context(), middleware.UserID(r.Context()), payload.Text)
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, goal)
}

// handleToggleGoal 切换目标完成状态
func (h *Handler) handleToggleGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := h.profiles.ToggleGoal(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "goalID"))
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, goal)
}

// handleToggleResource 收藏或取消收藏资源
func (h *Handler) handleToggleResource(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.ToggleSavedResource(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "resourceID"))
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}

// handleAddContact 新增紧急联系人
func (h *Handler) handleAddContact(w http.ResponseWriter, r *http.Request) {
	var contact modelprofile.EmergencyContact
	if err := utils.DecodeJSON(r, &contact); err != nil {
		utils.RespondErr(w, err)
		return
	}

	p, err := h.profiles.AddEmergencyContact(r.Context(), middleware.UserID(r.Context()), contact)
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, p)
}

// handleGetSettings 读取本地设置
func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Get(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, s)
}

// handleUpdateSettings 更新一个或多个设置项，值均按字符串传入
func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var payload map[string]string
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondErr(w, err)
		return
	}

	userID := middleware.UserID(r.Context())
	for key, value := range payload {
		if _, err := settings.Validate(key, value); err != nil {
			utils.RespondErr(w, err)
			return
		}
	}

	current, err := h.settings.Get(r.Context(), userID)
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	for key, value := range payload {
		if current, err = h.settings.Set(r.Context(), userID, key, value); err != nil {
			utils.RespondErr(w, err)
			return
		}
	}
	utils.RespondJSON(w, http.StatusOK, current)
}

// handleHistory 返回持久化的聊天历史
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.history.ListMessages(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, entries)
}
