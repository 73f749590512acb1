package resource

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mentalmate/mindbot/backend/internal/model/resource"
	"github.com/mentalmate/mindbot/backend/pkg/utils"
)

// Handler 资源库的HTTP处理器
type Handler struct {
	catalog *resource.Catalog
}

// New 创建资源库处理器
func New(catalog *resource.Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// RegisterRoutes 注册资源库路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/resources", h.handleSearch)
	r.Get("/resources/{resourceID}", h.handleGet)
	r.Get("/hotlines", h.handleHotlines)
}

// handleSearch 按关键词与类型检索资源
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	typ := r.URL.Query().Get("type")
	if typ != "" && typ != "all" && !resource.ValidType(typ) {
		utils.RespondError(w, http.StatusBadRequest, "unknown resource type")
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.catalog.Search(r.URL.Query().Get("q"), typ))
}

// handleGet 按ID返回资源
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	res, ok := h.catalog.FindByID(chi.URLParam(r, "resourceID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "resource not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, res)
}

// handleHotlines 返回危机热线
func (h *Handler) handleHotlines(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.catalog.HotlineList())
}
