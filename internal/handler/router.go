package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	adminHandler "github.com/mentalmate/mindbot/backend/internal/handler/admin"
	"github.com/mentalmate/mindbot/backend/internal/handler/chat"
	"github.com/mentalmate/mindbot/backend/internal/handler/live"
	"github.com/mentalmate/mindbot/backend/internal/handler/persona"
	profileHandler "github.com/mentalmate/mindbot/backend/internal/handler/profile"
	resourceHandler "github.com/mentalmate/mindbot/backend/internal/handler/resource"
	"github.com/mentalmate/mindbot/backend/internal/handler/stream"
	middlewarePkg "github.com/mentalmate/mindbot/backend/internal/middleware"
	personaModel "github.com/mentalmate/mindbot/backend/internal/model/persona"
	resourceModel "github.com/mentalmate/mindbot/backend/internal/model/resource"
	adminService "github.com/mentalmate/mindbot/backend/internal/service/admin"
	chatService "github.com/mentalmate/mindbot/backend/internal/service/chat"
	"github.com/mentalmate/mindbot/backend/internal/service/history"
	"github.com/mentalmate/mindbot/backend/internal/service/pipeline"
	profileService "github.com/mentalmate/mindbot/backend/internal/service/profile"
	"github.com/mentalmate/mindbot/backend/internal/service/settings"
	"github.com/mentalmate/mindbot/backend/pkg/logger"
	"github.com/mentalmate/mindbot/backend/pkg/utils"
)

// Deps 路由依赖的服务集合
type Deps struct {
	Personas       personaModel.Store
	Resources      *resourceModel.Catalog
	Sessions       *chatService.Service
	Pipeline       *pipeline.Pipeline
	Admin          *adminService.Controller
	Profiles       *profileService.Service
	Settings       settings.Store
	History        history.Store
	AllowedOrigins []string
	AdminToken     string
	Log            *logger.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(deps.AllowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	liveHandler := live.New(deps.Sessions, deps.Pipeline, deps.Log)

	r.Route("/api", func(api chi.Router) {
		persona.New(deps.Personas).RegisterRoutes(api)
		chat.New(deps.Sessions, deps.Pipeline, deps.Admin).RegisterRoutes(api)
		stream.New(deps.Pipeline, deps.Log).RegisterRoutes(api)
		resourceHandler.New(deps.Resources).RegisterRoutes(api)
		profileHandler.New(deps.Profiles, deps.Settings, deps.History).RegisterRoutes(api)
		liveHandler.RegisterRoutes(api)

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(middlewarePkg.AdminToken(deps.AdminToken))
			adminHandler.New(deps.Admin).RegisterRoutes(admin)
			liveHandler.RegisterAdminRoutes(admin)
		})
	})

	return r
}
