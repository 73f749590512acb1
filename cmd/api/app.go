package main

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/mentalmate/mindbot/backend/internal/config"
	"github.com/mentalmate/mindbot/backend/internal/model/persona"
	"github.com/mentalmate/mindbot/backend/internal/model/resource"
	"github.com/mentalmate/mindbot/backend/internal/service/admin"
	"github.com/mentalmate/mindbot/backend/internal/service/ai"
	"github.com/mentalmate/mindbot/backend/internal/service/chat"
	emotionservice "github.com/mentalmate/mindbot/backend/internal/service/emotion"
	"github.com/mentalmate/mindbot/backend/internal/service/history"
	"github.com/mentalmate/mindbot/backend/internal/service/pipeline"
	"github.com/mentalmate/mindbot/backend/internal/service/profile"
	"github.com/mentalmate/mindbot/backend/internal/service/settings"
	"github.com/mentalmate/mindbot/backend/pkg/logger"
)

// app holds the wired services shared by every subcommand.
type app struct {
	cfg       *config.Config
	personas  persona.Store
	resources *resource.Catalog
	sessions  *chat.Service
	pipeline  *pipeline.Pipeline
	admin     *admin.Controller
	profiles  *profile.Service
	settings  settings.Store
	history   history.Store
	rdb       *redis.Client
}

// loadConfig reads .env when present, then the environment.
func loadConfig(log *logger.Logger) (*config.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded, using system environment", "error", err)
	}
	return config.Load()
}

func buildApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*app, error) {
	resources, err := resource.Default()
	if err != nil {
		return nil, fmt.Errorf("load resource catalog: %w", err)
	}

	personaStore := persona.NewMemoryStore(persona.Seed())
	sessions := chat.NewService(personaStore, log)

	// Scripted replies keep the service usable without model credentials.
	var completer ai.Completer = ai.ScriptedCompleter{}
	var chatModel model.ChatModel
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI, log)
		if err != nil {
			log.Warn("AI service unavailable, using scripted replies", "error", err)
		} else {
			completer = aiService
			chatModel = aiService.GetChatModel()
			log.Info("AI service initialized", "model", cfg.AI.Model, "stream", aiService.StreamingEnabled())
		}
	} else {
		log.Info("Ark credentials not configured, using scripted replies")
	}

	classifier, err := emotionservice.New(ctx, chatModel, emotionservice.Config{Mode: cfg.Classifier.Mode}, log)
	if err != nil {
		return nil, fmt.Errorf("init emotion classifier: %w", err)
	}

	a := &app{
		cfg:       cfg,
		personas:  personaStore,
		resources: resources,
		sessions:  sessions,
	}

	if cfg.Redis.Enabled() {
		rdb, err := openRedis(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		a.rdb = rdb
		a.history = history.NewRedisStore(rdb, cfg.Redis.HistoryTTL, cfg.Redis.HistoryLimit)
		a.settings = settings.NewRedisStore(rdb)
		log.Info("redis stores enabled", "history_ttl", cfg.Redis.HistoryTTL, "history_limit", cfg.Redis.HistoryLimit)
	} else {
		a.history = history.NewMemoryStore(cfg.Redis.HistoryLimit)
		a.settings = settings.NewMemoryStore()
	}

	a.profiles = profile.NewService(sessions, resources, log)
	a.pipeline = pipeline.New(pipeline.Deps{
		Sessions:   sessions,
		Completer:  completer,
		Classifier: classifier,
		Personas:   personaStore,
		Resources:  resources,
		History:    a.history,
		Settings:   a.settings,
		Profiles:   a.profiles,
	}, pipeline.Config{
		CompletionTimeout: cfg.Pipeline.CompletionTimeout,
		DefaultLanguage:   cfg.Pipeline.DefaultLanguage,
	}, log)
	a.admin = admin.NewController(sessions, a.pipeline, log)

	return a, nil
}

func openRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return rdb, nil
}

func (a *app) Close() error {
	if a.rdb != nil {
		return a.rdb.Close()
	}
	return nil
}
