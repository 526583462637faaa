package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/brightpath/pathways-backend/internal/clients/openai"
	"github.com/brightpath/pathways-backend/internal/config"
	"github.com/brightpath/pathways-backend/internal/db"
	"github.com/brightpath/pathways-backend/internal/embedding"
	"github.com/brightpath/pathways-backend/internal/handlers"
	"github.com/brightpath/pathways-backend/internal/keywords"
	"github.com/brightpath/pathways-backend/internal/logger"
	"github.com/brightpath/pathways-backend/internal/observability"
	"github.com/brightpath/pathways-backend/internal/profile"
	"github.com/brightpath/pathways-backend/internal/repos"
	"github.com/brightpath/pathways-backend/internal/server"
	"github.com/brightpath/pathways-backend/internal/services"
	"github.com/brightpath/pathways-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Config
	log.Info("Loading configuration from main...")
	cfg, err := config.Load(log)
	if err != nil {
		log.Error("Could not load configuration", "error", err)
		os.Exit(1)
	}

	// Tracing
	shutdownTracing := observability.InitTracing(context.Background(), log, observability.TracingConfig{
		ServiceName: "pathways-backend",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})
	if shutdownTracing != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(ctx); err != nil {
				log.Warn("otel shutdown failed", "error", err)
			}
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	courseRepo := repos.NewCourseRepo(thePG, log)
	recommendationRepo := repos.NewRecommendationRepo(thePG, log)
	assessmentRepo := repos.NewAssessmentResultRepo(thePG, log)

	// Keyword cache: redis when configured, in-process otherwise.
	var keywordCache keywords.Cache
	if addr := strings.TrimSpace(os.Getenv("REDIS_ADDR")); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		ttl := time.Duration(utils.GetEnvAsInt("KEYWORD_CACHE_TTL_SECONDS", 86400, log)) * time.Second
		keywordCache = keywords.NewRedisCache(rdb, ttl, log)
		log.Info("Keyword cache backed by redis", "addr", addr)
	} else {
		keywordCache = keywords.NewMemoryCache(utils.GetEnvAsInt("KEYWORD_CACHE_MAX_ENTRIES", 1000, log))
	}

	// Clients
	log.Info("Setting up clients from main...")
	openaiClient, err := openai.NewClient(log)
	if err != nil {
		log.Warn("OpenAI client unavailable, running on fallback paths only", "error", err)
		openaiClient = nil
	}

	// Services
	log.Info("Setting up Services from main...")
	keywordResolver := keywords.NewResolver(log, openaiClient, keywordCache)
	profileBuilder := profile.NewBuilder(log, keywordResolver)
	var embeddingProvider embedding.Provider
	if openaiClient != nil {
		embeddingProvider = openaiClient
	}
	embeddingService := embedding.NewService(log, embeddingProvider)

	recommendationService := services.NewRecommendationService(log, cfg, profileBuilder, embeddingService, courseRepo, recommendationRepo)
	skillGapMatcher := services.NewSkillGapMatcher(log, cfg, embeddingService, courseRepo)
	roleMatcher := services.NewRoleMatcher(log, cfg, embeddingService)
	courseEmbeddingService := services.NewCourseEmbeddingService(log, cfg, embeddingService, courseRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	recommendationHandler := handlers.NewRecommendationHandler(log, recommendationService, assessmentRepo)
	matchHandler := handlers.NewMatchHandler(log, skillGapMatcher, roleMatcher, courseRepo)
	adminHandler := handlers.NewAdminHandler(log, courseEmbeddingService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		RecommendationHandler: recommendationHandler,
		MatchHandler:          matchHandler,
		AdminHandler:          adminHandler,
		ServiceName:           "pathways-backend",
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
