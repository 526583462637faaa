package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/brightpath/pathways-backend/internal/handlers"
)

type RouterConfig struct {
	RecommendationHandler *handlers.RecommendationHandler
	MatchHandler          *handlers.MatchHandler
	AdminHandler          *handlers.AdminHandler
	AllowOrigins          []string
	ServiceName           string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5173",
		}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "pathways-backend"
	}
	router.Use(otelgin.Middleware(serviceName))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Recommendations
		api.POST("/students/:student_id/results/:result_id/recommendations", cfg.RecommendationHandler.Generate)
		api.GET("/students/:student_id/results/:result_id/recommendations/by-type", cfg.RecommendationHandler.GenerateByType)
		api.GET("/students/:student_id/recommendations", cfg.RecommendationHandler.List)
		api.PATCH("/recommendations/:id/status", cfg.RecommendationHandler.UpdateStatus)

		// Matching
		api.POST("/match/skill-gaps", cfg.MatchHandler.MatchSkillGaps)
		api.POST("/match/role", cfg.MatchHandler.MatchRole)

		// Admin
		api.POST("/admin/embeddings/backfill", cfg.AdminHandler.BackfillEmbeddings)
	}

	return router
}
