package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"tripsync/cmd/fx/catalog_fx"
	"tripsync/cmd/fx/knowledge_fx"
	"tripsync/cmd/fx/ranking_fx"
	"tripsync/internal/api/controllers"
	"tripsync/pkg/middleware"
)

func main() {
	_ = godotenv.Load()

	app := fx.New(
		fx.Provide(ProvideLogger),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),

		catalog_fx.Module,
		ranking_fx.Module,
		knowledge_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func ProvideLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine, logger *zap.Logger) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info("starting HTTP server", zap.String("port", port))
				if err := engine.Run(":" + port); err != nil {
					logger.Fatal("failed to start server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping HTTP server")
			return nil
		},
	})
}

func ProvideRouter(
	recommendationController *controllers.RecommendationController,
	knowledgeController *controllers.KnowledgeController) *gin.Engine {

	r := gin.Default()
	r.Use(middleware.TraceIDMiddleware())

	RegisterRoutes(r, recommendationController, knowledgeController)

	return r
}

func RegisterRoutes(r *gin.Engine,
	recommendationController *controllers.RecommendationController,
	knowledgeController *controllers.KnowledgeController) {

	api := r.Group("/api")
	api.POST("/recommendations", recommendationController.RankHandler)
	api.POST("/recommendations/explain", recommendationController.ExplainHandler)
	api.POST("/knowledge/query", knowledgeController.QueryHandler)

	debug := api.Group("/debug")
	debug.Use(middleware.OperatorGuard())
	debug.POST("/decision-trace", recommendationController.TraceHandler)
}
