package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"newsVoice/api/cache"
	"newsVoice/api/config"
	"newsVoice/api/database"
	"newsVoice/api/handlers"
	"newsVoice/api/kafka"
	"newsVoice/api/middleware"
	"newsVoice/api/repository"
	"newsVoice/api/service"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	var logger *zap.Logger
	if cfg.Env == "production" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	logger.Info("API Service starting", zap.String("port", cfg.Port))

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisCache, err := database.ConnectCache(cfg.RedisAddr)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer redisCache.Close()

	producer, err := kafka.NewProducer(strings.Split(cfg.KafkaBrokers, ","))
	if err != nil {
		logger.Fatal("Failed to create kafka producer", zap.Error(err))
	}
	defer producer.Close()

	repo := repository.NewPostgresRepo(db)
	statusCache := cache.NewStatusCache(redisCache)
	markers := cache.NewInflightMarkers(redisCache, cfg.StageTTL)
	taskService := service.NewTaskService(repo, statusCache, markers, producer, cfg.KafkaTopic, logger)
	taskHandler := handlers.NewTaskHandler(taskService, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/tasks", taskHandler.Create)
	mux.HandleFunc("GET /api/tasks", taskHandler.List)
	mux.HandleFunc("DELETE /api/tasks", taskHandler.DeleteAll)
	mux.HandleFunc("GET /api/tasks/{id}", taskHandler.Get)
	mux.HandleFunc("GET /api/tasks/{id}/articles", taskHandler.Articles)
	mux.HandleFunc("GET /api/articles/{id}", taskHandler.Article)
	mux.HandleFunc("POST /api/articles/{id}/audio", taskHandler.GenerateAudio)
	mux.HandleFunc("GET /api/articles/{id}/download/{kind}", taskHandler.Download)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	handler := middleware.TraceID(
		middleware.Logging(logger)(
			middleware.Recovery(logger)(mux),
		),
	)

	logger.Info("Server started", zap.String("address", ":"+cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}
