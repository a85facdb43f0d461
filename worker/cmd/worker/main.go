package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"newsVoice/worker/cache"
	"newsVoice/worker/config"
	"newsVoice/worker/ingest"
	"newsVoice/worker/kafka"
	"newsVoice/worker/pipeline"
	"newsVoice/worker/pool"
	"newsVoice/worker/repository"
	"newsVoice/worker/storage"
	"newsVoice/worker/translate"
	"newsVoice/worker/tts"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	logger.Info("Pipeline worker starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	audioStore, err := storage.NewAudioStore(cfg.AudioStoragePath)
	if err != nil {
		logger.Fatal("Failed to prepare audio storage", zap.Error(err))
	}

	coordinator := pipeline.NewCoordinator(
		repository.NewPostgresRepo(db),
		cache.NewStatusCache(redisClient),
		cache.NewMarkers(redisClient, cfg.SynthesizeTimeout+cfg.TranslateTimeout),
		ingest.NewSpider(nil, logger.With(zap.String("component", "spider"))),
		translate.NewOpenAITranslator(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.TargetLanguage),
		tts.NewGoogleSynthesizer(cfg.TTSEndpoint, nil),
		audioStore,
		pipeline.Config{
			MaxArticles:       cfg.MaxArticles,
			TargetLanguage:    cfg.TargetLanguage,
			IngestTimeout:     cfg.IngestTimeout,
			TranslateTimeout:  cfg.TranslateTimeout,
			SynthesizeTimeout: cfg.SynthesizeTimeout,
		},
		logger.With(zap.String("component", "coordinator")),
	)

	consumer, err := kafka.NewConsumer(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaGroupID)
	if err != nil {
		logger.Fatal("Failed to create kafka consumer", zap.Error(err))
	}
	defer consumer.Close()

	workers := pool.NewWorkerPool(cfg.WorkerCount)

	logger.Info("Consuming stage messages",
		zap.String("topic", cfg.KafkaTopic),
		zap.Int("workers", cfg.WorkerCount),
	)

	for ctx.Err() == nil {
		err := consumer.Consume(ctx, cfg.KafkaTopic, func(msgCtx context.Context, msg *kafka.StageMessage) error {
			workers.Submit(msgCtx, msg, coordinator.Handle)
			return nil
		})
		if err != nil && ctx.Err() == nil {
			logger.Error("Consumer session ended", zap.Error(err))
		}
	}

	workers.Wait()
	logger.Info("Pipeline worker stopped")
}
