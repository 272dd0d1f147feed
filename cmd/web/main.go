package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/central-university-dev/go-wallpost/internal/common/metrics"
	"github.com/central-university-dev/go-wallpost/internal/common/middleware"
	"github.com/central-university-dev/go-wallpost/internal/config"
	"github.com/central-university-dev/go-wallpost/internal/database"
	"github.com/central-university-dev/go-wallpost/internal/web"
	"github.com/central-university-dev/go-wallpost/internal/web/cache"
	"github.com/central-university-dev/go-wallpost/internal/web/events"
	"github.com/central-university-dev/go-wallpost/internal/web/handlers"
	"github.com/central-university-dev/go-wallpost/internal/web/repository"
	"github.com/central-university-dev/go-wallpost/internal/web/service"
	"github.com/central-university-dev/go-wallpost/pkg"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка запуска сервиса: %v\n", err)
		os.Exit(1)
	}
}

//nolint:funlen // Длина функции обусловлена необходимостью последовательной инициализации всех компонентов.
func run() error {
	appLogger := pkg.NewLogger(os.Stdout)

	cfg := config.LoadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewPostgresDB(ctx, cfg, appLogger)
	if err != nil {
		return fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	defer db.Close()

	wallRepo := repository.NewWallRepository(db)

	var wallCache cache.WallCache

	var redisCache *cache.RedisWallCache

	if cfg.RedisURL != "" {
		redisCache, err = cache.NewRedisWallCache(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB, cfg.RedisCacheTTL, appLogger)
		if err != nil {
			appLogger.Error("Ошибка при подключении к Redis",
				"error", err,
			)
		} else {
			wallCache = redisCache
		}
	}

	adminTelegramID := strconv.FormatInt(cfg.AdminChatID, 10)
	wallService := service.NewWallService(wallRepo, wallCache, adminTelegramID, appLogger)

	var kafkaConsumer *events.Consumer

	if strings.EqualFold(cfg.EventsTransport, "KAFKA") && wallCache != nil {
		brokers := strings.Split(cfg.KafkaBrokers, ",")
		invalidator := events.NewCacheInvalidator(wallService, appLogger)
		kafkaConsumer = events.NewConsumer(
			brokers,
			"web-group",
			cfg.TopicPostEvents,
			cfg.TopicDeadLetterQueue,
			invalidator,
			appLogger,
		)

		kafkaConsumer.Start(ctx)
		appLogger.Info("Kafka консьюмер успешно запущен")
	}

	rateLimiter := middleware.NewRateLimiterMiddleware(ctx, cfg.RateLimitRequests, cfg.RateLimitWindow, appLogger)

	wallHandler := handlers.NewWallHandler(wallService, appLogger)
	server := web.NewServer(cfg.WebServerPort, wallHandler, rateLimiter, appLogger)

	metricsServer := metrics.NewMetricsServer(cfg.WebMetricsPort, appLogger)

	go func() {
		if err := metricsServer.Start(ctx); err != nil {
			appLogger.Error("Ошибка сервера метрик", "error", err)
		}
	}()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		sig := <-sigCh
		appLogger.Info("Получен системный сигнал",
			"signal", sig.String(),
		)

		if kafkaConsumer != nil {
			if err := kafkaConsumer.Close(); err != nil {
				appLogger.Error("Ошибка при закрытии Kafka консьюмера",
					"error", err,
				)
			}
		}

		if redisCache != nil {
			if err := redisCache.Close(); err != nil {
				appLogger.Error("Ошибка при закрытии соединения с Redis",
					"error", err,
				)
			}
		}

		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		return err
	}

	appLogger.Info("Сервис успешно остановлен")

	return nil
}
