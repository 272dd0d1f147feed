package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"log/slog"

	"github.com/central-university-dev/go-wallpost/internal/bot/clients"
	"github.com/central-university-dev/go-wallpost/internal/bot/domain"
	"github.com/central-university-dev/go-wallpost/internal/bot/events"
	"github.com/central-university-dev/go-wallpost/internal/bot/repository"
	"github.com/central-university-dev/go-wallpost/internal/bot/service"
	"github.com/central-university-dev/go-wallpost/internal/bot/session"
	"github.com/central-university-dev/go-wallpost/internal/bot/telegram"
	"github.com/central-university-dev/go-wallpost/internal/common/httputil"
	"github.com/central-university-dev/go-wallpost/internal/common/metrics"
	"github.com/central-university-dev/go-wallpost/internal/common/middleware"
	"github.com/central-university-dev/go-wallpost/internal/config"
	"github.com/central-university-dev/go-wallpost/internal/database"
	"github.com/central-university-dev/go-wallpost/internal/scheduler"
	"github.com/central-university-dev/go-wallpost/pkg"
	"github.com/central-university-dev/go-wallpost/pkg/txs"
)

func setupTelegramCommands(telegramClient domain.TelegramClientAPI, appLogger *slog.Logger) {
	botCommands := []domain.BotCommand{
		{Command: "start", Description: "Начать работу с ботом"},
		{Command: "help", Description: "Получить справку о командах"},
		{Command: "rules", Description: "Правила стены"},
		{Command: "anon", Description: "Анонимный режим на один пост"},
		{Command: "drafts", Description: "Мои черновики"},
		{Command: "myposts", Description: "Мои публикации"},
	}

	ctx := context.Background()
	if err := telegramClient.SetMyCommands(ctx, botCommands); err != nil {
		appLogger.Error("Ошибка при регистрации команд бота",
			"error", err,
		)
	} else {
		appLogger.Info("Команды бота успешно зарегистрированы")
	}
}

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

	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("ошибка применения миграций: %w", err)
	}

	txManager := txs.NewTxManager(db.Pool, appLogger)

	repoFactory := repository.NewFactory(db, cfg, appLogger)

	userRepo, err := repoFactory.CreateUserRepository()
	if err != nil {
		return fmt.Errorf("ошибка создания репозитория пользователей: %w", err)
	}

	postRepo, err := repoFactory.CreatePostRepository()
	if err != nil {
		return fmt.Errorf("ошибка создания репозитория постов: %w", err)
	}

	telegramClient := clients.NewTelegramClient(cfg.TelegramBotToken, appLogger)
	setupTelegramCommands(telegramClient, appLogger)

	avatarHTTPClient := httputil.CreateResilientHTTPClient(cfg, appLogger, "telegram_avatars")
	avatarClient := clients.NewAvatarClient(avatarHTTPClient, cfg.TelegramBotToken)

	var eventProducer service.EventProducer = events.NoopProducer{}

	var kafkaProducer *events.KafkaProducer

	if strings.EqualFold(cfg.EventsTransport, "KAFKA") {
		brokers := strings.Split(cfg.KafkaBrokers, ",")
		kafkaProducer = events.NewKafkaProducer(brokers, cfg.TopicPostEvents, cfg.TopicDeadLetterQueue, appLogger)
		eventProducer = kafkaProducer

		appLogger.Info("Kafka продюсер событий успешно запущен")
	}

	moderationService := service.NewModerationService(
		postRepo,
		userRepo,
		telegramClient,
		eventProducer,
		txManager,
		cfg.AdminChatID,
		cfg.MaxPostLength,
		appLogger,
	)

	sessions := session.NewStore()

	botService := service.NewBotService(
		userRepo,
		postRepo,
		moderationService,
		sessions,
		telegramClient,
		avatarClient,
		appLogger,
	)

	rateLimiter := middleware.NewChatRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)

	poller := telegram.NewPoller(telegramClient, botService, rateLimiter, appLogger)
	poller.Start()

	var digest *scheduler.Scheduler

	if cfg.DigestEnabled {
		digest = scheduler.NewScheduler(postRepo, telegramClient, cfg.AdminChatID, cfg.DigestDeliveryTime, appLogger)
		digest.Start()
	}

	metricsServer := metrics.NewMetricsServer(cfg.BotMetricsPort, appLogger)

	go func() {
		if err := metricsServer.Start(ctx); err != nil {
			appLogger.Error("Ошибка сервера метрик", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	appLogger.Info("Получен системный сигнал",
		"signal", sig.String(),
	)

	poller.Stop()

	if digest != nil {
		digest.Stop()
	}

	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			appLogger.Error("Ошибка при закрытии Kafka продюсера",
				"error", err,
			)
		}
	}

	cancel()

	appLogger.Info("Сервис успешно остановлен")

	return nil
}
