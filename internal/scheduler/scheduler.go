package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/central-university-dev/go-wallpost/internal/common/metrics"
	"github.com/central-university-dev/go-wallpost/internal/domain/models"
	"github.com/central-university-dev/go-wallpost/internal/domain/repositories"
)

type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Scheduler раз в день напоминает администратору о постах, ожидающих решения.
type Scheduler struct {
	scheduler    *gocron.Scheduler
	postRepo     repositories.PostRepository
	notifier     Notifier
	adminChatID  int64
	deliveryTime string
	logger       *slog.Logger
}

func NewScheduler(
	postRepo repositories.PostRepository,
	notifier Notifier,
	adminChatID int64,
	deliveryTime string,
	logger *slog.Logger,
) *Scheduler {
	scheduler := gocron.NewScheduler(time.UTC)

	return &Scheduler{
		scheduler:    scheduler,
		postRepo:     postRepo,
		notifier:     notifier,
		adminChatID:  adminChatID,
		deliveryTime: deliveryTime,
		logger:       logger,
	}
}

func (s *Scheduler) Start() {
	s.logger.Info("Запуск планировщика дайджеста",
		"delivery_time", s.deliveryTime,
	)

	_, err := s.scheduler.Every(1).Day().At(s.deliveryTime).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.sendDigest(ctx); err != nil {
			s.logger.Error("Ошибка при отправке дайджеста",
				"error", err,
			)
		}
	})
	if err != nil {
		s.logger.Error("Ошибка при настройке планировщика",
			"error", err,
		)

		return
	}

	s.scheduler.StartAsync()
}

func (s *Scheduler) sendDigest(ctx context.Context) error {
	count, err := s.postRepo.CountByStatus(ctx, models.StatusPending)
	if err != nil {
		return err
	}

	metrics.SetPendingPostsCount(float64(count))

	if count == 0 {
		s.logger.Info("Очередь модерации пуста, дайджест не отправляется")

		return nil
	}

	text := fmt.Sprintf("📬 <b>Дайджест модерации</b>\nПостов в очереди: %d\n👉 /pending", count)

	return s.notifier.SendMessage(ctx, s.adminChatID, text)
}

func (s *Scheduler) Stop() {
	s.logger.Info("Остановка планировщика")
	s.scheduler.Stop()
}
