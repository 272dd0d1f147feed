package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"
	"unicode/utf8"

	botdomain "github.com/central-university-dev/go-wallpost/internal/bot/domain"
	"github.com/central-university-dev/go-wallpost/internal/common/metrics"
	domainerrors "github.com/central-university-dev/go-wallpost/internal/domain/errors"
	"github.com/central-university-dev/go-wallpost/internal/domain/models"
	"github.com/central-university-dev/go-wallpost/internal/domain/repositories"
	"github.com/central-university-dev/go-wallpost/pkg/syncx"
)

type Transactor interface {
	WithTransaction(ctx context.Context, txFunc func(ctx context.Context) error) error
}

type EventProducer interface {
	PublishPostEvent(ctx context.Context, event *models.PostEvent) error
}

// ModerationService реализует жизненный цикл поста: отправку на модерацию,
// одобрение, отклонение, возврат с замечанием и удаление. Все мутации одного
// поста сериализуются по его id, создание черновиков - по id автора.
type ModerationService struct {
	postRepo       repositories.PostRepository
	userRepo       repositories.UserRepository
	telegramClient botdomain.TelegramClientAPI
	events         EventProducer
	txManager      Transactor
	postLocks      *syncx.KeyedMutex
	userLocks      *syncx.KeyedMutex
	adminChatID    int64
	maxPostLength  int
	logger         *slog.Logger
}

func NewModerationService(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	telegramClient botdomain.TelegramClientAPI,
	events EventProducer,
	txManager Transactor,
	adminChatID int64,
	maxPostLength int,
	logger *slog.Logger,
) *ModerationService {
	return &ModerationService{
		postRepo:       postRepo,
		userRepo:       userRepo,
		telegramClient: telegramClient,
		events:         events,
		txManager:      txManager,
		postLocks:      syncx.NewKeyedMutex(),
		userLocks:      syncx.NewKeyedMutex(),
		adminChatID:    adminChatID,
		maxPostLength:  maxPostLength,
		logger:         logger,
	}
}

func (s *ModerationService) AdminTelegramID() string {
	return strconv.FormatInt(s.adminChatID, 10)
}

func (s *ModerationService) IsAdmin(telegramID string) bool {
	// Идентификаторы сравниваются как строки, чтобы исключить
	// расхождение типов между источниками.
	return telegramID == s.AdminTelegramID()
}

func (s *ModerationService) requireAdmin(telegramID string) error {
	if !s.IsAdmin(telegramID) {
		return &domainerrors.ErrNotAdmin{TelegramID: telegramID}
	}

	return nil
}

func (s *ModerationService) requireOwner(post *models.Post, telegramID string) error {
	if post.Author == nil || post.Author.TelegramID != telegramID {
		return &domainerrors.ErrNotOwner{TelegramID: telegramID, PostID: post.ID}
	}

	return nil
}

func ownerChatID(post *models.Post) (int64, error) {
	if post.Author == nil {
		return 0, &domainerrors.ErrUserNotFound{TelegramID: fmt.Sprintf("author of post %d", post.ID)}
	}

	return strconv.ParseInt(post.Author.TelegramID, 10, 64)
}

func (s *ModerationService) transition(post *models.Post, event models.WorkflowEvent) error {
	next, ok := models.Transition(post.Status, event)
	if !ok {
		metrics.RecordModerationEvent(string(event), "rejected")

		return &domainerrors.ErrInvalidTransition{From: string(post.Status), Event: string(event)}
	}

	post.Status = next

	metrics.RecordModerationEvent(string(event), "applied")

	return nil
}

// notify доставляет уведомление лучшим усилием: ошибка доставки логируется
// и возвращается как ErrDelivery, но вызвавшая её мутация уже зафиксирована.
func (s *ModerationService) notify(ctx context.Context, chatID int64, text string) error {
	if err := s.telegramClient.SendMessage(ctx, chatID, text); err != nil {
		metrics.RecordDeliveryFailure()
		s.logger.Warn("Не удалось доставить уведомление",
			"error", err,
			"chat_id", chatID,
		)

		return &domainerrors.ErrDelivery{ChatID: chatID, Cause: err}
	}

	return nil
}

func (s *ModerationService) notifyWithKeyboard(ctx context.Context, chatID int64, text string, keyboard models.Keyboard) error {
	if err := s.telegramClient.SendMessageWithKeyboard(ctx, chatID, text, keyboard); err != nil {
		metrics.RecordDeliveryFailure()
		s.logger.Warn("Не удалось доставить уведомление",
			"error", err,
			"chat_id", chatID,
		)

		return &domainerrors.ErrDelivery{ChatID: chatID, Cause: err}
	}

	return nil
}

// CreateDraft создаёт черновик. Если у автора был включён анонимный режим,
// флаг расходуется на этот пост и сбрасывается в той же транзакции.
func (s *ModerationService) CreateDraft(ctx context.Context, user *models.User, content, imageURL string) (*models.Post, error) {
	s.userLocks.Lock(user.ID)
	defer s.userLocks.Unlock(user.ID)

	// Снимок пользователя из обработчика мог устареть до захвата блокировки:
	// два быстрых сообщения читаются параллельно, и анонимный режим расходовался
	// бы дважды. Флаги перечитываются уже под блокировкой.
	author, err := s.userRepo.FindByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if !author.IsApproved {
		return nil, &domainerrors.ErrNotApproved{TelegramID: author.TelegramID}
	}

	if length := utf8.RuneCountInString(content); length > s.maxPostLength {
		return nil, &domainerrors.ErrContentTooLong{Length: length, Limit: s.maxPostLength}
	}

	if content == "" && imageURL == "" {
		return nil, &domainerrors.ErrEmptyPost{}
	}

	post := &models.Post{
		AuthorID:    author.ID,
		Author:      author,
		Content:     content,
		ImageURL:    imageURL,
		IsAnonymous: author.IsAnonymousMode,
		Status:      models.StatusDraft,
	}

	consumeAnon := author.IsAnonymousMode

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.postRepo.Create(txCtx, post); err != nil {
			return err
		}

		if consumeAnon {
			author.IsAnonymousMode = false
			if err := s.userRepo.Update(txCtx, author); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return post, nil
}

// Submit переводит черновик или отклонённый пост на модерацию и уведомляет
// администратора с кнопками решения.
func (s *ModerationService) Submit(ctx context.Context, actorTelegramID string, postID int64) (*models.Post, error) {
	s.postLocks.Lock(postID)
	defer s.postLocks.Unlock(postID)

	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.requireOwner(post, actorTelegramID); err != nil {
		return nil, err
	}

	if err := s.transition(post, models.EventSubmit); err != nil {
		return nil, err
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	authorName := post.Author.DisplayName()
	if post.IsAnonymous {
		authorName += " (👻 анонимно)"
	}

	text := fmt.Sprintf("🚨 <b>Новая публикация!</b>\nОт: %s (%s)\n\n%s",
		authorName, post.Author.Rank(s.AdminTelegramID()), post.Content)

	_ = s.notifyWithKeyboard(ctx, s.adminChatID, text, ReviewKeyboard(post.ID))

	return post, nil
}

// Approve публикует пост: смена статуса, однократный скан тегов и инкремент
// счётчика автора фиксируются одной транзакцией, уведомление уходит после
// фиксации и использует уже обновлённый счётчик.
func (s *ModerationService) Approve(ctx context.Context, actorTelegramID string, postID int64) (*models.Post, error) {
	if err := s.requireAdmin(actorTelegramID); err != nil {
		return nil, err
	}

	s.postLocks.Lock(postID)
	defer s.postLocks.Unlock(postID)

	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.transition(post, models.EventApprove); err != nil {
		return nil, err
	}

	post.ScanTags()
	post.AdminRemark = ""

	var newCount int

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.postRepo.Update(txCtx, post); err != nil {
			return err
		}

		count, err := s.userRepo.IncrementPostCount(txCtx, post.AuthorID)
		if err != nil {
			return err
		}

		newCount = count

		return nil
	})
	if err != nil {
		return nil, err
	}

	rank := models.RankForCount(newCount)
	if post.Author.TelegramID == s.AdminTelegramID() {
		rank = models.AdminRank
	}

	if chatID, err := ownerChatID(post); err == nil {
		_ = s.notify(ctx, chatID, fmt.Sprintf("🎉 <b>Опубликовано!</b>\nВаш текущий ранг: <b>%s</b>", rank))
	}

	s.publishEvent(ctx, models.PostEventPublished, post)

	return post, nil
}

func (s *ModerationService) Reject(ctx context.Context, actorTelegramID string, postID int64) (*models.Post, error) {
	if err := s.requireAdmin(actorTelegramID); err != nil {
		return nil, err
	}

	s.postLocks.Lock(postID)
	defer s.postLocks.Unlock(postID)

	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.transition(post, models.EventReject); err != nil {
		return nil, err
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	if chatID, err := ownerChatID(post); err == nil {
		_ = s.notify(ctx, chatID,
			fmt.Sprintf("❌ <b>Пост %d отклонён.</b>\n👉 Откройте /drafts, чтобы исправить или удалить его.", post.ID))
	}

	return post, nil
}

// ReturnWithRemark возвращает пост автору в черновики с замечанием администратора.
func (s *ModerationService) ReturnWithRemark(ctx context.Context, actorTelegramID string, postID int64, remark string) (*models.Post, error) {
	if err := s.requireAdmin(actorTelegramID); err != nil {
		return nil, err
	}

	s.postLocks.Lock(postID)
	defer s.postLocks.Unlock(postID)

	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.transition(post, models.EventReturn); err != nil {
		return nil, err
	}

	post.AdminRemark = remark

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	if chatID, err := ownerChatID(post); err == nil {
		_ = s.notify(ctx, chatID,
			fmt.Sprintf("↩️ <b>Пост возвращён!</b>\n\n👮 <b>Замечание администратора:</b> %s\n\n👉 Откройте /drafts, чтобы исправить.", remark))
	}

	return post, nil
}

// EditContentByOwner заменяет текст поста автором. Правка отклонённого поста
// возвращает его в черновики; замечание администратора при любой правке снимается.
func (s *ModerationService) EditContentByOwner(ctx context.Context, actorTelegramID string, postID int64, content string) (*models.Post, error) {
	s.postLocks.Lock(postID)
	defer s.postLocks.Unlock(postID)

	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.requireOwner(post, actorTelegramID); err != nil {
		return nil, err
	}

	if length := utf8.RuneCountInString(content); length > s.maxPostLength {
		return nil, &domainerrors.ErrContentTooLong{Length: length, Limit: s.maxPostLength}
	}

	if post.Status == models.StatusRejected {
		if err := s.transition(post, models.EventUserEdit); err != nil {
			return nil, err
		}
	}

	post.Content = content
	post.AdminRemark = ""

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

// EditContentByAdmin заменяет текст поста администратором, статус не меняется.
func (s *ModerationService) EditContentByAdmin(ctx context.Context, actorTelegramID string, postID int64, content string) (*models.Post, error) {
	if err := s.requireAdmin(actorTelegramID); err != nil {
		return nil, err
	}

	s.postLocks.Lock(postID)
	defer s.postLocks.Unlock(postID)

	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if length := utf8.RuneCountInString(content); length > s.maxPostLength {
		return nil, &domainerrors.ErrContentTooLong{Length: length, Limit: s.maxPostLength}
	}

	post.Content = content

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

// Discard удаляет черновик или отклонённый пост по решению автора.
func (s *ModerationService) Discard(ctx context.Context, actorTelegramID string, postID int64) error {
	s.postLocks.Lock(postID)
	defer s.postLocks.Unlock(postID)

	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return err
	}

	if err := s.requireOwner(post, actorTelegramID); err != nil {
		return err
	}

	if err := s.transition(post, models.EventDiscard); err != nil {
		return err
	}

	return s.postRepo.Delete(ctx, post.ID)
}

// Withdraw отзывает пост с модерации до решения администратора.
func (s *ModerationService) Withdraw(ctx context.Context, actorTelegramID string, postID int64) error {
	s.postLocks.Lock(postID)
	defer s.postLocks.Unlock(postID)

	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return err
	}

	if err := s.requireOwner(post, actorTelegramID); err != nil {
		return err
	}

	if err := s.transition(post, models.EventWithdraw); err != nil {
		return err
	}

	return s.postRepo.Delete(ctx, post.ID)
}

// RequestDeletion передаёт администратору запрос автора на удаление
// опубликованного поста. Сам пост не изменяется.
func (s *ModerationService) RequestDeletion(ctx context.Context, actorTelegramID string, postID int64) error {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return err
	}

	if err := s.requireOwner(post, actorTelegramID); err != nil {
		return err
	}

	if post.Status != models.StatusPublished {
		return &domainerrors.ErrInvalidTransition{From: string(post.Status), Event: string(models.EventDelete)}
	}

	keyboard := models.Keyboard{
		{
			{Text: "🗑️ Удалить", Data: models.CallbackData(models.ActionConfirmDel, post.ID)},
			{Text: "✋ Оставить", Data: models.CallbackData(models.ActionKeep, post.ID)},
		},
	}

	text := fmt.Sprintf("🗑️ <b>Запрос на удаление поста %d</b>\nОт: %s\n\n%s",
		post.ID, post.Author.DisplayName(), post.Preview(200))

	return s.notifyWithKeyboard(ctx, s.adminChatID, text, keyboard)
}

// AdminDelete принудительно удаляет опубликованный пост.
func (s *ModerationService) AdminDelete(ctx context.Context, actorTelegramID string, postID int64) error {
	return s.deletePublished(ctx, actorTelegramID, postID,
		"🗑️ <b>Ваш пост %d удалён администратором.</b>")
}

// ConfirmDeletion подтверждает запрос автора на удаление.
func (s *ModerationService) ConfirmDeletion(ctx context.Context, actorTelegramID string, postID int64) error {
	return s.deletePublished(ctx, actorTelegramID, postID,
		"🗑️ <b>Ваш запрос выполнен: пост %d удалён.</b>")
}

func (s *ModerationService) deletePublished(ctx context.Context, actorTelegramID string, postID int64, ownerText string) error {
	if err := s.requireAdmin(actorTelegramID); err != nil {
		return err
	}

	s.postLocks.Lock(postID)
	defer s.postLocks.Unlock(postID)

	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return err
	}

	if err := s.transition(post, models.EventDelete); err != nil {
		return err
	}

	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		return err
	}

	if chatID, err := ownerChatID(post); err == nil {
		_ = s.notify(ctx, chatID, fmt.Sprintf(ownerText, post.ID))
	}

	s.publishEvent(ctx, models.PostEventDeleted, post)

	return nil
}

// DenyDeletion отклоняет запрос автора, пост остаётся без изменений.
func (s *ModerationService) DenyDeletion(ctx context.Context, actorTelegramID string, postID int64) error {
	if err := s.requireAdmin(actorTelegramID); err != nil {
		return err
	}

	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return err
	}

	if chatID, err := ownerChatID(post); err == nil {
		_ = s.notify(ctx, chatID,
			fmt.Sprintf("✋ <b>Запрос на удаление поста %d отклонён, пост остаётся на стене.</b>", post.ID))
	}

	return nil
}

func (s *ModerationService) publishEvent(ctx context.Context, eventType models.PostEventType, post *models.Post) {
	if s.events == nil {
		return
	}

	event := &models.PostEvent{
		Type:           eventType,
		PostID:         post.ID,
		AuthorID:       post.AuthorID,
		IsPinned:       post.IsPinned,
		IsAnnouncement: post.IsAnnouncement,
		OccurredAt:     time.Now(),
	}

	if err := s.events.PublishPostEvent(ctx, event); err != nil {
		s.logger.Warn("Не удалось опубликовать событие поста",
			"error", err,
			"post_id", post.ID,
			"type", string(eventType),
		)
	}
}

// ReviewKeyboard - стандартный набор кнопок решения администратора.
func ReviewKeyboard(postID int64) models.Keyboard {
	return models.Keyboard{
		{
			{Text: "✅ Одобрить", Data: models.CallbackData(models.ActionApprove, postID)},
			{Text: "❌ Отклонить", Data: models.CallbackData(models.ActionReject, postID)},
		},
		{
			{Text: "✏️ Править", Data: models.CallbackData(models.ActionAdminEdit, postID)},
			{Text: "↩️ Вернуть с замечанием", Data: models.CallbackData(models.ActionRemark, postID)},
		},
	}
}
