package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	botdomain "github.com/central-university-dev/go-wallpost/internal/bot/domain"
	"github.com/central-university-dev/go-wallpost/internal/common/metrics"
	domainerrors "github.com/central-university-dev/go-wallpost/internal/domain/errors"
	"github.com/central-university-dev/go-wallpost/internal/domain/models"
	"github.com/central-university-dev/go-wallpost/internal/domain/repositories"
	"go.uber.org/multierr"
)

type SessionStore interface {
	Set(chatID int64, action models.PendingAction)
	Take(chatID int64) (models.PendingAction, bool)
	Cancel(chatID int64)
}

type AvatarProvider interface {
	FetchAvatarURL(ctx context.Context, userID int64) (string, error)
}

// IncomingMessage - входящее свободное сообщение пользователя.
// Для личных чатов ChatID совпадает с telegram id пользователя.
type IncomingMessage struct {
	ChatID    int64
	UserID    int64
	Text      string
	ImageURL  string
	Username  string
	FirstName string
}

type IncomingCallback struct {
	CallbackID string
	ChatID     int64
	UserID     int64
	MessageID  int
	Data       string
}

// BotService - диалоговая поверхность бота: команды, свободный текст
// и кнопки. Правила жизненного цикла постов делегируются ModerationService.
type BotService struct {
	userRepo       repositories.UserRepository
	postRepo       repositories.PostRepository
	moderation     *ModerationService
	sessions       SessionStore
	telegramClient botdomain.TelegramClientAPI
	avatars        AvatarProvider
	logger         *slog.Logger
}

func NewBotService(
	userRepo repositories.UserRepository,
	postRepo repositories.PostRepository,
	moderation *ModerationService,
	sessions SessionStore,
	telegramClient botdomain.TelegramClientAPI,
	avatars AvatarProvider,
	logger *slog.Logger,
) *BotService {
	return &BotService{
		userRepo:       userRepo,
		postRepo:       postRepo,
		moderation:     moderation,
		sessions:       sessions,
		telegramClient: telegramClient,
		avatars:        avatars,
		logger:         logger,
	}
}

const rulesText = `📜 <b>Правила стены</b>

1. Один пост - не длиннее %d символов.
2. Пост попадает на стену только после одобрения администратора.
3. Тег %s закрепляет пост, тег %s помечает его как объявление.
4. Команда /anon делает следующий пост анонимным.
5. Администратор может вернуть пост с замечанием - исправьте и отправьте снова.`

func (s *BotService) ProcessCommand(ctx context.Context, cmd *models.Command) (string, error) {
	metrics.RecordUserMessage("command")

	switch cmd.Type {
	case models.CommandStart, models.CommandHelp:
		return s.handleStart(ctx, cmd)
	case models.CommandRules:
		return fmt.Sprintf(rulesText, s.moderation.maxPostLength, models.TagPinned, models.TagAnnounce), nil
	case models.CommandAnon:
		return s.handleAnon(ctx, cmd)
	case models.CommandDrafts:
		return s.handleDrafts(ctx, cmd)
	case models.CommandMyPosts:
		return s.handleMyPosts(ctx, cmd)
	case models.CommandPending:
		return s.handlePending(ctx, cmd)
	case models.CommandUsers:
		return s.handleUsers(ctx, cmd)
	case models.CommandBroadcast:
		return s.handleBroadcast(ctx, cmd)
	case models.CommandNotify:
		return s.handleNotify(ctx, cmd)
	default:
		return "🤷 Неизвестная команда. Отправьте /help, чтобы увидеть список команд.",
			&domainerrors.ErrUnknownCommand{Command: string(cmd.Type)}
	}
}

func (s *BotService) handleStart(ctx context.Context, cmd *models.Command) (string, error) {
	telegramID := strconv.FormatInt(cmd.UserID, 10)

	user, err := s.userRepo.GetOrCreate(ctx, telegramID, cmd.Username, cmd.FirstName)
	if err != nil {
		return "", err
	}

	if s.moderation.IsAdmin(telegramID) && !user.IsApproved {
		user.IsApproved = true
		if err := s.userRepo.Update(ctx, user); err != nil {
			return "", err
		}
	}

	s.refreshAvatar(ctx, user)

	var sb strings.Builder

	fmt.Fprintf(&sb, "👋 <b>Привет, %s!</b>\n", user.DisplayName())
	fmt.Fprintf(&sb, "Твой ранг: <b>%s</b>\n\n", user.Rank(s.moderation.AdminTelegramID()))

	sb.WriteString("📜 Команды:\n")
	sb.WriteString("/rules - правила стены\n")
	sb.WriteString("/anon - анонимный режим на один пост\n")
	sb.WriteString("/drafts - мои черновики\n")
	sb.WriteString("/myposts - мои публикации\n")

	if s.moderation.IsAdmin(telegramID) {
		sb.WriteString("\n👮 Администрирование:\n")
		sb.WriteString("/pending - очередь модерации\n")
		sb.WriteString("/users - пользователи\n")
		sb.WriteString("/broadcast - рассылка\n")
		sb.WriteString("/notify - сообщение пользователю\n")
	}

	switch {
	case user.IsApproved:
		sb.WriteString("\n✍️ Просто отправьте текст или фото, чтобы создать черновик.")
	default:
		sb.WriteString("\n⏳ Доступ к публикациям пока закрыт, администратор уведомлён.")

		s.notifyAdminAboutNewUser(ctx, user)
	}

	return sb.String(), nil
}

// refreshAvatar подтягивает аватар лучшим усилием: сбой не мешает /start.
func (s *BotService) refreshAvatar(ctx context.Context, user *models.User) {
	if s.avatars == nil {
		return
	}

	userID, err := strconv.ParseInt(user.TelegramID, 10, 64)
	if err != nil {
		return
	}

	avatarURL, err := s.avatars.FetchAvatarURL(ctx, userID)
	if err != nil {
		s.logger.Warn("Не удалось получить аватар пользователя",
			"error", err,
			"telegram_id", user.TelegramID,
		)

		return
	}

	if avatarURL == "" || avatarURL == user.AvatarURL {
		return
	}

	user.AvatarURL = avatarURL

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Warn("Не удалось сохранить аватар пользователя",
			"error", err,
			"telegram_id", user.TelegramID,
		)
	}
}

func (s *BotService) notifyAdminAboutNewUser(ctx context.Context, user *models.User) {
	keyboard := models.Keyboard{
		{
			{Text: "✅ Открыть доступ", Data: models.CallbackData(models.ActionUserApprove, user.ID)},
			{Text: "⛔ Блокировать", Data: models.CallbackData(models.ActionUserBlock, user.ID)},
		},
	}

	text := fmt.Sprintf("🆕 <b>Новый пользователь:</b> %s (telegram id %s)",
		user.DisplayName(), user.TelegramID)

	if err := s.telegramClient.SendMessageWithKeyboard(ctx, s.moderation.adminChatID, text, keyboard); err != nil {
		metrics.RecordDeliveryFailure()
		s.logger.Warn("Не удалось уведомить администратора о новом пользователе",
			"error", err,
			"telegram_id", user.TelegramID,
		)
	}
}

func (s *BotService) handleAnon(ctx context.Context, cmd *models.Command) (string, error) {
	user, err := s.requireUser(ctx, cmd.UserID)
	if err != nil {
		return startFirstReply(err)
	}

	user.IsAnonymousMode = !user.IsAnonymousMode

	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", err
	}

	if user.IsAnonymousMode {
		return "👻 Анонимный режим включён: следующий пост будет опубликован без автора.", nil
	}

	return "👤 Анонимный режим выключен.", nil
}

func (s *BotService) handleDrafts(ctx context.Context, cmd *models.Command) (string, error) {
	user, err := s.requireUser(ctx, cmd.UserID)
	if err != nil {
		return startFirstReply(err)
	}

	posts, err := s.postRepo.FindByAuthorAndStatuses(ctx, user.ID,
		[]models.PostStatus{models.StatusDraft, models.StatusRejected, models.StatusPending})
	if err != nil {
		return "", err
	}

	if len(posts) == 0 {
		return "📭 У вас нет черновиков. Просто отправьте текст, чтобы создать новый.", nil
	}

	for _, post := range posts {
		text := fmt.Sprintf("%s <b>Пост %d</b>\n%s", statusLabel(post.Status), post.ID, post.Preview(200))
		if post.AdminRemark != "" {
			text += "\n👮 <b>Замечание:</b> " + post.AdminRemark
		}

		if err := s.telegramClient.SendMessageWithKeyboard(ctx, cmd.ChatID, text, draftKeyboard(post)); err != nil {
			return "", &domainerrors.ErrDelivery{ChatID: cmd.ChatID, Cause: err}
		}
	}

	return "", nil
}

func (s *BotService) handleMyPosts(ctx context.Context, cmd *models.Command) (string, error) {
	user, err := s.requireUser(ctx, cmd.UserID)
	if err != nil {
		return startFirstReply(err)
	}

	posts, err := s.postRepo.FindByAuthorAndStatuses(ctx, user.ID, []models.PostStatus{models.StatusPublished})
	if err != nil {
		return "", err
	}

	if len(posts) == 0 {
		return "📭 У вас пока нет публикаций.", nil
	}

	for _, post := range posts {
		keyboard := models.Keyboard{
			{
				{Text: "👁 Просмотр", Data: models.CallbackData(models.ActionViewPost, post.ID)},
				{Text: "🗑️ Запросить удаление", Data: models.CallbackData(models.ActionReqDel, post.ID)},
			},
		}

		text := fmt.Sprintf("✅ <b>Пост %d</b>\n%s", post.ID, post.Preview(200))

		if err := s.telegramClient.SendMessageWithKeyboard(ctx, cmd.ChatID, text, keyboard); err != nil {
			return "", &domainerrors.ErrDelivery{ChatID: cmd.ChatID, Cause: err}
		}
	}

	return "", nil
}

func (s *BotService) handlePending(ctx context.Context, cmd *models.Command) (string, error) {
	telegramID := strconv.FormatInt(cmd.UserID, 10)
	if err := s.moderation.requireAdmin(telegramID); err != nil {
		return "⛔ Команда доступна только администратору.", err
	}

	posts, err := s.postRepo.FindByStatus(ctx, models.StatusPending)
	if err != nil {
		return "", err
	}

	metrics.SetPendingPostsCount(float64(len(posts)))

	if len(posts) == 0 {
		return "✅ Очередь модерации пуста.", nil
	}

	for _, post := range posts {
		authorName := post.Author.DisplayName()
		if post.IsAnonymous {
			authorName += " (👻 анонимно)"
		}

		text := fmt.Sprintf("⏳ <b>Пост %d</b>\nОт: %s\n\n%s", post.ID, authorName, post.Content)

		if err := s.telegramClient.SendMessageWithKeyboard(ctx, cmd.ChatID, text, ReviewKeyboard(post.ID)); err != nil {
			return "", &domainerrors.ErrDelivery{ChatID: cmd.ChatID, Cause: err}
		}
	}

	return "", nil
}

func (s *BotService) handleUsers(ctx context.Context, cmd *models.Command) (string, error) {
	telegramID := strconv.FormatInt(cmd.UserID, 10)
	if err := s.moderation.requireAdmin(telegramID); err != nil {
		return "⛔ Команда доступна только администратору.", err
	}

	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return "", err
	}

	if len(users) == 0 {
		return "📭 Пользователей пока нет.", nil
	}

	for _, user := range users {
		keyboard := models.Keyboard{
			{
				{Text: "⚙️ Управление", Data: models.CallbackData(models.ActionManageUser, user.ID)},
			},
		}

		if err := s.telegramClient.SendMessageWithKeyboard(ctx, cmd.ChatID, s.userCard(user), keyboard); err != nil {
			return "", &domainerrors.ErrDelivery{ChatID: cmd.ChatID, Cause: err}
		}
	}

	return "", nil
}

func (s *BotService) userCard(user *models.User) string {
	access := "⏳ ожидает одобрения"
	if user.IsApproved {
		access = "✅ одобрен"
	}

	stars := strings.Repeat("⭐", user.Stars(s.moderation.AdminTelegramID()))

	card := fmt.Sprintf("👤 <b>%s</b> %s\nTelegram id: %s\nРанг: %s\nПубликаций: %d\nДоступ: %s",
		user.DisplayName(), stars, user.TelegramID,
		user.Rank(s.moderation.AdminTelegramID()), user.PostCount, access)

	return card
}

func (s *BotService) handleBroadcast(ctx context.Context, cmd *models.Command) (string, error) {
	telegramID := strconv.FormatInt(cmd.UserID, 10)
	if err := s.moderation.requireAdmin(telegramID); err != nil {
		return "⛔ Команда доступна только администратору.", err
	}

	if cmd.Args == "" {
		return "Использование: /broadcast <текст объявления>", nil
	}

	s.sessions.Set(cmd.ChatID, models.PendingAction{
		Action:  models.AwaitBroadcastConfirm,
		Payload: cmd.Args,
	})

	text := "📢 <b>Предпросмотр рассылки:</b>\n\n" + cmd.Args

	if err := s.telegramClient.SendMessageWithKeyboard(ctx, cmd.ChatID, text, confirmKeyboard()); err != nil {
		return "", &domainerrors.ErrDelivery{ChatID: cmd.ChatID, Cause: err}
	}

	return "", nil
}

func (s *BotService) handleNotify(ctx context.Context, cmd *models.Command) (string, error) {
	telegramID := strconv.FormatInt(cmd.UserID, 10)
	if err := s.moderation.requireAdmin(telegramID); err != nil {
		return "⛔ Команда доступна только администратору.", err
	}

	parts := strings.SplitN(cmd.Args, " ", 2)
	if len(parts) < 2 {
		return "Использование: /notify <telegram id> <текст>", nil
	}

	targetChatID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return "Использование: /notify <telegram id> <текст>", nil
	}

	s.sessions.Set(cmd.ChatID, models.PendingAction{
		Action:       models.AwaitNotifyConfirm,
		TargetChatID: targetChatID,
		Payload:      parts[1],
	})

	text := fmt.Sprintf("💬 <b>Сообщение для %d:</b>\n\n%s", targetChatID, parts[1])

	if err := s.telegramClient.SendMessageWithKeyboard(ctx, cmd.ChatID, text, confirmKeyboard()); err != nil {
		return "", &domainerrors.ErrDelivery{ChatID: cmd.ChatID, Cause: err}
	}

	return "", nil
}

// ProcessMessage обрабатывает свободный текст. Отложенное действие, если оно
// есть, забирается первым и расходуется независимо от исхода; иначе сообщение
// становится новым черновиком.
func (s *BotService) ProcessMessage(ctx context.Context, msg *IncomingMessage) (string, error) {
	messageType := "text"
	if msg.ImageURL != "" {
		messageType = "photo"
	}

	metrics.RecordUserMessage(messageType)

	if pending, ok := s.sessions.Take(msg.ChatID); ok {
		return s.handlePendingText(ctx, msg, pending)
	}

	return s.handleNewDraft(ctx, msg)
}

func (s *BotService) handlePendingText(ctx context.Context, msg *IncomingMessage, pending models.PendingAction) (string, error) {
	telegramID := strconv.FormatInt(msg.UserID, 10)

	switch pending.Action {
	case models.AwaitRemark:
		if _, err := s.moderation.ReturnWithRemark(ctx, telegramID, pending.PostID, msg.Text); err != nil {
			return s.consumedActionError(err)
		}

		return fmt.Sprintf("↩️ Пост %d возвращён автору с замечанием.", pending.PostID), nil

	case models.AwaitAdminEdit:
		post, err := s.moderation.EditContentByAdmin(ctx, telegramID, pending.PostID, msg.Text)
		if err != nil {
			return s.consumedActionError(err)
		}

		if post.Status == models.StatusPending {
			text := fmt.Sprintf("✏️ <b>Пост %d после правки:</b>\n\n%s", post.ID, post.Content)
			if err := s.telegramClient.SendMessageWithKeyboard(ctx, msg.ChatID, text, ReviewKeyboard(post.ID)); err != nil {
				s.logger.Warn("Не удалось показать пост после правки", "error", err, "post_id", post.ID)
			}

			return "", nil
		}

		return fmt.Sprintf("✏️ Текст поста %d обновлён.", post.ID), nil

	case models.AwaitUserEdit:
		post, err := s.moderation.EditContentByOwner(ctx, telegramID, pending.PostID, msg.Text)
		if err != nil {
			return s.consumedActionError(err)
		}

		text := fmt.Sprintf("📝 <b>Черновик %d обновлён:</b>\n\n%s", post.ID, post.Preview(200))
		if err := s.telegramClient.SendMessageWithKeyboard(ctx, msg.ChatID, text, draftKeyboard(post)); err != nil {
			s.logger.Warn("Не удалось показать обновлённый черновик", "error", err, "post_id", post.ID)
		}

		return "", nil

	case models.AwaitDirectMessage:
		s.sessions.Set(msg.ChatID, models.PendingAction{
			Action:       models.AwaitNotifyConfirm,
			TargetChatID: pending.TargetChatID,
			Payload:      msg.Text,
		})

		text := fmt.Sprintf("💬 <b>Сообщение для %d:</b>\n\n%s", pending.TargetChatID, msg.Text)
		if err := s.telegramClient.SendMessageWithKeyboard(ctx, msg.ChatID, text, confirmKeyboard()); err != nil {
			return "", &domainerrors.ErrDelivery{ChatID: msg.ChatID, Cause: err}
		}

		return "", nil

	case models.AwaitBroadcastConfirm, models.AwaitNotifyConfirm:
		// Текст вместо кнопки подтверждения отменяет отправку.
		return "🚫 Отправка отменена.", nil

	default:
		return "", &domainerrors.ErrNoPendingAction{ChatID: msg.ChatID}
	}
}

// consumedActionError переводит ошибку обработки отложенного действия в ответ
// пользователю. Действие уже израсходовано и не восстанавливается.
func (s *BotService) consumedActionError(err error) (string, error) {
	if text, ok := userFacingError(err); ok {
		return text + " Действие сброшено.", nil
	}

	return "", err
}

func (s *BotService) handleNewDraft(ctx context.Context, msg *IncomingMessage) (string, error) {
	user, err := s.requireUser(ctx, msg.UserID)
	if err != nil {
		return startFirstReply(err)
	}

	post, err := s.moderation.CreateDraft(ctx, user, msg.Text, msg.ImageURL)
	if err != nil {
		if text, ok := userFacingError(err); ok {
			return text, nil
		}

		return "", err
	}

	title := fmt.Sprintf("📝 <b>Черновик %d создан.</b>", post.ID)
	if post.IsAnonymous {
		title = fmt.Sprintf("👻 <b>Анонимный черновик %d создан.</b>", post.ID)
	}

	text := title + "\n\n" + post.Preview(200)

	if err := s.telegramClient.SendMessageWithKeyboard(ctx, msg.ChatID, text, draftKeyboard(post)); err != nil {
		return "", &domainerrors.ErrDelivery{ChatID: msg.ChatID, Cause: err}
	}

	return "", nil
}

// ProcessCallback обрабатывает нажатие кнопки. Telegram всегда получает ответ
// на callback, даже когда само действие завершилось ошибкой.
func (s *BotService) ProcessCallback(ctx context.Context, cb *IncomingCallback) error {
	callback, err := models.ParseCallback(cb.Data)
	if err != nil {
		metrics.RecordCallback("unknown", "error")
		s.logger.Warn("Неизвестный callback", "data", cb.Data, "chat_id", cb.ChatID)

		return s.telegramClient.AnswerCallback(ctx, cb.CallbackID, "⚠️ Неизвестное действие", true)
	}

	answer, err := s.dispatchCallback(ctx, cb, callback)
	if err != nil {
		metrics.RecordCallback(string(callback.Action), "error")

		if text, ok := userFacingError(err); ok {
			return s.telegramClient.AnswerCallback(ctx, cb.CallbackID, text, true)
		}

		s.logger.Error("Ошибка обработки callback",
			"error", err,
			"action", string(callback.Action),
			"chat_id", cb.ChatID,
		)

		return s.telegramClient.AnswerCallback(ctx, cb.CallbackID, "⚠️ Ошибка, попробуйте позже", true)
	}

	metrics.RecordCallback(string(callback.Action), "success")

	return s.telegramClient.AnswerCallback(ctx, cb.CallbackID, answer, false)
}

//nolint:cyclop // Диспетчер действий - плоский switch по закрытому множеству.
func (s *BotService) dispatchCallback(ctx context.Context, cb *IncomingCallback, callback *models.Callback) (string, error) {
	telegramID := strconv.FormatInt(cb.UserID, 10)

	switch callback.Action {
	case models.ActionDiscard:
		if err := s.moderation.Discard(ctx, telegramID, callback.TargetID); err != nil {
			return "", err
		}

		s.editMessage(ctx, cb, fmt.Sprintf("🗑️ Пост %d удалён.", callback.TargetID))

		return "Удалено", nil

	case models.ActionWithdraw:
		if err := s.moderation.Withdraw(ctx, telegramID, callback.TargetID); err != nil {
			return "", err
		}

		s.editMessage(ctx, cb, fmt.Sprintf("↩️ Пост %d отозван с модерации.", callback.TargetID))

		return "Отозвано", nil

	case models.ActionSend:
		post, err := s.moderation.Submit(ctx, telegramID, callback.TargetID)
		if err != nil {
			return "", err
		}

		s.editMessage(ctx, cb, fmt.Sprintf("🚀 Пост %d отправлен администратору.", post.ID))

		return "Отправлено", nil

	case models.ActionEditUser:
		return s.promptUserEdit(ctx, cb, telegramID, callback.TargetID)

	case models.ActionApprove:
		post, err := s.moderation.Approve(ctx, telegramID, callback.TargetID)
		if err != nil {
			return "", err
		}

		s.editMessage(ctx, cb, fmt.Sprintf("✅ Пост %d опубликован.", post.ID))

		return "Опубликовано", nil

	case models.ActionReject:
		post, err := s.moderation.Reject(ctx, telegramID, callback.TargetID)
		if err != nil {
			return "", err
		}

		s.editMessage(ctx, cb, fmt.Sprintf("❌ Пост %d отклонён.", post.ID))

		return "Отклонено", nil

	case models.ActionRemark:
		return s.promptAdminInput(ctx, cb, telegramID, callback.TargetID, models.AwaitRemark,
			"💬 Отправьте замечание для поста %d.")

	case models.ActionAdminEdit:
		return s.promptAdminInput(ctx, cb, telegramID, callback.TargetID, models.AwaitAdminEdit,
			"✏️ Отправьте исправленный текст поста %d.")

	case models.ActionUserApprove:
		return s.setUserAccess(ctx, telegramID, cb, callback.TargetID, true)

	case models.ActionUserBlock:
		return s.setUserAccess(ctx, telegramID, cb, callback.TargetID, false)

	case models.ActionViewUser:
		return s.viewUser(ctx, cb, telegramID, callback.TargetID)

	case models.ActionMsgUser:
		return s.promptDirectMessage(ctx, cb, telegramID, callback.TargetID)

	case models.ActionManageUser:
		return s.manageUser(ctx, cb, telegramID, callback.TargetID)

	case models.ActionViewPost:
		return s.viewPost(ctx, cb, telegramID, callback.TargetID)

	case models.ActionReqDel:
		if err := s.moderation.RequestDeletion(ctx, telegramID, callback.TargetID); err != nil {
			return "", err
		}

		s.editMessage(ctx, cb, fmt.Sprintf("📨 Запрос на удаление поста %d отправлен администратору.", callback.TargetID))

		return "Запрос отправлен", nil

	case models.ActionAdminDel:
		if err := s.moderation.AdminDelete(ctx, telegramID, callback.TargetID); err != nil {
			return "", err
		}

		s.editMessage(ctx, cb, fmt.Sprintf("🗑️ Пост %d удалён.", callback.TargetID))

		return "Удалено", nil

	case models.ActionConfirmDel:
		if err := s.moderation.ConfirmDeletion(ctx, telegramID, callback.TargetID); err != nil {
			return "", err
		}

		s.editMessage(ctx, cb, fmt.Sprintf("🗑️ Пост %d удалён.", callback.TargetID))

		return "Удалено", nil

	case models.ActionKeep:
		if err := s.moderation.DenyDeletion(ctx, telegramID, callback.TargetID); err != nil {
			return "", err
		}

		s.editMessage(ctx, cb, fmt.Sprintf("✋ Пост %d оставлен.", callback.TargetID))

		return "Оставлено", nil

	case models.ActionConfirm:
		return s.confirmStaged(ctx, cb, telegramID)

	case models.ActionCancel:
		s.sessions.Cancel(cb.ChatID)
		s.editMessage(ctx, cb, "🚫 Действие отменено.")

		return "Отменено", nil

	default:
		return "", &domainerrors.ErrUnknownCallback{Data: cb.Data}
	}
}

func (s *BotService) promptUserEdit(ctx context.Context, cb *IncomingCallback, telegramID string, postID int64) (string, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return "", err
	}

	if err := s.moderation.requireOwner(post, telegramID); err != nil {
		return "", err
	}

	s.sessions.Set(cb.ChatID, models.PendingAction{Action: models.AwaitUserEdit, PostID: post.ID})

	if err := s.telegramClient.SendMessage(ctx, cb.ChatID,
		fmt.Sprintf("✏️ Отправьте новый текст для поста %d.", post.ID)); err != nil {
		return "", &domainerrors.ErrDelivery{ChatID: cb.ChatID, Cause: err}
	}

	return "", nil
}

func (s *BotService) promptAdminInput(ctx context.Context, cb *IncomingCallback, telegramID string,
	postID int64, action models.SessionAction, prompt string) (string, error) {
	if err := s.moderation.requireAdmin(telegramID); err != nil {
		return "", err
	}

	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		return "", err
	}

	s.sessions.Set(cb.ChatID, models.PendingAction{Action: action, PostID: postID})

	if err := s.telegramClient.SendMessage(ctx, cb.ChatID, fmt.Sprintf(prompt, postID)); err != nil {
		return "", &domainerrors.ErrDelivery{ChatID: cb.ChatID, Cause: err}
	}

	return "", nil
}

func (s *BotService) setUserAccess(ctx context.Context, telegramID string, cb *IncomingCallback,
	userID int64, approved bool) (string, error) {
	if err := s.moderation.requireAdmin(telegramID); err != nil {
		return "", err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}

	user.IsApproved = approved

	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", err
	}

	notice := "⛔ Доступ к публикациям закрыт."
	result := fmt.Sprintf("⛔ Доступ закрыт: %s", user.DisplayName())

	if approved {
		notice = "🎉 Доступ к публикациям открыт! Просто отправьте текст боту."
		result = fmt.Sprintf("✅ Доступ открыт: %s", user.DisplayName())
	}

	if chatID, err := strconv.ParseInt(user.TelegramID, 10, 64); err == nil {
		if err := s.telegramClient.SendMessage(ctx, chatID, notice); err != nil {
			metrics.RecordDeliveryFailure()
			s.logger.Warn("Не удалось уведомить пользователя о смене доступа",
				"error", err,
				"telegram_id", user.TelegramID,
			)
		}
	}

	s.editMessage(ctx, cb, result)

	return "Готово", nil
}

func (s *BotService) viewUser(ctx context.Context, cb *IncomingCallback, telegramID string, userID int64) (string, error) {
	if err := s.moderation.requireAdmin(telegramID); err != nil {
		return "", err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}

	card := s.userCard(user)
	if user.AvatarURL != "" {
		card += "\nАватар: " + user.AvatarURL
	}

	if err := s.telegramClient.SendMessage(ctx, cb.ChatID, card); err != nil {
		return "", &domainerrors.ErrDelivery{ChatID: cb.ChatID, Cause: err}
	}

	return "", nil
}

func (s *BotService) promptDirectMessage(ctx context.Context, cb *IncomingCallback, telegramID string, userID int64) (string, error) {
	if err := s.moderation.requireAdmin(telegramID); err != nil {
		return "", err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}

	targetChatID, err := strconv.ParseInt(user.TelegramID, 10, 64)
	if err != nil {
		return "", &domainerrors.ErrInvalidArgument{Message: "telegram id: " + user.TelegramID}
	}

	s.sessions.Set(cb.ChatID, models.PendingAction{
		Action:       models.AwaitDirectMessage,
		TargetChatID: targetChatID,
	})

	if err := s.telegramClient.SendMessage(ctx, cb.ChatID,
		fmt.Sprintf("💬 Отправьте текст сообщения для %s.", user.DisplayName())); err != nil {
		return "", &domainerrors.ErrDelivery{ChatID: cb.ChatID, Cause: err}
	}

	return "", nil
}

func (s *BotService) manageUser(ctx context.Context, cb *IncomingCallback, telegramID string, userID int64) (string, error) {
	if err := s.moderation.requireAdmin(telegramID); err != nil {
		return "", err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}

	keyboard := models.Keyboard{
		{
			{Text: "✅ Открыть доступ", Data: models.CallbackData(models.ActionUserApprove, user.ID)},
			{Text: "⛔ Блокировать", Data: models.CallbackData(models.ActionUserBlock, user.ID)},
		},
		{
			{Text: "👁 Профиль", Data: models.CallbackData(models.ActionViewUser, user.ID)},
			{Text: "💬 Написать", Data: models.CallbackData(models.ActionMsgUser, user.ID)},
		},
	}

	if err := s.telegramClient.SendMessageWithKeyboard(ctx, cb.ChatID, s.userCard(user), keyboard); err != nil {
		return "", &domainerrors.ErrDelivery{ChatID: cb.ChatID, Cause: err}
	}

	return "", nil
}

func (s *BotService) viewPost(ctx context.Context, cb *IncomingCallback, telegramID string, postID int64) (string, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return "", err
	}

	if !s.moderation.IsAdmin(telegramID) {
		if err := s.moderation.requireOwner(post, telegramID); err != nil {
			return "", err
		}
	}

	text := fmt.Sprintf("%s <b>Пост %d</b>\n\n%s", statusLabel(post.Status), post.ID, post.Content)
	if post.AdminRemark != "" {
		text += "\n\n👮 <b>Замечание:</b> " + post.AdminRemark
	}

	if err := s.telegramClient.SendMessage(ctx, cb.ChatID, text); err != nil {
		return "", &domainerrors.ErrDelivery{ChatID: cb.ChatID, Cause: err}
	}

	return "", nil
}

func (s *BotService) confirmStaged(ctx context.Context, cb *IncomingCallback, telegramID string) (string, error) {
	if err := s.moderation.requireAdmin(telegramID); err != nil {
		return "", err
	}

	pending, ok := s.sessions.Take(cb.ChatID)
	if !ok {
		return "", &domainerrors.ErrNoPendingAction{ChatID: cb.ChatID}
	}

	switch pending.Action {
	case models.AwaitBroadcastConfirm:
		delivered, total := s.runBroadcast(ctx, pending.Payload)
		s.editMessage(ctx, cb, fmt.Sprintf("📢 Рассылка завершена: доставлено %d из %d.", delivered, total))

		return "Разослано", nil

	case models.AwaitNotifyConfirm:
		if err := s.telegramClient.SendMessage(ctx, pending.TargetChatID, pending.Payload); err != nil {
			metrics.RecordDeliveryFailure()

			return "", &domainerrors.ErrDelivery{ChatID: pending.TargetChatID, Cause: err}
		}

		s.editMessage(ctx, cb, "📨 Сообщение отправлено.")

		return "Отправлено", nil

	default:
		return "", &domainerrors.ErrNoPendingAction{ChatID: cb.ChatID}
	}
}

// runBroadcast рассылает объявление всем одобренным пользователям,
// ошибки доставки копятся и не прерывают рассылку.
func (s *BotService) runBroadcast(ctx context.Context, text string) (delivered, total int) {
	users, err := s.userRepo.FindApproved(ctx)
	if err != nil {
		s.logger.Error("Не удалось получить получателей рассылки", "error", err)

		return 0, 0
	}

	message := "📢 <b>Объявление</b>\n\n" + text

	var errs error

	for _, user := range users {
		chatID, err := strconv.ParseInt(user.TelegramID, 10, 64)
		if err != nil {
			continue
		}

		total++

		if err := s.telegramClient.SendMessage(ctx, chatID, message); err != nil {
			metrics.RecordDeliveryFailure()
			errs = multierr.Append(errs, &domainerrors.ErrDelivery{ChatID: chatID, Cause: err})

			continue
		}

		delivered++
	}

	if errs != nil {
		s.logger.Warn("Рассылка завершена с ошибками доставки",
			"error", errs,
			"delivered", delivered,
			"total", total,
		)
	}

	return delivered, total
}

func (s *BotService) requireUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.userRepo.FindByTelegramID(ctx, strconv.FormatInt(userID, 10))
}

func startFirstReply(err error) (string, error) {
	if errors.Is(err, &domainerrors.ErrUserNotFound{}) {
		return "👋 Сначала выполните /start.", nil
	}

	return "", err
}

// editMessage обновляет исходное сообщение с кнопками лучшим усилием.
func (s *BotService) editMessage(ctx context.Context, cb *IncomingCallback, text string) {
	if err := s.telegramClient.EditMessageText(ctx, cb.ChatID, cb.MessageID, text); err != nil {
		s.logger.Warn("Не удалось обновить сообщение",
			"error", err,
			"chat_id", cb.ChatID,
			"message_id", cb.MessageID,
		)
	}
}

// userFacingError переводит доменную ошибку в ответ пользователю.
// Неизвестные ошибки остаются внутренними.
func userFacingError(err error) (string, bool) {
	var tooLong *domainerrors.ErrContentTooLong
	if errors.As(err, &tooLong) {
		return fmt.Sprintf("📏 Слишком длинный текст: %d из %d символов.", tooLong.Length, tooLong.Limit), true
	}

	switch {
	case errors.Is(err, &domainerrors.ErrPostNotFound{}):
		return "❌ Пост не найден.", true
	case errors.Is(err, &domainerrors.ErrUserNotFound{}):
		return "❌ Пользователь не найден.", true
	case errors.Is(err, &domainerrors.ErrNotApproved{}):
		return "⏳ Публикации вам пока недоступны, дождитесь одобрения администратора.", true
	case errors.Is(err, &domainerrors.ErrEmptyPost{}):
		return "✍️ Отправьте текст или изображение.", true
	case errors.Is(err, &domainerrors.ErrNotAdmin{}), errors.Is(err, &domainerrors.ErrNotOwner{}):
		return "⛔ Недостаточно прав.", true
	case errors.Is(err, &domainerrors.ErrInvalidTransition{}):
		return "⚠️ Действие недоступно для текущего статуса поста.", true
	case errors.Is(err, &domainerrors.ErrNoPendingAction{}):
		return "🤔 Нет ожидающего действия.", true
	default:
		return "", false
	}
}

func statusLabel(status models.PostStatus) string {
	switch status {
	case models.StatusDraft:
		return "📝"
	case models.StatusPending:
		return "⏳"
	case models.StatusRejected:
		return "❌"
	case models.StatusPublished:
		return "✅"
	default:
		return "•"
	}
}

func draftKeyboard(post *models.Post) models.Keyboard {
	switch post.Status {
	case models.StatusPending:
		return models.Keyboard{
			{
				{Text: "↩️ Отозвать", Data: models.CallbackData(models.ActionWithdraw, post.ID)},
			},
		}
	case models.StatusRejected:
		return models.Keyboard{
			{
				{Text: "✏️ Исправить", Data: models.CallbackData(models.ActionEditUser, post.ID)},
				{Text: "🗑️ Удалить", Data: models.CallbackData(models.ActionDiscard, post.ID)},
			},
		}
	default:
		return models.Keyboard{
			{
				{Text: "🚀 Отправить администратору", Data: models.CallbackData(models.ActionSend, post.ID)},
			},
			{
				{Text: "✏️ Редактировать", Data: models.CallbackData(models.ActionEditUser, post.ID)},
				{Text: "🗑️ Удалить", Data: models.CallbackData(models.ActionDiscard, post.ID)},
			},
		}
	}
}

func confirmKeyboard() models.Keyboard {
	return models.Keyboard{
		{
			{Text: "✅ Отправить", Data: models.CallbackData(models.ActionConfirm, 0)},
			{Text: "❌ Отмена", Data: models.CallbackData(models.ActionCancel, 0)},
		},
	}
}
