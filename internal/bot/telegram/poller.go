package telegram

import (
	"context"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/central-university-dev/go-wallpost/internal/bot/domain"
	"github.com/central-university-dev/go-wallpost/internal/bot/service"
	"github.com/central-university-dev/go-wallpost/internal/common/middleware"
	"github.com/central-university-dev/go-wallpost/internal/domain/models"
)

type BotService interface {
	ProcessCommand(ctx context.Context, command *models.Command) (string, error)

	ProcessMessage(ctx context.Context, msg *service.IncomingMessage) (string, error)

	ProcessCallback(ctx context.Context, cb *service.IncomingCallback) error
}

type Poller struct {
	telegramClient domain.TelegramClientAPI
	botService     BotService
	rateLimiter    *middleware.ChatRateLimiter
	logger         *slog.Logger
	updatesChan    tgbotapi.UpdatesChannel
	stopChan       chan struct{}
}

func NewPoller(
	telegramClient domain.TelegramClientAPI,
	botService BotService,
	rateLimiter *middleware.ChatRateLimiter,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		telegramClient: telegramClient,
		botService:     botService,
		rateLimiter:    rateLimiter,
		logger:         logger,
		stopChan:       make(chan struct{}),
	}
}

func (p *Poller) Start() {
	p.logger.Info("Запуск Telegram поллера")

	bot := p.telegramClient.GetBot()
	if bot == nil {
		p.logger.Error("Не удалось получить доступ к API бота")
		return
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	p.updatesChan = bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-p.stopChan:
				p.logger.Info("Получен сигнал остановки поллера")
				return
			case update := <-p.updatesChan:
				go p.processUpdate(&update)
			}
		}
	}()
}

func (p *Poller) Stop() {
	p.logger.Info("Остановка Telegram поллера")
	close(p.stopChan)
}

func (p *Poller) processUpdate(update *tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Паника при обработке обновления",
				"panic", r,
				"update_id", update.UpdateID,
			)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		p.processCallback(update.CallbackQuery)
	case update.Message != nil:
		p.processMessage(update.Message)
	}
}

func (p *Poller) processMessage(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	if !p.rateLimiter.Allow(chatID) {
		p.logger.Warn("Превышен лимит сообщений", "chat_id", chatID)
		return
	}

	userID := message.From.ID
	text := messageText(message)

	p.logger.Info("Получено сообщение",
		"chat_id", chatID,
		"user_id", userID,
		"is_command", message.IsCommand(),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var response string

	var err error

	if message.IsCommand() {
		command := &models.Command{
			Type:      getCommandType("/" + message.Command()),
			ChatID:    chatID,
			UserID:    userID,
			Text:      text,
			Args:      message.CommandArguments(),
			Username:  message.From.UserName,
			FirstName: message.From.FirstName,
		}

		response, err = p.botService.ProcessCommand(ctx, command)
	} else {
		msg := &service.IncomingMessage{
			ChatID:    chatID,
			UserID:    userID,
			Text:      text,
			ImageURL:  p.photoURL(message),
			Username:  message.From.UserName,
			FirstName: message.From.FirstName,
		}

		response, err = p.botService.ProcessMessage(ctx, msg)
	}

	if err != nil {
		p.logger.Error("Ошибка при обработке сообщения",
			"error", err,
			"chat_id", chatID,
		)

		if response == "" {
			response = "Произошла ошибка при обработке вашего сообщения. Пожалуйста, попробуйте позже."
		}
	}

	if response != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := p.telegramClient.SendMessage(ctx, chatID, response); err != nil {
			p.logger.Error("Ошибка при отправке ответа",
				"error", err,
				"chat_id", chatID,
			)
		}
	}
}

func (p *Poller) processCallback(query *tgbotapi.CallbackQuery) {
	if query.Message == nil {
		return
	}

	chatID := query.Message.Chat.ID

	p.logger.Info("Получен callback",
		"chat_id", chatID,
		"user_id", query.From.ID,
		"data", query.Data,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cb := &service.IncomingCallback{
		CallbackID: query.ID,
		ChatID:     chatID,
		UserID:     query.From.ID,
		MessageID:  query.Message.MessageID,
		Data:       query.Data,
	}

	if err := p.botService.ProcessCallback(ctx, cb); err != nil {
		p.logger.Error("Ошибка при обработке callback",
			"error", err,
			"chat_id", chatID,
			"data", query.Data,
		)
	}
}

func messageText(message *tgbotapi.Message) string {
	if message.Text != "" {
		return message.Text
	}

	return message.Caption
}

// photoURL возвращает прямую ссылку на самый крупный вариант фотографии.
func (p *Poller) photoURL(message *tgbotapi.Message) string {
	if len(message.Photo) == 0 {
		return ""
	}

	bot := p.telegramClient.GetBot()
	if bot == nil {
		return ""
	}

	fileID := message.Photo[len(message.Photo)-1].FileID

	fileURL, err := bot.GetFileDirectURL(fileID)
	if err != nil {
		p.logger.Warn("Не удалось получить ссылку на фотографию",
			"error", err,
			"file_id", fileID,
		)

		return ""
	}

	return fileURL
}

func getCommandType(commandName string) models.CommandType {
	switch commandName {
	case "/start":
		return models.CommandStart
	case "/help":
		return models.CommandHelp
	case "/rules":
		return models.CommandRules
	case "/anon":
		return models.CommandAnon
	case "/drafts":
		return models.CommandDrafts
	case "/myposts":
		return models.CommandMyPosts
	case "/pending":
		return models.CommandPending
	case "/users":
		return models.CommandUsers
	case "/broadcast":
		return models.CommandBroadcast
	case "/notify":
		return models.CommandNotify
	default:
		return models.CommandUnknown
	}
}
