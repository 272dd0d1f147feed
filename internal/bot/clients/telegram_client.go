package clients

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/central-university-dev/go-wallpost/internal/bot/domain"
	"github.com/central-university-dev/go-wallpost/internal/domain/models"
)

type TelegramClient struct {
	bot    *tgbotapi.BotAPI
	logger *slog.Logger
}

func NewTelegramClient(token string, logger *slog.Logger) *TelegramClient {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Ошибка при создании Telegram клиента", "error", err)
	}

	return &TelegramClient{
		bot:    bot,
		logger: logger,
	}
}

// SetBaseURL устанавливает базовый URL для API Telegram (используется в тестах).
func (c *TelegramClient) SetBaseURL(url string) {
	if c.bot != nil {
		c.bot.SetAPIEndpoint(url)
	}
}

func (c *TelegramClient) SendMessage(_ context.Context, chatID int64, text string) error {
	if c.bot == nil {
		return fmt.Errorf("telegram клиент не инициализирован")
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	_, err := c.bot.Send(msg)
	if err != nil {
		return fmt.Errorf("ошибка при отправке сообщения: %w", err)
	}

	return nil
}

func (c *TelegramClient) SendMessageWithKeyboard(_ context.Context, chatID int64, text string, keyboard models.Keyboard) error {
	if c.bot == nil {
		return fmt.Errorf("telegram клиент не инициализирован")
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = toInlineKeyboard(keyboard)

	_, err := c.bot.Send(msg)
	if err != nil {
		return fmt.Errorf("ошибка при отправке сообщения с клавиатурой: %w", err)
	}

	return nil
}

func (c *TelegramClient) EditMessageText(_ context.Context, chatID int64, messageID int, text string) error {
	if c.bot == nil {
		return fmt.Errorf("telegram клиент не инициализирован")
	}

	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML

	_, err := c.bot.Send(edit)
	if err != nil {
		return fmt.Errorf("ошибка при редактировании сообщения: %w", err)
	}

	return nil
}

func (c *TelegramClient) EditMessageTextWithKeyboard(_ context.Context, chatID int64, messageID int, text string, keyboard models.Keyboard) error {
	if c.bot == nil {
		return fmt.Errorf("telegram клиент не инициализирован")
	}

	markup := toInlineKeyboard(keyboard)
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
	edit.ParseMode = tgbotapi.ModeHTML

	_, err := c.bot.Send(edit)
	if err != nil {
		return fmt.Errorf("ошибка при редактировании сообщения с клавиатурой: %w", err)
	}

	return nil
}

func (c *TelegramClient) AnswerCallback(_ context.Context, callbackID, text string, showAlert bool) error {
	if c.bot == nil {
		return fmt.Errorf("telegram клиент не инициализирован")
	}

	callback := tgbotapi.NewCallback(callbackID, text)
	callback.ShowAlert = showAlert

	_, err := c.bot.Request(callback)
	if err != nil {
		return fmt.Errorf("ошибка при ответе на callback: %w", err)
	}

	return nil
}

func (c *TelegramClient) SetMyCommands(_ context.Context, commands []domain.BotCommand) error {
	if c.bot == nil {
		return fmt.Errorf("telegram клиент не инициализирован")
	}

	botAPICommands := make([]tgbotapi.BotCommand, 0, len(commands))
	for _, cmd := range commands {
		botAPICommands = append(botAPICommands, tgbotapi.BotCommand{
			Command:     cmd.Command,
			Description: cmd.Description,
		})
	}

	setCommandsConfig := tgbotapi.NewSetMyCommands(botAPICommands...)

	_, err := c.bot.Request(setCommandsConfig)
	if err != nil {
		return fmt.Errorf("ошибка при установке команд бота: %w", err)
	}

	return nil
}

// GetUserProfilePhotoURL возвращает прямую ссылку на последний аватар
// пользователя или пустую строку, если аватара нет.
func (c *TelegramClient) GetUserProfilePhotoURL(_ context.Context, userID int64) (string, error) {
	if c.bot == nil {
		return "", fmt.Errorf("telegram клиент не инициализирован")
	}

	photos, err := c.bot.GetUserProfilePhotos(tgbotapi.NewUserProfilePhotos(userID))
	if err != nil {
		return "", fmt.Errorf("ошибка при получении фотографий профиля: %w", err)
	}

	if photos.TotalCount == 0 || len(photos.Photos) == 0 || len(photos.Photos[0]) == 0 {
		return "", nil
	}

	// Последний размер - самый крупный.
	sizes := photos.Photos[0]
	fileID := sizes[len(sizes)-1].FileID

	fileURL, err := c.bot.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("ошибка при получении ссылки на файл: %w", err)
	}

	return fileURL, nil
}

func (c *TelegramClient) GetBot() *tgbotapi.BotAPI {
	return c.bot
}

func toInlineKeyboard(keyboard models.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(keyboard))

	for _, row := range keyboard {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, button := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.Data))
		}

		rows = append(rows, buttons)
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
