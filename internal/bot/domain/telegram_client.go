package domain

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/central-university-dev/go-wallpost/internal/domain/models"
)

type BotCommand struct {
	Command     string
	Description string
}

type TelegramClientAPI interface {
	SendMessage(ctx context.Context, chatID int64, text string) error

	SendMessageWithKeyboard(ctx context.Context, chatID int64, text string, keyboard models.Keyboard) error

	EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error

	EditMessageTextWithKeyboard(ctx context.Context, chatID int64, messageID int, text string, keyboard models.Keyboard) error

	AnswerCallback(ctx context.Context, callbackID, text string, showAlert bool) error

	SetMyCommands(ctx context.Context, commands []BotCommand) error

	GetUserProfilePhotoURL(ctx context.Context, userID int64) (string, error)

	GetBot() *tgbotapi.BotAPI
}
