package service_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	botmocks "github.com/central-university-dev/go-wallpost/internal/bot/domain/mocks"
	"github.com/central-university-dev/go-wallpost/internal/bot/service"
	"github.com/central-university-dev/go-wallpost/internal/bot/session"
	domainerrors "github.com/central-university-dev/go-wallpost/internal/domain/errors"
	"github.com/central-university-dev/go-wallpost/internal/domain/models"
	"github.com/central-university-dev/go-wallpost/internal/domain/repositories/mocks"
	"github.com/central-university-dev/go-wallpost/pkg"
)

type botFixture struct {
	postRepo *mocks.PostRepository
	userRepo *mocks.UserRepository
	client   *botmocks.TelegramClientAPI
	sessions *session.Store
	svc      *service.BotService
}

func newBotFixture() *botFixture {
	postRepo := new(mocks.PostRepository)
	userRepo := new(mocks.UserRepository)
	client := new(botmocks.TelegramClientAPI)
	sessions := session.NewStore()
	logger := pkg.NewLogger(io.Discard)

	moderation := service.NewModerationService(
		postRepo,
		userRepo,
		client,
		&recordingProducer{},
		&fakeTxManager{},
		testAdminChatID,
		testMaxPostLength,
		logger,
	)

	svc := service.NewBotService(userRepo, postRepo, moderation, sessions, client, nil, logger)

	return &botFixture{
		postRepo: postRepo,
		userRepo: userRepo,
		client:   client,
		sessions: sessions,
		svc:      svc,
	}
}

func TestProcessCommand_Unknown(t *testing.T) {
	f := newBotFixture()

	reply, err := f.svc.ProcessCommand(context.Background(), &models.Command{
		Type:   models.CommandUnknown,
		ChatID: 7,
		UserID: 7,
	})

	assert.ErrorIs(t, err, &domainerrors.ErrUnknownCommand{})
	assert.Contains(t, reply, "/help")
}

func TestProcessCommand_RulesMentionLimitAndTags(t *testing.T) {
	f := newBotFixture()

	reply, err := f.svc.ProcessCommand(context.Background(), &models.Command{
		Type:   models.CommandRules,
		ChatID: 7,
		UserID: 7,
	})

	require.NoError(t, err)
	assert.Contains(t, reply, "3000")
	assert.Contains(t, reply, models.TagPinned)
	assert.Contains(t, reply, models.TagAnnounce)
}

func TestStart_NewUserWaitsForApproval(t *testing.T) {
	f := newBotFixture()

	user := &models.User{ID: 7, TelegramID: "7", FirstName: "Вася"}

	f.userRepo.On("GetOrCreate", mock.Anything, "7", "vasya", "Вася").Return(user, nil)
	f.client.On("SendMessageWithKeyboard", mock.Anything, testAdminChatID, mock.AnythingOfType("string"), mock.Anything).
		Return(nil)

	reply, err := f.svc.ProcessCommand(context.Background(), &models.Command{
		Type:      models.CommandStart,
		ChatID:    7,
		UserID:    7,
		Username:  "vasya",
		FirstName: "Вася",
	})

	require.NoError(t, err)
	assert.Contains(t, reply, "Вася")
	assert.Contains(t, reply, "Доступ к публикациям")
	f.client.AssertCalled(t, "SendMessageWithKeyboard", mock.Anything, testAdminChatID, mock.AnythingOfType("string"), mock.Anything)
}

func TestStart_AdminIsAutoApproved(t *testing.T) {
	f := newBotFixture()

	admin := &models.User{ID: 1, TelegramID: testAdminID, FirstName: "Админ"}

	f.userRepo.On("GetOrCreate", mock.Anything, testAdminID, "", "Админ").Return(admin, nil)
	f.userRepo.On("Update", mock.Anything, admin).Return(nil)

	reply, err := f.svc.ProcessCommand(context.Background(), &models.Command{
		Type:      models.CommandStart,
		ChatID:    testAdminChatID,
		UserID:    testAdminChatID,
		FirstName: "Админ",
	})

	require.NoError(t, err)
	assert.True(t, admin.IsApproved)
	assert.Contains(t, reply, "/pending")
	f.client.AssertNotCalled(t, "SendMessageWithKeyboard", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnon_TogglesMode(t *testing.T) {
	f := newBotFixture()

	user := approvedUser()

	f.userRepo.On("FindByTelegramID", mock.Anything, "7").Return(user, nil)
	f.userRepo.On("Update", mock.Anything, user).Return(nil)

	reply, err := f.svc.ProcessCommand(context.Background(), &models.Command{
		Type:   models.CommandAnon,
		ChatID: 7,
		UserID: 7,
	})

	require.NoError(t, err)
	assert.True(t, user.IsAnonymousMode)
	assert.Contains(t, reply, "включён")

	reply, err = f.svc.ProcessCommand(context.Background(), &models.Command{
		Type:   models.CommandAnon,
		ChatID: 7,
		UserID: 7,
	})

	require.NoError(t, err)
	assert.False(t, user.IsAnonymousMode)
	assert.Contains(t, reply, "выключен")
}

func TestBroadcast_RequiresAdmin(t *testing.T) {
	f := newBotFixture()

	reply, err := f.svc.ProcessCommand(context.Background(), &models.Command{
		Type:   models.CommandBroadcast,
		ChatID: 7,
		UserID: 7,
		Args:   "всем привет",
	})

	assert.ErrorIs(t, err, &domainerrors.ErrNotAdmin{})
	assert.Contains(t, reply, "администратору")
}

func TestProcessMessage_BeforeStart(t *testing.T) {
	f := newBotFixture()

	f.userRepo.On("FindByTelegramID", mock.Anything, "7").
		Return(nil, &domainerrors.ErrUserNotFound{TelegramID: "7"})

	reply, err := f.svc.ProcessMessage(context.Background(), &service.IncomingMessage{
		ChatID: 7,
		UserID: 7,
		Text:   "первый пост",
	})

	require.NoError(t, err)
	assert.Contains(t, reply, "/start")
}

func TestProcessMessage_CreatesDraftWithButtons(t *testing.T) {
	f := newBotFixture()

	user := approvedUser()
	f.userRepo.On("FindByTelegramID", mock.Anything, "7").Return(user, nil)
	f.userRepo.On("FindByID", mock.Anything, int64(7)).Return(user, nil)
	f.postRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Post")).Return(nil)
	f.client.On("SendMessageWithKeyboard", mock.Anything, int64(7), mock.AnythingOfType("string"), mock.Anything).
		Return(nil)

	reply, err := f.svc.ProcessMessage(context.Background(), &service.IncomingMessage{
		ChatID: 7,
		UserID: 7,
		Text:   "мой пост",
	})

	require.NoError(t, err)
	assert.Empty(t, reply)
	f.client.AssertCalled(t, "SendMessageWithKeyboard", mock.Anything, int64(7), mock.AnythingOfType("string"), mock.Anything)
}

func TestProcessMessage_PendingActionConsumedOnFailure(t *testing.T) {
	f := newBotFixture()

	f.sessions.Set(testAdminChatID, models.PendingAction{Action: models.AwaitRemark, PostID: 5})
	f.postRepo.On("FindByID", mock.Anything, int64(5)).
		Return(nil, &domainerrors.ErrPostNotFound{PostID: 5})

	reply, err := f.svc.ProcessMessage(context.Background(), &service.IncomingMessage{
		ChatID: testAdminChatID,
		UserID: testAdminChatID,
		Text:   "замечание",
	})

	require.NoError(t, err)
	assert.Contains(t, reply, "Действие сброшено")

	_, ok := f.sessions.Take(testAdminChatID)
	assert.False(t, ok, "действие должно расходоваться даже при ошибке")
}

func TestProcessMessage_RemarkFlow(t *testing.T) {
	f := newBotFixture()

	post := &models.Post{ID: 5, AuthorID: 7, Author: approvedUser(), Status: models.StatusPending}

	f.sessions.Set(testAdminChatID, models.PendingAction{Action: models.AwaitRemark, PostID: 5})
	f.postRepo.On("FindByID", mock.Anything, int64(5)).Return(post, nil)
	f.postRepo.On("Update", mock.Anything, post).Return(nil)
	f.client.On("SendMessage", mock.Anything, int64(7), mock.AnythingOfType("string")).Return(nil)

	reply, err := f.svc.ProcessMessage(context.Background(), &service.IncomingMessage{
		ChatID: testAdminChatID,
		UserID: testAdminChatID,
		Text:   "добавьте источник",
	})

	require.NoError(t, err)
	assert.Contains(t, reply, "возвращён")
	assert.Equal(t, models.StatusDraft, post.Status)
	assert.Equal(t, "добавьте источник", post.AdminRemark)
}

func TestProcessMessage_TextCancelsStagedBroadcast(t *testing.T) {
	f := newBotFixture()

	f.sessions.Set(testAdminChatID, models.PendingAction{
		Action:  models.AwaitBroadcastConfirm,
		Payload: "объявление",
	})

	reply, err := f.svc.ProcessMessage(context.Background(), &service.IncomingMessage{
		ChatID: testAdminChatID,
		UserID: testAdminChatID,
		Text:   "передумал",
	})

	require.NoError(t, err)
	assert.Contains(t, reply, "отменена")
	f.userRepo.AssertNotCalled(t, "FindApproved", mock.Anything)
}

func TestProcessCallback_UnknownActionAnswersAlert(t *testing.T) {
	f := newBotFixture()

	f.client.On("AnswerCallback", mock.Anything, "cb1", mock.AnythingOfType("string"), true).Return(nil)

	err := f.svc.ProcessCallback(context.Background(), &service.IncomingCallback{
		CallbackID: "cb1",
		ChatID:     7,
		UserID:     7,
		Data:       "promote_5",
	})

	require.NoError(t, err)
	f.client.AssertCalled(t, "AnswerCallback", mock.Anything, "cb1", "⚠️ Неизвестное действие", true)
}

func TestProcessCallback_ApproveByNonAdmin(t *testing.T) {
	f := newBotFixture()

	f.client.On("AnswerCallback", mock.Anything, "cb2", mock.AnythingOfType("string"), true).Return(nil)

	err := f.svc.ProcessCallback(context.Background(), &service.IncomingCallback{
		CallbackID: "cb2",
		ChatID:     7,
		UserID:     7,
		Data:       "approve_1",
	})

	require.NoError(t, err)
	f.client.AssertCalled(t, "AnswerCallback", mock.Anything, "cb2", "⛔ Недостаточно прав.", true)
	f.postRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestProcessCallback_SendSubmitsDraft(t *testing.T) {
	f := newBotFixture()

	post := &models.Post{ID: 1, AuthorID: 7, Author: approvedUser(), Content: "текст", Status: models.StatusDraft}

	f.postRepo.On("FindByID", mock.Anything, int64(1)).Return(post, nil)
	f.postRepo.On("Update", mock.Anything, post).Return(nil)
	f.client.On("SendMessageWithKeyboard", mock.Anything, testAdminChatID, mock.AnythingOfType("string"), mock.Anything).
		Return(nil)
	f.client.On("EditMessageText", mock.Anything, int64(7), 10, mock.AnythingOfType("string")).Return(nil)
	f.client.On("AnswerCallback", mock.Anything, "cb3", mock.AnythingOfType("string"), false).Return(nil)

	err := f.svc.ProcessCallback(context.Background(), &service.IncomingCallback{
		CallbackID: "cb3",
		ChatID:     7,
		UserID:     7,
		MessageID:  10,
		Data:       "send_1",
	})

	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, post.Status)
	f.client.AssertCalled(t, "AnswerCallback", mock.Anything, "cb3", mock.AnythingOfType("string"), false)
}

func TestProcessCallback_ConfirmBroadcast(t *testing.T) {
	f := newBotFixture()

	f.sessions.Set(testAdminChatID, models.PendingAction{
		Action:  models.AwaitBroadcastConfirm,
		Payload: "важное объявление",
	})

	recipients := []*models.User{
		{ID: 7, TelegramID: "7", IsApproved: true},
		{ID: 8, TelegramID: "8", IsApproved: true},
	}

	f.userRepo.On("FindApproved", mock.Anything).Return(recipients, nil)
	f.client.On("SendMessage", mock.Anything, int64(7), mock.AnythingOfType("string")).Return(nil)
	f.client.On("SendMessage", mock.Anything, int64(8), mock.AnythingOfType("string")).Return(assert.AnError)
	f.client.On("EditMessageText", mock.Anything, testAdminChatID, 12, mock.AnythingOfType("string")).Return(nil)
	f.client.On("AnswerCallback", mock.Anything, "cb4", "Разослано", false).Return(nil)

	err := f.svc.ProcessCallback(context.Background(), &service.IncomingCallback{
		CallbackID: "cb4",
		ChatID:     testAdminChatID,
		UserID:     testAdminChatID,
		MessageID:  12,
		Data:       "confirm_0",
	})

	require.NoError(t, err)
	f.client.AssertCalled(t, "EditMessageText", mock.Anything, testAdminChatID, 12, "📢 Рассылка завершена: доставлено 1 из 2.")
}

func TestProcessCallback_ConfirmWithoutStagedAction(t *testing.T) {
	f := newBotFixture()

	f.client.On("AnswerCallback", mock.Anything, "cb5", "🤔 Нет ожидающего действия.", true).Return(nil)

	err := f.svc.ProcessCallback(context.Background(), &service.IncomingCallback{
		CallbackID: "cb5",
		ChatID:     testAdminChatID,
		UserID:     testAdminChatID,
		Data:       "confirm_0",
	})

	require.NoError(t, err)
	f.client.AssertCalled(t, "AnswerCallback", mock.Anything, "cb5", "🤔 Нет ожидающего действия.", true)
}
