package errors

import (
	"fmt"
)

type ErrUserNotFound struct {
	TelegramID string
}

func (e *ErrUserNotFound) Error() string {
	return "пользователь не найден: " + e.TelegramID
}

func (e *ErrUserNotFound) Is(target error) bool {
	_, ok := target.(*ErrUserNotFound)
	return ok
}

type ErrPostNotFound struct {
	PostID int64
}

func (e *ErrPostNotFound) Error() string {
	return fmt.Sprintf("пост не найден: %d", e.PostID)
}

func (e *ErrPostNotFound) Is(target error) bool {
	_, ok := target.(*ErrPostNotFound)
	return ok
}

type ErrNotApproved struct {
	TelegramID string
}

func (e *ErrNotApproved) Error() string {
	return "пользователь не одобрен для публикаций: " + e.TelegramID
}

func (e *ErrNotApproved) Is(target error) bool {
	_, ok := target.(*ErrNotApproved)
	return ok
}

type ErrContentTooLong struct {
	Length int
	Limit  int
}

func (e *ErrContentTooLong) Error() string {
	return fmt.Sprintf("текст слишком длинный: %d/%d символов", e.Length, e.Limit)
}

func (e *ErrContentTooLong) Is(target error) bool {
	_, ok := target.(*ErrContentTooLong)
	return ok
}

type ErrEmptyPost struct{}

func (e *ErrEmptyPost) Error() string {
	return "пост должен содержать текст или изображение"
}

func (e *ErrEmptyPost) Is(target error) bool {
	_, ok := target.(*ErrEmptyPost)
	return ok
}

type ErrNotAdmin struct {
	TelegramID string
}

func (e *ErrNotAdmin) Error() string {
	return "операция доступна только администратору: " + e.TelegramID
}

func (e *ErrNotAdmin) Is(target error) bool {
	_, ok := target.(*ErrNotAdmin)
	return ok
}

type ErrNotOwner struct {
	TelegramID string
	PostID     int64
}

func (e *ErrNotOwner) Error() string {
	return fmt.Sprintf("пользователь %s не является автором поста %d", e.TelegramID, e.PostID)
}

func (e *ErrNotOwner) Is(target error) bool {
	_, ok := target.(*ErrNotOwner)
	return ok
}

type ErrInvalidTransition struct {
	From  string
	Event string
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("переход '%s' недопустим из статуса '%s'", e.Event, e.From)
}

func (e *ErrInvalidTransition) Is(target error) bool {
	_, ok := target.(*ErrInvalidTransition)
	return ok
}

type ErrDelivery struct {
	ChatID int64
	Cause  error
}

func (e *ErrDelivery) Error() string {
	return fmt.Sprintf("не удалось доставить сообщение в чат %d: %v", e.ChatID, e.Cause)
}

func (e *ErrDelivery) Unwrap() error {
	return e.Cause
}

func (e *ErrDelivery) Is(target error) bool {
	_, ok := target.(*ErrDelivery)
	return ok
}

type ErrUnknownCommand struct {
	Command string
}

func (e *ErrUnknownCommand) Error() string {
	return "неизвестная команда: " + e.Command
}

func (e *ErrUnknownCommand) Is(target error) bool {
	_, ok := target.(*ErrUnknownCommand)
	return ok
}

type ErrUnknownCallback struct {
	Data string
}

func (e *ErrUnknownCallback) Error() string {
	return "неизвестный callback: " + e.Data
}

func (e *ErrUnknownCallback) Is(target error) bool {
	_, ok := target.(*ErrUnknownCallback)
	return ok
}

type ErrNoPendingAction struct {
	ChatID int64
}

func (e *ErrNoPendingAction) Error() string {
	return fmt.Sprintf("нет ожидающего действия для чата %d", e.ChatID)
}

func (e *ErrNoPendingAction) Is(target error) bool {
	_, ok := target.(*ErrNoPendingAction)
	return ok
}

type ErrInvalidArgument struct {
	Message string
}

func (e *ErrInvalidArgument) Error() string {
	return fmt.Sprintf("некорректный аргумент: %s", e.Message)
}

type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP ошибка: статус %d", e.StatusCode)
}

type ErrUnknownDBAccessType struct {
	AccessType string
}

func (e *ErrUnknownDBAccessType) Error() string {
	return fmt.Sprintf("неизвестный тип доступа к базе данных: %s", e.AccessType)
}

type ErrBeginTransaction struct {
	Cause error
}

func (e *ErrBeginTransaction) Error() string {
	return fmt.Sprintf("ошибка при начале транзакции: %v", e.Cause)
}

func (e *ErrBeginTransaction) Unwrap() error {
	return e.Cause
}

type ErrBuildSQLQuery struct {
	Operation string
	Cause     error
}

func (e *ErrBuildSQLQuery) Error() string {
	return fmt.Sprintf("ошибка при построении SQL запроса для %s: %v", e.Operation, e.Cause)
}

func (e *ErrBuildSQLQuery) Unwrap() error {
	return e.Cause
}

type ErrSQLExecution struct {
	Operation string
	Cause     error
}

func (e *ErrSQLExecution) Error() string {
	return fmt.Sprintf("ошибка при выполнении SQL запроса для %s: %v", e.Operation, e.Cause)
}

func (e *ErrSQLExecution) Unwrap() error {
	return e.Cause
}

type ErrSQLScan struct {
	Entity string
	Cause  error
}

func (e *ErrSQLScan) Error() string {
	return fmt.Sprintf("ошибка при сканировании %s: %v", e.Entity, e.Cause)
}

func (e *ErrSQLScan) Unwrap() error {
	return e.Cause
}

type ErrCommitTransaction struct {
	Cause error
}

func (e *ErrCommitTransaction) Error() string {
	return fmt.Sprintf("ошибка при фиксации транзакции: %v", e.Cause)
}

func (e *ErrCommitTransaction) Unwrap() error {
	return e.Cause
}
