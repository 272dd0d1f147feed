package models

type SessionAction int

const (
	AwaitNone SessionAction = iota
	AwaitRemark
	AwaitAdminEdit
	AwaitUserEdit
	AwaitDirectMessage
	AwaitBroadcastConfirm
	AwaitNotifyConfirm
)

// PendingAction - отложенное многошаговое действие пользователя.
// На пользователя одновременно хранится не более одного действия.
type PendingAction struct {
	Action       SessionAction
	PostID       int64
	TargetChatID int64
	Payload      string
}
