package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

type PostStatus string

const (
	StatusDraft     PostStatus = "DRAFT"
	StatusPending   PostStatus = "PENDING"
	StatusRejected  PostStatus = "REJECTED"
	StatusPublished PostStatus = "PUBLISHED"

	// StatusDeleted - терминальный псевдостатус для таблицы переходов,
	// в базе не хранится: строка поста удаляется.
	StatusDeleted PostStatus = "DELETED"
)

type WorkflowEvent string

const (
	EventSubmit   WorkflowEvent = "submit"
	EventApprove  WorkflowEvent = "approve"
	EventReject   WorkflowEvent = "reject"
	EventReturn   WorkflowEvent = "return"
	EventUserEdit WorkflowEvent = "user_edit"
	EventWithdraw WorkflowEvent = "withdraw"
	EventDiscard  WorkflowEvent = "discard"
	EventDelete   WorkflowEvent = "delete"
)

// transitions - явная таблица жизненного цикла поста.
// Отсутствие пары (статус, событие) означает запрещённый переход.
var transitions = map[PostStatus]map[WorkflowEvent]PostStatus{
	StatusDraft: {
		EventSubmit:  StatusPending,
		EventDiscard: StatusDeleted,
	},
	StatusPending: {
		EventApprove:  StatusPublished,
		EventReject:   StatusRejected,
		EventReturn:   StatusDraft,
		EventWithdraw: StatusDeleted,
	},
	StatusRejected: {
		EventSubmit:   StatusPending,
		EventUserEdit: StatusDraft,
		EventDiscard:  StatusDeleted,
	},
	StatusPublished: {
		EventDelete: StatusDeleted,
	},
}

// Transition возвращает статус, в который событие переводит пост,
// либо false, если переход запрещён.
func Transition(from PostStatus, event WorkflowEvent) (PostStatus, bool) {
	events, ok := transitions[from]
	if !ok {
		return from, false
	}

	to, ok := events[event]
	if !ok {
		return from, false
	}

	return to, true
}

type Post struct {
	ID             int64
	AuthorID       int64
	Author         *User
	Content        string
	ImageURL       string
	IsAnonymous    bool
	Status         PostStatus
	AdminRemark    string
	IsPinned       bool
	IsAnnouncement bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

const (
	TagPinned   = "#pinned"
	TagAnnounce = "#announce"
)

// ScanTags выставляет флаги по содержимому. Вызывается один раз при публикации,
// при последующих правках флаги не пересчитываются.
func (p *Post) ScanTags() {
	content := strings.ToLower(p.Content)

	if strings.Contains(content, TagPinned) {
		p.IsPinned = true
	}

	if strings.Contains(content, TagAnnounce) {
		p.IsAnnouncement = true
	}
}

func (p *Post) Preview(limit int) string {
	if utf8.RuneCountInString(p.Content) <= limit {
		return p.Content
	}

	runes := []rune(p.Content)

	return string(runes[:limit]) + "..."
}
