package models

import "time"

type PostEventType string

const (
	PostEventPublished PostEventType = "published"
	PostEventDeleted   PostEventType = "deleted"
)

type PostEvent struct {
	Type           PostEventType `json:"type"`
	PostID         int64         `json:"postId"`
	AuthorID       int64         `json:"authorId"`
	IsPinned       bool          `json:"isPinned"`
	IsAnnouncement bool          `json:"isAnnouncement"`
	OccurredAt     time.Time     `json:"occurredAt"`
}
