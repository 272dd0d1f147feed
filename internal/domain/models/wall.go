package models

import "time"

// WallPost - публичное представление опубликованного поста.
// Для анонимных постов поля автора пустые.
type WallPost struct {
	ID              int64     `json:"id"`
	Content         string    `json:"content"`
	ImageURL        string    `json:"imageUrl,omitempty"`
	AuthorName      string    `json:"authorName,omitempty"`
	AuthorRank      string    `json:"authorRank,omitempty"`
	AuthorAvatarURL string    `json:"authorAvatarUrl,omitempty"`
	IsAnonymous     bool      `json:"isAnonymous"`
	IsPinned        bool      `json:"isPinned"`
	IsAnnouncement  bool      `json:"isAnnouncement"`
	PublishedAt     time.Time `json:"publishedAt"`
}
