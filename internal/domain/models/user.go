package models

import (
	"time"
)

type User struct {
	ID              int64
	TelegramID      string
	Username        string
	FirstName       string
	IsApproved      bool
	IsVIP           bool
	IsModerator     bool
	IsAnonymousMode bool
	AvatarURL       string
	PostCount       int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Пороговые значения рангов, границы полуоткрытые [lo, hi).
const (
	rankTier1Threshold = 5
	rankTier2Threshold = 15
	rankTier3Threshold = 30
	rankTier4Threshold = 50
	rankTier5Threshold = 100
)

const AdminRank = "👑 Владыка Мира"

// Rank возвращает косметический титул по числу опубликованных постов.
// Администратор всегда получает высший титул независимо от счётчика.
func (u *User) Rank(adminTelegramID string) string {
	if u.TelegramID == adminTelegramID {
		return AdminRank
	}

	return RankForCount(u.PostCount)
}

func RankForCount(count int) string {
	switch {
	case count < rankTier1Threshold:
		return "Смертный 🦶"
	case count < rankTier2Threshold:
		return "Заклинатель Ци 🧘"
	case count < rankTier3Threshold:
		return "Основание 🏰"
	case count < rankTier4Threshold:
		return "Золотое Ядро 🌟"
	case count < rankTier5Threshold:
		return "Зарождающаяся Душа 👻"
	default:
		return "Бессмертный 🐲"
	}
}

func (u *User) Stars(adminTelegramID string) int {
	switch {
	case u.TelegramID == adminTelegramID:
		return 3
	case u.IsModerator:
		return 2
	case u.IsVIP:
		return 1
	default:
		return 0
	}
}

func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}

	if u.Username != "" {
		return "@" + u.Username
	}

	return u.TelegramID
}
