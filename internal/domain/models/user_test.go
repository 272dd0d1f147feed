package models_test

import (
	"testing"

	"github.com/central-university-dev/go-wallpost/internal/domain/models"
	"github.com/stretchr/testify/assert"
)

const adminID = "100"

func TestRankForCount_Boundaries(t *testing.T) {
	cases := []struct {
		count int
		rank  string
	}{
		{0, "Смертный 🦶"},
		{4, "Смертный 🦶"},
		{5, "Заклинатель Ци 🧘"},
		{14, "Заклинатель Ци 🧘"},
		{15, "Основание 🏰"},
		{29, "Основание 🏰"},
		{30, "Золотое Ядро 🌟"},
		{49, "Золотое Ядро 🌟"},
		{50, "Зарождающаяся Душа 👻"},
		{99, "Зарождающаяся Душа 👻"},
		{100, "Бессмертный 🐲"},
		{1000, "Бессмертный 🐲"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.rank, models.RankForCount(tc.count), "count=%d", tc.count)
	}
}

func TestUser_Rank_AdminOverridesCount(t *testing.T) {
	user := &models.User{TelegramID: adminID, PostCount: 0}

	assert.Equal(t, models.AdminRank, user.Rank(adminID))
}

func TestUser_Rank_RegularUser(t *testing.T) {
	user := &models.User{TelegramID: "200", PostCount: 20}

	assert.Equal(t, "Основание 🏰", user.Rank(adminID))
}

func TestUser_Stars(t *testing.T) {
	assert.Equal(t, 3, (&models.User{TelegramID: adminID}).Stars(adminID))
	assert.Equal(t, 2, (&models.User{TelegramID: "200", IsModerator: true, IsVIP: true}).Stars(adminID))
	assert.Equal(t, 1, (&models.User{TelegramID: "200", IsVIP: true}).Stars(adminID))
	assert.Equal(t, 0, (&models.User{TelegramID: "200"}).Stars(adminID))
}

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Иван", (&models.User{FirstName: "Иван", Username: "ivan"}).DisplayName())
	assert.Equal(t, "@ivan", (&models.User{Username: "ivan"}).DisplayName())
	assert.Equal(t, "300", (&models.User{TelegramID: "300"}).DisplayName())
}
