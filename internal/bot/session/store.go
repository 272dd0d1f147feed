package session

import (
	"sync"

	"github.com/central-university-dev/go-wallpost/internal/domain/models"
)

// Store хранит отложенные многошаговые действия пользователей в памяти процесса.
// Записи не переживают рестарт: начатый диалог пользователь начинает заново.
type Store struct {
	mu      sync.Mutex
	pending map[int64]models.PendingAction
}

func NewStore() *Store {
	return &Store{
		pending: make(map[int64]models.PendingAction),
	}
}

// Set перезаписывает текущее отложенное действие пользователя.
// Очереди нет: побеждает последняя запись.
func (s *Store) Set(chatID int64, action models.PendingAction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[chatID] = action
}

// Take атомарно забирает и удаляет отложенное действие.
// Отсутствие записи означает, что сообщение пользователя самостоятельное.
func (s *Store) Take(chatID int64) (models.PendingAction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	action, ok := s.pending[chatID]
	if ok {
		delete(s.pending, chatID)
	}

	return action, ok
}

// Cancel удаляет отложенное действие без обработки.
func (s *Store) Cancel(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pending, chatID)
}
