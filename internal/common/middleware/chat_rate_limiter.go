package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ChatRateLimiter ограничивает частоту сообщений по chat id.
// Тот же подход, что и для HTTP, но ключ - чат, а не адрес клиента.
type ChatRateLimiter struct {
	chats      map[int64]*ClientRateLimiter
	mu         sync.Mutex
	rate       rate.Limit
	burst      int
	expiration time.Duration
	lastSweep  time.Time
}

func NewChatRateLimiter(requestsPerWindow int, window time.Duration) *ChatRateLimiter {
	return &ChatRateLimiter{
		chats:      make(map[int64]*ClientRateLimiter),
		rate:       rate.Limit(float64(requestsPerWindow) / window.Seconds()),
		burst:      requestsPerWindow,
		expiration: 1 * time.Hour,
		lastSweep:  time.Now(),
	}
}

func (l *ChatRateLimiter) Allow(chatID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweepLocked()

	chat, exists := l.chats[chatID]
	if !exists {
		chat = &ClientRateLimiter{
			limiter:  rate.NewLimiter(l.rate, l.burst),
			lastSeen: time.Now(),
		}
		l.chats[chatID] = chat
	} else {
		chat.lastSeen = time.Now()
	}

	return chat.limiter.Allow()
}

// sweepLocked лениво выбрасывает давно молчащие чаты, вызывается под мьютексом.
func (l *ChatRateLimiter) sweepLocked() {
	if time.Since(l.lastSweep) < 10*time.Minute {
		return
	}

	for chatID, chat := range l.chats {
		if time.Since(chat.lastSeen) > l.expiration {
			delete(l.chats, chatID)
		}
	}

	l.lastSweep = time.Now()
}
