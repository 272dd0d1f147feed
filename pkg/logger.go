package pkg

import (
	"io"
	"log/slog"
)

// NewLogger возвращает JSON-логгер, общий для бота и веб-витрины.
// Сообщения пишутся на русском, контекст передаётся парами ключ-значение.
func NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, nil))
}
