package txs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainerrors "github.com/central-university-dev/go-wallpost/internal/domain/errors"
)

// TxManager прокидывает pgx-транзакцию через контекст: репозитории достают её
// через GetQuerier и не знают, выполняются они внутри транзакции или на пуле.
type TxManager struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewTxManager(db *pgxpool.Pool, logger *slog.Logger) *TxManager {
	return &TxManager{
		db:     db,
		logger: logger,
	}
}

func injectTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// WithTransaction выполняет txFunc в одной транзакции. Ошибка txFunc
// возвращается как есть после отката; паника откатывает транзакцию
// и пробрасывается дальше.
func (t *TxManager) WithTransaction(ctx context.Context, txFunc func(ctx context.Context) error) error {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		t.logger.Error("Не удалось начать транзакцию", "error", err)
		return &domainerrors.ErrBeginTransaction{Cause: err}
	}

	txCtx := injectTx(ctx, tx)

	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("Паника внутри транзакции, откат", "panic", r)

			_ = tx.Rollback(ctx)

			panic(r)
		}
	}()

	if err := txFunc(txCtx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			t.logger.Error("Не удалось откатить транзакцию", "error", rbErr)
			return fmt.Errorf("ошибка в транзакции: %w, ошибка отката: %v", err, rbErr)
		}

		return err
	}

	if err := tx.Commit(ctx); err != nil {
		t.logger.Error("Не удалось зафиксировать транзакцию", "error", err)
		return &domainerrors.ErrCommitTransaction{Cause: err}
	}

	return nil
}
