package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/gigflow/internal/domain/repository"
	"github.com/ignatzorin/gigflow/internal/pkg/apperror"
)

// TxManager открывает транзакцию Postgres и передаёт в fn репозитории,
// привязанные к ней. Ограничения времени задаются через SET LOCAL и
// действуют только внутри транзакции.
type TxManager struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewTxManager(db *sqlx.DB, timeout time.Duration) *TxManager {
	return &TxManager{db: db, timeout: timeout}
}

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepositories) error) (err error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось начать транзакцию")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if m.timeout > 0 {
		ms := m.timeout.Milliseconds()
		for _, stmt := range []string{
			fmt.Sprintf("SET LOCAL lock_timeout = %d", ms),
			fmt.Sprintf("SET LOCAL statement_timeout = %d", ms),
		} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				_ = tx.Rollback()
				return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось настроить транзакцию")
			}
		}
	}

	if err := fn(ctx, &txRepositories{tx: tx}); err != nil {
		_ = tx.Rollback()
		return apperror.Internal(err, "ошибка транзакции")
	}

	if err := tx.Commit(); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось зафиксировать транзакцию")
	}
	return nil
}

type txRepositories struct {
	tx *sqlx.Tx
}

func (t *txRepositories) Gigs() repository.GigRepository { return NewGigRepositoryAdapter(t.tx) }
func (t *txRepositories) Bids() repository.BidRepository { return NewBidRepositoryAdapter(t.tx) }
