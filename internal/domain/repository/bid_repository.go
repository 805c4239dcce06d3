package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/gigflow/internal/domain/entity"
)

type BidRepository interface {
	// Create вставляет отклик. Нарушение уникальности (gig, bidder)
	// возвращается как apperror.ErrDuplicateBid.
	Create(ctx context.Context, bid *entity.Bid) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Bid, error)
	FindDetailsByID(ctx context.Context, id uuid.UUID) (*entity.BidDetails, error)
	FindByGigAndBidder(ctx context.Context, gigID, bidderID uuid.UUID) (*entity.Bid, error)
	ListByGig(ctx context.Context, gigID uuid.UUID) ([]*entity.BidDetails, error)
	ListByBidder(ctx context.Context, bidderID uuid.UUID) ([]*entity.BidDetails, error)

	// LockByID читает отклик с блокировкой строки до конца транзакции.
	LockByID(ctx context.Context, id uuid.UUID) (*entity.Bid, error)
	// MarkHired выполняет условный переход pending -> hired.
	// Если отклик уже не pending, возвращает apperror.ErrBidUnavailable.
	MarkHired(ctx context.Context, bid *entity.Bid) error
	// RejectPendingExcept отклоняет все pending отклики заказа, кроме победителя.
	RejectPendingExcept(ctx context.Context, gigID, winnerID uuid.UUID) (int64, error)
}
