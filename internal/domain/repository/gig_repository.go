package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/gigflow/internal/domain/entity"
)

// GigFilter задаёт параметры публичного списка заказов.
type GigFilter struct {
	Search string
	Limit  int
	Offset int
}

type GigRepository interface {
	Create(ctx context.Context, gig *entity.Gig) error
	// Update сохраняет правки владельца (title, description, budget) только для открытого заказа.
	Update(ctx context.Context, gig *entity.Gig) error
	// Delete удаляет только открытый заказ.
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Gig, error)
	FindDetailsByID(ctx context.Context, id uuid.UUID) (*entity.GigDetails, error)
	List(ctx context.Context, filter GigFilter) ([]*entity.GigDetails, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*entity.GigDetails, error)

	// LockByID читает заказ с блокировкой строки до конца транзакции.
	LockByID(ctx context.Context, id uuid.UUID) (*entity.Gig, error)
	// MarkAssigned выполняет условный переход open -> assigned.
	// Если заказ уже не открыт, возвращает apperror.ErrAlreadyAssigned.
	MarkAssigned(ctx context.Context, gig *entity.Gig) error
}
