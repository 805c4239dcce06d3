package gig

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/gigflow/internal/domain/entity"
	"github.com/ignatzorin/gigflow/internal/domain/repository"
	"github.com/ignatzorin/gigflow/internal/pkg/apperror"
)

type UpdateGigUseCase struct {
	gigRepo repository.GigRepository
}

func NewUpdateGigUseCase(gigRepo repository.GigRepository) *UpdateGigUseCase {
	return &UpdateGigUseCase{gigRepo: gigRepo}
}

// Execute применяет правки владельца к открытому заказу.
func (uc *UpdateGigUseCase) Execute(ctx context.Context, gigID, callerID uuid.UUID, changes entity.GigChanges) (*entity.GigDetails, error) {
	gig, err := uc.gigRepo.FindByID(ctx, gigID)
	if err != nil {
		return nil, apperror.Internal(err, "не удалось получить заказ")
	}

	if !gig.IsOwnedBy(callerID) {
		return nil, apperror.ErrNotOwner
	}

	if changes.IsEmpty() {
		return loadDetails(ctx, uc.gigRepo, gig), nil
	}

	if err := gig.Edit(changes); err != nil {
		return nil, err
	}

	// Репозиторий обновляет только открытый заказ, поэтому гонка с наймом
	// закончится ErrGigClosed, а не правкой назначенного заказа.
	if err := uc.gigRepo.Update(ctx, gig); err != nil {
		return nil, apperror.Internal(err, "не удалось обновить заказ")
	}

	return loadDetails(ctx, uc.gigRepo, gig), nil
}

type DeleteGigUseCase struct {
	gigRepo repository.GigRepository
}

func NewDeleteGigUseCase(gigRepo repository.GigRepository) *DeleteGigUseCase {
	return &DeleteGigUseCase{gigRepo: gigRepo}
}

// Execute удаляет открытый заказ владельца. Отклики остаются и
// в списке "мои отклики" показываются без заказа.
func (uc *DeleteGigUseCase) Execute(ctx context.Context, gigID, callerID uuid.UUID) error {
	gig, err := uc.gigRepo.FindByID(ctx, gigID)
	if err != nil {
		return apperror.Internal(err, "не удалось получить заказ")
	}

	if !gig.IsOwnedBy(callerID) {
		return apperror.ErrNotOwner
	}

	if !gig.IsOpen() {
		return apperror.ErrGigClosed
	}

	if err := uc.gigRepo.Delete(ctx, gigID); err != nil {
		return apperror.Internal(err, "не удалось удалить заказ")
	}
	return nil
}
