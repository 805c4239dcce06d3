package gig

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/gigflow/internal/domain/entity"
	"github.com/ignatzorin/gigflow/internal/domain/repository"
	"github.com/ignatzorin/gigflow/internal/logger"
	"github.com/ignatzorin/gigflow/internal/pkg/apperror"
)

type CreateGigInput struct {
	OwnerID     uuid.UUID
	Title       string
	Description string
	Budget      int64
}

type CreateGigUseCase struct {
	gigRepo repository.GigRepository
}

func NewCreateGigUseCase(gigRepo repository.GigRepository) *CreateGigUseCase {
	return &CreateGigUseCase{gigRepo: gigRepo}
}

func (uc *CreateGigUseCase) Execute(ctx context.Context, input CreateGigInput) (*entity.GigDetails, error) {
	gig, err := entity.NewGig(input.OwnerID, input.Title, input.Description, input.Budget)
	if err != nil {
		return nil, err
	}

	if err := uc.gigRepo.Create(ctx, gig); err != nil {
		logger.Log.WithError(err).WithField("owner_id", input.OwnerID).Error("gig: не удалось создать заказ")
		return nil, apperror.Internal(err, "не удалось создать заказ")
	}

	return loadDetails(ctx, uc.gigRepo, gig), nil
}

// loadDetails перечитывает заказ со сводками участников; при сбое чтения
// возвращает заказ без них, запись уже выполнена.
func loadDetails(ctx context.Context, gigRepo repository.GigRepository, gig *entity.Gig) *entity.GigDetails {
	details, err := gigRepo.FindDetailsByID(ctx, gig.ID)
	if err != nil {
		logger.Log.WithError(err).WithField("gig_id", gig.ID).Warn("gig: не удалось перечитать заказ")
		return &entity.GigDetails{Gig: *gig}
	}
	return details
}
