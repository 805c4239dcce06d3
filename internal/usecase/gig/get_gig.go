package gig

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/gigflow/internal/domain/entity"
	"github.com/ignatzorin/gigflow/internal/domain/repository"
	"github.com/ignatzorin/gigflow/internal/pkg/apperror"
	"github.com/ignatzorin/gigflow/internal/validation"
)

const maxListLimit = 100

type GetGigUseCase struct {
	gigRepo repository.GigRepository
}

func NewGetGigUseCase(gigRepo repository.GigRepository) *GetGigUseCase {
	return &GetGigUseCase{gigRepo: gigRepo}
}

func (uc *GetGigUseCase) Execute(ctx context.Context, gigID uuid.UUID) (*entity.GigDetails, error) {
	gig, err := uc.gigRepo.FindDetailsByID(ctx, gigID)
	if err != nil {
		return nil, apperror.Internal(err, "не удалось получить заказ")
	}
	return gig, nil
}

type ListGigsInput struct {
	Search string
	Limit  int
	Offset int
}

type ListGigsUseCase struct {
	gigRepo repository.GigRepository
}

func NewListGigsUseCase(gigRepo repository.GigRepository) *ListGigsUseCase {
	return &ListGigsUseCase{gigRepo: gigRepo}
}

// Execute возвращает заказы, новые первыми. Поиск - подстрока без учёта регистра
// в заголовке или описании. Без limit возвращаются все подходящие заказы.
func (uc *ListGigsUseCase) Execute(ctx context.Context, input ListGigsInput) ([]*entity.GigDetails, error) {
	limit := input.Limit
	if limit < 0 {
		limit = 0
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	gigs, err := uc.gigRepo.List(ctx, repository.GigFilter{
		Search: validation.NormalizeSearch(input.Search),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, apperror.Internal(err, "не удалось получить список заказов")
	}
	return gigs, nil
}

type ListMyGigsUseCase struct {
	gigRepo repository.GigRepository
}

func NewListMyGigsUseCase(gigRepo repository.GigRepository) *ListMyGigsUseCase {
	return &ListMyGigsUseCase{gigRepo: gigRepo}
}

func (uc *ListMyGigsUseCase) Execute(ctx context.Context, ownerID uuid.UUID) ([]*entity.GigDetails, error) {
	gigs, err := uc.gigRepo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, apperror.Internal(err, "не удалось получить ваши заказы")
	}
	return gigs, nil
}
