package bid

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/gigflow/internal/domain/entity"
	"github.com/ignatzorin/gigflow/internal/domain/repository"
	"github.com/ignatzorin/gigflow/internal/pkg/apperror"
)

type ListGigBidsUseCase struct {
	bidRepo repository.BidRepository
	gigRepo repository.GigRepository
}

func NewListGigBidsUseCase(bidRepo repository.BidRepository, gigRepo repository.GigRepository) *ListGigBidsUseCase {
	return &ListGigBidsUseCase{bidRepo: bidRepo, gigRepo: gigRepo}
}

// Execute возвращает отклики заказа, новые первыми. Доступно только владельцу.
func (uc *ListGigBidsUseCase) Execute(ctx context.Context, gigID, callerID uuid.UUID) ([]*entity.BidDetails, error) {
	gig, err := uc.gigRepo.FindByID(ctx, gigID)
	if err != nil {
		return nil, apperror.Internal(err, "не удалось получить заказ")
	}

	if !gig.IsOwnedBy(callerID) {
		return nil, apperror.ErrNotOwner
	}

	bids, err := uc.bidRepo.ListByGig(ctx, gigID)
	if err != nil {
		return nil, apperror.Internal(err, "не удалось получить отклики")
	}
	return bids, nil
}

type ListMyBidsUseCase struct {
	bidRepo repository.BidRepository
}

func NewListMyBidsUseCase(bidRepo repository.BidRepository) *ListMyBidsUseCase {
	return &ListMyBidsUseCase{bidRepo: bidRepo}
}

func (uc *ListMyBidsUseCase) Execute(ctx context.Context, bidderID uuid.UUID) ([]*entity.BidDetails, error) {
	bids, err := uc.bidRepo.ListByBidder(ctx, bidderID)
	if err != nil {
		return nil, apperror.Internal(err, "не удалось получить ваши отклики")
	}
	return bids, nil
}
