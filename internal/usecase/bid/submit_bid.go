package bid

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/gigflow/internal/domain/entity"
	"github.com/ignatzorin/gigflow/internal/domain/repository"
	"github.com/ignatzorin/gigflow/internal/logger"
	"github.com/ignatzorin/gigflow/internal/pkg/apperror"
)

type SubmitBidInput struct {
	GigID    uuid.UUID
	BidderID uuid.UUID
	Message  string
	Price    int64
}

type SubmitBidUseCase struct {
	bidRepo repository.BidRepository
	gigRepo repository.GigRepository
}

func NewSubmitBidUseCase(bidRepo repository.BidRepository, gigRepo repository.GigRepository) *SubmitBidUseCase {
	return &SubmitBidUseCase{
		bidRepo: bidRepo,
		gigRepo: gigRepo,
	}
}

// Execute проверяет предусловия строго по порядку: данные, существование
// заказа, статус, владелец, повторный отклик. Проверка на дубль здесь
// только для понятного сообщения, гонку закрывает уникальный индекс.
func (uc *SubmitBidUseCase) Execute(ctx context.Context, input SubmitBidInput) (*entity.BidDetails, error) {
	message, err := entity.ValidateBidInput(input.Message, input.Price)
	if err != nil {
		return nil, err
	}

	gig, err := uc.gigRepo.FindByID(ctx, input.GigID)
	if err != nil {
		return nil, uc.internal(err, input)
	}

	if !gig.IsOpen() {
		return nil, apperror.ErrGigClosed
	}

	if gig.IsOwnedBy(input.BidderID) {
		return nil, apperror.ErrSelfBid
	}

	existing, err := uc.bidRepo.FindByGigAndBidder(ctx, input.GigID, input.BidderID)
	if err != nil {
		return nil, uc.internal(err, input)
	}
	if existing != nil {
		return nil, apperror.ErrDuplicateBid
	}

	bid, err := entity.NewBid(input.GigID, input.BidderID, message, input.Price)
	if err != nil {
		return nil, err
	}

	if err := uc.bidRepo.Create(ctx, bid); err != nil {
		return nil, uc.internal(err, input)
	}

	details, err := uc.bidRepo.FindDetailsByID(ctx, bid.ID)
	if err != nil {
		logger.Log.WithError(err).WithField("bid_id", bid.ID).Warn("bid: не удалось загрузить отклик после создания")
		return &entity.BidDetails{Bid: *bid, Gig: gig.Summary()}, nil
	}

	return details, nil
}

func (uc *SubmitBidUseCase) internal(err error, input SubmitBidInput) error {
	wrapped := apperror.Internal(err, "не удалось создать отклик")
	if apperror.IsInternal(wrapped) {
		logger.Log.WithError(err).WithFields(logrus.Fields{
			"gig_id":    input.GigID,
			"bidder_id": input.BidderID,
		}).Error("bid: ошибка хранилища при создании отклика")
	}
	return wrapped
}
