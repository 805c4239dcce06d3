package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/gigflow/internal/domain/valueobject"
	"github.com/ignatzorin/gigflow/internal/pkg/apperror"
	"github.com/ignatzorin/gigflow/internal/validation"
)

type Bid struct {
	ID        uuid.UUID
	GigID     uuid.UUID
	BidderID  uuid.UUID
	Message   string
	Price     int64
	Status    valueobject.BidStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateBidInput проверяет сообщение и цену и возвращает обрезанное сообщение.
func ValidateBidInput(message string, price int64) (string, error) {
	message, err := validation.ValidateBidMessage(message)
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateAmount("цена", price); err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	return message, nil
}

func NewBid(gigID, bidderID uuid.UUID, message string, price int64) (*Bid, error) {
	message, err := ValidateBidInput(message, price)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Bid{
		ID:        uuid.New(),
		GigID:     gigID,
		BidderID:  bidderID,
		Message:   message,
		Price:     price,
		Status:    valueobject.BidStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Hire переводит отклик pending -> hired.
func (b *Bid) Hire() error {
	if !b.IsPending() {
		return apperror.ErrBidUnavailable
	}
	b.Status = valueobject.BidStatusHired
	b.UpdatedAt = time.Now().UTC()
	return nil
}

func (b *Bid) IsPending() bool {
	return b.Status == valueobject.BidStatusPending
}

func (b *Bid) IsOwnedBy(userID uuid.UUID) bool {
	return b.BidderID == userID
}

// BidDetails - отклик с данными исполнителя и заказа.
// Gig равен nil, если заказ был удалён.
type BidDetails struct {
	Bid
	Bidder *UserSummary
	Gig    *GigSummary
}
