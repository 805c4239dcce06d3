package valueobject

import "github.com/ignatzorin/gigflow/internal/pkg/apperror"

type GigStatus string

const (
	GigStatusOpen     GigStatus = "open"
	GigStatusAssigned GigStatus = "assigned"
)

func (s GigStatus) IsValid() bool {
	switch s {
	case GigStatusOpen, GigStatusAssigned:
		return true
	}
	return false
}

// CanTransitionTo разрешает единственный переход open -> assigned.
func (s GigStatus) CanTransitionTo(newStatus GigStatus) bool {
	return s == GigStatusOpen && newStatus == GigStatusAssigned
}

func NewGigStatus(status string) (GigStatus, error) {
	s := GigStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус заказа")
	}
	return s, nil
}

type BidStatus string

const (
	BidStatusPending  BidStatus = "pending"
	BidStatusHired    BidStatus = "hired"
	BidStatusRejected BidStatus = "rejected"
)

func (s BidStatus) IsValid() bool {
	switch s {
	case BidStatusPending, BidStatusHired, BidStatusRejected:
		return true
	}
	return false
}

// IsFinal сообщает, что отклик больше не может менять статус.
func (s BidStatus) IsFinal() bool {
	return s == BidStatusHired || s == BidStatusRejected
}

func NewBidStatus(status string) (BidStatus, error) {
	s := BidStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус отклика")
	}
	return s, nil
}
