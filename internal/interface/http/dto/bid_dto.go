package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/gigflow/internal/domain/entity"
	"github.com/ignatzorin/gigflow/internal/usecase/bid"
)

type SubmitBidRequest struct {
	GigID   string `json:"gigId" binding:"required,uuid"`
	Message string `json:"message"`
	Price   int64  `json:"price"`
}

type BidResponse struct {
	ID        uuid.UUID            `json:"id"`
	GigID     uuid.UUID            `json:"gigId"`
	Gig       *GigSummaryResponse  `json:"gig"`
	BidderID  uuid.UUID            `json:"bidderId"`
	Bidder    *UserSummaryResponse `json:"bidder"`
	Message   string               `json:"message"`
	Price     int64                `json:"price"`
	Status    string               `json:"status"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

type HireResponse struct {
	Message string      `json:"message"`
	Bid     BidResponse `json:"bid"`
}

func ToBidResponse(b *entity.BidDetails) BidResponse {
	return BidResponse{
		ID:        b.ID,
		GigID:     b.GigID,
		Gig:       ToGigSummaryResponse(b.Gig),
		BidderID:  b.BidderID,
		Bidder:    ToUserSummaryResponse(b.Bidder),
		Message:   b.Message,
		Price:     b.Price,
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func ToBidResponses(bids []*entity.BidDetails) []BidResponse {
	responses := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		responses = append(responses, ToBidResponse(b))
	}
	return responses
}

func ToHireResponse(r *bid.HireResult) HireResponse {
	return HireResponse{Message: r.Message, Bid: ToBidResponse(r.Bid)}
}
