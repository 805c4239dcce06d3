package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/gigflow/internal/domain/entity"
	"github.com/ignatzorin/gigflow/internal/domain/valueobject"
	"github.com/ignatzorin/gigflow/internal/pkg/apperror"
)

type BidRepository struct {
	run func(func(st *state) error) error
}

func (r *BidRepository) Create(ctx context.Context, bid *entity.Bid) error {
	return r.run(func(st *state) error {
		key := bidKey{gigID: bid.GigID, bidderID: bid.BidderID}
		if _, exists := st.bidKeys[key]; exists {
			return apperror.ErrDuplicateBid
		}
		st.bids[bid.ID] = *bid
		st.bidKeys[key] = bid.ID
		return nil
	})
}

func (r *BidRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Bid, error) {
	var bid entity.Bid
	err := r.run(func(st *state) error {
		stored, ok := st.bids[id]
		if !ok {
			return apperror.ErrBidNotFound
		}
		bid = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &bid, nil
}

func (r *BidRepository) LockByID(ctx context.Context, id uuid.UUID) (*entity.Bid, error) {
	return r.FindByID(ctx, id)
}

func (r *BidRepository) FindDetailsByID(ctx context.Context, id uuid.UUID) (*entity.BidDetails, error) {
	var details *entity.BidDetails
	err := r.run(func(st *state) error {
		stored, ok := st.bids[id]
		if !ok {
			return apperror.ErrBidNotFound
		}
		details = bidDetails(st, stored)
		return nil
	})
	return details, err
}

// FindByGigAndBidder возвращает nil без ошибки, если отклика нет.
func (r *BidRepository) FindByGigAndBidder(ctx context.Context, gigID, bidderID uuid.UUID) (*entity.Bid, error) {
	var bid *entity.Bid
	err := r.run(func(st *state) error {
		id, ok := st.bidKeys[bidKey{gigID: gigID, bidderID: bidderID}]
		if !ok {
			return nil
		}
		stored := st.bids[id]
		bid = &stored
		return nil
	})
	return bid, err
}

func (r *BidRepository) ListByGig(ctx context.Context, gigID uuid.UUID) ([]*entity.BidDetails, error) {
	var result []*entity.BidDetails
	err := r.run(func(st *state) error {
		result = collectBids(st, func(b entity.Bid) bool { return b.GigID == gigID })
		return nil
	})
	return result, err
}

func (r *BidRepository) ListByBidder(ctx context.Context, bidderID uuid.UUID) ([]*entity.BidDetails, error) {
	var result []*entity.BidDetails
	err := r.run(func(st *state) error {
		result = collectBids(st, func(b entity.Bid) bool { return b.BidderID == bidderID })
		return nil
	})
	return result, err
}

func (r *BidRepository) MarkHired(ctx context.Context, bid *entity.Bid) error {
	return r.run(func(st *state) error {
		stored, ok := st.bids[bid.ID]
		if !ok {
			return apperror.ErrBidNotFound
		}
		if stored.Status != valueobject.BidStatusPending {
			return apperror.ErrBidUnavailable
		}
		stored.Status = valueobject.BidStatusHired
		stored.UpdatedAt = bid.UpdatedAt
		st.bids[bid.ID] = stored
		return nil
	})
}

func (r *BidRepository) RejectPendingExcept(ctx context.Context, gigID, winnerID uuid.UUID) (int64, error) {
	var affected int64
	now := time.Now().UTC()
	err := r.run(func(st *state) error {
		for id, b := range st.bids {
			if b.GigID != gigID || id == winnerID || b.Status != valueobject.BidStatusPending {
				continue
			}
			b.Status = valueobject.BidStatusRejected
			b.UpdatedAt = now
			st.bids[id] = b
			affected++
		}
		return nil
	})
	return affected, err
}

func bidDetails(st *state, b entity.Bid) *entity.BidDetails {
	details := &entity.BidDetails{Bid: b, Bidder: userSummary(st, b.BidderID)}
	if g, ok := st.gigs[b.GigID]; ok {
		details.Gig = g.Summary()
	}
	return details
}

func collectBids(st *state, match func(entity.Bid) bool) []*entity.BidDetails {
	result := make([]*entity.BidDetails, 0)
	for _, b := range st.bids {
		if match(b) {
			result = append(result, bidDetails(st, b))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}
