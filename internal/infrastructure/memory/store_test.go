package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/gigflow/internal/domain/entity"
	"github.com/ignatzorin/gigflow/internal/domain/repository"
	"github.com/ignatzorin/gigflow/internal/domain/valueobject"
	"github.com/ignatzorin/gigflow/internal/pkg/apperror"
)

func seedBid(t *testing.T, store *Store, gigID uuid.UUID, status valueobject.BidStatus) *entity.Bid {
	t.Helper()
	bid, err := entity.NewBid(gigID, uuid.New(), "Сделаю быстро и аккуратно", 100)
	require.NoError(t, err)
	bid.Status = status
	require.NoError(t, store.Bids().Create(context.Background(), bid))
	return bid
}

func bidStatus(t *testing.T, store *Store, id uuid.UUID) valueobject.BidStatus {
	t.Helper()
	bid, err := store.Bids().FindByID(context.Background(), id)
	require.NoError(t, err)
	return bid.Status
}

func TestBidRepository_RejectPendingExceptTouchesOnlyPendingSiblings(t *testing.T) {
	store := NewStore()
	gigID, otherGigID := uuid.New(), uuid.New()

	winner := seedBid(t, store, gigID, valueobject.BidStatusPending)
	pending := seedBid(t, store, gigID, valueobject.BidStatusPending)
	alreadyRejected := seedBid(t, store, gigID, valueobject.BidStatusRejected)
	otherGig := seedBid(t, store, otherGigID, valueobject.BidStatusPending)

	affected, err := store.Bids().RejectPendingExcept(context.Background(), gigID, winner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	assert.Equal(t, valueobject.BidStatusPending, bidStatus(t, store, winner.ID))
	assert.Equal(t, valueobject.BidStatusRejected, bidStatus(t, store, pending.ID))
	assert.Equal(t, valueobject.BidStatusPending, bidStatus(t, store, otherGig.ID))

	rejected, err := store.Bids().FindByID(context.Background(), alreadyRejected.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.BidStatusRejected, rejected.Status)
	assert.Equal(t, alreadyRejected.UpdatedAt, rejected.UpdatedAt)
}

func TestBidRepository_CreateDuplicate(t *testing.T) {
	store := NewStore()
	gigID, bidderID := uuid.New(), uuid.New()

	first, err := entity.NewBid(gigID, bidderID, "Сделаю быстро и аккуратно", 100)
	require.NoError(t, err)
	require.NoError(t, store.Bids().Create(context.Background(), first))

	second, err := entity.NewBid(gigID, bidderID, "Сделаю ещё быстрее и дешевле", 90)
	require.NoError(t, err)
	err = store.Bids().Create(context.Background(), second)
	assert.True(t, errors.Is(err, apperror.ErrDuplicateBid))
}

func TestStore_WithinTxDiscardsChangesOnError(t *testing.T) {
	store := NewStore()
	gigID := uuid.New()
	bid := seedBid(t, store, gigID, valueobject.BidStatusPending)
	boom := errors.New("boom")

	err := store.WithinTx(context.Background(), func(ctx context.Context, repos repository.TxRepositories) error {
		if _, err := repos.Bids().RejectPendingExcept(ctx, gigID, uuid.New()); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, valueobject.BidStatusPending, bidStatus(t, store, bid.ID))
}
