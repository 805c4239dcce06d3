package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/gigflow/internal/domain/entity"
	"github.com/ignatzorin/gigflow/internal/domain/valueobject"
	"github.com/ignatzorin/gigflow/internal/pkg/apperror"
)

const (
	bidColumns = `id, gig_id, bidder_id, message, price, status, created_at, updated_at`

	insertBidQuery = `
		INSERT INTO bids (id, gig_id, bidder_id, message, price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	selectBidQuery            = `SELECT ` + bidColumns + ` FROM bids WHERE id = $1`
	lockBidQuery              = selectBidQuery + ` FOR UPDATE`
	selectBidByGigBidderQuery = `SELECT ` + bidColumns + ` FROM bids WHERE gig_id = $1 AND bidder_id = $2`
	markHiredQuery            = `
		UPDATE bids SET status = 'hired', updated_at = $2
		WHERE id = $1 AND status = 'pending'`
	rejectSiblingsQuery = `
		UPDATE bids SET status = 'rejected', updated_at = $3
		WHERE gig_id = $1 AND id <> $2 AND status = 'pending'`

	// Заказ может быть удалён, поэтому gigs присоединяется через LEFT JOIN.
	bidDetailsSelect = `
		SELECT b.id, b.gig_id, b.bidder_id, b.message, b.price, b.status, b.created_at, b.updated_at,
		       u.name AS bidder_name, u.email AS bidder_email,
		       g.title AS gig_title, g.budget AS gig_budget, g.status AS gig_status
		FROM bids b
		LEFT JOIN users u ON u.id = b.bidder_id
		LEFT JOIN gigs g ON g.id = b.gig_id`
	bidDetailsByIDQuery     = bidDetailsSelect + ` WHERE b.id = $1`
	bidDetailsByGigQuery    = bidDetailsSelect + ` WHERE b.gig_id = $1 ORDER BY b.created_at DESC`
	bidDetailsByBidderQuery = bidDetailsSelect + ` WHERE b.bidder_id = $1 ORDER BY b.created_at DESC`
)

type BidRepositoryAdapter struct {
	db sqlx.ExtContext
}

func NewBidRepositoryAdapter(db sqlx.ExtContext) *BidRepositoryAdapter {
	return &BidRepositoryAdapter{db: db}
}

func (r *BidRepositoryAdapter) Create(ctx context.Context, bid *entity.Bid) error {
	_, err := r.db.ExecContext(ctx, insertBidQuery,
		bid.ID, bid.GigID, bid.BidderID, bid.Message, bid.Price,
		string(bid.Status), bid.CreatedAt, bid.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrDuplicateBid
		}
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось создать отклик")
	}
	return nil
}

func (r *BidRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Bid, error) {
	return r.getBid(ctx, selectBidQuery, id)
}

func (r *BidRepositoryAdapter) LockByID(ctx context.Context, id uuid.UUID) (*entity.Bid, error) {
	return r.getBid(ctx, lockBidQuery, id)
}

func (r *BidRepositoryAdapter) getBid(ctx context.Context, query string, id uuid.UUID) (*entity.Bid, error) {
	var row bidRow
	if err := sqlx.GetContext(ctx, r.db, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrBidNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить отклик")
	}
	return row.toEntity(), nil
}

func (r *BidRepositoryAdapter) FindByGigAndBidder(ctx context.Context, gigID, bidderID uuid.UUID) (*entity.Bid, error) {
	var row bidRow
	if err := sqlx.GetContext(ctx, r.db, &row, selectBidByGigBidderQuery, gigID, bidderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить отклик")
	}
	return row.toEntity(), nil
}

func (r *BidRepositoryAdapter) FindDetailsByID(ctx context.Context, id uuid.UUID) (*entity.BidDetails, error) {
	var row bidDetailsRow
	if err := sqlx.GetContext(ctx, r.db, &row, bidDetailsByIDQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrBidNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить отклик")
	}
	return row.toEntity(), nil
}

func (r *BidRepositoryAdapter) ListByGig(ctx context.Context, gigID uuid.UUID) ([]*entity.BidDetails, error) {
	return r.selectDetails(ctx, bidDetailsByGigQuery, gigID)
}

func (r *BidRepositoryAdapter) ListByBidder(ctx context.Context, bidderID uuid.UUID) ([]*entity.BidDetails, error) {
	return r.selectDetails(ctx, bidDetailsByBidderQuery, bidderID)
}

func (r *BidRepositoryAdapter) selectDetails(ctx context.Context, query string, arg uuid.UUID) ([]*entity.BidDetails, error) {
	var rows []bidDetailsRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, arg); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить отклики")
	}
	result := make([]*entity.BidDetails, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toEntity())
	}
	return result, nil
}

func (r *BidRepositoryAdapter) MarkHired(ctx context.Context, bid *entity.Bid) error {
	res, err := r.db.ExecContext(ctx, markHiredQuery, bid.ID, bid.UpdatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось обновить отклик")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось обновить отклик")
	}
	if affected == 0 {
		return apperror.ErrBidUnavailable
	}
	return nil
}

func (r *BidRepositoryAdapter) RejectPendingExcept(ctx context.Context, gigID, winnerID uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx, rejectSiblingsQuery, gigID, winnerID, time.Now().UTC())
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось отклонить отклики")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось отклонить отклики")
	}
	return affected, nil
}

type bidRow struct {
	ID        uuid.UUID `db:"id"`
	GigID     uuid.UUID `db:"gig_id"`
	BidderID  uuid.UUID `db:"bidder_id"`
	Message   string    `db:"message"`
	Price     int64     `db:"price"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (b *bidRow) toEntity() *entity.Bid {
	status, _ := valueobject.NewBidStatus(b.Status)
	return &entity.Bid{
		ID:        b.ID,
		GigID:     b.GigID,
		BidderID:  b.BidderID,
		Message:   b.Message,
		Price:     b.Price,
		Status:    status,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

type bidDetailsRow struct {
	bidRow
	BidderName  *string `db:"bidder_name"`
	BidderEmail *string `db:"bidder_email"`
	GigTitle    *string `db:"gig_title"`
	GigBudget   *int64  `db:"gig_budget"`
	GigStatus   *string `db:"gig_status"`
}

func (b *bidDetailsRow) toEntity() *entity.BidDetails {
	details := &entity.BidDetails{
		Bid:    *b.bidRow.toEntity(),
		Bidder: summaryOf(b.BidderID, b.BidderName, b.BidderEmail),
	}
	if b.GigTitle != nil {
		summary := &entity.GigSummary{ID: b.GigID, Title: *b.GigTitle}
		if b.GigBudget != nil {
			summary.Budget = *b.GigBudget
		}
		if b.GigStatus != nil {
			summary.Status, _ = valueobject.NewGigStatus(*b.GigStatus)
		}
		details.Gig = summary
	}
	return details
}
