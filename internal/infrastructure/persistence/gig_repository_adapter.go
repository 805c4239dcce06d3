package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/gigflow/internal/domain/entity"
	"github.com/ignatzorin/gigflow/internal/domain/repository"
	"github.com/ignatzorin/gigflow/internal/domain/valueobject"
	"github.com/ignatzorin/gigflow/internal/pkg/apperror"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	gigColumns = `id, title, description, budget, owner_id, status, assigned_to, created_at, updated_at`

	insertGigQuery = `
		INSERT INTO gigs (id, title, description, budget, owner_id, status, assigned_to, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	updateOpenGigQuery = `
		UPDATE gigs SET title = $2, description = $3, budget = $4, updated_at = $5
		WHERE id = $1 AND status = 'open'`
	deleteOpenGigQuery = `DELETE FROM gigs WHERE id = $1 AND status = 'open'`
	gigExistsQuery     = `SELECT EXISTS (SELECT 1 FROM gigs WHERE id = $1)`
	selectGigQuery     = `SELECT ` + gigColumns + ` FROM gigs WHERE id = $1`
	lockGigQuery       = selectGigQuery + ` FOR UPDATE`
	markAssignedQuery  = `
		UPDATE gigs SET status = 'assigned', assigned_to = $2, updated_at = $3
		WHERE id = $1 AND status = 'open'`
)

var gigDetailsColumns = []string{
	"g.id", "g.title", "g.description", "g.budget", "g.owner_id", "g.status", "g.assigned_to",
	"g.created_at", "g.updated_at",
	"o.name AS owner_name", "o.email AS owner_email",
	"a.name AS assignee_name", "a.email AS assignee_email",
}

// GigRepositoryAdapter работает и поверх *sqlx.DB, и поверх *sqlx.Tx.
type GigRepositoryAdapter struct {
	db sqlx.ExtContext
}

func NewGigRepositoryAdapter(db sqlx.ExtContext) *GigRepositoryAdapter {
	return &GigRepositoryAdapter{db: db}
}

func (r *GigRepositoryAdapter) Create(ctx context.Context, gig *entity.Gig) error {
	_, err := r.db.ExecContext(ctx, insertGigQuery,
		gig.ID, gig.Title, gig.Description, gig.Budget, gig.OwnerID,
		string(gig.Status), gig.AssignedTo, gig.CreatedAt, gig.UpdatedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось создать заказ")
	}
	return nil
}

func (r *GigRepositoryAdapter) Update(ctx context.Context, gig *entity.Gig) error {
	res, err := r.db.ExecContext(ctx, updateOpenGigQuery,
		gig.ID, gig.Title, gig.Description, gig.Budget, gig.UpdatedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось обновить заказ")
	}
	return r.checkOpenAffected(ctx, res, gig.ID)
}

func (r *GigRepositoryAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, deleteOpenGigQuery, id)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось удалить заказ")
	}
	return r.checkOpenAffected(ctx, res, id)
}

// checkOpenAffected отличает отсутствующий заказ от уже назначенного,
// когда условный UPDATE/DELETE не затронул ни одной строки.
func (r *GigRepositoryAdapter) checkOpenAffected(ctx context.Context, res sql.Result, id uuid.UUID) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось изменить заказ")
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	if err := sqlx.GetContext(ctx, r.db, &exists, gigExistsQuery, id); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось проверить заказ")
	}
	if !exists {
		return apperror.ErrGigNotFound
	}
	return apperror.ErrGigClosed
}

func (r *GigRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Gig, error) {
	return r.getGig(ctx, selectGigQuery, id)
}

func (r *GigRepositoryAdapter) LockByID(ctx context.Context, id uuid.UUID) (*entity.Gig, error) {
	return r.getGig(ctx, lockGigQuery, id)
}

func (r *GigRepositoryAdapter) getGig(ctx context.Context, query string, id uuid.UUID) (*entity.Gig, error) {
	var row gigRow
	if err := sqlx.GetContext(ctx, r.db, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrGigNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить заказ")
	}
	return row.toEntity(), nil
}

func (r *GigRepositoryAdapter) MarkAssigned(ctx context.Context, gig *entity.Gig) error {
	res, err := r.db.ExecContext(ctx, markAssignedQuery, gig.ID, gig.AssignedTo, gig.UpdatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось назначить исполнителя")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось назначить исполнителя")
	}
	if affected == 0 {
		return apperror.ErrAlreadyAssigned
	}
	return nil
}

func (r *GigRepositoryAdapter) detailsQuery() sq.SelectBuilder {
	return psql.Select(gigDetailsColumns...).
		From("gigs g").
		LeftJoin("users o ON o.id = g.owner_id").
		LeftJoin("users a ON a.id = g.assigned_to")
}

func (r *GigRepositoryAdapter) FindDetailsByID(ctx context.Context, id uuid.UUID) (*entity.GigDetails, error) {
	query, args, err := r.detailsQuery().Where(sq.Eq{"g.id": id}).ToSql()
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось построить запрос")
	}

	var row gigDetailsRow
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrGigNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить заказ")
	}
	return row.toEntity(), nil
}

// List возвращает заказы, новые первыми. Поиск регистронезависимый по
// заголовку и описанию, спецсимволы LIKE в строке поиска экранируются.
func (r *GigRepositoryAdapter) List(ctx context.Context, filter repository.GigFilter) ([]*entity.GigDetails, error) {
	builder := r.detailsQuery()
	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"g.title": pattern},
			sq.ILike{"g.description": pattern},
		})
	}
	builder = builder.OrderBy("g.created_at DESC")
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	return r.selectDetails(ctx, builder)
}

func (r *GigRepositoryAdapter) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*entity.GigDetails, error) {
	return r.selectDetails(ctx, r.detailsQuery().
		Where(sq.Eq{"g.owner_id": ownerID}).
		OrderBy("g.created_at DESC"))
}

func (r *GigRepositoryAdapter) selectDetails(ctx context.Context, builder sq.SelectBuilder) ([]*entity.GigDetails, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось построить запрос")
	}

	var rows []gigDetailsRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить заказы")
	}

	result := make([]*entity.GigDetails, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toEntity())
	}
	return result, nil
}

type gigRow struct {
	ID          uuid.UUID  `db:"id"`
	Title       string     `db:"title"`
	Description string     `db:"description"`
	Budget      int64      `db:"budget"`
	OwnerID     uuid.UUID  `db:"owner_id"`
	Status      string     `db:"status"`
	AssignedTo  *uuid.UUID `db:"assigned_to"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func (g *gigRow) toEntity() *entity.Gig {
	status, _ := valueobject.NewGigStatus(g.Status)
	return &entity.Gig{
		ID:          g.ID,
		Title:       g.Title,
		Description: g.Description,
		Budget:      g.Budget,
		OwnerID:     g.OwnerID,
		Status:      status,
		AssignedTo:  g.AssignedTo,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

type gigDetailsRow struct {
	gigRow
	OwnerName     *string `db:"owner_name"`
	OwnerEmail    *string `db:"owner_email"`
	AssigneeName  *string `db:"assignee_name"`
	AssigneeEmail *string `db:"assignee_email"`
}

func (g *gigDetailsRow) toEntity() *entity.GigDetails {
	details := &entity.GigDetails{Gig: *g.gigRow.toEntity()}
	details.Owner = summaryOf(g.OwnerID, g.OwnerName, g.OwnerEmail)
	if g.AssignedTo != nil {
		details.Assignee = summaryOf(*g.AssignedTo, g.AssigneeName, g.AssigneeEmail)
	}
	return details
}

// summaryOf собирает сводку пользователя из колонок LEFT JOIN.
func summaryOf(id uuid.UUID, name, email *string) *entity.UserSummary {
	if name == nil {
		return nil
	}
	s := &entity.UserSummary{ID: id, Name: *name}
	if email != nil {
		s.Email = *email
	}
	return s
}
