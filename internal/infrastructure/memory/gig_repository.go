package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/ignatzorin/gigflow/internal/domain/entity"
	"github.com/ignatzorin/gigflow/internal/domain/repository"
	"github.com/ignatzorin/gigflow/internal/domain/valueobject"
	"github.com/ignatzorin/gigflow/internal/pkg/apperror"
)

type GigRepository struct {
	run func(func(st *state) error) error
}

func (r *GigRepository) Create(ctx context.Context, gig *entity.Gig) error {
	return r.run(func(st *state) error {
		st.gigs[gig.ID] = *gig
		return nil
	})
}

func (r *GigRepository) Update(ctx context.Context, gig *entity.Gig) error {
	return r.run(func(st *state) error {
		stored, ok := st.gigs[gig.ID]
		if !ok {
			return apperror.ErrGigNotFound
		}
		if stored.Status != valueobject.GigStatusOpen {
			return apperror.ErrGigClosed
		}
		stored.Title = gig.Title
		stored.Description = gig.Description
		stored.Budget = gig.Budget
		stored.UpdatedAt = gig.UpdatedAt
		st.gigs[gig.ID] = stored
		return nil
	})
}

func (r *GigRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.run(func(st *state) error {
		stored, ok := st.gigs[id]
		if !ok {
			return apperror.ErrGigNotFound
		}
		if stored.Status != valueobject.GigStatusOpen {
			return apperror.ErrGigClosed
		}
		delete(st.gigs, id)
		return nil
	})
}

func (r *GigRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Gig, error) {
	var gig entity.Gig
	err := r.run(func(st *state) error {
		stored, ok := st.gigs[id]
		if !ok {
			return apperror.ErrGigNotFound
		}
		gig = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &gig, nil
}

// LockByID в памяти совпадает с FindByID: транзакция уже эксклюзивна.
func (r *GigRepository) LockByID(ctx context.Context, id uuid.UUID) (*entity.Gig, error) {
	return r.FindByID(ctx, id)
}

func (r *GigRepository) MarkAssigned(ctx context.Context, gig *entity.Gig) error {
	return r.run(func(st *state) error {
		stored, ok := st.gigs[gig.ID]
		if !ok {
			return apperror.ErrGigNotFound
		}
		if stored.Status != valueobject.GigStatusOpen {
			return apperror.ErrAlreadyAssigned
		}
		stored.Status = valueobject.GigStatusAssigned
		assignee := *gig.AssignedTo
		stored.AssignedTo = &assignee
		stored.UpdatedAt = gig.UpdatedAt
		st.gigs[gig.ID] = stored
		return nil
	})
}

func (r *GigRepository) FindDetailsByID(ctx context.Context, id uuid.UUID) (*entity.GigDetails, error) {
	var details *entity.GigDetails
	err := r.run(func(st *state) error {
		stored, ok := st.gigs[id]
		if !ok {
			return apperror.ErrGigNotFound
		}
		details = gigDetails(st, stored)
		return nil
	})
	return details, err
}

func (r *GigRepository) List(ctx context.Context, filter repository.GigFilter) ([]*entity.GigDetails, error) {
	var result []*entity.GigDetails
	err := r.run(func(st *state) error {
		result = collectGigs(st, func(g entity.Gig) bool {
			return filter.Search == "" ||
				containsFold(g.Title, filter.Search) ||
				containsFold(g.Description, filter.Search)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paginate(result, filter.Limit, filter.Offset), nil
}

func (r *GigRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*entity.GigDetails, error) {
	var result []*entity.GigDetails
	err := r.run(func(st *state) error {
		result = collectGigs(st, func(g entity.Gig) bool { return g.OwnerID == ownerID })
		return nil
	})
	return result, err
}

func gigDetails(st *state, g entity.Gig) *entity.GigDetails {
	details := &entity.GigDetails{Gig: g, Owner: userSummary(st, g.OwnerID)}
	if g.AssignedTo != nil {
		assignee := *g.AssignedTo
		details.Gig.AssignedTo = &assignee
		details.Assignee = userSummary(st, assignee)
	}
	return details
}

func collectGigs(st *state, match func(entity.Gig) bool) []*entity.GigDetails {
	result := make([]*entity.GigDetails, 0)
	for _, g := range st.gigs {
		if match(g) {
			result = append(result, gigDetails(st, g))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
