package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/gigflow/internal/domain/valueobject"
	"github.com/ignatzorin/gigflow/internal/pkg/apperror"
	"github.com/ignatzorin/gigflow/internal/validation"
)

type Gig struct {
	ID          uuid.UUID
	Title       string
	Description string
	Budget      int64
	OwnerID     uuid.UUID
	Status      valueobject.GigStatus
	AssignedTo  *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewGig(ownerID uuid.UUID, title, description string, budget int64) (*Gig, error) {
	title, err := validation.ValidateGigTitle(title)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	description, err = validation.ValidateGigDescription(description)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateAmount("бюджет", budget); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	now := time.Now().UTC()
	return &Gig{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Budget:      budget,
		OwnerID:     ownerID,
		Status:      valueobject.GigStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// GigChanges содержит частичное обновление; nil означает "не менять".
type GigChanges struct {
	Title       *string
	Description *string
	Budget      *int64
}

func (c GigChanges) IsEmpty() bool {
	return c.Title == nil && c.Description == nil && c.Budget == nil
}

// Edit применяет правки владельца. Назначенный заказ не редактируется.
func (g *Gig) Edit(changes GigChanges) error {
	if !g.IsOpen() {
		return apperror.ErrGigClosed
	}

	title, description, budget := g.Title, g.Description, g.Budget
	var err error
	if changes.Title != nil {
		if title, err = validation.ValidateGigTitle(*changes.Title); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}
	if changes.Description != nil {
		if description, err = validation.ValidateGigDescription(*changes.Description); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}
	if changes.Budget != nil {
		if err = validation.ValidateAmount("бюджет", *changes.Budget); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
		budget = *changes.Budget
	}

	g.Title, g.Description, g.Budget = title, description, budget
	g.UpdatedAt = time.Now().UTC()
	return nil
}

// AssignTo переводит заказ open -> assigned. Повторное назначение запрещено.
func (g *Gig) AssignTo(bidderID uuid.UUID) error {
	if !g.Status.CanTransitionTo(valueobject.GigStatusAssigned) {
		return apperror.ErrAlreadyAssigned
	}
	g.Status = valueobject.GigStatusAssigned
	g.AssignedTo = &bidderID
	g.UpdatedAt = time.Now().UTC()
	return nil
}

func (g *Gig) IsOwnedBy(userID uuid.UUID) bool {
	return g.OwnerID == userID
}

func (g *Gig) IsOpen() bool {
	return g.Status == valueobject.GigStatusOpen
}

// GigSummary - краткие сведения о заказе для списка откликов.
type GigSummary struct {
	ID     uuid.UUID
	Title  string
	Budget int64
	Status valueobject.GigStatus
}

func (g *Gig) Summary() *GigSummary {
	return &GigSummary{ID: g.ID, Title: g.Title, Budget: g.Budget, Status: g.Status}
}

// GigDetails - заказ вместе с владельцем и исполнителем.
type GigDetails struct {
	Gig
	Owner    *UserSummary
	Assignee *UserSummary
}
