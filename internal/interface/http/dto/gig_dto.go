package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/gigflow/internal/domain/entity"
)

type CreateGigRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Budget      int64  `json:"budget"`
}

// UpdateGigRequest - частичное обновление: отсутствующее поле не меняется.
type UpdateGigRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Budget      *int64  `json:"budget"`
}

func (r UpdateGigRequest) ToChanges() entity.GigChanges {
	return entity.GigChanges{Title: r.Title, Description: r.Description, Budget: r.Budget}
}

type GigResponse struct {
	ID          uuid.UUID            `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Budget      int64                `json:"budget"`
	OwnerID     uuid.UUID            `json:"ownerId"`
	Owner       *UserSummaryResponse `json:"owner"`
	Status      string               `json:"status"`
	AssignedTo  *uuid.UUID           `json:"assignedTo"`
	Assignee    *UserSummaryResponse `json:"assignee"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

type GigSummaryResponse struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Budget int64     `json:"budget"`
	Status string    `json:"status"`
}

func ToGigResponse(g *entity.GigDetails) GigResponse {
	return GigResponse{
		ID:          g.ID,
		Title:       g.Title,
		Description: g.Description,
		Budget:      g.Budget,
		OwnerID:     g.OwnerID,
		Owner:       ToUserSummaryResponse(g.Owner),
		Status:      string(g.Status),
		AssignedTo:  g.AssignedTo,
		Assignee:    ToUserSummaryResponse(g.Assignee),
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func ToGigResponses(gigs []*entity.GigDetails) []GigResponse {
	responses := make([]GigResponse, 0, len(gigs))
	for _, g := range gigs {
		responses = append(responses, ToGigResponse(g))
	}
	return responses
}

func ToGigSummaryResponse(s *entity.GigSummary) *GigSummaryResponse {
	if s == nil {
		return nil
	}
	return &GigSummaryResponse{ID: s.ID, Title: s.Title, Budget: s.Budget, Status: string(s.Status)}
}
