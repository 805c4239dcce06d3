package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/gigflow/internal/interface/http/dto"
	"github.com/ignatzorin/gigflow/internal/interface/http/response"
	"github.com/ignatzorin/gigflow/internal/usecase/gig"
)

type GigHandler struct {
	createGigUC  *gig.CreateGigUseCase
	getGigUC     *gig.GetGigUseCase
	listGigsUC   *gig.ListGigsUseCase
	listMyGigsUC *gig.ListMyGigsUseCase
	updateGigUC  *gig.UpdateGigUseCase
	deleteGigUC  *gig.DeleteGigUseCase
}

func NewGigHandler(
	createGigUC *gig.CreateGigUseCase,
	getGigUC *gig.GetGigUseCase,
	listGigsUC *gig.ListGigsUseCase,
	listMyGigsUC *gig.ListMyGigsUseCase,
	updateGigUC *gig.UpdateGigUseCase,
	deleteGigUC *gig.DeleteGigUseCase,
) *GigHandler {
	return &GigHandler{
		createGigUC:  createGigUC,
		getGigUC:     getGigUC,
		listGigsUC:   listGigsUC,
		listMyGigsUC: listMyGigsUC,
		updateGigUC:  updateGigUC,
		deleteGigUC:  deleteGigUC,
	}
}

// ListGigs обслуживает GET /api/gigs?search=&limit=&offset=
func (h *GigHandler) ListGigs(c *gin.Context) {
	gigs, err := h.listGigsUC.Execute(c.Request.Context(), gig.ListGigsInput{
		Search: c.Query("search"),
		Limit:  parseIntQuery(c, "limit", 0),
		Offset: parseIntQuery(c, "offset", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToGigResponses(gigs))
}

func (h *GigHandler) GetGig(c *gin.Context) {
	gigID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "некорректный ID заказа")
		return
	}

	g, err := h.getGigUC.Execute(c.Request.Context(), gigID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToGigResponse(g))
}

func (h *GigHandler) ListMyGigs(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	gigs, err := h.listMyGigsUC.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToGigResponses(gigs))
}

func (h *GigHandler) CreateGig(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	var req dto.CreateGigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	created, err := h.createGigUC.Execute(c.Request.Context(), gig.CreateGigInput{
		OwnerID:     userID,
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToGigResponse(created))
}

func (h *GigHandler) UpdateGig(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	gigID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "некорректный ID заказа")
		return
	}

	var req dto.UpdateGigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	updated, err := h.updateGigUC.Execute(c.Request.Context(), gigID, userID, req.ToChanges())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToGigResponse(updated))
}

func (h *GigHandler) DeleteGig(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	gigID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "некорректный ID заказа")
		return
	}

	if err := h.deleteGigUC.Execute(c.Request.Context(), gigID, userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "заказ успешно удалён"})
}
