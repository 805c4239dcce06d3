package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/gigflow/internal/interface/http/dto"
	"github.com/ignatzorin/gigflow/internal/interface/http/response"
	"github.com/ignatzorin/gigflow/internal/usecase/bid"
)

type BidHandler struct {
	submitBidUC   *bid.SubmitBidUseCase
	hireBidUC     *bid.HireBidUseCase
	listGigBidsUC *bid.ListGigBidsUseCase
	listMyBidsUC  *bid.ListMyBidsUseCase
}

func NewBidHandler(
	submitBidUC *bid.SubmitBidUseCase,
	hireBidUC *bid.HireBidUseCase,
	listGigBidsUC *bid.ListGigBidsUseCase,
	listMyBidsUC *bid.ListMyBidsUseCase,
) *BidHandler {
	return &BidHandler{
		submitBidUC:   submitBidUC,
		hireBidUC:     hireBidUC,
		listGigBidsUC: listGigBidsUC,
		listMyBidsUC:  listMyBidsUC,
	}
}

// SubmitBid обслуживает POST /api/bids
func (h *BidHandler) SubmitBid(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	var req dto.SubmitBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}
	gigID, err := uuid.Parse(req.GigID)
	if err != nil {
		response.BadRequest(c, "некорректный ID заказа")
		return
	}

	created, err := h.submitBidUC.Execute(c.Request.Context(), bid.SubmitBidInput{
		GigID:    gigID,
		BidderID: userID,
		Message:  req.Message,
		Price:    req.Price,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToBidResponse(created))
}

// ListGigBids обслуживает GET /api/bids/:gigId, доступен только владельцу заказа.
func (h *BidHandler) ListGigBids(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	gigID, err := uuid.Parse(c.Param("gigId"))
	if err != nil {
		response.BadRequest(c, "некорректный ID заказа")
		return
	}

	bids, err := h.listGigBidsUC.Execute(c.Request.Context(), gigID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBidResponses(bids))
}

func (h *BidHandler) ListMyBids(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	bids, err := h.listMyBidsUC.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBidResponses(bids))
}

// HireBid обслуживает PATCH /api/bids/:bidId/hire
func (h *BidHandler) HireBid(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	bidID, err := uuid.Parse(c.Param("bidId"))
	if err != nil {
		response.BadRequest(c, "некорректный ID отклика")
		return
	}

	result, err := h.hireBidUC.Execute(c.Request.Context(), bidID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToHireResponse(result))
}
