package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-rapor-api/internal/dto"
	"github.com/noah-isme/sma-rapor-api/internal/models"
	appErrors "github.com/noah-isme/sma-rapor-api/pkg/errors"
	"github.com/noah-isme/sma-rapor-api/pkg/response"
)

type promotionService interface {
	Process(ctx context.Context, req dto.ProcessPromotionsRequest, actorID string) (*dto.PromotionResult, error)
	BulkPromote(ctx context.Context, req dto.BulkPromoteRequest, actorID string) (*dto.PromotionResult, error)
	List(ctx context.Context, query dto.PromotionListQuery) ([]models.ClassPromotionDetail, error)
}

// PromotionHandler exposes the end-of-term promotion workflow.
type PromotionHandler struct {
	service promotionService
}

// NewPromotionHandler constructs the handler.
func NewPromotionHandler(svc promotionService) *PromotionHandler {
	return &PromotionHandler{service: svc}
}

// Process godoc
// @Summary Record promotion decisions
// @Tags Promotions
// @Accept json
// @Produce json
// @Param payload body dto.ProcessPromotionsRequest true "Decisions"
// @Success 200 {object} response.Envelope
// @Router /promotions/process [post]
func (h *PromotionHandler) Process(c *gin.Context) {
	var req dto.ProcessPromotionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Process(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Bulk godoc
// @Summary Apply one decision to a whole class
// @Tags Promotions
// @Accept json
// @Produce json
// @Param payload body dto.BulkPromoteRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Router /promotions/bulk [post]
func (h *PromotionHandler) Bulk(c *gin.Context) {
	var req dto.BulkPromoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.BulkPromote(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// List godoc
// @Summary List promotion decisions of a class
// @Tags Promotions
// @Produce json
// @Param class_group_id query string true "Class group ID"
// @Success 200 {object} response.Envelope
// @Router /promotions [get]
func (h *PromotionHandler) List(c *gin.Context) {
	var query dto.PromotionListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	promotions, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, promotions)
}
