package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-rapor-api/internal/dto"
	"github.com/noah-isme/sma-rapor-api/internal/models"
	appErrors "github.com/noah-isme/sma-rapor-api/pkg/errors"
	"github.com/noah-isme/sma-rapor-api/pkg/response"
)

type reportCardService interface {
	Generate(ctx context.Context, req dto.GenerateReportCardsRequest, actorID string) (*dto.GenerateReportCardsResponse, error)
	List(ctx context.Context, query dto.ReportCardListQuery) ([]models.ReportCardDetail, error)
	Get(ctx context.Context, id string) (*models.ReportCardDetail, error)
	Update(ctx context.Context, id string, req dto.UpdateReportCardRequest) (*models.ReportCardDetail, error)
	Lock(ctx context.Context, id string) (*dto.ToggleLockResponse, error)
	Unlock(ctx context.Context, id string) (*dto.ToggleLockResponse, error)
	ToggleLock(ctx context.Context, id string) (*dto.ToggleLockResponse, error)
	Export(ctx context.Context, id string, format dto.ExportFormat) (*dto.ExportedFile, error)
}

// ReportCardHandler exposes report card generation, editing and locking.
type ReportCardHandler struct {
	service reportCardService
}

// NewReportCardHandler constructs the handler.
func NewReportCardHandler(svc reportCardService) *ReportCardHandler {
	return &ReportCardHandler{service: svc}
}

// Generate godoc
// @Summary Generate report cards
// @Description Recompute and persist report cards for every enrollment of a class group in a term
// @Tags ReportCards
// @Accept json
// @Produce json
// @Param payload body dto.GenerateReportCardsRequest true "Generation scope"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /report-cards/generate [post]
func (h *ReportCardHandler) Generate(c *gin.Context) {
	var req dto.GenerateReportCardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// List godoc
// @Summary List report cards of a class
// @Tags ReportCards
// @Produce json
// @Param class_group_id query string true "Class group ID"
// @Param term_id query string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /report-cards [get]
func (h *ReportCardHandler) List(c *gin.Context) {
	var query dto.ReportCardListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	cards, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cards, map[string]interface{}{"count": len(cards)})
}

// Get godoc
// @Summary Get report card
// @Tags ReportCards
// @Produce json
// @Param id path string true "Report card ID"
// @Success 200 {object} response.Envelope
// @Router /report-cards/{id} [get]
func (h *ReportCardHandler) Get(c *gin.Context) {
	card, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, card)
}

// Update godoc
// @Summary Edit a draft report card
// @Tags ReportCards
// @Accept json
// @Produce json
// @Param id path string true "Report card ID"
// @Param payload body dto.UpdateReportCardRequest true "Edits"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /report-cards/{id} [patch]
func (h *ReportCardHandler) Update(c *gin.Context) {
	var req dto.UpdateReportCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	card, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, card)
}

// ToggleLock godoc
// @Summary Toggle report card lock
// @Tags ReportCards
// @Produce json
// @Param id path string true "Report card ID"
// @Success 200 {object} response.Envelope
// @Router /report-cards/{id}/toggle-lock [post]
func (h *ReportCardHandler) ToggleLock(c *gin.Context) {
	h.respondLock(c, h.service.ToggleLock)
}

// Lock godoc
// @Summary Lock report card
// @Tags ReportCards
// @Produce json
// @Param id path string true "Report card ID"
// @Success 200 {object} response.Envelope
// @Router /report-cards/{id}/lock [post]
func (h *ReportCardHandler) Lock(c *gin.Context) {
	h.respondLock(c, h.service.Lock)
}

// Unlock godoc
// @Summary Unlock report card
// @Tags ReportCards
// @Produce json
// @Param id path string true "Report card ID"
// @Success 200 {object} response.Envelope
// @Router /report-cards/{id}/unlock [post]
func (h *ReportCardHandler) Unlock(c *gin.Context) {
	h.respondLock(c, h.service.Unlock)
}

func (h *ReportCardHandler) respondLock(c *gin.Context, fn func(ctx context.Context, id string) (*dto.ToggleLockResponse, error)) {
	result, err := fn(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Export godoc
// @Summary Print report card
// @Tags ReportCards
// @Produce application/pdf
// @Produce text/csv
// @Param id path string true "Report card ID"
// @Param format query string false "pdf (default) or csv"
// @Success 200 {file} file
// @Router /report-cards/{id}/export [get]
func (h *ReportCardHandler) Export(c *gin.Context) {
	format := dto.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(dto.ExportFormatPDF))))
	file, err := h.service.Export(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
