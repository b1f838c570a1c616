package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-rapor-api/internal/dto"
	"github.com/noah-isme/sma-rapor-api/internal/models"
	"github.com/noah-isme/sma-rapor-api/pkg/response"
)

type attendanceService interface {
	Summarize(ctx context.Context, query dto.AttendanceSummaryQuery) (*models.AttendanceSummary, error)
}

// AttendanceHandler exposes attendance summaries.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(svc attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// Summary godoc
// @Summary Attendance summary of a student within a term
// @Tags Attendance
// @Produce json
// @Param student_id query string true "Student ID"
// @Param term_id query string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /attendance/summary [get]
func (h *AttendanceHandler) Summary(c *gin.Context) {
	query := dto.AttendanceSummaryQuery{StudentID: c.Query("student_id"), TermID: c.Query("term_id")}
	summary, err := h.service.Summarize(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}
