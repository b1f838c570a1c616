package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-rapor-api/internal/dto"
	"github.com/noah-isme/sma-rapor-api/internal/models"
	appErrors "github.com/noah-isme/sma-rapor-api/pkg/errors"
)

type reportCardServiceMock struct {
	generateReq   dto.GenerateReportCardsRequest
	generateActor string
	generateErr   error
	listQuery     dto.ReportCardListQuery
	list          []models.ReportCardDetail
	updateID      string
	updateReq     dto.UpdateReportCardRequest
	updateErr     error
	lockCalls     []string
	exportFormat  dto.ExportFormat
}

func (m *reportCardServiceMock) Generate(ctx context.Context, req dto.GenerateReportCardsRequest, actorID string) (*dto.GenerateReportCardsResponse, error) {
	m.generateReq = req
	m.generateActor = actorID
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	return &dto.GenerateReportCardsResponse{GeneratedCount: 3}, nil
}

func (m *reportCardServiceMock) List(ctx context.Context, query dto.ReportCardListQuery) ([]models.ReportCardDetail, error) {
	m.listQuery = query
	return m.list, nil
}

func (m *reportCardServiceMock) Get(ctx context.Context, id string) (*models.ReportCardDetail, error) {
	if id != "rc-1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report card not found")
	}
	return &models.ReportCardDetail{ReportCard: models.ReportCard{ID: id}}, nil
}

func (m *reportCardServiceMock) Update(ctx context.Context, id string, req dto.UpdateReportCardRequest) (*models.ReportCardDetail, error) {
	m.updateID = id
	m.updateReq = req
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return &models.ReportCardDetail{ReportCard: models.ReportCard{ID: id}}, nil
}

func (m *reportCardServiceMock) Lock(ctx context.Context, id string) (*dto.ToggleLockResponse, error) {
	m.lockCalls = append(m.lockCalls, "lock:"+id)
	return &dto.ToggleLockResponse{Locked: true}, nil
}

func (m *reportCardServiceMock) Unlock(ctx context.Context, id string) (*dto.ToggleLockResponse, error) {
	m.lockCalls = append(m.lockCalls, "unlock:"+id)
	return &dto.ToggleLockResponse{Locked: false}, nil
}

func (m *reportCardServiceMock) ToggleLock(ctx context.Context, id string) (*dto.ToggleLockResponse, error) {
	m.lockCalls = append(m.lockCalls, "toggle:"+id)
	return &dto.ToggleLockResponse{Locked: true}, nil
}

func (m *reportCardServiceMock) Export(ctx context.Context, id string, format dto.ExportFormat) (*dto.ExportedFile, error) {
	m.exportFormat = format
	return &dto.ExportedFile{Filename: "rapor_001_ganjil.csv", ContentType: "text/csv", Content: []byte("Name,Ani\n")}, nil
}

func TestReportCardHandlerGenerate(t *testing.T) {
	svc := &reportCardServiceMock{}
	h := NewReportCardHandler(svc)

	c, w := newGinContext(t, http.MethodPost, "/report-cards/generate", dto.GenerateReportCardsRequest{ClassGroupID: "cg-1", TermID: "term-1"})
	h.Generate(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cg-1", svc.generateReq.ClassGroupID)
	assert.Equal(t, "usr-1", svc.generateActor)
	assert.JSONEq(t, `{"generated_count":3}`, string(decodeEnvelope(t, w).Data))
}

func TestReportCardHandlerGenerateErrors(t *testing.T) {
	svc := &reportCardServiceMock{generateErr: appErrors.Clone(appErrors.ErrLocked, "report cards of this class are locked")}
	h := NewReportCardHandler(svc)

	c, w := newGinContext(t, http.MethodPost, "/report-cards/generate", `{"class_group_id":`)
	h.Generate(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newGinContext(t, http.MethodPost, "/report-cards/generate", dto.GenerateReportCardsRequest{ClassGroupID: "cg-1", TermID: "term-1"})
	h.Generate(c)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "REPORT_CARD_LOCKED", decodeEnvelope(t, w).Error.Code)
}

func TestReportCardHandlerList(t *testing.T) {
	svc := &reportCardServiceMock{list: []models.ReportCardDetail{{ReportCard: models.ReportCard{ID: "rc-1", Rank: 1}}}}
	h := NewReportCardHandler(svc)

	c, w := newGinContext(t, http.MethodGet, "/report-cards?class_group_id=cg-1&term_id=term-1", nil)
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.ReportCardListQuery{ClassGroupID: "cg-1", TermID: "term-1"}, svc.listQuery)
	assert.Equal(t, float64(1), decodeEnvelope(t, w).Meta["count"])
}

func TestReportCardHandlerGetNotFound(t *testing.T) {
	h := NewReportCardHandler(&reportCardServiceMock{})
	c, w := newGinContext(t, http.MethodGet, "/report-cards/rc-9", nil)
	c.Params = gin.Params{{Key: "id", Value: "rc-9"}}
	h.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportCardHandlerUpdate(t *testing.T) {
	svc := &reportCardServiceMock{}
	h := NewReportCardHandler(svc)

	c, w := newGinContext(t, http.MethodPatch, "/report-cards/rc-1", `{"subjects":[{"subject_id":"math","knowledge_score":88}],"homeroom_note":"rajin"}`)
	c.Params = gin.Params{{Key: "id", Value: "rc-1"}}
	h.Update(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rc-1", svc.updateID)
	require.Len(t, svc.updateReq.Subjects, 1)
	assert.Equal(t, 88.0, *svc.updateReq.Subjects[0].KnowledgeScore)
	assert.Equal(t, "rajin", *svc.updateReq.HomeroomNote)

	svc.updateErr = appErrors.Clone(appErrors.ErrLocked, "report card is locked")
	c, w = newGinContext(t, http.MethodPatch, "/report-cards/rc-1", `{"homeroom_note":"x"}`)
	c.Params = gin.Params{{Key: "id", Value: "rc-1"}}
	h.Update(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestReportCardHandlerLockRoutes(t *testing.T) {
	svc := &reportCardServiceMock{}
	h := NewReportCardHandler(svc)

	for _, fn := range []gin.HandlerFunc{h.Lock, h.Unlock, h.ToggleLock} {
		c, w := newGinContext(t, http.MethodPost, "/report-cards/rc-1/lock", nil)
		c.Params = gin.Params{{Key: "id", Value: "rc-1"}}
		fn(c)
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, []string{"lock:rc-1", "unlock:rc-1", "toggle:rc-1"}, svc.lockCalls)
}

func TestReportCardHandlerExport(t *testing.T) {
	svc := &reportCardServiceMock{}
	h := NewReportCardHandler(svc)

	c, w := newGinContext(t, http.MethodGet, "/report-cards/rc-1/export?format=CSV", nil)
	c.Params = gin.Params{{Key: "id", Value: "rc-1"}}
	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.ExportFormatCSV, svc.exportFormat)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="rapor_001_ganjil.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Name,Ani\n", w.Body.String())
}
