package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/sma-rapor-api/internal/dto"
	"github.com/noah-isme/sma-rapor-api/internal/models"
	appErrors "github.com/noah-isme/sma-rapor-api/pkg/errors"
	"github.com/noah-isme/sma-rapor-api/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

const reportCardTitle = "Laporan Hasil Belajar"

var reportCardHeaders = []string{"Subject", "KKM", "Knowledge", "Grade", "Skill", "Skill Grade", "Result", "Remark"}

// ExportService renders report cards into printable documents.
type ExportService struct {
	csv csvRenderer
	pdf pdfRenderer
}

// NewExportService constructs an ExportService, defaulting to the bundled renderers.
func NewExportService(csv csvRenderer, pdf pdfRenderer) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{csv: csv, pdf: pdf}
}

// RenderReportCard renders the card in the requested format.
func (s *ExportService) RenderReportCard(card *models.ReportCardDetail, format dto.ExportFormat) (*dto.ExportedFile, error) {
	if card == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report card not found")
	}
	if format == "" {
		format = dto.ExportFormatPDF
	}
	dataset := reportCardDataset(card)
	base := fmt.Sprintf("rapor_%s_%s", sanitizeFilename(card.StudentNIS), sanitizeFilename(card.TermName))

	switch format {
	case dto.ExportFormatPDF:
		content, err := s.pdf.Render(dataset, reportCardTitle)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report card pdf")
		}
		return &dto.ExportedFile{Filename: base + ".pdf", ContentType: "application/pdf", Content: content}, nil
	case dto.ExportFormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report card csv")
		}
		return &dto.ExportedFile{Filename: base + ".csv", ContentType: "text/csv", Content: content}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func reportCardDataset(card *models.ReportCardDetail) export.Dataset {
	status := "-"
	if card.PromotionStatus != nil {
		status = string(*card.PromotionStatus)
	}
	summary := []export.Field{
		{Label: "Name", Value: card.StudentName},
		{Label: "NIS", Value: card.StudentNIS},
		{Label: "Class", Value: card.ClassName},
		{Label: "Term", Value: card.TermName},
		{Label: "Average", Value: formatScore(card.AverageScore)},
		{Label: "Rank", Value: fmt.Sprintf("%d of %d", card.Rank, card.TotalStudents)},
		{Label: "Sick / Permit / Absent", Value: fmt.Sprintf("%d / %d / %d", card.SickDays, card.PermitDays, card.AbsentDays)},
		{Label: "Promotion", Value: status},
		{Label: "Homeroom Note", Value: deref(card.HomeroomNote)},
	}

	rows := make([]map[string]string, 0, len(card.Subjects))
	for _, subject := range card.Subjects {
		result := "Not passed"
		if subject.Passed {
			result = "Passed"
		}
		skill := "-"
		if subject.SkillScore != nil {
			skill = formatScore(*subject.SkillScore)
		}
		name := subject.SubjectName
		if name == "" {
			name = subject.SubjectID
		}
		rows = append(rows, map[string]string{
			"Subject":     name,
			"KKM":         formatScore(subject.KKM),
			"Knowledge":   formatScore(subject.KnowledgeScore),
			"Grade":       subject.KnowledgeGrade,
			"Skill":       skill,
			"Skill Grade": deref(subject.SkillGrade),
			"Result":      result,
			"Remark":      deref(subject.Remark),
		})
	}
	return export.Dataset{Summary: summary, Headers: reportCardHeaders, Rows: rows}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func sanitizeFilename(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, raw)
}
