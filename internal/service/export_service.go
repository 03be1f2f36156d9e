package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-finance-api/internal/dto"
	"github.com/noah-isme/sma-finance-api/internal/models"
	appErrors "github.com/noah-isme/sma-finance-api/pkg/errors"
	"github.com/noah-isme/sma-finance-api/pkg/export"
	"github.com/noah-isme/sma-finance-api/pkg/storage"
)

type financeReporter interface {
	Summary(ctx context.Context, schoolID string, query dto.FinanceSummaryQuery) (*models.FinancialSummary, bool, error)
	Aging(ctx context.Context, schoolID string) (*dto.AgingReport, bool, error)
	ClassPerformance(ctx context.Context, schoolID string, query dto.ClassPerformanceQuery) (*dto.ClassPerformanceReport, bool, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportService renders finance reports to files and hands out signed download links.
type ExportService struct {
	reports   financeReporter
	storage   fileStorage
	csv       datasetRenderer
	pdf       datasetRenderer
	signer    *storage.SignedURLSigner
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       ExportConfig
	now       func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the CSV and PDF exporters.
func NewExportService(reports financeReporter, files fileStorage, signer *storage.SignedURLSigner, validate *validator.Validate, metrics *MetricsService, cfg ExportConfig, logger *zap.Logger, csv, pdf datasetRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.ResultTTL <= 0 && signer != nil {
		cfg.ResultTTL = signer.TTL()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter("Amount", "Count", "Value", "Total Fees For Term", "Total Outstanding", "Student Count")
	}
	return &ExportService{
		reports:   reports,
		storage:   files,
		csv:       csv,
		pdf:       pdf,
		signer:    signer,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Generate renders the requested report, stores it and returns a signed download URL.
func (s *ExportService) Generate(ctx context.Context, schoolID string, req dto.ExportRequest) (*dto.ExportResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export request")
	}

	dataset, err := s.buildDataset(ctx, schoolID, req)
	if err != nil {
		return nil, err
	}

	renderer := s.csv
	if req.Format == dto.ExportFormatPDF {
		renderer = s.pdf
	}
	payload, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	exportID := uuid.NewString()
	relPath, err := s.storage.Save(s.buildFilename(schoolID, req, exportID), payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}

	token, grant, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		if delErr := s.storage.Delete(relPath); delErr != nil {
			s.logger.Warn("failed to remove unsigned export", zap.String("path", relPath), zap.Error(delErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export")
	}
	s.metrics.IncExport(req.Format)

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	s.logger.Info("finance export generated",
		zap.String("school_id", schoolID),
		zap.String("export_id", exportID),
		zap.String("report", req.Report),
		zap.String("format", req.Format),
	)
	return &dto.ExportResponse{
		ID:        exportID,
		Report:    req.Report,
		Format:    req.Format,
		URL:       fmt.Sprintf("%s/finance/exports/%s", prefix, token),
		ExpiresAt: grant.ExpiresAt,
	}, nil
}

// Resolve validates a download token and returns what it grants access to.
func (s *ExportService) Resolve(token string) (storage.Grant, error) {
	grant, err := s.signer.Parse(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return storage.Grant{}, appErrors.Clone(appErrors.ErrGone, "download link expired")
		}
		return storage.Grant{}, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid download link")
	}
	return grant, nil
}

// Open returns a handle to the stored export.
func (s *ExportService) Open(grant storage.Grant) (*os.File, error) {
	file, err := s.storage.Open(grant.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
		}
		if errors.Is(err, storage.ErrOutsideBase) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid export path")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export")
	}
	return file, nil
}

// Cleanup removes exports older than the link lifetime.
func (s *ExportService) Cleanup() ([]string, error) {
	return s.storage.CleanupOlderThan(s.cfg.ResultTTL)
}

// RunCleanup calls Cleanup every interval until ctx is cancelled.
func (s *ExportService) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.Cleanup()
			if err != nil {
				s.logger.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				s.logger.Info("expired exports removed", zap.Int("count", len(removed)))
			}
		}
	}
}

// ContentType returns the MIME type of an export file name.
func ContentType(path string) string {
	if strings.HasSuffix(path, "."+dto.ExportFormatPDF) {
		return "application/pdf"
	}
	return "text/csv"
}

func (s *ExportService) buildFilename(schoolID string, req dto.ExportRequest, exportID string) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s/%s_%s_%s.%s", sanitizeFilename(schoolID), req.Report, timestamp, exportID[:8], req.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, schoolID string, req dto.ExportRequest) (export.Dataset, error) {
	switch req.Report {
	case dto.ExportReportSummary:
		return s.buildSummaryDataset(ctx, schoolID, req)
	case dto.ExportReportAging:
		return s.buildAgingDataset(ctx, schoolID)
	case dto.ExportReportClassPerformance:
		return s.buildClassPerformanceDataset(ctx, schoolID, req)
	default:
		return export.Dataset{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report %s", req.Report))
	}
}

func (s *ExportService) buildSummaryDataset(ctx context.Context, schoolID string, req dto.ExportRequest) (export.Dataset, error) {
	summary, _, err := s.reports.Summary(ctx, schoolID, dto.FinanceSummaryQuery{Start: req.Start, End: req.End})
	if err != nil {
		return export.Dataset{}, err
	}
	rows := []map[string]string{
		{"Metric": "Total Revenue", "Value": summary.TotalRevenue.StringFixed(2)},
		{"Metric": "Payments", "Value": strconv.Itoa(summary.PaymentsCount)},
		{"Metric": "Students With New Payments", "Value": strconv.Itoa(summary.StudentsWithNewPayments)},
		{"Metric": "Total Outstanding", "Value": summary.TotalOutstanding.StringFixed(2)},
	}
	return export.Dataset{
		Title:   "Financial Summary",
		Notes:   []string{fmt.Sprintf("%s to %s", formatReportTime(summary.StartDate), formatReportTime(summary.EndDate))},
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}, nil
}

func (s *ExportService) buildAgingDataset(ctx context.Context, schoolID string) (export.Dataset, error) {
	report, _, err := s.reports.Aging(ctx, schoolID)
	if err != nil {
		return export.Dataset{}, err
	}
	rows := make([]map[string]string, 0, len(report.Buckets))
	for _, bucket := range report.Buckets {
		rows = append(rows, map[string]string{
			"Days Overdue": bucket.Range,
			"Amount":       bucket.Amount.StringFixed(2),
			"Count":        strconv.Itoa(bucket.Count),
		})
	}
	return export.Dataset{
		Title:   "Debt Aging",
		Notes:   []string{"As of " + report.AsOf.Format(dateLayout)},
		Headers: []string{"Days Overdue", "Amount", "Count"},
		Rows:    rows,
	}, nil
}

func (s *ExportService) buildClassPerformanceDataset(ctx context.Context, schoolID string, req dto.ExportRequest) (export.Dataset, error) {
	report, _, err := s.reports.ClassPerformance(ctx, schoolID, dto.ClassPerformanceQuery{Session: req.Session, Term: req.Term})
	if err != nil {
		return export.Dataset{}, err
	}
	rows := make([]map[string]string, 0, len(report.Classes))
	for _, class := range report.Classes {
		rows = append(rows, map[string]string{
			"Class":               class.ClassID,
			"Total Fees For Term": class.TotalFeesForTerm.StringFixed(2),
			"Total Outstanding":   class.TotalOutstanding.StringFixed(2),
			"Student Count":       strconv.Itoa(class.StudentCount),
		})
	}
	return export.Dataset{
		Title:   "Class Performance",
		Notes:   []string{fmt.Sprintf("%s, %s", report.Session, report.Term)},
		Headers: []string{"Class", "Total Fees For Term", "Total Outstanding", "Student Count"},
		Rows:    rows,
	}, nil
}

func formatReportTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
