package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-finance-api/internal/dto"
	"github.com/noah-isme/sma-finance-api/internal/finance"
	"github.com/noah-isme/sma-finance-api/internal/models"
	appErrors "github.com/noah-isme/sma-finance-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type schoolReader interface {
	FindByID(ctx context.Context, id string) (*models.School, error)
}

type studentLister interface {
	ListBySchool(ctx context.Context, schoolID string) ([]models.Student, error)
}

// ReportServiceConfig tunes report caching.
type ReportServiceConfig struct {
	CacheTTL time.Duration
}

// ReportService loads school snapshots and runs the finance report computations over them.
type ReportService struct {
	schools   schoolReader
	students  studentLister
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ReportServiceConfig
	now       func() time.Time
}

// NewReportService constructs the report service.
func NewReportService(schools schoolReader, students studentLister, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		schools:   schools,
		students:  students,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Summary returns payment figures for the window in query. The boolean reports a cache hit.
func (s *ReportService) Summary(ctx context.Context, schoolID string, query dto.FinanceSummaryQuery) (*models.FinancialSummary, bool, error) {
	start, end, err := s.parseWindow(query)
	if err != nil {
		return nil, false, err
	}

	key := FinanceKey(schoolID, "summary", strconv.FormatInt(start.UnixNano(), 10), strconv.FormatInt(end.UnixNano(), 10))
	summary, hit, err := ReadThrough(ctx, s.cache, key, s.cfg.CacheTTL, func() (models.FinancialSummary, error) {
		began := time.Now()
		school, err := s.loadSnapshot(ctx, schoolID)
		if err != nil {
			return models.FinancialSummary{}, err
		}
		summary := finance.Summarize(*school, start, end)
		s.metrics.ObserveReport("summary", time.Since(began))
		return summary, nil
	})
	if err != nil {
		return nil, false, err
	}
	return &summary, hit, nil
}

// Aging buckets outstanding balances by how overdue they are today.
func (s *ReportService) Aging(ctx context.Context, schoolID string) (*dto.AgingReport, bool, error) {
	now := s.now().UTC()
	key := FinanceKey(schoolID, "aging", now.Format(dateLayout))
	report, hit, err := ReadThrough(ctx, s.cache, key, s.cfg.CacheTTL, func() (dto.AgingReport, error) {
		began := time.Now()
		school, err := s.loadSnapshot(ctx, schoolID)
		if err != nil {
			return dto.AgingReport{}, err
		}
		report := dto.AgingReport{
			SchoolID: schoolID,
			AsOf:     now,
			Buckets:  finance.AgeDebts(*school, now),
		}
		s.metrics.ObserveReport("aging", time.Since(began))
		return report, nil
	})
	if err != nil {
		return nil, false, err
	}
	return &report, hit, nil
}

// ClassPerformance returns per-class collection figures. Missing session or term default
// to the school's current ones.
func (s *ReportService) ClassPerformance(ctx context.Context, schoolID string, query dto.ClassPerformanceQuery) (*dto.ClassPerformanceReport, bool, error) {
	began := time.Now()
	school, err := s.loadSchool(ctx, schoolID)
	if err != nil {
		return nil, false, err
	}
	session := query.Session
	if session == "" {
		session = school.CurrentSession
	}
	term := query.Term
	if term == "" {
		term = school.CurrentTerm
	}

	key := FinanceKey(schoolID, "class-performance", session, term)
	report, hit, err := ReadThrough(ctx, s.cache, key, s.cfg.CacheTTL, func() (dto.ClassPerformanceReport, error) {
		if err := s.attachStudents(ctx, school); err != nil {
			return dto.ClassPerformanceReport{}, err
		}
		report := dto.ClassPerformanceReport{
			SchoolID: schoolID,
			Session:  session,
			Term:     term,
			Classes:  finance.ClassPerformance(*school, session, term),
		}
		s.metrics.ObserveReport("class_performance", time.Since(began))
		return report, nil
	})
	if err != nil {
		return nil, false, err
	}
	return &report, hit, nil
}

// Invalidate drops every cached report of the school.
func (s *ReportService) Invalidate(ctx context.Context, schoolID string) error {
	if err := s.cache.Invalidate(ctx, FinancePattern(schoolID)); err != nil {
		s.logger.Warn("finance cache invalidation failed", zap.String("school_id", schoolID), zap.Error(err))
		return err
	}
	return nil
}

func (s *ReportService) parseWindow(query dto.FinanceSummaryQuery) (time.Time, time.Time, error) {
	if err := s.validator.Struct(query); err != nil {
		return time.Time{}, time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "start and end are required")
	}
	start, err := parseReportBound(query.Start, false)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start date")
	}
	end, err := parseReportBound(query.End, true)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid end date")
	}
	return start, end, nil
}

// parseReportBound accepts RFC3339 or a bare date. A bare date used as an end bound is
// moved to the last nanosecond of that day.
func parseReportBound(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	day, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q: expected RFC3339 or YYYY-MM-DD", raw)
	}
	if endOfDay {
		return day.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return day, nil
}

func (s *ReportService) loadSnapshot(ctx context.Context, schoolID string) (*models.School, error) {
	school, err := s.loadSchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	if err := s.attachStudents(ctx, school); err != nil {
		return nil, err
	}
	return school, nil
}

func (s *ReportService) loadSchool(ctx context.Context, schoolID string) (*models.School, error) {
	school, err := s.schools.FindByID(ctx, schoolID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "school not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school")
	}
	return school, nil
}

func (s *ReportService) attachStudents(ctx context.Context, school *models.School) error {
	start := time.Now()
	students, err := s.students.ListBySchool(ctx, school.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	s.metrics.ObserveDBQuery("school_students", time.Since(start))
	school.Students = students
	return nil
}
