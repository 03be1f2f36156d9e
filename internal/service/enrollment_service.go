package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-finance-api/internal/dto"
	"github.com/noah-isme/sma-finance-api/internal/finance"
	"github.com/noah-isme/sma-finance-api/internal/models"
	appErrors "github.com/noah-isme/sma-finance-api/pkg/errors"
)

type enrollmentSchoolReader interface {
	FindByID(ctx context.Context, id string) (*models.School, error)
	ListFeeDefinitions(ctx context.Context, schoolID string) ([]models.FeeDefinition, error)
}

type applicantStore interface {
	FindByID(ctx context.Context, schoolID, id string) (*models.Applicant, error)
	UpdateStatus(ctx context.Context, id string, status models.ApplicantStatus, at time.Time) error
}

type studentWriter interface {
	CreateWithFees(ctx context.Context, student *models.Student) error
}

type reportInvalidator interface {
	Invalidate(ctx context.Context, schoolID string) error
}

// EnrollmentService turns accepted applicants into billed students.
type EnrollmentService struct {
	schools    enrollmentSchoolReader
	applicants applicantStore
	students   studentWriter
	reports    reportInvalidator
	metrics    *MetricsService
	logger     *zap.Logger
	now        func() time.Time
}

// NewEnrollmentService constructs the service. reports may be nil when caching is off.
func NewEnrollmentService(schools enrollmentSchoolReader, applicants applicantStore, students studentWriter, reports reportInvalidator, metrics *MetricsService, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		schools:    schools,
		applicants: applicants,
		students:   students,
		reports:    reports,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Enroll admits the applicant: the student and its fees are written first, then the
// applicant is marked enrolled. The two writes are separate; when the second fails the
// returned ENROLLMENT_PARTIAL error carries the id of the student that was created.
func (s *EnrollmentService) Enroll(ctx context.Context, schoolID, applicantID string) (*dto.EnrollmentResult, error) {
	school, err := s.schools.FindByID(ctx, schoolID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "school not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school")
	}
	defs, err := s.schools.ListFeeDefinitions(ctx, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee definitions")
	}
	school.FeeDefinitions = defs

	applicant, err := s.applicants.FindByID(ctx, schoolID, applicantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "applicant not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applicant")
	}
	if applicant.Status == models.ApplicantStatusEnrolled {
		s.metrics.IncEnrollment("rejected")
		return nil, appErrors.Clone(appErrors.ErrConflict, "applicant already enrolled")
	}

	now := s.now().UTC()
	enrollment := finance.DeriveEnrollment(*school, *applicant, now)
	student := enrollment.Student
	student.CreatedAt = now

	if err := s.students.CreateWithFees(ctx, &student); err != nil {
		s.metrics.IncEnrollment("failed")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	if err := s.applicants.UpdateStatus(ctx, applicant.ID, enrollment.ApplicantStatus, now); err != nil {
		s.metrics.IncEnrollment("partial")
		s.logger.Error("applicant status not updated after student creation",
			zap.String("school_id", schoolID),
			zap.String("applicant_id", applicant.ID),
			zap.String("student_id", student.ID),
			zap.Error(err),
		)
		partial := appErrors.Wrap(err, appErrors.ErrEnrollmentPartial.Code, appErrors.ErrEnrollmentPartial.Status, appErrors.ErrEnrollmentPartial.Message)
		return nil, partial.WithDetail("student_id", student.ID).WithDetail("applicant_id", applicant.ID)
	}

	s.metrics.IncEnrollment("created")
	if s.reports != nil {
		if err := s.reports.Invalidate(ctx, schoolID); err != nil {
			s.logger.Warn("finance report cache not invalidated", zap.String("school_id", schoolID), zap.Error(err))
		}
	}

	s.logger.Info("applicant enrolled",
		zap.String("school_id", schoolID),
		zap.String("applicant_id", applicant.ID),
		zap.String("student_id", student.ID),
		zap.Int("fees", len(student.Fees)),
	)
	return &dto.EnrollmentResult{
		Student:         student,
		ApplicantID:     applicant.ID,
		ApplicantStatus: enrollment.ApplicantStatus,
	}, nil
}
