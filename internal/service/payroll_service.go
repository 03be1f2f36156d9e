package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-finance-api/internal/dto"
	"github.com/noah-isme/sma-finance-api/internal/finance"
	"github.com/noah-isme/sma-finance-api/internal/models"
	appErrors "github.com/noah-isme/sma-finance-api/pkg/errors"
	"github.com/noah-isme/sma-finance-api/pkg/jobs"
)

// PayrollRunJobType tags queued whole-school pay runs.
const PayrollRunJobType = "payroll_run"

type teamMemberReader interface {
	FindByID(ctx context.Context, schoolID, id string) (*models.TeamMember, error)
	ListBySchool(ctx context.Context, schoolID string) ([]models.TeamMember, error)
}

type payslipWriter interface {
	Create(ctx context.Context, slip *models.Payslip) (bool, error)
}

type payrollSettingsStore interface {
	FindBySchool(ctx context.Context, schoolID string) (*models.PayrollSettings, error)
	Upsert(ctx context.Context, settings *models.PayrollSettings) error
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) (string, error)
}

// PayrollRunPayload is the job payload of a queued pay run.
type PayrollRunPayload struct {
	SchoolID string
	Year     int
	Month    int
}

// PayrollService computes and stores monthly payslips.
type PayrollService struct {
	members   teamMemberReader
	payslips  payslipWriter
	settings  payrollSettingsStore
	queue     jobEnqueuer
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewPayrollService constructs the service. The queue is attached separately with SetQueue
// because the queue's handler is the service itself.
func NewPayrollService(members teamMemberReader, payslips payslipWriter, settings payrollSettingsStore, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *PayrollService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PayrollService{
		members:   members,
		payslips:  payslips,
		settings:  settings,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// SetQueue attaches the background queue used by EnqueueRun.
func (s *PayrollService) SetQueue(queue jobEnqueuer) {
	s.queue = queue
}

// Calculate generates the payslip of one member for the requested month. A member that
// has no salary or is already paid for that month yields Created=false with a reason.
func (s *PayrollService) Calculate(ctx context.Context, schoolID, memberID string, req dto.PayslipRequest) (*dto.PayslipResult, error) {
	if err := s.validatePeriod(req); err != nil {
		return nil, err
	}
	member, err := s.members.FindByID(ctx, schoolID, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "team member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load team member")
	}
	settings, err := s.loadSettings(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	return s.calculate(ctx, *member, req.Year, req.Month, *settings)
}

// RunMonth generates payslips for every member of the school. Members already paid or
// without salary are reported as skipped, so the run can be repeated safely.
func (s *PayrollService) RunMonth(ctx context.Context, schoolID string, req dto.PayslipRequest) (*dto.PayrollRunResult, error) {
	if err := s.validatePeriod(req); err != nil {
		return nil, err
	}
	members, err := s.members.ListBySchool(ctx, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load team members")
	}
	settings, err := s.loadSettings(ctx, schoolID)
	if err != nil {
		return nil, err
	}

	result := &dto.PayrollRunResult{
		SchoolID: schoolID,
		Year:     req.Year,
		Month:    req.Month,
		Created:  []models.Payslip{},
		Skipped:  []dto.PayslipResult{},
	}
	for _, member := range members {
		outcome, err := s.calculate(ctx, member, req.Year, req.Month, *settings)
		if err != nil {
			return nil, err
		}
		if outcome.Created {
			result.Created = append(result.Created, *outcome.Payslip)
			continue
		}
		result.Skipped = append(result.Skipped, *outcome)
	}

	s.logger.Info("payroll run finished",
		zap.String("school_id", schoolID),
		zap.Int("year", req.Year),
		zap.Int("month", req.Month),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

// EnqueueRun schedules RunMonth on the background queue.
func (s *PayrollService) EnqueueRun(ctx context.Context, schoolID string, req dto.PayslipRequest) (*dto.PayrollRunAccepted, error) {
	if err := s.validatePeriod(req); err != nil {
		return nil, err
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, "payroll queue not configured")
	}
	jobID, err := s.queue.Enqueue(jobs.Job{
		Type:    PayrollRunJobType,
		Key:     fmt.Sprintf("payroll:%s:%04d-%02d", schoolID, req.Year, req.Month),
		Payload: PayrollRunPayload{SchoolID: schoolID, Year: req.Year, Month: req.Month},
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "payroll queue unavailable")
	}
	return &dto.PayrollRunAccepted{JobID: jobID, SchoolID: schoolID, Year: req.Year, Month: req.Month}, nil
}

// HandleJob is the queue handler for pay runs.
func (s *PayrollService) HandleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(PayrollRunPayload)
	if !ok {
		return fmt.Errorf("payroll job %s: unexpected payload %T", job.ID, job.Payload)
	}
	_, err := s.RunMonth(ctx, payload.SchoolID, dto.PayslipRequest{Year: payload.Year, Month: payload.Month})
	return err
}

// Settings returns the school's payroll configuration; an unsaved one is empty.
func (s *PayrollService) Settings(ctx context.Context, schoolID string) (*models.PayrollSettings, error) {
	return s.loadSettings(ctx, schoolID)
}

// UpdateSettings replaces the school's pension rate and PAYE brackets.
func (s *PayrollService) UpdateSettings(ctx context.Context, schoolID string, req dto.PayrollSettingsRequest) (*models.PayrollSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payroll settings")
	}
	rate, err := parseRate(req.EmployeePensionRate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee pension rate")
	}
	brackets := make(models.PayeBrackets, 0, len(req.PayeBrackets))
	for i, input := range req.PayeBrackets {
		upTo, err := decimal.NewFromString(input.UpTo)
		if err != nil || !upTo.IsPositive() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("paye bracket %d: up_to must be positive", i))
		}
		bracketRate, err := parseRate(input.Rate)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("paye bracket %d: invalid rate", i))
		}
		brackets = append(brackets, models.PayeBracket{UpTo: upTo, Rate: bracketRate})
	}

	settings := &models.PayrollSettings{SchoolID: schoolID, EmployeePensionRate: rate, PayeBrackets: brackets}
	if err := s.settings.Upsert(ctx, settings); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save payroll settings")
	}
	return settings, nil
}

func (s *PayrollService) calculate(ctx context.Context, member models.TeamMember, year, month int, settings models.PayrollSettings) (*dto.PayslipResult, error) {
	if !finance.HasSalary(member) {
		s.metrics.IncPayslip(dto.PayslipSkipNoSalary)
		return &dto.PayslipResult{TeamMemberID: member.ID, Reason: dto.PayslipSkipNoSalary}, nil
	}
	slip := finance.CalculatePayslip(member, year, month, settings, s.now().UTC())
	if slip == nil {
		s.metrics.IncPayslip(dto.PayslipSkipAlreadyExists)
		return &dto.PayslipResult{TeamMemberID: member.ID, Reason: dto.PayslipSkipAlreadyExists}, nil
	}

	inserted, err := s.payslips.Create(ctx, slip)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store payslip")
	}
	if !inserted {
		s.logger.Info("payslip already stored by a concurrent run", zap.String("payslip", slip.Key().String()))
		s.metrics.IncPayslip(dto.PayslipSkipAlreadyExists)
		return &dto.PayslipResult{TeamMemberID: member.ID, Reason: dto.PayslipSkipAlreadyExists}, nil
	}

	s.metrics.IncPayslip("created")
	return &dto.PayslipResult{TeamMemberID: member.ID, Created: true, Payslip: slip}, nil
}

func (s *PayrollService) validatePeriod(req dto.PayslipRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "year and month 1-12 are required")
	}
	return nil
}

func (s *PayrollService) loadSettings(ctx context.Context, schoolID string) (*models.PayrollSettings, error) {
	settings, err := s.settings.FindBySchool(ctx, schoolID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.PayrollSettings{SchoolID: schoolID, PayeBrackets: models.PayeBrackets{}}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payroll settings")
	}
	return settings, nil
}

func parseRate(raw string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("rate %s outside 0..1", raw)
	}
	return rate, nil
}
