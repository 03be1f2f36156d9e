package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-finance-api/internal/models"
	appErrors "github.com/noah-isme/sma-finance-api/pkg/errors"
	"github.com/noah-isme/sma-finance-api/pkg/jobs"
)

func amount(t *testing.T, raw string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(raw)
	require.NoError(t, err)
	return d
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, code, appErr.Code, err.Error())
}

type memoryCacheRepo struct {
	store   map[string][]byte
	deleted []string
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	payload, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if m.store == nil {
		m.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.store[key] = payload
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	m.deleted = append(m.deleted, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.store {
		if strings.HasPrefix(key, prefix) {
			delete(m.store, key)
		}
	}
	return nil
}

type fakeSchoolRepo struct {
	schools map[string]models.School
	defs    []models.FeeDefinition
	err     error
	defsErr error
}

func (f *fakeSchoolRepo) FindByID(_ context.Context, id string) (*models.School, error) {
	if f.err != nil {
		return nil, f.err
	}
	school, ok := f.schools[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &school, nil
}

func (f *fakeSchoolRepo) ListFeeDefinitions(_ context.Context, _ string) ([]models.FeeDefinition, error) {
	if f.defsErr != nil {
		return nil, f.defsErr
	}
	return f.defs, nil
}

type fakeStudentRepo struct {
	students  []models.Student
	listCalls int
	listErr   error
	created   []models.Student
	createErr error
}

func (f *fakeStudentRepo) ListBySchool(_ context.Context, _ string) ([]models.Student, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.students, nil
}

func (f *fakeStudentRepo) CreateWithFees(_ context.Context, student *models.Student) error {
	if f.createErr != nil {
		return f.createErr
	}
	if student.ID == "" {
		student.ID = "stu-new"
	}
	for i := range student.Fees {
		student.Fees[i].StudentID = student.ID
	}
	f.created = append(f.created, *student)
	return nil
}

type fakeApplicantRepo struct {
	applicants map[string]models.Applicant
	updateErr  error
	updates    map[string]models.ApplicantStatus
}

func (f *fakeApplicantRepo) FindByID(_ context.Context, _ string, id string) (*models.Applicant, error) {
	applicant, ok := f.applicants[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &applicant, nil
}

func (f *fakeApplicantRepo) UpdateStatus(_ context.Context, id string, status models.ApplicantStatus, _ time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.updates == nil {
		f.updates = make(map[string]models.ApplicantStatus)
	}
	f.updates[id] = status
	return nil
}

type fakeTeamMemberRepo struct {
	members []models.TeamMember
	err     error
}

func (f *fakeTeamMemberRepo) FindByID(_ context.Context, _ string, id string) (*models.TeamMember, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, member := range f.members {
		if member.ID == id {
			m := member
			return &m, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeTeamMemberRepo) ListBySchool(_ context.Context, _ string) ([]models.TeamMember, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.members, nil
}

// fakePayslipRepo enforces the (member, year, month) uniqueness the database index provides.
type fakePayslipRepo struct {
	mu     sync.Mutex
	stored map[models.PayslipKey]models.Payslip
	err    error
}

func (f *fakePayslipRepo) Create(_ context.Context, slip *models.Payslip) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if f.stored == nil {
		f.stored = make(map[models.PayslipKey]models.Payslip)
	}
	if _, exists := f.stored[slip.Key()]; exists {
		return false, nil
	}
	f.stored[slip.Key()] = *slip
	return true, nil
}

type fakePayrollSettingsRepo struct {
	settings *models.PayrollSettings
	saved    *models.PayrollSettings
}

func (f *fakePayrollSettingsRepo) FindBySchool(_ context.Context, _ string) (*models.PayrollSettings, error) {
	if f.settings == nil {
		return nil, sql.ErrNoRows
	}
	s := *f.settings
	return &s, nil
}

func (f *fakePayrollSettingsRepo) Upsert(_ context.Context, settings *models.PayrollSettings) error {
	f.saved = settings
	return nil
}

type fakeEnqueuer struct {
	jobs []jobs.Job
	err  error
}

func (f *fakeEnqueuer) Enqueue(job jobs.Job) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.jobs = append(f.jobs, job)
	return "job-1", nil
}
