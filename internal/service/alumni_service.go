package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/alumni-hub-api/internal/dto"
	"github.com/noah-isme/alumni-hub-api/internal/models"
	"github.com/noah-isme/alumni-hub-api/internal/repository"
	appErrors "github.com/noah-isme/alumni-hub-api/pkg/errors"
	"github.com/noah-isme/alumni-hub-api/pkg/kvstore"
)

const dashboardCachePattern = "dash:*"

type alumniRepository interface {
	Load(ctx context.Context) ([]models.Alumni, error)
	Save(ctx context.Context, records []models.Alumni) error
	Clear(ctx context.Context) error
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// AlumniInput holds the editable fields of an alumni record. Edit replaces all of them.
type AlumniInput struct {
	FirstName       string   `json:"firstName" validate:"required,max=100"`
	LastName        string   `json:"lastName" validate:"required,max=100"`
	Email           string   `json:"email" validate:"required,email"`
	Phone           string   `json:"phone" validate:"omitempty,max=30"`
	StudentID       string   `json:"studentId" validate:"max=50"`
	Department      string   `json:"department" validate:"required,max=100"`
	GraduationYear  int      `json:"graduationYear" validate:"required,gte=1950,lte=2100"`
	Batch           string   `json:"batch" validate:"max=20"`
	Degree          string   `json:"degree" validate:"max=50"`
	CGPA            *float64 `json:"cgpa" validate:"omitempty,gte=0,lte=10"`
	CurrentJobTitle string   `json:"currentJobTitle" validate:"max=100"`
	CurrentCompany  string   `json:"currentCompany" validate:"max=100"`
	Industry        string   `json:"industry" validate:"max=100"`
	WorkLocation    string   `json:"workLocation" validate:"max=100"`
	LinkedIn        string   `json:"linkedin" validate:"omitempty,url"`
	// IsVerified is honoured by Edit only; new records always start unverified.
	IsVerified bool `json:"isVerified"`
}

// AlumniResult is returned by add and edit operations.
type AlumniResult struct {
	Alumni models.Alumni `json:"alumni"`
	// WasVerified is the verification state before the operation.
	WasVerified bool                      `json:"wasVerified"`
	Message     string                    `json:"message"`
	Warning     *appErrors.StorageWarning `json:"warning,omitempty"`
}

// VerificationChanged reports whether the operation flipped the verification flag.
func (r *AlumniResult) VerificationChanged() bool {
	return r != nil && r.WasVerified != r.Alumni.IsVerified
}

// DeleteResult is returned by SoftDelete.
type DeleteResult struct {
	ID string `json:"id"`
	// Changed is false when the record was already inactive.
	Changed bool                      `json:"changed"`
	Warning *appErrors.StorageWarning `json:"warning,omitempty"`
}

// ImportResult is returned by ImportCSV.
type ImportResult struct {
	Imported int                       `json:"imported"`
	Message  string                    `json:"message"`
	Warning  *appErrors.StorageWarning `json:"warning,omitempty"`
}

// AlumniServiceConfig tunes store behaviour.
type AlumniServiceConfig struct {
	SeedDemoData bool
	PercentBase  dto.PercentBase
	TopYears     int
}

// AlumniServiceParams groups constructor dependencies.
type AlumniServiceParams struct {
	Repo      alumniRepository
	Cache     cacheInvalidator
	Metrics   *MetricsService
	Validator *validator.Validate
	Logger    *zap.Logger
	Config    AlumniServiceConfig
}

// AlumniService owns the in-memory alumni collection and keeps the key/value store in step with it.
type AlumniService struct {
	mu        sync.RWMutex
	records   []models.Alumni
	revision  uint64
	repo      alumniRepository
	cache     cacheInvalidator
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
	cfg       AlumniServiceConfig
}

// NewAlumniService constructs the store. Call Load before serving requests.
func NewAlumniService(params AlumniServiceParams) *AlumniService {
	cfg := params.Config
	if cfg.PercentBase != dto.PercentBaseActive {
		cfg.PercentBase = dto.PercentBaseCollection
	}
	if cfg.TopYears <= 0 {
		cfg.TopYears = 5
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlumniService{
		records:   []models.Alumni{},
		repo:      params.Repo,
		cache:     params.Cache,
		metrics:   params.Metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
		newID:     newAlumniID,
		cfg:       cfg,
	}
}

func newAlumniID() string {
	return "alumni_" + uuid.NewString()
}

// Load replaces the in-memory collection with the persisted one.
// Missing data is seeded when configured; corrupt data yields an empty collection and is never seeded over.
func (s *AlumniService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.repo.Load(ctx)
	switch {
	case err == nil:
		s.records = records
		s.logger.Info("alumni collection loaded", zap.Int("records", len(records)))
	case errors.Is(err, repository.ErrCollectionNotFound):
		s.records = []models.Alumni{}
		if s.cfg.SeedDemoData {
			s.records = demoAlumni(s.now().UTC())
			if warning := s.persistLocked(ctx); warning != nil {
				s.logger.Warn("seeded alumni collection was not persisted", zap.String("code", warning.Code))
			}
			s.logger.Info("alumni collection seeded", zap.Int("records", len(s.records)))
		}
	case errors.Is(err, repository.ErrCollectionCorrupt):
		s.logger.Error("persisted alumni collection is malformed, starting empty", zap.Error(err))
		s.records = []models.Alumni{}
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load alumni data")
	}
	s.revision++
	s.invalidateDashboard(ctx)
	s.publishCountsLocked()
	return nil
}

// List returns records in store order; activeOnly hides soft-deleted ones.
func (s *AlumniService) List(activeOnly bool) []models.Alumni {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(activeOnly)
}

func (s *AlumniService) listLocked(activeOnly bool) []models.Alumni {
	result := make([]models.Alumni, 0, len(s.records))
	for _, record := range s.records {
		if activeOnly && !record.IsActive {
			continue
		}
		result = append(result, cloneAlumni(record))
	}
	return result
}

// Search filters active records; every populated criterion must match.
func (s *AlumniService) Search(filter models.AlumniFilter) []models.Alumni {
	s.mu.RLock()
	defer s.mu.RUnlock()

	text := strings.ToLower(strings.TrimSpace(filter.Text))
	result := make([]models.Alumni, 0)
	for _, record := range s.records {
		if !record.IsActive {
			continue
		}
		if text != "" && !matchesText(record, text) {
			continue
		}
		if filter.Department != "" && record.Department != filter.Department {
			continue
		}
		if filter.GraduationYear != nil && record.GraduationYear != *filter.GraduationYear {
			continue
		}
		if filter.Verified != nil && record.IsVerified != *filter.Verified {
			continue
		}
		result = append(result, cloneAlumni(record))
	}
	return result
}

func matchesText(record models.Alumni, text string) bool {
	for _, field := range []string{record.FirstName, record.LastName, record.Email, record.CurrentCompany} {
		if strings.Contains(strings.ToLower(field), text) {
			return true
		}
	}
	return false
}

// Get returns one active record.
func (s *AlumniService) Get(id string) (*models.Alumni, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexLocked(id)
	if idx < 0 || !s.records[idx].IsActive {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "alumni not found")
	}
	record := cloneAlumni(s.records[idx])
	return &record, nil
}

// FilterOptions lists distinct departments in first-seen order and distinct graduation years, newest first.
func (s *AlumniService) FilterOptions() models.AlumniFilterOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()

	options := models.AlumniFilterOptions{Departments: []string{}, Years: []int{}}
	seenDept := make(map[string]struct{})
	seenYear := make(map[int]struct{})
	for _, record := range s.records {
		if _, ok := seenDept[record.Department]; !ok && record.Department != "" {
			seenDept[record.Department] = struct{}{}
			options.Departments = append(options.Departments, record.Department)
		}
		if _, ok := seenYear[record.GraduationYear]; !ok {
			seenYear[record.GraduationYear] = struct{}{}
			options.Years = append(options.Years, record.GraduationYear)
		}
	}
	sortYearsDesc(options.Years)
	return options
}

// Add appends a new manually entered record.
func (s *AlumniService) Add(ctx context.Context, input AlumniInput, role models.UserRole) (*AlumniResult, error) {
	if err := requireAdmin(role); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid alumni payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := models.Alumni{
		ID:          s.uniqueIDLocked(),
		IsVerified:  false,
		IsActive:    true,
		DataSource:  models.DataSourceManual,
		LastUpdated: s.now().UTC(),
	}
	applyInput(&record, input)
	s.records = append(s.records, record)

	warning := s.persistLocked(ctx)
	s.publishCountsLocked()
	return &AlumniResult{
		Alumni:  cloneAlumni(record),
		Message: "Alumni added successfully!",
		Warning: warning,
	}, nil
}

// Edit replaces every editable field of an active record, including the verification flag.
func (s *AlumniService) Edit(ctx context.Context, id string, input AlumniInput, role models.UserRole) (*AlumniResult, error) {
	if err := requireAdmin(role); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid alumni payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 || !s.records[idx].IsActive {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "alumni not found")
	}

	record := &s.records[idx]
	wasVerified := record.IsVerified
	applyInput(record, input)
	record.IsVerified = input.IsVerified
	record.LastUpdated = s.now().UTC()

	result := &AlumniResult{Alumni: cloneAlumni(*record), WasVerified: wasVerified}
	result.Message = editMessage(result)
	result.Warning = s.persistLocked(ctx)
	return result, nil
}

// SoftDelete marks a record inactive. Deleting an inactive record succeeds without touching it.
func (s *AlumniService) SoftDelete(ctx context.Context, id string, role models.UserRole) (*DeleteResult, error) {
	if err := requireAdmin(role); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "alumni not found")
	}
	if !s.records[idx].IsActive {
		return &DeleteResult{ID: id}, nil
	}

	s.records[idx].IsActive = false
	s.records[idx].LastUpdated = s.now().UTC()

	warning := s.persistLocked(ctx)
	s.publishCountsLocked()
	return &DeleteResult{ID: id, Changed: true, Warning: warning}, nil
}

// ToggleVerification flips the verification flag of an active record.
func (s *AlumniService) ToggleVerification(ctx context.Context, id string, role models.UserRole) (*AlumniResult, error) {
	if err := requireAdmin(role); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 || !s.records[idx].IsActive {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "alumni not found")
	}

	record := &s.records[idx]
	wasVerified := record.IsVerified
	record.IsVerified = !wasVerified
	record.LastUpdated = s.now().UTC()

	result := &AlumniResult{Alumni: cloneAlumni(*record), WasVerified: wasVerified}
	result.Message = verificationMessage(*record)
	result.Warning = s.persistLocked(ctx)
	return result, nil
}

// Aggregate computes dashboard statistics over active records.
func (s *AlumniService) Aggregate() dto.DashboardStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return computeDashboardStats(s.records, s.cfg.PercentBase, s.cfg.TopYears)
}

// Revision changes whenever the collection is reloaded or persisted.
func (s *AlumniService) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// ImportCSV appends one record per data line of raw and persists once at the end.
func (s *AlumniService) ImportCSV(ctx context.Context, raw string, role models.UserRole) (*ImportResult, error) {
	if err := requireAdmin(role); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	imported := parseAlumniCSV(raw, func() string { return s.uniqueIDLocked() }, now)
	s.records = append(s.records, imported...)

	result := &ImportResult{
		Imported: len(imported),
		Message:  fmt.Sprintf("Import completed successfully! %d records added.", len(imported)),
	}
	if len(imported) > 0 {
		result.Warning = s.persistLocked(ctx)
		s.metrics.AddImported(len(imported))
		s.publishCountsLocked()
	}
	s.logger.Info("alumni csv imported", zap.Int("records", len(imported)))
	return result, nil
}

// ExportCSV renders records in the interchange format read by ImportCSV.
func (s *AlumniService) ExportCSV(activeOnly bool, role models.UserRole) (string, error) {
	if err := requireAdmin(role); err != nil {
		return "", err
	}
	out, err := formatAlumniCSV(s.List(activeOnly))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to export alumni")
	}
	return out, nil
}

// ExportPDF renders the directory as a PDF table.
func (s *AlumniService) ExportPDF(activeOnly bool, role models.UserRole) ([]byte, error) {
	if err := requireAdmin(role); err != nil {
		return nil, err
	}
	out, err := renderAlumniPDF(s.List(activeOnly))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to export alumni")
	}
	return out, nil
}

// persistLocked writes the whole collection. Failures never undo the in-memory change; they come back as a warning.
func (s *AlumniService) persistLocked(ctx context.Context) *appErrors.StorageWarning {
	start := time.Now()
	err := s.repo.Save(ctx, s.records)
	s.metrics.ObservePersist(time.Since(start), err)
	s.revision++
	s.invalidateDashboard(ctx)
	if err == nil {
		return nil
	}

	var warning *appErrors.StorageWarning
	if errors.Is(err, kvstore.ErrQuotaExceeded) {
		s.logger.Warn("storage quota exceeded, clearing persisted alumni data", zap.Error(err))
		if clearErr := s.repo.Clear(ctx); clearErr != nil {
			s.logger.Error("failed to clear persisted alumni data", zap.Error(clearErr))
		}
		warning = appErrors.NewStorageWarning(appErrors.WarnQuotaExceeded,
			"storage quota exceeded; changes are kept in memory only", err)
	} else {
		s.logger.Error("failed to persist alumni data", zap.Error(err))
		warning = appErrors.NewStorageWarning(appErrors.WarnPersistFailed,
			"failed to persist alumni data; changes are kept in memory only", err)
	}
	s.metrics.RecordStorageWarning(warning.Code)
	return warning
}

func (s *AlumniService) invalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func (s *AlumniService) publishCountsLocked() {
	if s.metrics == nil {
		return
	}
	active := 0
	for _, record := range s.records {
		if record.IsActive {
			active++
		}
	}
	s.metrics.SetAlumniCounts(active, len(s.records)-active)
}

func (s *AlumniService) indexLocked(id string) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *AlumniService) uniqueIDLocked() string {
	for {
		id := s.newID()
		if s.indexLocked(id) < 0 {
			return id
		}
	}
}

func requireAdmin(role models.UserRole) error {
	if !role.IsAdmin() {
		return appErrors.Clone(appErrors.ErrForbidden, "")
	}
	return nil
}

func applyInput(record *models.Alumni, input AlumniInput) {
	record.FirstName = input.FirstName
	record.LastName = input.LastName
	record.Email = input.Email
	record.Phone = input.Phone
	record.StudentID = input.StudentID
	record.Department = input.Department
	record.GraduationYear = input.GraduationYear
	record.Batch = input.Batch
	record.Degree = input.Degree
	record.CGPA = nil
	if input.CGPA != nil {
		cgpa := *input.CGPA
		record.CGPA = &cgpa
	}
	record.CurrentJobTitle = input.CurrentJobTitle
	record.CurrentCompany = input.CurrentCompany
	record.Industry = input.Industry
	record.WorkLocation = input.WorkLocation
	record.LinkedIn = input.LinkedIn
}

func cloneAlumni(record models.Alumni) models.Alumni {
	if record.CGPA != nil {
		cgpa := *record.CGPA
		record.CGPA = &cgpa
	}
	return record
}

func verificationMessage(record models.Alumni) string {
	if record.IsVerified {
		return fmt.Sprintf("%s has been verified!", record.FullName())
	}
	return fmt.Sprintf("%s has been marked as unverified.", record.FullName())
}

func editMessage(result *AlumniResult) string {
	msg := fmt.Sprintf("%s's information has been updated successfully!", result.Alumni.FullName())
	if result.VerificationChanged() {
		if result.Alumni.IsVerified {
			msg += " (Marked as verified)"
		} else {
			msg += " (Marked as unverified)"
		}
	}
	return msg
}
