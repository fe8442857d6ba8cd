package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/haripriya/clinic-backend/internal/core/domain"
	"github.com/haripriya/clinic-backend/internal/core/ports"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100

	// maxCodeAttempts bounds patient code generation; each day has 10k codes.
	maxCodeAttempts = 20

	msgDateOfBirthFuture = "Date of birth cannot be in the future"
)

var patientSortFields = map[string]struct{}{
	ports.PatientSortID:          {},
	ports.PatientSortFullName:    {},
	ports.PatientSortPatientCode: {},
	ports.PatientSortDateOfBirth: {},
	ports.PatientSortCreatedAt:   {},
}

type PatientService struct {
	repo   ports.PatientRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewPatientService(repo ports.PatientRepository, logger zerolog.Logger) *PatientService {
	return &PatientService{repo: repo, logger: logger, now: time.Now}
}

// Create registers a new patient and assigns a unique PAT-YYYYMMDD-NNNN code.
func (s *PatientService) Create(ctx context.Context, input ports.CreatePatientInput) (*domain.Patient, error) {
	phone := strings.TrimSpace(input.PhoneNumber)
	email := domain.NormalizeEmail(input.Email)

	exists, err := s.repo.ExistsByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("create patient: check phone: %w", err)
	}
	if exists {
		return nil, domain.NewValidationError(msgPhoneExists)
	}

	if email != "" {
		exists, err := s.repo.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("create patient: check email: %w", err)
		}
		if exists {
			return nil, domain.NewValidationError(msgEmailExists)
		}
	}

	now := s.now().UTC()
	if input.DateOfBirth.After(now) {
		return nil, domain.NewValidationError(msgDateOfBirthFuture)
	}

	patient := &domain.Patient{
		FullName:              strings.TrimSpace(input.FullName),
		Gender:                input.Gender,
		DateOfBirth:           input.DateOfBirth.UTC(),
		PhoneNumber:           phone,
		Email:                 email,
		Address:               input.Address,
		BloodGroup:            input.BloodGroup,
		ChronicDiseases:       input.ChronicDiseases,
		Allergies:             input.Allergies,
		EmergencyContactName:  input.EmergencyContactName,
		EmergencyContactPhone: input.EmergencyContactPhone,
		Active:                true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.nextPatientCode(ctx, now)
		if err != nil {
			return nil, err
		}
		patient.PatientCode = code

		created, err := s.repo.Create(ctx, patient)
		switch {
		case err == nil:
			s.logger.Info().Int64("patient_id", created.ID).Str("patient_code", code).Msg("patient created")
			return created, nil
		case errors.Is(err, domain.ErrDuplicateCode):
			continue
		case errors.Is(err, domain.ErrDuplicatePhone):
			return nil, domain.NewValidationError(msgPhoneExists)
		case errors.Is(err, domain.ErrDuplicateEmail):
			return nil, domain.NewValidationError(msgEmailExists)
		default:
			s.logger.Error().Err(err).Msg("failed to create patient")
			return nil, fmt.Errorf("create patient: %w", err)
		}
	}
	return nil, errors.New("create patient: could not allocate a unique patient code")
}

// nextPatientCode draws random codes for today until one is unused.
func (s *PatientService) nextPatientCode(ctx context.Context, now time.Time) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generatePatientCode(now)
		if err != nil {
			return "", err
		}
		taken, err := s.repo.ExistsByCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("create patient: check code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", errors.New("create patient: could not allocate a unique patient code")
}

// generatePatientCode returns a code in the format PAT-YYYYMMDD-NNNN.
func generatePatientCode(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("generate patient code: %w", err)
	}
	return fmt.Sprintf("PAT-%s-%04d", now.Format("20060102"), n.Int64()), nil
}

// List returns one page of patients, optionally filtered by active flag.
func (s *PatientService) List(ctx context.Context, filter ports.ListPatientsFilter) (*ports.PatientPage, error) {
	filter.Search = ""
	return s.list(ctx, filter)
}

// Search matches query case-insensitively against full name, phone number
// and patient code.
func (s *PatientService) Search(ctx context.Context, query string, filter ports.ListPatientsFilter) (*ports.PatientPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.NewFieldValidationError(map[string]string{"query": "query is required"})
	}
	filter.Search = query
	return s.list(ctx, filter)
}

func (s *PatientService) list(ctx context.Context, filter ports.ListPatientsFilter) (*ports.PatientPage, error) {
	if filter.Page < 0 {
		filter.Page = 0
	}
	if filter.Size <= 0 {
		filter.Size = defaultPageSize
	}
	if filter.Size > maxPageSize {
		filter.Size = maxPageSize
	}
	if filter.SortBy == "" {
		filter.SortBy = ports.PatientSortID
	}
	if _, ok := patientSortFields[filter.SortBy]; !ok {
		return nil, domain.NewValidationError("Invalid sort field: " + filter.SortBy)
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	if items == nil {
		items = []*domain.Patient{}
	}

	totalPages := int(total) / filter.Size
	if int(total)%filter.Size != 0 {
		totalPages++
	}

	return &ports.PatientPage{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Size:       filter.Size,
		TotalPages: totalPages,
	}, nil
}

func (s *PatientService) GetByID(ctx context.Context, id int64) (*domain.Patient, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrPatientNotFound) {
			return nil, domain.NewNotFoundError(fmt.Sprintf("Patient not found with ID: %d", id))
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return p, nil
}

func (s *PatientService) GetByCode(ctx context.Context, code string) (*domain.Patient, error) {
	p, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrPatientNotFound) {
			return nil, domain.NewNotFoundError("Patient not found with code: " + code)
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return p, nil
}

// Update applies the non-nil fields of input. Phone and email uniqueness is
// only re-checked when the value actually changes.
func (s *PatientService) Update(ctx context.Context, id int64, input ports.UpdatePatientInput) (*domain.Patient, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()

	if input.FullName != nil {
		p.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Gender != nil {
		p.Gender = *input.Gender
	}
	if input.DateOfBirth != nil {
		if input.DateOfBirth.After(now) {
			return nil, domain.NewValidationError(msgDateOfBirthFuture)
		}
		p.DateOfBirth = input.DateOfBirth.UTC()
	}
	if input.PhoneNumber != nil {
		phone := strings.TrimSpace(*input.PhoneNumber)
		if phone != p.PhoneNumber {
			exists, err := s.repo.ExistsByPhone(ctx, phone)
			if err != nil {
				return nil, fmt.Errorf("update patient: check phone: %w", err)
			}
			if exists {
				return nil, domain.NewValidationError(msgPhoneExists)
			}
		}
		p.PhoneNumber = phone
	}
	if input.Email != nil {
		email := domain.NormalizeEmail(*input.Email)
		if email != "" && email != p.Email {
			exists, err := s.repo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("update patient: check email: %w", err)
			}
			if exists {
				return nil, domain.NewValidationError(msgEmailExists)
			}
		}
		p.Email = email
	}
	if input.Address != nil {
		p.Address = *input.Address
	}
	if input.BloodGroup != nil {
		p.BloodGroup = *input.BloodGroup
	}
	if input.ChronicDiseases != nil {
		p.ChronicDiseases = *input.ChronicDiseases
	}
	if input.Allergies != nil {
		p.Allergies = *input.Allergies
	}
	if input.EmergencyContactName != nil {
		p.EmergencyContactName = *input.EmergencyContactName
	}
	if input.EmergencyContactPhone != nil {
		p.EmergencyContactPhone = *input.EmergencyContactPhone
	}
	p.UpdatedAt = now

	if err := s.save(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("patient_id", id).Msg("patient updated")
	return p, nil
}

// Deactivate marks the patient inactive. Records are never deleted.
func (s *PatientService) Deactivate(ctx context.Context, id int64) error {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	p.Active = false
	p.UpdatedAt = s.now().UTC()

	if err := s.save(ctx, p); err != nil {
		return err
	}
	s.logger.Info().Int64("patient_id", id).Msg("patient deactivated")
	return nil
}

func (s *PatientService) save(ctx context.Context, p *domain.Patient) error {
	err := s.repo.Update(ctx, p)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrPatientNotFound):
		return domain.NewNotFoundError(fmt.Sprintf("Patient not found with ID: %d", p.ID))
	case errors.Is(err, domain.ErrDuplicatePhone):
		return domain.NewValidationError(msgPhoneExists)
	case errors.Is(err, domain.ErrDuplicateEmail):
		return domain.NewValidationError(msgEmailExists)
	default:
		return fmt.Errorf("save patient: %w", err)
	}
}
