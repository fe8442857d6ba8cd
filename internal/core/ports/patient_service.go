package ports

import (
	"context"
	"time"

	"github.com/haripriya/clinic-backend/internal/core/domain"
)

// CreatePatientInput carries the fields of a new patient record.
type CreatePatientInput struct {
	FullName              string
	Gender                domain.Gender
	DateOfBirth           time.Time
	PhoneNumber           string
	Email                 string
	Address               string
	BloodGroup            domain.BloodGroup
	ChronicDiseases       string
	Allergies             string
	EmergencyContactName  string
	EmergencyContactPhone string
}

// UpdatePatientInput is a partial update; nil fields are left unchanged.
type UpdatePatientInput struct {
	FullName              *string
	Gender                *domain.Gender
	DateOfBirth           *time.Time
	PhoneNumber           *string
	Email                 *string
	Address               *string
	BloodGroup            *domain.BloodGroup
	ChronicDiseases       *string
	Allergies             *string
	EmergencyContactName  *string
	EmergencyContactPhone *string
}

// PatientPage is one page of a patient list.
type PatientPage struct {
	Items      []*domain.Patient
	Total      int64
	Page       int
	Size       int
	TotalPages int
}

type PatientService interface {
	Create(ctx context.Context, input CreatePatientInput) (*domain.Patient, error)
	List(ctx context.Context, filter ListPatientsFilter) (*PatientPage, error)
	Search(ctx context.Context, query string, filter ListPatientsFilter) (*PatientPage, error)
	GetByID(ctx context.Context, id int64) (*domain.Patient, error)
	GetByCode(ctx context.Context, code string) (*domain.Patient, error)
	Update(ctx context.Context, id int64, input UpdatePatientInput) (*domain.Patient, error)
	Deactivate(ctx context.Context, id int64) error
}
