package ports

import (
	"context"

	"github.com/haripriya/clinic-backend/internal/core/domain"
)

// ListPatientsFilter carries paging, sorting and filtering for patient lists.
type ListPatientsFilter struct {
	Search   string // optional: case-insensitive substring of full name, phone or patient code
	Active   *bool  // optional: nil = any
	Page     int    // 0-based
	Size     int
	SortBy   string // one of the PatientSort* fields
	SortDesc bool
}

const (
	PatientSortID          = "id"
	PatientSortFullName    = "fullName"
	PatientSortPatientCode = "patientCode"
	PatientSortDateOfBirth = "dateOfBirth"
	PatientSortCreatedAt   = "createdAt"
)

// PatientRepository persists patient records. Uniqueness of patient code,
// phone number and non-empty email is enforced by the store.
type PatientRepository interface {
	Create(ctx context.Context, p *domain.Patient) (*domain.Patient, error)
	Update(ctx context.Context, p *domain.Patient) error
	// FindByID and FindByCode return domain.ErrPatientNotFound when nothing matches.
	FindByID(ctx context.Context, id int64) (*domain.Patient, error)
	FindByCode(ctx context.Context, code string) (*domain.Patient, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	// List returns one page of patients matching filter and the total count.
	List(ctx context.Context, filter ListPatientsFilter) ([]*domain.Patient, int64, error)
}
