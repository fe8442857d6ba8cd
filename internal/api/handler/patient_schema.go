package handler

import (
	"time"

	"github.com/haripriya/clinic-backend/internal/core/domain"
	"github.com/haripriya/clinic-backend/internal/core/ports"
)

const dateLayout = "2006-01-02"

type createPatientRequest struct {
	FullName              string `json:"fullName" validate:"required,min=2,max=100"`
	Gender                string `json:"gender" validate:"required,oneof=MALE FEMALE OTHER"`
	DateOfBirth           string `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	PhoneNumber           string `json:"phoneNumber" validate:"required,numeric,min=10,max=15"`
	Email                 string `json:"email,omitempty" validate:"omitempty,email,max=100"`
	Address               string `json:"address,omitempty" validate:"max=500"`
	BloodGroup            string `json:"bloodGroup,omitempty" validate:"omitempty,oneof=A_POSITIVE A_NEGATIVE B_POSITIVE B_NEGATIVE AB_POSITIVE AB_NEGATIVE O_POSITIVE O_NEGATIVE"`
	ChronicDiseases       string `json:"chronicDiseases,omitempty"`
	Allergies             string `json:"allergies,omitempty"`
	EmergencyContactName  string `json:"emergencyContactName,omitempty" validate:"max=100"`
	EmergencyContactPhone string `json:"emergencyContactPhone,omitempty" validate:"omitempty,numeric,min=10,max=15"`
}

// updatePatientRequest is a partial update: absent fields are left unchanged.
type updatePatientRequest struct {
	FullName              *string `json:"fullName,omitempty" validate:"omitempty,min=2,max=100"`
	Gender                *string `json:"gender,omitempty" validate:"omitempty,oneof=MALE FEMALE OTHER"`
	DateOfBirth           *string `json:"dateOfBirth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PhoneNumber           *string `json:"phoneNumber,omitempty" validate:"omitempty,numeric,min=10,max=15"`
	Email                 *string `json:"email,omitempty" validate:"omitempty,email,max=100"`
	Address               *string `json:"address,omitempty" validate:"omitempty,max=500"`
	BloodGroup            *string `json:"bloodGroup,omitempty" validate:"omitempty,oneof=A_POSITIVE A_NEGATIVE B_POSITIVE B_NEGATIVE AB_POSITIVE AB_NEGATIVE O_POSITIVE O_NEGATIVE"`
	ChronicDiseases       *string `json:"chronicDiseases,omitempty"`
	Allergies             *string `json:"allergies,omitempty"`
	EmergencyContactName  *string `json:"emergencyContactName,omitempty" validate:"omitempty,max=100"`
	EmergencyContactPhone *string `json:"emergencyContactPhone,omitempty" validate:"omitempty,numeric,min=10,max=15"`
}

type patientResponse struct {
	ID                    int64     `json:"id"`
	PatientCode           string    `json:"patientCode"`
	FullName              string    `json:"fullName"`
	Gender                string    `json:"gender"`
	DateOfBirth           string    `json:"dateOfBirth"`
	Age                   int       `json:"age"`
	PhoneNumber           string    `json:"phoneNumber"`
	Email                 string    `json:"email,omitempty"`
	Address               string    `json:"address,omitempty"`
	BloodGroup            string    `json:"bloodGroup,omitempty"`
	ChronicDiseases       string    `json:"chronicDiseases,omitempty"`
	Allergies             string    `json:"allergies,omitempty"`
	EmergencyContactName  string    `json:"emergencyContactName,omitempty"`
	EmergencyContactPhone string    `json:"emergencyContactPhone,omitempty"`
	IsActive              bool      `json:"isActive"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

type patientPageResponse struct {
	Content       []patientResponse `json:"content"`
	Page          int               `json:"page"`
	Size          int               `json:"size"`
	TotalElements int64             `json:"totalElements"`
	TotalPages    int               `json:"totalPages"`
}

func toPatientResponse(p *domain.Patient, now time.Time) patientResponse {
	return patientResponse{
		ID:                    p.ID,
		PatientCode:           p.PatientCode,
		FullName:              p.FullName,
		Gender:                string(p.Gender),
		DateOfBirth:           p.DateOfBirth.Format(dateLayout),
		Age:                   p.AgeAt(now),
		PhoneNumber:           p.PhoneNumber,
		Email:                 p.Email,
		Address:               p.Address,
		BloodGroup:            string(p.BloodGroup),
		ChronicDiseases:       p.ChronicDiseases,
		Allergies:             p.Allergies,
		EmergencyContactName:  p.EmergencyContactName,
		EmergencyContactPhone: p.EmergencyContactPhone,
		IsActive:              p.Active,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

func toPatientPageResponse(page *ports.PatientPage, now time.Time) patientPageResponse {
	content := make([]patientResponse, 0, len(page.Items))
	for _, p := range page.Items {
		content = append(content, toPatientResponse(p, now))
	}
	return patientPageResponse{
		Content:       content,
		Page:          page.Page,
		Size:          page.Size,
		TotalElements: page.Total,
		TotalPages:    page.TotalPages,
	}
}
