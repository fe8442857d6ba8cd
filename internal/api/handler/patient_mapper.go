package handler

import (
	"time"

	"github.com/haripriya/clinic-backend/internal/core/domain"
	"github.com/haripriya/clinic-backend/internal/core/ports"
)

// parseDate parses a validated yyyy-mm-dd date as UTC midnight.
func parseDate(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, domain.NewFieldValidationError(map[string]string{
			field: field + " must be a date in the format " + dateLayout,
		})
	}
	return t, nil
}

func toCreatePatientInput(req createPatientRequest) (ports.CreatePatientInput, error) {
	dob, err := parseDate("dateOfBirth", req.DateOfBirth)
	if err != nil {
		return ports.CreatePatientInput{}, err
	}
	return ports.CreatePatientInput{
		FullName:              req.FullName,
		Gender:                domain.Gender(req.Gender),
		DateOfBirth:           dob,
		PhoneNumber:           req.PhoneNumber,
		Email:                 req.Email,
		Address:               req.Address,
		BloodGroup:            domain.BloodGroup(req.BloodGroup),
		ChronicDiseases:       req.ChronicDiseases,
		Allergies:             req.Allergies,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
	}, nil
}

func toUpdatePatientInput(req updatePatientRequest) (ports.UpdatePatientInput, error) {
	in := ports.UpdatePatientInput{
		FullName:              req.FullName,
		PhoneNumber:           req.PhoneNumber,
		Email:                 req.Email,
		Address:               req.Address,
		ChronicDiseases:       req.ChronicDiseases,
		Allergies:             req.Allergies,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
	}
	if req.Gender != nil {
		g := domain.Gender(*req.Gender)
		in.Gender = &g
	}
	if req.BloodGroup != nil {
		bg := domain.BloodGroup(*req.BloodGroup)
		in.BloodGroup = &bg
	}
	if req.DateOfBirth != nil {
		dob, err := parseDate("dateOfBirth", *req.DateOfBirth)
		if err != nil {
			return ports.UpdatePatientInput{}, err
		}
		in.DateOfBirth = &dob
	}
	return in, nil
}
