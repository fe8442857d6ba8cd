package domain

import "time"

// Gender of a patient.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// BloodGroup of a patient.
type BloodGroup string

const (
	BloodGroupAPositive  BloodGroup = "A_POSITIVE"
	BloodGroupANegative  BloodGroup = "A_NEGATIVE"
	BloodGroupBPositive  BloodGroup = "B_POSITIVE"
	BloodGroupBNegative  BloodGroup = "B_NEGATIVE"
	BloodGroupABPositive BloodGroup = "AB_POSITIVE"
	BloodGroupABNegative BloodGroup = "AB_NEGATIVE"
	BloodGroupOPositive  BloodGroup = "O_POSITIVE"
	BloodGroupONegative  BloodGroup = "O_NEGATIVE"
)

// Patient is a clinic patient record. Records are deactivated, never deleted.
type Patient struct {
	ID                    int64      `bson:"_id"`
	PatientCode           string     `bson:"patient_code"`
	FullName              string     `bson:"full_name"`
	Gender                Gender     `bson:"gender"`
	DateOfBirth           time.Time  `bson:"date_of_birth"`
	PhoneNumber           string     `bson:"phone_number"`
	Email                 string     `bson:"email,omitempty"`
	Address               string     `bson:"address,omitempty"`
	BloodGroup            BloodGroup `bson:"blood_group,omitempty"`
	ChronicDiseases       string     `bson:"chronic_diseases,omitempty"`
	Allergies             string     `bson:"allergies,omitempty"`
	EmergencyContactName  string     `bson:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string     `bson:"emergency_contact_phone,omitempty"`
	Active                bool       `bson:"is_active"`
	CreatedAt             time.Time  `bson:"created_at"`
	UpdatedAt             time.Time  `bson:"updated_at"`
}

// AgeAt returns the patient's age in whole years at t.
func (p *Patient) AgeAt(t time.Time) int {
	if p.DateOfBirth.IsZero() {
		return 0
	}
	dob := p.DateOfBirth.UTC()
	t = t.UTC()
	age := t.Year() - dob.Year()
	if t.Month() < dob.Month() || (t.Month() == dob.Month() && t.Day() < dob.Day()) {
		age--
	}
	return age
}
