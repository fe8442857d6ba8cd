package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/haripriya/clinic-backend/internal/core/domain"
	"github.com/haripriya/clinic-backend/internal/core/ports"
)

type stubPatientService struct {
	created    ports.CreatePatientInput
	updated    ports.UpdatePatientInput
	lastFilter ports.ListPatientsFilter
	lastQuery  string
	patient    *domain.Patient
	err        error
	deactivate int64
}

func (s *stubPatientService) Create(_ context.Context, in ports.CreatePatientInput) (*domain.Patient, error) {
	s.created = in
	return s.patient, s.err
}

func (s *stubPatientService) List(_ context.Context, f ports.ListPatientsFilter) (*ports.PatientPage, error) {
	s.lastFilter = f
	return s.page(f), s.err
}

func (s *stubPatientService) Search(_ context.Context, q string, f ports.ListPatientsFilter) (*ports.PatientPage, error) {
	s.lastQuery = q
	s.lastFilter = f
	return s.page(f), s.err
}

func (s *stubPatientService) GetByID(_ context.Context, id int64) (*domain.Patient, error) {
	if s.patient == nil || s.patient.ID != id {
		return nil, domain.NewNotFoundError("Patient not found")
	}
	return s.patient, nil
}

func (s *stubPatientService) GetByCode(_ context.Context, code string) (*domain.Patient, error) {
	if s.patient == nil || s.patient.PatientCode != code {
		return nil, domain.NewNotFoundError("Patient not found with code: " + code)
	}
	return s.patient, nil
}

func (s *stubPatientService) Update(_ context.Context, _ int64, in ports.UpdatePatientInput) (*domain.Patient, error) {
	s.updated = in
	return s.patient, s.err
}

func (s *stubPatientService) Deactivate(_ context.Context, id int64) error {
	s.deactivate = id
	return s.err
}

func (s *stubPatientService) page(f ports.ListPatientsFilter) *ports.PatientPage {
	items := []*domain.Patient{}
	if s.patient != nil {
		items = append(items, s.patient)
	}
	return &ports.PatientPage{Items: items, Total: int64(len(items)), Page: f.Page, Size: 10, TotalPages: 1}
}

func samplePatient() *domain.Patient {
	return &domain.Patient{
		ID:          12,
		PatientCode: "PAT-20250314-0042",
		FullName:    "Jane Roe",
		Gender:      domain.GenderFemale,
		DateOfBirth: time.Date(1990, 6, 1, 0, 0, 0, 0, time.UTC),
		PhoneNumber: "5550001111",
		Active:      true,
	}
}

func newTestPatientHandler(svc ports.PatientService) *PatientHandler {
	h := NewPatientHandler(svc)
	h.now = func() time.Time { return time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC) }
	return h
}

// ── Create ────────────────────────────────────────────────────────────────────

func TestPatientHandler_Create(t *testing.T) {
	e := newTestEcho()
	svc := &stubPatientService{patient: samplePatient()}
	h := newTestPatientHandler(svc)

	body := `{"fullName":"Jane Roe","gender":"FEMALE","dateOfBirth":"1990-06-01","phoneNumber":"5550001111","bloodGroup":"O_NEGATIVE"}`
	c, rec := jsonContext(e, http.MethodPost, "/api/patients", body)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if !svc.created.DateOfBirth.Equal(time.Date(1990, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date of birth: %v", svc.created.DateOfBirth)
	}
	if svc.created.BloodGroup != domain.BloodGroupONegative {
		t.Fatalf("unexpected blood group: %s", svc.created.BloodGroup)
	}

	msg, data := decodeEnvelope(t, rec)
	if msg != "Patient created successfully" {
		t.Fatalf("unexpected message %q", msg)
	}
	if data["patientCode"] != "PAT-20250314-0042" || data["dateOfBirth"] != "1990-06-01" {
		t.Fatalf("unexpected payload: %+v", data)
	}
	if data["age"] != float64(34) {
		t.Fatalf("expected age 34, got %v", data["age"])
	}
}

func TestPatientHandler_Create_Validation(t *testing.T) {
	e := newTestEcho()
	h := newTestPatientHandler(&stubPatientService{})

	body := `{"fullName":"J","gender":"UNKNOWN","dateOfBirth":"01/06/1990","phoneNumber":"12ab"}`
	c, _ := jsonContext(e, http.MethodPost, "/api/patients", body)
	derr := requireKind(t, h.Create(c), domain.ErrValidationFailed)
	for _, field := range []string{"fullName", "gender", "dateOfBirth", "phoneNumber"} {
		if _, ok := derr.Fields[field]; !ok {
			t.Fatalf("expected %s field error, got %+v", field, derr.Fields)
		}
	}
}

// ── List / Search ─────────────────────────────────────────────────────────────

func TestPatientHandler_List_ParsesQuery(t *testing.T) {
	e := newTestEcho()
	svc := &stubPatientService{patient: samplePatient()}
	h := newTestPatientHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/patients?page=2&size=5&sortBy=fullName&sortDirection=asc&isActive=true", nil)
	rec := httptest.NewRecorder()
	if err := h.List(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	f := svc.lastFilter
	if f.Page != 2 || f.Size != 5 || f.SortBy != "fullName" || f.SortDesc {
		t.Fatalf("unexpected filter: %+v", f)
	}
	if f.Active == nil || !*f.Active {
		t.Fatalf("expected active filter true")
	}

	msg, data := decodeEnvelope(t, rec)
	if msg != "Patients retrieved successfully" {
		t.Fatalf("unexpected message %q", msg)
	}
	if content := data["content"].([]any); len(content) != 1 {
		t.Fatalf("expected one patient, got %d", len(content))
	}
}

func TestPatientHandler_List_DefaultsToDescending(t *testing.T) {
	e := newTestEcho()
	svc := &stubPatientService{}
	h := newTestPatientHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
	if err := h.List(e.NewContext(req, httptest.NewRecorder())); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !svc.lastFilter.SortDesc || svc.lastFilter.Active != nil {
		t.Fatalf("unexpected filter: %+v", svc.lastFilter)
	}
}

func TestPatientHandler_List_BadQuery(t *testing.T) {
	e := newTestEcho()
	h := newTestPatientHandler(&stubPatientService{})

	req := httptest.NewRequest(http.MethodGet, "/api/patients?page=x&isActive=maybe", nil)
	derr := requireKind(t, h.List(e.NewContext(req, httptest.NewRecorder())), domain.ErrValidationFailed)
	if len(derr.Fields) != 2 {
		t.Fatalf("expected two field errors, got %+v", derr.Fields)
	}
}

func TestPatientHandler_Search(t *testing.T) {
	e := newTestEcho()
	svc := &stubPatientService{patient: samplePatient()}
	h := newTestPatientHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/patients/search?query=roe", nil)
	rec := httptest.NewRecorder()
	if err := h.Search(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.lastQuery != "roe" {
		t.Fatalf("expected query roe, got %q", svc.lastQuery)
	}
	if msg, _ := decodeEnvelope(t, rec); msg != "Search results retrieved successfully" {
		t.Fatalf("unexpected message %q", msg)
	}
}

// ── Get / Update / Deactivate ─────────────────────────────────────────────────

func TestPatientHandler_Get(t *testing.T) {
	e := newTestEcho()
	h := newTestPatientHandler(&stubPatientService{patient: samplePatient()})

	req := httptest.NewRequest(http.MethodGet, "/api/patients/12", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("12")

	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if _, data := decodeEnvelope(t, rec); data["fullName"] != "Jane Roe" {
		t.Fatalf("unexpected payload: %+v", data)
	}
}

func TestPatientHandler_Get_InvalidID(t *testing.T) {
	e := newTestEcho()
	h := newTestPatientHandler(&stubPatientService{})

	for _, id := range []string{"abc", "0", "-3"} {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(id)
		requireKind(t, h.Get(c), domain.ErrValidationFailed)
	}
}

func TestPatientHandler_GetByCode_NotFound(t *testing.T) {
	e := newTestEcho()
	h := newTestPatientHandler(&stubPatientService{patient: samplePatient()})

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("code")
	c.SetParamValues("PAT-20250314-9999")
	requireKind(t, h.GetByCode(c), domain.ErrNotFound)
}

func TestPatientHandler_Update_Partial(t *testing.T) {
	e := newTestEcho()
	svc := &stubPatientService{patient: samplePatient()}
	h := newTestPatientHandler(svc)

	c, rec := jsonContext(e, http.MethodPut, "/api/patients/12", `{"address":"221B Baker St","dateOfBirth":"1991-02-03"}`)
	c.SetParamNames("id")
	c.SetParamValues("12")

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	in := svc.updated
	if in.Address == nil || *in.Address != "221B Baker St" {
		t.Fatalf("expected address set, got %+v", in.Address)
	}
	if in.DateOfBirth == nil || in.DateOfBirth.Year() != 1991 {
		t.Fatalf("expected date of birth set, got %v", in.DateOfBirth)
	}
	if in.FullName != nil || in.Gender != nil || in.PhoneNumber != nil {
		t.Fatalf("absent fields must stay nil: %+v", in)
	}
	if msg, _ := decodeEnvelope(t, rec); msg != "Patient updated successfully" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestPatientHandler_Deactivate(t *testing.T) {
	e := newTestEcho()
	svc := &stubPatientService{}
	h := newTestPatientHandler(svc)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/api/patients/12", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("12")

	if err := h.Deactivate(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.deactivate != 12 {
		t.Fatalf("expected patient 12 deactivated, got %d", svc.deactivate)
	}
	if msg, _ := decodeEnvelope(t, rec); msg != "Patient deactivated successfully" {
		t.Fatalf("unexpected message %q", msg)
	}
}
