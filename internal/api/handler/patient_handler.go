package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/haripriya/clinic-backend/internal/api/metrics"
	"github.com/haripriya/clinic-backend/internal/core/domain"
	"github.com/haripriya/clinic-backend/internal/core/ports"
)

type PatientHandler struct {
	patientService ports.PatientService
	now            func() time.Time
}

func NewPatientHandler(patientService ports.PatientService) *PatientHandler {
	return &PatientHandler{patientService: patientService, now: time.Now}
}

// Create registers a new patient.
//
// @Summary      Create patient
// @Tags         patients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPatientRequest  true  "Patient details"
// @Success      201   {object}  patientResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Router       /api/patients [post]
func (h *PatientHandler) Create(c echo.Context) error {
	var req createPatientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	input, err := toCreatePatientInput(req)
	if err != nil {
		return err
	}

	patient, err := h.patientService.Create(c.Request().Context(), input)
	if err != nil {
		return err
	}
	metrics.PatientsCreatedTotal.Inc()

	return respond(c, http.StatusCreated, "Patient created successfully", toPatientResponse(patient, h.now()))
}

// List returns a page of patients.
//
// @Summary      List patients
// @Tags         patients
// @Produce      json
// @Security     BearerAuth
// @Param        page           query     int     false  "Page number (0-based)"
// @Param        size           query     int     false  "Page size (max 100)"
// @Param        sortBy         query     string  false  "Sort field"  Enums(id, fullName, patientCode, dateOfBirth, createdAt)
// @Param        sortDirection  query     string  false  "Sort direction"  Enums(ASC, DESC)
// @Param        isActive       query     bool    false  "Filter by active flag"
// @Success      200            {object}  patientPageResponse
// @Failure      400            {object}  map[string]any
// @Router       /api/patients [get]
func (h *PatientHandler) List(c echo.Context) error {
	filter, err := parseListFilter(c)
	if err != nil {
		return err
	}

	page, err := h.patientService.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Patients retrieved successfully", toPatientPageResponse(page, h.now()))
}

// Search matches patients by name, phone number or patient code.
//
// @Summary      Search patients
// @Tags         patients
// @Produce      json
// @Security     BearerAuth
// @Param        query  query     string  true   "Search text"
// @Param        page   query     int     false  "Page number (0-based)"
// @Param        size   query     int     false  "Page size (max 100)"
// @Success      200    {object}  patientPageResponse
// @Failure      400    {object}  map[string]any
// @Router       /api/patients/search [get]
func (h *PatientHandler) Search(c echo.Context) error {
	filter, err := parseListFilter(c)
	if err != nil {
		return err
	}

	page, err := h.patientService.Search(c.Request().Context(), c.QueryParam("query"), filter)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Search results retrieved successfully", toPatientPageResponse(page, h.now()))
}

// Get returns a patient by numeric id.
//
// @Summary      Get patient
// @Tags         patients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Patient ID"
// @Success      200  {object}  patientResponse
// @Failure      404  {object}  map[string]any
// @Router       /api/patients/{id} [get]
func (h *PatientHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	patient, err := h.patientService.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Patient retrieved successfully", toPatientResponse(patient, h.now()))
}

// GetByCode returns a patient by its PAT-YYYYMMDD-NNNN code.
//
// @Summary      Get patient by code
// @Tags         patients
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      string  true  "Patient code"
// @Success      200   {object}  patientResponse
// @Failure      404   {object}  map[string]any
// @Router       /api/patients/code/{code} [get]
func (h *PatientHandler) GetByCode(c echo.Context) error {
	patient, err := h.patientService.GetByCode(c.Request().Context(), c.Param("code"))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Patient retrieved successfully", toPatientResponse(patient, h.now()))
}

// Update applies a partial update to a patient.
//
// @Summary      Update patient
// @Tags         patients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                   true  "Patient ID"
// @Param        body  body      updatePatientRequest  true  "Fields to change"
// @Success      200   {object}  patientResponse
// @Failure      400   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Router       /api/patients/{id} [put]
func (h *PatientHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req updatePatientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	input, err := toUpdatePatientInput(req)
	if err != nil {
		return err
	}

	patient, err := h.patientService.Update(c.Request().Context(), id, input)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Patient updated successfully", toPatientResponse(patient, h.now()))
}

// Deactivate marks a patient inactive.
//
// @Summary      Deactivate patient
// @Tags         patients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Patient ID"
// @Success      200  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /api/patients/{id} [delete]
func (h *PatientHandler) Deactivate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.patientService.Deactivate(c.Request().Context(), id); err != nil {
		return err
	}
	metrics.PatientsDeactivatedTotal.Inc()

	return respond(c, http.StatusOK, "Patient deactivated successfully", nil)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewFieldValidationError(map[string]string{"id": "id must be a positive integer"})
	}
	return id, nil
}

// parseListFilter reads paging and sorting query parameters. Sorting is
// descending unless sortDirection=ASC.
func parseListFilter(c echo.Context) (ports.ListPatientsFilter, error) {
	filter := ports.ListPatientsFilter{
		SortBy:   c.QueryParam("sortBy"),
		SortDesc: !strings.EqualFold(c.QueryParam("sortDirection"), "ASC"),
	}
	fields := map[string]string{}

	if v := c.QueryParam("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fields["page"] = "page must be a number"
		}
		filter.Page = n
	}
	if v := c.QueryParam("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fields["size"] = "size must be a number"
		}
		filter.Size = n
	}
	if v := c.QueryParam("isActive"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			fields["isActive"] = "isActive must be true or false"
		} else {
			filter.Active = &b
		}
	}

	if len(fields) > 0 {
		return ports.ListPatientsFilter{}, domain.NewFieldValidationError(fields)
	}
	return filter, nil
}
