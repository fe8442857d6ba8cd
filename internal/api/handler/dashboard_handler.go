package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// DashboardHandler serves the role landing pages. Access is decided entirely
// by the RBAC middleware in front of each route.
type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

type dashboardResponse struct {
	Message string `json:"message"`
	Access  string `json:"access"`
}

// Admin handles GET /api/admin/dashboard.
//
// @Summary      Admin dashboard
// @Tags         dashboards
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboardResponse
// @Failure      401  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Router       /api/admin/dashboard [get]
func (h *DashboardHandler) Admin(c echo.Context) error {
	return respond(c, http.StatusOK, "Admin dashboard data retrieved", dashboardResponse{
		Message: "Welcome to Admin Dashboard",
		Access:  "Full system access",
	})
}

// Doctor handles GET /api/doctor/dashboard.
//
// @Summary      Doctor dashboard
// @Tags         dashboards
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboardResponse
// @Failure      401  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Router       /api/doctor/dashboard [get]
func (h *DashboardHandler) Doctor(c echo.Context) error {
	return respond(c, http.StatusOK, "Doctor dashboard data retrieved", dashboardResponse{
		Message: "Welcome to Doctor Dashboard",
		Access:  "Patient records and prescriptions",
	})
}

// Receptionist handles GET /api/receptionist/dashboard.
//
// @Summary      Receptionist dashboard
// @Tags         dashboards
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboardResponse
// @Failure      401  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Router       /api/receptionist/dashboard [get]
func (h *DashboardHandler) Receptionist(c echo.Context) error {
	return respond(c, http.StatusOK, "Receptionist dashboard data retrieved", dashboardResponse{
		Message: "Welcome to Receptionist Dashboard",
		Access:  "Appointments and billing",
	})
}
