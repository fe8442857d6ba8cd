package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestDashboardHandler(t *testing.T) {
	h := NewDashboardHandler()
	tests := []struct {
		name    string
		handle  echo.HandlerFunc
		message string
		access  string
	}{
		{"admin", h.Admin, "Welcome to Admin Dashboard", "Full system access"},
		{"doctor", h.Doctor, "Welcome to Doctor Dashboard", "Patient records and prescriptions"},
		{"receptionist", h.Receptionist, "Welcome to Receptionist Dashboard", "Appointments and billing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho()
			rec := httptest.NewRecorder()
			if err := tt.handle(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			_, data := decodeEnvelope(t, rec)
			if data["message"] != tt.message || data["access"] != tt.access {
				t.Fatalf("unexpected payload: %+v", data)
			}
		})
	}
}
