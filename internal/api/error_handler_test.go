package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/haripriya/clinic-backend/internal/core/domain"
)

func renderError(t *testing.T, err error) (*httptest.ResponseRecorder, errorResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/patients/9", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v (%s)", err, rec.Body.String())
	}
	return rec, body
}

func TestErrorHandler_DomainKinds(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.NewAuthenticationError("Invalid email or password"), http.StatusUnauthorized},
		{&domain.Error{Kind: domain.ErrAuthorizationDenied, Message: "no"}, http.StatusForbidden},
		{domain.NewValidationError("Email already exists"), http.StatusBadRequest},
		{domain.NewNotFoundError("Patient not found with ID: 9"), http.StatusNotFound},
		{&domain.Error{Kind: domain.ErrTooManyAttempts, Message: "slow down"}, http.StatusTooManyRequests},
	}
	for _, tc := range cases {
		rec, body := renderError(t, tc.err)
		if rec.Code != tc.code || body.Status != tc.code {
			t.Errorf("%v: expected %d, got %d/%d", tc.err, tc.code, rec.Code, body.Status)
		}
		if body.Message != tc.err.Error() {
			t.Errorf("expected message %q, got %q", tc.err.Error(), body.Message)
		}
		if body.Error != http.StatusText(tc.code) {
			t.Errorf("expected error %q, got %q", http.StatusText(tc.code), body.Error)
		}
		if body.Path != "/api/patients/9" {
			t.Errorf("unexpected path %q", body.Path)
		}
		if body.Timestamp.IsZero() {
			t.Errorf("expected timestamp")
		}
	}
}

func TestErrorHandler_WrappedDomainError(t *testing.T) {
	err := fmt.Errorf("handler: %w", domain.NewNotFoundError("User not found with id: 3"))
	rec, body := renderError(t, err)
	if rec.Code != http.StatusNotFound || body.Message != "User not found with id: 3" {
		t.Fatalf("unexpected response %d %+v", rec.Code, body)
	}
}

func TestErrorHandler_FieldErrors(t *testing.T) {
	rec, body := renderError(t, domain.NewFieldValidationError(map[string]string{
		"email":    "email must be a valid email",
		"password": "password is required",
	}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body.Message != "Validation failed" || len(body.Errors) != 2 {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestErrorHandler_UnexpectedErrorIsSanitised(t *testing.T) {
	rec, body := renderError(t, errors.New("mongo: connection refused at 10.0.0.3"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body.Message != "An unexpected error occurred" {
		t.Fatalf("unexpected message %q", body.Message)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.3") {
		t.Fatalf("internal detail leaked: %s", rec.Body.String())
	}
}

func TestErrorHandler_EchoHTTPError(t *testing.T) {
	rec, body := renderError(t, echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"))
	if rec.Code != http.StatusMethodNotAllowed || body.Message != "Method Not Allowed" {
		t.Fatalf("unexpected response %d %+v", rec.Code, body)
	}
	if body.Errors != nil {
		t.Fatalf("expected no field errors")
	}
}
