package domain

import (
	"errors"
	"testing"
	"time"
)

func TestPatient_AgeAt(t *testing.T) {
	p := &Patient{DateOfBirth: time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC)}

	cases := []struct {
		at   time.Time
		want int
	}{
		{time.Date(2020, time.June, 14, 0, 0, 0, 0, time.UTC), 29},
		{time.Date(2020, time.June, 15, 0, 0, 0, 0, time.UTC), 30},
		{time.Date(2020, time.December, 1, 0, 0, 0, 0, time.UTC), 30},
		{time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC), 30},
	}
	for _, tc := range cases {
		if got := p.AgeAt(tc.at); got != tc.want {
			t.Errorf("AgeAt(%s) = %d, want %d", tc.at.Format("2006-01-02"), got, tc.want)
		}
	}

	if got := (&Patient{}).AgeAt(time.Now()); got != 0 {
		t.Errorf("expected 0 for missing date of birth, got %d", got)
	}
}

func TestRole_Valid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleDoctor, RoleReceptionist, RolePatient} {
		if !r.Valid() {
			t.Errorf("expected %s to be valid", r)
		}
	}
	if Role("admin").Valid() {
		t.Errorf("role names are case-sensitive")
	}
}

func TestPrincipal_HasAnyRole(t *testing.T) {
	p := Principal{Role: RoleDoctor}
	if !p.HasAnyRole(RoleAdmin, RoleDoctor) {
		t.Fatalf("doctor should match allow-set containing DOCTOR")
	}
	if p.HasAnyRole(RoleAdmin, RoleReceptionist) {
		t.Fatalf("doctor should not match ADMIN/RECEPTIONIST")
	}
	if p.HasAnyRole() {
		t.Fatalf("empty allow-set must deny")
	}
}

func TestError_UnwrapsKind(t *testing.T) {
	err := error(NewValidationError("Email already exists"))
	if err.Error() != "Email already exists" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected validation kind")
	}
	if !errors.Is(ErrUserNotFound, ErrNotFound) {
		t.Fatalf("ErrUserNotFound should be a not-found error")
	}
}
