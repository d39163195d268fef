package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newRoleContext(userID string, roles []string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithActor(req.Context(), userID, roles))
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error { return c.NoContent(http.StatusOK) }

func TestHasRole(t *testing.T) {
	tests := []struct {
		name     string
		roles    []string
		required []string
		want     bool
	}{
		{"exact match", []string{RolePharmacist}, []string{RolePharmacist}, true},
		{"one of many", []string{RoleNurse}, []string{RoleDoctor, RoleNurse}, true},
		{"admin bypass", []string{RoleAdmin}, []string{RolePharmacist}, true},
		{"missing", []string{RolePatient}, []string{RoleDoctor}, false},
		{"no roles", nil, []string{RoleDoctor}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasRole(tt.roles, tt.required...); got != tt.want {
				t.Errorf("HasRole(%v, %v) = %v, want %v", tt.roles, tt.required, got, tt.want)
			}
		})
	}
}

func TestRequireRole_Allows(t *testing.T) {
	c, rec := newRoleContext("u1", []string{RolePharmacist})
	if err := RequireRole(RolePharmacist)(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRole_Forbidden(t *testing.T) {
	c, _ := newRoleContext("u1", []string{RoleNurse})
	err := RequireRole(RolePharmacist)(okHandler)(c)
	expectStatus(t, err, http.StatusForbidden)
}

func TestRequireSelfOrRole(t *testing.T) {
	tests := []struct {
		name    string
		userID  string
		roles   []string
		param   string
		allowed bool
	}{
		{"patient reads own invoice", "p-1", []string{RolePatient}, "p-1", true},
		{"patient reads another invoice", "p-1", []string{RolePatient}, "p-2", false},
		{"doctor reads any", "d-1", []string{RoleDoctor}, "p-2", true},
		{"nurse denied", "n-1", []string{RoleNurse}, "p-2", false},
		{"self without patient role", "p-2", []string{RoleNurse}, "p-2", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newRoleContext(tt.userID, tt.roles)
			c.SetParamNames("id")
			c.SetParamValues(tt.param)

			err := RequireSelfOrRole("id", RoleDoctor)(okHandler)(c)
			if tt.allowed && err != nil {
				t.Errorf("expected access, got %v", err)
			}
			if !tt.allowed {
				expectStatus(t, err, http.StatusForbidden)
			}
		})
	}
}
