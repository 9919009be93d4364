package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/tellerdesk/internal/model"
)

func requestWithIdentity(role model.Role) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	identity := &model.Identity{UserID: "user-1", Email: "tesfaye@dashenbank.com", Role: role}
	return req.WithContext(ContextWithIdentity(req.Context(), identity))
}

func TestRequireRoleMiddleware_AdminRequired(t *testing.T) {
	tests := []struct {
		name       string
		role       model.Role
		wantStatus int
	}{
		{"admin passes", model.RoleAdmin, http.StatusOK},
		{"user denied", model.RoleUser, http.StatusForbidden},
		{"banned denied", model.RoleBanned, http.StatusForbidden},
	}

	mw := NewRequireRoleMiddleware(model.RoleAdmin)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, requestWithIdentity(tt.role))

			if w.Result().StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Result().StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestRequireRoleMiddleware_UserRequired_BannedDenied(t *testing.T) {
	mw := NewRequireRoleMiddleware(model.RoleUser)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithIdentity(model.RoleBanned))

	if w.Result().StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusForbidden)
	}
}

func TestRequireRoleMiddleware_NoIdentity_Returns401(t *testing.T) {
	mw := NewRequireRoleMiddleware(model.RoleUser)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}
