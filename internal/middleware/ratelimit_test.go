package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/tellerdesk/internal/model"
)

func newTestRateLimiter(generalBurst, uploadBurst int) *RateLimiter {
	return NewRateLimiter(RateLimiterConfig{
		GeneralRate:     rate.Limit(0.001), // テスト中の補充をほぼ無効化
		GeneralBurst:    generalBurst,
		UploadRate:      rate.Limit(0.001),
		UploadBurst:     uploadBurst,
		CleanupInterval: time.Hour,
	})
}

func TestGeneralMiddleware_WithinBurst_Allows(t *testing.T) {
	rl := newTestRateLimiter(3, 1)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestWithIdentity(model.RoleUser))
		if w.Result().StatusCode != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, w.Result().StatusCode, http.StatusOK)
		}
	}
}

func TestGeneralMiddleware_BurstExceeded_Returns429(t *testing.T) {
	rl := newTestRateLimiter(2, 1)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestWithIdentity(model.RoleUser))
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithIdentity(model.RoleUser))

	if w.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusTooManyRequests)
	}
	if w.Result().Header.Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestUploadMiddleware_IndependentOfGeneralLimit(t *testing.T) {
	rl := newTestRateLimiter(1, 2)
	defer rl.Stop()

	generalHandler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	uploadHandler := rl.UploadMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// 一般APIの上限を使い切る
	w := httptest.NewRecorder()
	generalHandler.ServeHTTP(w, requestWithIdentity(model.RoleUser))
	w = httptest.NewRecorder()
	generalHandler.ServeHTTP(w, requestWithIdentity(model.RoleUser))
	if w.Result().StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected general limit exhausted, got %d", w.Result().StatusCode)
	}

	// アップロードは独立して受け付けられること
	w = httptest.NewRecorder()
	uploadHandler.ServeHTTP(w, requestWithIdentity(model.RoleUser))
	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("upload status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

func TestRateLimiter_NoIdentity_Returns401(t *testing.T) {
	rl := newTestRateLimiter(10, 10)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestRateLimiter_TracksPerUserEntries(t *testing.T) {
	rl := newTestRateLimiter(10, 10)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, userID := range []string{"user-a", "user-b"} {
		req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
		identity := &model.Identity{UserID: userID, Role: model.RoleUser}
		req = req.WithContext(ContextWithIdentity(req.Context(), identity))
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	if got := rl.GeneralLimiterCount(); got != 2 {
		t.Errorf("general limiter count = %d, want 2", got)
	}
}
