package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/tellerdesk/internal/middleware"
	"github.com/hitoshi/tellerdesk/internal/model"
	"github.com/hitoshi/tellerdesk/internal/staff"
)

// StaffServiceInterface は行員管理ハンドラーが必要とするサービスインターフェース。
type StaffServiceInterface interface {
	Register(ctx context.Context, actor *model.Identity, input staff.RegisterInput) (*model.User, error)
	SetRoleByEmail(ctx context.Context, actor *model.Identity, email, role string) (*model.User, error)
	SetRole(ctx context.Context, actor *model.Identity, id, role string) (*model.User, error)
	Delete(ctx context.Context, actor *model.Identity, id string) error
	List(ctx context.Context, actor *model.Identity) ([]*model.User, error)
	Get(ctx context.Context, actor *model.Identity, id string) (*model.User, error)
}

// UserHandler は行員管理のHTTPハンドラー。
type UserHandler struct {
	service StaffServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service StaffServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// registerRequest は行員登録リクエストのボディ。
type registerRequest struct {
	FirstName  string `json:"firstName"`
	MiddleName string `json:"middleName"`
	LastName   string `json:"lastName"`
	Role       string `json:"role"`
}

// setRoleRequest はロール変更リクエストのボディ。
type setRoleRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// updateRoleRequest はID指定のロール変更リクエストのボディ。
type updateRoleRequest struct {
	Role string `json:"role"`
}

// actorFromRequest はリクエストコンテキストから操作者のアイデンティティを取得する。
// セッションミドルウェアを通過していない場合はnilを返す。
func actorFromRequest(r *http.Request) *model.Identity {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		return nil
	}
	return identity
}

// Register は新しい行員アカウントを登録する。
// POST /api/auth/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	firstName := req.FirstName
	if req.MiddleName != "" {
		firstName = req.FirstName + " " + req.MiddleName
	}

	user, err := h.service.Register(r.Context(), actorFromRequest(r), staff.RegisterInput{
		FirstName: firstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// SetRole はメールアドレス指定で行員のロールを変更する。
// POST /api/set-role
func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	var req setRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	if req.Email == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("メールアドレスは必須です"))
		return
	}

	user, err := h.service.SetRoleByEmail(r.Context(), actorFromRequest(r), req.Email, req.Role)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// ListUsers は全行員を返す。
// GET /api/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context(), actorFromRequest(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]userResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, toUserResponse(u))
	}

	writeJSON(w, http.StatusOK, responses)
}

// GetUser はID指定で行員を返す。
// GET /api/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.service.Get(r.Context(), actorFromRequest(r), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// UpdateUserRole はID指定で行員のロールを変更する。
// PATCH /api/users/{id}
func (h *UserHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	user, err := h.service.SetRole(r.Context(), actorFromRequest(r), id, req.Role)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// DeleteUser は行員アカウントを削除する。
// DELETE /api/users/{id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), actorFromRequest(r), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
