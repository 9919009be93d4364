package staff

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/tellerdesk/internal/model"
	"github.com/hitoshi/tellerdesk/internal/repository"
)

// --- モック定義 ---

type mockUserRepo struct {
	findByIDFn          func(ctx context.Context, id string) (*model.User, error)
	findByEmailFn       func(ctx context.Context, email string) (*model.User, error)
	createFn            func(ctx context.Context, user *model.User) error
	listFn              func(ctx context.Context) ([]*model.User, error)
	updateRoleFn        func(ctx context.Context, id string, role model.Role) (*model.User, error)
	updateRoleByEmailFn func(ctx context.Context, email string, role model.Role) (*model.User, error)
	deleteByIDFn        func(ctx context.Context, id string) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]*model.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, id string, role model.Role) (*model.User, error) {
	if m.updateRoleFn != nil {
		return m.updateRoleFn(ctx, id, role)
	}
	return nil, nil
}

func (m *mockUserRepo) UpdateRoleByEmail(ctx context.Context, email string, role model.Role) (*model.User, error) {
	if m.updateRoleByEmailFn != nil {
		return m.updateRoleByEmailFn(ctx, email, role)
	}
	return nil, nil
}

func (m *mockUserRepo) UpdatePasswordHash(ctx context.Context, id string, passwordHash string) error {
	return nil
}

func (m *mockUserRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

type mockRevoker struct {
	revokedUserIDs []string
	err            error
}

func (m *mockRevoker) RevokeUserSessions(_ context.Context, userID string) error {
	if m.err != nil {
		return m.err
	}
	m.revokedUserIDs = append(m.revokedUserIDs, userID)
	return nil
}

// --- compile-time interface checks ---
var _ repository.UserRepository = (*mockUserRepo)(nil)
var _ SessionRevoker = (*mockRevoker)(nil)

func adminActor() *model.Identity {
	return &model.Identity{UserID: "admin-1", Email: "abebe@dashenbank.com", Role: model.RoleAdmin}
}

func userActor() *model.Identity {
	return &model.Identity{UserID: "user-1", Email: "tesfaye@dashenbank.com", Role: model.RoleUser}
}

func newTestService(repo repository.UserRepository, revoker SessionRevoker) *Service {
	return NewService(repo, revoker, ServiceConfig{EmailDomain: "dashenbank.com"})
}

func assertAPIErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Code != code {
		t.Errorf("error code = %q, want %q", apiErr.Code, code)
	}
}

// --- テスト ---

func TestRegister_DerivesEmailAndDefaultPassword(t *testing.T) {
	ctx := context.Background()

	var created *model.User
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}

	svc := newTestService(repo, &mockRevoker{})

	user, err := svc.Register(ctx, adminActor(), RegisterInput{
		FirstName: "Abel",
		LastName:  "Tesfaye",
		Role:      "USER",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if user.Email != "tesfaye@dashenbank.com" {
		t.Errorf("email = %q, want %q", user.Email, "tesfaye@dashenbank.com")
	}
	if user.Name != "Abel Tesfaye" {
		t.Errorf("name = %q, want %q", user.Name, "Abel Tesfaye")
	}
	if user.Role != model.RoleUser {
		t.Errorf("role = %q, want %q", user.Role, model.RoleUser)
	}
	if created == nil {
		t.Fatal("expected user to be persisted")
	}

	// 初期パスワードが規約通りに払い出されていること
	if err := bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("Tesfaye@12341234")); err != nil {
		t.Error("default password does not match <lastname>@12341234 convention")
	}
}

func TestRegister_NonAdmin_Forbidden(t *testing.T) {
	svc := newTestService(&mockUserRepo{}, &mockRevoker{})

	_, err := svc.Register(context.Background(), userActor(), RegisterInput{
		FirstName: "Abel", LastName: "Tesfaye", Role: "USER",
	})
	if err == nil {
		t.Fatal("expected error for non-admin actor")
	}
	assertAPIErrorCode(t, err, model.ErrCodeForbidden)
}

func TestRegister_NoIdentity_Unauthorized(t *testing.T) {
	svc := newTestService(&mockUserRepo{}, &mockRevoker{})

	_, err := svc.Register(context.Background(), nil, RegisterInput{
		FirstName: "Abel", LastName: "Tesfaye", Role: "USER",
	})
	if err == nil {
		t.Fatal("expected error for missing identity")
	}
	assertAPIErrorCode(t, err, model.ErrCodeUnauthorized)
}

func TestRegister_UnknownRole_ValidationError(t *testing.T) {
	svc := newTestService(&mockUserRepo{}, &mockRevoker{})

	for _, role := range []string{"CREDIT_ANALYST", "SUPERVISOR", "", "admin"} {
		_, err := svc.Register(context.Background(), adminActor(), RegisterInput{
			FirstName: "Abel", LastName: "Tesfaye", Role: role,
		})
		if err == nil {
			t.Fatalf("expected validation error for role %q", role)
		}
		assertAPIErrorCode(t, err, model.ErrCodeValidation)
	}
}

func TestRegister_BannedRole_ValidationError(t *testing.T) {
	svc := newTestService(&mockUserRepo{}, &mockRevoker{})

	_, err := svc.Register(context.Background(), adminActor(), RegisterInput{
		FirstName: "Abel", LastName: "Tesfaye", Role: "BANNED",
	})
	if err == nil {
		t.Fatal("expected validation error for BANNED at registration")
	}
	assertAPIErrorCode(t, err, model.ErrCodeValidation)
}

func TestRegister_DuplicateEmail_DuplicateKeyError(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			return repository.ErrDuplicate
		},
	}
	svc := newTestService(repo, &mockRevoker{})

	_, err := svc.Register(context.Background(), adminActor(), RegisterInput{
		FirstName: "Abel", LastName: "Tesfaye", Role: "USER",
	})
	if err == nil {
		t.Fatal("expected duplicate key error")
	}
	assertAPIErrorCode(t, err, model.ErrCodeDuplicateKey)
}

func TestSetRoleByEmail_Success(t *testing.T) {
	repo := &mockUserRepo{
		updateRoleByEmailFn: func(ctx context.Context, email string, role model.Role) (*model.User, error) {
			return &model.User{ID: "user-2", Email: email, Role: role}, nil
		},
	}
	svc := newTestService(repo, &mockRevoker{})

	user, err := svc.SetRoleByEmail(context.Background(), adminActor(), "tesfaye@dashenbank.com", "ADMIN")
	if err != nil {
		t.Fatalf("SetRoleByEmail() error = %v", err)
	}
	if user.Role != model.RoleAdmin {
		t.Errorf("role = %q, want %q", user.Role, model.RoleAdmin)
	}
}

func TestSetRoleByEmail_SelfTarget_Forbidden(t *testing.T) {
	svc := newTestService(&mockUserRepo{}, &mockRevoker{})
	admin := adminActor()

	_, err := svc.SetRoleByEmail(context.Background(), admin, admin.Email, "USER")
	if err == nil {
		t.Fatal("expected error for self role change")
	}
	assertAPIErrorCode(t, err, model.ErrCodeSelfActionForbidden)
}

func TestSetRoleByEmail_UnknownEmail_NotFound(t *testing.T) {
	repo := &mockUserRepo{
		updateRoleByEmailFn: func(ctx context.Context, email string, role model.Role) (*model.User, error) {
			return nil, repository.ErrNotFound
		},
	}
	svc := newTestService(repo, &mockRevoker{})

	_, err := svc.SetRoleByEmail(context.Background(), adminActor(), "nobody@dashenbank.com", "USER")
	if err == nil {
		t.Fatal("expected not found error")
	}
	assertAPIErrorCode(t, err, model.ErrCodeNotFound)
}

func TestSetRoleByEmail_Banned_RevokesSessions(t *testing.T) {
	repo := &mockUserRepo{
		updateRoleByEmailFn: func(ctx context.Context, email string, role model.Role) (*model.User, error) {
			return &model.User{ID: "user-2", Email: email, Role: role}, nil
		},
	}
	revoker := &mockRevoker{}
	svc := newTestService(repo, revoker)

	_, err := svc.SetRoleByEmail(context.Background(), adminActor(), "tesfaye@dashenbank.com", "BANNED")
	if err != nil {
		t.Fatalf("SetRoleByEmail() error = %v", err)
	}

	if len(revoker.revokedUserIDs) != 1 || revoker.revokedUserIDs[0] != "user-2" {
		t.Errorf("revoked sessions for %v, want [user-2]", revoker.revokedUserIDs)
	}
}

func TestSetRole_ByID_Success(t *testing.T) {
	repo := &mockUserRepo{
		updateRoleFn: func(ctx context.Context, id string, role model.Role) (*model.User, error) {
			return &model.User{ID: id, Role: role}, nil
		},
	}
	svc := newTestService(repo, &mockRevoker{})

	user, err := svc.SetRole(context.Background(), adminActor(), "user-2", "ADMIN")
	if err != nil {
		t.Fatalf("SetRole() error = %v", err)
	}
	if user.Role != model.RoleAdmin {
		t.Errorf("role = %q, want %q", user.Role, model.RoleAdmin)
	}
}

func TestDelete_Success_RevokesSessionsFirst(t *testing.T) {
	var deletedID string
	repo := &mockUserRepo{
		deleteByIDFn: func(ctx context.Context, id string) error {
			deletedID = id
			return nil
		},
	}
	revoker := &mockRevoker{}
	svc := newTestService(repo, revoker)

	if err := svc.Delete(context.Background(), adminActor(), "user-2"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if deletedID != "user-2" {
		t.Errorf("deleted ID = %q, want %q", deletedID, "user-2")
	}
	if len(revoker.revokedUserIDs) != 1 || revoker.revokedUserIDs[0] != "user-2" {
		t.Errorf("revoked sessions for %v, want [user-2]", revoker.revokedUserIDs)
	}
}

func TestDelete_SelfTarget_Forbidden(t *testing.T) {
	svc := newTestService(&mockUserRepo{}, &mockRevoker{})
	admin := adminActor()

	err := svc.Delete(context.Background(), admin, admin.UserID)
	if err == nil {
		t.Fatal("expected error for self deletion")
	}
	assertAPIErrorCode(t, err, model.ErrCodeSelfActionForbidden)
}

func TestDelete_UnknownID_NotFound(t *testing.T) {
	repo := &mockUserRepo{
		deleteByIDFn: func(ctx context.Context, id string) error {
			return repository.ErrNotFound
		},
	}
	svc := newTestService(repo, &mockRevoker{})

	err := svc.Delete(context.Background(), adminActor(), "no-such-user")
	if err == nil {
		t.Fatal("expected not found error")
	}
	assertAPIErrorCode(t, err, model.ErrCodeNotFound)
}

func TestList_NonAdmin_Forbidden(t *testing.T) {
	svc := newTestService(&mockUserRepo{}, &mockRevoker{})

	_, err := svc.List(context.Background(), userActor())
	if err == nil {
		t.Fatal("expected error for non-admin actor")
	}
	assertAPIErrorCode(t, err, model.ErrCodeForbidden)
}

func TestGet_UnknownID_NotFound(t *testing.T) {
	svc := newTestService(&mockUserRepo{}, &mockRevoker{})

	_, err := svc.Get(context.Background(), adminActor(), "no-such-user")
	if err == nil {
		t.Fatal("expected not found error")
	}
	assertAPIErrorCode(t, err, model.ErrCodeNotFound)
}
