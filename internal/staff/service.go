// Package staff は行員アカウント管理のドメインロジックを提供する。
package staff

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/tellerdesk/internal/auth"
	"github.com/hitoshi/tellerdesk/internal/authz"
	"github.com/hitoshi/tellerdesk/internal/model"
	"github.com/hitoshi/tellerdesk/internal/repository"
)

// SessionRevoker は指定ユーザーの全セッションを無効化するインターフェース。
type SessionRevoker interface {
	RevokeUserSessions(ctx context.Context, userID string) error
}

// ServiceConfig は行員管理サービスの設定。
type ServiceConfig struct {
	EmailDomain string // ログインメールアドレスのドメイン
}

// Service は行員アカウントの登録・ロール変更・削除を提供する。
type Service struct {
	userRepo repository.UserRepository
	revoker  SessionRevoker
	config   ServiceConfig
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, revoker SessionRevoker, config ServiceConfig) *Service {
	return &Service{
		userRepo: userRepo,
		revoker:  revoker,
		config:   config,
	}
}

// RegisterInput は行員登録の入力。
type RegisterInput struct {
	FirstName string
	LastName  string
	Role      string
}

// Register は新しい行員アカウントを登録する。
// ログインメールアドレスは姓から導出し、初期パスワードは
// 「<姓>@12341234」の規約で払い出してハッシュ化して保存する。
func (s *Service) Register(ctx context.Context, actor *model.Identity, input RegisterInput) (*model.User, error) {
	if d := authz.Authorize(actor, model.RoleAdmin); !d.Allowed {
		return nil, denyToError(d)
	}

	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || lastName == "" {
		return nil, model.NewValidationError("姓と名は必須です")
	}

	role, err := model.ParseRole(input.Role)
	if err != nil {
		return nil, model.NewValidationError("ロールはADMINまたはUSERを指定してください")
	}
	// 登録時にBANNEDを割り当てることはできない
	if role == model.RoleBanned {
		return nil, model.NewValidationError("ロールはADMINまたはUSERを指定してください")
	}

	email := auth.DeriveEmail(lastName, s.config.EmailDomain)
	defaultPassword := lastName + "@12341234"

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash default password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         firstName + " " + lastName,
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewDuplicateKeyError("この姓のログインメールアドレスは既に使用されています")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("employee registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
		slog.String("role", string(user.Role)),
		slog.String("registered_by", actor.UserID),
	)

	return user, nil
}

// SetRoleByEmail はメールアドレス指定で行員のロールを変更する。
// 自分自身のロール変更は禁止する。BANNEDへの変更時は
// 対象の全セッションを無効化する。
func (s *Service) SetRoleByEmail(ctx context.Context, actor *model.Identity, email, roleStr string) (*model.User, error) {
	if d := authz.AuthorizeUserActionByEmail(actor, email); !d.Allowed {
		return nil, denyToError(d)
	}

	role, err := model.ParseRole(roleStr)
	if err != nil {
		return nil, model.NewValidationError("ロールはADMIN、USER、BANNEDのいずれかを指定してください")
	}

	user, err := s.userRepo.UpdateRoleByEmail(ctx, email, role)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewNotFoundError("指定したメールアドレスの行員")
		}
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	if role == model.RoleBanned && s.revoker != nil {
		if err := s.revoker.RevokeUserSessions(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("failed to revoke sessions: %w", err)
		}
	}

	slog.Info("employee role changed",
		slog.String("user_id", user.ID),
		slog.String("role", string(role)),
		slog.String("changed_by", actor.UserID),
	)

	return user, nil
}

// SetRole はID指定で行員のロールを変更する。
func (s *Service) SetRole(ctx context.Context, actor *model.Identity, id, roleStr string) (*model.User, error) {
	if d := authz.AuthorizeUserAction(actor, id); !d.Allowed {
		return nil, denyToError(d)
	}

	role, err := model.ParseRole(roleStr)
	if err != nil {
		return nil, model.NewValidationError("ロールはADMIN、USER、BANNEDのいずれかを指定してください")
	}

	user, err := s.userRepo.UpdateRole(ctx, id, role)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewNotFoundError("指定したIDの行員")
		}
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	if role == model.RoleBanned && s.revoker != nil {
		if err := s.revoker.RevokeUserSessions(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("failed to revoke sessions: %w", err)
		}
	}

	slog.Info("employee role changed",
		slog.String("user_id", user.ID),
		slog.String("role", string(role)),
		slog.String("changed_by", actor.UserID),
	)

	return user, nil
}

// Delete は行員アカウントを削除する。自分自身の削除は禁止する。
// 削除前に対象の全セッションを無効化する。
func (s *Service) Delete(ctx context.Context, actor *model.Identity, id string) error {
	if d := authz.AuthorizeUserAction(actor, id); !d.Allowed {
		return denyToError(d)
	}

	if s.revoker != nil {
		if err := s.revoker.RevokeUserSessions(ctx, id); err != nil {
			return fmt.Errorf("failed to revoke sessions: %w", err)
		}
	}

	if err := s.userRepo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewNotFoundError("指定したIDの行員")
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	slog.Info("employee deleted",
		slog.String("user_id", id),
		slog.String("deleted_by", actor.UserID),
	)

	return nil
}

// List は全行員を返す。
func (s *Service) List(ctx context.Context, actor *model.Identity) ([]*model.User, error) {
	if d := authz.Authorize(actor, model.RoleAdmin); !d.Allowed {
		return nil, denyToError(d)
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Get はID指定で行員を取得する。
func (s *Service) Get(ctx context.Context, actor *model.Identity, id string) (*model.User, error) {
	if d := authz.Authorize(actor, model.RoleAdmin); !d.Allowed {
		return nil, denyToError(d)
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewNotFoundError("指定したIDの行員")
	}
	return user, nil
}

// denyToError はアクセス判定の拒否理由をAPIErrorに変換する。
func denyToError(d authz.Decision) error {
	switch d.Reason {
	case authz.DenyNoSession:
		return model.NewUnauthorizedError()
	case authz.DenySelfAction:
		return model.NewSelfActionForbiddenError()
	default:
		return model.NewForbiddenError()
	}
}
