// Package auth は行員のサインイン、セッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/tellerdesk/internal/model"
	"github.com/hitoshi/tellerdesk/internal/repository"
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int    // セッション有効期間（秒）
	EmailDomain   string // 行員メールアドレスのドメイン
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		config:      config,
	}
}

// DeriveEmail は姓から行員のログインメールアドレスを導出する。
// 姓を小文字化しドメインを付与した規約アドレスを返す。
func (s *Service) DeriveEmail(lastName string) string {
	return DeriveEmail(lastName, s.config.EmailDomain)
}

// DeriveEmail は姓とドメインからログインメールアドレスを組み立てる。
func DeriveEmail(lastName, domain string) string {
	return strings.ToLower(strings.TrimSpace(lastName)) + "@" + domain
}

// SignIn は姓とパスワードで認証し、セッションを発行する。
// 該当ユーザーが存在しない場合もパスワード不一致と同じエラーを返し、
// アカウントの存在有無を漏らさない。
func (s *Service) SignIn(ctx context.Context, lastName, password string) (*model.Session, *model.User, error) {
	if strings.TrimSpace(lastName) == "" || password == "" {
		return nil, nil, model.NewValidationError("姓とパスワードは必須です")
	}

	email := s.DeriveEmail(lastName)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if user == nil {
		return nil, nil, model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("sign-in failed: password mismatch", slog.String("email", email))
		return nil, nil, model.NewInvalidCredentialsError()
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("user signed in",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return session, user, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user signed out", slog.String("session_id", sessionID))
	return nil
}

// GetCurrentUser はセッションから現在のユーザーを取得する。
// セッションが無効・期限切れの場合はnilを返す。
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, nil
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ChangePassword は現在のパスワードを検証したうえで新しいパスワードに変更する。
// 変更後は操作中のセッションを除く全セッションを破棄し、
// パスワード漏洩を疑って変更した場合に他端末のログインを残さない。
func (s *Service) ChangePassword(ctx context.Context, sessionID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return model.NewValidationError("現在のパスワードと新しいパスワードは必須です")
	}
	if len(newPassword) < 8 {
		return model.NewValidationError("新しいパスワードは8文字以上で入力してください")
	}
	if newPassword == currentPassword {
		return model.NewValidationError("新しいパスワードは現在のパスワードと異なる必要があります")
	}

	user, err := s.GetCurrentUser(ctx, sessionID)
	if err != nil {
		return err
	}
	if user == nil {
		return model.NewUnauthorizedError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		slog.Warn("change-password failed: current password mismatch", slog.String("user_id", user.ID))
		return model.NewInvalidCredentialsError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}

	if err := s.sessionRepo.DeleteByUserIDExcept(ctx, user.ID, sessionID); err != nil {
		return fmt.Errorf("failed to revoke other sessions: %w", err)
	}

	slog.Info("user changed password", slog.String("user_id", user.ID))
	return nil
}

// RevokeUserSessions は指定ユーザーの全セッションを破棄する。
// 権限剥奪やアカウント削除の際に呼び出される。
func (s *Service) RevokeUserSessions(ctx context.Context, userID string) error {
	if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
