// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/tellerdesk/internal/model"
)

// ErrDuplicate は一意制約違反を表す番兵エラー。
// サービス層がDUPLICATE_KEYのAPIErrorに変換する。
var ErrDuplicate = errors.New("duplicate key")

// ErrNotFound は更新・削除対象のレコードが存在しないことを表す番兵エラー。
var ErrNotFound = errors.New("record not found")

// UserRepository は職員アカウントの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDの職員を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail は合成メールアドレスで職員を検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create は職員を作成する。email重複時はErrDuplicateを返す。
	Create(ctx context.Context, user *model.User) error

	// List は全職員を作成日時の降順で返す。
	List(ctx context.Context) ([]*model.User, error)

	// UpdateRole は指定IDの職員のロールを更新する。対象が存在しない場合はErrNotFound。
	UpdateRole(ctx context.Context, id string, role model.Role) (*model.User, error)

	// UpdateRoleByEmail はメールアドレスで職員のロールを更新する。対象が存在しない場合はErrNotFound。
	UpdateRoleByEmail(ctx context.Context, email string, role model.Role) (*model.User, error)

	// UpdatePasswordHash は指定IDの職員のパスワードハッシュを更新する。
	// 対象が存在しない場合はErrNotFound。
	UpdatePasswordHash(ctx context.Context, id string, passwordHash string) error

	// DeleteByID は指定IDの職員を削除する。関連セッションはCASCADE削除される。
	// 対象が存在しない場合はErrNotFound。
	DeleteByID(ctx context.Context, id string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定職員の全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteByUserIDExcept は指定職員のセッションのうちkeepSessionID以外をすべて削除する。
	// パスワード変更時に操作中のセッションだけを残す用途で使う。
	DeleteByUserIDExcept(ctx context.Context, userID string, keepSessionID string) error
}

// PersonalCustomerRepository は個人顧客の永続化インターフェース。
type PersonalCustomerRepository interface {
	// Create は個人顧客を作成する。一意制約違反時はErrDuplicateを返す。
	Create(ctx context.Context, c *model.PersonalCustomer) error

	// FindByID は指定IDの個人顧客を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.PersonalCustomer, error)

	// FindByCustomerNumber は顧客番号で個人顧客を検索する。見つからない場合はnilを返す。
	FindByCustomerNumber(ctx context.Context, customerNumber string) (*model.PersonalCustomer, error)

	// List は個人顧客を作成日時の降順で最大limit件返す。
	List(ctx context.Context, limit int) ([]*model.PersonalCustomer, error)

	// Update は個人顧客を全量上書き更新する。対象が存在しない場合はErrNotFound。
	// 一意制約違反時はErrDuplicateを返す。
	Update(ctx context.Context, c *model.PersonalCustomer) error

	// Delete は指定IDの個人顧客を削除する。対象が存在しない場合はErrNotFound。
	Delete(ctx context.Context, id string) error
}

// CompanyCustomerRepository は法人顧客の永続化インターフェース。
type CompanyCustomerRepository interface {
	// Create は法人顧客を作成する。一意制約違反時はErrDuplicateを返す。
	Create(ctx context.Context, c *model.CompanyCustomer) error

	// FindByID は指定IDの法人顧客を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.CompanyCustomer, error)

	// FindByCustomerNumber は顧客番号で法人顧客を検索する。見つからない場合はnilを返す。
	FindByCustomerNumber(ctx context.Context, customerNumber string) (*model.CompanyCustomer, error)

	// FindByTinNumber は納税者番号（TIN）で法人顧客を検索する。見つからない場合はnilを返す。
	FindByTinNumber(ctx context.Context, tinNumber string) (*model.CompanyCustomer, error)

	// SearchByCompanyName は会社名の大文字小文字を区別しない部分一致検索を行う。
	// 作成日時の降順で最大limit件返す。
	SearchByCompanyName(ctx context.Context, companyName string, limit int) ([]*model.CompanyCustomer, error)

	// List は法人顧客を作成日時の降順で最大limit件返す。
	List(ctx context.Context, limit int) ([]*model.CompanyCustomer, error)

	// Update は法人顧客を全量上書き更新する。対象が存在しない場合はErrNotFound。
	// 一意制約違反時はErrDuplicateを返す。
	Update(ctx context.Context, c *model.CompanyCustomer) error

	// Delete は指定IDの法人顧客を削除する。対象が存在しない場合はErrNotFound。
	Delete(ctx context.Context, id string) error
}
