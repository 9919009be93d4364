// Package authz はロールに基づくアクセス制御の判定を提供する。
package authz

import "github.com/hitoshi/tellerdesk/internal/model"

// DenyReason はアクセス拒否の理由を表す。
type DenyReason string

const (
	// DenyNoSession はセッションが無いまたは無効な場合。
	DenyNoSession DenyReason = "NO_SESSION"
	// DenyRoleMismatch は要求ロールを満たさない場合。
	DenyRoleMismatch DenyReason = "ROLE_MISMATCH"
	// DenySelfAction は自分自身への削除・降格操作の場合。
	DenySelfAction DenyReason = "SELF_ACTION_FORBIDDEN"
)

// Decision はアクセス判定の結果を表す。
type Decision struct {
	Allowed bool
	Reason  DenyReason // 拒否時のみ設定
}

// allow は許可の判定を返す。
func allow() Decision {
	return Decision{Allowed: true}
}

// deny は拒否の判定を返す。
func deny(reason DenyReason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Authorize は操作の実行可否を判定する。
// requiredがRoleAdminの場合はADMINのみ許可し、RoleUserの場合は
// ADMINとUSERを許可する。BANNEDは常に拒否される。
func Authorize(identity *model.Identity, required model.Role) Decision {
	if identity == nil {
		return deny(DenyNoSession)
	}
	if !identity.Role.CanOperate() {
		return deny(DenyRoleMismatch)
	}
	if required == model.RoleAdmin && identity.Role != model.RoleAdmin {
		return deny(DenyRoleMismatch)
	}
	return allow()
}

// AuthorizeUserAction は他ユーザーのアカウントに対する管理操作
// （削除、降格）の可否を判定する。自分自身への操作は拒否する。
func AuthorizeUserAction(identity *model.Identity, targetUserID string) Decision {
	d := Authorize(identity, model.RoleAdmin)
	if !d.Allowed {
		return d
	}
	if identity.UserID == targetUserID {
		return deny(DenySelfAction)
	}
	return allow()
}

// AuthorizeUserActionByEmail はメールアドレス指定の管理操作の可否を判定する。
func AuthorizeUserActionByEmail(identity *model.Identity, targetEmail string) Decision {
	d := Authorize(identity, model.RoleAdmin)
	if !d.Allowed {
		return d
	}
	if identity.Email == targetEmail {
		return deny(DenySelfAction)
	}
	return allow()
}
