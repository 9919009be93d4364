// Package model はドメインモデルを定義する。
package model

import "fmt"

// Role は職員の権限レベルを表す閉じた列挙型。
// 文字列比較のタイポを排除するため、境界では必ずParseRoleを通すこと。
type Role string

const (
	// RoleAdmin は職員登録・ロール変更・削除が可能な管理者。
	RoleAdmin Role = "ADMIN"
	// RoleUser は顧客登録・照会が可能な一般職員。
	RoleUser Role = "USER"
	// RoleBanned は全操作を拒否される停止済みアカウント。
	RoleBanned Role = "BANNED"
)

// ParseRole はロール文字列を検証して閉じた集合に変換する。
// 未知の文字列はエラーを返す。
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleUser, RoleBanned:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// String はロールの文字列表現を返す。
func (r Role) String() string { return string(r) }

// CanOperate はゲート対象の操作を実行できるロールかを返す。
// BANNEDはすべての操作を拒否される。
func (r Role) CanOperate() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}
