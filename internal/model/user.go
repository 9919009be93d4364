// Package model はドメインモデルを定義する。
package model

import "time"

// User は銀行の職員アカウントを表す。
// Emailは姓から合成される（<lastname>@<職員メールドメイン>）ため、
// 姓が実質的なログインハンドルとなる。usersテーブルのemail一意制約が
// 姓の重複登録を防ぐ。
type User struct {
	ID           string
	Email        string
	Name         string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session は職員のログインセッションを表す。
// サインインで発行され、サインアウトまたは期限切れで破棄される。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Identity はセッション検証後にリクエストコンテキストへ注入される
// 認証済み職員の情報。ハンドラーと認可ガードが参照する読み取り専用の値。
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   Role
}
