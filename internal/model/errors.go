// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, customer, upload, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeDuplicateKey        = "DUPLICATE_KEY"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeSelfActionForbidden = "SELF_ACTION_FORBIDDEN"
	ErrCodeUploadRejected      = "UPLOAD_REJECTED"
	ErrCodeStorageError        = "STORAGE_ERROR"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
)

// NewValidationError は必須項目の欠落や形式不正のエラーを生成する。
func NewValidationError(detail string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力内容に誤りがあります: %s", detail),
		Category: "validation",
		Action:   "入力項目を確認して再度送信してください。",
	}
}

// NewDuplicateKeyError は一意制約違反のエラーを生成する。
func NewDuplicateKeyError(detail string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateKey,
		Message:  fmt.Sprintf("同じ値の登録が既に存在します: %s", detail),
		Category: "validation",
		Action:   "登録済みの番号・ID・連絡先と重複していないか確認してください。",
	}
}

// NewNotFoundError は対象レコード未検出のエラーを生成する。
func NewNotFoundError(what string) *APIError {
	return &APIError{
		Code:     ErrCodeNotFound,
		Message:  fmt.Sprintf("%sが見つかりません。", what),
		Category: "customer",
		Action:   "指定したIDや番号を確認してください。",
	}
}

// NewUnauthorizedError は未認証のエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "サインインしてください。",
	}
}

// NewForbiddenError はロール不足のエラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作を実行する権限がありません。",
		Category: "auth",
		Action:   "管理者に権限の付与を依頼してください。",
	}
}

// NewSelfActionForbiddenError は自分自身のアカウントに対する
// 削除・降格操作のエラーを生成する。
func NewSelfActionForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeSelfActionForbidden,
		Message:  "自分自身のアカウントに対してこの操作は実行できません。",
		Category: "auth",
		Action:   "別の管理者アカウントから操作してください。",
	}
}

// NewUploadRejectedError は書類アップロードの事前検証エラーを生成する。
func NewUploadRejectedError(detail string) *APIError {
	return &APIError{
		Code:     ErrCodeUploadRejected,
		Message:  fmt.Sprintf("ファイルを受け付けられません: %s", detail),
		Category: "upload",
		Action:   "5MiB以下のPDFファイルを選択してください。",
	}
}

// NewStorageError はストレージバックエンド起因のエラーを生成する。
func NewStorageError(detail string) *APIError {
	return &APIError{
		Code:     ErrCodeStorageError,
		Message:  fmt.Sprintf("ファイルの保存に失敗しました: %s", detail),
		Category: "upload",
		Action:   "しばらく待ってから再度アップロードしてください。",
	}
}

// NewInvalidCredentialsError はサインイン失敗のエラーを生成する。
// 姓の存在有無を区別しないメッセージを返す。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "姓またはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度サインインしてください。",
	}
}
