package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
// Errは内部原因の保持用で、レスポンスには含めない。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ
	Action   string // ユーザー向け対処方法
	Err      error  // 内部原因（ログ用）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap は内部原因を返す。
func (e *APIError) Unwrap() error {
	return e.Err
}

// エラーカテゴリ
const (
	CategoryValidation     = "validation"
	CategoryAuthentication = "authentication"
	CategoryAuthorization  = "authorization"
	CategoryNotFound       = "not_found"
	CategoryConflict       = "conflict"
	CategoryTransaction    = "transaction"
	CategoryPersistence    = "persistence"
)

// 定義済みエラーコード
const (
	ErrCodeValidationFailed       = "VALIDATION_FAILED"
	ErrCodeInvalidRequest         = "INVALID_REQUEST"
	ErrCodeAuthenticationRequired = "AUTHENTICATION_REQUIRED"
	ErrCodeInvalidCredential      = "INVALID_CREDENTIAL"
	ErrCodeLoginFailed            = "LOGIN_FAILED"
	ErrCodeForbiddenAccountKind   = "FORBIDDEN_ACCOUNT_KIND"
	ErrCodeNotEventOwner          = "NOT_EVENT_OWNER"
	ErrCodeEventNotFound          = "EVENT_NOT_FOUND"
	ErrCodeRoleNotFound           = "ROLE_NOT_FOUND"
	ErrCodeAssignmentNotFound     = "ASSIGNMENT_NOT_FOUND"
	ErrCodeAlreadySignedUp        = "ALREADY_SIGNED_UP"
	ErrCodeRoleFull               = "ROLE_FULL"
	ErrCodeEmailTaken             = "EMAIL_TAKEN"
	ErrCodeTransactionFailed      = "TRANSACTION_FAILED"
	ErrCodePersistence            = "PERSISTENCE_ERROR"
)

// NewValidationError は入力値の検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("入力内容が不正です: %s", reason),
		Category: CategoryValidation,
		Action:   "入力内容を確認してください。",
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: CategoryValidation,
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewAuthenticationRequiredError は認証情報が提示されていない場合のエラーを生成する。
func NewAuthenticationRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthenticationRequired,
		Message:  "認証が必要です。",
		Category: CategoryAuthentication,
		Action:   "ログインしてください。",
	}
}

// NewInvalidCredentialError はトークンが不正または期限切れの場合のエラーを生成する。
func NewInvalidCredentialError(cause error) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredential,
		Message:  "認証情報が無効か、有効期限が切れています。",
		Category: CategoryAuthorization,
		Action:   "ログインし直してください。",
		Err:      cause,
	}
}

// NewLoginFailedError はメールアドレスまたはパスワードが一致しない場合のエラーを生成する。
func NewLoginFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeLoginFailed,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: CategoryAuthentication,
		Action:   "入力内容を確認してください。",
	}
}

// NewForbiddenAccountKindError はアカウント種別が操作に適合しない場合のエラーを生成する。
func NewForbiddenAccountKindError(required AccountKind) *APIError {
	return &APIError{
		Code:     ErrCodeForbiddenAccountKind,
		Message:  fmt.Sprintf("この操作は %s アカウントのみ実行できます。", required),
		Category: CategoryAuthorization,
		Action:   "適切なアカウントでログインしてください。",
	}
}

// NewNotEventOwnerError は他団体のイベントを操作しようとした場合のエラーを生成する。
func NewNotEventOwnerError() *APIError {
	return &APIError{
		Code:     ErrCodeNotEventOwner,
		Message:  "このイベントを管理する権限がありません。",
		Category: CategoryAuthorization,
		Action:   "自団体が主催するイベントのみ操作できます。",
	}
}

// NewEventNotFoundError はイベント未検出エラーを生成する。
func NewEventNotFoundError(eventID string) *APIError {
	return &APIError{
		Code:     ErrCodeEventNotFound,
		Message:  fmt.Sprintf("指定されたイベントが見つかりません: %s", eventID),
		Category: CategoryNotFound,
		Action:   "イベントIDを確認してください。",
	}
}

// NewRoleNotFoundError はロール未検出エラーを生成する。
func NewRoleNotFoundError(roleID string) *APIError {
	return &APIError{
		Code:     ErrCodeRoleNotFound,
		Message:  fmt.Sprintf("指定されたロールが見つかりません: %s", roleID),
		Category: CategoryNotFound,
		Action:   "ロールIDを確認してください。",
	}
}

// NewAssignmentNotFoundError は応募記録未検出エラーを生成する。
func NewAssignmentNotFoundError(recordID string) *APIError {
	return &APIError{
		Code:     ErrCodeAssignmentNotFound,
		Message:  fmt.Sprintf("指定された応募記録が見つかりません: %s", recordID),
		Category: CategoryNotFound,
		Action:   "応募記録IDを確認してください。",
	}
}

// NewAlreadySignedUpError は同じロールに重複して応募した場合のエラーを生成する。
func NewAlreadySignedUpError() *APIError {
	return &APIError{
		Code:     ErrCodeAlreadySignedUp,
		Message:  "このロールには既に応募しています。",
		Category: CategoryConflict,
		Action:   "プロフィールから応募状況を確認してください。",
	}
}

// NewRoleFullError はロールの募集人数が上限に達している場合のエラーを生成する。
func NewRoleFullError() *APIError {
	return &APIError{
		Code:     ErrCodeRoleFull,
		Message:  "このロールは募集人数に達しています。",
		Category: CategoryConflict,
		Action:   "別のロールに応募してください。",
	}
}

// NewEmailTakenError はメールアドレスが登録済みの場合のエラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "このメールアドレスは既に登録されています。",
		Category: CategoryConflict,
		Action:   "ログインするか、別のメールアドレスを使用してください。",
	}
}

// NewTransactionFailedError は複数行の書き込みが失敗しロールバックされた場合のエラーを生成する。
// 原因はログにのみ記録される。
func NewTransactionFailedError(cause error) *APIError {
	return &APIError{
		Code:     ErrCodeTransactionFailed,
		Message:  "処理を完了できませんでした。変更は保存されていません。",
		Category: CategoryTransaction,
		Action:   "しばらく待ってから再度お試しください。",
		Err:      cause,
	}
}

// NewPersistenceError は単一行操作でのストレージ障害を表すエラーを生成する。
func NewPersistenceError(cause error) *APIError {
	return &APIError{
		Code:     ErrCodePersistence,
		Message:  "内部エラーが発生しました。",
		Category: CategoryPersistence,
		Action:   "しばらく待ってから再度お試しください。",
		Err:      cause,
	}
}
