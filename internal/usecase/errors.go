package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKindは障害クラス。レスポンスの {error: "<Kind>: <message>"} にそのまま出す。
type ErrorKind string

const (
	KindConfiguration  ErrorKind = "ConfigurationError" // シークレット未設定など。リトライ無意味
	KindAuthentication ErrorKind = "AuthenticationError" // webhook署名不一致
	KindValidation     ErrorKind = "ValidationError"     // metadata/明細の形式不正
	KindNotFound       ErrorKind = "NotFoundError"       // 参照された生成画像が無い
	KindVendor         ErrorKind = "VendorError"         // 印刷ベンダーAPI呼び出し失敗
	KindStorage        ErrorKind = "StorageError"        // DB障害
)

type WorkflowError struct {
	Kind    ErrorKind
	Message string
	Err     error // 元エラー（あれば）
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

// HTTPStatus はクライアント起因(400) / サーバ起因(500) の対応づけ。
func (e *WorkflowError) HTTPStatus() int {
	switch e.Kind {
	case KindAuthentication, KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func NewConfigurationError(format string, args ...interface{}) error {
	return &WorkflowError{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

func NewAuthenticationError(err error, format string, args ...interface{}) error {
	return &WorkflowError{Kind: KindAuthentication, Message: fmt.Sprintf(format, args...), Err: err}
}

func NewValidationError(format string, args ...interface{}) error {
	return &WorkflowError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...interface{}) error {
	return &WorkflowError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewVendorError(err error, format string, args ...interface{}) error {
	return &WorkflowError{Kind: KindVendor, Message: fmt.Sprintf(format, args...), Err: err}
}

func NewStorageError(err error, format string, args ...interface{}) error {
	return &WorkflowError{Kind: KindStorage, Message: fmt.Sprintf(format, args...), Err: err}
}

func AsWorkflowError(err error) (*WorkflowError, bool) {
	var we *WorkflowError
	if errors.As(err, &we) {
		return we, true
	}
	return nil, false
}
