package errs

import (
	"errors"
	"fmt"
)

// 业务错误哨兵，handler 层统一映射为 HTTP 状态码。
// 使用 fmt.Errorf("%w: ...") 附加具体信息，errors.Is 判断类别。
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrForbidden          = errors.New("Admin access required")
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("Email already registered")
	ErrProductNotFound    = errors.New("Product not found")
	ErrOutOfStock         = errors.New("insufficient stock")
)

// StatusOf 业务错误到 HTTP 状态码的映射，未识别的错误一律 500
func StatusOf(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrOutOfStock):
		return 400
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidCredentials):
		return 401
	case errors.Is(err, ErrForbidden):
		return 403
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrProductNotFound):
		return 404
	default:
		return 500
	}
}

// Invalidf 构造带字段说明的 ErrInvalidInput
func Invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
