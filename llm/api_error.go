package llm

import "errors"

// AsError 判断错误是否为 *Error
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind 判断错误是否属于指定分类
func IsKind(err error, kind ErrorKind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == kind
}

// IsAuth 判断是否为认证错误
func IsAuth(err error) bool { return IsKind(err, ErrKindAuth) }

// IsTemporary 判断是否为调用方可重试的错误（服务端错误或超时）
//
// 库本身不做重试，重试策略由调用方决定。
func IsTemporary(err error) bool {
	e, ok := AsError(err)
	if !ok {
		return false
	}
	return e.Kind == ErrKindServer || e.Kind == ErrKindTimeout
}

// StatusCode 返回错误携带的 HTTP 状态码，没有时为 0
func StatusCode(err error) int {
	if e, ok := AsError(err); ok {
		return e.StatusCode
	}
	return 0
}
