// Package apperr defines the error taxonomy shared by services and the HTTP
// layer. Every error carries a kind (matched with errors.Is) and a localized
// message that is safe to show to end users.
package apperr

import "errors"

// Error kinds.
var (
	ErrValidation      = errors.New("validation error")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrRateLimited     = errors.New("rate limited")
	ErrInternal        = errors.New("internal error")
)

var defaultMessages = map[error]string{
	ErrValidation:      "Dữ liệu không hợp lệ",
	ErrUnauthenticated: "Vui lòng đăng nhập",
	ErrForbidden:       "Bạn không có quyền truy cập",
	ErrNotFound:        "Không tìm thấy dữ liệu",
	ErrConflict:        "Dữ liệu đã tồn tại",
	ErrRateLimited:     "Bạn đã thử quá nhiều lần, vui lòng thử lại sau",
	ErrInternal:        "Lỗi máy chủ, vui lòng thử lại sau",
}

// Error is a classified application error.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

// New creates an error of the given kind. An empty message selects the kind's default.
func New(kind error, message string) *Error {
	if message == "" {
		message = defaultMessages[kind]
	}
	return &Error{Kind: kind, Message: message}
}

// Wrap is New with an underlying cause kept for logs.
func Wrap(kind error, message string, err error) *Error {
	e := New(kind, message)
	e.Err = err
	return e
}

func Validation(message string) *Error      { return New(ErrValidation, message) }
func Unauthenticated(message string) *Error { return New(ErrUnauthenticated, message) }
func Forbidden(message string) *Error       { return New(ErrForbidden, message) }
func NotFound(message string) *Error        { return New(ErrNotFound, message) }
func Conflict(message string) *Error        { return New(ErrConflict, message) }

// Internal wraps an unexpected failure behind the generic message.
func Internal(err error) *Error { return Wrap(ErrInternal, "", err) }

// KindOf returns the kind of err, treating unclassified errors as internal.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) && e.Kind != nil {
		return e.Kind
	}
	for kind := range defaultMessages {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrInternal
}

// Message returns the user-facing message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return defaultMessages[KindOf(err)]
}
