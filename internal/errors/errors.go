package errors

import "fmt"

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code, message string, cause ...error) *AppError {
	var c error
	if len(cause) > 0 {
		c = cause[0]
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   c,
	}
}

var (
	ErrConfigNotFound = &AppError{Code: "CONFIG_001", Message: "configuration not found"}
	ErrConfigInvalid  = &AppError{Code: "CONFIG_002", Message: "invalid configuration"}

	ErrProfileNotFound = &AppError{Code: "PROFILE_001", Message: "profile not found"}
	ErrProfileExists   = &AppError{Code: "PROFILE_002", Message: "profile already exists"}

	ErrInvalidVitals    = &AppError{Code: "INPUT_001", Message: "invalid vital signs"}
	ErrInvalidCheckin   = &AppError{Code: "INPUT_002", Message: "invalid check-in payload"}
	ErrRecoveryInactive = &AppError{Code: "INPUT_003", Message: "recovery mode not enabled"}

	ErrChannelNotConfigured = &AppError{Code: "ALERT_001", Message: "alert channel not configured"}
	ErrChannelUnavailable   = &AppError{Code: "ALERT_002", Message: "alert channel unavailable"}

	ErrQueueEmpty = &AppError{Code: "QUEUE_001", Message: "queue empty"}

	ErrUnauthorized = &AppError{Code: "AUTH_001", Message: "unauthorized"}
	ErrForbidden    = &AppError{Code: "AUTH_002", Message: "forbidden"}
	ErrRateLimited  = &AppError{Code: "AUTH_003", Message: "rate limit exceeded"}

	ErrNotFound   = &AppError{Code: "GEN_001", Message: "resource not found"}
	ErrBadRequest = &AppError{Code: "GEN_002", Message: "bad request"}
	ErrInternal   = &AppError{Code: "GEN_003", Message: "internal error"}
)

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}
