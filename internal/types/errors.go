package types

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码
type ErrorCode string

const (
	// 通用错误码
	ErrCodeUnknown          ErrorCode = "UNKNOWN_ERROR"
	ErrCodeInvalidParameter ErrorCode = "INVALID_PARAMETER"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"

	// 上传相关错误码
	ErrCodeFileMissing     ErrorCode = "FILE_MISSING"
	ErrCodeUnsupportedFile ErrorCode = "UNSUPPORTED_FILE"
	ErrCodeFileTooLarge    ErrorCode = "FILE_TOO_LARGE"

	// 识别相关错误码
	ErrCodePreprocessFailed ErrorCode = "PREPROCESS_FAILED"
	ErrCodeOCRFailed        ErrorCode = "OCR_FAILED"
	ErrCodeNoTextExtracted  ErrorCode = "NO_TEXT_EXTRACTED"

	// 存储相关错误码
	ErrCodeDBUnavailable     ErrorCode = "DB_UNAVAILABLE"
	ErrCodeContactIncomplete ErrorCode = "CONTACT_INCOMPLETE"
	ErrCodeCSVMalformed      ErrorCode = "CSV_MALFORMED"
	ErrCodeExportEmpty       ErrorCode = "EXPORT_EMPTY"
)

// AppError 应用错误
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回原始错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is 错误码相同即视为同一错误
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// HTTPStatus 错误码对应的 HTTP 状态码
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeInvalidParameter, ErrCodeFileMissing, ErrCodeContactIncomplete,
		ErrCodeCSVMalformed, ErrCodeNoTextExtracted:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeExportEmpty:
		return http.StatusNotFound
	case ErrCodeUnsupportedFile:
		return http.StatusUnsupportedMediaType
	case ErrCodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrCodeDBUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewAppError 创建应用错误
func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewAppErrorWithDetails 创建带详情的应用错误
func NewAppErrorWithDetails(code ErrorCode, message, details string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewAppErrorWithCause 创建带原因的应用错误
func NewAppErrorWithCause(code ErrorCode, message string, cause error) *AppError {
	e := &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// 预定义错误
var (
	ErrFileMissing       = NewAppError(ErrCodeFileMissing, "Please upload at least one business card image")
	ErrNoTextExtracted   = NewAppError(ErrCodeNoTextExtracted, "No text could be extracted from the image")
	ErrDBUnavailable     = NewAppError(ErrCodeDBUnavailable, "Database connection failed")
	ErrContactNotFound   = NewAppError(ErrCodeNotFound, "Contact not found")
	ErrContactIncomplete = NewAppError(ErrCodeContactIncomplete, "Name or company is required")
	ErrExportEmpty       = NewAppError(ErrCodeExportEmpty, "No contacts to export")
)

// AsAppError 提取应用错误，非应用错误包装为 UNKNOWN_ERROR
func AsAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewAppErrorWithCause(ErrCodeUnknown, "Internal error", err)
}

// GetErrorCode 获取错误码
func GetErrorCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeUnknown
}
