package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal     ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidBudget    ErrorCode = "INVALID_BUDGET"
	ErrCodeInvalidYear      ErrorCode = "INVALID_YEAR"
	ErrCodeInvalidMode      ErrorCode = "INVALID_MODE"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"

	ErrCodeDepartmentNotFound         ErrorCode = "DEPARTMENT_NOT_FOUND"
	ErrCodeDepartmentCycle            ErrorCode = "DEPARTMENT_CYCLE"
	ErrCodeDepartmentHasActiveMembers ErrorCode = "DEPARTMENT_HAS_ACTIVE_MEMBERS"

	ErrCodeUserNotFound ErrorCode = "USER_NOT_FOUND"

	ErrCodeAssignmentNotFound       ErrorCode = "ASSIGNMENT_NOT_FOUND"
	ErrCodeAssignmentSelfReference  ErrorCode = "ASSIGNMENT_SELF_REFERENCE"
	ErrCodeAssignmentDanglingTarget ErrorCode = "ASSIGNMENT_DANGLING_TARGET"

	ErrCodeAllocationNotFound ErrorCode = "ALLOCATION_NOT_FOUND"
	ErrCodeAllocationStale    ErrorCode = "ALLOCATION_STALE_VERSION"
	ErrCodeMemberNotInTeam    ErrorCode = "MEMBER_NOT_IN_TEAM"
	ErrCodeUnauthorizedScope  ErrorCode = "UNAUTHORIZED_ACCESS"

	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired ErrorCode = "TOKEN_EXPIRED"
	ErrCodeUserInactive ErrorCode = "USER_INACTIVE"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on Code so copies made by WithCause or WithDetails still match
// the package-level error they came from.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// WithCause returns a copy carrying cause, so package-level error values stay
// untouched.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

var (
	ErrDepartmentNotFound         = NewNotFoundError("Department not found", ErrCodeDepartmentNotFound)
	ErrDepartmentCycle            = NewConflictError("Department parent would create a cycle", ErrCodeDepartmentCycle)
	ErrDepartmentHasActiveMembers = NewConflictError("Department still has active employees or child departments", ErrCodeDepartmentHasActiveMembers)

	ErrUserNotFound = NewNotFoundError("User not found", ErrCodeUserNotFound)

	ErrAssignmentNotFound       = NewNotFoundError("Assignment not found", ErrCodeAssignmentNotFound)
	ErrAssignmentSelfReference  = NewValidationError("Assignment source and target must differ", ErrCodeAssignmentSelfReference)
	ErrAssignmentDanglingTarget = NewValidationError("Assignment references an unknown user", ErrCodeAssignmentDanglingTarget)

	ErrAllocationNotFound = NewNotFoundError("No allocation has been saved for this department and year", ErrCodeAllocationNotFound)
	ErrAllocationStale    = NewConflictError("Allocation was saved by someone else, reload before saving", ErrCodeAllocationStale)
	ErrMemberNotInTeam    = NewForbiddenError("User is not part of your team", ErrCodeMemberNotInTeam)
	ErrForbiddenScope     = NewForbiddenError("Insufficient role for this operation", ErrCodeUnauthorizedScope)

	ErrInvalidToken = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrUserInactive = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
