package bizerror

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrTooManyRequests = errors.New("too many requests")

	// ErrRoleNotFound reports a provisioning gap: a role the system relies on is absent from the organization.
	ErrRoleNotFound = errors.New("role not found")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

// ErrInvalidRole is returned when a role name can not be assigned in the target organization.
type ErrInvalidRole struct {
	Role string
}

func (e *ErrInvalidRole) Error() string {
	return "invalid role " + e.Role
}

func (e *ErrInvalidRole) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "invalid_role", Message: e.Error(), Data: e.Role}
}

// ErrValidation carries field level failures detected by services (beyond binding tags).
type ErrValidation struct {
	Fields map[string]string
}

func NewErrValidation(field, message string) *ErrValidation {
	return &ErrValidation{Fields: map[string]string{field: message}}
}

func (e *ErrValidation) Error() string {
	return "validation failed"
}

func (e *ErrValidation) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "validation_error", Message: "validation failed", Data: e.Fields}
}
