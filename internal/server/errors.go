package server

import (
	"errors"
	"net/http"
	"strings"

	agentdomain "github.com/agencydesk/agencydesk/internal/agent/domain"
	payrolldomain "github.com/agencydesk/agencydesk/internal/payroll/domain"
	"github.com/agencydesk/agencydesk/internal/period"
	recondomain "github.com/agencydesk/agencydesk/internal/recon/domain"
	saledomain "github.com/agencydesk/agencydesk/internal/sale/domain"
	statementdomain "github.com/agencydesk/agencydesk/internal/statement/domain"
	"github.com/agencydesk/agencydesk/internal/statement/parser"
	tierdomain "github.com/agencydesk/agencydesk/internal/tier/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "parse_error",
			Message: parseErr.Error(),
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isPayrollStateConflict(err):
		return http.StatusConflict, errorPayload{
			Type:    "payroll_state_conflict",
			Message: payrollConflictMessage(err),
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, tierdomain.ErrDuplicateTierLevel):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, statementdomain.ErrInvalidCarrier),
		errors.Is(err, statementdomain.ErrInvalidPeriod),
		errors.Is(err, statementdomain.ErrUnsupportedFormat),
		errors.Is(err, statementdomain.ErrEmptyFile),
		errors.Is(err, period.ErrInvalidPeriod),
		errors.Is(err, tierdomain.ErrInvalidTierLevel),
		errors.Is(err, tierdomain.ErrInvalidPremiumRange),
		errors.Is(err, tierdomain.ErrInvalidRate),
		errors.Is(err, tierdomain.ErrNoTierConfigured):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, agentdomain.ErrNotFound),
		errors.Is(err, saledomain.ErrNotFound),
		errors.Is(err, statementdomain.ErrNotFound),
		errors.Is(err, statementdomain.ErrLineNotFound),
		errors.Is(err, tierdomain.ErrNotFound),
		errors.Is(err, payrolldomain.ErrNotFound),
		errors.Is(err, recondomain.ErrNoImportsForPeriod),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isPayrollStateConflict(err error) bool {
	switch {
	case errors.Is(err, payrolldomain.ErrPayrollLocked),
		errors.Is(err, payrolldomain.ErrPayrollNotSubmitted),
		errors.Is(err, payrolldomain.ErrPayrollAlreadyPaid):
		return true
	default:
		return false
	}
}

func payrollConflictMessage(err error) string {
	switch {
	case errors.Is(err, payrolldomain.ErrPayrollLocked):
		return "payroll for this period is locked; unlock the period first"
	case errors.Is(err, payrolldomain.ErrPayrollNotSubmitted):
		return "payroll for this period has not been submitted"
	case errors.Is(err, payrolldomain.ErrPayrollAlreadyPaid):
		return "payroll for this period is already paid"
	default:
		return "payroll state conflict"
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}
