package server

import (
	"errors"
	"net/http"

	catalogdomain "github.com/fibrewavelabs/fibrewave/internal/catalog/domain"
	invoicedomain "github.com/fibrewavelabs/fibrewave/internal/invoice/domain"
	registrationdomain "github.com/fibrewavelabs/fibrewave/internal/registration/domain"
	settingsdomain "github.com/fibrewavelabs/fibrewave/internal/settings/domain"
	"github.com/fibrewavelabs/fibrewave/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string { return e.Code }

func invalidRequestError() *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "the request body or parameters are invalid"}
}

// statusByError maps domain sentinels onto HTTP statuses. Anything unmapped
// is a 500 with an opaque message.
var statusByError = map[error]int{
	registrationdomain.ErrRegistrationNotFound: http.StatusNotFound,
	registrationdomain.ErrInvalidRegistration:  http.StatusBadRequest,
	registrationdomain.ErrInvalidStatus:        http.StatusBadRequest,
	registrationdomain.ErrAlreadyProcessed:     http.StatusConflict,
	registrationdomain.ErrRegistrationTerminal: http.StatusConflict,
	registrationdomain.ErrUnknownPackage:       http.StatusBadRequest,

	invoicedomain.ErrInvoiceNotFound:          http.StatusNotFound,
	invoicedomain.ErrRegistrationNotFound:     http.StatusNotFound,
	invoicedomain.ErrMissingPricing:           http.StatusConflict,
	invoicedomain.ErrMissingRecipient:         http.StatusConflict,
	invoicedomain.ErrRegistrationNotProcessed: http.StatusConflict,
	invoicedomain.ErrInvalidTransition:        http.StatusConflict,
	invoicedomain.ErrInvoiceTerminal:          http.StatusConflict,
	invoicedomain.ErrInvalidAmount:            http.StatusBadRequest,

	catalogdomain.ErrPackagePriceNotFound: http.StatusNotFound,
	catalogdomain.ErrDuplicatePackage:     http.StatusConflict,
	catalogdomain.ErrInvalidPackagePrice:  http.StatusBadRequest,

	settingsdomain.ErrSettingNotFound: http.StatusNotFound,

	pagination.ErrInvalidPageToken: http.StatusBadRequest,
}

func AbortWithError(c *gin.Context, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
		return
	}

	for sentinel, status := range statusByError {
		if errors.Is(err, sentinel) {
			c.AbortWithStatusJSON(status, gin.H{"error": &APIError{
				Status:  status,
				Code:    sentinel.Error(),
				Message: humanMessage(sentinel),
			}})
			return
		}
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "an internal error occurred",
	}})
}

func humanMessage(err error) string {
	switch {
	case errors.Is(err, registrationdomain.ErrRegistrationNotFound):
		return "registration not found"
	case errors.Is(err, registrationdomain.ErrAlreadyProcessed):
		return "registration has already been processed"
	case errors.Is(err, registrationdomain.ErrRegistrationTerminal):
		return "registration is cancelled"
	case errors.Is(err, registrationdomain.ErrUnknownPackage):
		return "no price is configured for this service and package"
	case errors.Is(err, invoicedomain.ErrInvoiceNotFound):
		return "invoice not found"
	case errors.Is(err, invoicedomain.ErrMissingPricing):
		return "no price is configured for this service and package"
	case errors.Is(err, invoicedomain.ErrMissingRecipient):
		return "the invoice has no recipient email address"
	case errors.Is(err, invoicedomain.ErrInvoiceTerminal):
		return "the invoice is paid or cancelled"
	case errors.Is(err, pagination.ErrInvalidPageToken):
		return "the page token is invalid"
	default:
		return err.Error()
	}
}
