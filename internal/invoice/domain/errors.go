package domain

import "errors"

var (
	ErrMissingPricing           = errors.New("missing_pricing")
	ErrMissingRecipient         = errors.New("missing_recipient")
	ErrInvoiceNotFound          = errors.New("invoice_not_found")
	ErrRegistrationNotFound     = errors.New("registration_not_found")
	ErrRegistrationNotProcessed = errors.New("registration_not_processed")
	ErrInvalidTransition        = errors.New("invalid_status_transition")
	ErrInvoiceTerminal          = errors.New("invoice_in_terminal_status")
	ErrInvalidAmount            = errors.New("invalid_amount")
)
