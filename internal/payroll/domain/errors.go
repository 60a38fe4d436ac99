package domain

import "errors"

var (
	ErrNotFound            = errors.New("payroll_not_found")
	ErrPayrollLocked       = errors.New("payroll_locked")
	ErrPayrollNotSubmitted = errors.New("payroll_not_submitted")
	ErrPayrollAlreadyPaid  = errors.New("payroll_already_paid")
)
