package data

import (
	"errors"

	"github.com/aoideee/locallibrary/internal/validator"
)

const (
	// RenewalWindowDays is how far past today a librarian may push due_back.
	RenewalWindowDays = 28
	// DefaultLoanDays is the proposed due date offset for checkout and renewal.
	DefaultLoanDays = 21
)

var (
	ErrRenewalInPast      = errors.New("invalid date - renewal in past")
	ErrRenewalTooFarAhead = errors.New("invalid date - renewal more than 4 weeks ahead")
)

// CheckRenewal accepts proposed only if today <= proposed <= today+28 days.
// The returned error says which bound was violated.
func CheckRenewal(proposed, today Date) error {
	if proposed.Before(today) {
		return ErrRenewalInPast
	}
	if proposed.After(today.AddDays(RenewalWindowDays)) {
		return ErrRenewalTooFarAhead
	}
	return nil
}

// ProposedRenewal is the due date offered by default: three weeks out.
func ProposedRenewal(today Date) Date {
	return today.AddDays(DefaultLoanDays)
}

// RenewalInput is the single-field body of a renewal request.
type RenewalInput struct {
	DueBack *Date `json:"due_back" validate:"required"`
}

// ValidateRenewal records a due_back field error when proposed falls outside
// the renewal window.
func ValidateRenewal(v *validator.Validator, proposed, today Date) {
	if err := CheckRenewal(proposed, today); err != nil {
		v.AddError("due_back", err.Error())
	}
}
