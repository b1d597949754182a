package data

import (
	"errors"
	"testing"
	"time"

	"github.com/aoideee/locallibrary/internal/validator"
)

func TestCheckRenewal(t *testing.T) {
	today := NewDate(2024, time.February, 20)

	tests := []struct {
		name     string
		proposed Date
		want     error
	}{
		{"long ago", NewDate(2023, time.March, 1), ErrRenewalInPast},
		{"yesterday", today.AddDays(-1), ErrRenewalInPast},
		{"today", today, nil},
		{"tomorrow", today.AddDays(1), nil},
		{"three weeks", today.AddDays(21), nil},
		{"last allowed day", today.AddDays(28), nil},
		{"one day past window", today.AddDays(29), ErrRenewalTooFarAhead},
		{"next year", today.AddDays(365), ErrRenewalTooFarAhead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRenewal(tt.proposed, today)
			if !errors.Is(err, tt.want) {
				t.Fatalf("CheckRenewal(%s, %s) = %v, want %v", tt.proposed, today, err, tt.want)
			}
		})
	}
}

func TestCheckRenewalWholeWindow(t *testing.T) {
	today := NewDate(2024, time.December, 20) // window crosses a year boundary

	for offset := -60; offset <= 60; offset++ {
		err := CheckRenewal(today.AddDays(offset), today)
		switch {
		case offset < 0:
			if !errors.Is(err, ErrRenewalInPast) {
				t.Fatalf("offset %d: got %v, want in-past", offset, err)
			}
		case offset > RenewalWindowDays:
			if !errors.Is(err, ErrRenewalTooFarAhead) {
				t.Fatalf("offset %d: got %v, want too-far-ahead", offset, err)
			}
		default:
			if err != nil {
				t.Fatalf("offset %d: got %v, want accepted", offset, err)
			}
		}
	}
}

func TestValidateRenewalRecordsFieldError(t *testing.T) {
	today := NewDate(2024, time.May, 1)

	v := validator.New()
	ValidateRenewal(v, today.AddDays(-3), today)
	if got := v.Errors["due_back"]; got != "invalid date - renewal in past" {
		t.Fatalf("due_back error = %q", got)
	}

	v = validator.New()
	ValidateRenewal(v, today.AddDays(40), today)
	if got := v.Errors["due_back"]; got != "invalid date - renewal more than 4 weeks ahead" {
		t.Fatalf("due_back error = %q", got)
	}

	v = validator.New()
	ValidateRenewal(v, today.AddDays(7), today)
	if !v.Valid() {
		t.Fatalf("unexpected errors: %v", v.Errors)
	}
}

func TestProposedRenewalIsThreeWeeksOut(t *testing.T) {
	today := NewDate(2024, time.January, 31)
	want := NewDate(2024, time.February, 21)
	if got := ProposedRenewal(today); !got.Equal(want) {
		t.Fatalf("ProposedRenewal = %s, want %s", got, want)
	}
	if err := CheckRenewal(ProposedRenewal(today), today); err != nil {
		t.Fatalf("proposed date must itself be renewable: %v", err)
	}
}
