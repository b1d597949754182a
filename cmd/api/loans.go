// cmd/api/loans.go
// Loan lifecycle handlers: checkout, renewal, return and the loan listings.
package main

import (
	"errors"
	"net/http"

	"github.com/aoideee/locallibrary/internal/data"
	"github.com/aoideee/locallibrary/internal/validator"
)

// checkoutBookInstanceHandler handles POST /v1/bookinstances/:id/checkout.
// The due date defaults to three weeks out; an explicit one must fall in
// the renewal window.
func (app *applicationDependencies) checkoutBookInstanceHandler(w http.ResponseWriter, r *http.Request) {
	bi, ok := app.getBookInstance(w, r)
	if !ok {
		return
	}

	var input data.CheckoutInput
	err := app.readJSON(w, r, &input)
	if err != nil {
		app.decodeErrorResponse(w, r, err)
		return
	}

	today := app.today()
	due := data.ProposedRenewal(today)

	v := validator.New()
	if err := v.Struct(input); err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	if input.DueBack != nil {
		due = *input.DueBack
		data.ValidateRenewal(v, due, today)
	}
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	_, err = app.models.Users.Get(input.BorrowerID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.failedValidationResponse(w, r, map[string]string{"borrower_id": "refers to a user that does not exist"})
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if err := bi.Checkout(input.BorrowerID, due); err != nil {
		app.conflictResponse(w, r, err)
		return
	}

	err = app.models.BookInstances.Update(bi)
	if err != nil {
		app.writeReferenceError(w, r, err, "borrower_id")
		return
	}
	data.MarkOverdue(today, bi)

	err = app.writeJSON(w, http.StatusOK, envelope{"book_instance": bi}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showRenewalHandler handles GET /v1/bookinstances/:id/renew: the copy plus
// the proposed renewal date and the allowed window.
func (app *applicationDependencies) showRenewalHandler(w http.ResponseWriter, r *http.Request) {
	bi, ok := app.getBookInstance(w, r)
	if !ok {
		return
	}

	today := app.today()
	data.MarkOverdue(today, bi)

	env := envelope{
		"book_instance": bi,
		"renewal": map[string]data.Date{
			"proposed_due_back": data.ProposedRenewal(today),
			"earliest":          today,
			"latest":            today.AddDays(data.RenewalWindowDays),
		},
	}
	err := app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// renewBookInstanceHandler handles POST /v1/bookinstances/:id/renew.
// On success it redirects to the all-loans listing; a date outside the
// window comes back as a due_back field error.
func (app *applicationDependencies) renewBookInstanceHandler(w http.ResponseWriter, r *http.Request) {
	bi, ok := app.getBookInstance(w, r)
	if !ok {
		return
	}

	var input data.RenewalInput
	err := app.readJSON(w, r, &input)
	if err != nil {
		app.decodeErrorResponse(w, r, err)
		return
	}

	today := app.today()

	v := validator.New()
	if err := v.Struct(input); err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	if input.DueBack != nil {
		data.ValidateRenewal(v, *input.DueBack, today)
	}
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	bi.DueBack = input.DueBack

	err = app.models.BookInstances.Update(bi)
	if err != nil {
		app.writeReferenceError(w, r, err, "due_back")
		return
	}
	data.MarkOverdue(today, bi)

	headers := make(http.Header)
	headers.Set("Location", "/v1/loans")

	err = app.writeJSON(w, http.StatusSeeOther, envelope{"book_instance": bi}, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// returnBookInstanceHandler handles POST /v1/bookinstances/:id/return.
func (app *applicationDependencies) returnBookInstanceHandler(w http.ResponseWriter, r *http.Request) {
	bi, ok := app.getBookInstance(w, r)
	if !ok {
		return
	}

	if err := bi.Return(); err != nil {
		app.conflictResponse(w, r, err)
		return
	}

	err := app.models.BookInstances.Update(bi)
	if err != nil {
		app.writeReferenceError(w, r, err, "id")
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"book_instance": bi}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listMyLoansHandler handles GET /v1/loans/mine: the caller's copies on
// loan, earliest due date first.
func (app *applicationDependencies) listMyLoansHandler(w http.ResponseWriter, r *http.Request) {
	user := app.contextGetUser(r)

	v := validator.New()
	filters := app.readFilters(r.URL.Query(), v, 10, "due_back", "due_back")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	instances, metadata, err := app.models.BookInstances.GetOnLoanByBorrower(user.ID, filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	data.MarkOverdue(app.today(), instances...)

	err = app.writeJSON(w, http.StatusOK, envelope{"loans": instances, "metadata": metadata}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listAllLoansHandler handles GET /v1/loans, the librarian's view of every
// copy on loan, earliest due date first.
func (app *applicationDependencies) listAllLoansHandler(w http.ResponseWriter, r *http.Request) {
	v := validator.New()
	filters := app.readFilters(r.URL.Query(), v, 20, "due_back", "due_back")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	instances, metadata, err := app.models.BookInstances.GetOnLoan(filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	data.MarkOverdue(app.today(), instances...)

	err = app.writeJSON(w, http.StatusOK, envelope{"loans": instances, "metadata": metadata}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
