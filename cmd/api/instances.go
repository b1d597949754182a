// cmd/api/instances.go
// Handlers for the book instance (physical copy) resource.
package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aoideee/locallibrary/internal/data"
	"github.com/aoideee/locallibrary/internal/validator"
)

// createBookInstanceHandler handles POST /v1/bookinstances. The id is
// generated server-side and status defaults to maintenance.
func (app *applicationDependencies) createBookInstanceHandler(w http.ResponseWriter, r *http.Request) {
	var input data.CreateBookInstanceInput

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.decodeErrorResponse(w, r, err)
		return
	}

	bi := &data.BookInstance{
		BookID:     input.BookID,
		Imprint:    input.Imprint,
		DueBack:    input.DueBack,
		BorrowerID: input.BorrowerID,
		Status:     input.Status,
	}
	if bi.Status == "" {
		bi.Status = data.StatusMaintenance
	}

	v := validator.New()
	if err := v.Struct(input); err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	if data.ValidateBookInstance(v, bi); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.BookInstances.Insert(bi)
	if err != nil {
		app.writeReferenceError(w, r, err, "book_id or borrower_id")
		return
	}
	data.MarkOverdue(app.today(), bi)

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/bookinstances/%s", bi.ID))

	err = app.writeJSON(w, http.StatusCreated, envelope{"book_instance": bi}, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// getBookInstance loads the :id copy, writing the 404/500 response itself
// when it cannot.
func (app *applicationDependencies) getBookInstance(w http.ResponseWriter, r *http.Request) (*data.BookInstance, bool) {
	id, err := app.readUUIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return nil, false
	}

	bi, err := app.models.BookInstances.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return nil, false
	}
	return bi, true
}

// showBookInstanceHandler handles GET /v1/bookinstances/:id.
func (app *applicationDependencies) showBookInstanceHandler(w http.ResponseWriter, r *http.Request) {
	bi, ok := app.getBookInstance(w, r)
	if !ok {
		return
	}
	data.MarkOverdue(app.today(), bi)

	err := app.writeJSON(w, http.StatusOK, envelope{"book_instance": bi}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listBookInstancesHandler handles GET /v1/bookinstances?status=.
// Available copies are counted with ?status=available.
func (app *applicationDependencies) listBookInstancesHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	v := validator.New()

	status := data.LoanStatus(app.readString(qs, "status", ""))
	if status != "" {
		v.Check(validator.PermittedValue(status, data.LoanStatuses...), "status", "invalid loan status")
	}
	filters := app.readFilters(qs, v, 20, "due_back",
		"id", "due_back", "imprint", "status", "-id", "-due_back", "-imprint", "-status")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	instances, metadata, err := app.models.BookInstances.GetAll(status, filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	data.MarkOverdue(app.today(), instances...)

	err = app.writeJSON(w, http.StatusOK, envelope{"book_instances": instances, "metadata": metadata}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateBookInstanceHandler handles PATCH /v1/bookinstances/:id, the admin
// edit of a copy. Loan transitions have their own endpoints in loans.go.
func (app *applicationDependencies) updateBookInstanceHandler(w http.ResponseWriter, r *http.Request) {
	bi, ok := app.getBookInstance(w, r)
	if !ok {
		return
	}

	var input data.UpdateBookInstanceInput
	err := app.readJSON(w, r, &input)
	if err != nil {
		app.decodeErrorResponse(w, r, err)
		return
	}

	input.BookID.Apply(&bi.BookID)
	if input.Imprint != nil {
		bi.Imprint = *input.Imprint
	}
	input.DueBack.Apply(&bi.DueBack)
	input.BorrowerID.Apply(&bi.BorrowerID)
	if input.Status != nil {
		bi.Status = *input.Status
	}

	v := validator.New()
	if err := v.Struct(input); err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	if data.ValidateBookInstance(v, bi); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.BookInstances.Update(bi)
	if err != nil {
		app.writeReferenceError(w, r, err, "book_id or borrower_id")
		return
	}
	data.MarkOverdue(app.today(), bi)

	err = app.writeJSON(w, http.StatusOK, envelope{"book_instance": bi}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteBookInstanceHandler handles DELETE /v1/bookinstances/:id.
func (app *applicationDependencies) deleteBookInstanceHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readUUIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	err = app.models.BookInstances.Delete(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "book instance successfully deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
