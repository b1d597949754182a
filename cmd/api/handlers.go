// cmd/api/handlers.go
// Healthcheck, the catalog home summary and the books resource.
package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aoideee/locallibrary/internal/data"
	"github.com/aoideee/locallibrary/internal/validator"
)

// healthcheckHandler handles GET /v1/healthcheck.
func (app *applicationDependencies) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	env := envelope{
		"status": "available",
		"system_info": map[string]string{
			"environment": app.config.environment,
			"version":     appVersion,
		},
	}

	err := app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// catalogSummaryHandler handles GET /v1/catalog, the library home page:
// record counts plus how many times this session has visited before.
func (app *applicationDependencies) catalogSummaryHandler(w http.ResponseWriter, r *http.Request) {
	numBooks, err := app.models.Books.Count()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	numInstances, err := app.models.BookInstances.Count()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	numAvailable, err := app.models.BookInstances.CountByStatus(data.StatusAvailable)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	numAuthors, err := app.models.Authors.Count()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	var numVisits int64
	if session := app.contextGetSession(r); session != "" {
		numVisits, err = app.visits.Hit(r.Context(), session)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"catalog": map[string]any{
		"num_books":               numBooks,
		"num_instances":           numInstances,
		"num_instances_available": numAvailable,
		"num_authors":             numAuthors,
		"num_visits":              numVisits,
	}}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// createBookHandler handles POST /v1/books.
func (app *applicationDependencies) createBookHandler(w http.ResponseWriter, r *http.Request) {
	var input data.CreateBookInput

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.decodeErrorResponse(w, r, err)
		return
	}

	book := &data.Book{
		Title:    input.Title,
		Summary:  input.Summary,
		ISBN:     input.ISBN,
		AuthorID: input.AuthorID,
		GenreIDs: input.GenreIDs,
	}
	if book.GenreIDs == nil {
		book.GenreIDs = []int64{}
	}

	v := validator.New()
	if err := v.Struct(input); err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	if data.ValidateBook(v, book); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.Books.Insert(book)
	if err != nil {
		app.writeReferenceError(w, r, err, "author_id or genre_ids")
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/books/%d", book.ID))

	err = app.writeJSON(w, http.StatusCreated, envelope{"book": book}, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showBookHandler handles GET /v1/books/:id. The response carries the
// book's author, genres and copies alongside it.
func (app *applicationDependencies) showBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	book, err := app.models.Books.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	var author *data.Author
	if book.AuthorID != nil {
		author, err = app.models.Authors.Get(*book.AuthorID)
		if err != nil && !errors.Is(err, data.ErrRecordNotFound) {
			app.serverErrorResponse(w, r, err)
			return
		}
	}

	genres, err := app.models.Genres.GetForBook(book.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	instances, err := app.models.BookInstances.GetForBook(book.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	data.MarkOverdue(app.today(), instances...)

	env := envelope{
		"book":          book,
		"author":        author,
		"genres":        genres,
		"genre_summary": data.DisplayGenre(genres),
		"instances":     instances,
	}
	err = app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listBooksHandler handles GET /v1/books?title=&page=&page_size=&sort=.
func (app *applicationDependencies) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	v := validator.New()

	title := app.readString(qs, "title", "")
	filters := app.readFilters(qs, v, 20, "title", "id", "title", "-id", "-title")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	books, metadata, err := app.models.Books.GetAll(title, filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"books": books, "metadata": metadata}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateBookHandler handles PATCH /v1/books/:id. Only the fields present in
// the body are applied; genre_ids, when present, replaces the whole set.
func (app *applicationDependencies) updateBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	book, err := app.models.Books.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	var input data.UpdateBookInput
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.decodeErrorResponse(w, r, err)
		return
	}

	if input.Title != nil {
		book.Title = *input.Title
	}
	if input.Summary != nil {
		book.Summary = *input.Summary
	}
	if input.ISBN != nil {
		book.ISBN = *input.ISBN
	}
	input.AuthorID.Apply(&book.AuthorID)
	if input.GenreIDs != nil {
		book.GenreIDs = *input.GenreIDs
	}

	v := validator.New()
	if err := v.Struct(input); err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	if data.ValidateBook(v, book); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.Books.Update(book)
	if err != nil {
		app.writeReferenceError(w, r, err, "author_id or genre_ids")
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteBookHandler handles DELETE /v1/books/:id. Copies of the book are
// kept with their book reference cleared.
func (app *applicationDependencies) deleteBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	err = app.models.Books.Delete(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "book successfully deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// writeReferenceError answers a failed write: a dangling foreign key is a
// validation failure on field, a vanished row is a 404, anything else a 500.
func (app *applicationDependencies) writeReferenceError(w http.ResponseWriter, r *http.Request, err error, field string) {
	switch {
	case errors.Is(err, data.ErrInvalidReference):
		app.failedValidationResponse(w, r, map[string]string{field: "refers to a record that does not exist"})
	case errors.Is(err, data.ErrRecordNotFound):
		app.notFoundResponse(w, r)
	case errors.Is(err, data.ErrEditConflict):
		app.editConflictResponse(w, r)
	default:
		app.serverErrorResponse(w, r, err)
	}
}
