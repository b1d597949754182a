// cmd/api/routes.go
package main

import (
	"net/http"

	"github.com/aoideee/locallibrary/internal/data"
	"github.com/julienschmidt/httprouter"
)

// routes registers all HTTP endpoints and returns the router wrapped in the
// global middleware.
//
// Middleware chain (outermost → innermost):
//
//	recoverPanic → rateLimit → session → authenticate → router
func (app *applicationDependencies) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	librarian := func(next http.HandlerFunc) http.HandlerFunc {
		return app.requirePermission(data.PermissionMarkReturned, next)
	}

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)
	router.HandlerFunc(http.MethodGet, "/v1/catalog", app.catalogSummaryHandler)

	router.HandlerFunc(http.MethodGet, "/v1/genres", app.listGenresHandler)
	router.HandlerFunc(http.MethodPost, "/v1/genres", librarian(app.createGenreHandler))
	router.HandlerFunc(http.MethodGet, "/v1/genres/:id", app.showGenreHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/genres/:id", librarian(app.updateGenreHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/genres/:id", librarian(app.deleteGenreHandler))

	router.HandlerFunc(http.MethodGet, "/v1/authors", app.listAuthorsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/authors", librarian(app.createAuthorHandler))
	router.HandlerFunc(http.MethodGet, "/v1/authors/:id", app.showAuthorHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/authors/:id", librarian(app.updateAuthorHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/authors/:id", librarian(app.deleteAuthorHandler))

	router.HandlerFunc(http.MethodGet, "/v1/books", app.listBooksHandler)
	router.HandlerFunc(http.MethodPost, "/v1/books", librarian(app.createBookHandler))
	router.HandlerFunc(http.MethodGet, "/v1/books/:id", app.showBookHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/books/:id", librarian(app.updateBookHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/books/:id", librarian(app.deleteBookHandler))

	router.HandlerFunc(http.MethodGet, "/v1/bookinstances", app.listBookInstancesHandler)
	router.HandlerFunc(http.MethodPost, "/v1/bookinstances", librarian(app.createBookInstanceHandler))
	router.HandlerFunc(http.MethodGet, "/v1/bookinstances/:id", app.showBookInstanceHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/bookinstances/:id", librarian(app.updateBookInstanceHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/bookinstances/:id", librarian(app.deleteBookInstanceHandler))

	router.HandlerFunc(http.MethodPost, "/v1/bookinstances/:id/checkout", librarian(app.checkoutBookInstanceHandler))
	router.HandlerFunc(http.MethodGet, "/v1/bookinstances/:id/renew", librarian(app.showRenewalHandler))
	router.HandlerFunc(http.MethodPost, "/v1/bookinstances/:id/renew", librarian(app.renewBookInstanceHandler))
	router.HandlerFunc(http.MethodPost, "/v1/bookinstances/:id/return", librarian(app.returnBookInstanceHandler))

	router.HandlerFunc(http.MethodGet, "/v1/loans", librarian(app.listAllLoansHandler))
	router.HandlerFunc(http.MethodGet, "/v1/loans/mine", app.requireAuthenticatedUser(app.listMyLoansHandler))

	router.HandlerFunc(http.MethodPost, "/v1/users", app.registerUserHandler)
	router.HandlerFunc(http.MethodPost, "/v1/tokens/authentication", app.createAuthenticationTokenHandler)

	return app.recoverPanic(app.rateLimit(app.session(app.authenticate(router))))
}
