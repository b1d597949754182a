package data

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/aoideee/locallibrary/internal/validator"
	"github.com/lib/pq"
)

// queryTimeout bounds every database round-trip made by the models.
const queryTimeout = 3 * time.Second

var (
	// ErrRecordNotFound is returned when a query finds no matching row.
	ErrRecordNotFound = errors.New("record not found")
	// ErrEditConflict is returned when a row changed between read and write.
	ErrEditConflict = errors.New("edit conflict")
	// ErrDuplicateEmail is returned when a user registers an email twice.
	ErrDuplicateEmail = errors.New("duplicate email")
	// ErrInvalidReference is returned when a foreign key points nowhere.
	ErrInvalidReference = errors.New("referenced record does not exist")
)

// Models groups all database model types together. It is passed around the
// application so every handler has access to the database without importing
// database/sql directly.
type Models struct {
	Genres        GenreModel
	Authors       AuthorModel
	Books         BookModel
	BookInstances BookInstanceModel
	Users         UserModel
	Permissions   PermissionModel
}

// Querier is the subset of *sql.DB and *sql.Tx the models run queries
// through. Models built on a *sql.Tx take part in the caller's transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewModels constructs a Models value wired up to a connection pool or to
// an open transaction.
func NewModels(db Querier) Models {
	return Models{
		Genres:        GenreModel{DB: db},
		Authors:       AuthorModel{DB: db},
		Books:         BookModel{DB: db},
		BookInstances: BookInstanceModel{DB: db},
		Users:         UserModel{DB: db},
		Permissions:   PermissionModel{DB: db},
	}
}

// translate maps postgres constraint violations onto the package sentinels.
func translate(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23503": // foreign_key_violation
			return ErrInvalidReference
		case "23505": // unique_violation
			if pqErr.Constraint == "users_email_key" {
				return ErrDuplicateEmail
			}
		}
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRecordNotFound
	}
	return err
}

// withTx runs fn in a transaction of its own when q is a pool, and inside
// the caller's transaction when q already is one.
func withTx(ctx context.Context, q Querier, fn func(Querier) error) error {
	db, ok := q.(*sql.DB)
	if !ok {
		return fn(q)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Filters holds pagination and sorting parameters extracted from URL query strings.
type Filters struct {
	Page         int      // Current page number (1-indexed)
	PageSize     int      // Number of records per page
	Sort         string   // Column name to sort by (prefix with "-" for DESC)
	SortSafeList []string // Allowed sort values to prevent SQL injection
}

// ValidateFilters checks the pagination and sort parameters.
func ValidateFilters(v *validator.Validator, f Filters) {
	v.Check(f.Page > 0, "page", "must be greater than zero")
	v.Check(f.Page <= 10_000_000, "page", "must be a maximum of 10 million")
	v.Check(f.PageSize > 0, "page_size", "must be greater than zero")
	v.Check(f.PageSize <= 100, "page_size", "must be a maximum of 100")
	v.Check(validator.PermittedValue(f.Sort, f.SortSafeList...), "sort", "invalid sort value")
}

// sortColumn returns the validated column name for ORDER BY, defaulting to id.
func (f Filters) sortColumn() string {
	for _, safe := range f.SortSafeList {
		if f.Sort == safe {
			return strings.TrimPrefix(f.Sort, "-")
		}
	}
	return "id"
}

// sortDirection returns "ASC" or "DESC" based on the Sort prefix.
func (f Filters) sortDirection() string {
	if strings.HasPrefix(f.Sort, "-") {
		return "DESC"
	}
	return "ASC"
}

func (f Filters) limit() int  { return f.PageSize }
func (f Filters) offset() int { return (f.Page - 1) * f.PageSize }

// Metadata contains pagination information returned alongside list responses.
type Metadata struct {
	CurrentPage  int `json:"current_page,omitempty"`
	PageSize     int `json:"page_size,omitempty"`
	FirstPage    int `json:"first_page,omitempty"`
	LastPage     int `json:"last_page,omitempty"`
	TotalRecords int `json:"total_records,omitempty"`
}

// calculateMetadata computes page metadata from total record count and filter values.
func calculateMetadata(totalRecords, page, pageSize int) Metadata {
	if totalRecords == 0 {
		return Metadata{}
	}
	return Metadata{
		CurrentPage:  page,
		PageSize:     pageSize,
		FirstPage:    1,
		LastPage:     int(math.Ceil(float64(totalRecords) / float64(pageSize))),
		TotalRecords: totalRecords,
	}
}
