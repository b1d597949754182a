package data

import (
	"context"
	"fmt"
	"time"

	"github.com/aoideee/locallibrary/internal/validator"
)

// Author is a person owning zero or more books.
type Author struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DateOfBirth *Date     `json:"date_of_birth,omitempty"`
	DateOfDeath *Date     `json:"date_of_death,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Name is the display form used in listings: "last, first".
func (a Author) Name() string {
	return fmt.Sprintf("%s, %s", a.LastName, a.FirstName)
}

// CreateAuthorInput holds the fields a client supplies to create an author.
type CreateAuthorInput struct {
	FirstName   string `json:"first_name" validate:"required,max=100"`
	LastName    string `json:"last_name" validate:"required,max=100"`
	DateOfBirth *Date  `json:"date_of_birth"`
	DateOfDeath *Date  `json:"date_of_death"`
}

// UpdateAuthorInput holds a partial author update. Nil names mean
// "leave as-is"; the dates can also be cleared with an explicit null.
type UpdateAuthorInput struct {
	FirstName   *string        `json:"first_name" validate:"omitempty,max=100"`
	LastName    *string        `json:"last_name" validate:"omitempty,max=100"`
	DateOfBirth Optional[Date] `json:"date_of_birth"`
	DateOfDeath Optional[Date] `json:"date_of_death"`
}

// ValidateAuthor checks an author before it is written.
func ValidateAuthor(v *validator.Validator, author *Author) {
	v.Check(author.FirstName != "", "first_name", "must be provided")
	v.Check(len(author.FirstName) <= 100, "first_name", "must not be more than 100 characters long")
	v.Check(author.LastName != "", "last_name", "must be provided")
	v.Check(len(author.LastName) <= 100, "last_name", "must not be more than 100 characters long")

	if author.DateOfBirth != nil && author.DateOfDeath != nil {
		v.Check(!author.DateOfDeath.Before(*author.DateOfBirth), "date_of_death", "must not be before date_of_birth")
	}
}

// AuthorModel wraps the connection pool for the authors table.
type AuthorModel struct {
	DB Querier
}

const authorColumns = `id, first_name, last_name, date_of_birth, date_of_death, created_at, updated_at`

func scanAuthor(row interface{ Scan(...any) error }, author *Author, extra ...any) error {
	var born, died nullDate
	dest := append(extra, &author.ID, &author.FirstName, &author.LastName, &born, &died, &author.CreatedAt, &author.UpdatedAt)
	if err := row.Scan(dest...); err != nil {
		return err
	}
	author.DateOfBirth = born.ptr()
	author.DateOfDeath = died.ptr()
	return nil
}

// Insert adds an author and writes the generated id and timestamps back.
func (m AuthorModel) Insert(author *Author) error {
	query := `
		INSERT INTO authors (first_name, last_name, date_of_birth, date_of_death)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	args := []any{author.FirstName, author.LastName, dateArg(author.DateOfBirth), dateArg(author.DateOfDeath)}
	return m.DB.QueryRowContext(ctx, query, args...).Scan(&author.ID, &author.CreatedAt, &author.UpdatedAt)
}

// Get returns the author with the given id, or ErrRecordNotFound.
func (m AuthorModel) Get(id int64) (*Author, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `SELECT ` + authorColumns + ` FROM authors WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var author Author
	if err := scanAuthor(m.DB.QueryRowContext(ctx, query, id), &author); err != nil {
		return nil, translate(err)
	}
	return &author, nil
}

// GetAll returns a page of authors.
func (m AuthorModel) GetAll(filters Filters) ([]*Author, Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), %s
		FROM authors
		ORDER BY %s %s, id ASC
		LIMIT $1 OFFSET $2`, authorColumns, filters.sortColumn(), filters.sortDirection())

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	rows, err := m.DB.QueryContext(ctx, query, filters.limit(), filters.offset())
	if err != nil {
		return nil, Metadata{}, err
	}
	defer rows.Close()

	totalRecords := 0
	authors := []*Author{}
	for rows.Next() {
		var author Author
		if err := scanAuthor(rows, &author, &totalRecords); err != nil {
			return nil, Metadata{}, err
		}
		authors = append(authors, &author)
	}
	if err = rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	return authors, calculateMetadata(totalRecords, filters.Page, filters.PageSize), nil
}

// Count returns the number of authors.
func (m AuthorModel) Count() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var n int
	err := m.DB.QueryRowContext(ctx, `SELECT count(*) FROM authors`).Scan(&n)
	return n, err
}

// Update saves every mutable field of author and refreshes updated_at.
func (m AuthorModel) Update(author *Author) error {
	query := `
		UPDATE authors
		SET first_name = $1, last_name = $2, date_of_birth = $3, date_of_death = $4,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $5
		RETURNING updated_at`

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	args := []any{
		author.FirstName,
		author.LastName,
		dateArg(author.DateOfBirth),
		dateArg(author.DateOfDeath),
		author.ID,
	}
	err := m.DB.QueryRowContext(ctx, query, args...).Scan(&author.UpdatedAt)
	return translate(err)
}

// Delete removes an author. Their books stay, with author_id set to NULL.
func (m AuthorModel) Delete(id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	result, err := m.DB.ExecContext(ctx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}
