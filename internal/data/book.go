// Package data provides the catalog models (genres, authors, books, copies
// and users) and their PostgreSQL access logic.
package data

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aoideee/locallibrary/internal/validator"
	"github.com/lib/pq"
)

// Book is a title-level catalog entry, distinct from its physical copies.
type Book struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	ISBN      string    `json:"isbn"`
	AuthorID  *int64    `json:"author_id"`
	GenreIDs  []int64   `json:"genre_ids"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayGenre joins the names of the first three genres, for listings.
func DisplayGenre(genres []*Genre) string {
	names := make([]string, 0, 3)
	for _, g := range genres {
		if len(names) == 3 {
			break
		}
		names = append(names, g.Name)
	}
	return strings.Join(names, ", ")
}

// CreateBookInput holds the fields a client must supply when creating a book.
type CreateBookInput struct {
	Title    string  `json:"title" validate:"required,max=200"`
	Summary  string  `json:"summary" validate:"required,max=1000"`
	ISBN     string  `json:"isbn" validate:"required,len=13"`
	AuthorID *int64  `json:"author_id" validate:"omitempty,gt=0"`
	GenreIDs []int64 `json:"genre_ids" validate:"unique,dive,gt=0"`
}

// UpdateBookInput holds a partial book update. Every field is a pointer so
// "not provided" (nil) is distinct from "set to zero/empty". author_id may be
// cleared with an explicit null.
type UpdateBookInput struct {
	Title    *string  `json:"title" validate:"omitempty,max=200"`
	Summary  *string  `json:"summary" validate:"omitempty,max=1000"`
	ISBN     *string  `json:"isbn" validate:"omitempty,len=13"`
	AuthorID Optional[int64] `json:"author_id"`
	GenreIDs *[]int64        `json:"genre_ids" validate:"omitempty,unique,dive,gt=0"`
}

// ValidateBook checks a book before it is written.
func ValidateBook(v *validator.Validator, book *Book) {
	v.Check(book.Title != "", "title", "must be provided")
	v.Check(len(book.Title) <= 200, "title", "must not be more than 200 characters long")
	v.Check(book.Summary != "", "summary", "must be provided")
	v.Check(len(book.Summary) <= 1000, "summary", "must not be more than 1000 characters long")
	v.Check(len(book.ISBN) == 13, "isbn", "must be exactly 13 characters long")
	if book.AuthorID != nil {
		v.Check(*book.AuthorID > 0, "author_id", "must be greater than 0")
	}
	v.Check(validator.Unique(book.GenreIDs), "genre_ids", "must not contain duplicate values")
}

// BookModel wraps the connection pool for books and their genre links.
type BookModel struct {
	DB Querier
}

const bookSelect = `
		SELECT b.id, b.title, b.summary, b.isbn, b.author_id, b.created_at, b.updated_at,
		       COALESCE(array_agg(bg.genre_id ORDER BY bg.genre_id) FILTER (WHERE bg.genre_id IS NOT NULL), '{}')
		FROM books b
		LEFT JOIN books_genres bg ON bg.book_id = b.id`

func scanBook(row interface{ Scan(...any) error }, book *Book, extra ...any) error {
	var authorID sql.NullInt64
	dest := append(extra,
		&book.ID, &book.Title, &book.Summary, &book.ISBN, &authorID,
		&book.CreatedAt, &book.UpdatedAt, pq.Array(&book.GenreIDs))
	if err := row.Scan(dest...); err != nil {
		return err
	}
	book.AuthorID = nil
	if authorID.Valid {
		book.AuthorID = &authorID.Int64
	}
	if book.GenreIDs == nil {
		book.GenreIDs = []int64{}
	}
	return nil
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

// Insert adds a book and its genre links in one transaction.
func (m BookModel) Insert(book *Book) error {
	query := `
		INSERT INTO books (title, summary, isbn, author_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	args := []any{book.Title, book.Summary, book.ISBN, nullableID(book.AuthorID)}
	return withTx(ctx, m.DB, func(tx Querier) error {
		err := tx.QueryRowContext(ctx, query, args...).Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)
		if err != nil {
			return translate(err)
		}
		return linkGenres(ctx, tx, book.ID, book.GenreIDs)
	})
}

func linkGenres(ctx context.Context, tx Querier, bookID int64, genreIDs []int64) error {
	if len(genreIDs) == 0 {
		return nil
	}
	query := `
		INSERT INTO books_genres (book_id, genre_id)
		SELECT $1, unnest($2::bigint[])`
	_, err := tx.ExecContext(ctx, query, bookID, pq.Array(genreIDs))
	return translate(err)
}

// Get returns the book with the given id, or ErrRecordNotFound.
func (m BookModel) Get(id int64) (*Book, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := bookSelect + `
		WHERE b.id = $1
		GROUP BY b.id`

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var book Book
	if err := scanBook(m.DB.QueryRowContext(ctx, query, id), &book); err != nil {
		return nil, translate(err)
	}
	return &book, nil
}

// GetAll returns a page of books, optionally narrowed by a full-text match
// on the title.
func (m BookModel) GetAll(title string, filters Filters) ([]*Book, Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), q.* FROM (%s
		WHERE (to_tsvector('simple', b.title) @@ plainto_tsquery('simple', $1) OR $1 = '')
		GROUP BY b.id) q
		ORDER BY %s %s, id ASC
		LIMIT $2 OFFSET $3`, bookSelect, filters.sortColumn(), filters.sortDirection())

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	rows, err := m.DB.QueryContext(ctx, query, title, filters.limit(), filters.offset())
	if err != nil {
		return nil, Metadata{}, err
	}
	defer rows.Close()

	return collectBooks(rows, filters)
}

// GetByAuthor lists an author's books ordered by title.
func (m BookModel) GetByAuthor(authorID int64) ([]*Book, error) {
	query := bookSelect + `
		WHERE b.author_id = $1
		GROUP BY b.id
		ORDER BY b.title, b.id`

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	rows, err := m.DB.QueryContext(ctx, query, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []*Book{}
	for rows.Next() {
		var book Book
		if err := scanBook(rows, &book); err != nil {
			return nil, err
		}
		books = append(books, &book)
	}
	return books, rows.Err()
}

func collectBooks(rows *sql.Rows, filters Filters) ([]*Book, Metadata, error) {
	totalRecords := 0
	books := []*Book{}
	for rows.Next() {
		var book Book
		if err := scanBook(rows, &book, &totalRecords); err != nil {
			return nil, Metadata{}, err
		}
		books = append(books, &book)
	}
	if err := rows.Err(); err != nil {
		return nil, Metadata{}, err
	}
	return books, calculateMetadata(totalRecords, filters.Page, filters.PageSize), nil
}

// Count returns the number of books.
func (m BookModel) Count() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var n int
	err := m.DB.QueryRowContext(ctx, `SELECT count(*) FROM books`).Scan(&n)
	return n, err
}

// Update saves the book row and replaces its genre links.
func (m BookModel) Update(book *Book) error {
	query := `
		UPDATE books
		SET title = $1, summary = $2, isbn = $3, author_id = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $5
		RETURNING updated_at`

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	args := []any{book.Title, book.Summary, book.ISBN, nullableID(book.AuthorID), book.ID}
	return withTx(ctx, m.DB, func(tx Querier) error {
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&book.UpdatedAt); err != nil {
			return translate(err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM books_genres WHERE book_id = $1`, book.ID); err != nil {
			return err
		}
		return linkGenres(ctx, tx, book.ID, book.GenreIDs)
	})
}

// Delete removes a book. Its instances stay, with book_id set to NULL.
func (m BookModel) Delete(id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	result, err := m.DB.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}
