package data

import (
	"context"
	"database/sql"
	"strings"

	"github.com/aoideee/locallibrary/internal/validator"
)

// Genre is a category tag applicable to many books.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GenreInput is the body accepted when creating or renaming a genre.
type GenreInput struct {
	Name *string `json:"name" validate:"required"`
}

// ValidateGenre checks a genre before it is written.
func ValidateGenre(v *validator.Validator, genre *Genre) {
	v.Check(strings.TrimSpace(genre.Name) != "", "name", "must be provided")
	v.Check(len(genre.Name) <= 200, "name", "must not be more than 200 characters long")
}

// GenreModel wraps the connection pool for the genres table.
type GenreModel struct {
	DB Querier
}

// Insert adds a genre and writes the generated id back into genre.
func (m GenreModel) Insert(genre *Genre) error {
	query := `
		INSERT INTO genres (name)
		VALUES ($1)
		RETURNING id`

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	return m.DB.QueryRowContext(ctx, query, genre.Name).Scan(&genre.ID)
}

// Get returns the genre with the given id, or ErrRecordNotFound.
func (m GenreModel) Get(id int64) (*Genre, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `SELECT id, name FROM genres WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var genre Genre
	err := m.DB.QueryRowContext(ctx, query, id).Scan(&genre.ID, &genre.Name)
	if err != nil {
		return nil, translate(err)
	}
	return &genre, nil
}

// GetAll lists every genre ordered by name.
func (m GenreModel) GetAll() ([]*Genre, error) {
	query := `SELECT id, name FROM genres ORDER BY name, id`

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	rows, err := m.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanGenres(rows)
}

// GetForBook lists the genres linked to a book, ordered by name.
func (m GenreModel) GetForBook(bookID int64) ([]*Genre, error) {
	query := `
		SELECT g.id, g.name
		FROM genres g
		INNER JOIN books_genres bg ON bg.genre_id = g.id
		WHERE bg.book_id = $1
		ORDER BY g.name, g.id`

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	rows, err := m.DB.QueryContext(ctx, query, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanGenres(rows)
}

func scanGenres(rows *sql.Rows) ([]*Genre, error) {
	genres := []*Genre{}
	for rows.Next() {
		var genre Genre
		if err := rows.Scan(&genre.ID, &genre.Name); err != nil {
			return nil, err
		}
		genres = append(genres, &genre)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return genres, nil
}

// Update renames a genre.
func (m GenreModel) Update(genre *Genre) error {
	query := `UPDATE genres SET name = $1 WHERE id = $2`

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	result, err := m.DB.ExecContext(ctx, query, genre.Name, genre.ID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// Delete removes a genre. Link rows in books_genres go with it; the books
// themselves are untouched.
func (m GenreModel) Delete(id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	result, err := m.DB.ExecContext(ctx, `DELETE FROM genres WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// requireRow turns "zero rows affected" into ErrRecordNotFound.
func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
