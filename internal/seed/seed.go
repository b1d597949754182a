// Package seed loads a YAML catalog fixture into the database.
package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aoideee/locallibrary/internal/data"
	"gopkg.in/yaml.v3"
)

// Fixture is the document layout of a seed file. Books refer to authors and
// genres by their position-independent keys; instances refer to books by
// ISBN and borrowers by email.
type Fixture struct {
	Genres    []string          `yaml:"genres"`
	Authors   []AuthorFixture   `yaml:"authors"`
	Books     []BookFixture     `yaml:"books"`
	Users     []UserFixture     `yaml:"users"`
	Instances []InstanceFixture `yaml:"instances"`
}

// AuthorFixture is an author; Key is how books refer to it.
type AuthorFixture struct {
	Key         string     `yaml:"key"`
	FirstName   string     `yaml:"first_name"`
	LastName    string     `yaml:"last_name"`
	DateOfBirth *data.Date `yaml:"date_of_birth"`
	DateOfDeath *data.Date `yaml:"date_of_death"`
}

type BookFixture struct {
	Title   string   `yaml:"title"`
	Summary string   `yaml:"summary"`
	ISBN    string   `yaml:"isbn"`
	Author  string   `yaml:"author"`
	Genres  []string `yaml:"genres"`
}

// UserFixture is a user account. Librarian grants can_mark_returned.
type UserFixture struct {
	Name      string `yaml:"name"`
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	Librarian bool   `yaml:"librarian"`
}

type InstanceFixture struct {
	ISBN     string          `yaml:"isbn"`
	Imprint  string          `yaml:"imprint"`
	Status   data.LoanStatus `yaml:"status"`
	DueBack  *data.Date      `yaml:"due_back"`
	Borrower string          `yaml:"borrower"`
}

// Load decodes a fixture and checks that every cross reference resolves.
func Load(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if err := f.check(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixture) check() error {
	genres := make(map[string]bool, len(f.Genres))
	for _, g := range f.Genres {
		genres[g] = true
	}
	authors := make(map[string]bool, len(f.Authors))
	for _, a := range f.Authors {
		authors[a.Key] = true
	}
	books := make(map[string]bool, len(f.Books))
	users := make(map[string]bool, len(f.Users))
	for _, u := range f.Users {
		users[u.Email] = true
	}

	var errs []error
	for _, b := range f.Books {
		books[b.ISBN] = true
		if b.Author != "" && !authors[b.Author] {
			errs = append(errs, fmt.Errorf("book %q: unknown author %q", b.Title, b.Author))
		}
		for _, g := range b.Genres {
			if !genres[g] {
				errs = append(errs, fmt.Errorf("book %q: unknown genre %q", b.Title, g))
			}
		}
	}
	for _, in := range f.Instances {
		if !books[in.ISBN] {
			errs = append(errs, fmt.Errorf("instance %q: unknown isbn %q", in.Imprint, in.ISBN))
		}
		if in.Borrower != "" && !users[in.Borrower] {
			errs = append(errs, fmt.Errorf("instance %q: unknown borrower %q", in.Imprint, in.Borrower))
		}
	}
	return errors.Join(errs...)
}

// Apply inserts the fixture in a single transaction, so a failure part way
// through (a second run hitting a taken email, say) leaves the database as
// it was.
func Apply(ctx context.Context, db *sql.DB, f *Fixture, logger *slog.Logger) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insert(data.NewModels(tx), f); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	logger.Info("fixture applied",
		"genres", len(f.Genres),
		"authors", len(f.Authors),
		"books", len(f.Books),
		"users", len(f.Users),
		"instances", len(f.Instances),
	)
	return nil
}

// insert writes the fixture through models in dependency order.
func insert(models data.Models, f *Fixture) error {
	genreIDs := make(map[string]int64, len(f.Genres))
	for _, name := range f.Genres {
		g := &data.Genre{Name: name}
		if err := models.Genres.Insert(g); err != nil {
			return fmt.Errorf("genre %q: %w", name, err)
		}
		genreIDs[name] = g.ID
	}

	authorIDs := make(map[string]int64, len(f.Authors))
	for _, af := range f.Authors {
		a := &data.Author{
			FirstName:   af.FirstName,
			LastName:    af.LastName,
			DateOfBirth: af.DateOfBirth,
			DateOfDeath: af.DateOfDeath,
		}
		if err := models.Authors.Insert(a); err != nil {
			return fmt.Errorf("author %q: %w", af.Key, err)
		}
		authorIDs[af.Key] = a.ID
	}

	bookIDs := make(map[string]int64, len(f.Books))
	for _, bf := range f.Books {
		b := &data.Book{Title: bf.Title, Summary: bf.Summary, ISBN: bf.ISBN, GenreIDs: []int64{}}
		if id, ok := authorIDs[bf.Author]; ok {
			b.AuthorID = &id
		}
		for _, g := range bf.Genres {
			b.GenreIDs = append(b.GenreIDs, genreIDs[g])
		}
		if err := models.Books.Insert(b); err != nil {
			return fmt.Errorf("book %q: %w", bf.Title, err)
		}
		bookIDs[bf.ISBN] = b.ID
	}

	userIDs := make(map[string]int64, len(f.Users))
	for _, uf := range f.Users {
		u := &data.User{Name: uf.Name, Email: uf.Email}
		if err := u.Password.Set(uf.Password); err != nil {
			return fmt.Errorf("user %q: %w", uf.Email, err)
		}
		if err := models.Users.Insert(u); err != nil {
			return fmt.Errorf("user %q: %w", uf.Email, err)
		}
		if uf.Librarian {
			if err := models.Permissions.AddForUser(u.ID, data.PermissionMarkReturned); err != nil {
				return fmt.Errorf("user %q: %w", uf.Email, err)
			}
		}
		userIDs[uf.Email] = u.ID
	}

	for _, inf := range f.Instances {
		bookID := bookIDs[inf.ISBN]
		bi := &data.BookInstance{
			BookID:  &bookID,
			Imprint: inf.Imprint,
			Status:  inf.Status,
			DueBack: inf.DueBack,
		}
		if id, ok := userIDs[inf.Borrower]; ok {
			bi.BorrowerID = &id
		}
		if err := models.BookInstances.Insert(bi); err != nil {
			return fmt.Errorf("instance %q: %w", inf.Imprint, err)
		}
	}

	return nil
}
