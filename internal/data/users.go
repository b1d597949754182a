package data

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/aoideee/locallibrary/internal/validator"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// PermissionMarkReturned lets a librarian see all loans, renew and return
// copies, and edit the catalog.
const PermissionMarkReturned = "can_mark_returned"

// AnonymousUser is the request user when no valid token was presented.
var AnonymousUser = &User{}

// User is an account that can borrow copies.
type User struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  password  `json:"-"`
	Version   int       `json:"-"`
}

// IsAnonymous reports whether u is the AnonymousUser sentinel.
func (u *User) IsAnonymous() bool {
	return u == AnonymousUser
}

type password struct {
	plaintext *string
	hash      []byte
}

// Set hashes plaintext and stores both forms.
func (p *password) Set(plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), 12)
	if err != nil {
		return err
	}
	p.plaintext = &plaintext
	p.hash = hash
	return nil
}

// Matches reports whether plaintext hashes to the stored hash.
func (p *password) Matches(plaintext string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(p.hash, []byte(plaintext))
	if err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, err
		}
	}
	return true, nil
}

// RegisterUserInput is the body accepted when creating an account.
type RegisterUserInput struct {
	Name     string `json:"name" validate:"required,max=500"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginInput is the body accepted when requesting a token.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func ValidateEmail(v *validator.Validator, email string) {
	v.Check(email != "", "email", "must be provided")
	v.Check(validator.Matches(email, validator.EmailRX), "email", "must be a valid email address")
}

// ValidateUser checks a user before it is written.
func ValidateUser(v *validator.Validator, user *User) {
	v.Check(user.Name != "", "name", "must be provided")
	v.Check(len(user.Name) <= 500, "name", "must not be more than 500 characters long")
	ValidateEmail(v, user.Email)

	if user.Password.plaintext != nil {
		v.Check(len(*user.Password.plaintext) >= 8, "password", "must be at least 8 characters long")
		v.Check(len(*user.Password.plaintext) <= 72, "password", "must not be more than 72 characters long")
	}
	if user.Password.hash == nil {
		panic("missing password hash for user")
	}
}

// UserModel wraps the connection pool for the users table.
type UserModel struct {
	DB Querier
}

// Insert adds a user. ErrDuplicateEmail is returned for a taken address.
func (m UserModel) Insert(user *User) error {
	query := `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version`

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	err := m.DB.QueryRowContext(ctx, query, user.Name, user.Email, user.Password.hash).
		Scan(&user.ID, &user.CreatedAt, &user.Version)
	return translate(err)
}

// Get returns the user with the given id.
func (m UserModel) Get(id int64) (*User, error) {
	query := `
		SELECT id, created_at, name, email, password_hash, version
		FROM users
		WHERE id = $1`
	return m.getOne(query, id)
}

// GetByEmail returns the user with the given email.
func (m UserModel) GetByEmail(email string) (*User, error) {
	query := `
		SELECT id, created_at, name, email, password_hash, version
		FROM users
		WHERE email = $1`
	return m.getOne(query, email)
}

func (m UserModel) getOne(query string, arg any) (*User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var user User
	err := m.DB.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.CreatedAt,
		&user.Name,
		&user.Email,
		&user.Password.hash,
		&user.Version,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// Permissions is the set of permission codes held by a user.
type Permissions []string

// Include reports whether code is in the set.
func (p Permissions) Include(code string) bool {
	return slices.Contains(p, code)
}

// PermissionModel wraps the connection pool for permissions.
type PermissionModel struct {
	DB Querier
}

// GetAllForUser returns the permission codes granted to userID.
func (m PermissionModel) GetAllForUser(userID int64) (Permissions, error) {
	query := `
		SELECT p.code
		FROM permissions p
		INNER JOIN users_permissions up ON up.permission_id = p.id
		WHERE up.user_id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	rows, err := m.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var permissions Permissions
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		permissions = append(permissions, code)
	}
	return permissions, rows.Err()
}

// AddForUser grants the given permission codes to userID.
func (m PermissionModel) AddForUser(userID int64, codes ...string) error {
	query := `
		INSERT INTO users_permissions (user_id, permission_id)
		SELECT $1, p.id FROM permissions p WHERE p.code = ANY($2)
		ON CONFLICT DO NOTHING`

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	_, err := m.DB.ExecContext(ctx, query, userID, pq.Array(codes))
	return err
}
