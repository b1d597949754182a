package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aoideee/locallibrary/internal/validator"
	"github.com/google/uuid"
)

// LoanStatus is the availability of a single copy.
type LoanStatus string

const (
	StatusMaintenance LoanStatus = "maintenance"
	StatusOnLoan      LoanStatus = "on_loan"
	StatusAvailable   LoanStatus = "available"
	StatusReserved    LoanStatus = "reserved"
)

// LoanStatuses lists every valid status in display order.
var LoanStatuses = []LoanStatus{StatusMaintenance, StatusOnLoan, StatusAvailable, StatusReserved}

var (
	// ErrNotLendable is returned when checking out a copy that is on loan
	// already or in maintenance.
	ErrNotLendable = errors.New("book instance is not available for loan")
	// ErrNotOnLoan is returned when returning a copy nobody borrowed.
	ErrNotOnLoan = errors.New("book instance is not on loan")
)

// BookInstance is a specific loanable copy of a Book.
type BookInstance struct {
	ID         uuid.UUID  `json:"id"`
	BookID     *int64     `json:"book_id"`
	BookTitle  string     `json:"book_title,omitempty"`
	Imprint    string     `json:"imprint"`
	DueBack    *Date      `json:"due_back"`
	BorrowerID *int64     `json:"borrower_id"`
	Status     LoanStatus `json:"status"`
	Overdue    bool       `json:"is_overdue"`
	Version    int32      `json:"version"`
}

func (bi BookInstance) String() string {
	return fmt.Sprintf("%s (%s)", bi.ID, bi.BookTitle)
}

// IsOverdue reports whether the copy has a due date strictly before today.
func (bi BookInstance) IsOverdue(today Date) bool {
	return bi.DueBack != nil && bi.DueBack.Before(today)
}

// MarkOverdue fills the derived Overdue flag of each instance for today.
func MarkOverdue(today Date, instances ...*BookInstance) {
	for _, bi := range instances {
		bi.Overdue = bi.IsOverdue(today)
	}
}

// Checkout lends an available or reserved copy to borrowerID until due.
func (bi *BookInstance) Checkout(borrowerID int64, due Date) error {
	if bi.Status != StatusAvailable && bi.Status != StatusReserved {
		return ErrNotLendable
	}
	bi.Status = StatusOnLoan
	bi.BorrowerID = &borrowerID
	bi.DueBack = &due
	return nil
}

// Return marks an on-loan copy as back on the shelf.
func (bi *BookInstance) Return() error {
	if bi.Status != StatusOnLoan {
		return ErrNotOnLoan
	}
	bi.Status = StatusAvailable
	bi.BorrowerID = nil
	bi.DueBack = nil
	return nil
}

// CreateBookInstanceInput is the body accepted when adding a copy.
type CreateBookInstanceInput struct {
	BookID     *int64     `json:"book_id" validate:"omitempty,gt=0"`
	Imprint    string     `json:"imprint" validate:"required,max=200"`
	DueBack    *Date      `json:"due_back"`
	BorrowerID *int64     `json:"borrower_id" validate:"omitempty,gt=0"`
	Status     LoanStatus `json:"status" validate:"omitempty,oneof=maintenance on_loan available reserved"`
}

// UpdateBookInstanceInput is a partial update of a copy's admin fields. The
// references and due date can be cleared with an explicit null.
type UpdateBookInstanceInput struct {
	BookID     Optional[int64] `json:"book_id"`
	Imprint    *string         `json:"imprint" validate:"omitempty,max=200"`
	DueBack    Optional[Date]  `json:"due_back"`
	BorrowerID Optional[int64] `json:"borrower_id"`
	Status     *LoanStatus     `json:"status" validate:"omitempty,oneof=maintenance on_loan available reserved"`
}

// CheckoutInput names the borrower and optionally a due date.
type CheckoutInput struct {
	BorrowerID int64 `json:"borrower_id" validate:"required,gt=0"`
	DueBack    *Date `json:"due_back"`
}

// ValidateBookInstance checks a copy before it is written.
func ValidateBookInstance(v *validator.Validator, bi *BookInstance) {
	v.Check(bi.Imprint != "", "imprint", "must be provided")
	v.Check(len(bi.Imprint) <= 200, "imprint", "must not be more than 200 characters long")
	v.Check(validator.PermittedValue(bi.Status, LoanStatuses...), "status", "invalid loan status")
	if bi.BookID != nil {
		v.Check(*bi.BookID > 0, "book_id", "must be greater than 0")
	}
	if bi.BorrowerID != nil {
		v.Check(*bi.BorrowerID > 0, "borrower_id", "must be greater than 0")
	}
	if bi.Status == StatusOnLoan {
		v.Check(bi.BorrowerID != nil, "borrower_id", "must be provided for a copy on loan")
	}
}

// BookInstanceModel wraps the connection pool for the book_instances table.
type BookInstanceModel struct {
	DB Querier
}

const instanceSelect = `
		SELECT bi.id, bi.book_id, COALESCE(b.title, ''), bi.imprint, bi.due_back,
		       bi.borrower_id, bi.status, bi.version
		FROM book_instances bi
		LEFT JOIN books b ON b.id = bi.book_id`

func scanInstance(row interface{ Scan(...any) error }, bi *BookInstance, extra ...any) error {
	var (
		bookID, borrowerID sql.NullInt64
		due                nullDate
	)
	dest := append(extra, &bi.ID, &bookID, &bi.BookTitle, &bi.Imprint, &due, &borrowerID, &bi.Status, &bi.Version)
	if err := row.Scan(dest...); err != nil {
		return err
	}
	bi.BookID, bi.BorrowerID = nil, nil
	if bookID.Valid {
		bi.BookID = &bookID.Int64
	}
	if borrowerID.Valid {
		bi.BorrowerID = &borrowerID.Int64
	}
	bi.DueBack = due.ptr()
	return nil
}

// Insert adds a copy. A fresh UUID is generated when bi.ID is zero and the
// status defaults to maintenance.
func (m BookInstanceModel) Insert(bi *BookInstance) error {
	if bi.ID == uuid.Nil {
		bi.ID = uuid.New()
	}
	if bi.Status == "" {
		bi.Status = StatusMaintenance
	}

	query := `
		INSERT INTO book_instances (id, book_id, imprint, due_back, borrower_id, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING version`

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	args := []any{bi.ID, nullableID(bi.BookID), bi.Imprint, dateArg(bi.DueBack), nullableID(bi.BorrowerID), bi.Status}
	err := m.DB.QueryRowContext(ctx, query, args...).Scan(&bi.Version)
	return translate(err)
}

// Get returns the copy with the given id, or ErrRecordNotFound.
func (m BookInstanceModel) Get(id uuid.UUID) (*BookInstance, error) {
	query := instanceSelect + ` WHERE bi.id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var bi BookInstance
	if err := scanInstance(m.DB.QueryRowContext(ctx, query, id), &bi); err != nil {
		return nil, translate(err)
	}
	return &bi, nil
}

// GetAll returns a page of copies, optionally only those with status.
func (m BookInstanceModel) GetAll(status LoanStatus, filters Filters) ([]*BookInstance, Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), q.* FROM (%s
		WHERE (bi.status = $1 OR $1 = '')) q
		ORDER BY %s %s NULLS LAST, id ASC
		LIMIT $2 OFFSET $3`, instanceSelect, filters.sortColumn(), filters.sortDirection())

	return m.page(query, filters, status, filters.limit(), filters.offset())
}

// GetOnLoan lists every copy currently on loan, earliest due date first.
// Copies without a due date sort last.
func (m BookInstanceModel) GetOnLoan(filters Filters) ([]*BookInstance, Metadata, error) {
	query := `
		SELECT count(*) OVER(), q.* FROM (` + instanceSelect + `
		WHERE bi.status = 'on_loan') q
		ORDER BY due_back ASC NULLS LAST, id ASC
		LIMIT $1 OFFSET $2`

	return m.page(query, filters, filters.limit(), filters.offset())
}

// GetOnLoanByBorrower lists the copies a user has on loan, earliest due
// date first.
func (m BookInstanceModel) GetOnLoanByBorrower(userID int64, filters Filters) ([]*BookInstance, Metadata, error) {
	query := `
		SELECT count(*) OVER(), q.* FROM (` + instanceSelect + `
		WHERE bi.status = 'on_loan' AND bi.borrower_id = $1) q
		ORDER BY due_back ASC NULLS LAST, id ASC
		LIMIT $2 OFFSET $3`

	return m.page(query, filters, userID, filters.limit(), filters.offset())
}

func (m BookInstanceModel) page(query string, filters Filters, args ...any) ([]*BookInstance, Metadata, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	rows, err := m.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, Metadata{}, err
	}
	defer rows.Close()

	totalRecords := 0
	instances := []*BookInstance{}
	for rows.Next() {
		var bi BookInstance
		if err := scanInstance(rows, &bi, &totalRecords); err != nil {
			return nil, Metadata{}, err
		}
		instances = append(instances, &bi)
	}
	if err := rows.Err(); err != nil {
		return nil, Metadata{}, err
	}
	return instances, calculateMetadata(totalRecords, filters.Page, filters.PageSize), nil
}

// GetOverdue lists on-loan copies whose due date is before today.
func (m BookInstanceModel) GetOverdue(ctx context.Context, today Date) ([]*BookInstance, error) {
	query := instanceSelect + `
		WHERE bi.status = 'on_loan' AND bi.due_back < $1
		ORDER BY bi.due_back ASC, bi.id ASC`

	return m.list(ctx, query, today)
}

// GetForBook lists the copies of a book.
func (m BookInstanceModel) GetForBook(bookID int64) ([]*BookInstance, error) {
	query := instanceSelect + `
		WHERE bi.book_id = $1
		ORDER BY bi.due_back ASC NULLS LAST, bi.id ASC`

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	return m.list(ctx, query, bookID)
}

func (m BookInstanceModel) list(ctx context.Context, query string, args ...any) ([]*BookInstance, error) {
	rows, err := m.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	instances := []*BookInstance{}
	for rows.Next() {
		var bi BookInstance
		if err := scanInstance(rows, &bi); err != nil {
			return nil, err
		}
		instances = append(instances, &bi)
	}
	return instances, rows.Err()
}

// Count returns the total number of copies.
func (m BookInstanceModel) Count() (int, error) {
	return m.count(`SELECT count(*) FROM book_instances`)
}

// CountByStatus returns the number of copies with the given status.
func (m BookInstanceModel) CountByStatus(status LoanStatus) (int, error) {
	return m.count(`SELECT count(*) FROM book_instances WHERE status = $1`, status)
}

func (m BookInstanceModel) count(query string, args ...any) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var n int
	err := m.DB.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

// Update writes every mutable field of bi. The row must still carry the
// version bi was read at; otherwise ErrEditConflict is returned.
func (m BookInstanceModel) Update(bi *BookInstance) error {
	query := `
		UPDATE book_instances
		SET book_id = $1, imprint = $2, due_back = $3, borrower_id = $4, status = $5,
		    version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING version`

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	args := []any{
		nullableID(bi.BookID),
		bi.Imprint,
		dateArg(bi.DueBack),
		nullableID(bi.BorrowerID),
		bi.Status,
		bi.ID,
		bi.Version,
	}
	err := m.DB.QueryRowContext(ctx, query, args...).Scan(&bi.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrEditConflict
	}
	return translate(err)
}

// Delete removes a copy.
func (m BookInstanceModel) Delete(id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	result, err := m.DB.ExecContext(ctx, `DELETE FROM book_instances WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}
