package data

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func datePtr(d Date) *Date { return &d }

func TestIsOverdue(t *testing.T) {
	today := NewDate(2024, time.April, 10)

	tests := []struct {
		name    string
		dueBack *Date
		want    bool
	}{
		{"due yesterday", datePtr(today.AddDays(-1)), true},
		{"due today", datePtr(today), false},
		{"due tomorrow", datePtr(today.AddDays(1)), false},
		{"no due date", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bi := &BookInstance{Status: StatusOnLoan, DueBack: tt.dueBack}
			if got := bi.IsOverdue(today); got != tt.want {
				t.Fatalf("IsOverdue = %v, want %v", got, tt.want)
			}
			MarkOverdue(today, bi)
			if bi.Overdue != tt.want {
				t.Fatalf("Overdue flag = %v, want %v", bi.Overdue, tt.want)
			}
		})
	}
}

func TestCheckoutAndReturn(t *testing.T) {
	due := NewDate(2024, time.May, 1)

	bi := &BookInstance{Status: StatusAvailable}
	if err := bi.Checkout(7, due); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if bi.Status != StatusOnLoan || *bi.BorrowerID != 7 || !bi.DueBack.Equal(due) {
		t.Fatalf("after checkout: %+v", bi)
	}
	if err := bi.Checkout(8, due); !errors.Is(err, ErrNotLendable) {
		t.Fatalf("second Checkout error = %v, want ErrNotLendable", err)
	}

	if err := bi.Return(); err != nil {
		t.Fatalf("Return: %v", err)
	}
	if bi.Status != StatusAvailable || bi.BorrowerID != nil || bi.DueBack != nil {
		t.Fatalf("after return: %+v", bi)
	}
	if err := bi.Return(); !errors.Is(err, ErrNotOnLoan) {
		t.Fatalf("second Return error = %v, want ErrNotOnLoan", err)
	}

	maintenance := &BookInstance{Status: StatusMaintenance}
	if err := maintenance.Checkout(1, due); !errors.Is(err, ErrNotLendable) {
		t.Fatalf("Checkout from maintenance = %v", err)
	}
	reserved := &BookInstance{Status: StatusReserved}
	if err := reserved.Checkout(1, due); err != nil {
		t.Fatalf("Checkout from reserved = %v", err)
	}
}

func TestBookInstanceString(t *testing.T) {
	id := uuid.MustParse("3c0b1a4e-2c65-4a8e-9d0c-6a7b1f1e2d3c")
	bi := BookInstance{ID: id, BookTitle: "The Dispossessed"}
	if got, want := bi.String(), "3c0b1a4e-2c65-4a8e-9d0c-6a7b1f1e2d3c (The Dispossessed)"; got != want {
		t.Fatalf("String = %q, want %q", got, want)
	}
}

var instanceColumns = []string{"count", "id", "book_id", "title", "imprint", "due_back", "borrower_id", "status", "version"}

func TestGetOnLoanScansAndOrdersByDueBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	first, second, third := uuid.New(), uuid.New(), uuid.New()
	rows := sqlmock.NewRows(instanceColumns).
		AddRow(3, first.String(), 1, "Dune", "Ace, 1990", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), 5, "on_loan", 1).
		AddRow(3, second.String(), 2, "Emma", "Penguin", time.Date(2024, 4, 9, 0, 0, 0, 0, time.UTC), 6, "on_loan", 2).
		AddRow(3, third.String(), nil, "", "Unknown", nil, 5, "on_loan", 1)

	mock.ExpectQuery(`WHERE bi.status = 'on_loan'\) q\s+ORDER BY due_back ASC NULLS LAST, id ASC`).
		WithArgs(10, 0).
		WillReturnRows(rows)

	m := BookInstanceModel{DB: db}
	got, meta, err := m.GetOnLoan(Filters{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("GetOnLoan: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("got %d instances, want 3", len(got))
	}
	if got[0].ID != first || got[1].ID != second || got[2].ID != third {
		t.Fatalf("unexpected order: %v %v %v", got[0].ID, got[1].ID, got[2].ID)
	}
	if got[0].DueBack.String() != "2024-04-01" || *got[0].BorrowerID != 5 || got[0].Status != StatusOnLoan {
		t.Fatalf("first instance scanned wrong: %+v", got[0])
	}
	if got[2].DueBack != nil || got[2].BookID != nil {
		t.Fatalf("null columns must scan to nil: %+v", got[2])
	}
	if meta.TotalRecords != 3 || meta.LastPage != 1 {
		t.Fatalf("metadata = %+v", meta)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestGetOnLoanByBorrowerFiltersOnUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`bi.status = 'on_loan' AND bi.borrower_id = \$1`).
		WithArgs(int64(42), 10, 10).
		WillReturnRows(sqlmock.NewRows(instanceColumns))

	m := BookInstanceModel{DB: db}
	got, meta, err := m.GetOnLoanByBorrower(42, Filters{Page: 2, PageSize: 10})
	if err != nil {
		t.Fatalf("GetOnLoanByBorrower: %v", err)
	}
	if len(got) != 0 || meta != (Metadata{}) {
		t.Fatalf("expected empty page, got %d rows and %+v", len(got), meta)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateDetectsEditConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`UPDATE book_instances`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}))

	m := BookInstanceModel{DB: db}
	err = m.Update(&BookInstance{ID: uuid.New(), Imprint: "x", Status: StatusAvailable, Version: 3})
	if !errors.Is(err, ErrEditConflict) {
		t.Fatalf("Update error = %v, want ErrEditConflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestInsertDefaultsIDAndStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO book_instances`).
		WithArgs(sqlmock.AnyArg(), nil, "Gollancz, 2011", nil, nil, "maintenance").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(1))

	bi := &BookInstance{Imprint: "Gollancz, 2011"}
	if err := (BookInstanceModel{DB: db}).Insert(bi); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if bi.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}
	if bi.Status != StatusMaintenance || bi.Version != 1 {
		t.Fatalf("after insert: %+v", bi)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
