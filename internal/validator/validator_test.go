package validator

import "testing"

func TestCheckKeepsFirstError(t *testing.T) {
	v := New()
	v.Check(false, "title", "must be provided")
	v.Check(false, "title", "must not be more than 200 characters long")
	v.Check(true, "isbn", "never recorded")

	if v.Valid() {
		t.Fatal("expected validator to be invalid")
	}
	if got := v.Errors["title"]; got != "must be provided" {
		t.Fatalf("title error = %q, want first message", got)
	}
	if _, ok := v.Errors["isbn"]; ok {
		t.Fatal("passing check must not record an error")
	}
}

type bookInput struct {
	Title  string  `json:"title" validate:"required,max=200"`
	ISBN   string  `json:"isbn" validate:"required,len=13"`
	Genres []int64 `json:"genres" validate:"unique"`
	Author *int64  `json:"author_id,omitempty" validate:"omitempty,gt=0"`
}

func TestStructUsesJSONFieldNames(t *testing.T) {
	zero := int64(0)
	v := New()
	err := v.Struct(bookInput{ISBN: "123", Genres: []int64{1, 1}, Author: &zero})
	if err != nil {
		t.Fatalf("Struct: %v", err)
	}

	want := map[string]string{
		"title":     "must be provided",
		"isbn":      "must be exactly 13 characters long",
		"genres":    "must not contain duplicate values",
		"author_id": "must be greater than 0",
	}
	for field, msg := range want {
		if got := v.Errors[field]; got != msg {
			t.Errorf("Errors[%q] = %q, want %q", field, got, msg)
		}
	}
}

func TestStructValid(t *testing.T) {
	v := New()
	if err := v.Struct(bookInput{Title: "Dune", ISBN: "9780441013593"}); err != nil {
		t.Fatalf("Struct: %v", err)
	}
	if !v.Valid() {
		t.Fatalf("unexpected errors: %v", v.Errors)
	}
}

func TestStructRejectsNonStruct(t *testing.T) {
	if err := New().Struct(42); err == nil {
		t.Fatal("expected error for non-struct argument")
	}
}

func TestHelpers(t *testing.T) {
	if !PermittedValue("a", "a", "b") || PermittedValue("c", "a", "b") {
		t.Error("PermittedValue")
	}
	if !Matches("reader@example.com", EmailRX) || Matches("nope", EmailRX) {
		t.Error("Matches")
	}
	if !Unique([]string{"a", "b"}) || Unique([]int{1, 1}) {
		t.Error("Unique")
	}
}
