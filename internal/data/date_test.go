package data

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDateOfDropsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	got := DateOf(time.Date(2024, time.March, 9, 23, 30, 0, 0, loc))
	if want := NewDate(2024, time.March, 9); !got.Equal(want) {
		t.Fatalf("DateOf = %s, want %s", got, want)
	}
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		DueBack *Date `json:"due_back"`
	}
	if err := json.Unmarshal([]byte(`{"due_back":"2024-07-04"}`), &payload); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if payload.DueBack == nil || payload.DueBack.String() != "2024-07-04" {
		t.Fatalf("DueBack = %v", payload.DueBack)
	}

	out, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != `{"due_back":"2024-07-04"}` {
		t.Fatalf("Marshal = %s", out)
	}
}

func TestDateJSONRejectsBadInput(t *testing.T) {
	for _, in := range []string{`"04/07/2024"`, `"2024-13-01"`, `"2024-02-30"`, `20240704`} {
		var payload struct {
			DueBack *Date `json:"due_back"`
		}
		err := json.Unmarshal([]byte(`{"due_back":`+in+`}`), &payload)
		if err == nil {
			t.Errorf("Unmarshal(%s) succeeded", in)
			continue
		}
		if field, ok := InvalidDateField(err); !ok || field != "due_back" {
			t.Errorf("InvalidDateField(%v) = %q, %v; want due_back", err, field, ok)
		}
	}
}

func TestInvalidDateFieldIgnoresOtherErrors(t *testing.T) {
	var payload struct {
		Count int `json:"count"`
	}
	err := json.Unmarshal([]byte(`{"count":"many"}`), &payload)
	if _, ok := InvalidDateField(err); ok {
		t.Fatalf("non-date error %v reported as a date field", err)
	}
	if _, ok := InvalidDateField(errors.New("boom")); ok {
		t.Fatal("plain error reported as a date field")
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Scan(time.Time): %v", err)
	}
	if d.String() != "2024-06-01" {
		t.Fatalf("got %s", d)
	}
	if err := d.Scan([]byte("2024-06-02")); err != nil || d.String() != "2024-06-02" {
		t.Fatalf("Scan([]byte) = %s, %v", d, err)
	}
	if err := d.Scan(42); err == nil {
		t.Fatal("expected error scanning int")
	}

	var n nullDate
	if err := n.Scan(nil); err != nil || n.ptr() != nil {
		t.Fatalf("null scan: %v %v", n.ptr(), err)
	}
}
