package data

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// ErrInvalidDateFormat is returned when a date string is not YYYY-MM-DD.
var ErrInvalidDateFormat = errors.New("invalid date format, expected YYYY-MM-DD")

var dateType = reflect.TypeOf(Date{})

// Date is a calendar day with no time-of-day or zone. The zero value is
// 0001-01-01. Nullable columns are modelled as *Date.
type Date struct {
	t time.Time
}

// NewDate returns the date for year, month and day. Out-of-range values are
// normalised the way time.Date does it.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDateFormat
	}
	return Date{t: t}, nil
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// Before reports whether d is an earlier day than other.
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

// After reports whether d is a later day than other.
func (d Date) After(other Date) bool { return d.t.After(other.t) }

// Equal reports whether d and other are the same day.
func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

// Time returns midnight UTC of d.
func (d Date) Time() time.Time { return d.t }

// String formats d as YYYY-MM-DD.
func (d Date) String() string { return d.t.Format(DateLayout) }

// MarshalJSON writes d as a quoted YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}

// UnmarshalJSON accepts a quoted YYYY-MM-DD string naming a real day. Any
// other value fails with a *json.UnmarshalTypeError, which the decoder
// annotates with the offending field's name.
func (d *Date) UnmarshalJSON(b []byte) error {
	if s, err := strconv.Unquote(string(b)); err == nil {
		if parsed, err := ParseDate(s); err == nil {
			*d = parsed
			return nil
		}
	}
	return &json.UnmarshalTypeError{Value: "date " + string(b), Type: dateType}
}

// InvalidDateField returns the JSON field name when err comes from decoding
// a malformed or nonexistent date (such as "2024-02-30") into a Date.
func InvalidDateField(err error) (string, bool) {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Type == dateType && typeErr.Field != "" {
		return typeErr.Field, true
	}
	return "", false
}

// MarshalYAML and UnmarshalYAML let fixtures spell dates as plain strings.
func (d Date) MarshalYAML() (any, error) {
	return d.String(), nil
}

// UnmarshalYAML is the YAML counterpart of UnmarshalJSON.
func (d *Date) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer so a Date can be passed straight to a query.
func (d Date) Value() (driver.Value, error) {
	return d.t, nil
}

// Scan implements sql.Scanner. lib/pq hands DATE columns over as time.Time.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
		return nil
	case []byte:
		parsed, err := ParseDate(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

// nullDate scans a nullable DATE column into a *Date.
type nullDate struct {
	Date  Date
	Valid bool
}

// Scan implements sql.Scanner, mapping NULL to an invalid nullDate.
func (n *nullDate) Scan(src any) error {
	if src == nil {
		n.Date, n.Valid = Date{}, false
		return nil
	}
	n.Valid = true
	return n.Date.Scan(src)
}

// ptr returns nil for NULL and a copy of the date otherwise.
func (n nullDate) ptr() *Date {
	if !n.Valid {
		return nil
	}
	d := n.Date
	return &d
}

// dateArg converts an optional date into a query argument.
func dateArg(d *Date) any {
	if d == nil {
		return nil
	}
	return d.Time()
}
