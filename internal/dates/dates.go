// Package dates converts user-typed event dates into canonical calendar dates.
package dates

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDate is returned for text that is not a DD/MM/YYYY or DD-MM-YYYY date.
var ErrInvalidDate = errors.New("invalid date")

const (
	// MaxYear is the last year the four-digit canonical form can hold.
	MaxYear = 9999

	canonicalLayout = "%04d-%02d-%02d"
	secondsPerDay   = 24 * 60 * 60
)

// Date is a calendar day without time or location.
// Only the 1-31 day bound is enforced, so 31/02 is a representable value.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New builds a Date after range-checking its parts.
func New(year, month, day int) (Date, error) {
	if month < 1 || month > 12 {
		return Date{}, fmt.Errorf("%w: month %d out of range 1-12", ErrInvalidDate, month)
	}
	if day < 1 || day > 31 {
		return Date{}, fmt.Errorf("%w: day %d out of range 1-31", ErrInvalidDate, day)
	}
	if year < 0 {
		return Date{}, fmt.Errorf("%w: negative year %d", ErrInvalidDate, year)
	}
	if year > MaxYear {
		return Date{}, fmt.Errorf("%w: year %d after %d", ErrInvalidDate, year, MaxYear)
	}
	return Date{Year: year, Month: time.Month(month), Day: day}, nil
}

// Validate reports whether d satisfies the same bounds as New.
// The zero Date is invalid.
func (d Date) Validate() error {
	_, err := New(d.Year, int(d.Month), d.Day)
	return err
}

// Parse accepts day/month/year separated by "/" or "-".
func Parse(text string) (Date, error) {
	text = strings.ReplaceAll(strings.TrimSpace(text), "-", "/")
	parts := strings.Split(text, "/")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("%w: %q must have day, month and year", ErrInvalidDate, text)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if !IsDigits(p) {
			return Date{}, fmt.Errorf("%w: %q is not a number", ErrInvalidDate, p)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
		}
		nums[i] = n
	}

	return New(nums[2], nums[1], nums[0])
}

// ParseCanonical reads the YYYY-MM-DD form produced by String.
func ParseCanonical(text string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(text), "-")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("%w: %q is not YYYY-MM-DD", ErrInvalidDate, text)
	}
	for _, p := range parts {
		if !IsDigits(p) {
			return Date{}, fmt.Errorf("%w: %q is not YYYY-MM-DD", ErrInvalidDate, text)
		}
	}
	year, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])
	day, _ := strconv.Atoi(parts[2])
	return New(year, month, day)
}

// IsDigits reports whether s is non-empty and made only of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (d Date) String() string {
	return fmt.Sprintf(canonicalLayout, d.Year, int(d.Month), d.Day)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Compare orders dates by year, month, day. It returns -1, 0 or +1.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return sign(d.Year - o.Year)
	case d.Month != o.Month:
		return sign(int(d.Month) - int(o.Month))
	default:
		return sign(d.Day - o.Day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

func (d Date) Equal(o Date) bool { return d.Compare(o) == 0 }

// Time returns midnight UTC of d. Overflowing days roll into the next month.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the absolute number of days between a and b.
func DaysBetween(a, b Date) int {
	// Unix seconds, not Sub: time.Duration overflows past ~292 years.
	diff := int((b.Time().Unix() - a.Time().Unix()) / secondsPerDay)
	if diff < 0 {
		return -diff
	}
	return diff
}

// FromTime truncates t to its calendar day.
func FromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// MarshalText fails for dates New would reject, so an unreadable value is never written.
func (d Date) MarshalText() ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseCanonical(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
