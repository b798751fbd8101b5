package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/now"
)

const YearMonthLayout = "2006-01"

var ErrInvalidYearMonth = errors.New("year-month must be formatted as YYYY-MM")

// YearMonth identifies a calendar month. It is the scope of a monthly summary.
type YearMonth struct {
	Year  int
	Month time.Month
}

func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse(YearMonthLayout, s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("%w: %q", ErrInvalidYearMonth, s)
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

// MustParseYearMonth is meant for constants in tests and seeds.
func MustParseYearMonth(s string) YearMonth {
	ym, err := ParseYearMonth(s)
	if err != nil {
		panic(err)
	}
	return ym
}

// YearMonthOf returns the month a date falls in, read in UTC.
func YearMonthOf(t time.Time) YearMonth {
	t = t.UTC()
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

func (ym YearMonth) IsZero() bool {
	return ym.Year == 0 && ym.Month == 0
}

// FirstDay is midnight UTC of the first day of the month.
func (ym YearMonth) FirstDay() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

// LastDay is midnight UTC of the last calendar day of the month.
func (ym YearMonth) LastDay() time.Time {
	return now.With(ym.FirstDay()).EndOfMonth().Truncate(24 * time.Hour)
}

// End is the last instant of the month, the inclusive upper bound for date range queries.
func (ym YearMonth) End() time.Time {
	return now.With(ym.FirstDay()).EndOfMonth()
}

func (ym YearMonth) Contains(t time.Time) bool {
	return YearMonthOf(t) == ym
}

// MonthsOfYear lists January through December of year.
func MonthsOfYear(year int) []YearMonth {
	months := make([]YearMonth, 0, 12)
	for m := time.January; m <= time.December; m++ {
		months = append(months, YearMonth{Year: year, Month: m})
	}
	return months
}

func (ym YearMonth) MarshalText() ([]byte, error) {
	return []byte(ym.String()), nil
}

func (ym *YearMonth) UnmarshalText(text []byte) error {
	parsed, err := ParseYearMonth(string(text))
	if err != nil {
		return err
	}
	*ym = parsed
	return nil
}
