package core

import (
	"fmt"
	"time"
)

// Supported display formats for dates. The default is dd/mm/yyyy.
const (
	DateFormatDMY = "dd/mm/yyyy"
	DateFormatMDY = "mm/dd/yyyy"
	DateFormatYMD = "yyyy-mm-dd"
)

// Date is a calendar date. The time component is always midnight UTC.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MonthName returns the full English month name ("June"), the form used for
// the denormalized Expense.Month field and registry keys.
func (d Date) MonthName() string {
	return d.Time.Month().String()
}

// Year returns the calendar year.
func (d Date) Year() int {
	return d.Time.Year()
}

// Display renders the date in the given settings format, falling back to
// dd/mm/yyyy.
func (d Date) Display(format string) string {
	switch format {
	case DateFormatMDY:
		return fmt.Sprintf("%02d/%02d/%04d", int(d.Time.Month()), d.Time.Day(), d.Time.Year())
	case DateFormatYMD:
		return fmt.Sprintf("%04d-%02d-%02d", d.Time.Year(), int(d.Time.Month()), d.Time.Day())
	default:
		return fmt.Sprintf("%02d/%02d/%04d", d.Time.Day(), int(d.Time.Month()), d.Time.Year())
	}
}

// FilenameStamp renders the date as yyyy-mm-dd for use in export filenames.
func (d Date) FilenameStamp() string {
	return d.Time.Format("2006-01-02")
}

// MonthKey builds the "<MonthName>-<Year>" registry and reset-marker key.
func MonthKey(month string, year int) string {
	return fmt.Sprintf("%s-%d", month, year)
}

// DaysLeftInMonth counts the days from now to the end of now's month,
// inclusive of today. Never negative.
func DaysLeftInMonth(now time.Time) int {
	lastDay := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	left := lastDay - now.Day() + 1
	if left < 0 {
		return 0
	}
	return left
}
