package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Cash       PaymentMethod = "Cash"
	UPI        PaymentMethod = "UPI"
	CreditCard PaymentMethod = "Credit Card"
)

const (
	CategoryFood           Category = "Food"
	CategoryTransportation Category = "Transportation"
	CategoryBills          Category = "Bills"
	CategoryServices       Category = "Services"
	CategoryEntertainment  Category = "Entertainment"
	CategoryMiscellaneous  Category = "Miscellaneous"
)

type (
	PaymentMethod string
	Category      string

	// Expense is a committed ledger record. Month and Year are denormalized
	// from Date at construction and must always agree with it; records are
	// appended and deleted, never edited in place.
	Expense struct {
		Date          Date
		Category      Category
		Subcategory   string
		Amount        Money
		Description   string
		Month         string
		Year          int
		PaymentMethod PaymentMethod
	}

	// MiscEntry is a staged miscellaneous expense waiting for a batch commit.
	// Staged entries are transient and never persisted.
	MiscEntry struct {
		Amount        Money
		Tag           string
		Category      Category
		Description   string
		Notes         string
		PaymentMethod PaymentMethod
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrEmptySubcategory   = errors.New("empty subcategory")
	ErrUnknownMethod      = errors.New("unknown payment method")
	ErrCustomTagRequired  = errors.New("custom tag required for Others")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrUnknownBill        = errors.New("unknown bill type")
)

// entertainmentTags is the fixed set of misc tags classified as Entertainment.
// Everything else entered through the misc form is Miscellaneous.
var entertainmentTags = map[string]bool{
	"Movie":               true,
	"Concert":             true,
	"Dining Out":          true,
	"Shopping":            true,
	"Games":               true,
	"Other Entertainment": true,
}

func (m PaymentMethod) Validate() error {
	switch m {
	case Cash, UPI, CreditCard:
		return nil
	}
	return ErrUnknownMethod
}

// NewExpense builds a ledger record with the month name and year cached from
// the date.
func NewExpense(date Date, category Category, subcategory string, amount Money, description string, method PaymentMethod) Expense {
	return Expense{
		Date:          date,
		Category:      category,
		Subcategory:   subcategory,
		Amount:        amount,
		Description:   description,
		Month:         date.MonthName(),
		Year:          date.Year(),
		PaymentMethod: method,
	}
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Subcategory) == "" {
		return ErrEmptySubcategory
	}
	if len(e.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if err := e.PaymentMethod.Validate(); err != nil {
		return err
	}
	if e.Month != e.Date.MonthName() || e.Year != e.Date.Year() {
		return errors.New("month/year out of sync with date")
	}
	return nil
}

// In reports whether the expense belongs to the given month and year,
// matching on the denormalized fields.
func (e Expense) In(month string, year int) bool {
	return e.Month == month && e.Year == year
}

// ClassifyMiscTag resolves the storage tag and category for a misc entry.
// "Others" demands a non-empty custom tag, which then replaces the tag for
// both storage and classification.
func ClassifyMiscTag(tag, customTag string) (string, Category, error) {
	tag = strings.TrimSpace(tag)
	if tag == "Others" {
		customTag = strings.TrimSpace(customTag)
		if customTag == "" {
			return "", "", ErrCustomTagRequired
		}
		tag = customTag
	}
	if tag == "" {
		return "", "", ErrEmptySubcategory
	}
	if entertainmentTags[tag] {
		return tag, CategoryEntertainment, nil
	}
	return tag, CategoryMiscellaneous, nil
}

// FoodCategory maps a food source to its expense category. Quick Commerce
// orders are recorded as Miscellaneous even though they arrive through the
// food form.
func FoodCategory(source string) Category {
	if source == "Quick Commerce" {
		return CategoryMiscellaneous
	}
	return CategoryFood
}

// IsMonday reports whether the date falls on a Monday. Petrol expenses are
// accepted on Mondays only.
func IsMonday(d Date) bool {
	return d.Time.Weekday() == time.Monday
}
