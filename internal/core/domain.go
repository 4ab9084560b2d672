package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TxType = "INCOME"
	Expense TxType = "EXPENSE"
)

// Defaults applied when a transaction carries no category or description.
const (
	DefaultCategory    = "Outros"
	DefaultDescription = "Sem descrição"
	DefaultAccount     = "Conta Corrente"
)

type (
	// TxType is the transaction kind. The amount sign follows it:
	// EXPENSE amounts are stored negative, INCOME amounts positive.
	TxType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a read-only snapshot as loaded from storage.
	Transaction struct {
		ID          int64
		Date        Date
		Description string
		Amount      Money
		Type        TxType
		Category    string // category name, empty when unset
		Account     string // account name, empty when unset
		CreatedAt   time.Time
	}

	Account struct {
		ID   int64
		Name string
		Type string
	}

	Category struct {
		ID   int64
		Name string
		Kind TxType
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty name")
)

func (t TxType) Valid() bool {
	return t == Income || t == Expense
}

// NewDate creates a Date anchored at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t.UTC()}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

// Abs returns the magnitude in cents.
func (m Money) Abs() int64 {
	if m.Cents < 0 {
		return -m.Cents
	}
	return m.Cents
}

// NormalizedAmount applies the sign convention for the given type to a
// magnitude: expenses become negative, incomes positive.
func NormalizedAmount(t TxType, magnitudeCents int64) Money {
	if magnitudeCents < 0 {
		magnitudeCents = -magnitudeCents
	}
	if t == Expense {
		return Money{Cents: -magnitudeCents}
	}
	return Money{Cents: magnitudeCents}
}

func (tx Transaction) Validate() error {
	if err := tx.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(tx.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(tx.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if !tx.Type.Valid() {
		return ErrInvalidType
	}
	if tx.Amount.Cents == 0 {
		return ErrInvalidAmount
	}
	// Sign must match the type.
	if tx.Type == Expense && tx.Amount.Cents > 0 {
		return ErrInvalidAmount
	}
	if tx.Type == Income && tx.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(a.Type) == "" {
		return errors.New("empty account type")
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Kind.Valid() {
		return ErrInvalidType
	}
	return nil
}
