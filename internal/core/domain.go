package core

import (
	"errors"
	"strings"
	"time"
)

// Fixed expense categories. Any memo outside this set is treated as "other"
// (기타) by the category filter, so additions here update both sides of that
// match at once.
const (
	CategoryLunch       = "점심식대"
	CategoryDinner      = "저녁식대"
	CategoryLateNight   = "야근식대"
	CategoryTransport   = "차대"
	CategoryHolidayWork = "휴일근무"

	// CategoryAll disables the category filter when present in a filter set.
	CategoryAll = "전체"
	// CategoryOther matches any memo that is not a fixed category. The same
	// literal is used as the "custom menu" sentinel on share forms.
	CategoryOther = "기타"
)

// FixedCategories lists the five fixed memo labels in display order.
var FixedCategories = []string{
	CategoryLunch,
	CategoryDinner,
	CategoryLateNight,
	CategoryTransport,
	CategoryHolidayWork,
}

// IsFixedCategory reports whether memo is one of the fixed labels.
func IsFixedCategory(memo string) bool {
	for _, c := range FixedCategories {
		if memo == c {
			return true
		}
	}
	return false
}

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type (
	// Date is a calendar day. The time component is never trusted;
	// comparisons are by day.
	Date struct {
		time.Time
	}

	// CurrentUser is the resolved session identity. The core never resolves
	// it itself; the identity layer supplies it.
	CurrentUser struct {
		Email             string `json:"email"`
		Name              string `json:"name"`
		Role              Role   `json:"role"`
		CompanyName       string `json:"companyName"`
		PasswordChangedAt string `json:"passwordChangedAt,omitempty"`
	}

	// Registrant identifies who recorded a purchase.
	Registrant struct {
		Email       string `json:"email"`
		Name        string `json:"name"`
		CompanyName string `json:"companyName,omitempty"`
	}

	// ExpenseMaster is one purchase event.
	ExpenseMaster struct {
		ID          string
		Date        Date
		Registrant  Registrant
		TotalAmount int64
		Memo        string
		IsCardUsage bool
		CompanyName string
	}

	// ExpenseShare is one person's portion of a master expense.
	ExpenseShare struct {
		MasterID    string `json:"-"`
		UserName    string `json:"name"`
		Amount      int64  `json:"amount"`
		Menu        string `json:"menu,omitempty"`
		CompanyName string `json:"-"`
	}

	// ExpenseRecord is one row of query output. Its shape depends on the
	// view type that produced it; see QueryExpenses.
	ExpenseRecord struct {
		ID          string         `json:"id"`
		Date        string         `json:"date"`
		Registrant  Registrant     `json:"registrant"`
		Amount      int64          `json:"amount"`
		Memo        string         `json:"memo"`
		IsCardUsage bool           `json:"isCardUsage"`
		Users       []ExpenseShare `json:"users"`
	}

	// ExpenseShareForm is one share of a submitted expense.
	ExpenseShareForm struct {
		UserName   string `json:"name"`
		Amount     int64  `json:"amount"`
		Menu       string `json:"menu"`
		CustomMenu string `json:"customMenu"`
	}

	// ExpenseForm is a submitted expense. TotalAmount is always derived from
	// the shares, never taken from the caller.
	ExpenseForm struct {
		Date        Date               `json:"date"`
		Memo        string             `json:"memo"`
		IsCardUsage bool               `json:"isCardUsage"`
		Users       []ExpenseShareForm `json:"users"`
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyMemo     = errors.New("empty memo")
	ErrEmptyUserName = errors.New("empty user name")
	ErrNoShares      = errors.New("expense needs at least one share")
)

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD. The zero date formats as "".
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// day truncates to calendar-day granularity for range comparisons.
func (d Date) day() time.Time {
	y, m, dd := d.Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

// InRange reports whether d falls within [start, end] inclusive, by day.
// A zero start or end leaves that side of the range open.
func (d Date) InRange(start, end Date) bool {
	v := d.day()
	if !start.IsZero() && v.Before(start.day()) {
		return false
	}
	if !end.IsZero() && v.After(end.day()) {
		return false
	}
	return true
}

// MarshalJSON encodes the date as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts a YYYY-MM-DD string; empty means the zero date.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// EffectiveMenu resolves the menu label for a share form. The "other"
// sentinel with a custom value yields the custom value.
func (s ExpenseShareForm) EffectiveMenu() string {
	if s.Menu == CategoryOther && strings.TrimSpace(s.CustomMenu) != "" {
		return strings.TrimSpace(s.CustomMenu)
	}
	return strings.TrimSpace(s.Menu)
}

// TotalAmount sums the share amounts.
func (f ExpenseForm) TotalAmount() int64 {
	var total int64
	for _, u := range f.Users {
		total += u.Amount
	}
	return total
}

// Validate checks a submitted expense form.
func (f ExpenseForm) Validate() error {
	if f.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(f.Memo) == "" {
		return ErrEmptyMemo
	}
	if len(f.Users) == 0 {
		return ErrNoShares
	}
	for _, u := range f.Users {
		if strings.TrimSpace(u.UserName) == "" {
			return ErrEmptyUserName
		}
		if u.Amount <= 0 {
			return ErrInvalidAmount
		}
	}
	return nil
}
