package core

import (
	"errors"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ViewType selects both the access scope and the output shape of a query.
type ViewType string

const (
	// ViewRegistrant lists masters the current user recorded.
	ViewRegistrant ViewType = "registrant"
	// ViewUser lists masters the current user shared in, priced at their own share.
	ViewUser ViewType = "user"
	// ViewAdmin flattens every matching share into its own record.
	ViewAdmin ViewType = "admin"
	// ViewAdminSummary emits one synthetic total per share owner.
	ViewAdminSummary ViewType = "admin-summary"
)

// IsValid reports whether vt is a known view type.
func (vt ViewType) IsValid() bool {
	switch vt {
	case ViewRegistrant, ViewUser, ViewAdmin, ViewAdminSummary:
		return true
	}
	return false
}

var (
	ErrInvalidViewType = errors.New("invalid view type")
	ErrInvalidFilter   = errors.New("invalid filter value")
)

// QueryFilters narrows a query. A zero StartDate leaves the lower bound
// open; a zero EndDate defaults to today, so an unset range means everything
// up to now and never includes future-dated rows. A nil IsCardUsage includes
// both card types; an empty ExpenseTypes set or the presence of CategoryAll
// disables the category filter.
type QueryFilters struct {
	StartDate    Date
	EndDate      Date
	IsCardUsage  *bool
	ViewType     ViewType
	SelectedUser string
	ExpenseTypes []string
	// SearchKeyword only applies when CategoryOther is among ExpenseTypes.
	SearchKeyword string
}

// QueryExpenses filters, joins and sorts raw master and detail rows into the
// shape the view type asks for. Rows from companies other than the caller's
// are dropped first, and detail rows whose master was filtered out or never
// written are dropped during the join (the row store does not enforce
// referential integrity).
func QueryExpenses(cu CurrentUser, f QueryFilters, masters []ExpenseMaster, details []ExpenseShare) ([]ExpenseRecord, error) {
	vt := f.ViewType
	if vt == "" {
		vt = ViewRegistrant
	}
	if !vt.IsValid() {
		return nil, ErrInvalidViewType
	}

	end := f.EndDate
	if end.IsZero() {
		end = Date{Time: time.Now()}
	}

	kept := make(map[string]ExpenseMaster)
	for _, m := range masters {
		if m.CompanyName != cu.CompanyName {
			continue
		}
		if !m.Date.InRange(f.StartDate, end) {
			continue
		}
		if f.IsCardUsage != nil && m.IsCardUsage != *f.IsCardUsage {
			continue
		}
		if !matchesCategory(m.Memo, f.ExpenseTypes, f.SearchKeyword) {
			continue
		}
		kept[m.ID] = m
	}

	shares := make(map[string][]ExpenseShare)
	for _, d := range details {
		if d.CompanyName != cu.CompanyName {
			continue
		}
		if _, ok := kept[d.MasterID]; !ok {
			continue
		}
		shares[d.MasterID] = append(shares[d.MasterID], d)
	}

	var out []ExpenseRecord
	switch vt {
	case ViewRegistrant:
		for id, m := range kept {
			if m.Registrant.Email != cu.Email {
				continue
			}
			out = append(out, recordFromMaster(m, m.TotalAmount, shares[id]))
		}
	case ViewUser:
		for id, m := range kept {
			for _, s := range shares[id] {
				if s.UserName != cu.Name {
					continue
				}
				out = append(out, recordFromMaster(m, s.Amount, []ExpenseShare{s}))
				break
			}
		}
	case ViewAdmin:
		for id, m := range kept {
			for _, s := range shares[id] {
				if f.SelectedUser != "" && s.UserName != f.SelectedUser {
					continue
				}
				out = append(out, recordFromMaster(m, s.Amount, []ExpenseShare{s}))
			}
		}
	case ViewAdminSummary:
		totals := make(map[string]int64)
		for id := range kept {
			for _, s := range shares[id] {
				if f.SelectedUser != "" && s.UserName != f.SelectedUser {
					continue
				}
				totals[s.UserName] += s.Amount
			}
		}
		for name, total := range totals {
			out = append(out, ExpenseRecord{
				ID:     name,
				Amount: total,
				Users:  []ExpenseShare{{UserName: name, Amount: total}},
			})
		}
	}

	sortRecords(out, vt)
	return out, nil
}

// matchesCategory applies the expense-type filter to a memo. The filter is a
// union: a memo matches when any selected type accepts it. CategoryOther
// accepts memos outside the fixed set, optionally narrowed by a
// case-insensitive keyword substring.
func matchesCategory(memo string, types []string, keyword string) bool {
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		switch t {
		case CategoryAll:
			return true
		case CategoryOther:
			if IsFixedCategory(memo) {
				continue
			}
			if keyword == "" || strings.Contains(strings.ToLower(memo), strings.ToLower(keyword)) {
				return true
			}
		default:
			if memo == t {
				return true
			}
		}
	}
	return false
}

func recordFromMaster(m ExpenseMaster, amount int64, users []ExpenseShare) ExpenseRecord {
	return ExpenseRecord{
		ID:          m.ID,
		Date:        m.Date.String(),
		Registrant:  m.Registrant,
		Amount:      amount,
		Memo:        m.Memo,
		IsCardUsage: m.IsCardUsage,
		Users:       users,
	}
}

// sortRecords orders date-shaped views by date descending with memo ascending
// as the tiebreak, and summary views by owner name ascending. String order is
// Korean collation, so 가 sorts before 나.
func sortRecords(records []ExpenseRecord, vt ViewType) {
	col := collate.New(language.Korean)
	if vt == ViewAdminSummary {
		sort.SliceStable(records, func(i, j int) bool {
			return col.CompareString(records[i].Users[0].UserName, records[j].Users[0].UserName) < 0
		})
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date > records[j].Date
		}
		return col.CompareString(records[i].Memo, records[j].Memo) < 0
	})
}
