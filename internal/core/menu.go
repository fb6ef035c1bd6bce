package core

import (
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// MenuScope selects whose shares a menu analysis covers.
type MenuScope string

const (
	ScopeAll      MenuScope = "all"
	ScopePersonal MenuScope = "personal"
)

type (
	// MenuStat is one menu's accumulated usage within a range.
	MenuStat struct {
		Menu       string `json:"menu"`
		Count      int    `json:"count"`
		LastUsed   string `json:"lastUsed"`
		Percentage string `json:"percentage"`
	}

	// MenuAnalysis pairs the two orderings of the same stats: most eaten
	// first, and least recently eaten first.
	MenuAnalysis struct {
		Popularity []MenuStat `json:"popularity"`
		OldestUsed []MenuStat `json:"oldestUsed"`
	}
)

// AnalyzeMenus accumulates count and recency per distinct menu label over the
// detail rows of one company. Detail rows without a menu, outside the date
// range, with a missing master, or (for ScopePersonal) belonging to another
// user are skipped. Percentage is count over all matched occurrences,
// formatted to one decimal place.
func AnalyzeMenus(start, end Date, scope MenuScope, companyName, userName string, masters []ExpenseMaster, details []ExpenseShare) MenuAnalysis {
	byID := make(map[string]ExpenseMaster)
	for _, m := range masters {
		if m.CompanyName == companyName {
			byID[m.ID] = m
		}
	}

	type acc struct {
		count    int
		lastUsed Date
	}
	stats := make(map[string]*acc)
	order := make([]string, 0)
	total := 0
	for _, d := range details {
		if d.CompanyName != companyName || d.Menu == "" {
			continue
		}
		m, ok := byID[d.MasterID]
		if !ok {
			continue
		}
		if !m.Date.InRange(start, end) {
			continue
		}
		if scope == ScopePersonal && d.UserName != userName {
			continue
		}
		a, seen := stats[d.Menu]
		if !seen {
			a = &acc{}
			stats[d.Menu] = a
			order = append(order, d.Menu)
		}
		a.count++
		if a.lastUsed.IsZero() || m.Date.After(a.lastUsed.Time) {
			a.lastUsed = m.Date
		}
		total++
	}

	list := make([]MenuStat, 0, len(stats))
	for _, menu := range order {
		a := stats[menu]
		list = append(list, MenuStat{
			Menu:       menu,
			Count:      a.count,
			LastUsed:   a.lastUsed.String(),
			Percentage: fmt.Sprintf("%.1f", float64(a.count)/float64(total)*100),
		})
	}

	col := collate.New(language.Korean)
	popularity := append([]MenuStat(nil), list...)
	sort.SliceStable(popularity, func(i, j int) bool {
		if popularity[i].Count != popularity[j].Count {
			return popularity[i].Count > popularity[j].Count
		}
		return col.CompareString(popularity[i].Menu, popularity[j].Menu) < 0
	})
	oldest := append([]MenuStat(nil), list...)
	sort.SliceStable(oldest, func(i, j int) bool {
		if oldest[i].LastUsed != oldest[j].LastUsed {
			return oldest[i].LastUsed < oldest[j].LastUsed
		}
		return col.CompareString(oldest[i].Menu, oldest[j].Menu) < 0
	})

	return MenuAnalysis{Popularity: popularity, OldestUsed: oldest}
}

// MenuCalendar maps each day of the given month to the menus one user ate
// that day, scanning the company's detail rows.
func MenuCalendar(userName, companyName string, year, month int, masters []ExpenseMaster, details []ExpenseShare) map[int][]string {
	byID := make(map[string]ExpenseMaster)
	for _, m := range masters {
		if m.CompanyName == companyName {
			byID[m.ID] = m
		}
	}

	out := make(map[int][]string)
	for _, d := range details {
		if d.CompanyName != companyName || d.UserName != userName || d.Menu == "" {
			continue
		}
		m, ok := byID[d.MasterID]
		if !ok {
			continue
		}
		y, mo, day := m.Date.Date()
		if y != year || int(mo) != month {
			continue
		}
		out[day] = append(out[day], d.Menu)
	}
	return out
}
