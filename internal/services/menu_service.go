package services

import (
	"context"
	"fmt"

	"mealbook/internal/core"
	"mealbook/internal/rowstore"
)

// MenuService answers menu analysis, calendar, and catalog queries.
type MenuService struct {
	store rowstore.Store
}

func NewMenuService(store rowstore.Store) *MenuService {
	return &MenuService{store: store}
}

func (s *MenuService) loadExpenseRows(ctx context.Context) ([]core.ExpenseMaster, []core.ExpenseShare, error) {
	masterRows, err := s.store.Get(ctx, rowstore.TableMasters)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: get masters: %v", core.ErrStore, err)
	}
	detailRows, err := s.store.Get(ctx, rowstore.TableDetails)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: get details: %v", core.ErrStore, err)
	}
	var masters []core.ExpenseMaster
	for _, row := range masterRows {
		if m, ok := rowstore.DecodeMaster(row); ok {
			masters = append(masters, m)
		}
	}
	var details []core.ExpenseShare
	for _, row := range detailRows {
		if d, ok := rowstore.DecodeDetail(row); ok {
			details = append(details, d)
		}
	}
	return masters, details, nil
}

// Analyze aggregates menu popularity and recency for one company, optionally
// restricted to one user's shares.
func (s *MenuService) Analyze(ctx context.Context, start, end core.Date, scope core.MenuScope, companyName, userName string) (core.MenuAnalysis, error) {
	masters, details, err := s.loadExpenseRows(ctx)
	if err != nil {
		return core.MenuAnalysis{}, err
	}
	return core.AnalyzeMenus(start, end, scope, companyName, userName, masters, details), nil
}

// Calendar maps day-of-month to the menus one user ate that day.
func (s *MenuService) Calendar(ctx context.Context, userName, companyName string, year, month int) (map[int][]string, error) {
	masters, details, err := s.loadExpenseRows(ctx)
	if err != nil {
		return nil, err
	}
	return core.MenuCalendar(userName, companyName, year, month, masters, details), nil
}

// Catalog lists the company's known menu labels in catalog order.
func (s *MenuService) Catalog(ctx context.Context, companyName string) ([]string, error) {
	rows, err := s.store.Get(ctx, rowstore.TableMenus)
	if err != nil {
		return nil, fmt.Errorf("%w: get menus: %v", core.ErrStore, err)
	}
	var out []string
	for _, row := range rows {
		if name, company, ok := rowstore.DecodeMenu(row); ok && company == companyName {
			out = append(out, name)
		}
	}
	return out, nil
}
