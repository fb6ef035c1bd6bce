package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"mealbook/internal/amqp"
	"mealbook/internal/core"
	"mealbook/internal/rowstore"
)

// ExpenseService runs expense queries and mutations against the row store
// and publishes mirror events after mutations.
//
// The row store offers no transactions: a replace is clear-then-reappend, so
// two concurrent writes to the same id can interleave and a crash between the
// master write and the detail writes leaves a partial record. Last write wins
// at row granularity; the query path tolerates the resulting dangling detail
// rows by dropping them during the join.
type ExpenseService struct {
	store  rowstore.Store
	events *amqp.Client
}

func NewExpenseService(store rowstore.Store, events *amqp.Client) *ExpenseService {
	return &ExpenseService{store: store, events: events}
}

// loadExpenseRows fetches and decodes the master and detail tables
// concurrently. Tombstone and damaged rows are dropped during decode.
func (s *ExpenseService) loadExpenseRows(ctx context.Context) ([]core.ExpenseMaster, []core.ExpenseShare, error) {
	var (
		masters []core.ExpenseMaster
		details []core.ExpenseShare
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.store.Get(ctx, rowstore.TableMasters)
		if err != nil {
			return fmt.Errorf("%w: get masters: %v", core.ErrStore, err)
		}
		for _, row := range rows {
			if m, ok := rowstore.DecodeMaster(row); ok {
				masters = append(masters, m)
			}
		}
		return nil
	})
	g.Go(func() error {
		rows, err := s.store.Get(ctx, rowstore.TableDetails)
		if err != nil {
			return fmt.Errorf("%w: get details: %v", core.ErrStore, err)
		}
		for _, row := range rows {
			if d, ok := rowstore.DecodeDetail(row); ok {
				details = append(details, d)
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return masters, details, nil
}

// Query returns the filtered, joined, sorted expense records for the current
// user. The caller must already be resolved; an empty email means no session.
// The admin views expose company-wide records, so they require the ADMIN role.
func (s *ExpenseService) Query(ctx context.Context, cu core.CurrentUser, f core.QueryFilters) ([]core.ExpenseRecord, error) {
	if cu.Email == "" {
		return nil, core.ErrUnauthorized
	}
	switch f.ViewType {
	case core.ViewAdmin, core.ViewAdminSummary:
		if cu.Role != core.RoleAdmin {
			return nil, core.ErrForbidden
		}
	}
	masters, details, err := s.loadExpenseRows(ctx)
	if err != nil {
		return nil, err
	}
	return core.QueryExpenses(cu, f, masters, details)
}

// Create registers one expense: a master row plus one detail row per share,
// all tagged with a fresh id. New custom menu labels grow the company's menu
// catalog. Returns the generated id.
func (s *ExpenseService) Create(ctx context.Context, form core.ExpenseForm, registrant core.Registrant) (string, error) {
	if err := form.Validate(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	if err := s.appendExpense(ctx, id, form, registrant); err != nil {
		return "", err
	}
	if err := s.growMenuCatalog(ctx, form, registrant.CompanyName); err != nil {
		slog.WarnContext(ctx, "Failed to grow menu catalog", "error", err, "id", id)
	}

	slog.InfoContext(ctx, "Expense created",
		"id", id,
		"date", form.Date.String(),
		"memo", form.Memo,
		"total", form.TotalAmount(),
		"shares", len(form.Users),
		"company", registrant.CompanyName)

	s.publishEvent(ctx, id, registrant.CompanyName, amqp.ActionUpsert)
	return id, nil
}

// Update replaces an expense wholesale: the existing master row and every
// detail row under the same id are cleared, then fresh rows are appended with
// that id. Callers resend the full record; this is not a field update.
func (s *ExpenseService) Update(ctx context.Context, id string, form core.ExpenseForm, registrant core.Registrant) error {
	if err := form.Validate(); err != nil {
		return err
	}

	cleared, err := s.clearExpenseRows(ctx, id)
	if err != nil {
		return err
	}
	if !cleared {
		return fmt.Errorf("%w: expense %s", core.ErrNotFound, id)
	}

	if err := s.appendExpense(ctx, id, form, registrant); err != nil {
		return err
	}
	if err := s.growMenuCatalog(ctx, form, registrant.CompanyName); err != nil {
		slog.WarnContext(ctx, "Failed to grow menu catalog", "error", err, "id", id)
	}

	slog.InfoContext(ctx, "Expense replaced", "id", id, "shares", len(form.Users))
	s.publishEvent(ctx, id, registrant.CompanyName, amqp.ActionUpsert)
	return nil
}

// Delete clears the master row and all detail rows for an id.
func (s *ExpenseService) Delete(ctx context.Context, id, companyName string) error {
	cleared, err := s.clearExpenseRows(ctx, id)
	if err != nil {
		return err
	}
	if !cleared {
		return fmt.Errorf("%w: expense %s", core.ErrNotFound, id)
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id)
	s.publishEvent(ctx, id, companyName, amqp.ActionDelete)
	return nil
}

// GetByID returns one expense with its full share list and the master's
// total, or nil when no master row matches the id within the company.
func (s *ExpenseService) GetByID(ctx context.Context, id, companyName string) (*core.ExpenseRecord, error) {
	masters, details, err := s.loadExpenseRows(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range masters {
		if m.ID != id || m.CompanyName != companyName {
			continue
		}
		var users []core.ExpenseShare
		for _, d := range details {
			if d.MasterID == id && d.CompanyName == companyName {
				users = append(users, d)
			}
		}
		rec := core.ExpenseRecord{
			ID:          m.ID,
			Date:        m.Date.String(),
			Registrant:  m.Registrant,
			Amount:      m.TotalAmount,
			Memo:        m.Memo,
			IsCardUsage: m.IsCardUsage,
			Users:       users,
		}
		return &rec, nil
	}
	return nil, nil
}

func (s *ExpenseService) appendExpense(ctx context.Context, id string, form core.ExpenseForm, registrant core.Registrant) error {
	master := core.ExpenseMaster{
		ID:          id,
		Date:        form.Date,
		Registrant:  core.Registrant{Email: registrant.Email, Name: registrant.Name},
		TotalAmount: form.TotalAmount(),
		Memo:        strings.TrimSpace(form.Memo),
		IsCardUsage: form.IsCardUsage,
		CompanyName: registrant.CompanyName,
	}
	if err := s.store.Append(ctx, rowstore.TableMasters, [][]string{rowstore.EncodeMaster(master)}); err != nil {
		return fmt.Errorf("%w: append master: %v", core.ErrStore, err)
	}

	detailRows := make([][]string, 0, len(form.Users))
	for _, u := range form.Users {
		detailRows = append(detailRows, rowstore.EncodeDetail(core.ExpenseShare{
			MasterID:    id,
			UserName:    strings.TrimSpace(u.UserName),
			Amount:      u.Amount,
			Menu:        u.EffectiveMenu(),
			CompanyName: registrant.CompanyName,
		}))
	}
	if err := s.store.Append(ctx, rowstore.TableDetails, detailRows); err != nil {
		return fmt.Errorf("%w: append details: %v", core.ErrStore, err)
	}
	return nil
}

// clearExpenseRows blanks the master row and every detail row for an id.
// Reports whether a master row existed.
func (s *ExpenseService) clearExpenseRows(ctx context.Context, id string) (bool, error) {
	masterRows, err := s.store.Get(ctx, rowstore.TableMasters)
	if err != nil {
		return false, fmt.Errorf("%w: get masters: %v", core.ErrStore, err)
	}
	found := false
	for i, row := range masterRows {
		m, ok := rowstore.DecodeMaster(row)
		if !ok || m.ID != id {
			continue
		}
		if err := s.store.Clear(ctx, rowstore.TableMasters, i); err != nil {
			return false, fmt.Errorf("%w: clear master: %v", core.ErrStore, err)
		}
		found = true
	}
	if !found {
		return false, nil
	}

	detailRows, err := s.store.Get(ctx, rowstore.TableDetails)
	if err != nil {
		return false, fmt.Errorf("%w: get details: %v", core.ErrStore, err)
	}
	for i, row := range detailRows {
		d, ok := rowstore.DecodeDetail(row)
		if !ok || d.MasterID != id {
			continue
		}
		if err := s.store.Clear(ctx, rowstore.TableDetails, i); err != nil {
			return false, fmt.Errorf("%w: clear detail: %v", core.ErrStore, err)
		}
	}
	return true, nil
}

// growMenuCatalog appends custom menu labels the company's catalog has not
// seen yet. Matching is exact and case-sensitive; duplicates within one
// submission collapse to a single append.
func (s *ExpenseService) growMenuCatalog(ctx context.Context, form core.ExpenseForm, companyName string) error {
	submitted := make(map[string]struct{})
	var candidates []string
	for _, u := range form.Users {
		if u.Menu != core.CategoryOther || strings.TrimSpace(u.CustomMenu) == "" {
			continue
		}
		menu := strings.TrimSpace(u.CustomMenu)
		if _, ok := submitted[menu]; ok {
			continue
		}
		submitted[menu] = struct{}{}
		candidates = append(candidates, menu)
	}
	if len(candidates) == 0 {
		return nil
	}

	rows, err := s.store.Get(ctx, rowstore.TableMenus)
	if err != nil {
		return fmt.Errorf("%w: get menus: %v", core.ErrStore, err)
	}
	known := make(map[string]struct{})
	for _, row := range rows {
		if name, company, ok := rowstore.DecodeMenu(row); ok && company == companyName {
			known[name] = struct{}{}
		}
	}

	var newRows [][]string
	for _, menu := range candidates {
		if _, ok := known[menu]; ok {
			continue
		}
		newRows = append(newRows, rowstore.EncodeMenu(menu, companyName))
	}
	if len(newRows) == 0 {
		return nil
	}
	if err := s.store.Append(ctx, rowstore.TableMenus, newRows); err != nil {
		return fmt.Errorf("%w: append menus: %v", core.ErrStore, err)
	}
	return nil
}

// publishEvent pushes a mirror event. Best effort: the expense is already in
// the row store, so a publish failure is logged rather than surfaced.
func (s *ExpenseService) publishEvent(ctx context.Context, id, companyName, action string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishExpenseEvent(ctx, id, companyName, action); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"id", id, "action", action, "error", err)
	}
}
