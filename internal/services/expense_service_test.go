package services

import (
	"context"
	"errors"
	"testing"

	"mealbook/internal/core"
	"mealbook/internal/rowstore"
	"mealbook/internal/rowstore/memory"
)

var testRegistrant = core.Registrant{
	Email:       "kim@acme.co.kr",
	Name:        "김철수",
	CompanyName: "acme",
}

func testCurrentUser() core.CurrentUser {
	return core.CurrentUser{
		Email:       "kim@acme.co.kr",
		Name:        "김철수",
		Role:        core.RoleUser,
		CompanyName: "acme",
	}
}

func lunchForm() core.ExpenseForm {
	return core.ExpenseForm{
		Date:        core.NewDate(2024, 5, 1),
		Memo:        core.CategoryLunch,
		IsCardUsage: true,
		Users: []core.ExpenseShareForm{
			{UserName: "김철수", Amount: 10000, Menu: "김치찌개"},
			{UserName: "이영희", Amount: 20000, Menu: "김치찌개"},
			{UserName: "박민수", Amount: 30000, Menu: "비빔밥"},
		},
	}
}

func TestCreateAndGetByID(t *testing.T) {
	ctx := context.Background()
	svc := NewExpenseService(memory.New(), nil)

	id, err := svc.Create(ctx, lunchForm(), testRegistrant)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatal("create returned empty id")
	}

	rec, err := svc.GetByID(ctx, id, "acme")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec == nil {
		t.Fatal("expected record, got nil")
	}
	if rec.Amount != 60000 {
		t.Errorf("total should be derived from shares: got %d, want 60000", rec.Amount)
	}
	if len(rec.Users) != 3 {
		t.Errorf("expected 3 shares, got %d", len(rec.Users))
	}
	var sum int64
	for _, u := range rec.Users {
		sum += u.Amount
	}
	if sum != rec.Amount {
		t.Errorf("share sum %d != total %d", sum, rec.Amount)
	}
}

func TestGetByIDWrongCompany(t *testing.T) {
	ctx := context.Background()
	svc := NewExpenseService(memory.New(), nil)

	id, err := svc.Create(ctx, lunchForm(), testRegistrant)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rec, err := svc.GetByID(ctx, id, "globex")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec != nil {
		t.Error("record must not be visible from another company")
	}
}

func TestCreateRejectsInvalidForm(t *testing.T) {
	ctx := context.Background()
	svc := NewExpenseService(memory.New(), nil)

	form := lunchForm()
	form.Users[0].Amount = 0
	if _, err := svc.Create(ctx, form, testRegistrant); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestUpdateReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewExpenseService(store, nil)

	id, err := svc.Create(ctx, lunchForm(), testRegistrant)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	replacement := core.ExpenseForm{
		Date: core.NewDate(2024, 5, 2),
		Memo: core.CategoryDinner,
		Users: []core.ExpenseShareForm{
			{UserName: "김철수", Amount: 15000, Menu: "삼겹살"},
		},
	}
	if err := svc.Update(ctx, id, replacement, testRegistrant); err != nil {
		t.Fatalf("update: %v", err)
	}

	rec, err := svc.GetByID(ctx, id, "acme")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec == nil {
		t.Fatal("expected record after update")
	}
	if rec.Memo != core.CategoryDinner || rec.Amount != 15000 || len(rec.Users) != 1 {
		t.Errorf("old rows should be gone: %+v", rec)
	}
	if rec.Date != "2024-05-02" {
		t.Errorf("expected replaced date, got %q", rec.Date)
	}
}

func TestUpdateUnknownID(t *testing.T) {
	ctx := context.Background()
	svc := NewExpenseService(memory.New(), nil)

	err := svc.Update(ctx, "no-such-id", lunchForm(), testRegistrant)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteThenQuery(t *testing.T) {
	ctx := context.Background()
	svc := NewExpenseService(memory.New(), nil)

	id, err := svc.Create(ctx, lunchForm(), testRegistrant)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, id, "acme"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	admin := testCurrentUser()
	admin.Role = core.RoleAdmin
	for _, vt := range []core.ViewType{core.ViewRegistrant, core.ViewUser, core.ViewAdmin, core.ViewAdminSummary} {
		records, err := svc.Query(ctx, admin, core.QueryFilters{ViewType: vt})
		if err != nil {
			t.Fatalf("%s: query: %v", vt, err)
		}
		if len(records) != 0 {
			t.Errorf("%s: deleted expense still visible: %+v", vt, records)
		}
	}

	if err := svc.Delete(ctx, id, "acme"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second delete should be ErrNotFound, got %v", err)
	}
}

func TestQueryAdminViewsRequireAdminRole(t *testing.T) {
	ctx := context.Background()
	svc := NewExpenseService(memory.New(), nil)

	for _, vt := range []core.ViewType{core.ViewAdmin, core.ViewAdminSummary} {
		if _, err := svc.Query(ctx, testCurrentUser(), core.QueryFilters{ViewType: vt}); !errors.Is(err, core.ErrForbidden) {
			t.Errorf("%s: expected ErrForbidden for USER role, got %v", vt, err)
		}

		admin := testCurrentUser()
		admin.Role = core.RoleAdmin
		if _, err := svc.Query(ctx, admin, core.QueryFilters{ViewType: vt}); err != nil {
			t.Errorf("%s: admin should be allowed, got %v", vt, err)
		}
	}
}

func TestQueryRequiresSession(t *testing.T) {
	ctx := context.Background()
	svc := NewExpenseService(memory.New(), nil)

	_, err := svc.Query(ctx, core.CurrentUser{}, core.QueryFilters{})
	if !errors.Is(err, core.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestCreateGrowsMenuCatalog(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	store.Seed(rowstore.TableMenus, [][]string{{"김치찌개", "acme"}})
	svc := NewExpenseService(store, nil)

	form := core.ExpenseForm{
		Date: core.NewDate(2024, 5, 1),
		Memo: core.CategoryLunch,
		Users: []core.ExpenseShareForm{
			{UserName: "김철수", Amount: 10000, Menu: core.CategoryOther, CustomMenu: "마라탕"},
			{UserName: "이영희", Amount: 10000, Menu: core.CategoryOther, CustomMenu: "마라탕"},
			{UserName: "박민수", Amount: 10000, Menu: core.CategoryOther, CustomMenu: "김치찌개"},
		},
	}
	if _, err := svc.Create(ctx, form, testRegistrant); err != nil {
		t.Fatalf("create: %v", err)
	}

	rows, err := store.Get(ctx, rowstore.TableMenus)
	if err != nil {
		t.Fatalf("get menus: %v", err)
	}
	var names []string
	for _, row := range rows {
		if name, company, ok := rowstore.DecodeMenu(row); ok && company == "acme" {
			names = append(names, name)
		}
	}
	if len(names) != 2 {
		t.Fatalf("expected catalog of 2 after dedup, got %v", names)
	}
	if names[1] != "마라탕" {
		t.Errorf("expected new label 마라탕 appended, got %v", names)
	}
}

func TestQueryTombstonesSkipped(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	store.Seed(rowstore.TableMasters, [][]string{
		{},
		{"m1", "2024-05-01", "김철수", "kim@acme.co.kr", "10000", "점심식대", "FALSE", "acme"},
	})
	store.Seed(rowstore.TableDetails, [][]string{
		{},
		{"m1", "김철수", "10000", "김치찌개", "acme"},
	})
	svc := NewExpenseService(store, nil)

	records, err := svc.Query(ctx, testCurrentUser(), core.QueryFilters{ViewType: core.ViewRegistrant})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 1 || records[0].ID != "m1" {
		t.Fatalf("expected the one live record, got %+v", records)
	}
}
