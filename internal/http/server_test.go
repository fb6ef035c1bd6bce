package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mealbook/internal/core"
	"mealbook/internal/identity"
	"mealbook/internal/rowstore"
	"mealbook/internal/rowstore/memory"
	"mealbook/internal/services"
)

func newTestServer(store *memory.Store) *Server {
	return NewServer(":0",
		services.NewExpenseService(store, nil),
		services.NewMenuService(store),
		services.NewUserService(store),
		services.NewDirectoryService(store),
		false,
	)
}

func sessionCookie(t *testing.T, cu core.CurrentUser) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := identity.SetSessionCookie(rec, cu, false); err != nil {
		t.Fatalf("set cookie: %v", err)
	}
	return rec.Result().Cookies()[0]
}

func kimSession(t *testing.T) *http.Cookie {
	return sessionCookie(t, core.CurrentUser{
		Email:       "kim@acme.co.kr",
		Name:        "김철수",
		Role:        core.RoleUser,
		CompanyName: "acme",
	})
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewBuffer(b)
}

func TestQueryExpensesRequiresSession(t *testing.T) {
	s := newTestServer(memory.New())
	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/expenses", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCreateThenQueryExpense(t *testing.T) {
	s := newTestServer(memory.New())
	cookie := kimSession(t)

	form := map[string]any{
		"date":        "2024-05-01",
		"memo":        core.CategoryLunch,
		"isCardUsage": true,
		"users": []map[string]any{
			{"name": "김철수", "amount": 10000, "menu": "김치찌개"},
			{"name": "이영희", "amount": 20000, "menu": "김치찌개"},
			{"name": "박민수", "amount": 30000, "menu": "비빔밥"},
		},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/expenses", jsonBody(t, form))
	req.AddCookie(cookie)
	rec := do(s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("create: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var created struct {
		ExpenseID string `json:"expenseId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.ExpenseID == "" {
		t.Fatal("expected expenseId in response")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/expenses?viewType=registrant", nil)
	req.AddCookie(cookie)
	rec = do(s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("query: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var listed struct {
		Expenses []core.ExpenseRecord `json:"expenses"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode query response: %v", err)
	}
	if len(listed.Expenses) != 1 {
		t.Fatalf("expected 1 expense, got %d", len(listed.Expenses))
	}
	if listed.Expenses[0].Amount != 60000 || len(listed.Expenses[0].Users) != 3 {
		t.Errorf("unexpected record: %+v", listed.Expenses[0])
	}
}

func TestQueryExpensesEmptyIsArray(t *testing.T) {
	s := newTestServer(memory.New())
	req := httptest.NewRequest(http.MethodGet, "/api/expenses", nil)
	req.AddCookie(kimSession(t))
	rec := do(s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); !bytes.Contains([]byte(body), []byte(`"expenses":[]`)) {
		t.Errorf("expected empty array, got %s", body)
	}
}

func TestQueryAdminViewForbiddenForUserRole(t *testing.T) {
	s := newTestServer(memory.New())
	for _, vt := range []string{"admin", "admin-summary"} {
		req := httptest.NewRequest(http.MethodGet, "/api/expenses?viewType="+vt, nil)
		req.AddCookie(kimSession(t))
		rec := do(s, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s: expected 403 for USER role, got %d", vt, rec.Code)
		}
	}

	admin := sessionCookie(t, core.CurrentUser{
		Email: "boss@acme.co.kr", Name: "관리자", Role: core.RoleAdmin, CompanyName: "acme",
	})
	req := httptest.NewRequest(http.MethodGet, "/api/expenses?viewType=admin", nil)
	req.AddCookie(admin)
	if rec := do(s, req); rec.Code != http.StatusOK {
		t.Errorf("admin role: expected 200, got %d", rec.Code)
	}
}

func TestQueryExpensesBadDate(t *testing.T) {
	s := newTestServer(memory.New())
	req := httptest.NewRequest(http.MethodGet, "/api/expenses?startDate=05/01/2024", nil)
	req.AddCookie(kimSession(t))
	rec := do(s, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	s := newTestServer(memory.New())
	form := map[string]any{
		"date":  "2024-05-01",
		"memo":  core.CategoryLunch,
		"users": []map[string]any{{"name": "김철수", "amount": 0}},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/expenses", jsonBody(t, form))
	req.AddCookie(kimSession(t))
	rec := do(s, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body)
	}
}

func TestGetExpenseNotFound(t *testing.T) {
	s := newTestServer(memory.New())
	req := httptest.NewRequest(http.MethodGet, "/api/expenses/no-such-id", nil)
	req.AddCookie(kimSession(t))
	rec := do(s, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateByNonOwnerForbidden(t *testing.T) {
	store := memory.New()
	s := newTestServer(store)

	store.Seed(rowstore.TableMasters, [][]string{
		{"m1", "2024-05-01", "김철수", "kim@acme.co.kr", "10000", "점심식대", "FALSE", "acme"},
	})
	store.Seed(rowstore.TableDetails, [][]string{
		{"m1", "김철수", "10000", "김치찌개", "acme"},
	})

	other := sessionCookie(t, core.CurrentUser{
		Email: "lee@acme.co.kr", Name: "이영희", CompanyName: "acme",
	})
	form := map[string]any{
		"date":  "2024-05-02",
		"memo":  core.CategoryDinner,
		"users": []map[string]any{{"name": "이영희", "amount": 5000}},
	}
	req := httptest.NewRequest(http.MethodPut, "/api/expenses/m1", jsonBody(t, form))
	req.AddCookie(other)
	rec := do(s, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body)
	}
}

func TestDeleteByOwner(t *testing.T) {
	store := memory.New()
	s := newTestServer(store)

	store.Seed(rowstore.TableMasters, [][]string{
		{"m1", "2024-05-01", "김철수", "kim@acme.co.kr", "10000", "점심식대", "FALSE", "acme"},
	})
	store.Seed(rowstore.TableDetails, [][]string{
		{"m1", "김철수", "10000", "김치찌개", "acme"},
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/expenses/m1", nil)
	req.AddCookie(kimSession(t))
	rec := do(s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/expenses/m1", nil)
	req.AddCookie(kimSession(t))
	if rec := do(s, req); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestLoginFlow(t *testing.T) {
	store := memory.New()
	s := newTestServer(store)

	signup := map[string]string{
		"email":       "kim@acme.co.kr",
		"name":        "김철수",
		"password":    "correct-horse",
		"companyName": "acme",
	}
	rec := do(s, httptest.NewRequest(http.MethodPost, "/api/auth/signup", jsonBody(t, signup)))
	if rec.Code != http.StatusOK {
		t.Fatalf("signup: expected 200, got %d: %s", rec.Code, rec.Body)
	}

	login := map[string]string{"email": "kim@acme.co.kr", "password": "correct-horse"}
	rec = do(s, httptest.NewRequest(http.MethodPost, "/api/auth/login", jsonBody(t, login)))
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != identity.CookieName {
		t.Fatalf("expected session cookie, got %v", cookies)
	}

	badLogin := map[string]string{"email": "kim@acme.co.kr", "password": "wrong"}
	rec = do(s, httptest.NewRequest(http.MethodPost, "/api/auth/login", jsonBody(t, badLogin)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", rec.Code)
	}
}

func TestMenuCalendarValidation(t *testing.T) {
	s := newTestServer(memory.New())
	req := httptest.NewRequest(http.MethodGet, "/api/menu-calendar?year=2024&month=13", nil)
	req.AddCookie(kimSession(t))
	rec := do(s, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCompaniesIsUnauthenticated(t *testing.T) {
	store := memory.New()
	store.Seed(rowstore.TableCompanies, [][]string{{"acme"}, {"globex"}})
	s := newTestServer(store)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/companies", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Companies []string `json:"companies"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Companies) != 2 {
		t.Errorf("expected 2 companies, got %v", body.Companies)
	}
}

func TestNoticesFilteredByCompany(t *testing.T) {
	store := memory.New()
	store.Seed(rowstore.TableNotices, [][]string{
		{"2024-05-01", "회식 안내", "금요일 저녁", "acme"},
		{"2024-05-02", "다른 회사 공지", "내용", "globex"},
	})
	s := newTestServer(store)

	req := httptest.NewRequest(http.MethodGet, "/api/notices", nil)
	req.AddCookie(kimSession(t))
	rec := do(s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Notices []rowstore.Notice `json:"notices"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Notices) != 1 || body.Notices[0].Title != "회식 안내" {
		t.Errorf("expected only acme notices, got %+v", body.Notices)
	}
}
