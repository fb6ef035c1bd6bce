package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"mealbook/internal/core"
	"mealbook/internal/identity"
)

func (s *Server) handleMenuAnalysis(w http.ResponseWriter, r *http.Request) {
	cu, err := identity.ResolveCurrentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()

	// Default window: the last three months.
	start := core.Date{Time: time.Now().AddDate(0, -3, 0)}
	end := core.Date{Time: time.Now()}
	if v := strings.TrimSpace(q.Get("startDate")); v != "" {
		if start, err = core.ParseDate(v); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if v := strings.TrimSpace(q.Get("endDate")); v != "" {
		if end, err = core.ParseDate(v); err != nil {
			writeError(w, r, err)
			return
		}
	}

	scope := core.ScopeAll
	userName := ""
	if q.Get("scope") == string(core.ScopePersonal) {
		scope = core.ScopePersonal
		userName = cu.Name
	}

	analysis, err := s.menus.Analyze(r.Context(), start, end, scope, cu.CompanyName, userName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleMenuCalendar(w http.ResponseWriter, r *http.Request) {
	cu, err := identity.ResolveCurrentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "잘못된 요청입니다.")
		return
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil || month < 1 || month > 12 {
		writeMessage(w, http.StatusBadRequest, "잘못된 요청입니다.")
		return
	}

	data, err := s.menus.Calendar(r.Context(), cu.Name, cu.CompanyName, year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"menuData": data})
}

func (s *Server) handleMenus(w http.ResponseWriter, r *http.Request) {
	cu, err := identity.ResolveCurrentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	menus, err := s.menus.Catalog(r.Context(), cu.CompanyName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if menus == nil {
		menus = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"menus": menus})
}
