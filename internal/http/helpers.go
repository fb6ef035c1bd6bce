package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"mealbook/internal/core"
	"mealbook/internal/identity"
	"mealbook/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeError maps the error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrUnauthorized):
		writeMessage(w, http.StatusUnauthorized, "로그인이 필요합니다.")
	case errors.Is(err, identity.ErrInvalidCredentials), errors.Is(err, services.ErrAccountInactive):
		writeMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, core.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "권한이 없습니다.")
	case errors.Is(err, core.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "사용 내역을 찾을 수 없습니다.")
	case errors.Is(err, services.ErrEmailExists):
		writeMessage(w, http.StatusBadRequest, "이미 등록된 이메일입니다.")
	case isValidationError(err):
		writeMessage(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path)
		writeMessage(w, http.StatusInternalServerError, "처리 중 오류가 발생했습니다.")
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrEmptyMemo) ||
		errors.Is(err, core.ErrEmptyUserName) ||
		errors.Is(err, core.ErrNoShares) ||
		errors.Is(err, core.ErrInvalidViewType) ||
		errors.Is(err, core.ErrInvalidFilter) ||
		errors.Is(err, identity.ErrWeakPassword)
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// parseQueryFilters reads the expense filter parameters. Unparseable dates
// fail fast rather than silently defaulting.
func parseQueryFilters(r *http.Request) (core.QueryFilters, error) {
	q := r.URL.Query()
	var f core.QueryFilters

	if v := strings.TrimSpace(q.Get("startDate")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return f, err
		}
		f.StartDate = d
	}
	if v := strings.TrimSpace(q.Get("endDate")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return f, err
		}
		f.EndDate = d
	}
	if v := strings.TrimSpace(q.Get("isCardUsage")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, core.ErrInvalidFilter
		}
		f.IsCardUsage = &b
	}
	f.ViewType = core.ViewType(strings.TrimSpace(q.Get("viewType")))
	f.SelectedUser = strings.TrimSpace(q.Get("selectedUser"))
	if v := strings.TrimSpace(q.Get("expenseTypes")); v != "" {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				f.ExpenseTypes = append(f.ExpenseTypes, t)
			}
		}
	}
	f.SearchKeyword = strings.TrimSpace(q.Get("searchKeyword"))
	return f, nil
}
