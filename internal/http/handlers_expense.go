package http

import (
	"fmt"
	"net/http"

	"mealbook/internal/core"
	"mealbook/internal/identity"
)

func (s *Server) handleQueryExpenses(w http.ResponseWriter, r *http.Request) {
	cu, err := identity.ResolveCurrentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	filters, err := parseQueryFilters(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	records, err := s.expenses.Query(r.Context(), cu, filters)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if records == nil {
		records = []core.ExpenseRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": records})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	cu, err := identity.ResolveCurrentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var form core.ExpenseForm
	if err := decodeBody(r, &form); err != nil {
		writeMessage(w, http.StatusBadRequest, "잘못된 요청입니다.")
		return
	}

	id, err := s.expenses.Create(r.Context(), form, core.Registrant{
		Email:       cu.Email,
		Name:        cu.Name,
		CompanyName: cu.CompanyName,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "사용 내역이 등록되었습니다.",
		"expenseId": id,
	})
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	cu, err := identity.ResolveCurrentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	record, err := s.expenses.GetByID(r.Context(), r.PathValue("id"), cu.CompanyName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if record == nil {
		writeMessage(w, http.StatusNotFound, "사용 내역을 찾을 수 없습니다.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"expense": record})
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	cu, err := identity.ResolveCurrentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id := r.PathValue("id")
	if err := s.authorizeOwner(r, id, cu); err != nil {
		writeError(w, r, err)
		return
	}
	var form core.ExpenseForm
	if err := decodeBody(r, &form); err != nil {
		writeMessage(w, http.StatusBadRequest, "잘못된 요청입니다.")
		return
	}

	err = s.expenses.Update(r.Context(), id, form, core.Registrant{
		Email:       cu.Email,
		Name:        cu.Name,
		CompanyName: cu.CompanyName,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "사용 내역이 수정되었습니다.")
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	cu, err := identity.ResolveCurrentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id := r.PathValue("id")
	if err := s.authorizeOwner(r, id, cu); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.expenses.Delete(r.Context(), id, cu.CompanyName); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "사용 내역이 삭제되었습니다.")
}

// authorizeOwner allows mutation only by the original registrant.
func (s *Server) authorizeOwner(r *http.Request, id string, cu core.CurrentUser) error {
	record, err := s.expenses.GetByID(r.Context(), id, cu.CompanyName)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("%w: expense %s", core.ErrNotFound, id)
	}
	if record.Registrant.Email != cu.Email {
		return core.ErrForbidden
	}
	return nil
}
