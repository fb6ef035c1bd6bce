package http

import (
	"net/http"

	"mealbook/internal/identity"
	"mealbook/internal/rowstore"
	"mealbook/internal/services"
)

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	cu, err := identity.ResolveCurrentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	users, err := s.users.ActiveUsers(r.Context(), cu.CompanyName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if users == nil {
		users = []services.UserOption{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (s *Server) handleNotices(w http.ResponseWriter, r *http.Request) {
	cu, err := identity.ResolveCurrentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	notices, err := s.directory.Notices(r.Context(), cu.CompanyName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if notices == nil {
		notices = []rowstore.Notice{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notices": notices})
}

// handleCompanies is unauthenticated: the signup form needs the company list
// before a session exists.
func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.directory.Companies(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if companies == nil {
		companies = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"companies": companies})
}
