package http

import (
	"net/http"
	"time"

	"mealbook/internal/services"
)

// Server wires the JSON API over the service layer.
type Server struct {
	http.Server

	expenses     *services.ExpenseService
	menus        *services.MenuService
	users        *services.UserService
	directory    *services.DirectoryService
	secureCookie bool
}

func NewServer(addr string, expenses *services.ExpenseService, menus *services.MenuService, users *services.UserService, directory *services.DirectoryService, secureCookie bool) *Server {
	s := &Server{
		expenses:     expenses,
		menus:        menus,
		users:        users,
		directory:    directory,
		secureCookie: secureCookie,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.HandleFunc("POST /api/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /api/auth/change-password", s.handleChangePassword)

	mux.HandleFunc("GET /api/expenses", s.handleQueryExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /api/expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/menu-analysis", s.handleMenuAnalysis)
	mux.HandleFunc("GET /api/menu-calendar", s.handleMenuCalendar)
	mux.HandleFunc("GET /api/menus", s.handleMenus)

	mux.HandleFunc("GET /api/users", s.handleUsers)
	mux.HandleFunc("GET /api/notices", s.handleNotices)
	mux.HandleFunc("GET /api/companies", s.handleCompanies)

	s.Server = http.Server{
		Addr:         addr,
		Handler:      withRequestLogging(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}
