package http

import (
	"net/http"

	"mealbook/internal/identity"
	"mealbook/internal/services"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeMessage(w, http.StatusBadRequest, "잘못된 요청입니다.")
		return
	}

	user, err := s.users.Authenticate(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := identity.SetSessionCookie(w, user, s.secureCookie); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "로그인 성공",
		"user":    user,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	identity.ClearSessionCookie(w)
	writeMessage(w, http.StatusOK, "로그아웃 되었습니다.")
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var form services.SignupForm
	if err := decodeBody(r, &form); err != nil {
		writeMessage(w, http.StatusBadRequest, "잘못된 요청입니다.")
		return
	}
	if err := s.users.Signup(r.Context(), form); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "회원가입이 완료되었습니다.")
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	cu, err := identity.ResolveCurrentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeMessage(w, http.StatusBadRequest, "잘못된 요청입니다.")
		return
	}
	if err := s.users.ChangePassword(r.Context(), cu.Email, body.CurrentPassword, body.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "비밀번호가 변경되었습니다.")
}
