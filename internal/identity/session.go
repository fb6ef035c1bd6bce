package identity

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"mealbook/internal/core"
)

// CookieName holds the session payload. The value is a base64 JSON document
// readable by the client; there is no server-side session state.
const CookieName = "user"

const sessionMaxAge = 24 * time.Hour

// SetSessionCookie writes the session cookie for a logged-in user.
func SetSessionCookie(w http.ResponseWriter, user core.CurrentUser, secure bool) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    base64.URLEncoding.EncodeToString(payload),
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   CookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

// ResolveCurrentUser reads the session cookie from a request. Returns
// core.ErrUnauthorized when the cookie is absent or unreadable.
func ResolveCurrentUser(r *http.Request) (core.CurrentUser, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return core.CurrentUser{}, core.ErrUnauthorized
	}
	payload, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return core.CurrentUser{}, core.ErrUnauthorized
	}
	var user core.CurrentUser
	if err := json.Unmarshal(payload, &user); err != nil {
		return core.CurrentUser{}, core.ErrUnauthorized
	}
	if user.Email == "" {
		return core.CurrentUser{}, core.ErrUnauthorized
	}
	return user, nil
}
