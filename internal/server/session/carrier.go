package session

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophchat/internal/common"
)

// TokenFromRequest extracts the session token: the session cookie first, then
// an "Authorization: Bearer" header. When allowQuery is set the "token" query
// parameter is accepted last, for websocket clients that cannot set headers.
func TokenFromRequest(r *http.Request, allowQuery bool) string {
	if c, err := r.Cookie(common.SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			if token = strings.TrimSpace(token); token != "" {
				return token
			}
		}
	}

	if allowQuery {
		return r.URL.Query().Get(common.AccessTokenQueryParam)
	}
	return ""
}

// SetCookie writes the session cookie carrying token.
func SetCookie(w http.ResponseWriter, token string, maxAge int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearCookie tells the client to drop its session cookie.
func ClearCookie(w http.ResponseWriter, secure bool) {
	SetCookie(w, "", -1, secure)
}
