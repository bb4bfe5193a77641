package auth

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	internalauth "github.com/angelmondragon/homeplate-backend/internal/auth"
	"github.com/angelmondragon/homeplate-backend/pkg/config"
)

// CookieSet names the cookies that carry one kind of session.
type CookieSet struct {
	Token string
	User  string
	Flag  string
}

var (
	CustomerCookies = CookieSet{Token: "jwt", User: "user"}
	AdminCookies    = CookieSet{Token: "AdminJWT", User: "AdminUser", Flag: "admin"}
)

// cookieUser is the readable account summary the UI keeps next to the token.
type cookieUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"isAdmin"`
}

func setSessionCookies(w http.ResponseWriter, cfg config.SessionConfig, set CookieSet, sess *internalauth.Session) error {
	summary, err := json.Marshal(cookieUser{
		ID:       sess.UserID,
		Username: sess.Username,
		Email:    sess.Email,
		IsAdmin:  sess.IsAdmin,
	})
	if err != nil {
		return err
	}

	maxAge := int(cfg.CookieMaxAge / time.Second)
	http.SetCookie(w, newCookie(cfg, set.Token, sess.Token, maxAge, true))
	http.SetCookie(w, newCookie(cfg, set.User, base64.RawURLEncoding.EncodeToString(summary), maxAge, false))
	if set.Flag != "" {
		http.SetCookie(w, newCookie(cfg, set.Flag, "true", maxAge, false))
	}
	return nil
}

func clearSessionCookies(w http.ResponseWriter, cfg config.SessionConfig, set CookieSet) {
	for _, name := range []string{set.Token, set.User, set.Flag} {
		if name == "" {
			continue
		}
		http.SetCookie(w, newCookie(cfg, name, "", -1, name == set.Token))
	}
}

func newCookie(cfg config.SessionConfig, name, value string, maxAge int, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cfg.CookieDomain,
		MaxAge:   maxAge,
		Secure:   cfg.CookieSecure,
		HttpOnly: httpOnly,
		SameSite: http.SameSiteLaxMode,
	}
}
