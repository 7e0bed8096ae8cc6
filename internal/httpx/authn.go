package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/ariefcatur/catrink-storefront/internal/auth"
)

type sessionKey struct{}

// Authenticator resolves the bearer token to a session.
type Authenticator struct {
	Gate   *auth.Gate
	Tokens *auth.Tokens
}

// Session returns the caller's session; anonymous when no valid token.
func (a *Authenticator) Session(r *http.Request) (auth.Session, auth.Claims) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || raw == "" {
		return auth.Session{State: auth.StateAnonymous}, auth.Claims{}
	}
	c, err := a.Tokens.Parse(raw)
	if err != nil {
		return auth.Session{State: auth.StateAnonymous}, auth.Claims{}
	}
	return a.Gate.Current(r.Context(), c.SessionID), c
}

// RequireAdmin lets through only admin sessions carrying an admin token.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, c := a.Session(r)
		if s.State != auth.StateAuthenticated {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "missing or invalid bearer token"})
			return
		}
		if !s.IsAdmin() || !c.Admin {
			writeJSON(w, http.StatusForbidden, errorBody{Error: "admin only"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, s)))
	})
}

// RequireUser lets through any authenticated session.
func (a *Authenticator) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, _ := a.Session(r)
		if s.State != auth.StateAuthenticated {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "missing or invalid bearer token"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, s)))
	})
}

func sessionFrom(ctx context.Context) auth.Session {
	s, _ := ctx.Value(sessionKey{}).(auth.Session)
	return s
}

// sessionView is what clients see; provider credentials stay server side.
type sessionView struct {
	State    auth.State     `json:"state"`
	Identity *auth.Identity `json:"identity,omitempty"`
}

func viewOf(s auth.Session) sessionView {
	return sessionView{State: s.State, Identity: s.Identity}
}
