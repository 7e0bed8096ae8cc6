package httpx

import (
	"net/http"

	"github.com/ariefcatur/catrink-storefront/internal/auth"
	"github.com/ariefcatur/catrink-storefront/internal/profile"
	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	Gate     *auth.Gate
	Tokens   *auth.Tokens
	Profiles *profile.Store
	Authn    *Authenticator
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/auth/login", h.login)
	r.Post("/auth/signup", h.signup)
	r.Post("/auth/logout", h.logout)
	r.Get("/auth/me", h.me)
	r.Group(func(r chi.Router) {
		r.Use(h.Authn.RequireUser)
		r.Post("/auth/password", h.changePassword)
		r.Get("/profile", h.getProfile)
		r.Put("/profile", h.putProfile)
	})
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	Token   string      `json:"token"`
	Session sessionView `json:"session"`
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if !decode(w, r, &req) {
		return
	}
	s, err := h.Gate.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.issue(w, r, http.StatusOK, s)
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if !decode(w, r, &req) {
		return
	}
	s, err := h.Gate.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.issue(w, r, http.StatusCreated, s)
}

func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, code int, s auth.Session) {
	tok, err := h.Tokens.Issue(s.ID, s.IsAdmin())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, code, loginResp{Token: tok, Session: viewOf(s)})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	s, _ := h.Authn.Session(r)
	writeJSON(w, http.StatusOK, viewOf(h.Gate.Logout(r.Context(), s.ID)))
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	s, _ := h.Authn.Session(r)
	writeJSON(w, http.StatusOK, viewOf(s))
}

type passwordReq struct {
	Current string `json:"current"`
	New     string `json:"new"`
	Confirm string `json:"confirm"`
}

func (h *AuthHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordReq
	if !decode(w, r, &req) {
		return
	}
	s := sessionFrom(r.Context())
	if err := h.Gate.ChangePassword(r.Context(), s.ID, req.Current, req.New, req.Confirm); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func owner(s auth.Session) profile.Owner {
	return profile.Owner{Email: s.Identity.Email, DisplayName: s.Identity.DisplayName, Admin: s.Identity.Admin}
}

func (h *AuthHandler) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.Profiles.Load(r.Context(), owner(sessionFrom(r.Context())))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *AuthHandler) putProfile(w http.ResponseWriter, r *http.Request) {
	var p profile.Profile
	if !decode(w, r, &p) {
		return
	}
	saved, err := h.Profiles.Save(r.Context(), owner(sessionFrom(r.Context())), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
