package handler

import (
	"net/http"

	"rag-console/internal/service"
	"rag-console/internal/session"
	"rag-console/internal/view"
)

type AuthHandler struct {
	console *Console
}

func NewAuthHandler(console *Console) *AuthHandler {
	return &AuthHandler{console: console}
}

type loginForm struct {
	Username string
}

// Home sends the browser to the dashboard or the login page depending on the session.
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	if session.Valid(r.Context(), tokens(r), h.console.now()) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, http.StatusOK, loginForm{}, "")
}

// Login never redirects on failure: the form is shown again with the
// backend's message.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, http.StatusBadRequest, loginForm{}, service.LoginFailedMessage)
		return
	}

	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	svc := service.NewAuthService(h.console.client(r).Auth(), tokens(r))
	if err := svc.Login(r.Context(), username, password); err != nil {
		logFailure(r, "login", err)
		h.renderLogin(w, statusFor(err), loginForm{Username: username}, service.LoginErrorMessage(err))
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	svc := service.NewAuthService(h.console.client(r).Auth(), tokens(r))
	if err := svc.Logout(r.Context()); err != nil {
		logFailure(r, "logout", err)
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, status int, form loginForm, message string) {
	h.console.render(w, status, "login", view.Page{
		Title: "Login",
		Nav:   "login",
		Error: message,
		Data:  form,
	})
}
