package handler

import (
	"net/http"

	"rag-console/internal/service"
	"rag-console/internal/view"
)

type DashboardHandler struct {
	console *Console
}

func NewDashboardHandler(console *Console) *DashboardHandler {
	return &DashboardHandler{console: console}
}

func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	page := view.Page{Title: "Dashboard", Nav: "dashboard"}

	svc := service.NewAuthService(h.console.client(r).Auth(), tokens(r))
	user, err := svc.CurrentUser(r.Context())
	if handleUnauthorized(w, r, err) {
		return
	}
	if err != nil {
		logFailure(r, "load current user", err)
		page.Error = errorMessage(err)
	} else {
		page.User = &user
	}

	h.console.render(w, http.StatusOK, "dashboard", page)
}
