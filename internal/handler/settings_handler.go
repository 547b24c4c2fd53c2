package handler

import (
	"net/http"

	"rag-console/internal/model"
	"rag-console/internal/service"
	"rag-console/internal/view"
)

type SettingsHandler struct {
	console *Console
}

func NewSettingsHandler(console *Console) *SettingsHandler {
	return &SettingsHandler{console: console}
}

type settingsView struct {
	Settings model.RAGSettings
	Models   []string
}

// Show pre-populates the form field for field from the stored settings.
func (h *SettingsHandler) Show(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service(r).Get(r.Context())
	if handleUnauthorized(w, r, err) {
		return
	}

	page := h.page(settings)
	if err != nil {
		logFailure(r, "load settings", err)
		page = h.page(model.DefaultRAGSettings())
		page.Error = errorMessage(err)
	}

	h.console.render(w, http.StatusOK, "settings", page)
}

// Save always sends all six fields.
func (h *SettingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		page := h.page(model.DefaultRAGSettings())
		page.Error = service.SettingsErrorMessage
		h.console.render(w, http.StatusBadRequest, "settings", page)
		return
	}

	submitted, err := service.ParseSettingsForm(r.PostForm)
	if err != nil {
		logFailure(r, "validate settings", err)
		page := h.page(submitted)
		page.Error = service.SettingsErrorMessage + ": " + errorMessage(err)
		h.console.render(w, http.StatusBadRequest, "settings", page)
		return
	}

	saved, err := h.service(r).Save(r.Context(), submitted.FullUpdate())
	if handleUnauthorized(w, r, err) {
		return
	}
	if err != nil {
		logFailure(r, "save settings", err)
		page := h.page(submitted)
		page.Error = service.SettingsErrorMessage
		h.console.render(w, statusFor(err), "settings", page)
		return
	}

	page := h.page(saved)
	page.Notice = service.SettingsSavedMessage
	h.console.render(w, http.StatusOK, "settings", page)
}

func (h *SettingsHandler) service(r *http.Request) *service.SettingsService {
	return service.NewSettingsService(h.console.client(r).Settings(), h.console.Bus)
}

func (h *SettingsHandler) page(settings model.RAGSettings) view.Page {
	return view.Page{
		Title: "Settings",
		Nav:   "settings",
		Data:  settingsView{Settings: settings, Models: model.ModelChoices(settings.ModelName)},
	}
}
