package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"rag-console/internal/event"
	"rag-console/internal/model"
	"rag-console/internal/service"
	"rag-console/internal/view"
	"rag-console/pkg/apierror"
)

type UserHandler struct {
	console *Console
}

func NewUserHandler(console *Console) *UserHandler {
	return &UserHandler{console: console}
}

type usersView struct {
	Users []model.User
	Form  model.UserCreate
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service(r).List(r.Context())
	if handleUnauthorized(w, r, err) {
		return
	}

	page := h.page(users, model.UserCreate{})
	if err != nil {
		logFailure(r, "list users", err)
		page.Error = errorMessage(err)
	}

	h.console.render(w, http.StatusOK, "users", page)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderWithError(w, r, model.UserCreate{}, apierror.New("BAD_REQUEST", "Could not read the form.", "", http.StatusBadRequest))
		return
	}

	input := model.UserCreate{
		Username: r.PostForm.Get("username"),
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
	}

	users, err := h.service(r).Create(r.Context(), input)
	if handleUnauthorized(w, r, err) {
		return
	}
	if err != nil {
		logFailure(r, "create user", err)
		input.Password = ""
		h.renderWithError(w, r, input, err)
		return
	}

	page := h.page(users, model.UserCreate{})
	page.Notice = "User " + input.Username + " created."
	h.console.render(w, http.StatusOK, "users", page)
}

// Update toggles one boolean flag. The form posts field=is_active|is_superuser
// and the new value.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderWithError(w, r, model.UserCreate{}, apierror.New("BAD_REQUEST", "Could not read the form.", "", http.StatusBadRequest))
		return
	}

	value, err := strconv.ParseBool(r.PostForm.Get("value"))
	if err != nil {
		h.renderWithError(w, r, model.UserCreate{}, apierror.New("BAD_REQUEST", "Unknown value for the user flag.", "", http.StatusBadRequest))
		return
	}

	var update model.UserUpdate
	switch r.PostForm.Get("field") {
	case "is_active":
		update.IsActive = &value
	case "is_superuser":
		update.IsSuperuser = &value
	default:
		h.renderWithError(w, r, model.UserCreate{}, apierror.New("BAD_REQUEST", "Only the active and admin flags can be changed here.", "", http.StatusBadRequest))
		return
	}

	users, err := h.service(r).Update(r.Context(), chi.URLParam(r, "id"), update)
	if handleUnauthorized(w, r, err) {
		return
	}
	if err != nil {
		logFailure(r, "update user", err)
		h.renderWithError(w, r, model.UserCreate{}, err)
		return
	}

	page := h.page(users, model.UserCreate{})
	page.Notice = "User updated."
	h.console.render(w, http.StatusOK, "users", page)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	users, err := h.service(r).Delete(r.Context(), chi.URLParam(r, "id"))
	if handleUnauthorized(w, r, err) {
		return
	}
	if err != nil {
		logFailure(r, "delete user", err)
		h.renderWithError(w, r, model.UserCreate{}, err)
		return
	}

	page := h.page(users, model.UserCreate{})
	page.Notice = "User deleted."
	h.console.render(w, http.StatusOK, "users", page)
}

func (h *UserHandler) renderWithError(w http.ResponseWriter, r *http.Request, form model.UserCreate, cause error) {
	users, err := h.service(r).List(r.Context())
	if handleUnauthorized(w, r, err) {
		return
	}

	page := h.page(users, form)
	page.Error = errorMessage(cause)
	h.console.render(w, statusFor(cause), "users", page)
}

func (h *UserHandler) service(r *http.Request) *service.UserService {
	return service.NewUserService(h.console.client(r).Users(), h.console.Bus)
}

func (h *UserHandler) page(users []model.User, form model.UserCreate) view.Page {
	if users == nil {
		users = []model.User{}
	}

	return view.Page{
		Title: "Users",
		Nav:   "users",
		Live:  string(event.TypeUsersChanged),
		Data:  usersView{Users: users, Form: form},
	}
}
