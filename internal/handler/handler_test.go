package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-console/internal/apiclient"
	"rag-console/internal/event"
	"rag-console/internal/metrics"
	"rag-console/internal/middleware"
	"rag-console/internal/model"
	"rag-console/internal/session"
	"rag-console/internal/view"
)

var testNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func testToken(exp time.Time) string {
	enc := base64.RawURLEncoding
	claims, _ := json.Marshal(map[string]any{"sub": "alice", "exp": exp.Unix()})
	return enc.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`)) + "." + enc.EncodeToString(claims) + "." + enc.EncodeToString([]byte("sig"))
}

// fakeBackend records calls and serves canned responses per "METHOD path".
type fakeBackend struct {
	mu        sync.Mutex
	calls     []string
	authHdrs  []string
	responses map[string]func(w http.ResponseWriter, r *http.Request)
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{responses: map[string]func(w http.ResponseWriter, r *http.Request){}}
}

func (b *fakeBackend) on(method string, path string, fn func(w http.ResponseWriter, r *http.Request)) {
	b.responses[method+" "+path] = fn
}

func (b *fakeBackend) json(method string, path string, status int, payload any) {
	b.on(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(payload)
	})
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + strings.TrimPrefix(r.URL.Path, "/api/v1")

	b.mu.Lock()
	b.calls = append(b.calls, key)
	b.authHdrs = append(b.authHdrs, r.Header.Get("Authorization"))
	fn, ok := b.responses[key]
	b.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Not Found"}`)
		return
	}
	fn(w, r)
}

func (b *fakeBackend) count(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, c := range b.calls {
		if c == key {
			n++
		}
	}
	return n
}

type testEnv struct {
	backend *fakeBackend
	store   *session.MemoryStore
	manager *session.Manager
	router  http.Handler
	bus     *event.InMemoryBus
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	backend := newFakeBackend()
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	views, err := view.New()
	require.NoError(t, err)

	env := &testEnv{
		backend: backend,
		store:   session.NewMemoryStore(),
		bus:     event.NewBus(),
	}
	env.manager = session.NewManager(env.store, session.Options{CookieName: "sid", TTL: time.Hour})

	console := &Console{
		API:               apiclient.New(server.URL+"/api/v1", server.Client(), metrics.New("test")),
		Bus:               env.bus,
		Views:             views,
		Metrics:           metrics.New("test_handler"),
		AllowedExtensions: []string{".pdf", ".docx", ".doc", ".txt"},
		MaxUploadSize:     1 << 20,
		Now:               func() time.Time { return testNow },
	}

	auth := NewAuthHandler(console)
	dashboard := NewDashboardHandler(console)
	chat := NewChatHandler(console)
	documents := NewDocumentHandler(console)
	users := NewUserHandler(console)
	settings := NewSettingsHandler(console)

	r := chi.NewRouter()
	r.Use(middleware.Sessions(env.manager))
	r.Get("/", auth.Home)
	r.Get("/login", auth.LoginPage)
	r.Post("/login", auth.Login)
	r.Post("/logout", auth.Logout)
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionGuard(func() time.Time { return testNow }))
		r.Get("/dashboard", dashboard.Dashboard)
		r.Get("/chat/document", chat.DocumentChat)
		r.Post("/chat/document", chat.AskDocument)
		r.Get("/chat/policy", chat.PolicyChat)
		r.Post("/chat/policy", chat.AskPolicy)
		r.Get("/documents", documents.List)
		r.Post("/documents/upload", documents.Upload)
		r.Post("/documents/{id}/delete", documents.Delete)
		r.Get("/users", users.List)
		r.Post("/users", users.Create)
		r.Post("/users/{id}/update", users.Update)
		r.Post("/users/{id}/delete", users.Delete)
		r.Get("/settings", settings.Show)
		r.Post("/settings", settings.Save)
	})
	env.router = r

	return env
}

// loggedIn seeds a session and returns its cookie.
func (e *testEnv) loggedIn(t *testing.T) *http.Cookie {
	t.Helper()
	require.NoError(t, e.store.Set(context.Background(), "sess-1", testToken(testNow.Add(time.Hour)), time.Hour))
	return &http.Cookie{Name: "sid", Value: "sess-1"}
}

func (e *testEnv) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestLogin_WrongPasswordRendersDetailWithoutRedirect(t *testing.T) {
	env := newTestEnv(t)
	env.backend.json(http.MethodPost, "/auth/login", http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"})

	rec := env.do(postForm("/login", url.Values{"username": {"alice"}, "password": {"wrong"}}), nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
	assert.Contains(t, rec.Body.String(), "Incorrect username or password")
	assert.Contains(t, rec.Body.String(), `value="alice"`)
	assert.Empty(t, rec.Result().Cookies())
}

func TestLogin_FailureWithoutDetailUsesFallback(t *testing.T) {
	env := newTestEnv(t)
	env.backend.on(http.MethodPost, "/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	rec := env.do(postForm("/login", url.Values{"username": {"alice"}, "password": {"pw"}}), nil)

	assert.Contains(t, rec.Body.String(), "Login failed. Please try again.")
	assert.Empty(t, rec.Header().Get("Location"))
}

func TestLogin_SuccessStoresTokenAndRedirects(t *testing.T) {
	env := newTestEnv(t)
	token := testToken(testNow.Add(time.Hour))
	env.backend.on(http.MethodPost, "/auth/login", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "alice", r.PostForm.Get("username"))
		_ = json.NewEncoder(w).Encode(model.TokenResponse{AccessToken: token, TokenType: "bearer"})
	})

	rec := env.do(postForm("/login", url.Values{"username": {"alice"}, "password": {"pw"}}), nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	stored, err := env.store.Get(context.Background(), cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, token, stored)
}

func TestHome(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = env.do(httptest.NewRequest(http.MethodGet, "/", nil), env.loggedIn(t))
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loggedIn(t)

	rec := env.do(httptest.NewRequest(http.MethodPost, "/logout", nil), cookie)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	_, err := env.store.Get(context.Background(), "sess-1")
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}

func TestBackendUnauthorizedRedirectsFromAnyPage(t *testing.T) {
	pages := map[string]string{
		"/dashboard":     "/auth/me",
		"/documents":     "/documents",
		"/users":         "/users",
		"/settings":      "/settings",
		"/chat/document": "/documents",
	}

	for page, endpoint := range pages {
		t.Run(page, func(t *testing.T) {
			env := newTestEnv(t)
			env.backend.json(http.MethodGet, endpoint, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})

			rec := env.do(httptest.NewRequest(http.MethodGet, page, nil), env.loggedIn(t))

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/login", rec.Header().Get("Location"))
			assert.Equal(t, 1, env.backend.count("GET "+endpoint))

			_, err := env.store.Get(context.Background(), "sess-1")
			assert.ErrorIs(t, err, model.ErrSessionNotFound)
		})
	}
}

func TestDashboard_ShowsCurrentUser(t *testing.T) {
	env := newTestEnv(t)
	env.backend.json(http.MethodGet, "/auth/me", http.StatusOK, model.User{ID: "1", Username: "alice", Email: "alice@example.com", IsSuperuser: true})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil), env.loggedIn(t))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Signed in as alice")
	assert.Contains(t, env.backend.authHdrs[0], "Bearer ")
}

func TestDocumentChat(t *testing.T) {
	env := newTestEnv(t)
	env.backend.json(http.MethodGet, "/documents", http.StatusOK, []model.Document{
		{ID: "d1", OriginalFilename: "handbook.pdf", Status: model.DocumentStatusCompleted},
		{ID: "d2", OriginalFilename: "policy.pdf", Status: model.DocumentStatusCompleted, IsCompanyPolicy: true},
		{ID: "d3", OriginalFilename: "draft.pdf", Status: model.DocumentStatusProcessing},
	})
	env.backend.on(http.MethodPost, "/chat/", func(w http.ResponseWriter, r *http.Request) {
		var req model.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "d1", *req.DocumentID)
		assert.False(t, req.UseCompanyPolicy)
		_ = json.NewEncoder(w).Encode(model.ChatResponse{Answer: "Onboarding takes two weeks.", SourceDocuments: []string{"handbook.pdf"}})
	})
	cookie := env.loggedIn(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/chat/document", nil), cookie)
	body := rec.Body.String()
	assert.Contains(t, body, "handbook.pdf")
	assert.NotContains(t, body, "policy.pdf")
	assert.NotContains(t, body, "draft.pdf")

	history := `[{"role":"user","content":"hello"},{"role":"assistant","content":"hi there"}]`
	rec = env.do(postForm("/chat/document", url.Values{
		"document_id": {"d1"},
		"query":       {"How long is onboarding?"},
		"transcript":  {history},
	}), cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.Contains(t, body, "hi there")
	assert.Contains(t, body, "How long is onboarding?")
	assert.Contains(t, body, "Onboarding takes two weeks.")
	assert.Contains(t, body, "Sources: handbook.pdf")
}

func TestDocumentChat_RefusesDocumentsThePickerHides(t *testing.T) {
	env := newTestEnv(t)
	env.backend.json(http.MethodGet, "/documents", http.StatusOK, []model.Document{
		{ID: "d1", OriginalFilename: "handbook.pdf", Status: model.DocumentStatusCompleted},
		{ID: "d2", OriginalFilename: "policy.pdf", Status: model.DocumentStatusCompleted, IsCompanyPolicy: true},
		{ID: "d3", OriginalFilename: "draft.pdf", Status: model.DocumentStatusProcessing},
	})
	env.backend.json(http.MethodPost, "/chat/", http.StatusOK, model.ChatResponse{Answer: "should not be asked"})
	cookie := env.loggedIn(t)

	for _, id := range []string{"d2", "d3", "missing"} {
		rec := env.do(postForm("/chat/document", url.Values{
			"document_id": {id},
			"query":       {"What does it say?"},
			"transcript":  {`[{"role":"user","content":"earlier"}]`},
		}), cookie)

		assert.Equal(t, http.StatusBadRequest, rec.Code, id)
		assert.Contains(t, rec.Body.String(), "not available for chat", id)
		assert.Contains(t, rec.Body.String(), "earlier", id)
	}
	assert.Equal(t, 0, env.backend.count("POST /chat/"))
}

func TestPolicyChat_FallbackOnServerError(t *testing.T) {
	env := newTestEnv(t)
	env.backend.json(http.MethodPost, "/chat/", http.StatusInternalServerError, map[string]string{"detail": "LLM down"})

	rec := env.do(postForm("/chat/policy", url.Values{"query": {"Holiday policy?"}}), env.loggedIn(t))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sorry, I encountered an error. Please try again.")
	assert.Contains(t, rec.Body.String(), "Holiday policy?")
}

func TestPolicyChat_EmptyQueryIsNoop(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(postForm("/chat/policy", url.Values{"query": {"   "}}), env.loggedIn(t))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, env.backend.count("POST /chat/"))
}

func multipartUpload(t *testing.T, filename string, content string, policy bool) *http.Request {
	t.Helper()

	var buf strings.Builder
	form := multipart.NewWriter(&buf)
	require.NoError(t, form.WriteField("is_company_policy", fmt.Sprintf("%t", policy)))
	part, err := form.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents/upload", strings.NewReader(buf.String()))
	req.Header.Set("Content-Type", form.FormDataContentType())
	return req
}

func TestDocuments_UploadRefetchesList(t *testing.T) {
	env := newTestEnv(t)
	events, unsubscribe := env.bus.Subscribe()
	defer unsubscribe()

	env.backend.on(http.MethodPost, "/documents/upload", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "true", r.FormValue("is_company_policy"))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		_ = json.NewEncoder(w).Encode(model.Document{ID: "d9", OriginalFilename: header.Filename, IsCompanyPolicy: true})
	})
	env.backend.json(http.MethodGet, "/documents", http.StatusOK, []model.Document{{ID: "d9", OriginalFilename: "leave.pdf", Status: model.DocumentStatusPending}})

	rec := env.do(multipartUpload(t, "leave.pdf", "%PDF-1.4", true), env.loggedIn(t))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Uploaded leave.pdf")
	assert.Equal(t, 1, env.backend.count("GET /documents"))
	assert.Equal(t, event.TypeDocumentsChanged, (<-events).Type)
}

func TestDocuments_UploadSucceedsWhenRefreshFails(t *testing.T) {
	env := newTestEnv(t)
	events, unsubscribe := env.bus.Subscribe()
	defer unsubscribe()

	env.backend.json(http.MethodPost, "/documents/upload", http.StatusOK, model.Document{ID: "d9", OriginalFilename: "leave.pdf"})
	env.backend.json(http.MethodGet, "/documents", http.StatusInternalServerError, map[string]string{"detail": "db down"})

	rec := env.do(multipartUpload(t, "leave.pdf", "%PDF-1.4", false), env.loggedIn(t))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Uploaded leave.pdf")
	assert.Contains(t, rec.Body.String(), "Could not refresh the document list")
	assert.Equal(t, event.TypeDocumentsChanged, (<-events).Type)
}

func TestDocuments_UploadRejectsUnsupportedType(t *testing.T) {
	env := newTestEnv(t)
	env.backend.json(http.MethodGet, "/documents", http.StatusOK, []model.Document{})

	rec := env.do(multipartUpload(t, "photo.png", "png", false), env.loggedIn(t))

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unsupported file type")
	assert.Equal(t, 0, env.backend.count("POST /documents/upload"))
}

func TestDocuments_UploadTooLarge(t *testing.T) {
	env := newTestEnv(t)
	env.backend.json(http.MethodGet, "/documents", http.StatusOK, []model.Document{})

	rec := env.do(multipartUpload(t, "big.txt", strings.Repeat("a", 2<<20), false), env.loggedIn(t))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "File is too large")
	assert.Equal(t, 0, env.backend.count("POST /documents/upload"))
}

func TestDocuments_DeleteRefetchesList(t *testing.T) {
	env := newTestEnv(t)
	env.backend.on(http.MethodDelete, "/documents/d1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	env.backend.json(http.MethodGet, "/documents", http.StatusOK, []model.Document{})

	rec := env.do(httptest.NewRequest(http.MethodPost, "/documents/d1/delete", nil), env.loggedIn(t))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Document deleted.")
	assert.Equal(t, 1, env.backend.count("DELETE /documents/d1"))
	assert.Equal(t, 1, env.backend.count("GET /documents"))
}

func TestUsers_CreateShowsBackendError(t *testing.T) {
	env := newTestEnv(t)
	env.backend.json(http.MethodPost, "/users", http.StatusBadRequest, map[string]string{"detail": "Username already registered"})
	env.backend.json(http.MethodGet, "/users", http.StatusOK, []model.User{{ID: "1", Username: "alice"}})

	rec := env.do(postForm("/users", url.Values{"username": {"alice"}, "email": {"a@example.com"}, "password": {"pw"}}), env.loggedIn(t))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Username already registered")
	assert.NotContains(t, rec.Body.String(), `value="pw"`)
}

func TestUsers_ToggleActive(t *testing.T) {
	env := newTestEnv(t)
	env.backend.on(http.MethodPut, "/users/7", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"is_active":false}`, string(raw))
		_ = json.NewEncoder(w).Encode(model.User{ID: "7"})
	})
	env.backend.json(http.MethodGet, "/users", http.StatusOK, []model.User{{ID: "7", Username: "bob"}})

	rec := env.do(postForm("/users/7/update", url.Values{"field": {"is_active"}, "value": {"false"}}), env.loggedIn(t))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "User updated.")
	assert.Equal(t, 1, env.backend.count("GET /users"))
}

func TestSettings_ShowAndSave(t *testing.T) {
	env := newTestEnv(t)
	stored := model.RAGSettings{ID: "s1", ChunkSize: 800, ChunkOverlap: 100, Temperature: 0.2, TopP: 0.95, TopK: 5, ModelName: "gpt-4"}
	env.backend.json(http.MethodGet, "/settings", http.StatusOK, stored)
	env.backend.on(http.MethodPut, "/settings", func(w http.ResponseWriter, r *http.Request) {
		var update map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&update))
		assert.Len(t, update, 6)
		_ = json.NewEncoder(w).Encode(stored)
	})
	cookie := env.loggedIn(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/settings", nil), cookie)
	body := rec.Body.String()
	assert.Contains(t, body, `name="chunk_size" min="100" max="5000" step="1" value="800"`)
	assert.Contains(t, body, `<option value="gpt-4" selected>`)

	rec = env.do(postForm("/settings", url.Values{
		"chunk_size": {"800"}, "chunk_overlap": {"100"}, "temperature": {"0.2"},
		"top_p": {"0.95"}, "top_k": {"5"}, "model_name": {"gpt-4"},
	}), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Settings saved successfully!")
}

var (
	renderedInput  = regexp.MustCompile(`name="(\w+)"[^>]*value="([^"]*)"`)
	renderedOption = regexp.MustCompile(`<option value="([^"]+)" selected>`)
)

// submittedForm collects what a browser would post for the rendered settings form.
func submittedForm(t *testing.T, body string) url.Values {
	t.Helper()
	form := url.Values{}
	for _, m := range renderedInput.FindAllStringSubmatch(body, -1) {
		form.Set(m[1], m[2])
	}
	selected := renderedOption.FindStringSubmatch(body)
	require.NotNil(t, selected, "no selected model option")
	form.Set("model_name", selected[1])
	return form
}

func TestSettings_UnchangedFormRoundTrips(t *testing.T) {
	env := newTestEnv(t)
	stored := model.RAGSettings{ID: "s1", ChunkSize: 900, ChunkOverlap: 120, Temperature: 0.2, TopP: 0.95, TopK: 7, ModelName: "gpt-4o-mini"}
	env.backend.json(http.MethodGet, "/settings", http.StatusOK, stored)

	var sent map[string]any
	env.backend.on(http.MethodPut, "/settings", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		_ = json.NewEncoder(w).Encode(stored)
	})
	cookie := env.loggedIn(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/settings", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<option value="gpt-4o-mini" selected>`)

	rec = env.do(postForm("/settings", submittedForm(t, rec.Body.String())), cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Settings saved successfully!")

	assert.Equal(t, "gpt-4o-mini", sent["model_name"])
	assert.EqualValues(t, 900, sent["chunk_size"])
	assert.EqualValues(t, 120, sent["chunk_overlap"])
	assert.InDelta(t, 0.2, sent["temperature"], 1e-9)
	assert.InDelta(t, 0.95, sent["top_p"], 1e-9)
	assert.EqualValues(t, 7, sent["top_k"])
}

func TestSettings_SaveFailure(t *testing.T) {
	env := newTestEnv(t)
	env.backend.json(http.MethodPut, "/settings", http.StatusInternalServerError, map[string]string{"detail": "db down"})

	rec := env.do(postForm("/settings", url.Values{
		"chunk_size": {"1000"}, "chunk_overlap": {"200"}, "temperature": {"0.7"},
		"top_p": {"1"}, "top_k": {"4"}, "model_name": {"gpt-3.5-turbo"},
	}), env.loggedIn(t))

	assert.Contains(t, rec.Body.String(), "Error saving settings")
	assert.NotContains(t, rec.Body.String(), "Settings saved successfully!")
}

func TestGuard_ExpiredTokenNeverReachesBackend(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.store.Set(context.Background(), "old", testToken(testNow.Add(-time.Minute)), time.Hour))

	rec := env.do(httptest.NewRequest(http.MethodGet, "/documents", nil), &http.Cookie{Name: "sid", Value: "old"})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 0, env.backend.count("GET /documents"))
}
