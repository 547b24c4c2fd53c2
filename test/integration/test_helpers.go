//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"rag-console/internal/apiclient"
	"rag-console/internal/config"
	"rag-console/internal/event"
	"rag-console/internal/handler"
	"rag-console/internal/metrics"
	"rag-console/internal/model"
	"rag-console/internal/router"
	"rag-console/internal/session"
	"rag-console/internal/view"
	"rag-console/internal/websocket"
)

// ragBackend is an in-memory stand-in for the RAG API.
type ragBackend struct {
	mu        sync.Mutex
	tokens    map[string]bool
	documents []model.Document
	users     []model.User
	settings  model.RAGSettings
	nextID    int
}

func newRAGBackend(t *testing.T) (*ragBackend, *httptest.Server) {
	t.Helper()

	b := &ragBackend{
		tokens:   map[string]bool{},
		users:    []model.User{{ID: "u1", Username: "admin", Email: "admin@example.com", IsActive: true, IsSuperuser: true}},
		settings: model.DefaultRAGSettings(),
	}
	b.settings.ID = "s1"

	r := chi.NewRouter()
	r.Route("/api/v1", func(api chi.Router) {
		api.Post("/auth/login", b.login)
		api.Group(func(api chi.Router) {
			api.Use(b.requireToken)
			api.Get("/auth/me", func(w http.ResponseWriter, _ *http.Request) { b.json(w, http.StatusOK, b.users[0]) })
			api.Get("/documents", b.listDocuments)
			api.Post("/documents/upload", b.upload)
			api.Delete("/documents/{id}", b.deleteDocument)
			api.Get("/users", func(w http.ResponseWriter, _ *http.Request) { b.json(w, http.StatusOK, b.users) })
			api.Get("/settings", func(w http.ResponseWriter, _ *http.Request) { b.json(w, http.StatusOK, b.settings) })
			api.Put("/settings", b.updateSettings)
			api.Post("/chat/", b.chat)
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *ragBackend) json(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *ragBackend) login(w http.ResponseWriter, r *http.Request) {
	if r.FormValue("username") != "admin" || r.FormValue("password") != "admin123" {
		b.json(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"})
		return
	}

	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"exp": time.Now().Add(time.Hour).Unix(),
		"jti": fmt.Sprint(time.Now().UnixNano()),
	}).SignedString([]byte("backend-secret"))

	b.mu.Lock()
	b.tokens[token] = true
	b.mu.Unlock()

	b.json(w, http.StatusOK, model.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (b *ragBackend) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		b.mu.Lock()
		ok := b.tokens[token]
		b.mu.Unlock()
		if !ok {
			b.json(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// revokeAll simulates the backend invalidating every issued token.
func (b *ragBackend) revokeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = map[string]bool{}
}

func (b *ragBackend) listDocuments(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := append([]model.Document{}, b.documents...)
	b.json(w, http.StatusOK, out)
}

func (b *ragBackend) upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		b.json(w, http.StatusBadRequest, map[string]string{"detail": "file is required"})
		return
	}
	defer file.Close()
	content, _ := io.ReadAll(file)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	doc := model.Document{
		ID:               fmt.Sprintf("d%d", b.nextID),
		Filename:         header.Filename,
		OriginalFilename: header.Filename,
		FileType:         strings.TrimPrefix(header.Filename[strings.LastIndex(header.Filename, "."):], "."),
		FileSize:         int64(len(content)),
		IsCompanyPolicy:  r.FormValue("is_company_policy") == "true",
		Status:           model.DocumentStatusCompleted,
		CreatedAt:        model.Timestamp{Time: time.Now().UTC()},
	}
	b.documents = append(b.documents, doc)
	b.json(w, http.StatusOK, doc)
}

func (b *ragBackend) deleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, doc := range b.documents {
		if doc.ID == id {
			b.documents = append(b.documents[:i], b.documents[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	b.json(w, http.StatusNotFound, map[string]string{"detail": "Document not found"})
}

func (b *ragBackend) updateSettings(w http.ResponseWriter, r *http.Request) {
	var update model.SettingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		b.json(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid body"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if update.TopK != nil {
		b.settings.TopK = *update.TopK
	}
	if update.ModelName != nil {
		b.settings.ModelName = *update.ModelName
	}
	b.json(w, http.StatusOK, b.settings)
}

func (b *ragBackend) chat(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Query == "explode" {
		b.json(w, http.StatusInternalServerError, map[string]string{"detail": "model offline"})
		return
	}
	b.json(w, http.StatusOK, model.ChatResponse{Answer: "echo: " + req.Query, SourceDocuments: []string{"handbook.pdf"}})
}

type consoleEnv struct {
	backend *ragBackend
	server  *httptest.Server
	client  *http.Client
}

func newConsole(t *testing.T, loginRPM int) *consoleEnv {
	t.Helper()

	backend, backendSrv := newRAGBackend(t)

	views, err := view.New()
	require.NoError(t, err)

	collector := metrics.New("rag_console_it")
	bus := event.NewBus()
	hub := websocket.NewHub(bus)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	console := &handler.Console{
		API:               apiclient.New(backendSrv.URL+"/api/v1", backendSrv.Client(), collector),
		Bus:               bus,
		Views:             views,
		Metrics:           collector,
		AllowedExtensions: []string{".pdf", ".docx", ".doc", ".txt"},
		MaxUploadSize:     1 << 20,
	}

	cfg := &config.Config{
		RequestTimeout:   10 * time.Second,
		CORSOrigins:      []string{"*"},
		AuthRateLimitRPM: loginRPM,
	}

	manager := session.NewManager(session.NewMemoryStore(), session.Options{CookieName: "rag_session", TTL: time.Hour})
	srv := httptest.NewServer(router.New(cfg, router.Handlers{
		Auth:      handler.NewAuthHandler(console),
		Dashboard: handler.NewDashboardHandler(console),
		Chat:      handler.NewChatHandler(console),
		Document:  handler.NewDocumentHandler(console),
		User:      handler.NewUserHandler(console),
		Settings:  handler.NewSettingsHandler(console),
		Health:    handler.NewHealthHandler(nil),
	}, router.Deps{
		Sessions: manager,
		Metrics:  collector,
		Live:     hub.Handler(nil),
	}))
	t.Cleanup(srv.Close)

	return &consoleEnv{backend: backend, server: srv, client: newBrowser(t)}
}

// newBrowser returns a client with a cookie jar that does not follow redirects.
func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (e *consoleEnv) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := e.client.Get(e.server.URL + path)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (e *consoleEnv) postForm(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := e.client.PostForm(e.server.URL+path, form)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (e *consoleEnv) login(t *testing.T) {
	t.Helper()
	resp, _ := e.postForm(t, "/login", url.Values{"username": {"admin"}, "password": {"admin123"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func (e *consoleEnv) sessionCookie(t *testing.T) string {
	t.Helper()
	u, err := url.Parse(e.server.URL)
	require.NoError(t, err)
	for _, c := range e.client.Jar.Cookies(u) {
		if c.Name == "rag_session" {
			return c.Value
		}
	}
	return ""
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}
