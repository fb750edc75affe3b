//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"portfolio-api/internal/config"
	"portfolio-api/internal/handler"
	"portfolio-api/internal/mail"
	"portfolio-api/internal/middleware"
	"portfolio-api/internal/model"
	"portfolio-api/internal/router"
	"portfolio-api/internal/service"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "admin123"
)

// memStore is an in-memory stand-in for the Postgres repositories so the
// full HTTP surface can be exercised without a database.
type memStore struct {
	mu          sync.Mutex
	users       map[string]model.User
	articles    map[string]model.Article
	projects    map[string]model.Project
	messages    []model.Message
	subscribers map[string]model.Subscriber
}

func newMemStore() *memStore {
	return &memStore{
		users:       map[string]model.User{},
		articles:    map[string]model.Article{},
		projects:    map[string]model.Project{},
		subscribers: map[string]model.Subscriber{},
	}
}

func (s *memStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *memStore) FindByID(_ context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *memStore) Create(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

func (s *memStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), nil
}

type articleMemStore struct{ store *memStore }

func (s articleMemStore) FindByID(_ context.Context, id string) (model.Article, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if a, ok := s.store.articles[id]; ok {
		return a, nil
	}
	return model.Article{}, model.ErrArticleNotFound
}

func (s articleMemStore) FindBySlug(_ context.Context, slug string) (model.Article, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	for _, a := range s.store.articles {
		if a.Slug == slug {
			return a, nil
		}
	}
	return model.Article{}, model.ErrArticleNotFound
}

func (s articleMemStore) ExistsBySlug(_ context.Context, slug string) (bool, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	for _, a := range s.store.articles {
		if a.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (s articleMemStore) List(_ context.Context, filter model.ArticleFilter) ([]model.Article, int, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	matched := make([]model.Article, 0, len(s.store.articles))
	for _, a := range s.store.articles {
		if filter.PublishedOnly && !a.Published {
			continue
		}
		if filter.Tag != "" {
			found := false
			for _, tag := range a.Tags {
				if tag == filter.Tag {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		matched = append(matched, a)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (filter.Page - 1) * filter.Limit
	if start >= total {
		return []model.Article{}, total, nil
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s articleMemStore) Create(_ context.Context, a model.Article) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.articles[a.ID] = a
	return nil
}

func (s articleMemStore) Update(_ context.Context, a model.Article) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, ok := s.store.articles[a.ID]; !ok {
		return model.ErrArticleNotFound
	}
	s.store.articles[a.ID] = a
	return nil
}

func (s articleMemStore) Delete(_ context.Context, id string) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, ok := s.store.articles[id]; !ok {
		return model.ErrArticleNotFound
	}
	delete(s.store.articles, id)
	return nil
}

type projectMemStore struct{ store *memStore }

func (s projectMemStore) FindByID(_ context.Context, id string) (model.Project, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if p, ok := s.store.projects[id]; ok {
		return p, nil
	}
	return model.Project{}, model.ErrProjectNotFound
}

func (s projectMemStore) FindBySlug(_ context.Context, slug string) (model.Project, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	for _, p := range s.store.projects {
		if p.Slug == slug {
			return p, nil
		}
	}
	return model.Project{}, model.ErrProjectNotFound
}

func (s projectMemStore) ExistsBySlug(_ context.Context, slug string) (bool, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	for _, p := range s.store.projects {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (s projectMemStore) List(_ context.Context) ([]model.Project, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	projects := make([]model.Project, 0, len(s.store.projects))
	for _, p := range s.store.projects {
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].SortOrder < projects[j].SortOrder
	})
	return projects, nil
}

func (s projectMemStore) Create(_ context.Context, p model.Project) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.projects[p.ID] = p
	return nil
}

func (s projectMemStore) Update(_ context.Context, p model.Project) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, ok := s.store.projects[p.ID]; !ok {
		return model.ErrProjectNotFound
	}
	s.store.projects[p.ID] = p
	return nil
}

func (s projectMemStore) Delete(_ context.Context, id string) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, ok := s.store.projects[id]; !ok {
		return model.ErrProjectNotFound
	}
	delete(s.store.projects, id)
	return nil
}

type messageMemStore struct{ store *memStore }

func (s messageMemStore) Create(_ context.Context, m model.Message) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.messages = append(s.store.messages, m)
	return nil
}

func (s messageMemStore) List(_ context.Context, kind model.MessageKind) ([]model.Message, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	out := []model.Message{}
	for _, m := range s.store.messages {
		if kind == "" || m.Kind == kind {
			out = append(out, m)
		}
	}
	return out, nil
}

type subscriberMemStore struct{ store *memStore }

func (s subscriberMemStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	_, ok := s.store.subscribers[strings.ToLower(email)]
	return ok, nil
}

func (s subscriberMemStore) Create(_ context.Context, sub model.Subscriber) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.subscribers[strings.ToLower(sub.Email)] = sub
	return nil
}

func (s subscriberMemStore) DeleteByEmail(_ context.Context, email string) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	delete(s.store.subscribers, strings.ToLower(email))
	return nil
}

func (s subscriberMemStore) List(_ context.Context) ([]model.Subscriber, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	subs := make([]model.Subscriber, 0, len(s.store.subscribers))
	for _, sub := range s.store.subscribers {
		subs = append(subs, sub)
	}
	return subs, nil
}

// memObjectStorage collects uploads keyed by object path.
type memObjectStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemObjectStorage() *memObjectStorage {
	return &memObjectStorage{objects: map[string][]byte{}}
}

func (s *memObjectStorage) Upload(_ context.Context, key string, _ string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()
	return "https://storage.test/" + key, nil
}

// stubSender accepts every email without delivering anything.
type stubSender struct {
	mu   sync.Mutex
	sent []string
}

func (s *stubSender) Send(_ context.Context, to string, subject string, _ string) error {
	s.mu.Lock()
	s.sent = append(s.sent, fmt.Sprintf("%s: %s", to, subject))
	s.mu.Unlock()
	return nil
}

var _ mail.Sender = (*stubSender)(nil)

func newTestServer(t *testing.T, store *memStore) *httptest.Server {
	t.Helper()

	authService, err := service.NewAuthService("test-access-secret", "test-refresh-secret", 15*time.Minute, 168*time.Hour, store)
	require.NoError(t, err)
	require.NoError(t, authService.EnsureAdmin(context.Background(), testAdminEmail, testAdminPassword))

	sender := &stubSender{}
	articleService := service.NewArticleService(articleMemStore{store})
	projectService := service.NewProjectService(projectMemStore{store})
	contactService := service.NewContactService(messageMemStore{store}, sender, "owner@example.com")
	subscriptionService := service.NewSubscriptionService(subscriberMemStore{store}, sender)
	uploadService := service.NewUploadService(newMemObjectStorage(), 10*1024*1024, 256)

	authMiddleware := middleware.NewAuthMiddleware(authService, authService)

	cfg := &config.Config{
		RequestTimeout:   30 * time.Second,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     1000,
		AuthRateLimitRPM: 1000,
	}

	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(authService, false),
		Article:      handler.NewArticleHandler(articleService),
		Project:      handler.NewProjectHandler(projectService),
		Contact:      handler.NewContactHandler(contactService),
		Subscription: handler.NewSubscriptionHandler(subscriptionService),
		Upload:       handler.NewUploadHandler(uploadService, 10*1024*1024),
	}

	server := httptest.NewServer(router.New(cfg, authMiddleware, handlers))
	t.Cleanup(server.Close)
	return server
}

// loginAdmin logs in as the seeded admin and returns the body token plus the
// raw auth cookies for cookie-based calls.
func loginAdmin(t *testing.T, server *httptest.Server) (string, []*http.Cookie) {
	t.Helper()

	payload, err := json.Marshal(map[string]string{
		"email":    testAdminEmail,
		"password": testAdminPassword,
	})
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.True(t, parsed.Success)
	require.NotEmpty(t, parsed.Token)

	return parsed.Token, resp.Cookies()
}

func newAuthRequest(t *testing.T, method string, url string, body []byte, accessToken string) *http.Request {
	t.Helper()

	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func doRequest(t *testing.T, req *http.Request) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func doAuthJSONRequest(t *testing.T, method string, url string, body []byte, accessToken string) *http.Response {
	t.Helper()
	return doRequest(t, newAuthRequest(t, method, url, body, accessToken))
}

func doAuthRequest(t *testing.T, method string, url string, accessToken string) *http.Response {
	t.Helper()
	return doRequest(t, newAuthRequest(t, method, url, nil, accessToken))
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}
