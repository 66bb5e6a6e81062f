package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/NREL/CoolerChips/internal/auth"
	"github.com/NREL/CoolerChips/internal/metrics"
	"github.com/NREL/CoolerChips/internal/models"
	"github.com/NREL/CoolerChips/internal/topology"
)

func init() {
	gin.SetMode(gin.TestMode)
	models.PasswordCost = bcrypt.MinCost
}

type memCache struct {
	mu      sync.Mutex
	entries map[string]models.Evaluation
	err     error
}

func newMemCache() *memCache { return &memCache{entries: map[string]models.Evaluation{}} }

func (m *memCache) Get(_ context.Context, key string) (models.Evaluation, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.Evaluation{}, false, m.err
	}
	ev, ok := m.entries[key]
	return ev, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, ev models.Evaluation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries[key] = ev
	return nil
}

type memDiagrams struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]models.Diagram
}

func newMemDiagrams() *memDiagrams {
	return &memDiagrams{items: map[primitive.ObjectID]models.Diagram{}}
}

func (m *memDiagrams) lookup(owner, id string) (models.Diagram, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Diagram{}, models.ErrInvalidID
	}
	d, ok := m.items[oid]
	if !ok || d.Owner != owner {
		return models.Diagram{}, models.ErrNotFound
	}
	return d, nil
}

func (m *memDiagrams) List(_ context.Context, owner string) ([]models.Diagram, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Diagram{}
	for _, d := range m.items {
		if d.Owner == owner {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memDiagrams) Get(_ context.Context, owner, id string) (*models.Diagram, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, err := m.lookup(owner, id)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (m *memDiagrams) Create(_ context.Context, d *models.Diagram) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = primitive.NewObjectID()
	d.CreatedAt = time.Now().UTC()
	d.UpdatedAt = d.CreatedAt
	m.items[d.ID] = *d
	return nil
}

func (m *memDiagrams) Update(_ context.Context, d *models.Diagram) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, err := m.lookup(d.Owner, d.ID.Hex())
	if err != nil {
		return err
	}
	d.CreatedAt = prev.CreatedAt
	d.UpdatedAt = time.Now().UTC()
	d.LastResult = nil
	m.items[d.ID] = *d
	return nil
}

func (m *memDiagrams) Delete(_ context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, err := m.lookup(owner, id)
	if err != nil {
		return err
	}
	delete(m.items, d.ID)
	return nil
}

func (m *memDiagrams) SaveResult(_ context.Context, owner, id string, ev models.Evaluation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, err := m.lookup(owner, id)
	if err != nil {
		return err
	}
	d.LastResult = &ev
	m.items[d.ID] = d
	return nil
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]models.User
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Username]; ok {
		return models.ErrUserExists
	}
	m.users[u.Username] = *u
	return nil
}

type memTokens struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (m *memTokens) Save(_ context.Context, token, username string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = username
	return nil
}

func (m *memTokens) Lookup(_ context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.tokens[token]
	if !ok {
		return "", auth.ErrUnknownRefreshToken
	}
	return u, nil
}

type fakeMirror struct {
	mu      sync.Mutex
	synced  map[string]*models.Diagram
	deleted []string
	err     error
}

func (f *fakeMirror) Sync(_ context.Context, d *models.Diagram) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.synced[d.ID.Hex()] = d
	return nil
}

func (f *fakeMirror) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	delete(f.synced, id)
	return nil
}

func (f *fakeMirror) Graph(_ context.Context, id string) (*topology.GraphResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.synced[id]
	if !ok {
		return nil, topology.ErrNotMirrored
	}
	g := &topology.GraphResponse{Edges: []topology.Edge{}}
	for _, e := range d.Edges {
		g.Edges = append(g.Edges, topology.Edge{Source: e.Source, Target: e.Target, Type: "FEEDS"})
	}
	if len(d.Edges) > 0 {
		g.Root = d.Edges[0].Source
	}
	return g, nil
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

var errBoom = errors.New("boom")

// testServer bundles a router with the fakes behind it.
type testServer struct {
	router   *gin.Engine
	handler  *Handler
	cache    *memCache
	diagrams *memDiagrams
	users    *memUsers
	tokens   *memTokens
	mirror   *fakeMirror
	metrics  *metrics.Registry
	auth     *auth.Manager
}

func newTestServer(t *testing.T, mutate ...func(*Deps)) *testServer {
	t.Helper()

	ts := &testServer{
		cache:    newMemCache(),
		diagrams: newMemDiagrams(),
		users:    &memUsers{users: map[string]models.User{}},
		tokens:   &memTokens{tokens: map[string]string{}},
		mirror:   &fakeMirror{synced: map[string]*models.Diagram{}},
		metrics:  metrics.NewRegistry(),
		auth:     auth.NewManager("test-secret", time.Hour, time.Hour),
	}
	deps := Deps{
		Metrics:  ts.metrics,
		Cache:    ts.cache,
		Diagrams: ts.diagrams,
		Users:    ts.users,
		Tokens:   ts.tokens,
		Auth:     ts.auth,
		Mirror:   ts.mirror,
		Checks:   map[string]Pinger{"mongo": pinger{}, "redis": pinger{}},
	}
	for _, m := range mutate {
		m(&deps)
	}

	ts.handler = New(deps)
	ts.router = gin.New()
	ts.handler.Routes(ts.router)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) token(t *testing.T, username string) string {
	t.Helper()
	tok, err := ts.auth.GenerateJWT(username)
	require.NoError(t, err)
	return tok
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
