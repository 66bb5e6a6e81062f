package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginRefresh(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/register", map[string]any{
		"username": "alice", "email": "alice@example.org", "password": "s3cret!",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "user", ts.users.users["alice"].Role)

	w = ts.do(t, http.MethodPost, "/register", map[string]any{"username": "alice", "password": "another"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, http.MethodPost, "/login", map[string]any{"username": "alice", "password": "wrong!!"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/login", map[string]any{"username": "nobody", "password": "s3cret!"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/login", map[string]any{"username": "alice", "password": "s3cret!"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode(t, w)
	assert.Equal(t, "alice", login["username"])
	assert.Equal(t, "user", login["role"])

	token := login["token"].(string)
	w = ts.do(t, http.MethodGet, "/api/diagrams", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	refresh := login["refresh_token"].(string)
	assert.Equal(t, "alice", ts.tokens.tokens[refresh])

	w = ts.do(t, http.MethodPost, "/refresh", map[string]any{"refresh_token": refresh}, "")
	require.Equal(t, http.StatusOK, w.Code)
	claims, err := ts.auth.ParseJWT(decode(t, w)["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	w = ts.do(t, http.MethodPost, "/refresh", map[string]any{"refresh_token": "stale"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegister_Invalid(t *testing.T) {
	ts := newTestServer(t)

	for _, payload := range []any{
		`{"username":`,
		map[string]any{"username": "al", "password": "s3cret!"},
		map[string]any{"username": "alice", "password": "123"},
		map[string]any{"username": "alice", "password": "s3cret!", "email": "not-an-email"},
	} {
		w := ts.do(t, http.MethodPost, "/register", payload, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, payload)
	}
	assert.Empty(t, ts.users.users)
}
