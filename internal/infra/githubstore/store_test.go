package githubstore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvdberg/klusplan/internal/domain"
)

func newTestStore(handler http.HandlerFunc) (*Store, *httptest.Server) {
	srv := httptest.NewServer(handler)
	store := New(Options{
		Owner:   "mvdberg",
		Repo:    "klusplan-data",
		Token:   "token",
		BaseURL: srv.URL,
		Client:  srv.Client(),
	})
	return store, srv
}

func TestStore_Read(t *testing.T) {
	// The API wraps base64 bodies across lines.
	encoded := base64.StdEncoding.EncodeToString([]byte(`[{"id":"TASK-001"}]`))
	wrapped := encoded[:8] + "\n" + encoded[8:] + "\n"

	store, srv := newTestStore(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/mvdberg/klusplan-data/contents/data/tasks.json", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]string{"content": wrapped, "sha": "abc123"})
	})
	defer srv.Close()

	doc, err := store.Read(context.Background(), "data/tasks.json")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"TASK-001"}]`, string(doc.Content))
	assert.Equal(t, "abc123", doc.Version)
}

func TestStore_Read_NotFound(t *testing.T) {
	store, srv := newTestStore(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "Not Found"})
	})
	defer srv.Close()

	_, err := store.Read(context.Background(), "data/tasks.json")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Write(t *testing.T) {
	store, srv := newTestStore(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Update tasks", body["message"])
		assert.Equal(t, "oldsha", body["sha"])
		raw, err := base64.StdEncoding.DecodeString(body["content"])
		require.NoError(t, err)
		assert.Equal(t, "[]", string(raw))
		json.NewEncoder(w).Encode(map[string]any{"content": map[string]string{"sha": "newsha"}})
	})
	defer srv.Close()

	version, err := store.Write(context.Background(), "data/tasks.json", "Update tasks", []byte("[]"), "oldsha")
	require.NoError(t, err)
	assert.Equal(t, "newsha", version)
}

func TestStore_Write_CreateOmitsSHA(t *testing.T) {
	store, srv := newTestStore(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, hasSHA := body["sha"]
		assert.False(t, hasSHA)
		json.NewEncoder(w).Encode(map[string]any{"content": map[string]string{"sha": "first"}})
	})
	defer srv.Close()

	version, err := store.Write(context.Background(), "data/tasks.json", "Update tasks", []byte("[]"), "")
	require.NoError(t, err)
	assert.Equal(t, "first", version)
}

func TestStore_Write_Conflict(t *testing.T) {
	for _, status := range []int{http.StatusConflict, http.StatusUnprocessableEntity} {
		store, srv := newTestStore(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]string{"message": "sha mismatch"})
		})
		_, err := store.Write(context.Background(), "data/tasks.json", "Update tasks", []byte("[]"), "stale")
		assert.ErrorIs(t, err, domain.ErrConflict, "status %d", status)
		srv.Close()
	}
}

func TestStore_Validate(t *testing.T) {
	store, srv := newTestStore(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/mvdberg/klusplan-data/contents/", r.URL.Path)
		w.Write([]byte("[]"))
	})
	defer srv.Close()
	assert.NoError(t, store.Validate(context.Background()))

	bad, badSrv := newTestStore(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	defer badSrv.Close()
	assert.Error(t, bad.Validate(context.Background()))
}
