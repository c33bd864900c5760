package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmtoolkit/pkg/auth"
	"pmtoolkit/pkg/llm"
	"pmtoolkit/pkg/prompts"
	"pmtoolkit/pkg/session"
	"pmtoolkit/pkg/store"
	"pmtoolkit/pkg/toolkit"
)

func newTestServer(t *testing.T, quality, fast *llm.StubClient) (*Server, string) {
	t.Helper()
	catalog, err := prompts.Load()
	require.NoError(t, err)

	st, err := store.Open(filepath.Join(t.TempDir(), "web.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	sessions := session.NewManager(64)
	authn := auth.New(st, sessions)
	require.NoError(t, authn.Register("pm@example.com", "hunter2"))

	tk := toolkit.New(catalog, llm.Engines{Fast: fast, Quality: quality}, st)
	srv := NewServer(":0", tk, authn)

	sess, err := authn.Login("pm@example.com", "hunter2")
	require.NoError(t, err)
	return srv, sess.Token
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestLoginAndHealth(t *testing.T) {
	srv, _ := newTestServer(t, llm.NewStubClient("quality"), llm.NewStubClient("fast"))

	rec := doJSON(t, srv, http.MethodPost, "/api/login", "", map[string]string{
		"email": "pm@example.com", "password": "hunter2",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Token string `json:"token"`
		Owner string `json:"owner"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "pm@example.com", resp.Owner)

	rec = doJSON(t, srv, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginBadCredentials(t *testing.T) {
	srv, _ := newTestServer(t, llm.NewStubClient("quality"), llm.NewStubClient("fast"))

	rec := doJSON(t, srv, http.MethodPost, "/api/login", "", map[string]string{
		"email": "pm@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestsWithoutSessionRejected(t *testing.T) {
	srv, _ := newTestServer(t, llm.NewStubClient("quality"), llm.NewStubClient("fast"))

	rec := doJSON(t, srv, http.MethodPost, "/api/prd/create", "", map[string]string{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/history", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPRDCreateEndpoint(t *testing.T) {
	quality := llm.NewStubClient("quality", "DRAFT0", "CRITIQUE0", "CRITIQUE1", "DRAFT2")
	fast := llm.NewStubClient("fast", "DRAFT1")
	srv, token := newTestServer(t, quality, fast)

	rec := doJSON(t, srv, http.MethodPost, "/api/prd/create", token, map[string]string{
		"product_name":        "Widget",
		"product_description": "a gadget for gardens",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var artifact toolkit.Artifact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &artifact))
	assert.Equal(t, "DRAFT2", artifact.Markdown)
	assert.Equal(t, 2, artifact.Rounds)
	assert.Equal(t, "Product_Requirements_Document.md", artifact.Filename)
	assert.True(t, artifact.Saved)
}

func TestPRDCreateValidationError(t *testing.T) {
	quality := llm.NewStubClient("quality")
	srv, token := newTestServer(t, quality, llm.NewStubClient("fast"))

	rec := doJSON(t, srv, http.MethodPost, "/api/prd/create", token, map[string]string{
		"product_name": "Widget",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "product_description")
	assert.Equal(t, 0, quality.Calls())
}

func TestEngineFailureMapsToBadGateway(t *testing.T) {
	quality := llm.NewStubClientWithErrors("quality", nil, []error{assert.AnError})
	srv, token := newTestServer(t, quality, llm.NewStubClient("fast"))

	rec := doJSON(t, srv, http.MethodPost, "/api/gtm", token, map[string]string{
		"document": "# PRD",
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestMethodChecks(t *testing.T) {
	srv, token := newTestServer(t, llm.NewStubClient("quality"), llm.NewStubClient("fast"))

	rec := doJSON(t, srv, http.MethodGet, "/api/prd/create", token, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/history", token, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/login", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestBrainstormAndHistoryEndpoints(t *testing.T) {
	quality := llm.NewStubClient("quality",
		"what about offline mode?",
		"DRAFT0", "CRITIQUE0", "FINAL",
	)
	srv, token := newTestServer(t, quality, llm.NewStubClient("fast"))

	rec := doJSON(t, srv, http.MethodPost, "/api/brainstorm", token, map[string]string{
		"input": "ideas for a gardening app",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var br struct {
		Reply string `json:"reply"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &br))
	assert.Equal(t, "what about offline mode?", br.Reply)

	rec = doJSON(t, srv, http.MethodPost, "/api/prd/improve", token, map[string]string{
		"document": "# Old PRD",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/history", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var h toolkit.History
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &h))
	assert.Len(t, h.Trail, 3)
	assert.Len(t, h.Artifacts, 1)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	srv, token := newTestServer(t, llm.NewStubClient("quality"), llm.NewStubClient("fast"))

	rec := doJSON(t, srv, http.MethodPost, "/api/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/history", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
