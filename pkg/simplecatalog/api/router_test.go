package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/jwtauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-catalog/pkg/simplecatalog"
	"github.com/tendant/simple-catalog/pkg/simplecatalog/api"
	"github.com/tendant/simple-catalog/pkg/simplecatalog/repo/memory"
	memorystorage "github.com/tendant/simple-catalog/pkg/simplecatalog/storage/memory"
)

func newRouterServer(t *testing.T, adminSecret string) *httptest.Server {
	t.Helper()

	repo := memory.New()
	svc, err := simplecatalog.New(
		simplecatalog.WithRepository(repo),
		simplecatalog.WithBlobStore(simplecatalog.NamespaceFiles, memorystorage.New()),
		simplecatalog.WithBlobStore(simplecatalog.NamespaceImages, memorystorage.New(memorystorage.WithURLPrefix("/products"))),
	)
	require.NoError(t, err)

	qs, err := simplecatalog.NewQueryService(simplecatalog.WithRepository(repo))
	require.NoError(t, err)

	server := httptest.NewServer(api.NewRouter(svc, qs, adminSecret))
	t.Cleanup(server.Close)
	return server
}

func TestRouterHealth(t *testing.T) {
	server := newRouterServer(t, "")

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouterCatalogIsPublic(t *testing.T) {
	server := newRouterServer(t, "sekrit")

	resp, err := http.Get(server.URL + "/api/catalog/availability-counts")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouterAdminRequiresToken(t *testing.T) {
	server := newRouterServer(t, "sekrit")

	body, contentType := productForm(t)
	resp, err := http.Post(server.URL+"/admin/products/", contentType, body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouterAdminWithToken(t *testing.T) {
	server := newRouterServer(t, "sekrit")

	tokenAuth := jwtauth.New("HS256", []byte("sekrit"), nil)
	_, tokenString, err := tokenAuth.Encode(map[string]interface{}{"sub": "tester"})
	require.NoError(t, err)

	body, contentType := productForm(t)
	req, err := http.NewRequest(http.MethodPost, server.URL+"/admin/products/", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+tokenString)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestRouterAdminRejectsWrongKey(t *testing.T) {
	server := newRouterServer(t, "sekrit")

	tokenAuth := jwtauth.New("HS256", []byte("wrong"), nil)
	_, tokenString, err := tokenAuth.Encode(map[string]interface{}{"sub": "tester"})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/admin/products/"+"00000000-0000-0000-0000-000000000000", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tokenString)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouterAdminOpenWithoutSecret(t *testing.T) {
	server := newRouterServer(t, "")

	body, contentType := productForm(t)
	resp, err := http.Post(server.URL+"/admin/products/", contentType, body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}
