package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-catalog/pkg/simplecatalog"
	"github.com/tendant/simple-catalog/pkg/simplecatalog/api"
	"github.com/tendant/simple-catalog/pkg/simplecatalog/repo/memory"
	memorystorage "github.com/tendant/simple-catalog/pkg/simplecatalog/storage/memory"
)

func newAdminServer(t *testing.T) *httptest.Server {
	t.Helper()

	svc, err := simplecatalog.New(
		simplecatalog.WithRepository(memory.New()),
		simplecatalog.WithBlobStore(simplecatalog.NamespaceFiles, memorystorage.New()),
		simplecatalog.WithBlobStore(simplecatalog.NamespaceImages, memorystorage.New(memorystorage.WithURLPrefix("/products"))),
	)
	require.NoError(t, err)

	server := httptest.NewServer(api.NewAdminHandler(svc).Routes())
	t.Cleanup(server.Close)
	return server
}

type formField struct {
	name  string
	value string
}

type formFile struct {
	field       string
	fileName    string
	contentType string
	data        string
}

func multipartBody(t *testing.T, fields []formField, files []formFile) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, f := range fields {
		require.NoError(t, writer.WriteField(f.name, f.value))
	}
	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.fileName))
		header.Set("Content-Type", f.contentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.data))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func productForm(t *testing.T) (*bytes.Buffer, string) {
	return multipartBody(t,
		[]formField{
			{"name", "Icon Pack"},
			{"description", "200 vector icons"},
			{"price_cents", "1999"},
		},
		[]formFile{
			{"file", "icons.zip", "application/zip", "zip-bytes"},
			{"image", "preview.png", "image/png", "png-bytes"},
		},
	)
}

func createProduct(t *testing.T, server *httptest.Server) simplecatalog.Product {
	t.Helper()

	body, contentType := productForm(t)
	resp, err := http.Post(server.URL+"/", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var product simplecatalog.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&product))
	return product
}

func doRequest(t *testing.T, method, url string, body io.Reader, contentType string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestCreateProductEndpoint(t *testing.T) {
	server := newAdminServer(t)

	product := createProduct(t, server)
	assert.NotEqual(t, uuid.Nil, product.ID)
	assert.Equal(t, "Icon Pack", product.Name)
	assert.Equal(t, int64(1999), product.PriceCents)
	assert.False(t, product.Available)
}

func TestCreateProductValidationErrors(t *testing.T) {
	server := newAdminServer(t)

	body, contentType := multipartBody(t,
		[]formField{{"price_cents", "1999"}},
		[]formFile{
			{"file", "icons.zip", "application/zip", "zip-bytes"},
			{"image", "preview.png", "image/png", "png-bytes"},
		},
	)
	resp, err := http.Post(server.URL+"/", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var errs map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errs))
	assert.Contains(t, errs["name"], "Required")
	assert.Contains(t, errs["description"], "Required")
}

func TestCreateProductBadPrice(t *testing.T) {
	server := newAdminServer(t)

	body, contentType := multipartBody(t,
		[]formField{
			{"name", "Icon Pack"},
			{"description", "200 vector icons"},
			{"price_cents", "not-a-number"},
		},
		[]formFile{
			{"file", "icons.zip", "application/zip", "zip-bytes"},
			{"image", "preview.png", "image/png", "png-bytes"},
		},
	)
	resp, err := http.Post(server.URL+"/", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var errs map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errs))
	assert.Equal(t, []string{"Expected number"}, errs["price_cents"])
}

func TestCreateProductBadPriceReportsOtherFields(t *testing.T) {
	server := newAdminServer(t)

	// A non-numeric price must not mask the other failing fields.
	body, contentType := multipartBody(t,
		[]formField{{"price_cents", "not-a-number"}},
		[]formFile{
			{"image", "preview.png", "image/png", "png-bytes"},
		},
	)
	resp, err := http.Post(server.URL+"/", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var errs map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errs))
	assert.Equal(t, []string{"Expected number"}, errs["price_cents"])
	assert.Contains(t, errs["name"], "Required")
	assert.Contains(t, errs["description"], "Required")
	assert.Contains(t, errs["file"], "Required")
}

func TestUpdateProductBadPriceReportsOtherFields(t *testing.T) {
	server := newAdminServer(t)
	created := createProduct(t, server)

	body, contentType := multipartBody(t,
		[]formField{{"price_cents", "not-a-number"}},
		nil,
	)
	resp := doRequest(t, http.MethodPut, server.URL+"/"+created.ID.String(), body, contentType)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var errs map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errs))
	assert.Equal(t, []string{"Expected number"}, errs["price_cents"])
	assert.Contains(t, errs["name"], "Required")
	assert.Contains(t, errs["description"], "Required")
}

func TestGetProductEndpoint(t *testing.T) {
	server := newAdminServer(t)
	created := createProduct(t, server)

	resp, err := http.Get(server.URL + "/" + created.ID.String())
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var product simplecatalog.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&product))
	assert.Equal(t, created.ID, product.ID)

	resp, err = http.Get(server.URL + "/" + uuid.NewString())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(server.URL + "/not-a-uuid")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateProductEndpoint(t *testing.T) {
	server := newAdminServer(t)
	created := createProduct(t, server)

	body, contentType := multipartBody(t,
		[]formField{
			{"name", "Icon Pack v2"},
			{"description", "220 vector icons"},
			{"price_cents", "2499"},
		},
		[]formFile{
			{"file", "icons-v2.zip", "application/zip", "zip-bytes-v2"},
		},
	)
	resp := doRequest(t, http.MethodPut, server.URL+"/"+created.ID.String(), body, contentType)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated simplecatalog.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	assert.Equal(t, "Icon Pack v2", updated.Name)
	assert.NotEqual(t, created.FileKey, updated.FileKey)
	assert.Equal(t, created.ImageKey, updated.ImageKey)
	assert.False(t, updated.Available)
}

func TestDeleteProductEndpoint(t *testing.T) {
	server := newAdminServer(t)
	created := createProduct(t, server)

	resp := doRequest(t, http.MethodDelete, server.URL+"/"+created.ID.String(), nil, "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, created.ID.String(), body["id"])

	resp, err := http.Get(server.URL + "/" + created.ID.String())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSetAvailabilityEndpoint(t *testing.T) {
	server := newAdminServer(t)
	created := createProduct(t, server)

	form := url.Values{"available": {"true"}}
	resp := doRequest(t, http.MethodPut, server.URL+"/"+created.ID.String()+"/availability",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err := http.Get(server.URL + "/" + created.ID.String())
	require.NoError(t, err)
	defer resp.Body.Close()

	var product simplecatalog.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&product))
	assert.True(t, product.Available)
}

func TestSetAvailabilityBadValue(t *testing.T) {
	server := newAdminServer(t)
	created := createProduct(t, server)

	form := url.Values{"available": {"maybe"}}
	resp := doRequest(t, http.MethodPut, server.URL+"/"+created.ID.String()+"/availability",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDownloadFileEndpoint(t *testing.T) {
	server := newAdminServer(t)
	created := createProduct(t, server)

	resp, err := http.Get(server.URL + "/" + created.ID.String() + "/file")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "zip-bytes", string(data))
}
