package web

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"webforge/database"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiClient struct {
	t       *testing.T
	engine  *gin.Engine
	cookies []*http.Cookie
}

func newTestServer(t *testing.T) *apiClient {
	t.Helper()

	t.Setenv("WEBFORGE_SITES_ROOT", t.TempDir())
	t.Setenv("WEBFORGE_TEMPLATES_FOLDER", t.TempDir())
	t.Setenv("WEBFORGE_AVATARS_FOLDER", t.TempDir())
	t.Setenv("WEBFORGE_SESSION_SECRET", "test-secret")

	require.NoError(t, database.InitDB(filepath.Join(t.TempDir(), "test.db")))
	t.Cleanup(func() { _ = database.CloseDB() })

	s := NewServer()
	s.initServices()
	engine, err := s.initRouter()
	require.NoError(t, err)

	return &apiClient{t: t, engine: engine}
}

func (c *apiClient) do(method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	c.t.Helper()

	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	c.engine.ServeHTTP(w, req)

	// Keep the latest cookie per name, like a browser jar would.
	for _, fresh := range w.Result().Cookies() {
		replaced := false
		for i, existing := range c.cookies {
			if existing.Name == fresh.Name {
				c.cookies[i] = fresh
				replaced = true
			}
		}
		if !replaced {
			c.cookies = append(c.cookies, fresh)
		}
	}
	return w
}

func (c *apiClient) postJSON(path string, payload map[string]any) *httptest.ResponseRecorder {
	c.t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(c.t, err)
	return c.do(http.MethodPost, path, bytes.NewBuffer(data), "application/json")
}

func decodeObj(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Success bool           `json:"success"`
		Msg     string         `json:"msg"`
		Obj     map[string]any `json:"obj"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	return envelope.Obj
}

func zipArchive(t *testing.T, files map[string]string) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf
}

// uploadScript posts a multipart template upload with an explicit part
// content type; an empty contentType leaves the part header out entirely.
func uploadScript(t *testing.T, client *apiClient, fileName, contentType string, content io.Reader) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, fileName))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := form.CreatePart(header)
	require.NoError(t, err)
	_, err = io.Copy(part, content)
	require.NoError(t, err)
	require.NoError(t, form.WriteField("name", "tpl-"+fileName))
	require.NoError(t, form.Close())

	return client.do(http.MethodPost, "/api/scripts/upload", body, form.FormDataContentType())
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestScriptUploadGuards(t *testing.T) {
	client := newTestServer(t)

	w := client.postJSON("/api/register", map[string]any{
		"username": "alice",
		"email":    "alice@x.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	archive := zipArchive(t, map[string]string{"index.html": "<html></html>"})

	// A non-archive declared type is rejected.
	w = uploadScript(t, client, "basic.zip", "text/plain", bytes.NewReader(archive.Bytes()))
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	// A part without any content type does not slip past the gate.
	w = uploadScript(t, client, "basic.zip", "", bytes.NewReader(archive.Bytes()))
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	// Over the 50MB cap.
	w = uploadScript(t, client, "big.zip", "application/zip", io.LimitReader(zeroReader{}, 50<<20+1))
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "50MB")

	// A well-formed upload still goes through.
	w = uploadScript(t, client, "good.zip", "application/zip", bytes.NewReader(archive.Bytes()))
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestProvisioningEndToEnd(t *testing.T) {
	client := newTestServer(t)

	// Register alice; the session cookie carries through all later calls.
	w := client.postJSON("/api/register", map[string]any{
		"username": "alice",
		"email":    "alice@x.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Create the website.
	w = client.postJSON("/api/websites", map[string]any{
		"name":      "Alice Site",
		"subdomain": "alice-site",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	website := decodeObj(t, w)
	websiteId := int(website["id"].(float64))
	assert.Equal(t, "alice-site", website["subdomain"])

	// One website per account.
	w = client.postJSON("/api/websites", map[string]any{
		"name":      "Second",
		"subdomain": "alice-two",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Upload the "basic" template archive.
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	part, err := form.CreateFormFile("file", "basic.zip")
	require.NoError(t, err)
	_, err = part.Write(zipArchive(t, map[string]string{"index.html": "<html></html>"}).Bytes())
	require.NoError(t, err)
	require.NoError(t, form.WriteField("name", "basic"))
	require.NoError(t, form.Close())

	w = client.do(http.MethodPost, "/api/scripts/upload", body, form.FormDataContentType())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// The catalog reports the backing file as present.
	w = client.do(http.MethodGet, "/api/scripts", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"fileExists":true`)

	// Deploy it.
	w = client.postJSON("/api/websites/"+strconv.Itoa(websiteId)+"/change-script", map[string]any{
		"scriptName": "basic.zip",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decodeObj(t, w)
	deployed := result["website"].(map[string]any)
	assert.Equal(t, "basic.zip", deployed["currentScript"])
	assert.Equal(t, "/sites/1-alice-site/", result["url"])

	// The subtree now contains the extracted file.
	w = client.do(http.MethodGet, "/api/websites/"+strconv.Itoa(websiteId)+"/files", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "index.html")

	// Audit entries, newest first.
	w = client.do(http.MethodGet, "/api/websites/"+strconv.Itoa(websiteId)+"/logs", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	logsBody := w.Body.String()
	assert.Less(t, strings.Index(logsBody, "script_changed"), strings.Index(logsBody, `"created"`))

	// Missing template leaves everything untouched.
	w = client.postJSON("/api/websites/"+strconv.Itoa(websiteId)+"/change-script", map[string]any{
		"scriptName": "ghost.zip",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Delete, then the website is gone.
	w = client.do(http.MethodDelete, "/api/websites/"+strconv.Itoa(websiteId), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	w = client.do(http.MethodGet, "/api/websites/"+strconv.Itoa(websiteId), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthRequired(t *testing.T) {
	client := newTestServer(t)

	w := client.do(http.MethodGet, "/api/websites", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = client.postJSON("/api/login", map[string]any{
		"username": "ghost",
		"password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPatchStripsProtectedFields(t *testing.T) {
	client := newTestServer(t)

	w := client.postJSON("/api/register", map[string]any{
		"username": "alice",
		"email":    "alice@x.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = client.postJSON("/api/websites", map[string]any{
		"name":      "Alice Site",
		"subdomain": "alice-site",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	websiteId := int(decodeObj(t, w)["id"].(float64))

	data, err := json.Marshal(map[string]any{
		"name":      "Renamed",
		"subdomain": "hijacked",
		"userId":    999,
	})
	require.NoError(t, err)
	w = client.do(http.MethodPatch, "/api/websites/"+strconv.Itoa(websiteId), bytes.NewBuffer(data), "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	updated := decodeObj(t, w)
	assert.Equal(t, "Renamed", updated["name"])
	assert.Equal(t, "alice-site", updated["subdomain"], "subdomain is immutable")
	assert.Equal(t, float64(1), updated["userId"], "ownership can not be reassigned")
}

