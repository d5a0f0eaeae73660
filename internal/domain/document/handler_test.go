package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"staffdocs/internal/middleware"
	jwtsvc "staffdocs/internal/pkg/jwt"
)

type docResponse struct {
	Data Document `json:"data"`
}

type docListResponse struct {
	Data []Document `json:"data"`
}

type errResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func setupRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Document{}))

	blobs, err := NewBlobStore(t.TempDir())
	require.NoError(t, err)

	service := NewService(NewRepository(db), blobs, "http://localhost:8080", 1<<20)
	handler := NewHandler(service, 1<<20)

	j := jwtsvc.New("test-secret", time.Hour)
	token, err := j.GenerateToken("hr-portal", "service")
	require.NoError(t, err)

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(j))
	RegisterRoutes(v1, handler)

	return router, token
}

func multipartBody(t *testing.T, field string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := w.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func doUpload(t *testing.T, router *gin.Engine, token, path, field string, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, field, files)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func doRequest(router *gin.Engine, method, path, token string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestUploadRequiresAuth(t *testing.T) {
	router, _ := setupRouter(t)

	resp := doUpload(t, router, "", "/api/v1/owners/E100/documents/id-proof", "file",
		map[string]string{"p.pdf": "data"})
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestUploadAndDownloadFlow(t *testing.T) {
	router, token := setupRouter(t)

	resp := doUpload(t, router, token, "/api/v1/owners/E100/documents/id-proof", "file",
		map[string]string{"passport.pdf": "payload A"})
	require.Equal(t, http.StatusOK, resp.Code)

	var created docResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	require.Equal(t, "E100", created.Data.OwnerID)
	require.Equal(t, "ID-PROOF", created.Data.Category)
	require.Equal(t, "passport.pdf", created.Data.OriginalName)

	// replace with a second payload: same record id
	resp = doUpload(t, router, token, "/api/v1/owners/E100/documents/id-proof", "file",
		map[string]string{"passport-v2.pdf": "payload B"})
	require.Equal(t, http.StatusOK, resp.Code)

	var replaced docResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &replaced))
	require.Equal(t, created.Data.ID, replaced.Data.ID)

	dl := doRequest(router, http.MethodGet, "/api/v1/owners/E100/documents/id-proof/download", token, nil)
	require.Equal(t, http.StatusOK, dl.Code)
	require.Equal(t, "payload B", dl.Body.String())
	require.Contains(t, dl.Header().Get("Content-Disposition"), "passport-v2.pdf")

	raw := doRequest(router, http.MethodGet, "/api/v1/files/"+replaced.Data.StoredName, token, nil)
	require.Equal(t, http.StatusOK, raw.Code)
	require.Equal(t, "payload B", raw.Body.String())
}

func TestBatchUploadCreatesDistinctRecords(t *testing.T) {
	router, token := setupRouter(t)

	resp := doUpload(t, router, token, "/api/v1/owners/E200/documents/contract/batch", "files",
		map[string]string{"x.pdf": "X", "y.pdf": "Y", "z.pdf": "Z"})
	require.Equal(t, http.StatusCreated, resp.Code)

	var batch docListResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &batch))
	require.Len(t, batch.Data, 3)

	list := doRequest(router, http.MethodGet, "/api/v1/owners/E200/documents/contract", token, nil)
	require.Equal(t, http.StatusOK, list.Code)

	var listed docListResponse
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &listed))
	require.Len(t, listed.Data, 3)
}

func TestUploadRejectsMissingFile(t *testing.T) {
	router, token := setupRouter(t)

	resp := doRequest(router, http.MethodPost, "/api/v1/owners/E100/documents/id-proof", token, nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var payload errResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	require.Equal(t, "NO_FILE", payload.Error.Code)
}

func TestDeleteTwiceReturnsNotFound(t *testing.T) {
	router, token := setupRouter(t)

	resp := doUpload(t, router, token, "/api/v1/owners/E100/documents/id-proof", "file",
		map[string]string{"p.pdf": "data"})
	require.Equal(t, http.StatusOK, resp.Code)

	var created docResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	path := fmt.Sprintf("/api/v1/documents/%d", created.Data.ID)

	require.Equal(t, http.StatusNoContent, doRequest(router, http.MethodDelete, path, token, nil).Code)
	require.Equal(t, http.StatusNotFound, doRequest(router, http.MethodDelete, path, token, nil).Code)
	require.Equal(t, http.StatusNotFound, doRequest(router, http.MethodGet, path, token, nil).Code)
}

func TestDownloadUnknownStoredName(t *testing.T) {
	router, token := setupRouter(t)

	resp := doRequest(router, http.MethodGet, "/api/v1/files/no-such-blob.bin", token, nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestReplaceMetadataEndpoint(t *testing.T) {
	router, token := setupRouter(t)

	resp := doUpload(t, router, token, "/api/v1/owners/E100/documents/id-proof", "file",
		map[string]string{"p.pdf": "data"})
	require.Equal(t, http.StatusOK, resp.Code)

	var created docResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))

	m := created.Data
	m.OriginalName = "renamed.pdf"
	body, err := json.Marshal(Metadata{
		OwnerID:      m.OwnerID,
		Category:     m.Category,
		StoredName:   m.StoredName,
		OriginalName: m.OriginalName,
		MediaType:    m.MediaType,
		SizeBytes:    m.SizeBytes,
		DownloadRef:  m.DownloadRef,
	})
	require.NoError(t, err)

	put := doRequest(router, http.MethodPut,
		fmt.Sprintf("/api/v1/documents/%d", created.Data.ID), token, bytes.NewReader(body))
	require.Equal(t, http.StatusOK, put.Code)

	var updated docResponse
	require.NoError(t, json.Unmarshal(put.Body.Bytes(), &updated))
	require.Equal(t, "renamed.pdf", updated.Data.OriginalName)
}
