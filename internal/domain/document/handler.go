package document

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"staffdocs/internal/pkg/response"
)

// Handler exposes the document store over HTTP. Owner ids arrive already
// authorized by the auth middleware upstream.
type Handler struct {
	service     *Service
	maxFileSize int64
}

func NewHandler(service *Service, maxFileSize int64) *Handler {
	return &Handler{service: service, maxFileSize: maxFileSize}
}

// Upload handles the create-or-replace single-file path.
func (h *Handler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "NO_FILE", "no file provided")
		return
	}
	if !h.checkSize(c, fh) {
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "BAD_FILE", "could not read uploaded file")
		return
	}
	defer f.Close()

	doc, err := h.service.Upload(c.Request.Context(), c.Param("ownerId"), c.Param("category"), UploadInput{
		Data:         f,
		OriginalName: fh.Filename,
		MediaType:    fh.Header.Get("Content-Type"),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, doc)
}

// UploadBatch handles the always-insert multi-file path.
func (h *Handler) UploadBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "NO_FILE", "no files provided")
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		response.Error(c, http.StatusBadRequest, "NO_FILE", "no files provided")
		return
	}

	inputs := make([]UploadInput, 0, len(headers))
	opened := make([]io.Closer, 0, len(headers))
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	for _, fh := range headers {
		if !h.checkSize(c, fh) {
			return
		}
		f, err := fh.Open()
		if err != nil {
			response.Error(c, http.StatusBadRequest, "BAD_FILE", "could not read uploaded file")
			return
		}
		opened = append(opened, f)
		inputs = append(inputs, UploadInput{
			Data:         f,
			OriginalName: fh.Filename,
			MediaType:    fh.Header.Get("Content-Type"),
		})
	}

	docs, err := h.service.UploadBatch(c.Request.Context(), c.Param("ownerId"), c.Param("category"), inputs)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, docs)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	doc, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, doc)
}

func (h *Handler) ListAll(c *gin.Context) {
	docs, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, docs)
}

func (h *Handler) ListByOwner(c *gin.Context) {
	docs, err := h.service.ListByOwner(c.Request.Context(), c.Param("ownerId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, docs)
}

func (h *Handler) ListByCategory(c *gin.Context) {
	docs, err := h.service.ListByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, docs)
}

func (h *Handler) ListByOwnerAndCategory(c *gin.Context) {
	docs, err := h.service.ListByOwnerAndCategory(c.Request.Context(), c.Param("ownerId"), c.Param("category"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, docs)
}

// DownloadByStoredName serves a blob addressed by its opaque stored name.
func (h *Handler) DownloadByStoredName(c *gin.Context) {
	dl, err := h.service.OpenByStoredName(c.Param("storedName"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.serve(c, dl)
}

func (h *Handler) DownloadByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	dl, err := h.service.OpenByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.serve(c, dl)
}

// DownloadByOwnerAndCategory serves the first match for the pair.
func (h *Handler) DownloadByOwnerAndCategory(c *gin.Context) {
	dl, err := h.service.OpenByOwnerAndCategory(c.Request.Context(), c.Param("ownerId"), c.Param("category"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.serve(c, dl)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReplaceMetadata is the metadata-only override. It never touches stored
// bytes and can desynchronize the record from them; operator use only.
func (h *Handler) ReplaceMetadata(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var m Metadata
	if err := c.ShouldBindJSON(&m); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}
	doc, err := h.service.ReplaceMetadata(c.Request.Context(), id, m)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, doc)
}

func (h *Handler) serve(c *gin.Context, dl *Download) {
	defer dl.Content.Close()
	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", dl.FileName),
	}
	c.DataFromReader(http.StatusOK, dl.Size, dl.ContentType, dl.Content, extraHeaders)
}

func (h *Handler) checkSize(c *gin.Context, fh *multipart.FileHeader) bool {
	if fh.Size == 0 {
		response.Error(c, http.StatusBadRequest, "EMPTY_FILE", ErrEmptyFile.Error())
		return false
	}
	if h.maxFileSize > 0 && fh.Size > h.maxFileSize {
		response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", ErrFileTooLarge.Error())
		return false
	}
	return true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrDocumentNotFound), errors.Is(err, ErrBlobNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, ErrBlobMissing):
		// consistency fault, not a client error
		response.Error(c, http.StatusInternalServerError, "STORAGE_INCONSISTENT", err.Error())
	case errors.Is(err, ErrEmptyFile):
		response.Error(c, http.StatusBadRequest, "EMPTY_FILE", err.Error())
	case errors.Is(err, ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", err.Error())
	case errors.Is(err, ErrPathEscape):
		response.Error(c, http.StatusBadRequest, "INVALID_NAME", err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "STORAGE_ERROR", "storage operation failed")
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid document id")
		return 0, false
	}
	return id, true
}
