package documents

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docsearch-backend/internal/shared/auth"
	"docsearch-backend/internal/shared/server/middleware"
	"docsearch-backend/internal/shared/server/respond"
	"docsearch-backend/internal/shared/util"
)

const defaultMaxUploadBytes = 20 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	Gate           *auth.Gate
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, gate *auth.Gate, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{Svc: svc, Gate: gate, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	read := middleware.Require(h.Gate, auth.CapRead)

	rg.POST("/documents/upload", middleware.Require(h.Gate, auth.CapUpload), h.upload)
	rg.GET("/documents", read, h.list)
	rg.GET("/documents/:id", read, h.get)
	rg.GET("/documents/:id/file", read, h.file)
	rg.GET("/documents/:id/download", read, h.download)
	rg.DELETE("/documents/:id", middleware.Require(h.Gate, auth.CapDelete), h.delete)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "too_large", "file exceeds upload limit", gin.H{"limitBytes": tooLarge.Limit})
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	doc, err := h.Svc.Upload(c.Request.Context(), UploadInput{
		FileName: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		OwnerID:  c.PostForm("ownerId"),
		Data:     data,
	})
	if err != nil {
		WriteError(c, err, "failed to upload document")
		return
	}

	c.Set(middleware.DocumentIDKey, doc.ID)
	respond.OK(c, ToResponse(doc))
}

func (h *Handler) list(c *gin.Context) {
	var (
		docs []Document
		err  error
	)
	if owner := strings.TrimSpace(c.Query("ownerId")); owner != "" {
		docs, err = h.Svc.ListByOwner(c.Request.Context(), owner)
	} else {
		docs, err = h.Svc.List(c.Request.Context())
	}
	if err != nil {
		WriteError(c, err, "failed to list documents")
		return
	}
	respond.OK(c, ToResponses(docs))
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.DocumentIDKey, id)

	doc, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		WriteError(c, err, "failed to fetch document")
		return
	}
	respond.OK(c, ToResponse(doc))
}

func (h *Handler) file(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.DocumentIDKey, id)

	doc, data, err := h.Svc.OpenRaw(c.Request.Context(), id)
	if err != nil {
		WriteError(c, err, "failed to read document")
		return
	}
	contentType := doc.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", util.ContentDisposition("inline", doc.FileName, "document"))
	c.Data(http.StatusOK, contentType, data)
}

func (h *Handler) download(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.DocumentIDKey, id)

	doc, text, err := h.Svc.OpenText(c.Request.Context(), id)
	if err != nil {
		WriteError(c, err, "failed to read extracted text")
		return
	}
	c.Header("Content-Disposition", util.ContentDisposition("attachment", util.TextFileName(doc.FileName), "document.txt"))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.DocumentIDKey, id)

	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		WriteError(c, err, "failed to delete document")
		return
	}
	respond.NoContent(c)
}

// WriteError maps service errors onto the HTTP error envelope.
func WriteError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrOwnerNotFound):
		respond.Error(c, http.StatusBadRequest, "validation_error", "owner not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
