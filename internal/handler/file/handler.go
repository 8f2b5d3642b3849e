package file

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/service/upload"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

const formField = "file"

type UploadServicer interface {
	Upload(ctx context.Context, f upload.File) (*upload.Uploaded, error)
	Presign(ctx context.Context, name, contentType string) (*upload.Presigned, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}

type Handler struct {
	service UploadServicer
}

func NewHandler(service UploadServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	files := r.Group("/files")
	{
		files.POST("", h.Upload)
		files.GET("", h.List)
		files.DELETE("", h.Delete)
		files.POST("/presign", h.Presign)
	}
}

type presignRequest struct {
	FileName string `json:"file_name" binding:"required,max=255"`
	FileType string `json:"file_type" binding:"required"`
}

func (h *Handler) Upload(c *gin.Context) {
	header, err := c.FormFile(formField)
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("file is required", err))
		return
	}

	body, err := header.Open()
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("failed to read file", err))
		return
	}
	defer body.Close()

	res, err := h.service.Upload(c.Request.Context(), upload.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        body,
	})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, res)
}

func (h *Handler) Presign(c *gin.Context) {
	var req presignRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	res, err := h.service.Presign(c.Request.Context(), req.FileName, req.FileType)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, res)
}

func (h *Handler) List(c *gin.Context) {
	keys, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"files": keys})
}

func (h *Handler) Delete(c *gin.Context) {
	name := c.Query("fileName")
	if name == "" {
		httputil.RespondWithError(c, apperrors.BadRequest("fileName is required", nil))
		return
	}

	if err := h.service.Delete(c.Request.Context(), name); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
