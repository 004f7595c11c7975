package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"launchpad/internal/images"
)

// ImageHandler serves the /images routes.
type ImageHandler struct {
	svc *images.Service
}

func NewImageHandler(svc *images.Service) *ImageHandler {
	return &ImageHandler{svc: svc}
}

// Upload accepts a multipart "file" field and returns its image record
func (h *ImageHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file", "multipart field \"file\" is required")
		return
	}
	if fh.Size > h.svc.MaxSize() {
		badRequest(c, "file", fmt.Sprintf("file too large, maximum size: %.1fMB", float64(h.svc.MaxSize())/1024/1024))
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.svc.MaxSize()+1))
	if err != nil {
		respondError(c, err)
		return
	}

	img, err := h.svc.Upload(c.Request.Context(), images.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, img)
}

// Get streams the image stored under :uri
func (h *ImageHandler) Get(c *gin.Context) {
	img, rc, err := h.svc.Open(c.Request.Context(), c.Param("uri"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, img.Size, img.ContentType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", img.OriginalFilename),
		"Cache-Control":       "public, max-age=31536000, immutable",
	})
}
