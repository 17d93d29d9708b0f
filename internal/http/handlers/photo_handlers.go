package handlers

import (
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/photo-transform/internal/models"
	"github.com/phambaophuc/photo-transform/internal/services/photo"
	"github.com/phambaophuc/photo-transform/internal/services/processor"
	"github.com/phambaophuc/photo-transform/pkg/utils"
)

type uploadPhotoForm struct {
	Owner       string `form:"owner"`
	Description string `form:"description"`
	Hashtags    string `form:"hashtags"`
	Format      string `form:"format"`
	Width       int    `form:"width" binding:"omitempty,min=0,max=10000"`
	Height      int    `form:"height" binding:"omitempty,min=0,max=10000"`
}

func (h *ImageHandler) UploadPhoto(c *gin.Context) {
	raw, header, err := h.readUploadedFile(c, imageParamKey)
	if err != nil {
		h.respondServiceError(c, err, "Failed to read image")
		return
	}

	var form uploadPhotoForm
	if err := c.ShouldBind(&form); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid upload parameters: "+err.Error())
		return
	}

	uploaded, err := h.photos.Upload(c.Request.Context(), photo.UploadInput{
		Owner:       form.Owner,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        raw,
		Description: form.Description,
		Hashtags:    form.Hashtags,
		Format:      form.Format,
		Width:       form.Width,
		Height:      form.Height,
	})
	if err != nil {
		h.respondServiceError(c, err, "Failed to upload photo")
		return
	}

	c.JSON(http.StatusCreated, models.APIResponse{
		Success: true,
		Data:    uploaded,
	})
}

// ViewPhoto serves a stored photo, transformed according to the query string.
func (h *ImageHandler) ViewPhoto(c *gin.Context) {
	key := photoKey(c)
	if key == "" {
		h.respondError(c, http.StatusBadRequest, "Photo key is required")
		return
	}

	var req models.TransformRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid transform parameters: "+err.Error())
		return
	}
	req = req.WithoutOriginalFormat()

	data, contentType, err := h.photos.View(c.Request.Context(), key, req)
	if err != nil {
		h.respondServiceError(c, err, "Failed to load photo")
		return
	}

	filename := path.Base(key)
	if !req.IsEmpty() {
		filename = utils.ReplaceExtension(filename, processor.NormalizeFormat(req.Format))
	}

	disposition := "inline"
	if download, _ := strconv.ParseBool(c.Query("download")); download {
		disposition = "attachment"
	}

	c.Header("Content-Disposition", contentDisposition(disposition, filename))
	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", maxCacheAge))
	c.Data(http.StatusOK, contentType, data)
}

func (h *ImageHandler) GetPhotoDimensions(c *gin.Context) {
	key := photoKey(c)
	if key == "" {
		h.respondError(c, http.StatusBadRequest, "Photo key is required")
		return
	}

	dims, err := h.photos.Dimensions(c.Request.Context(), key)
	if err != nil {
		h.respondServiceError(c, err, "Failed to read dimensions")
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    dims,
	})
}

func (h *ImageHandler) DeletePhoto(c *gin.Context) {
	key := photoKey(c)
	if key == "" {
		h.respondError(c, http.StatusBadRequest, "Photo key is required")
		return
	}

	if err := h.photos.Delete(c.Request.Context(), key); err != nil {
		h.respondServiceError(c, err, "Failed to delete photo")
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    gin.H{"key": key},
	})
}

func photoKey(c *gin.Context) string {
	return strings.Trim(c.Param("key"), "/")
}
