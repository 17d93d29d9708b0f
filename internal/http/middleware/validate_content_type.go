package middleware

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/photo-transform/internal/models"
)

// RequireMultipart rejects uploads that are not multipart/form-data.
// File contents are validated by the handlers.
func RequireMultipart() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		mediaType, _, err := mime.ParseMediaType(ctx.GetHeader("Content-Type"))
		if err != nil || mediaType != "multipart/form-data" {
			ctx.AbortWithStatusJSON(http.StatusUnsupportedMediaType, models.APIResponse{
				Success: false,
				Error:   "Content-Type must be multipart/form-data",
			})
			return
		}

		ctx.Next()
	}
}
