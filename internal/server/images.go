package server

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"

	"crimson-db/internal/media"

	"github.com/gin-gonic/gin"
)

// decodeImageData decodes a base64 image, with or without a data URL
// prefix. The MIME type defaults to image/jpeg.
func decodeImageData(data string) ([]byte, string, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, "", errors.New("no image data")
	}
	mimeType := "image/jpeg"
	parts := strings.SplitN(data, ",", 2)
	if len(parts) == 2 {
		meta := strings.TrimPrefix(parts[0], "data:")
		if kind, _, ok := strings.Cut(meta, ";"); ok && strings.HasPrefix(kind, "image/") {
			mimeType = kind
		}
		data = parts[1]
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, "", err
	}
	if len(decoded) == 0 {
		return nil, "", errors.New("no image data")
	}
	return decoded, mimeType, nil
}

// handleMedia streams an object from the media bucket.
func (s *Server) handleMedia(c *gin.Context) {
	if s.media == nil {
		writeMessage(c, http.StatusNotFound, "Not found")
		return
	}
	r, err := s.media.Reader(c.Request.Context(), c.Param("key"))
	if err != nil {
		switch {
		case errors.Is(err, media.ErrNotFound):
			writeMessage(c, http.StatusNotFound, "Not found")
		case errors.Is(err, media.ErrForbidden):
			writeMessage(c, http.StatusForbidden, "Permission denied")
		default:
			s.logger.ErrorContext(c.Request.Context(), "media read failed", "error", err)
			writeMessage(c, http.StatusInternalServerError, "Failed to read media")
		}
		return
	}
	defer r.Close()

	if contentType := r.ContentType(); contentType != "" {
		c.Header("Content-Type", contentType)
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, r); err != nil {
		s.logger.WarnContext(c.Request.Context(), "media copy interrupted", "error", err)
	}
}
