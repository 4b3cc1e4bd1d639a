package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"crimson-db/internal/catalog"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleGetAccount(c *gin.Context) {
	profile, err := s.accounts.Profile(c.Request.Context(), principalFrom(c))
	if err != nil {
		writeError(c, s, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) handleUpdateAccount(c *gin.Context) {
	patch, ok := bindPatch(c)
	if !ok {
		return
	}
	profile, err := s.accounts.UpdateProfile(c.Request.Context(), principalFrom(c), patch)
	if err != nil {
		writeError(c, s, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

type pictureRequest struct {
	Image    string `json:"image"`
	Filename string `json:"filename"`
}

// handleUploadPicture takes either a multipart "file" part or a JSON body
// carrying a base64 data URL.
func (s *Server) handleUploadPicture(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)
	ctx := c.Request.Context()
	principal := principalFrom(c)

	var (
		filename    string
		contentType string
		body        io.Reader
	)
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var req pictureRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeMessage(c, http.StatusBadRequest, "No file provided.")
			return
		}
		image, mimeType, err := decodeImageData(req.Image)
		if err != nil {
			writeMessage(c, http.StatusBadRequest, "No file provided.")
			return
		}
		filename, contentType, body = req.Filename, mimeType, bytes.NewReader(image)
	} else {
		header, err := c.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeMessage(c, http.StatusRequestEntityTooLarge, "File too large.")
				return
			}
			writeMessage(c, http.StatusBadRequest, "No file provided.")
			return
		}
		file, err := header.Open()
		if err != nil {
			writeError(c, s, &catalog.Error{Kind: catalog.InternalError, Message: "Failed to read upload.", Err: err})
			return
		}
		defer file.Close()
		filename, contentType, body = header.Filename, header.Header.Get("Content-Type"), file
	}

	profile, err := s.accounts.SetProfilePicture(ctx, principal, filename, contentType, body)
	if err != nil {
		writeError(c, s, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
