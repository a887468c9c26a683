package controller

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"

	"securecam-site/service"
)

// multipartOverhead is the room left for form fields and boundaries on top of the file limit
const multipartOverhead = 64 << 10

// UploadController handles image uploads
type UploadController struct {
	service  service.UploadServiceInterface
	maxBytes int64
}

// NewUploadController creates a new UploadController
func NewUploadController(svc service.UploadServiceInterface, maxBytes int64) *UploadController {
	return &UploadController{
		service:  svc,
		maxBytes: maxBytes,
	}
}

// UploadImageResponse is the success body of POST /api/upload-image
type UploadImageResponse struct {
	OK bool `json:"ok"`
	service.UploadResult
}

func (c *UploadController) tooLarge(w http.ResponseWriter) {
	log.Printf("❌ UploadImage: payload exceeds %d bytes", c.maxBytes)
	writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", c.maxBytes), nil)
}

// UploadImage handles POST /api/upload-image
// Expects multipart/form-data with a "file" part and a "targetPath" field
func (c *UploadController) UploadImage(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 UploadImage: Received %s request", r.Method)

	if r.Method != http.MethodPost {
		MethodNotAllowed(w, r)
		return
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		writeError(w, http.StatusBadRequest, "Content-Type must be multipart/form-data", nil)
		return
	}

	// oversized payloads are refused before parsing
	limit := c.maxBytes + multipartOverhead
	if r.ContentLength > limit {
		c.tooLarge(w)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(c.maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.tooLarge(w)
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid multipart body: %v", err), nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	targetPath := strings.TrimSpace(r.FormValue("targetPath"))
	if targetPath == "" {
		writeError(w, http.StatusBadRequest, "Missing targetPath", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, c.maxBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to read file: %v", err), nil)
		return
	}

	mimeType := partMimeType(header.Header.Get("Content-Type"), data)
	log.Printf("📋 UploadImage: %s (%s, %d bytes) -> %s", header.Filename, mimeType, len(data), targetPath)

	result, err := c.service.Upload(r.Context(), service.UploadRequest{
		TargetPath: targetPath,
		MimeType:   mimeType,
		Data:       data,
	})
	if err != nil {
		writeServiceError(w, "UploadImage", err)
		return
	}

	log.Printf("✅ UploadImage: committed %s (%s)", result.Path, result.Commit)
	writeJSON(w, http.StatusOK, UploadImageResponse{OK: true, UploadResult: *result})
}

// partMimeType prefers the declared part type and sniffs the content otherwise
func partMimeType(declared string, data []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		if mediaType, _, err := mime.ParseMediaType(declared); err == nil {
			return mediaType
		}
	}
	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return sniffed
}
