package service

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path"
	"strings"
	"time"

	"securecam-site/models"
	"securecam-site/utils"
)

// Upload limits
const (
	UploadPathPrefix    = "public/images/"
	MaxTargetPathLength = 200
)

var (
	allowedImageExtensions = []string{".png", ".jpg", ".jpeg", ".webp", ".gif"}
	allowedImageTypes      = map[string]bool{
		"image/png":  true,
		"image/jpeg": true,
		"image/webp": true,
		"image/gif":  true,
	}
)

// UploadRequest is one image to commit
type UploadRequest struct {
	TargetPath string
	MimeType   string
	Data       []byte
}

// UploadResult describes a committed image
type UploadResult struct {
	PublicURL string `json:"publicUrl"`
	Commit    string `json:"commit"`
	Path      string `json:"path"`
	MimeType  string `json:"mimeType"`
}

// UploadServiceInterface defines the contract for image uploads
type UploadServiceInterface interface {
	Upload(ctx context.Context, req UploadRequest) (*UploadResult, error)
}

// UploadService validates images and commits them under public/images/
type UploadService struct {
	settings      models.GitHubSettings
	apiBaseURL    string
	httpClient    *http.Client
	maxBytes      int64
	maxDimension  int
	publicBaseURL string
	now           func() time.Time
}

// NewUploadService creates a new UploadService
func NewUploadService(settings models.GitHubSettings, apiBaseURL string, httpClient *http.Client, maxBytes int64, maxDimension int, publicBaseURL string) *UploadService {
	return &UploadService{
		settings:      settings,
		apiBaseURL:    apiBaseURL,
		httpClient:    httpClient,
		maxBytes:      maxBytes,
		maxDimension:  maxDimension,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           time.Now,
	}
}

// Ensure UploadService implements UploadServiceInterface
var _ UploadServiceInterface = (*UploadService)(nil)

// MaxBytes is the payload ceiling
func (s *UploadService) MaxBytes() int64 {
	return s.maxBytes
}

// ValidateTargetPath checks a caller supplied repository path
func ValidateTargetPath(targetPath string) error {
	if !strings.HasPrefix(targetPath, UploadPathPrefix) {
		return models.NewValidationError("targetPath must start with %s", UploadPathPrefix)
	}
	if strings.Contains(targetPath, "\\") || hasParentSegment(targetPath) {
		return models.NewValidationError("targetPath must not contain parent directory segments")
	}
	if len(targetPath) > MaxTargetPathLength {
		return models.NewValidationError("targetPath exceeds %d characters", MaxTargetPathLength)
	}
	ext := strings.ToLower(path.Ext(targetPath))
	for _, allowed := range allowedImageExtensions {
		if ext == allowed {
			return nil
		}
	}
	return models.NewValidationError("targetPath must end with an image extension (%s)", strings.Join(allowedImageExtensions, ", "))
}

func hasParentSegment(p string) bool {
	for _, segment := range strings.Split(p, "/") {
		if segment == ".." {
			return true
		}
	}
	return false
}

// ValidateMimeType checks the uploaded file type against the allow-list
func ValidateMimeType(mimeType string) error {
	if !allowedImageTypes[mimeType] {
		return models.NewValidationError("unsupported image type: %s", mimeType)
	}
	return nil
}

// FinalPath places a timestamped, sanitized file name in the target directory
func FinalPath(targetPath string, at time.Time) string {
	return fmt.Sprintf("%s/%d-%s", path.Dir(targetPath), at.UnixMilli(), utils.SanitizeFileName(path.Base(targetPath)))
}

// Upload validates req and commits the image. Every validation runs before any network call.
func (s *UploadService) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	if err := ValidateTargetPath(req.TargetPath); err != nil {
		return nil, err
	}
	if err := ValidateMimeType(req.MimeType); err != nil {
		return nil, err
	}
	if len(req.Data) == 0 {
		return nil, models.NewValidationError("Missing file")
	}
	if s.maxBytes > 0 && int64(len(req.Data)) > s.maxBytes {
		return nil, &models.ValidationError{
			Message: fmt.Sprintf("file exceeds %d bytes", s.maxBytes),
			Status:  http.StatusRequestEntityTooLarge,
		}
	}
	if missing := missingGitHubSettings(s.settings); len(missing) > 0 {
		return nil, &models.ConfigError{Missing: missing}
	}

	data, resized, err := DownscaleImage(req.Data, req.MimeType, s.maxDimension)
	if err != nil {
		return nil, models.NewValidationError("invalid image: %v", err)
	}
	if resized {
		log.Printf("📸 UploadImage: downscaled %s from %d to %d bytes", req.TargetPath, len(req.Data), len(data))
	}

	finalPath := FinalPath(req.TargetPath, s.now())
	client := NewGitHubClient(s.settings, s.apiBaseURL, s.httpClient)
	result, err := client.WriteFile(ctx, finalPath, data, "Upload image "+path.Base(finalPath))
	if err != nil {
		return nil, err
	}

	return &UploadResult{
		PublicURL: s.publicBaseURL + utils.PublicURLPath(finalPath),
		Commit:    result.CommitSHA,
		Path:      finalPath,
		MimeType:  req.MimeType,
	}, nil
}
