package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// BackupServiceInterface defines the contract for site document snapshots
type BackupServiceInterface interface {
	Backup(ctx context.Context, name string, content []byte) error
	ListBackups(ctx context.Context) ([]BackupEntry, error)
}

// BackupEntry is one stored snapshot
type BackupEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CreatedTime string `json:"createdTime"`
	Size        int64  `json:"size"`
}

// DriveBackupService keeps timestamped copies of the site document in a Google Drive folder
type DriveBackupService struct {
	client   *drive.Service
	folderID string
}

// NewDriveBackupService creates a new DriveBackupService.
// credentialsPath should be the path to the Service Account JSON file.
func NewDriveBackupService(ctx context.Context, credentialsPath, folderID string, opts ...option.ClientOption) (*DriveBackupService, error) {
	if folderID == "" {
		return nil, fmt.Errorf("backup folder id is required")
	}
	if credentialsPath != "" {
		opts = append([]option.ClientOption{option.WithCredentialsFile(credentialsPath)}, opts...)
	}

	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &DriveBackupService{client: driveService, folderID: folderID}, nil
}

// Ensure DriveBackupService implements BackupServiceInterface
var _ BackupServiceInterface = (*DriveBackupService)(nil)

// Backup uploads content as a new JSON file in the backup folder
func (s *DriveBackupService) Backup(ctx context.Context, name string, content []byte) error {
	file := &drive.File{
		Name:     name,
		Parents:  []string{s.folderID},
		MimeType: "application/json",
	}
	created, err := s.client.Files.Create(file).
		Media(bytes.NewReader(content)).
		Fields("id, name").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to upload backup %s: %w", name, err)
	}
	log.Printf("☁️  Backup: stored %s as drive file %s", created.Name, created.Id)
	return nil
}

// ListBackups lists the JSON snapshots in the backup folder, newest first
func (s *DriveBackupService) ListBackups(ctx context.Context) ([]BackupEntry, error) {
	query := fmt.Sprintf("'%s' in parents and trashed=false and mimeType='application/json'", strings.ReplaceAll(s.folderID, "'", "\\'"))

	var entries []BackupEntry
	pageToken := ""
	for {
		call := s.client.Files.List().
			Q(query).
			OrderBy("createdTime desc").
			Fields("nextPageToken, files(id, name, createdTime, size)").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		r, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list backups: %w", err)
		}
		for _, f := range r.Files {
			entries = append(entries, BackupEntry{ID: f.Id, Name: f.Name, CreatedTime: f.CreatedTime, Size: f.Size})
		}

		pageToken = r.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return entries, nil
}
