package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"securecam-site/models"
	"securecam-site/service"
	"securecam-site/sitedata"
)

// maxDocumentBytes bounds site document request bodies
const maxDocumentBytes = 5 << 20

// sseHeartbeat keeps idle event streams open through proxies
var sseHeartbeat = 25 * time.Second

// SiteDataController handles HTTP requests for the site document
type SiteDataController struct {
	store     *sitedata.Store
	service   service.SiteDataServiceInterface
	githubEnv models.GitHubSettings
}

// NewSiteDataController creates a new SiteDataController. githubEnv is the
// repository configuration from the environment, used as refresh fallback.
func NewSiteDataController(store *sitedata.Store, svc service.SiteDataServiceInterface, githubEnv models.GitHubSettings) *SiteDataController {
	return &SiteDataController{
		store:     store,
		service:   svc,
		githubEnv: githubEnv,
	}
}

// SaveSiteDataResponse is the success body of POST /api/save-site-data
type SaveSiteDataResponse struct {
	OK     bool   `json:"ok"`
	Path   string `json:"path"`
	Commit string `json:"commit"`
}

// SiteDataResponse carries the current document
type SiteDataResponse struct {
	OK       bool            `json:"ok"`
	Revision string          `json:"revision"`
	Data     json.RawMessage `json:"data"`
}

// RevisionResponse acknowledges an edit
type RevisionResponse struct {
	OK       bool   `json:"ok"`
	Revision string `json:"revision"`
}

func readDocumentBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &models.ValidationError{
				Message: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
				Status:  http.StatusRequestEntityTooLarge,
			}
		}
		return nil, models.NewValidationError("Failed to read request body: %v", err)
	}
	return body, nil
}

// SaveSiteData handles POST /api/save-site-data
// Commits the posted document to the configured repository and applies it locally
func (c *SiteDataController) SaveSiteData(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 SaveSiteData: Received %s request", r.Method)

	if r.Method != http.MethodPost {
		MethodNotAllowed(w, r)
		return
	}

	body, err := readDocumentBody(w, r)
	if err != nil {
		writeServiceError(w, "SaveSiteData", err)
		return
	}

	result, err := c.service.Save(r.Context(), body)
	if err != nil {
		writeServiceError(w, "SaveSiteData", err)
		return
	}

	// the commit already succeeded; a local failure is only logged
	if _, err := c.store.ReplaceJSON(r.Context(), body); err != nil {
		log.Printf("⚠️  SaveSiteData: committed but local copy not updated: %v", err)
	}

	writeJSON(w, http.StatusOK, SaveSiteDataResponse{OK: true, Path: result.Path, Commit: result.CommitSHA})
}

// GetSiteData handles GET /api/site-data
// The GitHub token is never served
func (c *SiteDataController) GetSiteData(w http.ResponseWriter, r *http.Request) {
	data, revision, err := c.store.SnapshotJSON()
	if err != nil {
		writeServiceError(w, "GetSiteData", err)
		return
	}
	w.Header().Set("ETag", `"`+revision+`"`)
	writeJSON(w, http.StatusOK, SiteDataResponse{OK: true, Revision: revision, Data: data})
}

// ReplaceSiteData handles PUT /api/site-data
func (c *SiteDataController) ReplaceSiteData(w http.ResponseWriter, r *http.Request) {
	body, err := readDocumentBody(w, r)
	if err != nil {
		writeServiceError(w, "ReplaceSiteData", err)
		return
	}
	if !sitedata.LooksValid(body) {
		writeError(w, http.StatusBadRequest, "Site data must be a JSON object with a branding section", nil)
		return
	}
	revision, err := c.store.ReplaceJSON(r.Context(), body)
	if err != nil {
		writeServiceError(w, "ReplaceSiteData", err)
		return
	}
	log.Printf("✅ ReplaceSiteData: revision %s", revision)
	writeJSON(w, http.StatusOK, RevisionResponse{OK: true, Revision: revision})
}

// PatchSection handles PATCH /api/site-data/{section}
// Merges the posted object into one top-level section
func (c *SiteDataController) PatchSection(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")

	body, err := readDocumentBody(w, r)
	if err != nil {
		writeServiceError(w, "PatchSection", err)
		return
	}

	revision, err := c.store.MergeSection(r.Context(), section, body)
	if err != nil {
		writeServiceError(w, "PatchSection", err)
		return
	}
	log.Printf("✅ PatchSection: %s updated, revision %s", section, revision)
	writeJSON(w, http.StatusOK, RevisionResponse{OK: true, Revision: revision})
}

// RefreshSiteData handles POST /api/site-data/refresh
// Re-runs the remote fetch on demand; unlike the startup hydrate, failures are reported
func (c *SiteDataController) RefreshSiteData(w http.ResponseWriter, r *http.Request) {
	revision, err := c.store.RefreshRemote(r.Context(), c.service, c.githubEnv)
	if errors.Is(err, sitedata.ErrRemoteNotConfigured) {
		writeError(w, http.StatusBadRequest, "GitHub settings are not configured", nil)
		return
	}
	if err != nil {
		writeServiceError(w, "RefreshSiteData", err)
		return
	}
	writeJSON(w, http.StatusOK, RevisionResponse{OK: true, Revision: revision})
}

// Events handles GET /api/site-data/events
// Streams change notifications as server-sent events until the client goes away
func (c *SiteDataController) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming unsupported", nil)
		return
	}

	events, cancel := c.store.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writeEvent(w, "ready", sitedata.Event{Revision: c.store.Revision(), Section: "*", At: time.Now().UTC()})
	flusher.Flush()

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			writeEvent(w, "change", ev)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}

func writeEvent(w io.Writer, name string, ev sitedata.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("❌ Events: Error encoding event: %v", err)
		return
	}
	fmt.Fprintf(w, "event: %s\nid: %s\ndata: %s\n\n", name, ev.Revision, data)
}
