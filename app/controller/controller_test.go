package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"securecam-site/models"
	"securecam-site/repository"
	"securecam-site/service"
	"securecam-site/sitedata"
)

func newTestStore(t *testing.T) *sitedata.Store {
	t.Helper()
	repo, err := repository.NewFileSiteDataRepository(filepath.Join(t.TempDir(), "site_data.json"))
	require.NoError(t, err)
	return sitedata.NewStore(repo, sitedata.Defaults())
}

type fakeSiteDataService struct {
	saved  []byte
	err    error
	remote []byte
}

func (f *fakeSiteDataService) Save(_ context.Context, raw []byte) (*service.WriteResult, error) {
	f.saved = raw
	if f.err != nil {
		return nil, f.err
	}
	return &service.WriteResult{Path: "site_data.json", CommitSHA: "c0ffee"}, nil
}

func (f *fakeSiteDataService) FetchRemote(context.Context, models.GitHubSettings) ([]byte, error) {
	if f.remote == nil {
		return nil, &models.UpstreamError{Service: "github", Stage: "get", StatusCode: http.StatusBadGateway}
	}
	return f.remote, nil
}

type fakeUploadService struct {
	got *service.UploadRequest
	err error
}

func (f *fakeUploadService) Upload(_ context.Context, req service.UploadRequest) (*service.UploadResult, error) {
	f.got = &req
	if f.err != nil {
		return nil, f.err
	}
	return &service.UploadResult{
		PublicURL: "/images/1-cam.png",
		Commit:    "c0ffee",
		Path:      "public/images/1-cam.png",
		MimeType:  req.MimeType,
	}, nil
}

type fakeChatService struct {
	reply string
	err   error
}

func (f *fakeChatService) Reply(context.Context, models.ChatRequest) (string, error) {
	return f.reply, f.err
}

type fakeCatalogService struct{}

func (fakeCatalogService) RenderCatalogHTML(doc models.SiteData, includeInactive bool) (string, error) {
	return "<h1>" + doc.Branding.SiteName + "</h1>", nil
}

func (fakeCatalogService) RenderQuoteHTML(doc models.SiteData, cart models.Cart, customer string, system models.SystemType) (string, error) {
	return "<p>quote for " + customer + "</p>", nil
}

func (fakeCatalogService) GeneratePDF(context.Context, string) ([]byte, error) {
	return []byte("%PDF-1.4"), nil
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
