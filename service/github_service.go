package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"securecam-site/models"
)

const (
	defaultGitHubAPIURL = "https://api.github.com"
	maxUpstreamBody     = 64 << 10
)

// GitHubClientInterface defines the contract for the repository file store
type GitHubClientInterface interface {
	GetFile(ctx context.Context, path string) (*RepoFile, error)
	PutFile(ctx context.Context, path string, content []byte, message, sha string) (*WriteResult, error)
	WriteFile(ctx context.Context, path string, content []byte, message string) (*WriteResult, error)
}

// RepoFile is a file read through the Contents API. Found is false on 404.
type RepoFile struct {
	Found   bool
	SHA     string
	Content []byte
}

// WriteResult describes a committed file
type WriteResult struct {
	Path       string `json:"path"`
	ContentSHA string `json:"contentSha"`
	CommitSHA  string `json:"commit"`
	HTMLURL    string `json:"htmlUrl,omitempty"`
}

// GitHubClient stores files in a repository through the Contents API
// (read the current sha, then write referencing it)
type GitHubClient struct {
	token      string
	owner      string
	repo       string
	branch     string
	apiBaseURL string
	httpClient *http.Client
}

// NewGitHubClient creates a client for the repository in settings.
// An empty apiBaseURL means api.github.com; a nil httpClient gets a 30s timeout client.
func NewGitHubClient(settings models.GitHubSettings, apiBaseURL string, httpClient *http.Client) *GitHubClient {
	if apiBaseURL == "" {
		apiBaseURL = defaultGitHubAPIURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	branch := settings.Branch
	if branch == "" {
		branch = "main"
	}
	return &GitHubClient{
		token:      settings.Token,
		owner:      settings.Owner,
		repo:       settings.Repo,
		branch:     branch,
		apiBaseURL: strings.TrimRight(apiBaseURL, "/"),
		httpClient: httpClient,
	}
}

// Ensure GitHubClient implements GitHubClientInterface
var _ GitHubClientInterface = (*GitHubClient)(nil)

func (c *GitHubClient) contentsURL(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		c.apiBaseURL, url.PathEscape(c.owner), url.PathEscape(c.repo), strings.Join(segments, "/"))
}

func (c *GitHubClient) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", "securecam-site")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

type contentsResponse struct {
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// GetFile reads path at the configured branch. A 404 is not an error: it
// returns Found=false. Any other non-2xx status is an UpstreamError.
func (c *GitHubClient) GetFile(ctx context.Context, path string) (*RepoFile, error) {
	target := c.contentsURL(path) + "?ref=" + url.QueryEscape(c.branch)
	req, err := c.newRequest(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build github get request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github get %s: %w", path, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return &RepoFile{Found: false}, nil
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, upstreamError("github", "get", res)
	}

	var payload contentsResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode github get response: %w", err)
	}

	file := &RepoFile{Found: true, SHA: payload.SHA}
	if payload.Encoding == "base64" {
		// GitHub wraps base64 content at 60 columns
		decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(payload.Content, "\n", ""))
		if err != nil {
			return nil, fmt.Errorf("decode github file content: %w", err)
		}
		file.Content = decoded
	} else {
		file.Content = []byte(payload.Content)
	}
	return file, nil
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch"`
}

type putResponse struct {
	Content struct {
		Path string `json:"path"`
		SHA  string `json:"sha"`
	} `json:"content"`
	Commit struct {
		SHA     string `json:"sha"`
		HTMLURL string `json:"html_url"`
	} `json:"commit"`
}

// PutFile creates or updates path. sha must be the current blob sha when the
// file exists and empty when it does not; it is left out of the body when empty.
func (c *GitHubClient) PutFile(ctx context.Context, path string, content []byte, message, sha string) (*WriteResult, error) {
	body, err := json.Marshal(putRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		SHA:     sha,
		Branch:  c.branch,
	})
	if err != nil {
		return nil, fmt.Errorf("encode github put request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPut, c.contentsURL(path), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build github put request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github put %s: %w", path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, upstreamError("github", "put", res)
	}

	var payload putResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode github put response: %w", err)
	}
	resultPath := payload.Content.Path
	if resultPath == "" {
		resultPath = path
	}
	return &WriteResult{
		Path:       resultPath,
		ContentSHA: payload.Content.SHA,
		CommitSHA:  payload.Commit.SHA,
		HTMLURL:    payload.Commit.HTMLURL,
	}, nil
}

// WriteFile runs the read-sha-then-write protocol once. A failed read aborts
// before anything is written; a rejected write (e.g. a stale sha) is not retried.
func (c *GitHubClient) WriteFile(ctx context.Context, path string, content []byte, message string) (*WriteResult, error) {
	current, err := c.GetFile(ctx, path)
	if err != nil {
		log.Printf("❌ WriteFile: reading %s failed: %v", path, err)
		return nil, err
	}

	result, err := c.PutFile(ctx, path, content, message, current.SHA)
	if err != nil {
		log.Printf("❌ WriteFile: writing %s failed: %v", path, err)
		return nil, err
	}
	log.Printf("✅ WriteFile: committed %s (%s)", result.Path, result.CommitSHA)
	return result, nil
}

// upstreamError captures a non-2xx response with its body unmodified
func upstreamError(service, stage string, res *http.Response) *models.UpstreamError {
	body, _ := io.ReadAll(io.LimitReader(res.Body, maxUpstreamBody))
	return &models.UpstreamError{
		Service:    service,
		Stage:      stage,
		StatusCode: res.StatusCode,
		Body:       string(body),
	}
}
