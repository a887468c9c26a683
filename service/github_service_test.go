package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securecam-site/models"
)

// fakeGitHub records Contents API calls and answers them from canned responses
type fakeGitHub struct {
	mu        sync.Mutex
	getStatus int
	getBody   string
	putStatus int
	putBody   string
	puts      []map[string]any
	gets      int
	paths     []string
	auth      []string
}

func (f *fakeGitHub) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.paths = append(f.paths, r.URL.Path)
		f.auth = append(f.auth, r.Header.Get("Authorization"))

		switch r.Method {
		case http.MethodGet:
			f.gets++
			assert.Equal(t, "main", r.URL.Query().Get("ref"))
			w.WriteHeader(f.getStatus)
			io.WriteString(w, f.getBody)
		case http.MethodPut:
			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			f.puts = append(f.puts, body)
			status := f.putStatus
			if status == 0 {
				status = http.StatusCreated
			}
			w.WriteHeader(status)
			if f.putBody != "" {
				io.WriteString(w, f.putBody)
				return
			}
			io.WriteString(w, `{"content":{"path":"site_data.json","sha":"newblob"},"commit":{"sha":"c0ffee","html_url":"https://github.com/acme/site/commit/c0ffee"}}`)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func newFakeGitHub(t *testing.T, f *fakeGitHub) (*GitHubClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	client := NewGitHubClient(models.GitHubSettings{Token: "tok", Owner: "acme", Repo: "site", Branch: "main"}, srv.URL, srv.Client())
	return client, srv
}

func TestWriteFile_NoShaWhenFileIsMissing(t *testing.T) {
	fake := &fakeGitHub{getStatus: http.StatusNotFound, getBody: `{"message":"Not Found"}`}
	client, _ := newFakeGitHub(t, fake)

	result, err := client.WriteFile(context.Background(), "site_data.json", []byte(`{"a":1}`), "msg")
	require.NoError(t, err)

	require.Len(t, fake.puts, 1)
	_, hasSha := fake.puts[0]["sha"]
	assert.False(t, hasSha, "sha must be omitted when the file does not exist")
	assert.Equal(t, "main", fake.puts[0]["branch"])
	assert.Equal(t, "msg", fake.puts[0]["message"])

	content, err := base64.StdEncoding.DecodeString(fake.puts[0]["content"].(string))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(content))

	assert.Equal(t, "c0ffee", result.CommitSHA)
	assert.Equal(t, "site_data.json", result.Path)
	assert.Equal(t, "/repos/acme/site/contents/site_data.json", fake.paths[0])
	assert.Equal(t, "Bearer tok", fake.auth[0])
}

func TestWriteFile_SendsExistingSha(t *testing.T) {
	fake := &fakeGitHub{getStatus: http.StatusOK, getBody: `{"sha":"abc123","content":"e30=\n","encoding":"base64"}`}
	client, _ := newFakeGitHub(t, fake)

	_, err := client.WriteFile(context.Background(), "site_data.json", []byte(`{}`), "msg")
	require.NoError(t, err)

	require.Len(t, fake.puts, 1)
	assert.Equal(t, "abc123", fake.puts[0]["sha"])
}

func TestWriteFile_GetFailureAbortsBeforePut(t *testing.T) {
	fake := &fakeGitHub{getStatus: http.StatusInternalServerError, getBody: `{"message":"boom"}`}
	client, _ := newFakeGitHub(t, fake)

	_, err := client.WriteFile(context.Background(), "site_data.json", []byte(`{}`), "msg")
	require.Error(t, err)

	var upstream *models.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "get", upstream.Stage)
	assert.Equal(t, http.StatusInternalServerError, upstream.StatusCode)
	assert.Equal(t, `{"message":"boom"}`, upstream.Body)
	assert.Empty(t, fake.puts)
}

func TestWriteFile_PutConflictIsNotRetried(t *testing.T) {
	fake := &fakeGitHub{
		getStatus: http.StatusOK,
		getBody:   `{"sha":"stale","content":"","encoding":"base64"}`,
		putStatus: http.StatusConflict,
		putBody:   `{"message":"site_data.json does not match stale"}`,
	}
	client, _ := newFakeGitHub(t, fake)

	_, err := client.WriteFile(context.Background(), "site_data.json", []byte(`{}`), "msg")

	var upstream *models.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "put", upstream.Stage)
	assert.Equal(t, `{"message":"site_data.json does not match stale"}`, upstream.Body, "upstream body is passed through unmodified")
	assert.Len(t, fake.puts, 1)
	assert.Equal(t, 1, fake.gets)
}

func TestGetFile_DecodesWrappedBase64(t *testing.T) {
	content := []byte(`{"branding":{"siteName":"SecureCam"},"padding":"xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx"}`)
	encoded := base64.StdEncoding.EncodeToString(content)
	wrapped := encoded[:60] + "\n" + encoded[60:] + "\n"
	body, err := json.Marshal(map[string]string{"sha": "s1", "content": wrapped, "encoding": "base64"})
	require.NoError(t, err)

	fake := &fakeGitHub{getStatus: http.StatusOK, getBody: string(body)}
	client, _ := newFakeGitHub(t, fake)

	file, err := client.GetFile(context.Background(), "site_data.json")
	require.NoError(t, err)
	assert.True(t, file.Found)
	assert.Equal(t, "s1", file.SHA)
	assert.Equal(t, content, file.Content)
}

func TestGetFile_NotFound(t *testing.T) {
	fake := &fakeGitHub{getStatus: http.StatusNotFound}
	client, _ := newFakeGitHub(t, fake)

	file, err := client.GetFile(context.Background(), "public/images/a b.png")
	require.NoError(t, err)
	assert.False(t, file.Found)
	assert.Equal(t, "/repos/acme/site/contents/public/images/a b.png", fake.paths[0])
}

func TestNewGitHubClient_Defaults(t *testing.T) {
	client := NewGitHubClient(models.GitHubSettings{Owner: "o", Repo: "r"}, "", nil)
	assert.Equal(t, "main", client.branch)
	assert.Equal(t, "https://api.github.com/repos/o/r/contents/site_data.json", client.contentsURL("/site_data.json"))
}
