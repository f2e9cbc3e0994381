// Common test helpers
package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/whereis/config"
	"github.com/meghashyamc/whereis/db/kvdb"
	"github.com/meghashyamc/whereis/logger"
	"github.com/meghashyamc/whereis/services/saved"
	"github.com/meghashyamc/whereis/services/search"
	"github.com/meghashyamc/whereis/validation"
	"github.com/stretchr/testify/require"
)

var defaultTestRequestHeaders = map[string]string{"Content-Type": "application/json"}

var testFiles = map[string]string{
	"file1.txt":              "This is test content for file1",
	"file2.go":               "package main\n\nfunc main() {\n\tprint(\"Hello\")\n}",
	"report.txt":             "quarterly numbers",
	"subdir/file3.md":        "# Test Markdown\n\nThis is a test markdown file",
	"subdir/file4.json":      `{"key": "value", "number": 42}`,
	"subdir/nested/file5.py": "def hello():\n    print('Hello World')",
	".hidden/secret.txt":     "hidden",
}

type testCase struct {
	name            string
	requestHeaders  map[string]string
	requestBody     map[string]any
	queryParams     map[string]string
	expectedStatus  int
	expectedResults []string
}

func newTestLogger() logger.Logger {

	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

// setupTestServer writes testFiles under a fresh directory and returns a
// router serving every handler along with that directory.
func setupTestServer(t *testing.T, assert *require.Assertions) (*gin.Engine, string) {

	t.Setenv("ENV", "test")

	cfg, err := config.Load("")
	assert.NoError(err, "could not load config")

	tempDir := t.TempDir()
	for relPath, content := range testFiles {
		fullPath := filepath.Join(tempDir, relPath)
		err := os.MkdirAll(filepath.Dir(fullPath), 0755)
		assert.NoError(err, "could not create test sub-directory")
		err = os.WriteFile(fullPath, []byte(content), 0644)
		assert.NoError(err, "could not write test file")
	}

	testLogger := newTestLogger()

	kvDB, err := kvdb.New(testLogger, filepath.Join(t.TempDir(), "saved.db"))
	assert.NoError(err, "could not create kv database")
	t.Cleanup(func() {
		assert.NoError(kvDB.Close(), "could not close kv database")
	})

	searchService, err := search.New(testLogger, cfg.GetMaxResults())
	assert.NoError(err, "could not create search service")

	validator, err := validation.New(testLogger)
	assert.NoError(err, "could not create validator")
	gin.SetMode(gin.TestMode)
	router := gin.New()

	SetupSearch(router, testLogger, searchService, validator)
	SetupSavedSearches(router, testLogger, saved.New(testLogger, kvDB), searchService, validator)

	return router, tempDir
}

func makeTestHTTPRequest(router *gin.Engine, assert *require.Assertions, method string, endpoint string, headers map[string]string, requestBodyMap map[string]any, queryParams map[string]string) *httptest.ResponseRecorder {

	var err error
	w := httptest.NewRecorder()

	if len(queryParams) > 0 {
		values := url.Values{}
		for key, value := range queryParams {
			values.Set(key, value)
		}
		endpoint = endpoint + "?" + values.Encode()
	}
	var jsonBody []byte
	var req *http.Request
	if requestBodyMap != nil {
		jsonBody, err = json.Marshal(requestBodyMap)
		assert.NoError(err)
	}

	slog.Info("Making test request", "method", method, "endpoint", endpoint, "headers", headers, "body", string(jsonBody))

	if len(jsonBody) > 0 {
		req, err = http.NewRequest(method, endpoint, bytes.NewBuffer(jsonBody))
	} else {
		req, err = http.NewRequest(method, endpoint, nil)
	}
	assert.NoError(err)

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	router.ServeHTTP(w, req)

	return w
}

// decodeResults pulls data.results out of a search response.
func decodeResults(assert *require.Assertions, body []byte) []string {
	var searchResponse struct {
		Data   SearchResponse `json:"data"`
		Errors []string       `json:"errors"`
	}
	assert.NoError(json.Unmarshal(body, &searchResponse))
	assert.Equal(len(searchResponse.Data.Results), searchResponse.Data.Count)

	return searchResponse.Data.Results
}

func absolutePaths(root string, relPaths []string) []string {
	paths := make([]string, 0, len(relPaths))
	for _, relPath := range relPaths {
		paths = append(paths, filepath.Join(root, relPath))
	}
	return paths
}
