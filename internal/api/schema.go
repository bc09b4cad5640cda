package api

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/quocvuong92/pve-cli/internal/constants"
	"github.com/quocvuong92/pve-cli/internal/logging"
)

const apiDocPath = "/pve-docs/api-viewer/apidoc.js"

// FetchSchema downloads apidoc.js and extracts the JSON array it assigns
func (c *Client) FetchSchema(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+apiDocPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download schema: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "failed to download schema: " + resp.Status}
	}

	return ExtractAPIDoc(resp.Body)
}

// ExtractAPIDoc returns the text from the first '[' up to and including the
// first line that starts with ']'. apidoc.js is a script of the form
// `var apiSchema = [ ... ];` followed by viewer code.
func ExtractAPIDoc(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	start := bytes.IndexByte(data, '[')
	if start < 0 {
		return nil, fmt.Errorf("schema document has no array")
	}

	var out bytes.Buffer
	scanner := bufio.NewScanner(bytes.NewReader(data[start:]))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		out.WriteString(line)
		out.WriteByte('\n')
		if strings.HasPrefix(line, "]") {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	// Drop the statement terminator that follows the closing bracket
	return bytes.TrimRight(bytes.TrimSpace(out.Bytes()), ";"), nil
}

// SchemaLoader fetches the schema document once per host and API version
// and keeps it in the data directory.
type SchemaLoader struct {
	client     *Client
	dataDir    string
	host       string
	schemaFile string

	// Progress receives short status fragments while loading
	Progress func(string)
}

// NewSchemaLoader creates a loader. A non-empty schemaFile bypasses the
// server and the cache.
func NewSchemaLoader(client *Client, dataDir, host, schemaFile string) *SchemaLoader {
	return &SchemaLoader{client: client, dataDir: dataDir, host: host, schemaFile: schemaFile}
}

func (l *SchemaLoader) progress(msg string) {
	if l.Progress != nil {
		l.Progress(msg)
	}
}

// CacheFileName returns api-cache_<host>_<version>.json
func CacheFileName(host, version string) string {
	return constants.CachePrefix + strings.ReplaceAll(host, ":", "_") + "_" + version + ".json"
}

// Load returns a schema document accepted by accept. A cached document that
// accept rejects is deleted and downloaded again.
func (l *SchemaLoader) Load(ctx context.Context, accept func([]byte) error) ([]byte, error) {
	if l.schemaFile != "" {
		l.progress(" from file (" + filepath.Base(l.schemaFile) + ")...")
		data, err := os.ReadFile(l.schemaFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema file: %w", err)
		}
		return data, accept(data)
	}

	version, err := l.client.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get API version: %w", err)
	}
	cacheFile := filepath.Join(l.dataDir, CacheFileName(l.host, version))

	if data, err := os.ReadFile(cacheFile); err == nil {
		l.progress(" from cache (" + filepath.Base(cacheFile) + ")...")
		err := accept(data)
		if err == nil {
			return data, nil
		}
		logging.Warn("schema cache corrupted", logging.Fields{"file": cacheFile, "error": err.Error()})
		l.progress(" cache corrupted, reloading...")
		_ = os.Remove(cacheFile)
	}

	l.progress(" from server...")
	data, err := l.client.FetchSchema(ctx)
	if err != nil {
		return nil, err
	}
	if err := accept(data); err != nil {
		return nil, err
	}

	if err := os.WriteFile(cacheFile, data, 0600); err != nil {
		logging.Warn("failed to write schema cache", logging.Fields{"file": cacheFile, "error": err.Error()})
	} else {
		l.progress(" saved to " + filepath.Base(cacheFile))
	}
	return data, nil
}

// ClearCache deletes every cached schema in dataDir and returns how many were removed
func ClearCache(dataDir string) (int, error) {
	files, err := filepath.Glob(filepath.Join(dataDir, constants.CachePrefix+"*.json"))
	if err != nil {
		return 0, err
	}
	count := 0
	for _, f := range files {
		if err := os.Remove(f); err != nil {
			return count, fmt.Errorf("failed to delete %s: %w", filepath.Base(f), err)
		}
		count++
	}
	return count, nil
}
