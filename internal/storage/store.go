// Package storage owns the on-disk PDF cache and the fetch capability the
// core pipeline is agnostic to: callers hand it a source identifier (local
// path or URL) and get bytes back.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	pdfMagic       = "%PDF"
	fetchTimeout   = 60 * time.Second
	storedFilePerm = 0o640
	dirPerm        = 0o750
)

// FetchError indicates a source could not be resolved to PDF bytes. Retry
// policy belongs to the caller, never to this package.
type FetchError struct {
	Source string
	Err    error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Store saves uploaded and downloaded PDFs under a single data directory
// with collision-free names.
type Store struct {
	dataDir     string
	maxFileSize int64
	client      *http.Client
}

// NewStore creates the data directory if needed and returns a store.
func NewStore(dataDir string, maxFileSize int64) (*Store, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory cannot be empty")
	}
	if err := os.MkdirAll(dataDir, dirPerm); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w", dataDir, err)
	}
	return &Store{
		dataDir:     dataDir,
		maxFileSize: maxFileSize,
		client:      &http.Client{Timeout: fetchTimeout},
	}, nil
}

// DataDir returns the directory uploads are stored in.
func (s *Store) DataDir() string {
	return s.dataDir
}

// SavePDF writes an uploaded PDF under a fresh uuid-based name and returns
// the stored path. The stream is sniffed for the PDF magic bytes first.
func (s *Store) SavePDF(r io.Reader) (string, error) {
	data, err := s.readLimited(r)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(string(data[:min(len(data), 1024)]), pdfMagic) {
		return "", fmt.Errorf("upload is not a PDF")
	}

	name := uuid.New().String() + ".pdf"
	path := filepath.Join(s.dataDir, name)
	if err := os.WriteFile(path, data, storedFilePerm); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return path, nil
}

// SaveNamed writes PDF bytes under a sanitized file name, overwriting any
// previous copy. Used by the Drive sync collaborator.
func (s *Store) SaveNamed(name string, data []byte) (string, error) {
	path := filepath.Join(s.dataDir, SafeName(name))
	if err := os.WriteFile(path, data, storedFilePerm); err != nil {
		return "", fmt.Errorf("store %s: %w", name, err)
	}
	return path, nil
}

// Fetch resolves a source identifier to PDF bytes: URLs are downloaded,
// anything else is read as a local path. Failures come back as *FetchError.
func (s *Store) Fetch(ctx context.Context, sourceID string) ([]byte, error) {
	if strings.HasPrefix(sourceID, "http://") || strings.HasPrefix(sourceID, "https://") {
		return s.fetchURL(ctx, sourceID)
	}
	return s.readFile(sourceID)
}

func (s *Store) readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &FetchError{Source: path, Err: err}
	}
	if info.IsDir() {
		return nil, &FetchError{Source: path, Err: fmt.Errorf("path is a directory")}
	}
	if s.maxFileSize > 0 && info.Size() > s.maxFileSize {
		return nil, &FetchError{Source: path, Err: fmt.Errorf("file too large: %d bytes (max %d)", info.Size(), s.maxFileSize)}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FetchError{Source: path, Err: err}
	}
	return data, nil
}

func (s *Store) fetchURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, &FetchError{Source: url, Err: err}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Source: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	data, err := s.readLimited(resp.Body)
	if err != nil {
		return nil, &FetchError{Source: url, Err: err}
	}
	if !strings.Contains(string(data[:min(len(data), 1024)]), pdfMagic) {
		return nil, &FetchError{Source: url, Err: fmt.Errorf("response is not a PDF")}
	}
	return data, nil
}

// readLimited reads at most maxFileSize+1 bytes and rejects oversized input.
func (s *Store) readLimited(r io.Reader) ([]byte, error) {
	limit := s.maxFileSize
	if limit <= 0 {
		limit = 1 << 30
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty input")
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("input exceeds size limit of %d bytes", limit)
	}
	return data, nil
}

// SafeName reduces an arbitrary file name to a safe basename.
func SafeName(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" || out == "." {
		out = uuid.New().String() + ".pdf"
	}
	return out
}
