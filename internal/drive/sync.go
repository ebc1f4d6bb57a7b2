// Package drive syncs a Google Drive folder of PDS documents into the local
// PDF cache: every sheet is downloaded, extracted once, and indexed by
// product name.
package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/TheCodeHarbor/valvoline-pds-api/internal/pds"
	"github.com/TheCodeHarbor/valvoline-pds-api/internal/storage"
)

const (
	indexFileName = "index.json"
	filePerm      = 0o640
	dirPerm       = 0o750
)

// Extractor is the slice of the PDS service the syncer needs.
type Extractor interface {
	Extract(sourceID string, data []byte) (*pds.ProductRecord, error)
}

// SyncItem describes one synced document.
type SyncItem struct {
	Name     string `json:"name"`
	StoredAs string `json:"stored_as"`
	Parsed   bool   `json:"parsed"`
	Error    string `json:"error,omitempty"`
}

// SyncResult summarizes a folder sync.
type SyncResult struct {
	Count int        `json:"count"`
	Items []SyncItem `json:"items"`
}

// Syncer downloads PDFs from a Drive folder, runs the extraction pipeline on
// each, caches the parsed records as JSON, and maintains a product-name
// index next to the data directory.
type Syncer struct {
	svc       *drive.Service
	store     *storage.Store
	extractor Extractor
	parsedDir string
	logger    *slog.Logger

	indexMu sync.Mutex
}

// NewSyncer builds a Drive syncer from a service-account credentials file.
func NewSyncer(
	ctx context.Context,
	credentialsPath string,
	store *storage.Store,
	extractor Extractor,
	parsedDir string,
	logger *slog.Logger,
) (*Syncer, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	svc, err := drive.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	if err := os.MkdirAll(parsedDir, dirPerm); err != nil {
		return nil, fmt.Errorf("create parsed directory %s: %w", parsedDir, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		svc:       svc,
		store:     store,
		extractor: extractor,
		parsedDir: parsedDir,
		logger:    logger,
	}, nil
}

// SyncFolder downloads every PDF in the folder, extracts it, and updates the
// index. Per-file failures are reported in the result, not fatal to the sync.
func (s *Syncer) SyncFolder(ctx context.Context, folderID string) (*SyncResult, error) {
	if folderID == "" {
		return nil, fmt.Errorf("folder ID cannot be empty")
	}

	files, err := s.listPDFs(ctx, folderID)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{Items: []SyncItem{}}
	for _, f := range files {
		item := s.syncFile(ctx, f)
		result.Items = append(result.Items, item)
	}
	result.Count = len(result.Items)

	s.logger.Info("drive sync complete", "folder", folderID, "files", result.Count)
	return result, nil
}

// listPDFs pages through the folder's PDF files.
func (s *Syncer) listPDFs(ctx context.Context, folderID string) ([]*drive.File, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType='application/pdf' and trashed=false", folderID)

	var files []*drive.File
	pageToken := ""
	for {
		call := s.svc.Files.List().
			Context(ctx).
			Q(query).
			Fields("nextPageToken, files(id, name, size, modifiedTime)").
			PageSize(100)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		list, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list drive folder: %w", err)
		}
		files = append(files, list.Files...)
		if list.NextPageToken == "" {
			return files, nil
		}
		pageToken = list.NextPageToken
	}
}

func (s *Syncer) syncFile(ctx context.Context, f *drive.File) SyncItem {
	item := SyncItem{Name: f.Name}

	data, err := s.download(ctx, f.Id)
	if err != nil {
		item.Error = err.Error()
		s.logger.Warn("drive download failed", "file", f.Name, "error", err)
		return item
	}

	path, err := s.store.SaveNamed(f.Name, data)
	if err != nil {
		item.Error = err.Error()
		return item
	}
	item.StoredAs = path

	record, err := s.extractor.Extract(path, data)
	if err != nil {
		// cached anyway; a later request can still report the precise failure
		item.Error = err.Error()
		s.logger.Warn("extraction failed during sync", "file", f.Name, "error", err)
		return item
	}
	item.Parsed = true

	if err := s.writeParsed(path, record); err != nil {
		s.logger.Warn("parsed cache write failed", "file", f.Name, "error", err)
	}
	if name := record.DisplayName(); name != "" {
		item.Name = name
		if err := s.updateIndex(name, path); err != nil {
			s.logger.Warn("index update failed", "file", f.Name, "error", err)
		}
	}
	return item
}

func (s *Syncer) download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := s.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", fileID, err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// writeParsed caches the extracted record as JSON next to the PDF cache.
func (s *Syncer) writeParsed(pdfPath string, record *pds.ProductRecord) error {
	stem := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.parsedDir, stem+".json"), data, filePerm)
}

// updateIndex maintains the product-name to file-path lookup.
func (s *Syncer) updateIndex(productName, path string) error {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	indexPath := filepath.Join(s.parsedDir, indexFileName)
	index := map[string]string{}
	if data, err := os.ReadFile(indexPath); err == nil {
		_ = json.Unmarshal(data, &index)
	}
	index[productName] = path

	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(indexPath, data, filePerm)
}
