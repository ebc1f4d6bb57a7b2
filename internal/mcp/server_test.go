package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCodeHarbor/valvoline-pds-api/internal/config"
	"github.com/TheCodeHarbor/valvoline-pds-api/internal/locale"
	"github.com/TheCodeHarbor/valvoline-pds-api/internal/pds"
	"github.com/TheCodeHarbor/valvoline-pds-api/internal/storage"
)

func newTestMCPServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	store, err := storage.NewStore(cfg.DataDir, cfg.MaxFileSize)
	require.NoError(t, err)

	service := pds.NewService(pds.ServiceConfig{
		MaxFileSize: cfg.MaxFileSize,
		Labels:      locale.NewStore(),
	})

	srv, err := NewServer(cfg, service, store)
	require.NoError(t, err)
	return srv
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestNewServerValidation(t *testing.T) {
	cfg := config.DefaultConfig()
	store, err := storage.NewStore(t.TempDir(), cfg.MaxFileSize)
	require.NoError(t, err)
	service := pds.NewService(pds.ServiceConfig{Labels: locale.NewStore()})

	_, err = NewServer(cfg, nil, store)
	assert.Error(t, err)

	_, err = NewServer(cfg, service, nil)
	assert.Error(t, err)

	srv, err := NewServer(cfg, service, store)
	require.NoError(t, err)
	assert.NotNil(t, srv)
}

func TestHandleSummaryMissingPath(t *testing.T) {
	srv := newTestMCPServer(t)

	result, err := srv.handleSummary(context.Background(), toolRequest(map[string]any{}))

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

func TestHandleSummaryMissingFile(t *testing.T) {
	srv := newTestMCPServer(t)

	result, err := srv.handleSummary(context.Background(), toolRequest(map[string]any{
		"path": "/nonexistent/sheet.pdf",
	}))

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

func TestHandleCompareMissingSecondPath(t *testing.T) {
	srv := newTestMCPServer(t)

	result, err := srv.handleCompare(context.Background(), toolRequest(map[string]any{
		"path_a": "/tmp/a.pdf",
	}))

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

func TestHandleValidateRejectsNonPDF(t *testing.T) {
	srv := newTestMCPServer(t)

	path, err := srv.store.SaveNamed("junk.pdf", []byte("not really a pdf"))
	require.NoError(t, err)

	result, err := srv.handleValidate(context.Background(), toolRequest(map[string]any{
		"path": path,
	}))

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

func TestLocaleDefaulting(t *testing.T) {
	srv := newTestMCPServer(t)

	assert.Equal(t, "no", srv.locale(toolRequest(map[string]any{})))
	assert.Equal(t, "en", srv.locale(toolRequest(map[string]any{"locale": "en"})))
}
