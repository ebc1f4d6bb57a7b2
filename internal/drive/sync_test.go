package drive

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCodeHarbor/valvoline-pds-api/internal/pds"
)

func newTestSyncer(t *testing.T) *Syncer {
	t.Helper()
	return &Syncer{
		parsedDir: t.TempDir(),
		logger:    slog.Default(),
	}
}

func TestWriteParsed(t *testing.T) {
	s := newTestSyncer(t)

	record := &pds.ProductRecord{
		SourceID:    "/data/synpower_5w30.pdf",
		ProductName: "Valvoline SynPower 5W-30",
		Approvals:   []string{"API SN"},
		Properties:  []pds.PropertyRecord{},
	}

	require.NoError(t, s.writeParsed("/data/synpower_5w30.pdf", record))

	data, err := os.ReadFile(filepath.Join(s.parsedDir, "synpower_5w30.json"))
	require.NoError(t, err)

	var got pds.ProductRecord
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Valvoline SynPower 5W-30", got.ProductName)
	assert.Equal(t, []string{"API SN"}, got.Approvals)
}

func TestUpdateIndex(t *testing.T) {
	s := newTestSyncer(t)

	require.NoError(t, s.updateIndex("Valvoline SynPower 5W-30", "/data/a.pdf"))
	require.NoError(t, s.updateIndex("Valvoline MaxLife 10W-40", "/data/b.pdf"))
	// re-syncing a product replaces its entry
	require.NoError(t, s.updateIndex("Valvoline SynPower 5W-30", "/data/c.pdf"))

	data, err := os.ReadFile(filepath.Join(s.parsedDir, indexFileName))
	require.NoError(t, err)

	index := map[string]string{}
	require.NoError(t, json.Unmarshal(data, &index))
	assert.Len(t, index, 2)
	assert.Equal(t, "/data/c.pdf", index["Valvoline SynPower 5W-30"])
	assert.Equal(t, "/data/b.pdf", index["Valvoline MaxLife 10W-40"])
}

func TestSyncFolderRequiresFolderID(t *testing.T) {
	s := newTestSyncer(t)

	_, err := s.SyncFolder(context.Background(), "")
	assert.Error(t, err)
}
