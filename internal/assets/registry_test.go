package assets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autotrader/internal/pkg/symbol"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestRegistryLoadsAssets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.yaml")
	writeFile(t, path, "assets:\n  - render\n  - btc\n  - BTC\nblocked:\n  - ai\n")

	r, err := NewRegistry(path)
	require.NoError(t, err)

	snap := r.Snapshot()
	assert.Equal(t, []string{"BTC", "RENDER"}, snap.Assets)
	assert.Equal(t, []string{"AI"}, snap.Blocked)
	assert.True(t, r.Contains("render"))
	assert.False(t, r.Contains("ETH"))

	c := symbol.NewClassifier(r)
	assert.True(t, c.Tradable("RENDER"))
	assert.False(t, c.Tradable("AI"), "blocked assets skip the ticker heuristic")
	assert.True(t, c.Tradable("ETH"), "short tickers still pass the heuristic")
}

func TestRegistryFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.yaml")
	writeFile(t, path, "blocked: []\n")

	r, err := NewRegistry(path)
	require.NoError(t, err)
	assert.True(t, r.Contains("FLOKI"))
	assert.Len(t, r.Snapshot().Assets, len(symbol.DefaultAssets))
}

func TestRegistryRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.yaml")
	writeFile(t, path, "assets: [BTC]\ntickers: [ETH]\n")

	_, err := NewRegistry(path)
	assert.Error(t, err)
}

func TestRegistryRejectsBadAsset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.yaml")
	writeFile(t, path, "assets: [\"BTC-USD\"]\n")

	_, err := NewRegistry(path)
	assert.Error(t, err)
}

func TestRegistryReloadKeepsSnapshotOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.yaml")
	writeFile(t, path, "assets: [BTC]\n")
	r, err := NewRegistry(path)
	require.NoError(t, err)

	changed := make(chan Snapshot, 1)
	r.OnChange(func(s Snapshot) {
		select {
		case changed <- s:
		default:
		}
	})

	writeFile(t, path, "assets: [\"not valid!\"]\n")
	assert.Error(t, r.reload())
	assert.Equal(t, []string{"BTC"}, r.Snapshot().Assets)

	writeFile(t, path, "assets: [BTC, WIF]\n")
	require.NoError(t, r.reload())
	r.notifyListeners()

	select {
	case snap := <-changed:
		assert.Contains(t, snap.Assets, "WIF")
	case <-time.After(2 * time.Second):
		t.Fatal("listener not notified")
	}
}

func TestNewRegistryRequiresPath(t *testing.T) {
	_, err := NewRegistry(" ")
	assert.Error(t, err)
}
