package summary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLinkCacheDistinguishesEmptyFromAbsent(t *testing.T) {
	c, err := LoadLinkCache(filepath.Join(t.TempDir(), "links.json"))
	require.NoError(t, err)

	_, found := c.Get("K1")
	require.False(t, found)

	c.Put("K1", nil)
	links, found := c.Get("K1")
	require.True(t, found)
	require.Empty(t, links)
	require.Equal(t, 1, c.Len())
}

func TestLinkCacheEmptyListSurvivesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.json")
	c, err := LoadLinkCache(path)
	require.NoError(t, err)
	c.Put("K1", nil)
	require.NoError(t, c.Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"summary_links": []`)

	reloaded, err := LoadLinkCache(path)
	require.NoError(t, err)
	links, found := reloaded.Get("K1")
	require.True(t, found)
	require.Empty(t, links)
}

func TestLoadLinkCacheRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.json")
	require.NoError(t, os.WriteFile(path, []byte("[1,2,3]"), 0o600))

	_, err := LoadLinkCache(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse cache")
}
