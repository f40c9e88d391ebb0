package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistorySaveLoad(t *testing.T) {
	h, err := NewHistoryStorage(t.TempDir())
	require.NoError(t, err)

	a := &Analysis{
		Title:    "ZERODIVIDE",
		Provider: "OLLAMA",
		Model:    "llama3.1:latest",
		Success:  true,
		Result:   "lv_b is zero",
		Dump:     "Runtime Errors COMPUTE_INT_ZERODIVIDE",
	}
	require.NoError(t, h.Save(a))
	assert.NotEmpty(t, a.ID)
	assert.False(t, a.CreatedAt.IsZero())

	info, err := os.Stat(filepath.Join(h.dir, a.ID+".json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := h.Load(a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Title, loaded.Title)
	assert.Equal(t, a.Result, loaded.Result)
	assert.True(t, loaded.Success)
}

func TestHistoryListNewestFirst(t *testing.T) {
	h, err := NewHistoryStorage(t.TempDir())
	require.NoError(t, err)

	base := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	require.NoError(t, h.Save(&Analysis{Title: "old", CreatedAt: base}))
	require.NoError(t, h.Save(&Analysis{Title: "new", CreatedAt: base.Add(time.Hour)}))

	list, err := h.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].Title)
	assert.Equal(t, "old", list[1].Title)
}

func TestHistorySearch(t *testing.T) {
	h, err := NewHistoryStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, h.Save(&Analysis{Title: "dump 1", Dump: "CX_SY_ZERODIVIDE in ZTEST"}))
	require.NoError(t, h.Save(&Analysis{Title: "dump 2", Dump: "TSV_TNEW_PAGE_ALLOC_FAILED"}))

	matches, err := h.Search("zerodivide")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "dump 1", matches[0].Title)
	assert.Equal(t, "CX_SY_ZERODIVIDE in ZTEST", matches[0].Preview)

	matches, err = h.Search("  ")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestHistoryDelete(t *testing.T) {
	h, err := NewHistoryStorage(t.TempDir())
	require.NoError(t, err)

	a := &Analysis{Title: "gone"}
	require.NoError(t, h.Save(a))
	require.NoError(t, h.Delete(a.ID))

	list, err := h.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPreviewTruncates(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "abcde "
	}
	p := preview(long, 10)
	assert.Equal(t, "abcde abcd...", p)
}
