package exporter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartsales/internal/dataset"
)

func TestWriteDataset(t *testing.T) {
	ds := dataset.New(dataset.Schema{
		{Name: "customer_id", Kind: dataset.KindInt},
		{Name: "name", Kind: dataset.KindString},
		{Name: "join_date", Kind: dataset.KindDate},
	})
	require.NoError(t, ds.Append(
		dataset.Int(1),
		dataset.String("Alice"),
		dataset.Date(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
	))
	require.NoError(t, ds.Append(dataset.Int(2), dataset.Null(), dataset.Null()))

	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	w := NewCSVWriter(nil)
	require.NoError(t, w.WriteDataset(path, ds, WriteOptions{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "customer_id,name,join_date\n1,Alice,2024-01-15\n2,,\n", string(data))
}

func TestWriteDatasetWithBOM(t *testing.T) {
	ds := dataset.New(dataset.Schema{{Name: "a", Kind: dataset.KindInt}})
	require.NoError(t, ds.Append(dataset.Int(1)))

	path := filepath.Join(t.TempDir(), "out.csv")
	w := NewCSVWriter(nil)
	require.NoError(t, w.WriteDataset(path, ds, WriteOptions{BOMPrefix: true}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, data[:3])
}

func TestWriteDatasetTruncatesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is longer than the new file"), 0644))

	ds := dataset.New(dataset.Schema{{Name: "a", Kind: dataset.KindInt}})
	w := NewCSVWriter(nil)
	require.NoError(t, w.WriteDataset(path, ds, WriteOptions{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\n", string(data))
}
