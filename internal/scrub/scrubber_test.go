package scrub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartsales/internal/dataset"
	apperrors "smartsales/internal/errors"
)

func salesFixture(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds := dataset.New(dataset.Schema{
		{Name: "sale_id", Kind: dataset.KindInt},
		{Name: "region", Kind: dataset.KindString},
		{Name: "amount", Kind: dataset.KindFloat},
	})
	rows := [][]dataset.Value{
		{dataset.Int(1), dataset.String("East"), dataset.Float(100)},
		{dataset.Int(2), dataset.String(" west "), dataset.Float(250)},
		{dataset.Int(1), dataset.String("East"), dataset.Float(100)}, // duplicate of row 1
		{dataset.Int(3), dataset.Null(), dataset.Float(9999999)},
		{dataset.Int(4), dataset.String("North"), dataset.Null()},
	}
	for _, row := range rows {
		require.NoError(t, ds.Append(row...))
	}
	return ds
}

func TestDeduplicate(t *testing.T) {
	s := NewScrubber(nil)
	ds := salesFixture(t)

	removed, err := s.Deduplicate(ds)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 4, ds.RowCount())

	// First occurrence is kept, so the surviving rows are in input order.
	v, err := ds.At(0, "sale_id")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.Int64())

	// A second pass removes nothing.
	removed, err = s.Deduplicate(ds)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestDeduplicateByKeyColumns(t *testing.T) {
	s := NewScrubber(nil)
	ds := salesFixture(t)

	// Rows 1 and 3 share sale_id=1; keying on sale_id drops the later one
	// even though deduping on all columns would too. Add a row that differs
	// only outside the key to prove the key is what matters.
	require.NoError(t, ds.Append(dataset.Int(2), dataset.String("south"), dataset.Float(1)))

	removed, err := s.Deduplicate(ds, "sale_id")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = s.Deduplicate(ds, "no_such_column")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeColumnNotFound))
}

func TestDropMissing(t *testing.T) {
	s := NewScrubber(nil)
	ds := salesFixture(t)

	removed, err := s.DropMissing(ds, "region", "amount")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 3, ds.RowCount())
}

func TestFillMissing(t *testing.T) {
	s := NewScrubber(nil)
	ds := salesFixture(t)
	before := ds.Clone()

	filled, err := s.FillMissing(ds, "region", dataset.String("Unknown"))
	require.NoError(t, err)
	assert.Equal(t, 1, filled)

	v, err := ds.At(3, "region")
	require.NoError(t, err)
	assert.Equal(t, "Unknown", v.Str())

	// Every other value is untouched.
	for i := 0; i < ds.RowCount(); i++ {
		for c, name := range ds.Schema().Names() {
			if i == 3 && name == "region" {
				continue
			}
			assert.True(t, before.Row(i)[c].Equal(ds.Row(i)[c]),
				"row %d column %s changed", i, name)
		}
	}
}

func TestFillMissingRejectsKindMismatch(t *testing.T) {
	s := NewScrubber(nil)
	ds := salesFixture(t)

	_, err := s.FillMissing(ds, "region", dataset.Int(0))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	_, err = s.FillMissing(ds, "region", dataset.Null())
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestFilterOutliers(t *testing.T) {
	s := NewScrubber(nil)
	ds := salesFixture(t)

	removed, err := s.FilterOutliers(ds, "amount", 100, 250)
	require.NoError(t, err)
	assert.Equal(t, 1, removed, "only the 9999999 row is out of bounds")

	// Bounds are inclusive and nulls are retained.
	assert.Equal(t, 4, ds.RowCount())

	_, err = s.FilterOutliers(ds, "region", 0, 1)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation), "non-numeric column must be rejected")
}

func TestNormalizeStrings(t *testing.T) {
	s := NewScrubber(nil)
	ds := salesFixture(t)

	changed, err := s.NormalizeStrings(ds, CaseUpper, "region")
	require.NoError(t, err)
	assert.Equal(t, 4, changed)

	v, err := ds.At(1, "region")
	require.NoError(t, err)
	assert.Equal(t, "WEST", v.Str(), "trimmed and uppercased")

	null, err := ds.At(3, "region")
	require.NoError(t, err)
	assert.True(t, null.IsNull(), "nulls stay null")
}

func TestRenameColumns(t *testing.T) {
	s := NewScrubber(nil)

	t.Run("bijective rename", func(t *testing.T) {
		ds := salesFixture(t)
		err := s.RenameColumns(ds, map[string]string{"sale_id": "id", "amount": "sale_amount"})
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "region", "sale_amount"}, ds.Schema().Names())
	})

	t.Run("collision with existing column", func(t *testing.T) {
		ds := salesFixture(t)
		err := s.RenameColumns(ds, map[string]string{"sale_id": "region"})
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	})

	t.Run("two sources to one target", func(t *testing.T) {
		ds := salesFixture(t)
		err := s.RenameColumns(ds, map[string]string{"sale_id": "x", "amount": "x"})
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	})

	t.Run("unknown source column leaves dataset untouched", func(t *testing.T) {
		ds := salesFixture(t)
		err := s.RenameColumns(ds, map[string]string{"missing": "x"})
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeColumnNotFound))
		assert.Equal(t, []string{"sale_id", "region", "amount"}, ds.Schema().Names())
	})
}

func TestParseDates(t *testing.T) {
	s := NewScrubber(nil)
	ds := dataset.New(dataset.Schema{{Name: "join_date", Kind: dataset.KindString}})
	for _, raw := range []string{"2025-05-01", "2025/06/15", "not-a-date", ""} {
		if raw == "" {
			require.NoError(t, ds.Append(dataset.Null()))
			continue
		}
		require.NoError(t, ds.Append(dataset.String(raw)))
	}

	unparsed, err := s.ParseDates(ds, "join_date")
	require.NoError(t, err)
	assert.Equal(t, 1, unparsed, "only not-a-date fails")

	assert.Equal(t, dataset.KindDate, ds.Schema()[0].Kind)

	first, err := ds.At(0, "join_date")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), first.Time())

	bad, err := ds.At(2, "join_date")
	require.NoError(t, err)
	assert.True(t, bad.IsNull(), "unparseable value becomes null, not an error")

	// Parsing an already-date column is a no-op.
	unparsed, err = s.ParseDates(ds, "join_date")
	require.NoError(t, err)
	assert.Equal(t, 0, unparsed)
}

func TestInspect(t *testing.T) {
	ds := salesFixture(t)

	before := Inspect(ds)
	assert.Equal(t, 5, before.Rows)
	assert.Equal(t, 3, before.Columns)
	assert.Equal(t, 1, before.NullCounts["region"])
	assert.Equal(t, 1, before.NullCounts["amount"])
	assert.Equal(t, 0, before.NullCounts["sale_id"])

	// Inspect never mutates.
	again := Inspect(ds)
	assert.Equal(t, before, again)
	assert.Equal(t, 5, ds.RowCount())
}
