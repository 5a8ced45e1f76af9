package cube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRegion(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"east", "EAST"},
		{"East", "EAST"},
		{"EAST", "EAST"},
		{" East ", "EAST"},
		{"eas", "EAST"},
		{"west", "WEST"},
		{"southwest", "SOUTH-WEST"},
		{"south-west", "SOUTH-WEST"},
		{"south_west", "SOUTH-WEST"},
		{"south", "SOUTH"},
		{"north", "NORTH"},
		{"central", "CENTRAL"},
		{"", "UNKNOWN"},
		{"   ", "UNKNOWN"},
		{"overseas", "OVERSEAS"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeRegion(tt.raw))
		})
	}
}

func monthCube() *Cube {
	return &Cube{
		Level:          LevelMonth,
		Dimension:      "region",
		SkippedUndated: 2,
		NullAmounts:    1,
		Rows: []Row{
			{Key: Key{Year: 2025, Month: 1, Dim: "EAST"}, TotalRevenue: 500, TransactionCount: 5},
			{Key: Key{Year: 2025, Month: 2, Dim: "EAST"}, TotalRevenue: 300, TransactionCount: 3},
			{Key: Key{Year: 2025, Month: 4, Dim: "EAST"}, TotalRevenue: 100, TransactionCount: 1},
			{Key: Key{Year: 2025, Month: 1, Dim: "WEST"}, TotalRevenue: 450, TransactionCount: 2},
			{Key: Key{Year: 2024, Month: 12, Dim: "WEST"}, TotalRevenue: 450, TransactionCount: 4},
		},
	}
}

func TestRollUpToQuarter(t *testing.T) {
	rolled := RollUp(monthCube(), LevelQuarter)

	assert.Equal(t, LevelQuarter, rolled.Level)
	require.Len(t, rolled.Rows, 4)
	assert.Equal(t, 2, rolled.SkippedUndated, "anomaly counters travel with the rollup")
	assert.Equal(t, 1, rolled.NullAmounts)

	// Jan+Feb EAST merge into 2025 Q1.
	assert.Equal(t, Key{Year: 2025, Quarter: 1, Dim: "EAST"}, rolled.Rows[0].Key)
	assert.Equal(t, 800.0, rolled.Rows[0].TotalRevenue)
	assert.Equal(t, 8, rolled.Rows[0].TransactionCount)

	// Equal revenues fall back to ascending key order.
	assert.Equal(t, Key{Year: 2024, Quarter: 4, Dim: "WEST"}, rolled.Rows[1].Key)
	assert.Equal(t, Key{Year: 2025, Quarter: 1, Dim: "WEST"}, rolled.Rows[2].Key)

	assert.Equal(t, Key{Year: 2025, Quarter: 2, Dim: "EAST"}, rolled.Rows[3].Key)
}

func TestRollUpToYear(t *testing.T) {
	rolled := RollUp(monthCube(), LevelYear)

	require.Len(t, rolled.Rows, 3)
	assert.Equal(t, Key{Year: 2025, Dim: "EAST"}, rolled.Rows[0].Key)
	assert.Equal(t, 900.0, rolled.Rows[0].TotalRevenue)
	assert.Equal(t, 9, rolled.Rows[0].TransactionCount)
}

func TestRollUpToTotal(t *testing.T) {
	rolled := RollUp(monthCube(), LevelTotal)

	require.Len(t, rolled.Rows, 2)
	assert.Equal(t, Key{Dim: "EAST"}, rolled.Rows[0].Key)
	assert.Equal(t, 900.0, rolled.Rows[0].TotalRevenue)
	assert.Equal(t, Key{Dim: "WEST"}, rolled.Rows[1].Key)
	assert.Equal(t, 900.0, rolled.Rows[1].TotalRevenue)
}

func TestRollUpOfRollUpIsConsistent(t *testing.T) {
	viaQuarter := RollUp(RollUp(monthCube(), LevelQuarter), LevelYear)
	direct := RollUp(monthCube(), LevelYear)
	assert.Equal(t, direct.Rows, viaQuarter.Rows)
}

func TestRollUpToFinerLevelIsNoOp(t *testing.T) {
	c := monthCube()
	assert.Same(t, c, RollUp(c, LevelMonth))

	yearly := RollUp(c, LevelYear)
	assert.Same(t, yearly, RollUp(yearly, LevelQuarter))
}

func TestToDataset(t *testing.T) {
	ds, err := ToDataset(monthCube())
	require.NoError(t, err)
	assert.Equal(t, []string{"year", "month", "region", "total_revenue", "transaction_count"}, ds.Schema().Names())
	assert.Equal(t, 5, ds.RowCount())

	// Rows come out in cube order, revenue descending.
	v, err := ds.At(0, "total_revenue")
	require.NoError(t, err)
	assert.Equal(t, 500.0, v.Float64())

	totals, err := ToDataset(RollUp(monthCube(), LevelTotal))
	require.NoError(t, err)
	assert.Equal(t, []string{"region", "total_revenue", "transaction_count"}, totals.Schema().Names())
}
