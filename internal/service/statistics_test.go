package service

import (
	"testing"
	"time"

	"issp/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approvedItem(price float64) model.LineItem {
	return model.LineItem{
		Name:           "item",
		ApprovalStatus: model.ItemStatusApproved,
		Price:          decimal.NewFromFloat(price),
		Quantity:       1,
	}
}

func cycleRequest(items ...model.LineItem) model.ISSPRequest {
	return model.ISSPRequest{
		Unit:      strPtr("CCIS"),
		YearCycle: "2024-2026",
		Status:    model.RequestStatusSubmitted,
		Items:     items,
		UpdatedAt: time.Now(),
	}
}

func TestParseYearCycle(t *testing.T) {
	assert.Equal(t, []string{"2024", "2025", "2026"}, ParseYearCycle("2024-2026"))
	assert.Equal(t, []string{"2024"}, ParseYearCycle("2024-2024"))
	assert.Nil(t, ParseYearCycle("2026-2024")) // end before start
	assert.Nil(t, ParseYearCycle("2024"))
	assert.Nil(t, ParseYearCycle("abc-def"))
	assert.Nil(t, ParseYearCycle(""))
}

func TestComputePriceDistributionEmptyInputKeepsShape(t *testing.T) {
	dist := ComputePriceDistribution(nil, "2024-2026")

	require.Len(t, dist.Buckets, 5)
	assert.Equal(t, []string{"2024", "2025", "2026"}, dist.Years)
	assert.Equal(t, 0, dist.TotalItems)
	assert.Zero(t, dist.TotalValue)

	// Every bucket and every cycle year appears even with no data.
	for _, b := range dist.Buckets {
		assert.Zero(t, b.Count)
		assert.Zero(t, b.Percentage)
		require.Len(t, b.ByYear, 3)
	}
	require.Len(t, dist.TotalsByYear, 3)
}

func TestComputePriceDistributionBucketBoundaries(t *testing.T) {
	tests := []struct {
		price float64
		label string
	}{
		{0, "₱0–₱10k"},
		{10000, "₱0–₱10k"},
		{10000.50, "₱10k–₱50k"}, // fractional edge still lands in a bucket
		{10001, "₱10k–₱50k"},
		{50000, "₱10k–₱50k"},
		{50001, "₱50k–₱100k"},
		{100000, "₱50k–₱100k"},
		{100001, "₱100k–₱200k"},
		{200000, "₱100k–₱200k"},
		{200001, "₱200k+"},
		{5000000, "₱200k+"},
	}
	for _, tt := range tests {
		dist := ComputePriceDistribution([]model.ISSPRequest{cycleRequest(approvedItem(tt.price))}, "2024-2026")
		total := 0
		for _, b := range dist.Buckets {
			total += b.Count
			if b.Label == tt.label {
				assert.Equal(t, 1, b.Count, "price %v should land in %s", tt.price, tt.label)
			}
		}
		assert.Equal(t, 1, total, "price %v must land in exactly one bucket", tt.price)
	}
}

func TestComputePriceDistributionSkipsUnapprovedItems(t *testing.T) {
	pending := approvedItem(75000)
	pending.ApprovalStatus = model.ItemStatusPending
	disapproved := approvedItem(75000)
	disapproved.ApprovalStatus = model.ItemStatusDisapproved

	dist := ComputePriceDistribution([]model.ISSPRequest{cycleRequest(pending, disapproved, approvedItem(75000))}, "2024-2026")

	assert.Equal(t, 1, dist.TotalItems)
	assert.Equal(t, float64(75000), dist.TotalValue)
}

func TestComputePriceDistributionSkipsOtherCycles(t *testing.T) {
	other := cycleRequest(approvedItem(75000))
	other.YearCycle = "2021-2023"

	dist := ComputePriceDistribution([]model.ISSPRequest{other, cycleRequest(approvedItem(5000))}, "2024-2026")

	assert.Equal(t, 1, dist.TotalItems)
	assert.Equal(t, float64(5000), dist.TotalValue)
}

func TestComputePriceDistributionPercentagesRoundIndependently(t *testing.T) {
	// Three items in three buckets: 33% each, rounded per bucket. The sum
	// is 99, not 100, and that is expected behavior.
	dist := ComputePriceDistribution([]model.ISSPRequest{
		cycleRequest(approvedItem(5000), approvedItem(25000), approvedItem(75000)),
	}, "2024-2026")

	sum := 0
	for _, b := range dist.Buckets {
		if b.Count > 0 {
			assert.Equal(t, 33, b.Percentage)
		}
		sum += b.Percentage
	}
	assert.Equal(t, 99, sum)
}

func TestComputePriceDistributionYearQuantities(t *testing.T) {
	item := approvedItem(1000)
	item.QuantityByYear = `{"2024": 2, "2025": "3"}` // string quantities coerce

	dist := ComputePriceDistribution([]model.ISSPRequest{cycleRequest(item)}, "2024-2026")

	bucket := dist.Buckets[0]
	require.NotNil(t, bucket.ByYear["2024"])
	assert.Equal(t, 2, bucket.ByYear["2024"].Count)
	assert.Equal(t, float64(2000), bucket.ByYear["2024"].TotalValue)
	assert.Equal(t, 3, bucket.ByYear["2025"].Count)
	assert.Equal(t, float64(3000), bucket.ByYear["2025"].TotalValue)
	assert.Equal(t, 0, bucket.ByYear["2026"].Count)

	assert.Equal(t, 2, dist.TotalsByYear["2024"].Count)
	assert.Equal(t, 3, dist.TotalsByYear["2025"].Count)
}

func TestComputePriceDistributionIgnoresYearsOutsideCycle(t *testing.T) {
	item := approvedItem(1000)
	item.QuantityByYear = `{"2030": 5, "2025": 1}`

	dist := ComputePriceDistribution([]model.ISSPRequest{cycleRequest(item)}, "2024-2026")

	// Only the cycle's own years carry aggregates; stray years vanish.
	bucket := dist.Buckets[0]
	assert.NotContains(t, bucket.ByYear, "2030")
	assert.NotContains(t, dist.TotalsByYear, "2030")
	assert.Equal(t, 1, bucket.ByYear["2025"].Count)
	assert.Equal(t, 1, dist.TotalsByYear["2025"].Count)

	// The item itself still counts toward the bucket.
	assert.Equal(t, 1, bucket.Count)
	assert.Equal(t, float64(1000), dist.TotalValue)
}

func TestComputePriceDistributionUnparsableCycleHasNoYearAggregates(t *testing.T) {
	item := approvedItem(1000)
	item.QuantityByYear = `{"2024": 2}`
	req := cycleRequest(item)
	req.YearCycle = "garbage"

	dist := ComputePriceDistribution([]model.ISSPRequest{req}, "garbage")

	// Price aggregates still work; every year-indexed map stays empty.
	assert.Equal(t, 1, dist.TotalItems)
	assert.Equal(t, float64(1000), dist.TotalValue)
	assert.Nil(t, dist.Years)
	assert.Empty(t, dist.TotalsByYear)
	for _, b := range dist.Buckets {
		assert.Empty(t, b.ByYear)
	}
}

func TestComputePriceDistributionEndToEnd(t *testing.T) {
	req := cycleRequest(model.LineItem{
		Name:           "server",
		ApprovalStatus: model.ItemStatusApproved,
		Price:          decimal.NewFromInt(75000),
		Quantity:       2,
	})

	groups := BuildUnitGroups([]model.ISSPRequest{req}, "2024-2026")
	group, ok := groups["CCIS"]
	require.True(t, ok)
	assert.Equal(t, 1, group.RequestCount)
	assert.Equal(t, StatusLabelSubmitted, group.Status)

	dist := ComputePriceDistribution([]model.ISSPRequest{req}, "2024-2026")
	var mid *model.PriceBucket
	for i := range dist.Buckets {
		if dist.Buckets[i].Label == "₱50k–₱100k" {
			mid = &dist.Buckets[i]
		}
	}
	require.NotNil(t, mid)
	assert.Equal(t, 1, mid.Count)
	assert.Equal(t, float64(75000), mid.TotalValue)
	assert.Equal(t, 100, mid.Percentage)
}
