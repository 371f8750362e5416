package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"issp/internal/model"

	"gorm.io/gorm"
)

// bucketRange defines one of the five fixed price buckets. Matching walks
// the list in order and takes the first bucket whose max covers the price,
// so fractional prices between bucket edges still land somewhere.
type bucketRange struct {
	label     string
	min       float64
	max       float64
	unbounded bool
}

var priceBuckets = []bucketRange{
	{label: "₱0–₱10k", min: 0, max: 10000},
	{label: "₱10k–₱50k", min: 10001, max: 50000},
	{label: "₱50k–₱100k", min: 50001, max: 100000},
	{label: "₱100k–₱200k", min: 100001, max: 200000},
	{label: "₱200k+", min: 200001, unbounded: true},
}

// ParseYearCycle expands a "START-END" cycle string into its individual
// years. Malformed input or an end year before the start yields nil.
func ParseYearCycle(yearCycle string) []string {
	parts := strings.SplitN(yearCycle, "-", 2)
	if len(parts) != 2 {
		return nil
	}
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil
	}
	if end < start {
		return nil
	}
	years := make([]string, 0, end-start+1)
	for y := start; y <= end; y++ {
		years = append(years, strconv.Itoa(y))
	}
	return years
}

// ComputePriceDistribution reduces a cycle's approved line items into the
// five fixed price buckets. Only items on requests matching the cycle
// exactly count, and only items already approved. Every bucket and every
// cycle year appears in the output even when empty, so charts always have
// a stable shape. Percentages are rounded per bucket independently and
// may not sum to exactly 100.
func ComputePriceDistribution(requests []model.ISSPRequest, yearCycle string) model.PriceDistribution {
	years := ParseYearCycle(yearCycle)

	dist := model.PriceDistribution{
		YearCycle:    yearCycle,
		Years:        years,
		Buckets:      make([]model.PriceBucket, len(priceBuckets)),
		TotalsByYear: make(map[string]*model.YearStats, len(years)),
	}
	for i, br := range priceBuckets {
		bucket := model.PriceBucket{
			Label:  br.label,
			Min:    br.min,
			ByYear: make(map[string]*model.YearStats, len(years)),
		}
		if !br.unbounded {
			max := br.max
			bucket.Max = &max
		}
		for _, y := range years {
			bucket.ByYear[y] = &model.YearStats{}
		}
		dist.Buckets[i] = bucket
	}
	for _, y := range years {
		dist.TotalsByYear[y] = &model.YearStats{}
	}

	totalValue := 0.0
	for ri := range requests {
		req := &requests[ri]
		if req.YearCycle != yearCycle {
			continue
		}
		for ii := range req.Items {
			item := &req.Items[ii]
			if item.ApprovalStatus != model.ItemStatusApproved {
				continue
			}

			price := item.Price.InexactFloat64()
			idx := -1
			for bi, br := range priceBuckets {
				if br.unbounded || price <= br.max {
					idx = bi
					break
				}
			}
			if idx < 0 {
				continue
			}

			bucket := &dist.Buckets[idx]
			bucket.Count++
			bucket.TotalValue += price
			dist.TotalItems++
			totalValue += price

			for year, qty := range item.YearQuantities() {
				// Only years of the parsed cycle are aggregated. With an
				// unparsable cycle the maps are empty and everything skips.
				ys, ok := bucket.ByYear[year]
				if !ok {
					continue
				}
				ys.Count += qty
				ys.TotalValue += float64(qty) * price

				ts := dist.TotalsByYear[year]
				ts.Count += qty
				ts.TotalValue += float64(qty) * price
			}
		}
	}

	dist.TotalValue = totalValue
	for i := range dist.Buckets {
		b := &dist.Buckets[i]
		if dist.TotalItems > 0 {
			b.Percentage = int(math.Round(float64(b.Count) / float64(dist.TotalItems) * 100))
		}
		if totalValue > 0 {
			b.ValuePercentage = int(math.Round(b.TotalValue / totalValue * 100))
		}
		if b.Count > 0 {
			b.AveragePrice = math.Round(b.TotalValue / float64(b.Count))
		}
	}
	if dist.TotalItems > 0 {
		dist.AveragePrice = math.Round(totalValue / float64(dist.TotalItems))
	}

	return dist
}

// StatisticsService exposes the dashboard price-distribution reducer over
// the persisted request store.
type StatisticsService interface {
	GetPriceDistribution(ctx context.Context, yearCycle string) (*model.PriceDistribution, error)
}

type statisticsService struct {
	db *gorm.DB
}

func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

func (s *statisticsService) GetPriceDistribution(ctx context.Context, yearCycle string) (*model.PriceDistribution, error) {
	if len(ParseYearCycle(yearCycle)) == 0 {
		return nil, fmt.Errorf("invalid year cycle '%s'", yearCycle)
	}

	var requests []model.ISSPRequest
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("year_cycle = ?", yearCycle).
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load requests: %w", err)
	}

	dist := ComputePriceDistribution(requests, yearCycle)
	return &dist, nil
}
