// Package reports aggregates kiosk orders for the sales screen.
package reports

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/model"
)

const (
	TopItemsLimit = 5
	UndatedKey    = "sin-fecha"
	UnknownStatus = "unknown"
)

type Report struct {
	TotalOrders       int            `json:"totalOrders"`
	TotalCents        int64          `json:"totalCents"`
	SubtotalCents     int64          `json:"subtotalCents"`
	AvgTicketCents    int64          `json:"avgTicketCents"`
	TopItems          []ItemTotal    `json:"topItems"`
	DailyTotals       []DayTotal     `json:"dailyTotals"`
	BreakdownByStatus map[string]int `json:"breakdownByStatus"`
}

type ItemTotal struct {
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	TotalCents int64  `json:"totalCents"`
}

type DayTotal struct {
	Date       string `json:"date"`
	TotalCents int64  `json:"totalCents"`
	Orders     int    `json:"orders"`
}

// Aggregate builds the report for orders. Days are cut in loc.
func Aggregate(orders []model.KioskOrder, loc *time.Location) Report {
	if loc == nil {
		loc = time.UTC
	}

	report := Report{
		TotalOrders:       len(orders),
		TotalCents:        lo.SumBy(orders, func(o model.KioskOrder) int64 { return o.TotalCents }),
		SubtotalCents:     lo.SumBy(orders, func(o model.KioskOrder) int64 { return o.SubtotalCents }),
		BreakdownByStatus: map[string]int{},
	}
	report.AvgTicketCents = roundedAverage(report.TotalCents, report.TotalOrders)

	items := map[string]*ItemTotal{}
	days := map[string]*DayTotal{}

	for _, order := range orders {
		key := UndatedKey
		if !order.CreatedAt.IsZero() {
			key = order.CreatedAt.In(loc).Format("2006-01-02")
		}
		day, ok := days[key]
		if !ok {
			day = &DayTotal{Date: key}
			days[key] = day
		}
		day.TotalCents += order.TotalCents
		day.Orders++

		status := order.Status
		if status == "" {
			status = UnknownStatus
		}
		report.BreakdownByStatus[status]++

		for _, it := range order.Items {
			itemKey := it.ProductName
			if itemKey == "" {
				itemKey = it.ProductID
			}
			if itemKey == "" {
				itemKey = "item"
			}
			total, ok := items[itemKey]
			if !ok {
				name := it.ProductName
				if name == "" {
					name = "Producto"
				}
				total = &ItemTotal{Name: name}
				items[itemKey] = total
			}
			total.Quantity += it.Quantity
			total.TotalCents += itemTotal(it)
		}
	}

	report.TopItems = lo.Map(lo.Values(items), func(it *ItemTotal, _ int) ItemTotal { return *it })
	sort.Slice(report.TopItems, func(i, j int) bool {
		a, b := report.TopItems[i], report.TopItems[j]
		if a.TotalCents != b.TotalCents {
			return a.TotalCents > b.TotalCents
		}
		return a.Name < b.Name
	})
	if len(report.TopItems) > TopItemsLimit {
		report.TopItems = report.TopItems[:TopItemsLimit]
	}

	report.DailyTotals = lo.Map(lo.Values(days), func(d *DayTotal, _ int) DayTotal { return *d })
	sort.Slice(report.DailyTotals, func(i, j int) bool {
		return report.DailyTotals[i].Date < report.DailyTotals[j].Date
	})

	return report
}

func itemTotal(it model.KioskOrderItem) int64 {
	if it.TotalPriceCents != 0 {
		return it.TotalPriceCents
	}
	return int64(it.Quantity) * it.UnitPriceCents
}

// roundedAverage rounds half away from zero.
func roundedAverage(total int64, n int) int64 {
	if n == 0 {
		return 0
	}
	d := int64(n)
	if total < 0 {
		return -((-total*2 + d) / (2 * d))
	}
	return (total*2 + d) / (2 * d)
}
