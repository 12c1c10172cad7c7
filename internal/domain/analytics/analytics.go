// Package analytics derives revenue, traffic, and top-seller statistics from
// the order log. Compute is a pure function of its inputs and recomputes
// everything from scratch on each call — the filter window changes between
// calls and mutation frequency is far too low for caching to pay for its
// invalidation complexity.
package analytics

import (
	"sort"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/karak-pos/internal/domain/order"
)

// Window selects the reporting period, evaluated against each order's
// creation timestamp in local time.
type Window string

const (
	WindowToday     Window = "today"
	WindowThisMonth Window = "month"
	WindowAllTime   Window = "all"
)

// ErrUnknownWindow is returned by ParseWindow for unrecognized values.
var ErrUnknownWindow = errors.New("unknown metrics window")

// ParseWindow maps a query value to a Window. Empty defaults to Today,
// matching the dashboard's initial filter.
func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case WindowToday, WindowThisMonth, WindowAllTime:
		return Window(s), nil
	case "":
		return WindowToday, nil
	}
	return "", errors.Wrapf(ErrUnknownWindow, "%q", s)
}

// ItemSales is one entry of the top-seller ranking.
type ItemSales struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Metrics is the aggregate derived from one filtered pass over the journal.
//
// Revenue and GratuityTotal exclude Wastage orders (discarded stock is not a
// sale), while MethodCounts includes them — the method breakdown reflects all
// transaction types. That asymmetry is intentional.
type Metrics struct {
	Revenue           decimal.Decimal             `json:"revenue"`
	GratuityTotal     decimal.Decimal             `json:"gratuity_total"`
	AverageOrderValue decimal.Decimal             `json:"average_order_value"`
	OrderCount        int                         `json:"order_count"`
	TotalItemsSold    int                         `json:"total_items_sold"`
	MethodCounts      map[order.PaymentMethod]int `json:"method_counts"`
	HourlyTraffic     [24]int                     `json:"hourly_traffic"`
	ItemSales         map[string]int              `json:"item_sales"`
	TopItems          []ItemSales                 `json:"top_items"`
}

// topItemCount caps the top-seller ranking length.
const topItemCount = 5

// Compute aggregates the orders falling inside the window relative to now.
func Compute(orders []order.Order, w Window, now time.Time) Metrics {
	m := Metrics{
		Revenue:           decimal.Zero,
		GratuityTotal:     decimal.Zero,
		AverageOrderValue: decimal.Zero,
		MethodCounts:      make(map[order.PaymentMethod]int, 4),
		ItemSales:         make(map[string]int),
	}
	for _, method := range order.Methods() {
		m.MethodCounts[method] = 0
	}

	// firstSeen preserves encounter order so quantity ties in the ranking
	// resolve to the earlier-seen item (stable sort below).
	var firstSeen []string

	for _, o := range orders {
		if !inWindow(o.CreatedAt, w, now) {
			continue
		}
		m.OrderCount++

		if o.Method != order.MethodWastage {
			m.Revenue = m.Revenue.Add(o.Total.Sub(o.Gratuity))
			m.GratuityTotal = m.GratuityTotal.Add(o.Gratuity)
		}
		m.MethodCounts[o.Method]++
		m.HourlyTraffic[o.CreatedAt.Local().Hour()]++

		for _, l := range o.Lines {
			m.TotalItemsSold += l.Quantity
			if _, seen := m.ItemSales[l.Name]; !seen {
				firstSeen = append(firstSeen, l.Name)
			}
			m.ItemSales[l.Name] += l.Quantity
		}
	}

	if m.OrderCount > 0 {
		m.AverageOrderValue = m.Revenue.Div(decimal.NewFromInt(int64(m.OrderCount))).Round(2)
	}

	ranking := make([]ItemSales, len(firstSeen))
	for i, name := range firstSeen {
		ranking[i] = ItemSales{Name: name, Quantity: m.ItemSales[name]}
	}
	sort.SliceStable(ranking, func(a, b int) bool {
		return ranking[a].Quantity > ranking[b].Quantity
	})
	if len(ranking) > topItemCount {
		ranking = ranking[:topItemCount]
	}
	m.TopItems = ranking

	return m
}

func inWindow(t time.Time, w Window, now time.Time) bool {
	t = t.Local()
	now = now.Local()
	switch w {
	case WindowToday:
		return t.Year() == now.Year() && t.YearDay() == now.YearDay()
	case WindowThisMonth:
		return t.Year() == now.Year() && t.Month() == now.Month()
	default:
		return true
	}
}
