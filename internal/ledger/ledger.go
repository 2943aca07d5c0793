// Package ledger records settled trades. The ledger is append-only and
// purely observational — it is never authoritative for firm state.
package ledger

import (
	"github.com/google/uuid"

	"github.com/protheus99/econsim-sub000/internal/clock"
)

// Category classifies a trade.
type Category string

const (
	CategoryInterFirm      Category = "inter-firm"
	CategoryRetail         Category = "retail"
	CategoryConsumerSale   Category = "consumer-sale"
	CategoryExternalMarket Category = "external-market"
)

// Status marks how the trade settled.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusPartial   Status = "partial" // delivery clipped to seller availability
)

// Party is an immutable snapshot of one side of a trade.
type Party struct {
	FirmID string `json:"firm_id,omitempty"`
	Name   string `json:"name"`
	CityID string `json:"city_id,omitempty"`
}

// Entry is one settled trade. Immutable once appended.
type Entry struct {
	ID        string         `json:"id"`
	Category  Category       `json:"category"`
	Seller    Party          `json:"seller"`
	Buyer     Party          `json:"buyer"`
	Material  string         `json:"material"`
	Quantity  float64        `json:"quantity"`
	UnitPrice float64        `json:"unit_price"`
	Total     float64        `json:"total"`
	Status    Status         `json:"status"`
	Time      clock.GameTime `json:"time"`
}

// HourStats is one bucket of the rolling statistics window.
type HourStats struct {
	Hour   uint64  `json:"hour"` // monotonic simulation hour
	Trades int     `json:"trades"`
	Volume float64 `json:"volume"`
	Value  float64 `json:"value"`
}

// Ledger is the bounded append-only trade log with rolling statistics.
type Ledger struct {
	maxEntries  int
	statsWindow int // hours of HourStats retained
	entries     []Entry
	hourly      []HourStats
	currentHour HourStats
	totalTrades int
	totalValue  float64
	byCategory  map[Category]int
	valueByCat  map[Category]float64

	// OnAppend, when set, observes every stored entry.
	OnAppend func(Entry)
}

// New creates a ledger retaining up to maxEntries trades and
// statsWindow hours of rolling statistics.
func New(maxEntries, statsWindow int) *Ledger {
	return &Ledger{
		maxEntries:  maxEntries,
		statsWindow: statsWindow,
		byCategory:  make(map[Category]int),
		valueByCat:  make(map[Category]float64),
	}
}

// Append records a settled trade, trimming the oldest entry past
// capacity. Returns the stored entry.
func (l *Ledger) Append(e Entry) Entry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Total == 0 {
		e.Total = e.Quantity * e.UnitPrice
	}

	l.entries = append(l.entries, e)
	if len(l.entries) > l.maxEntries {
		l.entries = l.entries[len(l.entries)-l.maxEntries:]
	}

	l.totalTrades++
	l.totalValue += e.Total
	l.byCategory[e.Category]++
	l.valueByCat[e.Category] += e.Total

	l.currentHour.Trades++
	l.currentHour.Volume += e.Quantity
	l.currentHour.Value += e.Total

	if l.OnAppend != nil {
		l.OnAppend(e)
	}
	return e
}

// FinalizeHour closes the current statistics bucket at the end of an
// hour, dropping buckets past the retention window.
func (l *Ledger) FinalizeHour(hour uint64) {
	l.currentHour.Hour = hour
	l.hourly = append(l.hourly, l.currentHour)
	if len(l.hourly) > l.statsWindow {
		l.hourly = l.hourly[len(l.hourly)-l.statsWindow:]
	}
	l.currentHour = HourStats{}
}

// Entries returns the retained trades, oldest first. The returned slice
// is shared; callers must not mutate it.
func (l *Ledger) Entries() []Entry {
	return l.entries
}

// Recent returns up to n most recent trades, oldest first.
func (l *Ledger) Recent(n int) []Entry {
	if n <= 0 || n >= len(l.entries) {
		return l.entries
	}
	return l.entries[len(l.entries)-n:]
}

// Filter returns retained entries matching every non-zero criterion.
func (l *Ledger) Filter(q Query) []Entry {
	var out []Entry
	for _, e := range l.entries {
		if q.Category != "" && e.Category != q.Category {
			continue
		}
		if q.FirmID != "" && e.Seller.FirmID != q.FirmID && e.Buyer.FirmID != q.FirmID {
			continue
		}
		if q.CityID != "" && e.Seller.CityID != q.CityID && e.Buyer.CityID != q.CityID {
			continue
		}
		if q.Material != "" && e.Material != q.Material {
			continue
		}
		if q.Status != "" && e.Status != q.Status {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Query selects ledger entries. Zero-valued fields match everything.
type Query struct {
	Category Category
	FirmID   string
	CityID   string
	Material string
	Status   Status
}

// HourlyStats returns the rolling per-hour window, oldest first.
func (l *Ledger) HourlyStats() []HourStats {
	return l.hourly
}

// DailyRollup sums the most recent full day of hourly buckets.
func (l *Ledger) DailyRollup() HourStats {
	var day HourStats
	start := 0
	if len(l.hourly) > clock.HoursPerDay {
		start = len(l.hourly) - clock.HoursPerDay
	}
	for _, h := range l.hourly[start:] {
		day.Trades += h.Trades
		day.Volume += h.Volume
		day.Value += h.Value
	}
	if len(l.hourly) > 0 {
		day.Hour = l.hourly[len(l.hourly)-1].Hour
	}
	return day
}

// Totals returns the running aggregate counters.
func (l *Ledger) Totals() (trades int, value float64) {
	return l.totalTrades, l.totalValue
}

// CategoryTotals returns trade counts and value per category.
func (l *Ledger) CategoryTotals() (map[Category]int, map[Category]float64) {
	counts := make(map[Category]int, len(l.byCategory))
	values := make(map[Category]float64, len(l.valueByCat))
	for k, v := range l.byCategory {
		counts[k] = v
	}
	for k, v := range l.valueByCat {
		values[k] = v
	}
	return counts, values
}
