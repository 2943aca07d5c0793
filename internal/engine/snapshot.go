package engine

import (
	"fmt"

	"github.com/protheus99/econsim-sub000/internal/clock"
	"github.com/protheus99/econsim-sub000/internal/firm"
	"github.com/protheus99/econsim-sub000/internal/ledger"
	"github.com/protheus99/econsim-sub000/internal/market"
)

// State is the read-only world snapshot exposed to observers.
type State struct {
	Time          clock.GameTime     `json:"time"`
	Stats         WorldStats         `json:"stats"`
	Firms         []FirmStatus       `json:"firms"`
	Market        market.Stats       `json:"market"`
	RecentEvents  []Event            `json:"recent_events"`
	MarketHistory []ledger.HourStats `json:"market_history"`
}

// FirmStatus is the per-firm projection: derived, read-only.
type FirmStatus struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Kind        string  `json:"kind"`
	CityID      string  `json:"city_id"`
	Cash        float64 `json:"cash"`
	Debt        float64 `json:"debt"`
	TotalProfit float64 `json:"total_profit"`
	Stocked     float64 `json:"stocked"`
	Capacity    float64 `json:"capacity"`
	Detail      string  `json:"detail,omitempty"`
}

// GetState builds the snapshot. Observation only — nothing here mutates
// world state.
func (w *World) GetState() State {
	firms := make([]FirmStatus, 0, len(w.Firms))
	for _, f := range w.Firms {
		firms = append(firms, w.FirmStatus(f))
	}

	events := w.Events
	if len(events) > 50 {
		events = events[len(events)-50:]
	}

	return State{
		Time:          w.LastTime,
		Stats:         w.Stats,
		Firms:         firms,
		Market:        w.Market.Snapshot(),
		RecentEvents:  events,
		MarketHistory: w.Ledger.HourlyStats(),
	}
}

// FirmStatus projects one firm.
func (w *World) FirmStatus(f *firm.Firm) FirmStatus {
	s := FirmStatus{
		ID:          f.ID,
		Name:        f.Name,
		Kind:        firm.KindName(f.Kind),
		CityID:      f.CityID,
		Cash:        f.Cash,
		Debt:        f.Debt,
		TotalProfit: f.TotalProfit,
		Stocked:     f.Inventory.Total(),
		Capacity:    f.Inventory.Capacity,
	}
	switch f.Kind {
	case firm.KindExtractor:
		pct := 0.0
		if f.Extractor.ReserveTotal > 0 {
			pct = f.Extractor.ReserveRemaining / f.Extractor.ReserveTotal * 100
		}
		s.Detail = fmt.Sprintf("reserve %.1f%%", pct)
	case firm.KindHarvester:
		s.Detail = fmt.Sprintf("stand health %.0f%%", f.Harvester.Health*100)
	case firm.KindGrower:
		if f.Grower.Mode == firm.GrowLivestock {
			s.Detail = fmt.Sprintf("herd %d", f.Grower.HerdSize)
		} else {
			s.Detail = fmt.Sprintf("growth %.0f%%", f.Grower.GrowthPct)
		}
	case firm.KindRetailer:
		s.Detail = fmt.Sprintf("satisfaction %.0f%%", f.Retailer.Satisfaction*100)
	case firm.KindLender:
		s.Detail = fmt.Sprintf("%d loans on book", len(f.Lender.Loans))
	}
	return s
}
