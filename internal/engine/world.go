package engine

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/protheus99/econsim-sub000/internal/catalog"
	"github.com/protheus99/econsim-sub000/internal/clock"
	"github.com/protheus99/econsim-sub000/internal/config"
	"github.com/protheus99/econsim-sub000/internal/entropy"
	"github.com/protheus99/econsim-sub000/internal/firm"
	"github.com/protheus99/econsim-sub000/internal/geo"
	"github.com/protheus99/econsim-sub000/internal/ledger"
	"github.com/protheus99/econsim-sub000/internal/market"
)

// World is the owned simulation context. Every subsystem receives it by
// reference; there is no ambient global state.
type World struct {
	Catalog *catalog.Catalog
	Atlas   *geo.Atlas
	Trans   *geo.Transporter
	Rand    *entropy.Source
	Ledger  *ledger.Ledger
	Market  *market.Market

	Firms     []*firm.Firm
	FirmIndex map[string]*firm.Firm
	Corps     []*firm.Corporation

	Events   []Event
	LastTime clock.GameTime
	Stats    WorldStats

	eventsCfg config.EventsConfig
	growthCfg config.GrowthConfig
}

// Event is a notable occurrence retained for the read surface.
type Event struct {
	Hour        uint64 `json:"hour"`
	Description string `json:"description"`
	Category    string `json:"category"` // "production", "market", "finance", "shock"
}

// maxEvents bounds the event ring.
const maxEvents = 1000

// WorldStats aggregates firm financials per day.
type WorldStats struct {
	Firms        int     `json:"firms"`
	TotalCash    float64 `json:"total_cash"`
	TotalDebt    float64 `json:"total_debt"`
	TotalProfit  float64 `json:"total_profit"`
	StalledFirms int     `json:"stalled_firms"`
	TradesToday  int     `json:"trades_today"`
	ValueToday   float64 `json:"value_today"`
}

// NewWorld wires a world from generated components.
func NewWorld(cfg config.Config, cat *catalog.Catalog, atlas *geo.Atlas, firms []*firm.Firm, corps []*firm.Corporation) *World {
	rnd := entropy.NewSource(cfg.Seed)
	led := ledger.New(5000, clock.HoursPerDay*7)
	trans := geo.NewTransporter(atlas)

	w := &World{
		Catalog:   cat,
		Atlas:     atlas,
		Trans:     trans,
		Rand:      rnd,
		Ledger:    led,
		Firms:     firms,
		FirmIndex: make(map[string]*firm.Firm, len(firms)),
		Corps:     corps,
		eventsCfg: cfg.Events,
		growthCfg: cfg.Growth,
	}
	for _, f := range firms {
		w.FirmIndex[f.ID] = f
	}
	w.Market = market.New(cfg.Market, cat, atlas, trans, rnd.Fork(7), led)
	w.updateStats()
	return w
}

// Resolve looks up a firm by ID.
func (w *World) Resolve(id string) *firm.Firm {
	return w.FirmIndex[id]
}

// env builds the per-tick context for one firm.
func (w *World) env(f *firm.Firm, t clock.GameTime) *firm.Env {
	return &firm.Env{
		Time:    t,
		Catalog: w.Catalog,
		City:    w.Atlas.City(f.CityID),
		Rand:    w.Rand,
		Resolve: w.Resolve,
		RecordSale: func(rf *firm.Firm, productID string, qty, unitPrice float64) {
			w.Ledger.Append(ledger.Entry{
				Category:  ledger.CategoryConsumerSale,
				Seller:    ledger.Party{FirmID: rf.ID, Name: rf.Name, CityID: rf.CityID},
				Buyer:     ledger.Party{Name: "Consumer"},
				Material:  productID,
				Quantity:  qty,
				UnitPrice: unitPrice,
				Status:    ledger.StatusCompleted,
				Time:      t,
			})
		},
	}
}

// TickHour runs the hourly cascade in fixed order: every firm produces,
// crowded warehouses liquidate, shortfalls procure, suppliers bid, the
// market processes, the ledger closes its hour bucket.
func (w *World) TickHour(t clock.GameTime) {
	w.LastTime = t

	stalled := 0
	for _, f := range w.Firms {
		env := w.env(f, t)
		result := f.ProduceHourly(env)
		if result.Stall != "" {
			stalled++
			if result.Stall == firm.StallNoReserves {
				w.record(t, fmt.Sprintf("%s halted: reserves exhausted", f.Name), "production")
			}
		}

		// Wages run in two half-month installments: mid-month here,
		// the second at settlement.
		if t.MidMonth() {
			f.PayWages(env, 0.5)
		}
	}
	w.Stats.StalledFirms = stalled

	w.liquidateSurplus(t)
	w.submitProcurement(t)
	w.placeSupplierBids(t)
	w.Market.TickHour(t, w.Resolve)
	w.Ledger.FinalizeHour(t.TotalHours)
}

// TickDay runs daily work: event injection and the structured report.
func (w *World) TickDay(t clock.GameTime) {
	w.injectEvents(t)
	w.updateStats()

	day := w.Ledger.DailyRollup()
	w.Stats.TradesToday = day.Trades
	w.Stats.ValueToday = day.Value

	ms := w.Market.Snapshot()
	slog.Info("daily report",
		"time", t.String(),
		"firms", w.Stats.Firms,
		"stalled", w.Stats.StalledFirms,
		"cash", humanize.CommafWithDigits(w.Stats.TotalCash, 0),
		"debt", humanize.CommafWithDigits(w.Stats.TotalDebt, 0),
		"trades_today", day.Trades,
		"trade_value", humanize.CommafWithDigits(day.Value, 0),
		"orders_bidding", ms.ByStatus[market.StatusBidding],
		"orders_awarded", ms.ByStatus[market.StatusAwarded],
		"delivered_total", ms.Delivered,
	)
}

// TickMonth settles every firm: second wage installment, operating
// costs, loan servicing, deposit interest, profit realization, then
// shortfall funding, surplus deposits, and city/country growth.
func (w *World) TickMonth(t clock.GameTime) {
	for _, f := range w.Firms {
		env := w.env(f, t)
		f.PayWages(env, 0.5)
		if f.Kind == firm.KindLender {
			f.CollectLoans(env)
			f.AccrueDeposits()
		}
		f.UpdateMonthly(env)

		if f.Cash < 0 {
			w.record(t, fmt.Sprintf("%s ended the month insolvent (%.0f)", f.Name, f.Cash), "finance")
		}
	}

	w.fundShortfalls(t)
	w.placeDeposits()

	for _, city := range w.Atlas.Cities() {
		city.Grow(w.growthCfg.PopulationRate, w.growthCfg.SalaryDrift)
	}

	w.updateStats()
	slog.Info("monthly settlement",
		"time", t.String(),
		"total_profit", humanize.CommafWithDigits(w.Stats.TotalProfit, 0),
	)
}

// TickYear logs the annual summary.
func (w *World) TickYear(t clock.GameTime) {
	trades, value := w.Ledger.Totals()
	slog.Info("year closed",
		"year", t.Year,
		"trades_total", trades,
		"trade_value_total", humanize.CommafWithDigits(value, 0),
	)
}

// record appends to the bounded event ring.
func (w *World) record(t clock.GameTime, desc, category string) {
	w.Events = append(w.Events, Event{Hour: t.TotalHours, Description: desc, Category: category})
	if len(w.Events) > maxEvents {
		w.Events = w.Events[len(w.Events)-maxEvents:]
	}
}

func (w *World) updateStats() {
	s := WorldStats{Firms: len(w.Firms), StalledFirms: w.Stats.StalledFirms,
		TradesToday: w.Stats.TradesToday, ValueToday: w.Stats.ValueToday}
	for _, f := range w.Firms {
		s.TotalCash += f.Cash
		s.TotalDebt += f.Debt
		s.TotalProfit += f.TotalProfit
	}
	w.Stats = s
}
