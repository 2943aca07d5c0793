// Package api provides the HTTP API for observing the economy.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/protheus99/econsim-sub000/internal/engine"
	"github.com/protheus99/econsim-sub000/internal/firm"
	"github.com/protheus99/econsim-sub000/internal/ledger"
	"github.com/protheus99/econsim-sub000/internal/market"
)

// Server serves world state over HTTP.
type Server struct {
	World    *engine.World
	Sched    *engine.Scheduler
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	// The full-economy report walks every firm, order, and ledger
	// bucket; keep it off the hot path for scrapers.
	reportLimiter := NewRateLimiter(60, time.Hour)

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/state", s.handleState)
	mux.HandleFunc("/api/v1/firms", s.handleFirms)
	mux.HandleFunc("/api/v1/firm/", s.handleFirmDetail)
	mux.HandleFunc("/api/v1/corporations", s.handleCorporations)
	mux.HandleFunc("/api/v1/cities", s.handleCities)
	mux.HandleFunc("/api/v1/catalog", s.handleCatalog)
	mux.HandleFunc("/api/v1/market", s.handleMarket)
	mux.HandleFunc("/api/v1/market/orders", s.handleOrders)
	mux.HandleFunc("/api/v1/market/order/", s.handleOrderDetail)
	mux.HandleFunc("/api/v1/ledger", s.handleLedger)
	mux.HandleFunc("/api/v1/ledger/hourly", s.handleLedgerHourly)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/report", RateLimitMiddleware(reportLimiter, s.handleReport))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/pause", s.adminOnly(s.handlePause))
	mux.HandleFunc("/api/v1/resume", s.adminOnly(s.handleResume))
	mux.HandleFunc("/api/v1/market/enabled", s.adminOnly(s.handleMarketEnabled))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// checkBearerToken returns true if the request carries the admin token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no ECONSIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	t := s.World.LastTime
	trades, value := s.World.Ledger.Totals()
	writeJSON(w, map[string]any{
		"time":         t,
		"sim_time":     t.String(),
		"speed":        s.Sched.Speed,
		"paused":       s.Sched.Paused,
		"firms":        s.World.Stats.Firms,
		"stalled":      s.World.Stats.StalledFirms,
		"total_cash":   s.World.Stats.TotalCash,
		"total_debt":   s.World.Stats.TotalDebt,
		"total_profit": s.World.Stats.TotalProfit,
		"trades_total": trades,
		"trade_value":  value,
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.World.GetState())
}

func (s *Server) handleFirms(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	city := r.URL.Query().Get("city")

	result := []engine.FirmStatus{}
	for _, f := range s.World.Firms {
		if kind != "" && firm.KindName(f.Kind) != kind {
			continue
		}
		if city != "" && f.CityID != city {
			continue
		}
		result = append(result, s.World.FirmStatus(f))
	}
	writeJSON(w, result)
}

func (s *Server) handleFirmDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/firm/")
	if id == "" {
		http.Error(w, "missing firm id", http.StatusBadRequest)
		return
	}
	f := s.World.Resolve(id)
	if f == nil {
		http.Error(w, "firm not found", http.StatusNotFound)
		return
	}

	trades := s.World.Ledger.Filter(ledger.Query{FirmID: f.ID})
	if len(trades) > 50 {
		trades = trades[len(trades)-50:]
	}

	writeJSON(w, map[string]any{
		"firm":          f,
		"status":        s.World.FirmStatus(f),
		"recent_trades": trades,
	})
}

func (s *Server) handleCorporations(w http.ResponseWriter, r *http.Request) {
	type corpSummary struct {
		ID         string              `json:"id"`
		Name       string              `json:"name"`
		FirmIDs    []string            `json:"firm_ids"`
		Financials firm.CorpFinancials `json:"financials"`
	}

	result := make([]corpSummary, 0, len(s.World.Corps))
	for _, c := range s.World.Corps {
		result = append(result, corpSummary{
			ID:         c.ID,
			Name:       c.Name,
			FirmIDs:    c.FirmIDs,
			Financials: c.Rollup(s.World.Resolve),
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.World.Atlas.Cities())
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if q := r.URL.Query().Get("q"); q != "" {
		writeJSON(w, s.World.Catalog.Search(q, 10))
		return
	}
	writeJSON(w, s.World.Catalog.All())
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.World.Market.Snapshot())
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	status := market.OrderStatus(r.URL.Query().Get("status"))
	switch status {
	case market.StatusDelivered:
		writeJSON(w, s.World.Market.Completed())
	case market.StatusExpired:
		writeJSON(w, s.World.Market.Expired())
	default:
		writeJSON(w, s.World.Market.Orders(status))
	}
}

func (s *Server) handleOrderDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/market/order/")
	if id == "" {
		http.Error(w, "missing order id", http.StatusBadRequest)
		return
	}
	order := s.World.Market.Order(id)
	if order == nil {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}
	writeJSON(w, order)
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	q := ledger.Query{
		Category: ledger.Category(r.URL.Query().Get("category")),
		FirmID:   r.URL.Query().Get("firm"),
		CityID:   r.URL.Query().Get("city"),
		Material: r.URL.Query().Get("material"),
		Status:   ledger.Status(r.URL.Query().Get("status")),
	}

	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	entries := s.World.Ledger.Filter(q)
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	writeJSON(w, entries)
}

func (s *Server) handleLedgerHourly(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.World.Ledger.HourlyStats())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	events := s.World.Events

	if category := r.URL.Query().Get("category"); category != "" {
		var filtered []engine.Event
		for _, e := range events {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	writeJSON(w, events)
}

// handleReport builds the full economy rollup: per-archetype aggregates,
// corporation financials, market and ledger category totals.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	type kindAgg struct {
		Firms       int     `json:"firms"`
		Cash        float64 `json:"cash"`
		Debt        float64 `json:"debt"`
		TotalProfit float64 `json:"total_profit"`
		Stocked     float64 `json:"stocked"`
	}

	byKind := make(map[string]*kindAgg)
	for _, f := range s.World.Firms {
		k := firm.KindName(f.Kind)
		agg := byKind[k]
		if agg == nil {
			agg = &kindAgg{}
			byKind[k] = agg
		}
		agg.Firms++
		agg.Cash += f.Cash
		agg.Debt += f.Debt
		agg.TotalProfit += f.TotalProfit
		agg.Stocked += f.Inventory.Total()
	}

	corps := make(map[string]firm.CorpFinancials, len(s.World.Corps))
	for _, c := range s.World.Corps {
		corps[c.Name] = c.Rollup(s.World.Resolve)
	}

	catCounts, catValues := s.World.Ledger.CategoryTotals()

	writeJSON(w, map[string]any{
		"time":               s.World.LastTime,
		"stats":              s.World.Stats,
		"by_kind":            byKind,
		"corporations":       corps,
		"market":             s.World.Market.Snapshot(),
		"trades_by_category": catCounts,
		"value_by_category":  catValues,
		"hourly":             s.World.Ledger.HourlyStats(),
	})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed int `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 1 || req.Speed > 1000 {
			http.Error(w, "speed must be 1-1000", http.StatusBadRequest)
			return
		}
		s.Sched.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}
	writeJSON(w, map[string]int{"speed": s.Sched.Speed})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		s.Sched.Pause()
		slog.Info("simulation paused", "hour", s.Sched.Hours)
	}
	writeJSON(w, map[string]bool{"paused": s.Sched.Paused})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		s.Sched.Resume()
		slog.Info("simulation resumed", "hour", s.Sched.Hours)
	}
	writeJSON(w, map[string]bool{"paused": s.Sched.Paused})
}

func (s *Server) handleMarketEnabled(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Enabled bool `json:"enabled"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		s.World.Market.Enabled = req.Enabled
		slog.Info("market toggled", "enabled", req.Enabled)
	}
	writeJSON(w, map[string]bool{"enabled": s.World.Market.Enabled})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
