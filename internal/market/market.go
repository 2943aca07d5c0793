// Package market implements the external market: an auction engine with
// daily bidding windows, scored winner selection, and delayed delivery
// that settles back into firm inventory and cash.
package market

import (
	"log/slog"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/protheus99/econsim-sub000/internal/catalog"
	"github.com/protheus99/econsim-sub000/internal/clock"
	"github.com/protheus99/econsim-sub000/internal/entropy"
	"github.com/protheus99/econsim-sub000/internal/firm"
	"github.com/protheus99/econsim-sub000/internal/geo"
	"github.com/protheus99/econsim-sub000/internal/ledger"
)

// Config holds the market's tunable rules.
type Config struct {
	BidOpenHour      int     `toml:"bid_open_hour"`      // AVAILABLE → BIDDING
	BidCloseHour     int     `toml:"bid_close_hour"`     // BIDDING → winner selection
	MaxOpensPerDay   int     `toml:"max_opens_per_day"`  // window cap
	MinOrderQuantity float64 `toml:"min_order_quantity"`
	OrderValueFloor  float64 `toml:"order_value_floor"` // target band for generated orders
	OrderValueCeil   float64 `toml:"order_value_ceil"`
	BidWindowHours   uint64  `toml:"bid_window_hours"`   // deadline slack for re-listing
	MaxTransitHours  int     `toml:"max_transit_hours"`  // capped fallback
	DirectMultiplier float64 `toml:"direct_multiplier"`  // expedited purchase premium
	SaleOutDiscount  float64 `toml:"sale_out_discount"`  // liquidation haircut
	ExternalDiscount float64 `toml:"external_discount"`  // generated-order price cut
	PoolPerTier      int     `toml:"pool_per_tier"`      // replenishment target
}

// DefaultConfig returns the standard market rules.
func DefaultConfig() Config {
	return Config{
		BidOpenHour:      8,
		BidCloseHour:     16,
		MaxOpensPerDay:   24,
		MinOrderQuantity: 5,
		OrderValueFloor:  400,
		OrderValueCeil:   2500,
		BidWindowHours:   96,
		MaxTransitHours:  72,
		DirectMultiplier: 1.5,
		SaleOutDiscount:  0.7,
		ExternalDiscount: 0.85,
		PoolPerTier:      4,
	}
}

// Market owns the order pools and the full auction lifecycle. All state
// transitions happen inside the single active tick — the world never
// mutates orders from elsewhere.
type Market struct {
	cfg     Config
	catalog *catalog.Catalog
	atlas   *geo.Atlas
	trans   *geo.Transporter
	rand    *entropy.Source
	ledger  *ledger.Ledger
	noise   opensimplex.Noise

	Enabled bool

	orders    map[string]*MarketOrder // live orders by ID
	completed []*MarketOrder          // delivered, bounded
	expired   []*MarketOrder          // expired, bounded

	orderSeq   uint64
	bidSeq     uint64
	opensToday int

	// Running statistics.
	totalBids  int
	totalSpend float64 // settled winning values
	ordersDone int
	ordersDied int
}

// retainedTerminal bounds the completed/expired history.
const retainedTerminal = 200

// New creates a market over the given collaborators.
func New(cfg Config, cat *catalog.Catalog, atlas *geo.Atlas, trans *geo.Transporter, rnd *entropy.Source, led *ledger.Ledger) *Market {
	return &Market{
		cfg:     cfg,
		catalog: cat,
		atlas:   atlas,
		trans:   trans,
		rand:    rnd,
		ledger:  led,
		noise:   opensimplex.NewNormalized(rnd.Seed),
		Enabled: true,
		orders:  make(map[string]*MarketOrder),
	}
}

// PriceDrift returns the smooth hourly price multiplier for a product,
// in roughly [0.85, 1.15]. Simplex noise over the hour axis keeps drift
// continuous and replayable from the world seed.
func (m *Market) PriceDrift(productID string, hour uint64) float64 {
	var offset float64
	for _, c := range productID {
		offset += float64(c)
	}
	n := m.noise.Eval2(float64(hour)/48.0, offset) // [0,1]
	return 0.85 + n*0.30
}

// CurrentPrice returns the drifted unit price for a product.
func (m *Market) CurrentPrice(productID string, hour uint64) (float64, error) {
	p := m.catalog.Get(productID)
	if p == nil {
		return 0, ErrProductNotFound
	}
	return p.BasePrice * m.PriceDrift(productID, hour), nil
}

// SubmitProcurement creates an internal order for a firm's shortfall.
// The buyer's cash is reserved at submission; transport is priced
// city-aware through the route estimator.
func (m *Market) SubmitProcurement(buyer *firm.Firm, productID string, quantity float64, now clock.GameTime) (*MarketOrder, error) {
	if !m.Enabled {
		return nil, ErrMarketDisabled
	}
	if quantity < m.cfg.MinOrderQuantity {
		return nil, ErrBelowMinimumOrderSize
	}
	unitPrice, err := m.CurrentPrice(productID, now.TotalHours)
	if err != nil {
		return nil, err
	}

	route := m.trans.FindOptimalRoute("", buyer.CityID, quantity, geo.PriorityStandard)
	offer := unitPrice*quantity + route.BaseCost
	if buyer.Cash < offer {
		return nil, ErrInsufficientFunds
	}

	transit := route.TransitHours
	if transit > m.cfg.MaxTransitHours {
		transit = m.cfg.MaxTransitHours
	}

	buyer.Cash -= offer // reserved until settlement
	m.orderSeq++
	order := &MarketOrder{
		ID:           newOrderID(),
		Seq:          m.orderSeq,
		ProductID:    productID,
		Quantity:     quantity,
		OfferPrice:   offer,
		Origin:       OriginInternal,
		BuyerFirmID:  buyer.ID,
		DestCityID:   buyer.CityID,
		Status:       StatusAvailable,
		CreatedAt:    now,
		Deadline:     now.TotalHours + m.cfg.BidWindowHours,
		TransitHours: transit,
		ReservedCash: offer,
	}
	m.orders[order.ID] = order
	return order, nil
}

// PlaceBid submits a supplier bid on an order in its bidding window.
// firmID is empty for external suppliers.
func (m *Market) PlaceBid(orderID, firmID, bidderName string, pricePerUnit, deliveryFee float64, now clock.GameTime) (*Bid, error) {
	order, ok := m.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	if order.Status != StatusBidding {
		return nil, ErrOrderNotInBidding
	}

	m.bidSeq++
	bid := &Bid{
		ID:           newOrderID(),
		OrderID:      orderID,
		FirmID:       firmID,
		BidderName:   bidderName,
		PricePerUnit: pricePerUnit,
		DeliveryFee:  deliveryFee,
		TotalValue:   pricePerUnit*order.Quantity + deliveryFee,
		PlacedAt:     now,
		Seq:          m.bidSeq,
	}
	order.Bids = append(order.Bids, bid)
	m.totalBids++
	return bid, nil
}

// TickHour runs the market's hourly processing in fixed order: delivery
// countdown, window transitions, deadline sweep, replenishment.
// Deliveries run first so an order awarded at the close hour keeps its
// full transit countdown until the next hour. Price drift is stateless
// (derived from the hour), so nothing to advance there.
func (m *Market) TickHour(now clock.GameTime, resolve func(id string) *firm.Firm) {
	if !m.Enabled {
		return
	}

	m.tickDeliveries(now, resolve)

	if now.Hour == 0 {
		m.opensToday = 0
	}
	if now.Hour == m.cfg.BidOpenHour {
		m.openWindows(now)
	}
	if now.Hour == m.cfg.BidCloseHour {
		m.closeWindows(now, resolve)
	}

	m.sweepDeadlines(now, resolve)
	m.replenish(now)
}

// sweepDeadlines expires AVAILABLE orders that outlived their deadline
// without ever awarding.
func (m *Market) sweepDeadlines(now clock.GameTime, resolve func(id string) *firm.Firm) {
	for _, order := range m.ordered() {
		if order.Status == StatusAvailable && now.TotalHours >= order.Deadline {
			m.expire(order, resolve)
		}
	}
}

// openWindows moves AVAILABLE orders into BIDDING, up to the daily cap.
func (m *Market) openWindows(now clock.GameTime) {
	for _, order := range m.ordered() {
		if order.Status != StatusAvailable {
			continue
		}
		if m.opensToday >= m.cfg.MaxOpensPerDay {
			break
		}
		if order.transition(StatusBidding) {
			m.opensToday++
		}
	}
}

// closeWindows selects winners for every BIDDING order. Zero-bid orders
// return to AVAILABLE while their deadline allows, otherwise expire.
func (m *Market) closeWindows(now clock.GameTime, resolve func(id string) *firm.Firm) {
	for _, order := range m.ordered() {
		if order.Status != StatusBidding {
			continue
		}

		winner := selectWinner(order.Bids)
		if winner == nil {
			if now.TotalHours < order.Deadline {
				order.transition(StatusAvailable)
			} else {
				m.expire(order, resolve)
			}
			continue
		}

		order.WinningBid = winner
		order.transition(StatusAwarded)
		order.DeliveryHoursRemaining = order.TransitHours
		slog.Debug("order awarded",
			"order", order.ID,
			"product", order.ProductID,
			"winner", winner.BidderName,
			"value", winner.TotalValue,
		)
	}
}

// selectWinner picks the strictly highest-scored bid; exact score ties
// go to the earliest submission.
func selectWinner(bids []*Bid) *Bid {
	var best *Bid
	for _, b := range bids {
		if best == nil || b.Score() > best.Score() ||
			(b.Score() == best.Score() && b.Seq < best.Seq) {
			best = b
		}
	}
	return best
}

// expire terminates an order and refunds any cash the buyer reserved at
// submission.
func (m *Market) expire(order *MarketOrder, resolve func(id string) *firm.Firm) {
	if !order.transition(StatusExpired) {
		return
	}
	delete(m.orders, order.ID)
	m.expired = append(m.expired, order)
	if len(m.expired) > retainedTerminal {
		m.expired = m.expired[len(m.expired)-retainedTerminal:]
	}
	m.ordersDied++

	if order.ReservedCash > 0 && order.BuyerFirmID != "" && resolve != nil {
		if buyer := resolve(order.BuyerFirmID); buyer != nil {
			buyer.Cash += order.ReservedCash
		} else {
			slog.Warn("expired order buyer missing, refund dropped",
				"order", order.ID, "buyer", order.BuyerFirmID)
		}
	}
}

// replenish generates external orders until each tier has its target
// pool of AVAILABLE demand. Generated orders are discounted and carry a
// generic destination.
func (m *Market) replenish(now clock.GameTime) {
	counts := map[catalog.Tier]int{}
	for _, o := range m.orders {
		if o.Status == StatusAvailable && o.Origin == OriginExternal {
			if p := m.catalog.Get(o.ProductID); p != nil {
				counts[p.Tier]++
			}
		}
	}

	for _, tier := range []catalog.Tier{catalog.TierRaw, catalog.TierSemiRaw, catalog.TierManufactured} {
		for counts[tier] < m.cfg.PoolPerTier {
			if m.generateExternal(tier, now) == nil {
				break
			}
			counts[tier]++
		}
	}
}

// generateExternal creates one discounted external-demand order whose
// value lands in the tier-adjusted target band.
func (m *Market) generateExternal(tier catalog.Tier, now clock.GameTime) *MarketOrder {
	products := m.catalog.ByTier(tier)
	if len(products) == 0 {
		return nil
	}
	p := products[m.rand.IntN(len(products))]

	// Tier-adjusted value band: manufactured orders run richer.
	floor, ceil := m.cfg.OrderValueFloor, m.cfg.OrderValueCeil
	switch tier {
	case catalog.TierSemiRaw:
		floor *= 1.2
		ceil *= 1.2
	case catalog.TierManufactured:
		floor *= 1.5
		ceil *= 1.5
	}

	unitPrice := p.BasePrice * m.PriceDrift(p.ID, now.TotalHours) * m.cfg.ExternalDiscount
	targetValue := m.rand.Range(floor, ceil)
	quantity := float64(int(targetValue / unitPrice))
	if quantity < m.cfg.MinOrderQuantity {
		quantity = m.cfg.MinOrderQuantity
	}

	m.orderSeq++
	order := &MarketOrder{
		ID:           newOrderID(),
		Seq:          m.orderSeq,
		ProductID:    p.ID,
		Quantity:     quantity,
		OfferPrice:   unitPrice * quantity,
		Origin:       OriginExternal,
		Status:       StatusAvailable,
		CreatedAt:    now,
		Deadline:     now.TotalHours + m.cfg.BidWindowHours,
		TransitHours: m.cfg.MaxTransitHours / 2,
	}
	m.orders[order.ID] = order
	return order
}

// ordered returns live orders in creation order, so every pass over the
// pool replays identically from the same seed.
func (m *Market) ordered() []*MarketOrder {
	out := make([]*MarketOrder, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// Orders returns live orders matching a status ("" for all), in creation
// order.
func (m *Market) Orders(status OrderStatus) []*MarketOrder {
	var out []*MarketOrder
	for _, o := range m.ordered() {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

// Order looks up a live order by ID.
func (m *Market) Order(id string) *MarketOrder {
	return m.orders[id]
}

// Completed returns recently delivered orders, oldest first.
func (m *Market) Completed() []*MarketOrder { return m.completed }

// Expired returns recently expired orders, oldest first.
func (m *Market) Expired() []*MarketOrder { return m.expired }

// Stats summarizes market activity for the read surface.
type Stats struct {
	ByStatus   map[OrderStatus]int `json:"by_status"`
	TotalBids  int                 `json:"total_bids"`
	TotalSpend float64             `json:"total_spend"`
	Delivered  int                 `json:"delivered"`
	Expired    int                 `json:"expired"`
}

// Snapshot returns current market statistics.
func (m *Market) Snapshot() Stats {
	s := Stats{
		ByStatus:   make(map[OrderStatus]int),
		TotalBids:  m.totalBids,
		TotalSpend: m.totalSpend,
		Delivered:  m.ordersDone,
		Expired:    m.ordersDied,
	}
	for _, o := range m.orders {
		s.ByStatus[o.Status]++
	}
	return s
}
