package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protheus99/econsim-sub000/internal/catalog"
	"github.com/protheus99/econsim-sub000/internal/clock"
	"github.com/protheus99/econsim-sub000/internal/entropy"
	"github.com/protheus99/econsim-sub000/internal/firm"
	"github.com/protheus99/econsim-sub000/internal/geo"
	"github.com/protheus99/econsim-sub000/internal/ledger"
)

// harness wires a market with a firm index for resolve callbacks.
type harness struct {
	market *Market
	ledger *ledger.Ledger
	firms  map[string]*firm.Firm
}

func newHarness(t *testing.T, mutate func(*Config)) *harness {
	t.Helper()
	cfg := DefaultConfig()
	cfg.PoolPerTier = 0 // no background demand unless a test wants it
	if mutate != nil {
		mutate(&cfg)
	}
	atlas := geo.DefaultWorld()
	led := ledger.New(1000, clock.HoursPerDay*7)
	m := New(cfg, catalog.Default(), atlas, geo.NewTransporter(atlas), entropy.NewSource(7), led)
	return &harness{market: m, ledger: led, firms: make(map[string]*firm.Firm)}
}

func (h *harness) add(f *firm.Firm) *firm.Firm {
	h.firms[f.ID] = f
	return f
}

func (h *harness) resolve(id string) *firm.Firm {
	return h.firms[id]
}

func (h *harness) buyer(cash float64) *firm.Firm {
	f := firm.New("Eisenfeld Steel Mill", firm.KindConverter, "eisenfeld", cash, 10000)
	f.Converter = &firm.ConverterState{OutputID: "steel"}
	return h.add(f)
}

func (h *harness) seller(productID string, stock, quality float64) *firm.Firm {
	f := firm.New("Nordia Mining Co.", firm.KindExtractor, "eisenfeld", 5000, 10000)
	f.Extractor = &firm.ExtractorState{ProductID: productID}
	f.Inventory.Add(productID, stock, quality)
	return h.add(f)
}

func TestSubmitProcurementReservesCash(t *testing.T) {
	h := newHarness(t, nil)
	buyer := h.buyer(100000)

	order, err := h.market.SubmitProcurement(buyer, "iron_ore", 10, clock.At(7))
	require.NoError(t, err)

	assert.Equal(t, StatusAvailable, order.Status)
	assert.Equal(t, OriginInternal, order.Origin)
	assert.Equal(t, buyer.ID, order.BuyerFirmID)
	assert.Equal(t, "eisenfeld", order.DestCityID)
	assert.Equal(t, uint64(7+96), order.Deadline)
	assert.Greater(t, order.ReservedCash, 0.0)
	assert.InDelta(t, 100000-order.ReservedCash, buyer.Cash, 1e-9, "offer is held at submission")
}

func TestSubmitProcurementGates(t *testing.T) {
	h := newHarness(t, nil)
	buyer := h.buyer(100000)
	now := clock.At(7)

	_, err := h.market.SubmitProcurement(buyer, "iron_ore", 3, now)
	assert.ErrorIs(t, err, ErrBelowMinimumOrderSize)

	_, err = h.market.SubmitProcurement(buyer, "unobtainium", 10, now)
	assert.ErrorIs(t, err, ErrProductNotFound)

	poor := h.buyer(1)
	_, err = h.market.SubmitProcurement(poor, "iron_ore", 10, now)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, 1.0, poor.Cash, "failed submission holds nothing")

	h.market.Enabled = false
	_, err = h.market.SubmitProcurement(buyer, "iron_ore", 10, now)
	assert.ErrorIs(t, err, ErrMarketDisabled)
}

func TestBidRequiresBiddingWindow(t *testing.T) {
	h := newHarness(t, nil)
	buyer := h.buyer(100000)
	order, err := h.market.SubmitProcurement(buyer, "iron_ore", 10, clock.At(7))
	require.NoError(t, err)

	_, err = h.market.PlaceBid("no-such-order", "", "X", 5, 0, clock.At(9))
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = h.market.PlaceBid(order.ID, "", "X", 5, 0, clock.At(9))
	assert.ErrorIs(t, err, ErrOrderNotInBidding, "order has not opened yet")
}

func TestHighestTotalBidWins(t *testing.T) {
	h := newHarness(t, nil)
	buyer := h.buyer(100000)
	order, err := h.market.SubmitProcurement(buyer, "iron_ore", 10, clock.At(7))
	require.NoError(t, err)

	h.market.TickHour(clock.At(8), h.resolve) // window opens
	require.Equal(t, StatusBidding, order.Status)

	_, err = h.market.PlaceBid(order.ID, "", "Supplier A", 90, 0, clock.At(9))
	require.NoError(t, err)
	_, err = h.market.PlaceBid(order.ID, "", "Supplier B", 100, 0, clock.At(10))
	require.NoError(t, err)

	h.market.TickHour(clock.At(16), h.resolve) // window closes
	require.Equal(t, StatusAwarded, order.Status)
	require.NotNil(t, order.WinningBid)
	assert.Equal(t, "Supplier B", order.WinningBid.BidderName)
	assert.InDelta(t, 1000.0, order.WinningBid.TotalValue, 1e-9)
}

func TestInternalBidderPreference(t *testing.T) {
	h := newHarness(t, nil)
	buyer := h.buyer(100000)
	seller := h.seller("iron_ore", 100, 0.8)
	order, err := h.market.SubmitProcurement(buyer, "iron_ore", 10, clock.At(7))
	require.NoError(t, err)

	h.market.TickHour(clock.At(8), h.resolve)

	// External bids more in absolute terms, but the internal bid scores
	// higher after the origin preference multiplier: 950×1.1 > 1000.
	_, err = h.market.PlaceBid(order.ID, "", "Outland Trading Co.", 100, 0, clock.At(9))
	require.NoError(t, err)
	_, err = h.market.PlaceBid(order.ID, seller.ID, seller.Name, 95, 0, clock.At(10))
	require.NoError(t, err)

	h.market.TickHour(clock.At(16), h.resolve)
	require.NotNil(t, order.WinningBid)
	assert.Equal(t, seller.ID, order.WinningBid.FirmID)
}

func TestExactScoreTieGoesToEarliestBid(t *testing.T) {
	h := newHarness(t, nil)
	buyer := h.buyer(100000)
	order, err := h.market.SubmitProcurement(buyer, "iron_ore", 10, clock.At(7))
	require.NoError(t, err)

	h.market.TickHour(clock.At(8), h.resolve)

	first, err := h.market.PlaceBid(order.ID, "", "First In", 100, 0, clock.At(9))
	require.NoError(t, err)
	second, err := h.market.PlaceBid(order.ID, "", "Second In", 100, 0, clock.At(9))
	require.NoError(t, err)
	require.Less(t, first.Seq, second.Seq)

	h.market.TickHour(clock.At(16), h.resolve)
	require.NotNil(t, order.WinningBid)
	assert.Equal(t, "First In", order.WinningBid.BidderName)
}

func TestAwardedOrderDeliversAfterTransit(t *testing.T) {
	h := newHarness(t, nil)
	buyer := h.buyer(100000)
	seller := h.seller("iron_ore", 100, 0.8)
	sellerCash := seller.Cash

	order, err := h.market.SubmitProcurement(buyer, "iron_ore", 10, clock.At(7))
	require.NoError(t, err)

	h.market.TickHour(clock.At(8), h.resolve)
	// Bid below the reserved offer so settlement refunds a surplus.
	_, err = h.market.PlaceBid(order.ID, seller.ID, seller.Name, 3, 1, clock.At(9))
	require.NoError(t, err)

	h.market.TickHour(clock.At(16), h.resolve)
	require.Equal(t, StatusAwarded, order.Status)
	require.Greater(t, order.ReservedCash, order.WinningBid.TotalValue)
	require.Equal(t, order.TransitHours, order.DeliveryHoursRemaining)
	require.Equal(t, 2, order.TransitHours, "local haul")

	h.market.TickHour(clock.At(17), h.resolve)
	assert.Equal(t, StatusAwarded, order.Status, "still in transit")
	assert.Equal(t, 0.0, buyer.Inventory.Quantity("iron_ore"))

	h.market.TickHour(clock.At(18), h.resolve)
	assert.Equal(t, StatusDelivered, order.Status)

	winValue := order.WinningBid.TotalValue
	assert.Equal(t, 10.0, buyer.Inventory.Quantity("iron_ore"))
	assert.InDelta(t, 0.8, buyer.Inventory.Quality("iron_ore"), 1e-9, "goods carry the seller's quality")
	assert.Equal(t, 90.0, seller.Inventory.Quantity("iron_ore"))
	assert.InDelta(t, sellerCash+winValue, seller.Cash, 1e-9)
	assert.InDelta(t, 100000-winValue, buyer.Cash, 1e-9, "surplus over the winning value is refunded")
	assert.InDelta(t, winValue, buyer.MonthExpense, 1e-9)

	require.Len(t, h.market.Completed(), 1)
	assert.Nil(t, h.market.Order(order.ID), "delivered orders leave the live pool")

	entries := h.ledger.Filter(ledger.Query{Category: ledger.CategoryExternalMarket})
	require.Len(t, entries, 1)
	assert.Equal(t, ledger.StatusCompleted, entries[0].Status)
	assert.Equal(t, 10.0, entries[0].Quantity)
}

func TestPartialFulfillmentClipsToSellerStock(t *testing.T) {
	h := newHarness(t, nil)
	buyer := h.buyer(100000)
	seller := h.seller("iron_ore", 4, 0.8) // cannot cover the full order
	sellerCash := seller.Cash

	order, err := h.market.SubmitProcurement(buyer, "iron_ore", 10, clock.At(7))
	require.NoError(t, err)

	h.market.TickHour(clock.At(8), h.resolve)
	_, err = h.market.PlaceBid(order.ID, seller.ID, seller.Name, 3, 1, clock.At(9))
	require.NoError(t, err)
	h.market.TickHour(clock.At(16), h.resolve)

	h.market.TickHour(clock.At(17), h.resolve)
	h.market.TickHour(clock.At(18), h.resolve)

	assert.Equal(t, StatusDelivered, order.Status, "clipped delivery still completes")
	assert.Equal(t, 4.0, buyer.Inventory.Quantity("iron_ore"))
	assert.Equal(t, 0.0, seller.Inventory.Quantity("iron_ore"), "stock never goes negative")
	assert.InDelta(t, sellerCash+order.WinningBid.TotalValue, seller.Cash, 1e-9,
		"seller keeps the full winning value on a clipped delivery")

	entries := h.ledger.Filter(ledger.Query{Status: ledger.StatusPartial})
	require.Len(t, entries, 1)
	assert.Equal(t, 4.0, entries[0].Quantity)
}

func TestSettlementSkipsWhenPartyMissing(t *testing.T) {
	h := newHarness(t, nil)
	buyer := h.buyer(100000)
	seller := h.seller("iron_ore", 100, 0.8)
	sellerCash := seller.Cash

	order, err := h.market.SubmitProcurement(buyer, "iron_ore", 10, clock.At(7))
	require.NoError(t, err)

	h.market.TickHour(clock.At(8), h.resolve)
	_, err = h.market.PlaceBid(order.ID, seller.ID, seller.Name, 3, 1, clock.At(9))
	require.NoError(t, err)
	h.market.TickHour(clock.At(16), h.resolve)
	require.Equal(t, StatusAwarded, order.Status)

	// The buyer vanishes between award and delivery. Settlement must not
	// touch the seller either: both sides commit together or not at all.
	delete(h.firms, buyer.ID)

	for hour := uint64(17); hour <= 19; hour++ {
		h.market.TickHour(clock.At(hour), h.resolve)
		assert.Equal(t, StatusAwarded, order.Status)
		assert.Equal(t, 100.0, seller.Inventory.Quantity("iron_ore"), "seller stock untouched")
		assert.InDelta(t, sellerCash, seller.Cash, 1e-9, "seller never paid for a skipped settlement")
	}

	assert.NotNil(t, h.market.Order(order.ID), "order stays in the live pool")
	assert.Empty(t, h.ledger.Filter(ledger.Query{Category: ledger.CategoryExternalMarket}))
}

func TestZeroBidOrderRelistsWhileDeadlineAllows(t *testing.T) {
	h := newHarness(t, nil)
	buyer := h.buyer(100000)
	order, err := h.market.SubmitProcurement(buyer, "iron_ore", 10, clock.At(7))
	require.NoError(t, err)

	h.market.TickHour(clock.At(8), h.resolve)
	require.Equal(t, StatusBidding, order.Status)

	h.market.TickHour(clock.At(16), h.resolve)
	assert.Equal(t, StatusAvailable, order.Status, "no bids, deadline not reached: relist")
	assert.NotNil(t, h.market.Order(order.ID))
}

func TestExpiredOrderRefundsReservedCash(t *testing.T) {
	h := newHarness(t, nil)
	buyer := h.buyer(100000)
	order, err := h.market.SubmitProcurement(buyer, "iron_ore", 10, clock.At(7))
	require.NoError(t, err)
	require.Less(t, buyer.Cash, 100000.0)

	// Hour 103 = deadline; 103 mod 24 = 7, so no window transitions fire.
	h.market.TickHour(clock.At(order.Deadline), h.resolve)

	assert.Equal(t, StatusExpired, order.Status)
	assert.InDelta(t, 100000.0, buyer.Cash, 1e-9, "full reservation returned")
	assert.Nil(t, h.market.Order(order.ID))
	require.Len(t, h.market.Expired(), 1)
}

func TestDirectPurchaseBypassesAuction(t *testing.T) {
	h := newHarness(t, nil)
	buyer := h.buyer(100000)

	order, err := h.market.DirectPurchase(buyer, "steel", 10, clock.At(9))
	require.NoError(t, err)

	assert.Equal(t, StatusAwarded, order.Status, "no bidding window")
	require.NotNil(t, order.WinningBid)
	assert.Equal(t, "Express Supplier", order.WinningBid.BidderName)
	assert.GreaterOrEqual(t, order.TransitHours, 1, "lead time is never zero")
	assert.InDelta(t, 100000-order.WinningBid.TotalValue, buyer.Cash, 1e-9)

	for i := 0; i < order.TransitHours; i++ {
		h.market.TickHour(clock.At(uint64(10+i)), h.resolve)
	}
	assert.Equal(t, StatusDelivered, order.Status)
	assert.Equal(t, 10.0, buyer.Inventory.Quantity("steel"))
}

func TestDirectPurchaseCostsPremium(t *testing.T) {
	h := newHarness(t, nil)
	buyer := h.buyer(1000000)
	now := clock.At(9)

	auction, err := h.market.SubmitProcurement(buyer, "steel", 10, now)
	require.NoError(t, err)
	direct, err := h.market.DirectPurchase(buyer, "steel", 10, now)
	require.NoError(t, err)

	assert.Greater(t, direct.OfferPrice, auction.OfferPrice, "immediacy costs more")
}

func TestSaleOutLiquidatesImmediately(t *testing.T) {
	h := newHarness(t, nil)
	seller := h.seller("iron_ore", 100, 0.8)
	cash := seller.Cash
	now := clock.At(9)

	proceeds, err := h.market.SaleOut(seller, "iron_ore", 40, now)
	require.NoError(t, err)

	unit, err := h.market.CurrentPrice("iron_ore", now.TotalHours)
	require.NoError(t, err)
	assert.InDelta(t, unit*0.7*40, proceeds, 1e-9, "liquidation haircut applies")
	assert.Equal(t, 60.0, seller.Inventory.Quantity("iron_ore"))
	assert.InDelta(t, cash+proceeds, seller.Cash, 1e-9)

	entries := h.ledger.Filter(ledger.Query{Category: ledger.CategoryExternalMarket})
	require.Len(t, entries, 1)

	_, err = h.market.SaleOut(seller, "iron_ore", 1000, now)
	assert.ErrorIs(t, err, ErrInsufficientInventory)
}

func TestReplenishKeepsTierPoolsFilled(t *testing.T) {
	h := newHarness(t, func(cfg *Config) { cfg.PoolPerTier = 3 })

	h.market.TickHour(clock.At(5), h.resolve)

	counts := map[catalog.Tier]int{}
	cat := catalog.Default()
	for _, o := range h.market.Orders(StatusAvailable) {
		assert.Equal(t, OriginExternal, o.Origin)
		assert.GreaterOrEqual(t, o.Quantity, 5.0)
		counts[cat.Get(o.ProductID).Tier]++
	}
	assert.Equal(t, 3, counts[catalog.TierRaw])
	assert.Equal(t, 3, counts[catalog.TierSemiRaw])
	assert.Equal(t, 3, counts[catalog.TierManufactured])
}

func TestPriceDriftIsBoundedAndDeterministic(t *testing.T) {
	h := newHarness(t, nil)
	other := newHarness(t, nil)

	for hour := uint64(0); hour < 500; hour += 7 {
		d := h.market.PriceDrift("steel", hour)
		assert.GreaterOrEqual(t, d, 0.85)
		assert.LessOrEqual(t, d, 1.15)
		assert.Equal(t, d, other.market.PriceDrift("steel", hour), "same seed, same drift")
	}
}

func TestOrderTransitionGraph(t *testing.T) {
	o := &MarketOrder{Status: StatusAvailable}

	assert.False(t, o.transition(StatusAwarded), "AVAILABLE cannot award directly")
	assert.False(t, o.transition(StatusDelivered))
	require.True(t, o.transition(StatusBidding))
	require.True(t, o.transition(StatusAwarded))
	assert.False(t, o.transition(StatusExpired), "awarded orders always deliver")
	require.True(t, o.transition(StatusDelivered))
	assert.False(t, o.transition(StatusAvailable), "terminal state")
}

func TestMaxOpensPerDayCapsWindows(t *testing.T) {
	h := newHarness(t, func(cfg *Config) { cfg.MaxOpensPerDay = 2 })
	buyer := h.buyer(10000000)

	for i := 0; i < 5; i++ {
		_, err := h.market.SubmitProcurement(buyer, "iron_ore", 10, clock.At(7))
		require.NoError(t, err)
	}

	h.market.TickHour(clock.At(8), h.resolve)
	assert.Len(t, h.market.Orders(StatusBidding), 2)
	assert.Len(t, h.market.Orders(StatusAvailable), 3)
}
