package market

import (
	"log/slog"

	"github.com/protheus99/econsim-sub000/internal/clock"
	"github.com/protheus99/econsim-sub000/internal/firm"
	"github.com/protheus99/econsim-sub000/internal/ledger"
)

// tickDeliveries decrements every awarded order's countdown and settles
// the ones that reach zero.
func (m *Market) tickDeliveries(now clock.GameTime, resolve func(id string) *firm.Firm) {
	for _, order := range m.ordered() {
		if order.Status != StatusAwarded {
			continue
		}
		order.DeliveryHoursRemaining--
		if order.DeliveryHoursRemaining > 0 {
			continue
		}
		m.settle(order, now, resolve)
	}
}

// settle completes delivery: seller inventory out (clipped to what the
// seller actually holds — partial fulfillment is tolerated, logged, and
// never drives stock negative), buyer inventory in, seller paid the full
// winning value, ledger entry appended.
func (m *Market) settle(order *MarketOrder, now clock.GameTime, resolve func(id string) *firm.Firm) {
	win := order.WinningBid
	if win == nil {
		// Should not happen on an AWARDED order; skip this tick rather
		// than halt the simulation.
		slog.Warn("awarded order missing winning bid", "order", order.ID)
		return
	}

	// Resolve both parties before touching either side, so a missing
	// entity skips the settlement without leaving it half applied.
	var seller, buyer *firm.Firm
	if win.Internal() {
		if seller = resolve(win.FirmID); seller == nil {
			slog.Warn("winning bidder missing at settlement, order skipped",
				"order", order.ID, "bidder", win.FirmID)
			return
		}
	}
	if order.BuyerFirmID != "" {
		if buyer = resolve(order.BuyerFirmID); buyer == nil {
			slog.Warn("buyer missing at settlement, order skipped",
				"order", order.ID, "buyer", order.BuyerFirmID)
			return
		}
	}

	delivered := order.Quantity
	quality := 0.7 // external supplier baseline
	status := ledger.StatusCompleted

	sellerParty := ledger.Party{Name: win.BidderName}
	if seller != nil {
		available := seller.Inventory.Quantity(order.ProductID)
		if available < delivered {
			slog.Warn("partial fulfillment",
				"order", order.ID,
				"product", order.ProductID,
				"wanted", order.Quantity,
				"available", available,
			)
			delivered = available
			status = ledger.StatusPartial
		}
		if delivered > 0 {
			quality = seller.Inventory.Quality(order.ProductID)
			seller.Inventory.Remove(order.ProductID, delivered)
		}
		// Seller is paid the full winning value even on a clipped
		// delivery — the shortfall is the seller's windfall, logged above.
		seller.RecordRevenue(win.TotalValue)
		sellerParty = ledger.Party{FirmID: seller.ID, Name: seller.Name, CityID: seller.CityID}
	}

	buyerParty := ledger.Party{Name: "External Market"}
	if buyer != nil {
		if delivered > 0 {
			buyer.Inventory.Add(order.ProductID, delivered, quality)
		}
		// The buyer reserved OfferPrice at submission; the trade costs
		// the winning value. Refund any surplus.
		if surplus := order.ReservedCash - win.TotalValue; surplus > 0 {
			buyer.Cash += surplus
		}
		buyer.MonthExpense += win.TotalValue
		buyerParty = ledger.Party{FirmID: buyer.ID, Name: buyer.Name, CityID: buyer.CityID}
	}

	order.transition(StatusDelivered)
	delete(m.orders, order.ID)
	m.completed = append(m.completed, order)
	if len(m.completed) > retainedTerminal {
		m.completed = m.completed[len(m.completed)-retainedTerminal:]
	}
	m.ordersDone++
	m.totalSpend += win.TotalValue

	unitPrice := 0.0
	if delivered > 0 {
		unitPrice = win.TotalValue / delivered
	}
	m.ledger.Append(ledger.Entry{
		Category:  ledger.CategoryExternalMarket,
		Seller:    sellerParty,
		Buyer:     buyerParty,
		Material:  order.ProductID,
		Quantity:  delivered,
		UnitPrice: unitPrice,
		Total:     win.TotalValue,
		Status:    status,
		Time:      now,
	})
}
