package market

import (
	"github.com/protheus99/econsim-sub000/internal/clock"
	"github.com/protheus99/econsim-sub000/internal/firm"
	"github.com/protheus99/econsim-sub000/internal/geo"
	"github.com/protheus99/econsim-sub000/internal/ledger"
)

// DirectPurchase bypasses the auction entirely: the buyer pays a fixed
// premium plus expedited transport and receives the goods after a short
// non-zero lead time. The order is created already AWARDED to an
// external supplier.
func (m *Market) DirectPurchase(buyer *firm.Firm, productID string, quantity float64, now clock.GameTime) (*MarketOrder, error) {
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

	route := m.trans.FindOptimalRoute("", buyer.CityID, quantity, geo.PriorityExpedited)
	total := unitPrice*quantity*m.cfg.DirectMultiplier + route.BaseCost
	if buyer.Cash < total {
		return nil, ErrInsufficientFunds
	}

	transit := route.TransitHours
	if transit < 1 {
		transit = 1
	}
	if transit > m.cfg.MaxTransitHours {
		transit = m.cfg.MaxTransitHours
	}

	buyer.Cash -= total

	m.bidSeq++
	bid := &Bid{
		ID:           newOrderID(),
		BidderName:   "Express Supplier",
		PricePerUnit: unitPrice * m.cfg.DirectMultiplier,
		DeliveryFee:  route.BaseCost,
		TotalValue:   total,
		PlacedAt:     now,
		Seq:          m.bidSeq,
	}

	m.orderSeq++
	order := &MarketOrder{
		ID:                     newOrderID(),
		Seq:                    m.orderSeq,
		ProductID:              productID,
		Quantity:               quantity,
		OfferPrice:             total,
		Origin:                 OriginInternal,
		BuyerFirmID:            buyer.ID,
		DestCityID:             buyer.CityID,
		Status:                 StatusAwarded,
		CreatedAt:              now,
		Deadline:               now.TotalHours + uint64(transit),
		TransitHours:           transit,
		ReservedCash:           total,
		WinningBid:             bid,
		DeliveryHoursRemaining: transit,
	}
	bid.OrderID = order.ID
	order.Bids = []*Bid{bid}
	m.orders[order.ID] = order
	return order, nil
}

// SaleOut liquidates firm inventory straight to the external market at
// a discounted implied price, bypassing the bid machinery. Settlement is
// immediate: inventory out, cash in, ledger entry appended.
func (m *Market) SaleOut(seller *firm.Firm, productID string, quantity float64, now clock.GameTime) (float64, error) {
	if !m.Enabled {
		return 0, ErrMarketDisabled
	}
	unitPrice, err := m.CurrentPrice(productID, now.TotalHours)
	if err != nil {
		return 0, err
	}
	if seller.Inventory.Quantity(productID) < quantity {
		return 0, ErrInsufficientInventory
	}

	seller.Inventory.Remove(productID, quantity)
	impliedUnit := unitPrice * m.cfg.SaleOutDiscount
	proceeds := impliedUnit * quantity
	seller.RecordRevenue(proceeds)
	m.totalSpend += proceeds

	m.ledger.Append(ledger.Entry{
		Category:  ledger.CategoryExternalMarket,
		Seller:    ledger.Party{FirmID: seller.ID, Name: seller.Name, CityID: seller.CityID},
		Buyer:     ledger.Party{Name: "External Market"},
		Material:  productID,
		Quantity:  quantity,
		UnitPrice: impliedUnit,
		Total:     proceeds,
		Status:    ledger.StatusCompleted,
		Time:      now,
	})
	return proceeds, nil
}
