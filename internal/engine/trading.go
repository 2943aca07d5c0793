package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/protheus99/econsim-sub000/internal/catalog"
	"github.com/protheus99/econsim-sub000/internal/clock"
	"github.com/protheus99/econsim-sub000/internal/firm"
	"github.com/protheus99/econsim-sub000/internal/market"
)

// submitProcurement turns firm shortfalls into internal market orders.
// Failures are expected outcomes — the firm simply retries next tick.
func (w *World) submitProcurement(t clock.GameTime) {
	for _, f := range w.Firms {
		switch f.Kind {
		case firm.KindConverter:
			w.procureConverterInputs(f, t)
		case firm.KindRetailer:
			w.procureRetailStock(f, t)
		}
	}
}

// procureConverterInputs keeps roughly a day of every recipe input on
// hand, ordering three days' worth when stock runs low.
func (w *World) procureConverterInputs(f *firm.Firm, t clock.GameTime) {
	product := w.Catalog.Get(f.Converter.OutputID)
	if product == nil {
		return
	}
	inputs := make([]string, 0, len(product.Inputs))
	for inputID := range product.Inputs {
		inputs = append(inputs, inputID)
	}
	sort.Strings(inputs)
	for _, inputID := range inputs {
		hourlyNeed := product.Inputs[inputID] * f.Converter.RatePerHour
		have := f.Inventory.Quantity(inputID)
		if have >= hourlyNeed*clock.HoursPerDay {
			continue
		}
		if w.hasPendingOrder(f.ID, inputID) {
			continue
		}
		// A line within hours of starving cannot wait out a bidding
		// window: pay the direct-purchase premium for a day of stock,
		// falling back to the auction if the buy is rejected.
		if have < hourlyNeed*4 {
			if _, err := w.Market.DirectPurchase(f, inputID, hourlyNeed*clock.HoursPerDay, t); err == nil {
				continue
			}
		}
		qty := hourlyNeed * clock.HoursPerDay * 3
		w.submitOrder(f, inputID, qty, t)
	}
}

// procureRetailStock reorders any assortment line that fell below the
// reorder point.
func (w *World) procureRetailStock(f *firm.Firm, t clock.GameTime) {
	reorder := f.Retailer.ReorderPoint()
	for _, p := range w.Catalog.ByTier(catalog.TierManufactured) {
		if f.Inventory.Quantity(p.ID) >= reorder {
			continue
		}
		if w.hasPendingOrder(f.ID, p.ID) {
			continue
		}
		w.submitOrder(f, p.ID, reorder*2, t)
	}
}

func (w *World) submitOrder(f *firm.Firm, productID string, qty float64, t clock.GameTime) {
	_, err := w.Market.SubmitProcurement(f, productID, qty, t)
	switch {
	case err == nil:
	case errors.Is(err, market.ErrInsufficientFunds),
		errors.Is(err, market.ErrBelowMinimumOrderSize),
		errors.Is(err, market.ErrMarketDisabled):
		// Expected; retry next tick.
	default:
		slog.Warn("procurement failed", "firm", f.Name, "product", productID, "error", err)
	}
}

// hasPendingOrder reports whether the buyer already has a live order for
// the product.
func (w *World) hasPendingOrder(firmID, productID string) bool {
	for _, o := range w.Market.Orders("") {
		if o.BuyerFirmID == firmID && o.ProductID == productID {
			return true
		}
	}
	return false
}

// placeSupplierBids populates bidding windows each hour. Producer firms
// bid their surplus onto external demand; synthetic outside suppliers
// compete on internal procurement so firm orders always clear.
func (w *World) placeSupplierBids(t clock.GameTime) {
	for _, order := range w.Market.Orders(market.StatusBidding) {
		price, err := w.Market.CurrentPrice(order.ProductID, t.TotalHours)
		if err != nil {
			continue
		}

		if order.Origin == market.OriginInternal {
			// One outside supplier offer per hour of the window.
			if w.Rand.Chance(0.6) {
				unit := price * w.Rand.Range(0.85, 1.05)
				fee := order.Quantity * 0.3
				if _, err := w.Market.PlaceBid(order.ID, "", "Outland Trading Co.", unit, fee, t); err != nil {
					slog.Debug("external bid rejected", "order", order.ID, "error", err)
				}
			}
		}

		// Producers with enough stock compete for the sale.
		for _, f := range w.Firms {
			if f.ID == order.BuyerFirmID || !canSupply(f, order.ProductID) {
				continue
			}
			if f.Inventory.Quantity(order.ProductID) < order.Quantity {
				continue
			}
			if hasBid(order, f.ID) {
				continue
			}
			unit := price * w.Rand.Range(0.9, 1.1)
			fee := w.Trans.FindOptimalRoute(f.CityID, order.DestCityID, order.Quantity, 0).BaseCost
			if _, err := w.Market.PlaceBid(order.ID, f.ID, f.Name, unit, fee, t); err != nil {
				slog.Debug("firm bid rejected", "order", order.ID, "firm", f.Name, "error", err)
			}
		}
	}
}

// liquidateSurplus sells down producers whose output is crowding the
// warehouse: a firm at 90% of storage capacity dumps a quarter of its
// primary output stock at the liquidation discount.
func (w *World) liquidateSurplus(t clock.GameTime) {
	for _, f := range w.Firms {
		productID := primaryOutput(f)
		if productID == "" {
			continue
		}
		if f.Inventory.Total() < f.Inventory.Capacity*0.9 {
			continue
		}
		qty := f.Inventory.Quantity(productID) * 0.25
		if qty <= 0 {
			continue
		}
		proceeds, err := w.Market.SaleOut(f, productID, qty, t)
		if err != nil {
			slog.Debug("liquidation rejected", "firm", f.Name, "product", productID, "error", err)
			continue
		}
		w.record(t, fmt.Sprintf("%s liquidated %.0f %s for %.0f", f.Name, qty, productID, proceeds), "market")
	}
}

// primaryOutput returns the product a producer sells on the open
// market, or "" for retailers and lenders, which never supply goods.
func primaryOutput(f *firm.Firm) string {
	switch f.Kind {
	case firm.KindExtractor:
		return f.Extractor.ProductID
	case firm.KindHarvester:
		return f.Harvester.ProductID
	case firm.KindGrower:
		return f.Grower.ProductID
	case firm.KindConverter:
		return f.Converter.OutputID
	}
	return ""
}

// canSupply reports whether a firm sells the product; a firm does not
// supply its own procurement.
func canSupply(f *firm.Firm, productID string) bool {
	out := primaryOutput(f)
	return out != "" && out == productID
}

func hasBid(order *market.MarketOrder, firmID string) bool {
	for _, b := range order.Bids {
		if b.FirmID == firmID {
			return true
		}
	}
	return false
}
