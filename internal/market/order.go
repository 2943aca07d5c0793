package market

import (
	"github.com/google/uuid"

	"github.com/protheus99/econsim-sub000/internal/clock"
)

// OrderStatus is a node in the order lifecycle graph:
// AVAILABLE → BIDDING → {AWARDED | EXPIRED | AVAILABLE}; AWARDED → DELIVERED.
type OrderStatus string

const (
	StatusAvailable OrderStatus = "AVAILABLE"
	StatusBidding   OrderStatus = "BIDDING"
	StatusAwarded   OrderStatus = "AWARDED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusExpired   OrderStatus = "EXPIRED"
)

// Origin distinguishes firm procurement from generated external demand.
type Origin string

const (
	OriginInternal Origin = "internal"
	OriginExternal Origin = "external"
)

// Bid is one supplier's offer on an order. Immutable once placed; Seq is
// the submission order used to break exact score ties (first wins).
type Bid struct {
	ID           string         `json:"id"`
	OrderID      string         `json:"order_id"`
	FirmID       string         `json:"firm_id,omitempty"` // empty for external suppliers
	BidderName   string         `json:"bidder_name"`
	PricePerUnit float64        `json:"price_per_unit"`
	DeliveryFee  float64        `json:"delivery_fee"`
	TotalValue   float64        `json:"total_value"`
	PlacedAt     clock.GameTime `json:"placed_at"`
	Seq          uint64         `json:"seq"`
}

// Internal reports whether the bid came from a simulated firm.
func (b *Bid) Internal() bool {
	return b.FirmID != ""
}

// Score applies the internal-origin preference multiplier.
func (b *Bid) Score() float64 {
	if b.Internal() {
		return b.TotalValue * 1.1
	}
	return b.TotalValue
}

// MarketOrder is one unit of market demand moving through the lifecycle.
type MarketOrder struct {
	ID           string         `json:"id"`
	Seq          uint64         `json:"seq"` // creation order; pool walks follow it
	ProductID    string         `json:"product_id"`
	Quantity     float64        `json:"quantity"`
	OfferPrice   float64        `json:"offer_price"` // total the buyer is willing to pay
	Origin       Origin         `json:"origin"`
	BuyerFirmID  string         `json:"buyer_firm_id,omitempty"` // empty for external demand
	DestCityID   string         `json:"dest_city_id,omitempty"`
	Status       OrderStatus    `json:"status"`
	CreatedAt    clock.GameTime `json:"created_at"`
	Deadline     uint64         `json:"deadline"` // monotonic hour the order must award by
	TransitHours int            `json:"transit_hours"`
	ReservedCash float64        `json:"reserved_cash"` // held from the buyer at submission

	Bids       []*Bid `json:"bids"`
	WinningBid *Bid   `json:"winning_bid,omitempty"`

	DeliveryHoursRemaining int `json:"delivery_hours_remaining"`
}

// orderTransitions is the documented lifecycle graph.
var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusAvailable: {StatusBidding, StatusExpired},
	StatusBidding:   {StatusAwarded, StatusExpired, StatusAvailable},
	StatusAwarded:   {StatusDelivered},
}

// transition moves the order along the graph; illegal moves are refused.
func (o *MarketOrder) transition(to OrderStatus) bool {
	for _, legal := range orderTransitions[o.Status] {
		if legal == to {
			o.Status = to
			return true
		}
	}
	return false
}

func newOrderID() string {
	return uuid.NewString()
}
