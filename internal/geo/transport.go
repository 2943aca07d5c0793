package geo

import (
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru"
)

// Priority selects the speed/cost tradeoff for a delivery.
type Priority uint8

const (
	PriorityStandard Priority = iota
	PriorityExpedited
)

// Mode is how a shipment travels.
type Mode string

const (
	ModeRoad Mode = "road"
	ModeRail Mode = "rail"
	ModeSea  Mode = "sea"
)

// Route is the estimator's answer for one shipment.
type Route struct {
	BaseCost     float64 `json:"base_cost"` // total cost for the shipment
	TransitHours int     `json:"transit_hours"`
	Mode         Mode    `json:"mode"`
}

// Transporter estimates delivery cost and transit time between cities.
// Per-unit routes are memoized in an LRU cache; quantity only scales the
// cached per-unit cost.
type Transporter struct {
	atlas *Atlas
	cache *lru.Cache // key: "from|to|priority" → unitRoute
}

type unitRoute struct {
	unitCost     float64
	transitHours int
	mode         Mode
}

// NewTransporter creates an estimator over an atlas.
func NewTransporter(atlas *Atlas) *Transporter {
	cache, _ := lru.New(256)
	return &Transporter{atlas: atlas, cache: cache}
}

// FindOptimalRoute returns the cheapest route for shipping quantity
// units between two cities at the given priority.
func (t *Transporter) FindOptimalRoute(originID, destID string, quantity float64, priority Priority) Route {
	key := fmt.Sprintf("%s|%s|%d", originID, destID, priority)
	if v, ok := t.cache.Get(key); ok {
		ur := v.(unitRoute)
		return Route{BaseCost: ur.unitCost * quantity, TransitHours: ur.transitHours, Mode: ur.mode}
	}

	ur := t.estimate(originID, destID, priority)
	t.cache.Add(key, ur)
	return Route{BaseCost: ur.unitCost * quantity, TransitHours: ur.transitHours, Mode: ur.mode}
}

func (t *Transporter) estimate(originID, destID string, priority Priority) unitRoute {
	dist := t.atlas.Distance(originID, destID)
	if dist == 0 {
		// Same city or unknown endpoint: minimal local haul.
		return unitRoute{unitCost: 0.5, transitHours: 2, mode: ModeRoad}
	}

	from, to := t.atlas.City(originID), t.atlas.City(destID)

	// Pick the best available mode: sea when both ends have ports,
	// rail when both have rail, road otherwise.
	mode := ModeRoad
	costPerKm := 0.020
	speedKmH := 50.0
	if from != nil && to != nil {
		switch {
		case from.HasPort && to.HasPort:
			mode = ModeSea
			costPerKm = 0.008
			speedKmH = 30.0
		case from.HasRail && to.HasRail:
			mode = ModeRail
			costPerKm = 0.012
			speedKmH = 80.0
		}
	}

	unitCost := dist * costPerKm
	hours := int(math.Ceil(dist/speedKmH)) + 4 // loading overhead

	// Cross-border shipments pay the destination tariff.
	if from != nil && to != nil && from.CountryID != to.CountryID {
		if country := t.atlas.Country(to.CountryID); country != nil {
			unitCost *= 1 + country.TariffRate
		}
	}

	// Hubs consolidate freight.
	if to != nil && to.IsHub {
		unitCost *= 0.9
	}

	if priority == PriorityExpedited {
		unitCost *= 2.2
		hours = hours/2 + 1
	}
	if hours < 1 {
		hours = 1
	}

	return unitRoute{unitCost: unitCost, transitHours: hours, mode: mode}
}
