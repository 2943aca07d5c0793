// Package geo provides the city/country context firms read from and the
// transportation estimator the market prices deliveries with. The
// simulation treats these as read-only collaborators; only the monthly
// cascade mutates them, through Grow.
package geo

import "math"

// Country groups cities under shared trade terms.
type Country struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	TariffRate float64 `json:"tariff_rate"` // applied to cross-border deliveries
}

// City is the local economic context for firms placed in it.
type City struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CountryID string `json:"country_id"`
	X, Y      float64

	Population          int     `json:"population"`
	SalaryLevel         float64 `json:"salary_level"`          // wage multiplier, 1.0 = baseline
	CostOfLiving        float64 `json:"cost_of_living"`        // 1.0 = baseline
	ConsumerConfidence  float64 `json:"consumer_confidence"`   // [0,1]
	MarketSizePerCapita float64 `json:"market_size_per_capita"`

	HasPort bool `json:"has_port"`
	HasRail bool `json:"has_rail"`
	IsHub   bool `json:"is_hub"`
}

// Atlas is the lookup table resolving city and country IDs. Firms hold
// IDs, never pointers, so the firm→city→country graph stays acyclic.
type Atlas struct {
	cities    map[string]*City
	countries map[string]*Country
}

// NewAtlas builds an atlas from generated cities and countries.
func NewAtlas(cities []*City, countries []*Country) *Atlas {
	a := &Atlas{
		cities:    make(map[string]*City, len(cities)),
		countries: make(map[string]*Country, len(countries)),
	}
	for _, c := range cities {
		a.cities[c.ID] = c
	}
	for _, c := range countries {
		a.countries[c.ID] = c
	}
	return a
}

// City resolves a city ID, or nil.
func (a *Atlas) City(id string) *City {
	return a.cities[id]
}

// Country resolves a country ID, or nil.
func (a *Atlas) Country(id string) *Country {
	return a.countries[id]
}

// Cities returns all cities (iteration order unspecified).
func (a *Atlas) Cities() []*City {
	out := make([]*City, 0, len(a.cities))
	for _, c := range a.cities {
		out = append(out, c)
	}
	return out
}

// Distance returns the straight-line distance between two cities, or 0
// if either is unknown.
func (a *Atlas) Distance(fromID, toID string) float64 {
	from, to := a.cities[fromID], a.cities[toID]
	if from == nil || to == nil {
		return 0
	}
	dx, dy := from.X-to.X, from.Y-to.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Grow applies one month of demographic drift to a city. growthRate and
// salaryDrift are fractional per-month changes supplied by the caller.
func (c *City) Grow(growthRate, salaryDrift float64) {
	c.Population += int(float64(c.Population) * growthRate)
	if c.Population < 100 {
		c.Population = 100
	}
	c.SalaryLevel *= 1 + salaryDrift
	if c.SalaryLevel < 0.25 {
		c.SalaryLevel = 0.25
	}
}

// DefaultWorld returns the standard generated geography: two countries,
// four cities with varied transport links and demographics.
func DefaultWorld() *Atlas {
	countries := []*Country{
		{ID: "nordia", Name: "Nordia", TariffRate: 0.05},
		{ID: "sudmark", Name: "Sudmark", TariffRate: 0.08},
	}
	cities := []*City{
		{
			ID: "port_halvard", Name: "Port Halvard", CountryID: "nordia",
			X: 0, Y: 0, Population: 240000,
			SalaryLevel: 1.15, CostOfLiving: 1.2, ConsumerConfidence: 0.7,
			MarketSizePerCapita: 1.1, HasPort: true, HasRail: true, IsHub: true,
		},
		{
			ID: "eisenfeld", Name: "Eisenfeld", CountryID: "nordia",
			X: 120, Y: 40, Population: 95000,
			SalaryLevel: 0.95, CostOfLiving: 0.9, ConsumerConfidence: 0.6,
			MarketSizePerCapita: 0.85, HasRail: true,
		},
		{
			ID: "greenvale", Name: "Greenvale", CountryID: "sudmark",
			X: 60, Y: 180, Population: 48000,
			SalaryLevel: 0.8, CostOfLiving: 0.75, ConsumerConfidence: 0.65,
			MarketSizePerCapita: 0.7,
		},
		{
			ID: "suderholm", Name: "Suderholm", CountryID: "sudmark",
			X: 200, Y: 160, Population: 180000,
			SalaryLevel: 1.05, CostOfLiving: 1.1, ConsumerConfidence: 0.72,
			MarketSizePerCapita: 1.0, HasPort: true, IsHub: true,
		},
	}
	return NewAtlas(cities, countries)
}
