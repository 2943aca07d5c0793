// Package firm implements the six firm archetypes behind one contract.
// A Firm is a closed tagged variant: the shared financial/labor record
// plus exactly one kind-specific payload, with production and cost rules
// dispatched on Kind.
package firm

import (
	"github.com/google/uuid"

	"github.com/protheus99/econsim-sub000/internal/catalog"
	"github.com/protheus99/econsim-sub000/internal/clock"
	"github.com/protheus99/econsim-sub000/internal/entropy"
	"github.com/protheus99/econsim-sub000/internal/geo"
)

// Kind identifies a firm archetype.
type Kind uint8

const (
	KindExtractor Kind = iota
	KindHarvester
	KindGrower
	KindConverter
	KindRetailer
	KindLender
)

// KindName returns a display name for a kind.
func KindName(k Kind) string {
	switch k {
	case KindExtractor:
		return "Extractor"
	case KindHarvester:
		return "Harvester"
	case KindGrower:
		return "Grower"
	case KindConverter:
		return "Converter"
	case KindRetailer:
		return "Retailer"
	case KindLender:
		return "Lender"
	}
	return "Unknown"
}

// laborOverheadFactor covers payroll taxes, benefits, and admin on top
// of base wages.
const laborOverheadFactor = 1.25

// LaborRole is one line of the labor roster.
type LaborRole struct {
	Count    int     `json:"count"`
	BaseWage float64 `json:"base_wage"` // per worker per month, at salary level 1.0
	Skilled  bool    `json:"skilled"`
}

// Lot is the stock of one product: quantity at an average quality.
type Lot struct {
	Quantity float64 `json:"quantity"`
	Quality  float64 `json:"quality"` // [0,1]
}

// Inventory holds product lots under a shared capacity. Add and Remove
// clip so total quantity stays in [0, Capacity].
type Inventory struct {
	Capacity float64         `json:"capacity"`
	Lots     map[string]*Lot `json:"lots"`
}

// NewInventory creates an empty inventory with the given capacity.
func NewInventory(capacity float64) *Inventory {
	return &Inventory{Capacity: capacity, Lots: make(map[string]*Lot)}
}

// Total returns the summed quantity across all lots.
func (inv *Inventory) Total() float64 {
	var t float64
	for _, l := range inv.Lots {
		t += l.Quantity
	}
	return t
}

// Quantity returns the stocked quantity of one product.
func (inv *Inventory) Quantity(productID string) float64 {
	if l, ok := inv.Lots[productID]; ok {
		return l.Quantity
	}
	return 0
}

// Quality returns the stored quality of one product (0 if unstocked).
func (inv *Inventory) Quality(productID string) float64 {
	if l, ok := inv.Lots[productID]; ok {
		return l.Quality
	}
	return 0
}

// Add stores up to qty units, clipped to remaining capacity, blending
// quality by quantity. Returns the accepted amount.
func (inv *Inventory) Add(productID string, qty, quality float64) float64 {
	if qty <= 0 {
		return 0
	}
	room := inv.Capacity - inv.Total()
	if room <= 0 {
		return 0
	}
	if qty > room {
		qty = room
	}
	l, ok := inv.Lots[productID]
	if !ok {
		inv.Lots[productID] = &Lot{Quantity: qty, Quality: quality}
		return qty
	}
	total := l.Quantity + qty
	l.Quality = (l.Quality*l.Quantity + quality*qty) / total
	l.Quantity = total
	return qty
}

// Remove takes up to qty units, clipped to what is stocked. Returns the
// removed amount — never drives a lot negative.
func (inv *Inventory) Remove(productID string, qty float64) float64 {
	l, ok := inv.Lots[productID]
	if !ok || qty <= 0 {
		return 0
	}
	if qty > l.Quantity {
		qty = l.Quantity
	}
	l.Quantity -= qty
	return qty
}

// Env is the per-tick context a firm produces against. The world passes
// it by reference; firms never hold ambient state.
type Env struct {
	Time    clock.GameTime
	Catalog *catalog.Catalog
	City    *geo.City
	Rand    *entropy.Source

	// Resolve looks up another firm by ID (lender → borrower).
	Resolve func(id string) *Firm

	// RecordSale appends a consumer-sale ledger entry. Nil in tests that
	// don't care about the ledger.
	RecordSale func(f *Firm, productID string, qty, unitPrice float64)
}

// Firm is one economic agent. Exactly one payload pointer matches Kind.
type Firm struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Kind   Kind   `json:"kind"`
	CityID string `json:"city_id"`
	CorpID string `json:"corp_id,omitempty"`

	// Financials. Month* accumulate within the month and reset at
	// settlement; Total* are cumulative since world start.
	Cash         float64 `json:"cash"`
	Debt         float64 `json:"debt"`
	MonthRevenue float64 `json:"month_revenue"`
	MonthExpense float64 `json:"month_expense"`
	TotalRevenue float64 `json:"total_revenue"`
	TotalExpense float64 `json:"total_expense"`
	TotalProfit  float64 `json:"total_profit"`

	Labor     map[string]*LaborRole `json:"labor"`
	Inventory *Inventory            `json:"inventory"`

	// Kind payloads.
	Extractor *ExtractorState `json:"extractor,omitempty"`
	Harvester *HarvesterState `json:"harvester,omitempty"`
	Grower    *GrowerState    `json:"grower,omitempty"`
	Converter *ConverterState `json:"converter,omitempty"`
	Retailer  *RetailerState  `json:"retailer,omitempty"`
	Lender    *LenderState    `json:"lender,omitempty"`
}

// New creates a firm shell; callers attach the kind payload.
func New(name string, kind Kind, cityID string, cash, capacity float64) *Firm {
	return &Firm{
		ID:        uuid.NewString(),
		Name:      name,
		Kind:      kind,
		CityID:    cityID,
		Cash:      cash,
		Labor:     make(map[string]*LaborRole),
		Inventory: NewInventory(capacity),
	}
}

// ProduceHourly runs one hour of production, dispatched on Kind.
func (f *Firm) ProduceHourly(env *Env) ProductionResult {
	switch f.Kind {
	case KindExtractor:
		return f.produceExtractor(env)
	case KindHarvester:
		return f.produceHarvester(env)
	case KindGrower:
		return f.produceGrower(env)
	case KindConverter:
		return f.produceConverter(env)
	case KindRetailer:
		return f.produceRetailer(env)
	case KindLender:
		// Banks move money, not goods. Interest runs monthly.
		return ProductionResult{}
	}
	return ProductionResult{}
}

// CalculateLaborCosts returns the monthly wage bill:
// Σ(count × baseWage × citySalaryLevel) × overhead.
func (f *Firm) CalculateLaborCosts(env *Env) float64 {
	salary := 1.0
	if env.City != nil {
		salary = env.City.SalaryLevel
	}
	var sum float64
	for _, role := range f.Labor {
		sum += float64(role.Count) * role.BaseWage * salary
	}
	return sum * laborOverheadFactor
}

// SkilledLaborCount returns the number of workers in skilled roles.
func (f *Firm) SkilledLaborCount() int {
	n := 0
	for _, role := range f.Labor {
		if role.Skilled {
			n += role.Count
		}
	}
	return n
}

// CalculateMonthlyOperatingCosts sums the fixed cost lines for the
// archetype: upkeep, facilities, and kind-specific overhead.
func (f *Firm) CalculateMonthlyOperatingCosts() float64 {
	base := f.Inventory.Capacity * 0.05 // warehousing
	switch f.Kind {
	case KindExtractor:
		return base + 800 + float64(f.Extractor.EquipmentLevel)*120
	case KindHarvester:
		return base + 500 + f.Harvester.ForestSize*2
	case KindGrower:
		if f.Grower.Mode == GrowLivestock {
			return base + 400 + float64(f.Grower.HerdSize)*1.5
		}
		return base + 400 + f.Grower.LandSize*3
	case KindConverter:
		return base + 1200 + f.Converter.QCInvestment
	case KindRetailer:
		return base + 900 // storefront
	case KindLender:
		return base + 1500 // compliance and branch costs
	}
	return base
}

// PayWages deducts one wage installment (fraction of the monthly bill)
// from cash. Called at mid-month and month end with fraction 0.5.
func (f *Firm) PayWages(env *Env, fraction float64) float64 {
	amount := f.CalculateLaborCosts(env) * fraction
	f.Cash -= amount
	f.MonthExpense += amount
	return amount
}

// UpdateMonthly settles operating costs, realizes the month's
// revenue−expense into cumulative profit, and resets running counters.
func (f *Firm) UpdateMonthly(env *Env) {
	op := f.CalculateMonthlyOperatingCosts()
	f.Cash -= op
	f.MonthExpense += op

	f.TotalRevenue += f.MonthRevenue
	f.TotalExpense += f.MonthExpense
	f.TotalProfit += f.MonthRevenue - f.MonthExpense
	f.MonthRevenue = 0
	f.MonthExpense = 0
}

// RecordRevenue credits cash and the running revenue counter.
func (f *Firm) RecordRevenue(amount float64) {
	f.Cash += amount
	f.MonthRevenue += amount
}

// RecordExpense debits cash and the running expense counter.
func (f *Firm) RecordExpense(amount float64) {
	f.Cash -= amount
	f.MonthExpense += amount
}

// Profitability returns the cumulative margin, used by credit scoring.
func (f *Firm) Profitability() float64 {
	if f.TotalRevenue <= 0 {
		return 0
	}
	return f.TotalProfit / f.TotalRevenue
}
