package firm

import "sort"

// RetailerState is the storefront payload. Retailers produce nothing
// physical; each hour simulates customer arrivals against stocked goods.
type RetailerState struct {
	BaselineTraffic float64 `json:"baseline_traffic"` // customers/hour at curve peak
	Markup          float64 `json:"markup"`           // over catalog base price
	Satisfaction    float64 `json:"satisfaction"`     // [0,1], depressed by stock-outs
	TrafficMod      float64 `json:"traffic_mod"`      // [0.2,1.2] running traffic multiplier
}

// hourCurve is the time-of-day footfall shape: quiet nights, a lunch
// bump, an evening peak.
var hourCurve = [24]float64{
	0.05, 0.03, 0.02, 0.02, 0.03, 0.08,
	0.20, 0.45, 0.65, 0.75, 0.85, 1.00,
	0.95, 0.80, 0.70, 0.75, 0.90, 1.00,
	0.90, 0.70, 0.50, 0.30, 0.15, 0.08,
}

// produceRetailer simulates one hour of consumer arrivals. Customers
// browse in descending necessity order; luxuries only sell while the
// customer has discretionary budget left. Each sale mutates inventory
// and cash and emits a consumer-sale ledger entry.
func (f *Firm) produceRetailer(env *Env) ProductionResult {
	st := f.Retailer

	purchasing := 1.0
	if env.City != nil {
		purchasing = env.City.SalaryLevel * env.City.ConsumerConfidence * env.City.MarketSizePerCapita
	}
	arrivals := st.BaselineTraffic * hourCurve[env.Time.Hour] * purchasing * st.TrafficMod
	arrivals = env.Rand.Jitter(arrivals, 0.25)
	customers := int(arrivals)
	if customers <= 0 {
		return ProductionResult{}
	}

	// Browse order: essentials first.
	type shelf struct {
		id        string
		necessity float64
		price     float64
	}
	var shelves []shelf
	for id, lot := range f.Inventory.Lots {
		if lot.Quantity <= 0 {
			continue
		}
		p := env.Catalog.Get(id)
		if p == nil {
			continue
		}
		price := p.BasePrice * st.Markup
		if env.City != nil {
			price *= env.City.CostOfLiving
		}
		shelves = append(shelves, shelf{id: id, necessity: p.NecessityIndex, price: price})
	}
	sort.Slice(shelves, func(i, j int) bool {
		if shelves[i].necessity != shelves[j].necessity {
			return shelves[i].necessity > shelves[j].necessity
		}
		return shelves[i].id < shelves[j].id
	})

	var sales int
	var revenue float64
	stockOuts := 0

	for c := 0; c < customers; c++ {
		budget := 30.0 * purchasing * env.Rand.Range(0.5, 1.5)
		bought := false
		missed := false
		for _, sh := range shelves {
			if f.Inventory.Quantity(sh.id) < 1 {
				missed = true
				continue
			}
			// Luxuries are gated by remaining discretionary budget;
			// essentials sell as long as any budget remains.
			if sh.necessity < 0.3 && budget < sh.price*2 {
				continue
			}
			if budget < sh.price {
				continue
			}
			f.Inventory.Remove(sh.id, 1)
			f.RecordRevenue(sh.price)
			budget -= sh.price
			sales++
			revenue += sh.price
			bought = true
			if env.RecordSale != nil {
				env.RecordSale(f, sh.id, 1, sh.price)
			}
		}
		// At most one miss per customer, so missRate stays in [0,1] no
		// matter how many shelves sit empty.
		if missed || !bought {
			stockOuts++
		}
	}

	// Stock-outs and weak sales depress future traffic; good service
	// recovers it. Satisfaction holds [0,1] so TrafficMod keeps its
	// [0.2,1.2] floor and a starved shop can come back after restocking.
	if customers > 0 {
		missRate := float64(stockOuts) / float64(customers)
		st.Satisfaction = st.Satisfaction*0.95 + (1-missRate)*0.05
		if st.Satisfaction < 0 {
			st.Satisfaction = 0
		}
		if st.Satisfaction > 1 {
			st.Satisfaction = 1
		}
		st.TrafficMod = 0.2 + st.Satisfaction
		if st.TrafficMod > 1.2 {
			st.TrafficMod = 1.2
		}
	}

	return ProductionResult{Sales: sales, Revenue: revenue}
}

// ReorderPoint returns the stock level below which the retailer
// procures more of a product from the external market.
func (st *RetailerState) ReorderPoint() float64 {
	return st.BaselineTraffic * 8 // roughly a day of peak demand
}
