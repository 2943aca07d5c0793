package firm

// GrowMode selects between batch crop growth and continuous livestock output.
type GrowMode uint8

const (
	GrowCrop GrowMode = iota
	GrowLivestock
)

// GrowerState is the farm payload. Crop farms accumulate growth and drop
// a whole harvest batch; livestock farms trickle output and grow the
// herd at maturity intervals.
type GrowerState struct {
	Mode      GrowMode `json:"mode"`
	ProductID string   `json:"product_id"`

	// Crop fields.
	LandSize        float64 `json:"land_size"` // hectares
	YieldPerHectare float64 `json:"yield_per_hectare"`
	SeasonHours     int     `json:"season_hours"`
	GrowthPct       float64 `json:"growth_pct"` // [0,100)
	TechBonus       float64 `json:"tech_bonus"` // yield multiplier, >= 1

	// Livestock fields.
	HerdSize         int     `json:"herd_size"`
	TechLevel        float64 `json:"tech_level"`     // output per head per hour multiplier
	MaturityHours    int     `json:"maturity_hours"` // herd growth interval
	HoursSinceGrowth int     `json:"hours_since_growth"`
}

func (f *Firm) produceGrower(env *Env) ProductionResult {
	st := f.Grower
	if st.Mode == GrowLivestock {
		return f.produceLivestock(env)
	}
	return f.produceCrop(env)
}

// produceCrop accumulates growth each hour; at 100% one full
// hectare-yield batch lands in inventory and growth resets. Output is
// batch, not continuous.
func (f *Firm) produceCrop(env *Env) ProductionResult {
	st := f.Grower
	if st.SeasonHours <= 0 {
		return stalled(StallNoReserves)
	}

	st.GrowthPct += 100.0 / float64(st.SeasonHours)
	if st.GrowthPct < 100 {
		return ProductionResult{} // still growing
	}

	batch := st.LandSize * st.YieldPerHectare * st.TechBonus
	st.GrowthPct = 0

	quality := 0.6 + env.Rand.Float()*0.3
	accepted := f.Inventory.Add(st.ProductID, batch, quality)

	return ProductionResult{
		Produced:  true,
		ProductID: st.ProductID,
		Quantity:  accepted,
		Quality:   quality,
	}
}

// produceLivestock trickles a small continuous output proportional to
// herd size and technology, with periodic maturity-triggered herd growth.
func (f *Firm) produceLivestock(env *Env) ProductionResult {
	st := f.Grower
	if st.HerdSize <= 0 {
		return stalled(StallNoReserves)
	}

	st.HoursSinceGrowth++
	if st.MaturityHours > 0 && st.HoursSinceGrowth >= st.MaturityHours {
		st.HoursSinceGrowth = 0
		growth := int(float64(st.HerdSize) * 0.04)
		if growth < 1 {
			growth = 1
		}
		st.HerdSize += growth
	}

	output := float64(st.HerdSize) * 0.01 * st.TechLevel
	quality := 0.55 + st.TechLevel*0.1
	if quality > 1 {
		quality = 1
	}
	accepted := f.Inventory.Add(st.ProductID, output, quality)

	return ProductionResult{
		Produced:  true,
		ProductID: st.ProductID,
		Quantity:  accepted,
		Quality:   quality,
	}
}
