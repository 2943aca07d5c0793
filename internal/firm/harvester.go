package firm

// HarvesterState is the logging payload: a renewable stand whose health
// degrades when cut beyond its regrowth ceiling and recovers when rested.
type HarvesterState struct {
	ProductID  string  `json:"product_id"`
	ForestSize float64 `json:"forest_size"` // hectares
	Density    float64 `json:"density"`     // stems per hectare factor
	YieldRate  float64 `json:"yield_rate"`  // units/hour per effective hectare
	CutRate    float64 `json:"cut_rate"`    // configured units/hour target
	Health     float64 `json:"health"`      // [0,1], feeds effective yield
}

// produceHarvester cuts up to the stand's sustainable ceiling. Cutting
// at the ceiling degrades health slightly; cutting under it lets the
// stand recover. Effective yield scales with health.
func (f *Firm) produceHarvester(env *Env) ProductionResult {
	st := f.Harvester

	ceiling := st.ForestSize * st.Density * st.YieldRate * st.Health
	if ceiling <= 0 {
		return stalled(StallNoReserves)
	}

	output := st.CutRate
	overCutting := output >= ceiling
	if overCutting {
		output = ceiling
		st.Health -= 0.002
		if st.Health < 0.05 {
			st.Health = 0.05
		}
	} else {
		// Resting margin lets the stand regrow.
		st.Health += 0.001
		if st.Health > 1 {
			st.Health = 1
		}
	}

	quality := 0.5 + st.Health*0.5
	accepted := f.Inventory.Add(st.ProductID, output, quality)

	return ProductionResult{
		Produced:  true,
		ProductID: st.ProductID,
		Quantity:  accepted,
		Quality:   quality,
	}
}
