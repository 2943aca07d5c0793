package firm

// ExtractorState is the mining payload: a finite reserve drawn down by
// equipment-limited extraction.
type ExtractorState struct {
	ProductID        string  `json:"product_id"`
	ReserveTotal     float64 `json:"reserve_total"`
	ReserveRemaining float64 `json:"reserve_remaining"`
	BaseRate         float64 `json:"base_rate"`      // units/hour at equipment level 1
	EquipmentLevel   int     `json:"equipment_level"`
	PlannedLifeHours float64 `json:"planned_life_hours"` // mine plan horizon
	QualityFactor    float64 `json:"quality_factor"`     // ore grade, [0,1]
}

// produceExtractor extracts at the lesser of the equipment-scaled rate
// and 1.2× the sustainable drawdown rate, scaled by ore grade. Halts
// once the reserve is exhausted.
func (f *Firm) produceExtractor(env *Env) ProductionResult {
	st := f.Extractor
	if st.ReserveRemaining <= 0 {
		return stalled(StallNoReserves)
	}

	equipRate := st.BaseRate * float64(st.EquipmentLevel)
	sustainable := st.ReserveRemaining / st.PlannedLifeHours
	rate := equipRate
	if limit := sustainable * 1.2; limit < rate {
		rate = limit
	}

	output := rate * st.QualityFactor
	if output > st.ReserveRemaining {
		output = st.ReserveRemaining
	}
	if output <= 0 {
		return stalled(StallNoReserves)
	}

	st.ReserveRemaining -= output
	accepted := f.Inventory.Add(st.ProductID, output, st.QualityFactor)

	return ProductionResult{
		Produced:  true,
		ProductID: st.ProductID,
		Quantity:  accepted,
		Quality:   st.QualityFactor,
	}
}
