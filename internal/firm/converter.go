package firm

// ConverterState is the manufacturing payload: fixed-ratio inputs from
// the catalog recipe, stochastic downtime, and a defect fraction applied
// before finished goods are credited.
type ConverterState struct {
	OutputID     string  `json:"output_id"`
	RatePerHour  float64 `json:"rate_per_hour"`  // target finished units/hour
	DowntimeProb float64 `json:"downtime_prob"`  // per-hour chance the line is down
	DefectRate   float64 `json:"defect_rate"`    // fraction scrapped
	Technology   float64 `json:"technology"`     // [0,1]
	QCInvestment float64 `json:"qc_investment"`  // monthly spend on quality control
}

// produceConverter runs one hour of the line. Any input below the
// per-unit need aborts with insufficient-input and leaves inventory
// untouched.
func (f *Firm) produceConverter(env *Env) ProductionResult {
	st := f.Converter

	product := env.Catalog.Get(st.OutputID)
	if product == nil {
		return stalled(StallInsufficientInput)
	}

	if env.Rand.Chance(st.DowntimeProb) {
		return stalled(StallDowntime)
	}

	units := st.RatePerHour
	// Check every input before consuming any — an aborted hour must not
	// mutate stock.
	var inputQualitySum, inputWeight float64
	for inputID, perUnit := range product.Inputs {
		need := perUnit * units
		if f.Inventory.Quantity(inputID) < need {
			return stalled(StallInsufficientInput)
		}
		inputQualitySum += f.Inventory.Quality(inputID) * perUnit
		inputWeight += perUnit
	}

	for inputID, perUnit := range product.Inputs {
		f.Inventory.Remove(inputID, perUnit*units)
	}

	good := units * (1 - st.DefectRate)
	quality := f.converterQuality(inputQualitySum, inputWeight)
	accepted := f.Inventory.Add(st.OutputID, good, quality)

	return ProductionResult{
		Produced:  true,
		ProductID: st.OutputID,
		Quantity:  accepted,
		Quality:   quality,
	}
}

// converterQuality blends technology, QC spend, input quality, and
// skilled headcount into a [0,1] score.
func (f *Firm) converterQuality(inputQualitySum, inputWeight float64) float64 {
	st := f.Converter

	inputQuality := 0.5
	if inputWeight > 0 {
		inputQuality = inputQualitySum / inputWeight
	}
	qcScore := st.QCInvestment / (st.QCInvestment + 500) // diminishing returns
	skill := float64(f.SkilledLaborCount()) / 20.0
	if skill > 1 {
		skill = 1
	}

	q := st.Technology*0.35 + qcScore*0.2 + inputQuality*0.3 + skill*0.15
	if q > 1 {
		q = 1
	}
	if q < 0 {
		q = 0
	}
	return q
}
