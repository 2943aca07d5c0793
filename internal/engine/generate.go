package engine

import (
	"github.com/google/uuid"

	"github.com/protheus99/econsim-sub000/internal/firm"
)

// Generate builds the standard firm population across the default
// geography: primary producers inland, converters by their inputs,
// retailers in every city, one bank per country.
func Generate() ([]*firm.Firm, []*firm.Corporation) {
	var firms []*firm.Firm

	add := func(f *firm.Firm) *firm.Firm {
		firms = append(firms, f)
		return f
	}

	// ── Primary producers ────────────────────────────────────────────
	ironMine := add(firm.New("Eisenfeld Iron Works", firm.KindExtractor, "eisenfeld", 60000, 4000))
	ironMine.Extractor = &firm.ExtractorState{
		ProductID: "iron_ore", ReserveTotal: 500000, ReserveRemaining: 500000,
		BaseRate: 12, EquipmentLevel: 3, PlannedLifeHours: 40000, QualityFactor: 0.8,
	}
	ironMine.Labor = map[string]*firm.LaborRole{
		"miner":    {Count: 40, BaseWage: 160},
		"engineer": {Count: 5, BaseWage: 420, Skilled: true},
	}

	coalMine := add(firm.New("Nordia Coal Fields", firm.KindExtractor, "eisenfeld", 45000, 3000))
	coalMine.Extractor = &firm.ExtractorState{
		ProductID: "coal", ReserveTotal: 400000, ReserveRemaining: 400000,
		BaseRate: 10, EquipmentLevel: 2, PlannedLifeHours: 36000, QualityFactor: 0.75,
	}
	coalMine.Labor = map[string]*firm.LaborRole{
		"miner":    {Count: 30, BaseWage: 150},
		"engineer": {Count: 3, BaseWage: 400, Skilled: true},
	}

	timberCo := add(firm.New("Greenvale Timber", firm.KindHarvester, "greenvale", 40000, 3500))
	timberCo.Harvester = &firm.HarvesterState{
		ProductID: "timber", ForestSize: 800, Density: 0.6, YieldRate: 0.04,
		CutRate: 14, Health: 0.9,
	}
	timberCo.Labor = map[string]*firm.LaborRole{
		"logger":   {Count: 25, BaseWage: 140},
		"forester": {Count: 2, BaseWage: 360, Skilled: true},
	}

	grainFarm := add(firm.New("Vale Grain Cooperative", firm.KindGrower, "greenvale", 35000, 6000))
	grainFarm.Grower = &firm.GrowerState{
		Mode: firm.GrowCrop, ProductID: "grain",
		LandSize: 400, YieldPerHectare: 6, SeasonHours: 2160, TechBonus: 1.2,
	}
	grainFarm.Labor = map[string]*firm.LaborRole{
		"farmhand":   {Count: 35, BaseWage: 110},
		"agronomist": {Count: 2, BaseWage: 380, Skilled: true},
	}

	cottonFarm := add(firm.New("Suder Cotton Estates", firm.KindGrower, "suderholm", 30000, 5000))
	cottonFarm.Grower = &firm.GrowerState{
		Mode: firm.GrowCrop, ProductID: "cotton",
		LandSize: 300, YieldPerHectare: 5, SeasonHours: 2880, TechBonus: 1.1,
	}
	cottonFarm.Labor = map[string]*firm.LaborRole{
		"farmhand": {Count: 30, BaseWage: 105},
	}

	ranch := add(firm.New("Halvard Ranching Co.", firm.KindGrower, "greenvale", 28000, 2500))
	ranch.Grower = &firm.GrowerState{
		Mode: firm.GrowLivestock, ProductID: "livestock",
		HerdSize: 600, TechLevel: 1.3, MaturityHours: 720,
	}
	ranch.Labor = map[string]*firm.LaborRole{
		"herder": {Count: 18, BaseWage: 120},
		"vet":    {Count: 1, BaseWage: 450, Skilled: true},
	}

	// ── Converters ───────────────────────────────────────────────────
	steelWorks := add(firm.New("Eisenfeld Steel Mill", firm.KindConverter, "eisenfeld", 80000, 5000))
	steelWorks.Converter = &firm.ConverterState{
		OutputID: "steel", RatePerHour: 6, DowntimeProb: 0.03, DefectRate: 0.04,
		Technology: 0.7, QCInvestment: 900,
	}
	steelWorks.Labor = map[string]*firm.LaborRole{
		"operator":     {Count: 30, BaseWage: 200},
		"metallurgist": {Count: 6, BaseWage: 500, Skilled: true},
	}
	steelWorks.Inventory.Add("iron_ore", 800, 0.8)
	steelWorks.Inventory.Add("coal", 400, 0.75)

	sawmill := add(firm.New("Vale Sawmill", firm.KindConverter, "greenvale", 35000, 4000))
	sawmill.Converter = &firm.ConverterState{
		OutputID: "lumber", RatePerHour: 8, DowntimeProb: 0.02, DefectRate: 0.06,
		Technology: 0.55, QCInvestment: 300,
	}
	sawmill.Labor = map[string]*firm.LaborRole{
		"sawyer": {Count: 16, BaseWage: 145},
	}
	sawmill.Inventory.Add("timber", 600, 0.9)

	gristmill := add(firm.New("Halvard Gristmill", firm.KindConverter, "port_halvard", 30000, 3000))
	gristmill.Converter = &firm.ConverterState{
		OutputID: "flour", RatePerHour: 10, DowntimeProb: 0.02, DefectRate: 0.03,
		Technology: 0.6, QCInvestment: 250,
	}
	gristmill.Labor = map[string]*firm.LaborRole{
		"miller": {Count: 12, BaseWage: 130},
	}
	gristmill.Inventory.Add("grain", 900, 0.7)

	bakery := add(firm.New("Halvard Baking Co.", firm.KindConverter, "port_halvard", 25000, 2000))
	bakery.Converter = &firm.ConverterState{
		OutputID: "bread", RatePerHour: 14, DowntimeProb: 0.01, DefectRate: 0.02,
		Technology: 0.5, QCInvestment: 150,
	}
	bakery.Labor = map[string]*firm.LaborRole{
		"baker": {Count: 14, BaseWage: 125},
	}
	bakery.Inventory.Add("flour", 500, 0.7)

	textileMill := add(firm.New("Suder Textile Mill", firm.KindConverter, "suderholm", 45000, 4000))
	textileMill.Converter = &firm.ConverterState{
		OutputID: "fabric", RatePerHour: 9, DowntimeProb: 0.025, DefectRate: 0.05,
		Technology: 0.65, QCInvestment: 500,
	}
	textileMill.Labor = map[string]*firm.LaborRole{
		"weaver":     {Count: 24, BaseWage: 135},
		"technician": {Count: 3, BaseWage: 380, Skilled: true},
	}
	textileMill.Inventory.Add("cotton", 700, 0.65)

	garmentWorks := add(firm.New("Suderholm Garment Works", firm.KindConverter, "suderholm", 40000, 3000))
	garmentWorks.Converter = &firm.ConverterState{
		OutputID: "clothing", RatePerHour: 5, DowntimeProb: 0.02, DefectRate: 0.04,
		Technology: 0.6, QCInvestment: 400,
	}
	garmentWorks.Labor = map[string]*firm.LaborRole{
		"tailor": {Count: 20, BaseWage: 150, Skilled: true},
	}
	garmentWorks.Inventory.Add("fabric", 300, 0.7)

	toolWorks := add(firm.New("Nordia Tool & Die", firm.KindConverter, "eisenfeld", 55000, 3000))
	toolWorks.Converter = &firm.ConverterState{
		OutputID: "tools", RatePerHour: 3, DowntimeProb: 0.03, DefectRate: 0.05,
		Technology: 0.75, QCInvestment: 800,
	}
	toolWorks.Labor = map[string]*firm.LaborRole{
		"machinist": {Count: 15, BaseWage: 260, Skilled: true},
	}
	toolWorks.Inventory.Add("steel", 200, 0.75)
	toolWorks.Inventory.Add("lumber", 200, 0.7)

	// ── Retailers ────────────────────────────────────────────────────
	for _, r := range []struct {
		name, city string
		traffic    float64
	}{
		{"Halvard General Stores", "port_halvard", 18},
		{"Eisenfeld Mercantile", "eisenfeld", 10},
		{"Suderholm Emporium", "suderholm", 15},
	} {
		shop := add(firm.New(r.name, firm.KindRetailer, r.city, 50000, 4000))
		shop.Retailer = &firm.RetailerState{
			BaselineTraffic: r.traffic, Markup: 1.6,
			Satisfaction: 0.7, TrafficMod: 0.9,
		}
		shop.Labor = map[string]*firm.LaborRole{
			"clerk":   {Count: 10, BaseWage: 100},
			"manager": {Count: 1, BaseWage: 320, Skilled: true},
		}
		shop.Inventory.Add("bread", 400, 0.7)
		shop.Inventory.Add("clothing", 150, 0.7)
		shop.Inventory.Add("tools", 80, 0.75)
		shop.Inventory.Add("furniture", 40, 0.7)
	}

	// ── Banks ────────────────────────────────────────────────────────
	for _, b := range []struct{ name, city string }{
		{"Bank of Nordia", "port_halvard"},
		{"Sudmark Credit Union", "suderholm"},
	} {
		bank := add(firm.New(b.name, firm.KindLender, b.city, 400000, 100))
		bank.Lender = &firm.LenderState{
			MinCreditScore: 0.45, MaxExposure: 120000,
			LoanRate: 0.09, DepositRate: 0.03,
		}
		bank.Labor = map[string]*firm.LaborRole{
			"teller":  {Count: 8, BaseWage: 140},
			"officer": {Count: 3, BaseWage: 480, Skilled: true},
		}
	}

	corps := []*firm.Corporation{
		{
			ID:      uuid.NewString(),
			Name:    "Nordia Industrial Group",
			FirmIDs: []string{ironMine.ID, coalMine.ID, steelWorks.ID, toolWorks.ID},
		},
		{
			ID:      uuid.NewString(),
			Name:    "Sudmark Agricultural Holdings",
			FirmIDs: []string{grainFarm.ID, cottonFarm.ID, ranch.ID, gristmill.ID},
		},
	}

	return firms, corps
}
