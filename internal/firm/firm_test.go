package firm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protheus99/econsim-sub000/internal/catalog"
	"github.com/protheus99/econsim-sub000/internal/clock"
	"github.com/protheus99/econsim-sub000/internal/entropy"
	"github.com/protheus99/econsim-sub000/internal/geo"
)

func testEnv(seed int64) *Env {
	return &Env{
		Time:    clock.At(12),
		Catalog: catalog.Default(),
		City:    geo.DefaultWorld().City("eisenfeld"),
		Rand:    entropy.NewSource(seed),
	}
}

func TestInventoryClipsToCapacity(t *testing.T) {
	inv := NewInventory(100)

	accepted := inv.Add("grain", 80, 0.7)
	assert.Equal(t, 80.0, accepted)

	accepted = inv.Add("timber", 50, 0.9)
	assert.Equal(t, 20.0, accepted, "add past capacity clips to remaining room")
	assert.Equal(t, 100.0, inv.Total())

	accepted = inv.Add("coal", 10, 0.5)
	assert.Equal(t, 0.0, accepted, "full inventory accepts nothing")
}

func TestInventoryRemoveClipsToStock(t *testing.T) {
	inv := NewInventory(100)
	inv.Add("grain", 30, 0.7)

	removed := inv.Remove("grain", 50)
	assert.Equal(t, 30.0, removed)
	assert.Equal(t, 0.0, inv.Quantity("grain"))

	removed = inv.Remove("grain", 10)
	assert.Equal(t, 0.0, removed, "empty lot yields nothing")
	assert.Equal(t, 0.0, inv.Remove("never_stocked", 5))
}

func TestInventoryBlendsQuality(t *testing.T) {
	inv := NewInventory(1000)
	inv.Add("steel", 100, 0.8)
	inv.Add("steel", 100, 0.4)
	assert.InDelta(t, 0.6, inv.Quality("steel"), 1e-9)
}

func TestExtractorDrawsDownReserve(t *testing.T) {
	f := New("mine", KindExtractor, "eisenfeld", 1000, 10000)
	f.Extractor = &ExtractorState{
		ProductID: "iron_ore", ReserveTotal: 100000, ReserveRemaining: 100000,
		BaseRate: 10, EquipmentLevel: 2, PlannedLifeHours: 10000, QualityFactor: 0.8,
	}
	env := testEnv(1)

	r := f.ProduceHourly(env)
	require.True(t, r.Produced)
	assert.Equal(t, "iron_ore", r.ProductID)
	// Equipment could pull 20/h, but 1.2× the sustainable drawdown
	// (100000/10000 = 10/h) binds first: 12 × 0.8 grade.
	assert.InDelta(t, 9.6, r.Quantity, 1e-9)
	assert.Less(t, f.Extractor.ReserveRemaining, 100000.0)
	assert.Equal(t, r.Quantity, f.Inventory.Quantity("iron_ore"))
}

func TestExtractorHaltsOnExhaustedReserve(t *testing.T) {
	f := New("mine", KindExtractor, "eisenfeld", 1000, 10000)
	f.Extractor = &ExtractorState{
		ProductID: "iron_ore", ReserveTotal: 100, ReserveRemaining: 0,
		BaseRate: 10, EquipmentLevel: 1, PlannedLifeHours: 100, QualityFactor: 0.8,
	}
	env := testEnv(1)

	r := f.ProduceHourly(env)
	assert.False(t, r.Produced)
	assert.Equal(t, StallNoReserves, r.Stall)
	assert.Equal(t, 0.0, f.Inventory.Total())
}

func TestHarvesterOvercutDegradesHealth(t *testing.T) {
	f := New("logger", KindHarvester, "greenvale", 1000, 10000)
	f.Harvester = &HarvesterState{
		ProductID: "timber", ForestSize: 10, Density: 0.5, YieldRate: 0.1,
		CutRate: 100, Health: 0.9, // ceiling far below cut target
	}
	env := testEnv(1)

	r := f.ProduceHourly(env)
	require.True(t, r.Produced)
	assert.Less(t, f.Harvester.Health, 0.9)
	assert.InDelta(t, 10*0.5*0.1*0.9, r.Quantity, 1e-9, "output clipped to stand ceiling")
}

func TestHarvesterRestRecoversHealth(t *testing.T) {
	f := New("logger", KindHarvester, "greenvale", 1000, 10000)
	f.Harvester = &HarvesterState{
		ProductID: "timber", ForestSize: 800, Density: 0.6, YieldRate: 0.04,
		CutRate: 2, Health: 0.5,
	}
	env := testEnv(1)

	f.ProduceHourly(env)
	assert.Greater(t, f.Harvester.Health, 0.5)
}

func TestCropHarvestIsBatch(t *testing.T) {
	f := New("farm", KindGrower, "greenvale", 1000, 100000)
	f.Grower = &GrowerState{
		Mode: GrowCrop, ProductID: "grain",
		LandSize: 10, YieldPerHectare: 5, SeasonHours: 10, TechBonus: 1.2,
	}
	env := testEnv(1)

	for i := 0; i < 9; i++ {
		r := f.ProduceHourly(env)
		assert.False(t, r.Produced, "hour %d should still be growing", i)
		assert.Equal(t, 0.0, f.Inventory.Quantity("grain"))
	}

	r := f.ProduceHourly(env)
	require.True(t, r.Produced)
	assert.InDelta(t, 10*5*1.2, r.Quantity, 1e-9)
	assert.Equal(t, 0.0, f.Grower.GrowthPct, "growth resets after harvest")
}

func TestLivestockHerdGrowsAtMaturity(t *testing.T) {
	f := New("ranch", KindGrower, "greenvale", 1000, 100000)
	f.Grower = &GrowerState{
		Mode: GrowLivestock, ProductID: "livestock",
		HerdSize: 100, TechLevel: 1.0, MaturityHours: 3,
	}
	env := testEnv(1)

	f.ProduceHourly(env)
	f.ProduceHourly(env)
	assert.Equal(t, 100, f.Grower.HerdSize)

	f.ProduceHourly(env)
	assert.Equal(t, 104, f.Grower.HerdSize, "4%% growth at maturity")
}

func TestConverterInsufficientInputLeavesInventoryUntouched(t *testing.T) {
	f := New("mill", KindConverter, "eisenfeld", 1000, 10000)
	f.Converter = &ConverterState{
		OutputID: "steel", RatePerHour: 5, Technology: 0.7, QCInvestment: 500,
	}
	// Steel needs 2 iron_ore + 1 coal per unit. Stock iron ore only.
	f.Inventory.Add("iron_ore", 100, 0.8)
	env := testEnv(1)

	r := f.ProduceHourly(env)
	assert.False(t, r.Produced)
	assert.Equal(t, StallInsufficientInput, r.Stall)
	assert.Equal(t, 100.0, f.Inventory.Quantity("iron_ore"), "aborted hour must not consume inputs")
	assert.Equal(t, 0.0, f.Inventory.Quantity("steel"))
}

func TestConverterConsumesRecipeAndScrapDefects(t *testing.T) {
	f := New("mill", KindConverter, "eisenfeld", 1000, 10000)
	f.Converter = &ConverterState{
		OutputID: "steel", RatePerHour: 5, DefectRate: 0.1,
		Technology: 0.7, QCInvestment: 500,
	}
	f.Inventory.Add("iron_ore", 100, 0.8)
	f.Inventory.Add("coal", 100, 0.7)
	env := testEnv(1)

	r := f.ProduceHourly(env)
	require.True(t, r.Produced)
	assert.InDelta(t, 5*0.9, r.Quantity, 1e-9)
	assert.InDelta(t, 90.0, f.Inventory.Quantity("iron_ore"), 1e-9)
	assert.InDelta(t, 95.0, f.Inventory.Quantity("coal"), 1e-9)
	assert.Greater(t, r.Quality, 0.0)
	assert.LessOrEqual(t, r.Quality, 1.0)
}

func TestConverterDowntimeStallsWithoutConsuming(t *testing.T) {
	f := New("mill", KindConverter, "eisenfeld", 1000, 10000)
	f.Converter = &ConverterState{
		OutputID: "steel", RatePerHour: 5, DowntimeProb: 1.0,
		Technology: 0.7,
	}
	f.Inventory.Add("iron_ore", 100, 0.8)
	f.Inventory.Add("coal", 100, 0.7)
	env := testEnv(1)

	r := f.ProduceHourly(env)
	assert.Equal(t, StallDowntime, r.Stall)
	assert.Equal(t, 100.0, f.Inventory.Quantity("iron_ore"))
}

func TestRetailerSellsDownStockAndRecordsRevenue(t *testing.T) {
	f := New("shop", KindRetailer, "port_halvard", 1000, 10000)
	f.Retailer = &RetailerState{
		BaselineTraffic: 20, Markup: 1.5, Satisfaction: 0.8, TrafficMod: 1.0,
	}
	f.Inventory.Add("bread", 500, 0.7)

	env := testEnv(3)
	env.Time = clock.GameTime{Hour: 11} // footfall peak

	var ledgered int
	env.RecordSale = func(rf *Firm, productID string, qty, unitPrice float64) {
		ledgered++
	}

	r := f.ProduceHourly(env)
	require.Greater(t, r.Sales, 0)
	assert.Equal(t, r.Sales, ledgered, "every sale reaches the ledger")
	assert.Less(t, f.Inventory.Quantity("bread"), 500.0)
	assert.Greater(t, f.Cash, 1000.0)
	assert.InDelta(t, r.Revenue, f.MonthRevenue, 1e-9)
}

func TestRetailerStockOutsDepressSatisfaction(t *testing.T) {
	f := New("shop", KindRetailer, "port_halvard", 1000, 10000)
	f.Retailer = &RetailerState{
		BaselineTraffic: 20, Markup: 1.5, Satisfaction: 0.9, TrafficMod: 1.0,
	}
	// Empty shelves: every arrival is a miss.
	env := testEnv(3)
	env.Time = clock.GameTime{Hour: 17}

	r := f.ProduceHourly(env)
	assert.Equal(t, 0, r.Sales)
	assert.Less(t, f.Retailer.Satisfaction, 0.9)
}

func TestRetailerRecoversAfterRestock(t *testing.T) {
	f := New("shop", KindRetailer, "port_halvard", 1000, 10000)
	f.Retailer = &RetailerState{
		BaselineTraffic: 20, Markup: 1.5, Satisfaction: 0.7, TrafficMod: 0.9,
	}
	// Stranded fractional lots: too little to sell, enough to browse.
	f.Inventory.Add("bread", 0.4, 0.7)
	f.Inventory.Add("clothing", 0.6, 0.7)
	f.Inventory.Add("tools", 0.3, 0.7)
	f.Inventory.Add("grain", 0.5, 0.7)

	env := testEnv(3)
	for hour := 0; hour < 120; hour++ {
		env.Time = clock.At(uint64(hour))
		f.ProduceHourly(env)
		assert.GreaterOrEqual(t, f.Retailer.Satisfaction, 0.0)
		assert.LessOrEqual(t, f.Retailer.Satisfaction, 1.0)
		assert.GreaterOrEqual(t, f.Retailer.TrafficMod, 0.2, "traffic never collapses past its floor")
	}

	// A full restock brings customers back.
	f.Inventory.Add("bread", 500, 0.7)
	sales := 0
	for hour := 120; hour < 240; hour++ {
		env.Time = clock.At(uint64(hour))
		sales += f.ProduceHourly(env).Sales
	}
	assert.Greater(t, sales, 0, "starvation is not a terminal state")
}

func TestLenderRejectsLowCreditScore(t *testing.T) {
	bank := New("bank", KindLender, "port_halvard", 100000, 100)
	bank.Lender = &LenderState{MinCreditScore: 0.99, MaxExposure: 50000, LoanRate: 0.08}

	borrower := New("shop", KindRetailer, "port_halvard", 500, 1000)
	borrower.Retailer = &RetailerState{BaselineTraffic: 5}
	borrower.Debt = 100000 // heavily leveraged

	loan, err := bank.IssueLoan(borrower, 10000, 12)
	require.ErrorIs(t, err, ErrCreditScoreTooLow)
	assert.Nil(t, loan)
	assert.Equal(t, 500.0, borrower.Cash, "rejection transfers nothing")
	assert.Equal(t, 100000.0, bank.Cash)
}

func TestLenderEnforcesExposureCap(t *testing.T) {
	bank := New("bank", KindLender, "port_halvard", 1000000, 100)
	bank.Lender = &LenderState{MinCreditScore: 0, MaxExposure: 15000, LoanRate: 0.08}

	borrower := New("mill", KindConverter, "eisenfeld", 50000, 1000)
	borrower.Converter = &ConverterState{OutputID: "steel"}

	_, err := bank.IssueLoan(borrower, 10000, 12)
	require.NoError(t, err)

	_, err = bank.IssueLoan(borrower, 10000, 12)
	assert.ErrorIs(t, err, ErrExceedsExposure)
}

func TestLenderRequiresCapital(t *testing.T) {
	bank := New("bank", KindLender, "port_halvard", 5000, 100)
	bank.Lender = &LenderState{MinCreditScore: 0, MaxExposure: 100000, LoanRate: 0.08}

	borrower := New("mill", KindConverter, "eisenfeld", 50000, 1000)
	borrower.Converter = &ConverterState{OutputID: "steel"}

	_, err := bank.IssueLoan(borrower, 10000, 12)
	assert.ErrorIs(t, err, ErrInsufficientCap)
}

func TestLoanIssueAndCollect(t *testing.T) {
	bank := New("bank", KindLender, "port_halvard", 100000, 100)
	bank.Lender = &LenderState{MinCreditScore: 0, MaxExposure: 50000, LoanRate: 0.12}

	borrower := New("mill", KindConverter, "eisenfeld", 20000, 1000)
	borrower.Converter = &ConverterState{OutputID: "steel"}

	loan, err := bank.IssueLoan(borrower, 12000, 12)
	require.NoError(t, err)
	assert.Equal(t, 32000.0, borrower.Cash)
	assert.Equal(t, 12000.0, borrower.Debt)
	assert.Equal(t, 88000.0, bank.Cash)
	assert.Greater(t, loan.MonthlyPayment, 1000.0, "amortized payment exceeds straight-line at positive rate")

	env := testEnv(1)
	env.Resolve = func(id string) *Firm {
		if id == borrower.ID {
			return borrower
		}
		return nil
	}

	bank.CollectLoans(env)
	assert.InDelta(t, 12000-loan.MonthlyPayment, loan.Remaining, 1e-6)
	assert.InDelta(t, 12000-loan.MonthlyPayment, borrower.Debt, 1e-6)
	assert.Equal(t, 0, loan.MissedPayments)
}

func TestLoanDefaultsAfterThreeMisses(t *testing.T) {
	bank := New("bank", KindLender, "port_halvard", 100000, 100)
	bank.Lender = &LenderState{MinCreditScore: 0, MaxExposure: 50000, LoanRate: 0.12}

	borrower := New("mill", KindConverter, "eisenfeld", 10000, 1000)
	borrower.Converter = &ConverterState{OutputID: "steel"}

	loan, err := bank.IssueLoan(borrower, 10000, 12)
	require.NoError(t, err)

	borrower.Cash = 0 // can never pay
	env := testEnv(1)
	env.Resolve = func(id string) *Firm { return borrower }

	bank.CollectLoans(env)
	bank.CollectLoans(env)
	assert.False(t, loan.Defaulted)

	bank.CollectLoans(env)
	assert.True(t, loan.Defaulted)
	assert.Equal(t, 0.0, borrower.Debt, "defaulted balance is forgiven")
	assert.Greater(t, bank.Lender.WriteOffs, 0.0)
}

func TestDepositsAccrueMonthlyInterest(t *testing.T) {
	bank := New("bank", KindLender, "port_halvard", 100000, 100)
	bank.Lender = &LenderState{DepositRate: 0.06}

	saver := New("farm", KindGrower, "greenvale", 5000, 1000)
	saver.Grower = &GrowerState{Mode: GrowCrop, ProductID: "grain", SeasonHours: 100}

	bank.AcceptDeposit(saver, 2400)
	assert.Equal(t, 2600.0, saver.Cash)
	require.Len(t, bank.Lender.Deposits, 1)

	bank.AccrueDeposits()
	assert.InDelta(t, 2400*(1+0.06/12), bank.Lender.Deposits[0].Balance, 1e-9)
}

func TestWithdrawDepositClipsToCashAndBalance(t *testing.T) {
	bank := New("bank", KindLender, "port_halvard", 3000, 100)
	bank.Lender = &LenderState{DepositRate: 0.06}

	saver := New("farm", KindGrower, "greenvale", 5000, 1000)
	saver.Grower = &GrowerState{Mode: GrowCrop, ProductID: "grain", SeasonHours: 100}
	bank.AcceptDeposit(saver, 2400)
	require.Equal(t, 2600.0, saver.Cash)

	bank.Cash = 1500 // illiquid branch
	assert.Equal(t, 1500.0, bank.WithdrawDeposit(saver, 2400), "payout clips to the bank's cash")
	assert.Equal(t, 900.0, bank.Lender.Deposits[0].Balance)
	assert.Equal(t, 4100.0, saver.Cash)

	bank.Cash = 10000
	assert.Equal(t, 900.0, bank.WithdrawDeposit(saver, 5000), "then to the account balance")
	assert.Equal(t, 0.0, bank.Lender.Deposits[0].Balance)
	assert.Equal(t, 5000.0, saver.Cash)

	stranger := New("mine", KindExtractor, "eisenfeld", 0, 100)
	stranger.Extractor = &ExtractorState{ProductID: "iron_ore"}
	assert.Equal(t, 0.0, bank.WithdrawDeposit(stranger, 100), "no account, no payout")
}

func TestWagesSplitAcrossTwoInstallments(t *testing.T) {
	f := New("mill", KindConverter, "eisenfeld", 50000, 1000)
	f.Converter = &ConverterState{OutputID: "steel"}
	f.Labor = map[string]*LaborRole{
		"operator": {Count: 10, BaseWage: 200},
	}
	env := testEnv(1)

	full := f.CalculateLaborCosts(env)
	// 10 × 200 × 0.95 city salary × 1.25 overhead
	assert.InDelta(t, 10*200*0.95*1.25, full, 1e-9)

	paid := f.PayWages(env, 0.5)
	paid += f.PayWages(env, 0.5)
	assert.InDelta(t, full, paid, 1e-9)
	assert.InDelta(t, 50000-full, f.Cash, 1e-9)
}

func TestMonthlySettlementRealizesProfit(t *testing.T) {
	f := New("mill", KindConverter, "eisenfeld", 50000, 1000)
	f.Converter = &ConverterState{OutputID: "steel", QCInvestment: 300}
	env := testEnv(1)

	f.RecordRevenue(8000)
	f.RecordExpense(3000)
	op := f.CalculateMonthlyOperatingCosts()

	f.UpdateMonthly(env)
	assert.InDelta(t, 8000-3000-op, f.TotalProfit, 1e-9)
	assert.Equal(t, 0.0, f.MonthRevenue)
	assert.Equal(t, 0.0, f.MonthExpense)
}

func TestCreditScoreStaysInUnitRange(t *testing.T) {
	rich := New("mill", KindConverter, "eisenfeld", 1e9, 1000)
	rich.Converter = &ConverterState{OutputID: "steel"}
	rich.TotalRevenue = 100
	rich.TotalProfit = 100

	broke := New("shop", KindRetailer, "greenvale", 0, 1000)
	broke.Retailer = &RetailerState{}
	broke.Debt = 1e6
	broke.TotalRevenue = 100
	broke.TotalProfit = -200

	for _, f := range []*Firm{rich, broke} {
		score := CreditScore(f)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
	assert.Greater(t, CreditScore(rich), CreditScore(broke))
}

func TestCorporationRollup(t *testing.T) {
	a := New("mine", KindExtractor, "eisenfeld", 1000, 100)
	a.Extractor = &ExtractorState{ProductID: "iron_ore"}
	a.Debt = 200
	a.TotalProfit = 50
	b := New("mill", KindConverter, "eisenfeld", 3000, 100)
	b.Converter = &ConverterState{OutputID: "steel"}
	b.TotalProfit = -20

	corp := &Corporation{ID: "c1", Name: "Group", FirmIDs: []string{a.ID, b.ID, "missing"}}
	index := map[string]*Firm{a.ID: a, b.ID: b}

	fin := corp.Rollup(func(id string) *Firm { return index[id] })
	assert.Equal(t, 2, fin.Firms)
	assert.Equal(t, 4000.0, fin.Cash)
	assert.Equal(t, 200.0, fin.Debt)
	assert.Equal(t, 30.0, fin.TotalProfit)
}
