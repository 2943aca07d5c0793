package firm

import "github.com/google/uuid"

// Loan is an amortizing monthly-payment loan on the lender's book.
type Loan struct {
	ID             string  `json:"id"`
	BorrowerID     string  `json:"borrower_id"`
	Principal      float64 `json:"principal"`
	Remaining      float64 `json:"remaining"`
	MonthlyPayment float64 `json:"monthly_payment"`
	Rate           float64 `json:"rate"` // annual
	MissedPayments int     `json:"missed_payments"`
	Defaulted      bool    `json:"defaulted"`
}

// Deposit is an interest-bearing account held at the lender.
type Deposit struct {
	HolderID string  `json:"holder_id"`
	Balance  float64 `json:"balance"`
	Rate     float64 `json:"rate"` // annual
}

// LenderState is the bank payload.
type LenderState struct {
	MinCreditScore float64    `json:"min_credit_score"` // [0,1] floor
	MaxExposure    float64    `json:"max_exposure"`     // single-borrower cap
	LoanRate       float64    `json:"loan_rate"`        // annual
	DepositRate    float64    `json:"deposit_rate"`     // annual
	Loans          []*Loan    `json:"loans"`
	Deposits       []*Deposit `json:"deposits"`
	WriteOffs      float64    `json:"write_offs"` // cumulative defaulted principal lost
}

// industryRisk is the lending risk weight per borrower archetype.
// Extraction carries reserve-exhaustion risk; retail carries demand risk.
var industryRisk = map[Kind]float64{
	KindExtractor: 0.6,
	KindHarvester: 0.5,
	KindGrower:    0.45,
	KindConverter: 0.35,
	KindRetailer:  0.5,
	KindLender:    0.3,
}

// CreditScore rates a borrower in [0,1]:
// weighted(profitability, leverage, liquidity, industry risk).
func CreditScore(borrower *Firm) float64 {
	prof := borrower.Profitability() // roughly [-1, 1]
	profScore := (prof + 1) / 2
	if profScore > 1 {
		profScore = 1
	}
	if profScore < 0 {
		profScore = 0
	}

	leverage := 0.0
	if borrower.Cash > 0 {
		leverage = borrower.Debt / (borrower.Debt + borrower.Cash)
	} else if borrower.Debt > 0 {
		leverage = 1
	}

	liquidity := borrower.Cash / (borrower.Cash + borrower.CalculateMonthlyOperatingCosts() + 1)
	if liquidity < 0 {
		liquidity = 0
	}

	risk := industryRisk[borrower.Kind]

	score := profScore*0.35 + (1-leverage)*0.25 + liquidity*0.25 + (1-risk)*0.15
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

// outstandingTo sums live loan balances owed by one borrower.
func (st *LenderState) outstandingTo(borrowerID string) float64 {
	var sum float64
	for _, l := range st.Loans {
		if l.BorrowerID == borrowerID && !l.Defaulted {
			sum += l.Remaining
		}
	}
	return sum
}

// IssueLoan underwrites an amortizing loan. Rejections are typed,
// expected outcomes: the borrower falls back or retries later.
func (f *Firm) IssueLoan(borrower *Firm, amount float64, termMonths int) (*Loan, error) {
	st := f.Lender

	if CreditScore(borrower) < st.MinCreditScore {
		return nil, ErrCreditScoreTooLow
	}
	if st.outstandingTo(borrower.ID)+amount > st.MaxExposure {
		return nil, ErrExceedsExposure
	}
	if amount > f.Cash {
		return nil, ErrInsufficientCap
	}

	monthlyRate := st.LoanRate / 12
	// Standard amortization payment; falls back to straight-line at 0%.
	payment := amount / float64(termMonths)
	if monthlyRate > 0 {
		pow := 1.0
		for i := 0; i < termMonths; i++ {
			pow *= 1 + monthlyRate
		}
		payment = amount * monthlyRate * pow / (pow - 1)
	}

	loan := &Loan{
		ID:             uuid.NewString(),
		BorrowerID:     borrower.ID,
		Principal:      amount,
		Remaining:      amount,
		MonthlyPayment: payment,
		Rate:           st.LoanRate,
	}
	st.Loans = append(st.Loans, loan)

	f.Cash -= amount
	borrower.Cash += amount
	borrower.Debt += amount
	return loan, nil
}

// CollectLoans runs the monthly book: collect payments, track missed
// ones, default after three consecutive misses with partial recovery.
func (f *Firm) CollectLoans(env *Env) {
	st := f.Lender
	for _, loan := range st.Loans {
		if loan.Defaulted || loan.Remaining <= 0 {
			continue
		}
		borrower := env.Resolve(loan.BorrowerID)
		if borrower == nil {
			continue
		}

		payment := loan.MonthlyPayment
		if payment > loan.Remaining {
			payment = loan.Remaining
		}

		if borrower.Cash < payment {
			loan.MissedPayments++
			if loan.MissedPayments >= 3 {
				f.writeOff(loan, borrower)
			}
			continue
		}

		borrower.RecordExpense(payment)
		borrower.Debt -= payment
		if borrower.Debt < 0 {
			borrower.Debt = 0
		}
		loan.Remaining -= payment
		loan.MissedPayments = 0
		f.RecordRevenue(payment)
	}
}

// writeOff defaults a loan, recovering whatever cash the borrower still
// has up to 40% of the remaining balance.
func (f *Firm) writeOff(loan *Loan, borrower *Firm) {
	loan.Defaulted = true
	recovery := loan.Remaining * 0.4
	if recovery > borrower.Cash {
		recovery = borrower.Cash
	}
	if recovery > 0 {
		borrower.RecordExpense(recovery)
		f.RecordRevenue(recovery)
	}
	borrower.Debt -= loan.Remaining
	if borrower.Debt < 0 {
		borrower.Debt = 0
	}
	f.Lender.WriteOffs += loan.Remaining - recovery
}

// AcceptDeposit opens or tops up an interest-bearing account.
func (f *Firm) AcceptDeposit(holder *Firm, amount float64) {
	if amount <= 0 || holder.Cash < amount {
		return
	}
	st := f.Lender
	holder.Cash -= amount
	f.Cash += amount
	for _, d := range st.Deposits {
		if d.HolderID == holder.ID {
			d.Balance += amount
			return
		}
	}
	st.Deposits = append(st.Deposits, &Deposit{
		HolderID: holder.ID,
		Balance:  amount,
		Rate:     st.DepositRate,
	})
}

// WithdrawDeposit returns funds from the holder's account, clipped to
// the account balance and to the bank's cash on hand. Returns the
// amount actually paid out.
func (f *Firm) WithdrawDeposit(holder *Firm, amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	for _, d := range f.Lender.Deposits {
		if d.HolderID != holder.ID {
			continue
		}
		if amount > d.Balance {
			amount = d.Balance
		}
		if amount > f.Cash {
			amount = f.Cash
		}
		if amount <= 0 {
			return 0
		}
		d.Balance -= amount
		f.Cash -= amount
		holder.Cash += amount
		return amount
	}
	return 0
}

// AccrueDeposits credits one month of interest to every account.
func (f *Firm) AccrueDeposits() {
	for _, d := range f.Lender.Deposits {
		interest := d.Balance * d.Rate / 12
		d.Balance += interest
		f.MonthExpense += interest
		f.Cash -= interest
	}
}
