package engine

import (
	"fmt"

	"github.com/protheus99/econsim-sub000/internal/clock"
	"github.com/protheus99/econsim-sub000/internal/firm"
)

// depositFloat is the working cash a firm keeps on hand; surplus above
// it is parked at a bank at monthly settlement.
const depositFloat = 150000.0

// shortfallTermMonths is the standard term for a shortfall loan.
const shortfallTermMonths = 12

// lenders returns the banks in roster order.
func (w *World) lenders() []*firm.Firm {
	var banks []*firm.Firm
	for _, f := range w.Firms {
		if f.Kind == firm.KindLender {
			banks = append(banks, f)
		}
	}
	return banks
}

// fundShortfalls runs at monthly settlement. An insolvent firm raises
// enough to cover its negative balance plus one month of operating
// costs: first by drawing down its own deposits, then by borrowing from
// the first bank that will underwrite it. A firm no bank will touch
// stays insolvent and keeps missing loan payments until it defaults.
func (w *World) fundShortfalls(t clock.GameTime) {
	banks := w.lenders()
	if len(banks) == 0 {
		return
	}
	for _, f := range w.Firms {
		if f.Kind == firm.KindLender || f.Cash >= 0 {
			continue
		}
		need := -f.Cash + f.CalculateMonthlyOperatingCosts()

		for _, bank := range banks {
			need -= bank.WithdrawDeposit(f, need)
			if need <= 0 {
				break
			}
		}
		if need <= 0 {
			w.record(t, fmt.Sprintf("%s covered its shortfall from deposits", f.Name), "finance")
			continue
		}

		funded := false
		for _, bank := range banks {
			loan, err := bank.IssueLoan(f, need, shortfallTermMonths)
			if err != nil {
				continue
			}
			w.record(t, fmt.Sprintf("%s borrowed %.0f from %s", f.Name, loan.Principal, bank.Name), "finance")
			funded = true
			break
		}
		if !funded {
			w.record(t, fmt.Sprintf("%s could not fund a %.0f shortfall", f.Name, need), "finance")
		}
	}
}

// placeDeposits parks half of any cash above the working float at the
// first bank, where it earns monthly interest.
func (w *World) placeDeposits() {
	banks := w.lenders()
	if len(banks) == 0 {
		return
	}
	for _, f := range w.Firms {
		if f.Kind == firm.KindLender {
			continue
		}
		if surplus := f.Cash - depositFloat; surplus > 0 {
			banks[0].AcceptDeposit(f, surplus*0.5)
		}
	}
}
