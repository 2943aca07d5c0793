package firm

// Corporation is a passive roll-up of owned firms, used only for
// reporting. It never drives firm behavior.
type Corporation struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	FirmIDs []string `json:"firm_ids"`
}

// CorpFinancials is the aggregated view of a corporation's firms.
type CorpFinancials struct {
	Firms        int     `json:"firms"`
	Cash         float64 `json:"cash"`
	Debt         float64 `json:"debt"`
	MonthRevenue float64 `json:"month_revenue"`
	MonthExpense float64 `json:"month_expense"`
	TotalProfit  float64 `json:"total_profit"`
}

// Rollup aggregates financials across the corporation's firms, resolved
// through the supplied lookup.
func (c *Corporation) Rollup(resolve func(id string) *Firm) CorpFinancials {
	var agg CorpFinancials
	for _, id := range c.FirmIDs {
		f := resolve(id)
		if f == nil {
			continue
		}
		agg.Firms++
		agg.Cash += f.Cash
		agg.Debt += f.Debt
		agg.MonthRevenue += f.MonthRevenue
		agg.MonthExpense += f.MonthExpense
		agg.TotalProfit += f.TotalProfit
	}
	return agg
}
