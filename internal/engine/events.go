package engine

import (
	"fmt"

	"github.com/protheus99/econsim-sub000/internal/clock"
	"github.com/protheus99/econsim-sub000/internal/firm"
)

// injectEvents rolls the daily low-probability shocks. Each shock
// perturbs firm state directly; the next ticks absorb the consequences
// through the normal production and market paths.
func (w *World) injectEvents(t clock.GameTime) {
	if w.Rand.Chance(w.eventsCfg.SupplyShockProb) {
		w.supplyShock(t)
	}
	if w.Rand.Chance(w.eventsCfg.DemandSurgeProb) {
		w.demandSurge(t)
	}
}

// supplyShock hits a random primary producer: extractors lose reserve,
// harvesters lose stand health, growers lose crop progress or herd.
func (w *World) supplyShock(t clock.GameTime) {
	var producers []*firm.Firm
	for _, f := range w.Firms {
		switch f.Kind {
		case firm.KindExtractor, firm.KindHarvester, firm.KindGrower:
			producers = append(producers, f)
		}
	}
	if len(producers) == 0 {
		return
	}
	f := producers[w.Rand.IntN(len(producers))]

	switch f.Kind {
	case firm.KindExtractor:
		lost := f.Extractor.ReserveRemaining * 0.1
		f.Extractor.ReserveRemaining -= lost
		w.record(t, fmt.Sprintf("geological fault at %s: %.0f units of reserve lost", f.Name, lost), "shock")
	case firm.KindHarvester:
		f.Harvester.Health -= 0.15
		if f.Harvester.Health < 0.05 {
			f.Harvester.Health = 0.05
		}
		w.record(t, fmt.Sprintf("blight in %s's stands", f.Name), "shock")
	case firm.KindGrower:
		if f.Grower.Mode == firm.GrowLivestock {
			lost := f.Grower.HerdSize / 10
			if lost < 1 {
				lost = 1
			}
			f.Grower.HerdSize -= lost
			w.record(t, fmt.Sprintf("disease culls %d head at %s", lost, f.Name), "shock")
		} else {
			f.Grower.GrowthPct *= 0.5
			w.record(t, fmt.Sprintf("storm damages crops at %s", f.Name), "shock")
		}
	}
}

// demandSurge lifts a random retailer's traffic for the coming days.
func (w *World) demandSurge(t clock.GameTime) {
	var retailers []*firm.Firm
	for _, f := range w.Firms {
		if f.Kind == firm.KindRetailer {
			retailers = append(retailers, f)
		}
	}
	if len(retailers) == 0 {
		return
	}
	f := retailers[w.Rand.IntN(len(retailers))]
	f.Retailer.TrafficMod *= 1.3
	if f.Retailer.TrafficMod > 1.2 {
		f.Retailer.TrafficMod = 1.2
	}
	f.Retailer.Satisfaction += 0.1
	if f.Retailer.Satisfaction > 1 {
		f.Retailer.Satisfaction = 1
	}
	w.record(t, fmt.Sprintf("festival crowds boost %s", f.Name), "shock")
}
