package selection

import (
	"math"
	"sort"
)

// Balance swaps members of selected so that roughly ratio of them are
// short-form. Replacements are the heaviest entries of pool that are not
// already selected; the lightest members of the over-represented format
// are dropped. When pool lacks enough items of the missing format, the
// remaining slots keep the other format. Positions and length of selected
// are preserved.
func (w *Weighter) Balance(selected, pool []Weight, ratio float64) []Weight {
	ratio = min(max(ratio, 0), 1)
	return w.BalanceTo(selected, pool, int(math.Round(ratio*float64(len(selected)))))
}

// BalanceTo is Balance with an absolute number of short-form members.
func (w *Weighter) BalanceTo(selected, pool []Weight, shortTarget int) []Weight {
	if len(selected) == 0 {
		return selected
	}
	target := min(max(shortTarget, 0), len(selected))

	out := append([]Weight(nil), selected...)
	short := 0
	for _, s := range out {
		if s.Item.IsShortForm() {
			short++
		}
	}

	switch {
	case short < target:
		return swapFormat(out, pool, true, target-short)
	case short > target:
		return swapFormat(out, pool, false, short-target)
	default:
		return out
	}
}

// swapFormat replaces up to need members not of the wanted format with the
// heaviest unselected pool entries of the wanted format.
func swapFormat(out, pool []Weight, wantShort bool, need int) []Weight {
	chosen := make(map[string]bool, len(out))
	for _, s := range out {
		chosen[s.Item.ID] = true
	}

	var supply []Weight
	for _, p := range pool {
		if p.Item.IsShortForm() == wantShort && !chosen[p.Item.ID] {
			supply = append(supply, p)
			chosen[p.Item.ID] = true
		}
	}
	sortWeights(supply)

	var victims []int
	for i, s := range out {
		if s.Item.IsShortForm() != wantShort {
			victims = append(victims, i)
		}
	}
	sort.SliceStable(victims, func(a, b int) bool {
		wa, wb := out[victims[a]], out[victims[b]]
		if wa.Total != wb.Total {
			return wa.Total < wb.Total
		}
		return wa.Item.ID > wb.Item.ID
	})

	n := min(need, len(supply), len(victims))
	for k := 0; k < n; k++ {
		out[victims[k]] = supply[k]
	}
	return out
}
