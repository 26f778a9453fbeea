package selection

import "github.com/abhisek/adaptiq/internal/item"

// Select returns up to count distinct items from pool. An empty pool gives
// an empty result. A pool no larger than count is returned whole and
// shuffled without weighting. Otherwise items are weighted, drawn and
// format-balanced.
func (w *Weighter) Select(pool []item.Item, count int, sig Signals, opts Options, rng RandomSource) []item.Item {
	return Items(w.SelectWeighted(pool, count, sig, opts, rng))
}

// SelectWeighted is Select keeping the weights of the chosen items. Items
// returned through the unweighted fallback carry a zero weight.
func (w *Weighter) SelectWeighted(pool []item.Item, count int, sig Signals, opts Options, rng RandomSource) []Weight {
	pool = Distinct(pool)
	if len(pool) == 0 || count <= 0 {
		return []Weight{}
	}
	rng = orDefault(rng)

	if len(pool) <= count {
		out := make([]Weight, len(pool))
		for i, it := range pool {
			out[i] = Weight{Item: it}
		}
		Shuffle(out, rng)
		return out
	}

	weights := w.Weigh(pool, sig, opts)
	drawn := w.Draw(weights, count, rng)
	return w.Balance(drawn, weights, w.cfg.shortFormRatio(opts))
}

// Distinct drops items whose ID was already seen, keeping the first.
func Distinct(items []item.Item) []item.Item {
	seen := make(map[string]bool, len(items))
	out := make([]item.Item, 0, len(items))
	for _, it := range items {
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		out = append(out, it)
	}
	return out
}

// ShortFormRatio returns the effective short-form ratio for opts.
func (w *Weighter) ShortFormRatio(opts Options) float64 {
	return w.cfg.shortFormRatio(opts)
}
