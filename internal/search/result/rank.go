package result

import "sort"

// positionDecayLimit caps how far down an engine's list position still
// lowers the score contribution.
const positionDecayLimit = 10

// Merge combines per-engine result lists into a single rated list. A result
// reported by several engines accumulates each engine's weighted score, so
// agreement between engines ranks a page up. Within one engine's list,
// earlier positions score higher. The longest snippet wins for the merged
// result's text.
func Merge(byEngine map[string][]Result, weights map[string]float64) []Rated {
	merged := map[string]*Rated{}
	var order []string

	for engine, results := range byEngine {
		weight := weights[engine]
		if weight == 0 {
			weight = 1
		}
		for pos, r := range results {
			decay := pos
			if decay > positionDecayLimit {
				decay = positionDecayLimit
			}
			score := weight * (1 - 0.05*float64(decay))

			k := key(r.URL)
			existing, ok := merged[k]
			if !ok {
				merged[k] = &Rated{Result: r, Score: score, Engines: []string{engine}}
				order = append(order, k)
				continue
			}

			existing.Score += score
			existing.Engines = append(existing.Engines, engine)
			if len(r.Text) > len(existing.Text) {
				existing.Text = r.Text
			}
			if existing.Title == "" {
				existing.Title = r.Title
			}
			if existing.Src == "" {
				existing.Src = r.Src
			}
		}
	}

	rated := make([]Rated, 0, len(merged))
	for _, k := range order {
		r := merged[k]
		sort.Strings(r.Engines)
		rated = append(rated, *r)
	}

	sort.SliceStable(rated, func(i, j int) bool {
		if rated[i].Score != rated[j].Score {
			return rated[i].Score > rated[j].Score
		}
		return rated[i].Title < rated[j].Title
	})

	return rated
}

// Filter drops rated results whose host the given predicate rejects.
func Filter(rated []Rated, blocked func(host string) bool) []Rated {
	if blocked == nil {
		return rated
	}
	kept := rated[:0]
	for _, r := range rated {
		if blocked(r.Host()) {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}
