package model

import (
	"github.com/montanaflynn/stats"
)

// Summarize reports the peak and mean relative prevalence over the periods
// that have at least one sequence in total. Periods with no sequences are
// left out so they do not drag the mean down.
func Summarize(series []PeriodCount) Summary {
	var (
		rel  stats.Float64Data
		keys []string
	)
	for _, pc := range series {
		if pc.Total == 0 {
			continue
		}
		rel = append(rel, pc.Relative)
		keys = append(keys, pc.Period.Label)
	}

	summary := Summary{Periods: len(rel)}
	if len(rel) == 0 {
		return summary
	}

	peak, err := stats.Max(rel)
	if err != nil {
		return summary
	}
	mean, err := stats.Mean(rel)
	if err != nil {
		return summary
	}

	summary.PeakRelative = peak
	summary.MeanRelative = mean
	for i, v := range rel {
		if v == peak {
			summary.PeakPeriod = keys[i]
			break
		}
	}
	return summary
}
