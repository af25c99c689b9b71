package model

import "time"

// Strain observations parsed from one input row. Repeated observations on
// the same day are folded into a count.
type StrainRecord struct {
	Label  string
	Counts map[time.Time]int
}

// Total is the number of observations across all dates.
func (s StrainRecord) Total() int {
	total := 0
	for _, c := range s.Counts {
		total += c
	}
	return total
}

type MatrixRow struct {
	Label  string
	Counts []int // aligned with DateMatrix.Dates
}

// DateMatrix is a strain x calendar-date table of observation counts for one
// (source, protein) pair. Dates are sorted and distinct; labels may repeat.
type DateMatrix struct {
	Dates []time.Time
	Rows  []MatrixRow
}

type Scale string

const (
	ScaleLinear Scale = "linear"
	ScaleLog    Scale = "log"
)

type CountMode string

const (
	ModeAbsolute CountMode = "absolute"
	ModeRelative CountMode = "relative"
)

type LookupRequest struct {
	Protein   Protein
	Mutations []string
	Binning   Binning
	Scale     Scale
	Mode      CountMode
}

// Period is one bin of the aligned axis. Start and End are the calendar
// bounds; First and Last are the dates actually observed inside it.
type Period struct {
	Key   string    `json:"key"`
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	First time.Time `json:"first"`
	Last  time.Time `json:"last"`
}

type PeriodCount struct {
	Period   Period  `json:"period"`
	Matched  int     `json:"matched"`
	Total    int     `json:"total"`
	Relative float64 `json:"relative"` // percent of Total, 0 when Total is 0
}

// Value picks the number plotted for the given count mode.
func (pc PeriodCount) Value(mode CountMode) float64 {
	if mode == ModeAbsolute {
		return float64(pc.Matched)
	}
	return pc.Relative
}

type Summary struct {
	Periods      int     `json:"periods"`
	PeakRelative float64 `json:"peak_relative"`
	PeakPeriod   string  `json:"peak_period"`
	MeanRelative float64 `json:"mean_relative"`
}

type SourceResult struct {
	Source        Source        `json:"source"`
	Found         bool          `json:"found"`
	MatrixRows    int           `json:"matrix_rows"`
	UniqueStrains int           `json:"unique_strains"`
	SequenceCount int           `json:"sequence_count"`
	TotalCount    int           `json:"total_count"`
	Prevalence    float64       `json:"prevalence"` // fraction of TotalCount
	Series        []PeriodCount `json:"series"`
	Summary       Summary       `json:"summary"`
}

type LookupResult struct {
	Protein        Protein        `json:"protein"`
	Mutations      []string       `json:"mutations"`
	AdjustedTokens []string       `json:"adjusted_tokens"`
	Binning        Binning        `json:"binning"`
	Scale          Scale          `json:"scale"`
	Mode           CountMode      `json:"mode"`
	Results        []SourceResult `json:"results"`
}

// AnyFound reports whether at least one source matched.
func (r *LookupResult) AnyFound() bool {
	for _, res := range r.Results {
		if res.Found {
			return true
		}
	}
	return false
}
