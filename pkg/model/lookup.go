package model

import (
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/yumyai/mutlookup/logger"
)

var ErrNoTokens = errors.New("no mutation given")

// MatrixOpener hands out persisted date matrices. *db.MatrixDB satisfies it.
type MatrixOpener interface {
	OpenMatrix(source, protein string) (io.ReadCloser, error)
}

// Lookup answers prevalence queries against the persisted matrices. It keeps
// no state between queries: every Run reloads the matrices it needs.
type Lookup struct {
	Store   MatrixOpener
	Remap   RemapRule
	Sources []Source
}

func NewLookup(store MatrixOpener, remap RemapRule) *Lookup {
	return &Lookup{
		Store:   store,
		Remap:   remap,
		Sources: ALL_SOURCES,
	}
}

// LoadMatrix reads one (source, protein) matrix and releases the file.
func LoadMatrix(store MatrixOpener, source Source, protein Protein) (*DateMatrix, error) {
	rc, err := store.OpenMatrix(string(source), string(protein))
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	m, err := ReadDateMatrix(rc)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s/%s matrix", source, protein)
	}
	return m, nil
}

// Run loads both matrices for the protein, selects rows containing every
// (remapped) token, and bins matched and total counts on the shared date axis.
//
// A source is reported as not found when no row matches, whether because the
// tokens are absent or because its matrix has no rows at all; MatrixRows
// tells the two apart.
func (l *Lookup) Run(req LookupRequest) (*LookupResult, error) {
	start := time.Now()

	if _, ok := MAP_PROTEIN_NAME[req.Protein]; !ok {
		return nil, errors.Wrapf(ErrUnknownProtein, "%q", req.Protein)
	}

	tokens := make([]string, 0, len(req.Mutations))
	for _, m := range req.Mutations {
		tokens = append(tokens, ParseMutations(m)...)
	}
	if len(tokens) == 0 {
		return nil, ErrNoTokens
	}
	adjusted := l.Remap.AdjustAll(tokens, req.Protein)

	if !req.Binning.Valid() {
		req.Binning = BinWeekly
	}
	if req.Scale != ScaleLog {
		req.Scale = ScaleLinear
	}
	if req.Mode != ModeAbsolute {
		req.Mode = ModeRelative
	}

	matrices := make([]*DateMatrix, len(l.Sources))
	for i, source := range l.Sources {
		m, err := LoadMatrix(l.Store, source, req.Protein)
		if err != nil {
			return nil, err
		}
		matrices[i] = m
	}

	axis := UnionDates(matrices...)
	periods, assign := Rebin(axis, req.Binning)

	result := &LookupResult{
		Protein:        req.Protein,
		Mutations:      tokens,
		AdjustedTokens: adjusted,
		Binning:        req.Binning,
		Scale:          req.Scale,
		Mode:           req.Mode,
		Results:        make([]SourceResult, 0, len(l.Sources)),
	}

	for i, source := range l.Sources {
		m := matrices[i]
		idx := m.Match(adjusted)

		matched := SumByPeriod(Align(m.Dates, m.SumRows(idx), axis), assign, len(periods))
		totals := SumByPeriod(Align(m.Dates, m.Totals(), axis), assign, len(periods))

		res := SourceResult{
			Source:        source,
			Found:         len(idx) > 0,
			MatrixRows:    len(m.Rows),
			UniqueStrains: uniqueLabels(m, idx),
			Series:        make([]PeriodCount, len(periods)),
		}
		for j, p := range periods {
			res.Series[j] = PeriodCount{
				Period:   p,
				Matched:  matched[j],
				Total:    totals[j],
				Relative: Relative(matched[j], totals[j]),
			}
			res.SequenceCount += matched[j]
			res.TotalCount += totals[j]
		}
		res.Prevalence = Fraction(res.SequenceCount, res.TotalCount)
		res.Summary = Summarize(res.Series)

		result.Results = append(result.Results, res)
	}

	logger.Info("Lookup finished",
		zap.String(logger.FieldProtein, string(req.Protein)),
		zap.Strings(logger.FieldTokens, adjusted),
		zap.String(logger.FieldBinning, string(req.Binning)),
		zap.Int("periods", len(periods)),
		zap.Duration(logger.FieldDuration, time.Since(start)),
	)

	return result, nil
}

func uniqueLabels(m *DateMatrix, idx []int) int {
	seen := make(map[string]struct{}, len(idx))
	for _, i := range idx {
		seen[m.Rows[i].Label] = struct{}{}
	}
	return len(seen)
}
