package model

import (
	"encoding/csv"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/cockroachdb/errors"
)

const (
	dateLayout  = "2006-01-02"
	indexHeader = "strain"
)

// BuildDateMatrix folds strain records into a dense matrix. Records sharing a
// label are merged into one row; rows keep the order in which labels first
// appear. Records without any date produce no row.
func BuildDateMatrix(records []StrainRecord) *DateMatrix {
	order := make([]string, 0, len(records))
	byLabel := make(map[string]map[time.Time]int, len(records))
	seenDates := make(map[time.Time]struct{})

	for _, rec := range records {
		if len(rec.Counts) == 0 {
			continue
		}
		acc, ok := byLabel[rec.Label]
		if !ok {
			acc = make(map[time.Time]int, len(rec.Counts))
			byLabel[rec.Label] = acc
			order = append(order, rec.Label)
		}
		for d, c := range rec.Counts {
			acc[d] += c
			seenDates[d] = struct{}{}
		}
	}

	dates := make([]time.Time, 0, len(seenDates))
	for d := range seenDates {
		dates = append(dates, d)
	}
	sortDates(dates)

	col := indexDates(dates)
	rows := make([]MatrixRow, 0, len(order))
	for _, label := range order {
		counts := make([]int, len(dates))
		for d, c := range byLabel[label] {
			counts[col[d]] = c
		}
		rows = append(rows, MatrixRow{Label: label, Counts: counts})
	}

	return &DateMatrix{Dates: dates, Rows: rows}
}

// WriteCSV persists the matrix as "strain,<date>,..." with empty cells for
// zero counts.
func (m *DateMatrix) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(m.Dates)+1)
	header = append(header, indexHeader)
	for _, d := range m.Dates {
		header = append(header, d.Format(dateLayout))
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "write matrix header")
	}

	record := make([]string, len(m.Dates)+1)
	for _, row := range m.Rows {
		record[0] = row.Label
		for i, c := range row.Counts {
			if c == 0 {
				record[i+1] = ""
			} else {
				record[i+1] = strconv.Itoa(c)
			}
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "write matrix row %q", row.Label)
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flush matrix")
}

// ReadDateMatrix loads a persisted matrix. Empty cells read as zero, float
// cells ("3.0") are accepted, and out-of-order or repeated date columns are
// folded onto a sorted, distinct axis.
func ReadDateMatrix(r io.Reader) (*DateMatrix, error) {
	br, delim := sniff(r)
	cr := newCSVReader(br, delim)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return &DateMatrix{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read matrix header")
	}

	fileDates := make([]time.Time, 0, len(header)-1)
	for _, raw := range header[1:] {
		d, err := dateparse.ParseAny(strings.TrimSpace(raw))
		if err != nil {
			return nil, errors.Wrapf(err, "bad date column %q", raw)
		}
		fileDates = append(fileDates, truncateDay(d))
	}

	dates := uniqueSorted(fileDates)
	col := indexDates(dates)
	target := make([]int, len(fileDates))
	for i, d := range fileDates {
		target[i] = col[d]
	}

	m := &DateMatrix{Dates: dates}
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "matrix line %d", line)
		}
		if len(record) == 0 {
			continue
		}

		counts := make([]int, len(dates))
		for i, cell := range record[1:] {
			if i >= len(target) {
				return nil, errors.Newf("matrix line %d: %d cells for %d date columns", line, len(record)-1, len(target))
			}
			n, err := parseCount(cell)
			if err != nil {
				return nil, errors.Wrapf(err, "matrix line %d column %q", line, header[i+1])
			}
			counts[target[i]] += n
		}
		m.Rows = append(m.Rows, MatrixRow{Label: record[0], Counts: counts})
	}

	return m, nil
}

func parseCount(cell string) (int, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "nan") {
		return 0, nil
	}
	if n, err := strconv.Atoi(cell); err == nil && n >= 0 {
		return n, nil
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil || f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, errors.Newf("bad count %q", cell)
	}
	return int(math.Round(f)), nil
}

// Totals sums every row per date column.
func (m *DateMatrix) Totals() []int {
	totals := make([]int, len(m.Dates))
	for _, row := range m.Rows {
		for i, c := range row.Counts {
			totals[i] += c
		}
	}
	return totals
}

// Match returns the indexes of rows whose label contains every token as a
// literal substring.
func (m *DateMatrix) Match(tokens []string) []int {
	var idx []int
	for i, row := range m.Rows {
		if MatchesAll(row.Label, tokens) {
			idx = append(idx, i)
		}
	}
	return idx
}

// SumRows adds up the selected rows per date column.
func (m *DateMatrix) SumRows(idx []int) []int {
	sums := make([]int, len(m.Dates))
	for _, i := range idx {
		for j, c := range m.Rows[i].Counts {
			sums[j] += c
		}
	}
	return sums
}

// RowTotal is the number of observations recorded for row i.
func (m *DateMatrix) RowTotal(i int) int {
	total := 0
	for _, c := range m.Rows[i].Counts {
		total += c
	}
	return total
}

// UnionDates merges the date axes of several matrices.
func UnionDates(matrices ...*DateMatrix) []time.Time {
	var all []time.Time
	for _, m := range matrices {
		all = append(all, m.Dates...)
	}
	return uniqueSorted(all)
}

// Align reindexes values (laid out on dates) onto axis, filling gaps with 0.
func Align(dates []time.Time, values []int, axis []time.Time) []int {
	col := indexDates(axis)
	out := make([]int, len(axis))
	for i, d := range dates {
		if j, ok := col[d]; ok {
			out[j] += values[i]
		}
	}
	return out
}

func indexDates(dates []time.Time) map[time.Time]int {
	col := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		col[d] = i
	}
	return col
}

func uniqueSorted(dates []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(dates))
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sortDates(out)
	return out
}

func sortDates(dates []time.Time) {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
}
