package model

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"github.com/yumyai/mutlookup/logger"
)

const (
	labelColumn = "mutations"
	datesColumn = "dates"
)

var ErrMissingColumn = errors.New("required column missing")

// One raw row of <source>_<protein>_strain_mutations.csv. Extra columns are
// ignored.
type strainRow struct {
	Mutations string `csv:"mutations"`
	Dates     string `csv:"dates"`
}

// ReadStrainRecords decodes the raw strain table. Rows whose date list cannot
// be decoded are skipped (SkipAndContinue) and counted in skipped.
func ReadStrainRecords(r io.Reader) (records []StrainRecord, skipped int, err error) {
	br, delim := sniff(r)

	head, _ := br.Peek(sniffSize)
	if err := checkColumns(head, delim); err != nil {
		return nil, 0, err
	}

	rows := []*strainRow{}
	if err := gocsv.UnmarshalCSV(newCSVReader(br, delim), &rows); err != nil {
		return nil, 0, errors.Wrap(err, "failed to decode strain records")
	}

	records = make([]StrainRecord, 0, len(rows))
	for i, row := range rows {
		dates, parseErr := ParseDateList(row.Dates)
		if parseErr != nil {
			skipped++
			logger.Debug("Skipping strain row",
				zap.Int("row", i+1),
				zap.String("label", row.Mutations),
				zap.String("policy", SkipAndContinue),
				zap.Error(parseErr))
			continue
		}
		records = append(records, newStrainRecord(row.Mutations, dates))
	}

	return records, skipped, nil
}

func newStrainRecord(label string, dates []time.Time) StrainRecord {
	counts := make(map[time.Time]int, len(dates))
	for _, d := range dates {
		counts[truncateDay(d)]++
	}
	return StrainRecord{Label: label, Counts: counts}
}

func checkColumns(head []byte, delim rune) error {
	header, err := newCSVReader(bytes.NewReader(head), delim).Read()
	if err != nil {
		return errors.Wrap(err, "failed to read header")
	}

	seen := make(map[string]bool, len(header))
	for _, col := range header {
		seen[strings.TrimSpace(col)] = true
	}
	for _, want := range []string{labelColumn, datesColumn} {
		if !seen[want] {
			return errors.Wrapf(ErrMissingColumn, "%q", want)
		}
	}
	return nil
}
