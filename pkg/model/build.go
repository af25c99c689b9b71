package model

import (
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/yumyai/mutlookup/logger"
)

// MatrixStore is where raw records are read from and matrices written to.
// *db.MatrixDB satisfies it.
type MatrixStore interface {
	OpenRecords(source, protein string) (io.ReadCloser, error)
	WriteMatrix(source, protein string, write func(io.Writer) error) (string, int64, error)
}

type BuildReport struct {
	Source      Source
	Protein     Protein
	RowsRead    int
	RowsSkipped int
	Strains     int
	Dates       int
	Sequences   int // observations stored in the matrix
	Output      string
	Bytes       int64
}

// BuildPair converts one raw strain table into its date matrix. A missing or
// unreadable input fails the pair; malformed rows only bump RowsSkipped.
func BuildPair(store MatrixStore, source Source, protein Protein) (*BuildReport, error) {
	start := time.Now()

	rc, err := store.OpenRecords(string(source), string(protein))
	if err != nil {
		return nil, err
	}
	records, skipped, err := ReadStrainRecords(rc)
	rc.Close()
	if err != nil {
		return nil, errors.Wrapf(err, "read %s/%s records", source, protein)
	}

	matrix := BuildDateMatrix(records)

	observed, stored := 0, 0
	for _, rec := range records {
		observed += rec.Total()
	}
	for i := range matrix.Rows {
		stored += matrix.RowTotal(i)
	}
	if observed != stored {
		return nil, errors.AssertionFailedf("%s/%s matrix holds %d observations, records have %d",
			source, protein, stored, observed)
	}

	path, size, err := store.WriteMatrix(string(source), string(protein), matrix.WriteCSV)
	if err != nil {
		return nil, errors.Wrapf(err, "write %s/%s matrix", source, protein)
	}

	report := &BuildReport{
		Source:      source,
		Protein:     protein,
		RowsRead:    len(records) + skipped,
		RowsSkipped: skipped,
		Strains:     len(matrix.Rows),
		Dates:       len(matrix.Dates),
		Sequences:   stored,
		Output:      path,
		Bytes:       size,
	}

	logger.Info("Built date matrix",
		zap.String(logger.FieldSource, string(source)),
		zap.String(logger.FieldProtein, string(protein)),
		zap.Int("rows", report.RowsRead),
		zap.Int("skipped", report.RowsSkipped),
		zap.Int("strains", report.Strains),
		zap.Int("dates", report.Dates),
		zap.Int("sequences", report.Sequences),
		zap.String(logger.FieldFile, path),
		zap.Int64("bytes", size),
		zap.Duration(logger.FieldDuration, time.Since(start)),
	)

	return report, nil
}

// BuildAll builds every (source, protein) pair independently. Failed pairs are
// logged and collected into the returned error; the others still run.
func BuildAll(store MatrixStore, sources []Source, proteins []Protein) ([]BuildReport, error) {
	var (
		reports []BuildReport
		errs    error
	)

	for _, protein := range proteins {
		for _, source := range sources {
			report, err := BuildPair(store, source, protein)
			if err != nil {
				logger.Error("Failed to build date matrix",
					zap.String(logger.FieldSource, string(source)),
					zap.String(logger.FieldProtein, string(protein)),
					zap.Error(err))
				errs = multierr.Append(errs, err)
				continue
			}
			reports = append(reports, *report)
		}
	}

	return reports, errs
}
