package db

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/yumyai/mutlookup/internal/util"
)

// Defining possible error
var ErrDataDirNotExists = errors.New("data folder does not exist")

type NoMatrixError struct {
	Path string
	Err  error
}

func (e *NoMatrixError) Error() string {
	return fmt.Sprintf("matrix file error: %s: %v", e.Path, e.Err)
}

func (e *NoMatrixError) Unwrap() error {
	return e.Err
}

// folder which hosts [source]/[protein]/[source]_[protein]_*.csv
type MatrixDB struct {
	Dir string
}

func NewMatrixDB(dir string) (*MatrixDB, error) {
	if !util.DirExists(dir) {
		return nil, errors.Wrapf(ErrDataDirNotExists, "%s", dir)
	}
	return &MatrixDB{Dir: dir}, nil
}

func (mdb *MatrixDB) pairDir(source, protein string) string {
	return filepath.Join(mdb.Dir, source, protein)
}

// RecordsPath is the raw strain-mutation table consumed by the builder.
func (mdb *MatrixDB) RecordsPath(source, protein string) string {
	return filepath.Join(mdb.pairDir(source, protein),
		fmt.Sprintf("%s_%s_strain_mutations.csv", source, protein))
}

// MatrixPath is the derived date matrix consumed by lookups.
func (mdb *MatrixDB) MatrixPath(source, protein string) string {
	return filepath.Join(mdb.pairDir(source, protein),
		fmt.Sprintf("%s_%s_date_matrix.csv", source, protein))
}

// HasMatrix reports whether the date matrix of the pair has been built.
func (mdb *MatrixDB) HasMatrix(source, protein string) bool {
	return util.FileExists(mdb.MatrixPath(source, protein))
}

func (mdb *MatrixDB) OpenRecords(source, protein string) (io.ReadCloser, error) {
	return openReadOnly(mdb.RecordsPath(source, protein))
}

func (mdb *MatrixDB) OpenMatrix(source, protein string) (io.ReadCloser, error) {
	return openReadOnly(mdb.MatrixPath(source, protein))
}

func openReadOnly(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &NoMatrixError{Path: path, Err: err}
	}
	return f, nil
}

// WriteMatrix streams a matrix into a temp file next to the destination and
// renames it into place, so readers never see a partial file. It returns the
// written path and its size in bytes.
func (mdb *MatrixDB) WriteMatrix(source, protein string, write func(io.Writer) error) (string, int64, error) {
	dest := mdb.MatrixPath(source, protein)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", 0, errors.Wrapf(err, "create %s", filepath.Dir(dest))
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".date_matrix-*.csv")
	if err != nil {
		return "", 0, errors.Wrap(err, "create temp matrix")
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return "", 0, err
	}
	if err := tmp.Close(); err != nil {
		return "", 0, errors.Wrap(err, "close temp matrix")
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", 0, errors.Wrapf(err, "rename into %s", dest)
	}

	info, err := os.Stat(dest)
	if err != nil {
		return dest, 0, errors.Wrapf(err, "stat %s", dest)
	}
	return dest, info.Size(), nil
}
