package db

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatrixDB(t *testing.T) {
	dir := t.TempDir()

	mdb, err := NewMatrixDB(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, mdb.Dir)

	_, err = NewMatrixDB(filepath.Join(dir, "nope"))
	assert.ErrorIs(t, err, ErrDataDirNotExists)
}

func TestPaths(t *testing.T) {
	mdb := &MatrixDB{Dir: "/data"}

	assert.Equal(t, filepath.FromSlash("/data/gisaid/mpro/gisaid_mpro_date_matrix.csv"),
		mdb.MatrixPath("gisaid", "mpro"))
	assert.Equal(t, filepath.FromSlash("/data/genbank/rbd/genbank_rbd_strain_mutations.csv"),
		mdb.RecordsPath("genbank", "rbd"))
}

func TestOpenMissingMatrix(t *testing.T) {
	mdb := &MatrixDB{Dir: t.TempDir()}

	_, err := mdb.OpenMatrix("gisaid", "mpro")
	require.Error(t, err)

	var nme *NoMatrixError
	assert.True(t, errors.As(err, &nme))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "gisaid_mpro_date_matrix.csv")
}

func TestWriteMatrixThenOpen(t *testing.T) {
	mdb := &MatrixDB{Dir: t.TempDir()}

	path, size, err := mdb.WriteMatrix("genbank", "plpro", func(w io.Writer) error {
		_, err := io.WriteString(w, "strain,2021-01-01\nP132H,1\n")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, mdb.MatrixPath("genbank", "plpro"), path)
	assert.Equal(t, int64(26), size)

	rc, err := mdb.OpenMatrix("genbank", "plpro")
	require.NoError(t, err)
	defer rc.Close()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "strain,2021-01-01\nP132H,1\n", string(body))

	// No temp files are left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteMatrixFailureKeepsOldFile(t *testing.T) {
	mdb := &MatrixDB{Dir: t.TempDir()}

	_, _, err := mdb.WriteMatrix("gisaid", "rbd", func(w io.Writer) error {
		_, err := io.WriteString(w, "strain\n")
		return err
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	_, _, err = mdb.WriteMatrix("gisaid", "rbd", func(w io.Writer) error {
		io.WriteString(w, "partial")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	body, err := os.ReadFile(mdb.MatrixPath("gisaid", "rbd"))
	require.NoError(t, err)
	assert.Equal(t, "strain\n", string(body))
}

func TestHasMatrix(t *testing.T) {
	mdb := &MatrixDB{Dir: t.TempDir()}
	assert.False(t, mdb.HasMatrix("gisaid", "rbd"))

	_, _, err := mdb.WriteMatrix("gisaid", "rbd", func(w io.Writer) error {
		_, err := io.WriteString(w, "strain\n")
		return err
	})
	require.NoError(t, err)
	assert.True(t, mdb.HasMatrix("gisaid", "rbd"))
	assert.False(t, mdb.HasMatrix("genbank", "rbd"))
}
