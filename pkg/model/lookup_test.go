package model

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore serves matrices from memory, keyed by "source/protein".
type memStore map[string]string

func (s memStore) OpenMatrix(source, protein string) (io.ReadCloser, error) {
	body, ok := s[source+"/"+protein]
	if !ok {
		return nil, errors.Wrapf(os.ErrNotExist, "%s/%s", source, protein)
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

var fixtureStore = memStore{
	"gisaid/mpro": "strain,2021-01-01,2021-01-02,2021-01-04,2021-01-11\n" +
		"P132H,1,2,,1\n" +
		"K90R P132H,1,,1,\n" +
		"K90R,2,1,1,3\n",
	"genbank/mpro": "strain,2021-01-03,2021-01-04\n" +
		"P132H,,4\n" +
		"T21I,5,1\n",
	"gisaid/rbd":    "strain,2021-02-01\nN171Y,3\nE154K,1\n",
	"genbank/rbd":   "strain,2021-02-01\nN171Y,1\n",
	"gisaid/plpro":  "strain\n",
	"genbank/plpro": "",
}

func matchedOf(res SourceResult) []int {
	out := make([]int, len(res.Series))
	for i, pc := range res.Series {
		out[i] = pc.Matched
	}
	return out
}

func totalsOf(res SourceResult) []int {
	out := make([]int, len(res.Series))
	for i, pc := range res.Series {
		out[i] = pc.Total
	}
	return out
}

func TestLookupWeekly(t *testing.T) {
	l := NewLookup(fixtureStore, DefaultRemap)

	got, err := l.Run(LookupRequest{Protein: ProteinMpro, Mutations: []string{"P132H"}})
	require.NoError(t, err)

	assert.Equal(t, BinWeekly, got.Binning)
	assert.Equal(t, []string{"P132H"}, got.AdjustedTokens)
	assert.True(t, got.AnyFound())
	require.Len(t, got.Results, 2)

	gisaid, genbank := got.Results[0], got.Results[1]
	assert.Equal(t, SourceGISAID, gisaid.Source)
	assert.Equal(t, SourceGenBank, genbank.Source)

	// Both sources share one axis of three weekly periods.
	require.Len(t, gisaid.Series, 3)
	require.Len(t, genbank.Series, 3)
	assert.Equal(t, "2021-01-01 to 2021-01-03", gisaid.Series[0].Period.Label)
	assert.Equal(t, "2021-01-04 to 2021-01-04", gisaid.Series[1].Period.Label)
	assert.Equal(t, "2021-01-11 to 2021-01-11", gisaid.Series[2].Period.Label)
	assert.Equal(t, gisaid.Series[1].Period, genbank.Series[1].Period)

	assert.True(t, gisaid.Found)
	assert.Equal(t, []int{4, 1, 1}, matchedOf(gisaid))
	assert.Equal(t, []int{7, 2, 4}, totalsOf(gisaid))
	assert.Equal(t, 6, gisaid.SequenceCount)
	assert.Equal(t, 13, gisaid.TotalCount)
	assert.Equal(t, 2, gisaid.UniqueStrains)
	assert.Equal(t, 3, gisaid.MatrixRows)
	assert.InDelta(t, 6.0/13.0, gisaid.Prevalence, 1e-9)
	assert.InDelta(t, 400.0/7.0, gisaid.Summary.PeakRelative, 1e-9)
	assert.Equal(t, "2021-01-01 to 2021-01-03", gisaid.Summary.PeakPeriod)

	assert.True(t, genbank.Found)
	assert.Equal(t, []int{0, 4, 0}, matchedOf(genbank))
	assert.Equal(t, []int{5, 5, 0}, totalsOf(genbank))
	assert.InDelta(t, 0.4, genbank.Prevalence, 1e-9)
	assert.Equal(t, 0.0, genbank.Series[2].Relative)
	assert.Equal(t, 80.0, genbank.Series[1].Relative)
}

func TestLookupBinningsAgree(t *testing.T) {
	l := NewLookup(fixtureStore, DefaultRemap)

	daily, err := l.Run(LookupRequest{Protein: ProteinMpro, Mutations: []string{"P132H"}, Binning: BinDaily})
	require.NoError(t, err)
	monthly, err := l.Run(LookupRequest{Protein: ProteinMpro, Mutations: []string{"P132H"}, Binning: BinMonthly})
	require.NoError(t, err)

	assert.Len(t, daily.Results[0].Series, 5)
	assert.Equal(t, []int{2, 2, 0, 1, 1}, matchedOf(daily.Results[0]))

	require.Len(t, monthly.Results[0].Series, 1)
	assert.Equal(t, "2021-01", monthly.Results[0].Series[0].Period.Label)

	for i := range daily.Results {
		assert.Equal(t, daily.Results[i].SequenceCount, monthly.Results[i].SequenceCount)
		assert.Equal(t, daily.Results[i].TotalCount, monthly.Results[i].TotalCount)
	}
}

func TestLookupNormalisesDisplaySettings(t *testing.T) {
	l := NewLookup(fixtureStore, DefaultRemap)

	got, err := l.Run(LookupRequest{
		Protein:   ProteinMpro,
		Mutations: []string{"P132H"},
		Binning:   "yearly",
		Scale:     "sqrt",
		Mode:      "percent",
	})
	require.NoError(t, err)

	assert.Equal(t, BinWeekly, got.Binning)
	assert.Equal(t, ScaleLinear, got.Scale)
	assert.Equal(t, ModeRelative, got.Mode)
	assert.Len(t, got.Results[0].Series, 3)
}

func TestLookupAndSemantics(t *testing.T) {
	l := NewLookup(fixtureStore, DefaultRemap)

	got, err := l.Run(LookupRequest{Protein: ProteinMpro, Mutations: []string{"K90R, P132H"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"K90R", "P132H"}, got.Mutations)

	gisaid, genbank := got.Results[0], got.Results[1]
	assert.True(t, gisaid.Found)
	assert.Equal(t, []int{1, 1, 0}, matchedOf(gisaid))
	assert.Equal(t, 1, gisaid.UniqueStrains)

	// Not found still carries the totals.
	assert.False(t, genbank.Found)
	assert.Equal(t, 2, genbank.MatrixRows)
	assert.Equal(t, []int{0, 0, 0}, matchedOf(genbank))
	assert.Equal(t, []int{5, 5, 0}, totalsOf(genbank))
}

func TestLookupNotFound(t *testing.T) {
	l := NewLookup(fixtureStore, DefaultRemap)

	got, err := l.Run(LookupRequest{Protein: ProteinMpro, Mutations: []string{"Q189K"}})
	require.NoError(t, err)
	assert.False(t, got.AnyFound())
	for _, res := range got.Results {
		assert.Zero(t, res.SequenceCount)
		assert.Zero(t, res.Prevalence)
	}

	// Empty matrices are not found either, but report no rows.
	got, err = l.Run(LookupRequest{Protein: ProteinPLpro, Mutations: []string{"P132H"}})
	require.NoError(t, err)
	assert.False(t, got.AnyFound())
	for _, res := range got.Results {
		assert.Zero(t, res.MatrixRows)
		assert.Empty(t, res.Series)
	}
}

func TestLookupRBDRemap(t *testing.T) {
	l := NewLookup(fixtureStore, DefaultRemap)

	got, err := l.Run(LookupRequest{Protein: ProteinRBD, Mutations: []string{"N501Y"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"N501Y"}, got.Mutations)
	assert.Equal(t, []string{"N171Y"}, got.AdjustedTokens)
	assert.Equal(t, 3, got.Results[0].SequenceCount)
	assert.Equal(t, 4, got.Results[0].TotalCount)
	assert.True(t, got.Results[1].Found)
	assert.InDelta(t, 1.0, got.Results[1].Prevalence, 1e-9)
}

func TestLookupErrors(t *testing.T) {
	l := NewLookup(fixtureStore, DefaultRemap)

	_, err := l.Run(LookupRequest{Protein: "spike", Mutations: []string{"P132H"}})
	assert.True(t, errors.Is(err, ErrUnknownProtein))

	_, err = l.Run(LookupRequest{Protein: ProteinMpro, Mutations: []string{" , ,"}})
	assert.True(t, errors.Is(err, ErrNoTokens))

	_, err = l.Run(LookupRequest{Protein: ProteinMpro})
	assert.True(t, errors.Is(err, ErrNoTokens))

	partial := memStore{"gisaid/mpro": fixtureStore["gisaid/mpro"]}
	_, err = NewLookup(partial, DefaultRemap).Run(LookupRequest{Protein: ProteinMpro, Mutations: []string{"P132H"}})
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
