package handler

import (
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	mydb "github.com/yumyai/mutlookup/pkg/db"
	"github.com/yumyai/mutlookup/pkg/model"
)

var matrices = map[string]string{
	"gisaid/mpro": "strain,2021-01-01,2021-01-02,2021-01-04,2021-01-11\n" +
		"P132H,1,2,,1\n" +
		"K90R P132H,1,,1,\n" +
		"K90R,2,1,1,3\n",
	"genbank/mpro": "strain,2021-01-03,2021-01-04\n" +
		"P132H,,4\n" +
		"T21I,5,1\n",
	"gisaid/rbd":  "strain,2021-02-01\nN171Y,3\nE154K,1\n",
	"genbank/rbd": "strain,2021-02-01\nN171Y,1\n",
}

// newTestServer lays the matrices out on disk and serves them through the
// full router, middleware included.
func newTestServer(t *testing.T) (*httptest.Server, *mydb.MatrixDB) {
	t.Helper()

	mdb, err := mydb.NewMatrixDB(t.TempDir())
	require.NoError(t, err)
	for key, body := range matrices {
		parts := strings.SplitN(key, "/", 2)
		path := mdb.MatrixPath(parts[0], parts[1])
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}

	static := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(static, "style.css"), []byte("body {}"), 0o644))

	srv := httptest.NewServer(NewRouter(NewDBContext(mdb, model.DefaultRemap), static, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv, mdb
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeLookup(t *testing.T, resp *http.Response) LookupResponse {
	t.Helper()
	var out LookupResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestLookupAPI(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := get(t, srv.URL+"/api/v1/lookup?protein=mpro&mutations=P132H")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	out := decodeLookup(t, resp)
	require.True(t, out.Success)
	require.Len(t, out.Payload.Results, 2)
	assert.Equal(t, model.BinWeekly, out.Payload.Binning)
	assert.Equal(t, model.ModeRelative, out.Payload.Mode)
	assert.Equal(t, 6, out.Payload.Results[0].SequenceCount)
	assert.Equal(t, 4, out.Payload.Results[1].SequenceCount)
	assert.Len(t, out.Payload.Results[0].Series, 3)
}

func TestLookupAPIRemapAndBinning(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := get(t, srv.URL+"/api/v1/lookup?protein=rbd&mutations=N501Y&binning=monthly&mode=absolute")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeLookup(t, resp)
	assert.Equal(t, []string{"N171Y"}, out.Payload.AdjustedTokens)
	assert.Equal(t, model.BinMonthly, out.Payload.Binning)
	assert.Equal(t, model.ModeAbsolute, out.Payload.Mode)
	assert.True(t, out.Payload.Results[0].Found)
	assert.Equal(t, "2021-02", out.Payload.Results[0].Series[0].Period.Label)
}

func TestLookupAPIErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"unknown protein", "protein=spike&mutations=P132H", http.StatusBadRequest},
		{"no tokens", "protein=mpro&mutations=+,+", http.StatusBadRequest},
		{"missing matrix", "protein=plpro&mutations=P132H", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, srv.URL+"/api/v1/lookup?"+tt.query)
			assert.Equal(t, tt.status, resp.StatusCode)

			out := decodeLookup(t, resp)
			assert.False(t, out.Success)
			assert.NotEmpty(t, out.Error)
			assert.NotContains(t, out.Error, "plpro_date_matrix.csv")
			assert.Equal(t, resp.Header.Get("X-Request-ID"), out.RequestID)
		})
	}
}

func TestMainPage(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := get(t, srv.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	resp = get(t, srv.URL+"/?protein=mpro&mutations=K90R,+P132H")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readAll(t, resp)
	assert.Contains(t, body, "GISAID Dataset")
	assert.Contains(t, body, "Mutation(s) not found in GenBank dataset")
	assert.Contains(t, body, "/chart.png?")

	resp = get(t, srv.URL+"/?protein=mpro&mutations=Q189K")
	body = readAll(t, resp)
	assert.NotContains(t, body, "/chart.png?")
	assert.Contains(t, body, "Mutation(s) not found in GISAID dataset")

	// One month of data: the table is shown, the chart is not.
	resp = get(t, srv.URL+"/?protein=rbd&mutations=N501Y&binning=monthly")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = readAll(t, resp)
	assert.NotContains(t, body, "/chart.png?")
	assert.Contains(t, body, "<td>2021-02</td>")

	resp = get(t, srv.URL+"/?protein=spike&mutations=P132H")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = get(t, srv.URL+"/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestChartHandler(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := get(t, srv.URL+"/chart.png?protein=mpro&mutations=P132H&scale=log")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	_, err := png.DecodeConfig(resp.Body)
	require.NoError(t, err)

	resp = get(t, srv.URL+"/chart.png?protein=mpro&mutations=Q189K")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// A single month cannot be drawn as a line.
	resp = get(t, srv.URL+"/chart.png?protein=rbd&mutations=N501Y")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestHealthAndStatic(t *testing.T) {
	srv, mdb := newTestServer(t)

	resp := get(t, srv.URL+"/api/v1/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	// plpro was never built
	assert.Equal(t, "degraded", health.Health)
	assert.True(t, health.Data)
	assert.True(t, health.Matrices["gisaid/mpro"])
	assert.False(t, health.Matrices["genbank/plpro"])
	assert.Len(t, health.Matrices, 6)

	resp = get(t, srv.URL+"/static/style.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/css")

	require.NoError(t, os.RemoveAll(mdb.Dir))
	resp = get(t, srv.URL+"/api/v1/health")
	health = HealthResponse{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "degraded", health.Health)
	assert.False(t, health.Data)
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}
