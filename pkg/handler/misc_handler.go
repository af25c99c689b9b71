// Handler for miscellaneous endpoints such as health check

package handler

import (
	"net/http"
	"time"

	"github.com/yumyai/mutlookup/internal/util"
	"github.com/yumyai/mutlookup/pkg/model"
)

type HealthResponse struct {
	Health    string          `json:"health"`
	Data      bool            `json:"data"`
	Matrices  map[string]bool `json:"matrices"` // "<source>/<protein>" -> built
	Timestamp time.Time       `json:"timestamp"`
}

// HealthCheck reports "degraded" when the data folder is gone or a matrix
// has not been built, since lookups on it would fail.
func (dbctx *DBContext) HealthCheck(w http.ResponseWriter, r *http.Request) {

	response := HealthResponse{
		Health:    "ok",
		Data:      util.DirExists(dbctx.Matrix_DB.Dir),
		Matrices:  make(map[string]bool),
		Timestamp: time.Now(),
	}
	for _, source := range model.ALL_SOURCES {
		for _, protein := range model.ALL_PROTEINS {
			built := dbctx.Matrix_DB.HasMatrix(string(source), string(protein))
			response.Matrices[string(source)+"/"+string(protein)] = built
			if !built {
				response.Health = "degraded"
			}
		}
	}
	if !response.Data {
		response.Health = "degraded"
	}

	writeJSON(w, http.StatusOK, response)
}
