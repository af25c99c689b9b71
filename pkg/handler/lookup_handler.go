package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/yumyai/mutlookup/logger"
	"github.com/yumyai/mutlookup/pkg/handler/request"
	"github.com/yumyai/mutlookup/pkg/middle"
	"github.com/yumyai/mutlookup/pkg/model"
	"github.com/yumyai/mutlookup/pkg/render"
)

type LookupResponse struct {
	Success   bool                `json:"success"`
	Payload   *model.LookupResult `json:"payload,omitempty"`
	Error     string              `json:"error,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
}

// statusFor maps lookup errors onto HTTP statuses. Bad input is the
// caller's fault; anything else (usually a missing matrix) is ours.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrUnknownProtein), errors.Is(err, model.ErrNoTokens):
		return http.StatusBadRequest
	case errors.Is(err, render.ErrNothingToPlot):
		return http.StatusNotFound
	case errors.Is(err, render.ErrNotEnoughPoints):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage hides file system details behind server errors.
func publicMessage(err error, status int) string {
	if status == http.StatusInternalServerError {
		return "Failed to load mutation data"
	}
	return err.Error()
}

func (dbctx *DBContext) runLookup(r *http.Request, form request.LookupForm) (*model.LookupResult, error) {
	log := middle.FromContext(r.Context(), logger.L())

	req, err := form.ToModel()
	if err != nil {
		return nil, err
	}

	res, err := dbctx.Lookup.Run(req)
	if err != nil {
		log.Error("Lookup failed",
			zap.String(logger.FieldProtein, form.Protein),
			zap.String(logger.FieldTokens, form.Mutations),
			zap.Error(err),
		)
		return nil, err
	}
	return res, nil
}

// Main page. Without mutations it only shows the form.
func (dbctx *DBContext) MainPage(w http.ResponseWriter, r *http.Request) {
	form := request.ParseLookupForm(r.URL.Query())
	data := render.LookupPageData{Form: form}
	status := http.StatusOK

	if !form.Empty() {
		res, err := dbctx.runLookup(r, form)
		if err != nil {
			status = statusFor(err)
			data.Error = publicMessage(err, status)
		}
		data.Result = res
	}

	var buf bytes.Buffer
	if err := render.RenderLookupPage(&buf, data); err != nil {
		logger.Error("Failed to render lookup page", zap.Error(err))
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// LookupAPI returns the full lookup result as JSON.
func (dbctx *DBContext) LookupAPI(w http.ResponseWriter, r *http.Request) {
	form := request.ParseLookupForm(r.URL.Query())

	res, err := dbctx.runLookup(r, form)
	if err != nil {
		status := statusFor(err)
		writeJSON(w, status, LookupResponse{
			Error:     publicMessage(err, status),
			RequestID: middle.RequestIDFromContext(r.Context()),
		})
		return
	}
	writeJSON(w, http.StatusOK, LookupResponse{Success: true, Payload: res})
}

// ChartHandler serves the timeline PNG for the same query string as the page.
func (dbctx *DBContext) ChartHandler(w http.ResponseWriter, r *http.Request) {
	form := request.ParseLookupForm(r.URL.Query())

	res, err := dbctx.runLookup(r, form)
	if err == nil {
		var buf bytes.Buffer
		if err = render.RenderChart(&buf, res); err == nil {
			w.Header().Set("Content-Type", "image/png")
			w.Header().Set("Cache-Control", "no-store")
			buf.WriteTo(w)
			return
		}
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Failed to render chart", zap.Error(err))
	}
	http.Error(w, publicMessage(err, status), status)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}
