package handler

import (
	"mime"
	"net/http"

	"github.com/justinas/alice"
	"go.uber.org/zap"

	"github.com/yumyai/mutlookup/pkg/middle"
)

func NewRouter(dbctx *DBContext, staticDir string, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	// Error route
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	// Main routes
	mux.HandleFunc("GET /{$}", dbctx.MainPage)
	mux.HandleFunc("GET /chart.png", dbctx.ChartHandler)

	// API routes
	mux.HandleFunc("GET /api/v1/health", dbctx.HealthCheck)
	mux.HandleFunc("GET /api/v1/lookup", dbctx.LookupAPI)

	// Static files
	setupStaticFiles(mux, staticDir)

	chain := alice.New(
		middle.RequestIDMiddleware(log),
		middle.LoggingMiddleware(log),
	)
	return chain.Then(mux)
}

func setupStaticFiles(mux *http.ServeMux, dir string) {
	_ = mime.AddExtensionType(".js", "text/javascript")
	_ = mime.AddExtensionType(".css", "text/css")
	fs := http.FileServer(http.Dir(dir))
	mux.Handle("GET /static/", http.StripPrefix("/static/", fs))
}
