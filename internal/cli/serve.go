package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yumyai/mutlookup/internal/util"
	"github.com/yumyai/mutlookup/logger"
	mydb "github.com/yumyai/mutlookup/pkg/db"
	"github.com/yumyai/mutlookup/pkg/handler"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		Short:   "Start the mutation lookup dashboard",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (env MUTLOOKUP_ADDR)")
	cmd.Flags().String("static", "", "Static asset folder (env MUTLOOKUP_STATIC)")
	_ = a.v.BindPFlag("addr", cmd.Flags().Lookup("addr"))
	_ = a.v.BindPFlag("static", cmd.Flags().Lookup("static"))
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	mdb, err := mydb.NewMatrixDB(a.cfg.Data)
	if err != nil {
		return err
	}

	if !util.DirExists(a.cfg.Static) {
		logger.Warn("Static folder not found, page styling disabled", zap.String("static", a.cfg.Static))
	}

	dbctx := handler.NewDBContext(mdb, a.remap())
	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           handler.NewRouter(dbctx, a.cfg.Static, logger.L()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Start:", zap.String("Version", VERSION))
	logger.Info("Serving matrices from", zap.String("DATA", mdb.Dir))
	logger.Info("Server starting", zap.String("addr", a.cfg.Addr))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "error starting server")
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
