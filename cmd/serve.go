package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/ev-msrp/internal/config"
	"github.com/sells-group/ev-msrp/internal/inference"
	"github.com/sells-group/ev-msrp/internal/web"
)

const shutdownTimeout = 10 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the price prediction form",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, err := loadModel(cfg.Model.Path)
		if err != nil {
			return err
		}

		handler, err := newHandler(cfg, p, p.Name())
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      handler,
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

// newHandler wires the form server around a loaded predictor.
func newHandler(c *config.Config, p inference.Predictor, modelName string) (http.Handler, error) {
	h, err := web.New(web.Options{
		Builder:   inference.NewBuilder(c.Form),
		Invoker:   inference.NewInvoker(p),
		ModelName: modelName,
		Title:     c.UI.Title,
		IntroHTML: c.UI.IntroHTML,
		RateLimit: c.Server.RateLimit,
		RateBurst: c.Server.RateBurst,
	})
	if err != nil {
		return nil, eris.Wrap(err, "build handler")
	}
	return h.Routes(), nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
