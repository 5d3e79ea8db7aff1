package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/armtoolchain/pkg/cli/config"
	controller "github.com/m-mizutani/armtoolchain/pkg/controller/http"
	"github.com/m-mizutani/armtoolchain/pkg/utils/logging"
)

func cmdMirror() *cli.Command {
	var mirrorCfg config.Mirror

	return &cli.Command{
		Name:    "mirror",
		Aliases: []string{"m"},
		Usage:   "Serve a directory of toolchain archives over HTTP",
		Flags:   mirrorCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.From(ctx)

			info, err := os.Stat(mirrorCfg.Dir)
			if err != nil {
				return goerr.Wrap(err, "failed to open mirror directory", goerr.V("dir", mirrorCfg.Dir))
			}
			if !info.IsDir() {
				return goerr.New("mirror path is not a directory", goerr.V("dir", mirrorCfg.Dir))
			}

			server, err := controller.NewServer(
				ctx,
				controller.WithAddr(mirrorCfg.Addr),
				controller.WithDir(mirrorCfg.Dir),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Mirror server starting",
					slog.String("addr", mirrorCfg.Addr),
					slog.String("dir", mirrorCfg.Dir),
					slog.String("base_url", "http://"+mirrorCfg.Addr+controller.FilesPath),
				)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			case err, ok := <-errCh:
				if ok {
					return goerr.Wrap(err, "mirror server failed")
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
