package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/cobra"

	"github.com/brayohmurithidev/donatehub-landing/handlers"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local donation API",
	Long: `Run the local donation API.

Examples:
  donatehub serve
  donatehub serve --port 9090
  donatehub serve --ephemeral`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default $PORT or 8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		// route params outlive the request as tracker keys
		Immutable: true,
	})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: a.cfg.CORSAllowOrigins,
		AllowMethods: "GET, POST, DELETE, OPTIONS",
		AllowHeaders: "Content-Type, Idempotency-Key",
	}))

	handlers.NewPaymentHandler(a.session, a.client, a.store, a.logger).Register(app)

	port := servePort
	if port == "" {
		port = a.cfg.Port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server running", "addr", "http://localhost:"+port, "api", a.cfg.APIBaseURL)
		errCh <- app.Listen(":" + port)
	}()

	select {
	case err = <-errCh:
	case <-ctx.Done():
		a.logger.Info("shutting down")
		err = app.ShutdownWithTimeout(10 * time.Second)
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.close(closeCtx)

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
