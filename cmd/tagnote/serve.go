package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/totegamma/tagnote/internal/config"
	"github.com/totegamma/tagnote/internal/infra/database"
	"github.com/totegamma/tagnote/internal/present/rest"
	"github.com/totegamma/tagnote/internal/present/rest/middleware"
	"github.com/totegamma/tagnote/internal/service"
)

type configLoader func() (config.Config, error)

func newServeCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), conf)
		},
	}
}

func newMigrateCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := load()
			if err != nil {
				return err
			}

			db, err := database.Open(conf.Database)
			if err != nil {
				return errors.Wrap(err, "open database")
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			err = database.Migrate(db)
			if err != nil {
				return errors.Wrap(err, "migrate database")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrated")
			return nil
		},
	}
}

func serve(ctx context.Context, conf config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("tagnote starting", slog.String("version", version), slog.String("module", "main"))

	if conf.Server.EnableTrace {
		shutdown, err := service.SetupTraceProvider(ctx, conf.Server.TraceEndpoint, "tagnote", version)
		if err != nil {
			return errors.Wrap(err, "setup tracing")
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				slog.Error("failed to shutdown tracer", slog.String("error", err.Error()), slog.String("module", "main"))
			}
		}()
	}

	a, err := newApp(conf)
	if err != nil {
		return err
	}
	defer a.close()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("tagnote"))
	}

	var events rest.EventSource
	if a.signal != nil {
		events = a.signal
	}
	auth := middleware.NewAuthMiddleware(conf.Server.APIToken)
	rest.NewHandler(a.note, events).RegisterRoutes(e, auth.RequireToken)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", slog.String("error", err.Error()), slog.String("module", "main"))
		}
	}()

	slog.Info("listening", slog.String("addr", conf.Server.Listen), slog.String("module", "main"))
	err = e.Start(conf.Server.Listen)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
