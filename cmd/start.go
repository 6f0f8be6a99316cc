package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auto-validator/core/loader"
	"auto-validator/core/logger"
	"auto-validator/core/middleware/auth"
	"auto-validator/core/middleware/rayid"
	"auto-validator/core/scheduler"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "auto-validator/docs/swagger"
)

// @title Auto Validator API
// @version 1.0
// @description API for syncing validators, hotkeys and subnets with the config repository.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the HTTP server and the sync scheduler",
	Long:  `Starts the HTTP server, registers all features and schedules periodic syncs.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := bootstrap(ctx)
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		defer a.Close()
		logg := a.logger
		zap.ReplaceGlobals(logg)

		if !a.cfg.Server.IsValidSchema() {
			logg.Fatal("Invalid default schema", zap.String("schema", a.cfg.Server.DefaultSchema))
		}
		for _, location := range []string{a.cfg.Source.ValidatorsLocation, a.cfg.Source.SubnetsLocation} {
			if err := a.fetcher.Check(ctx, location); err != nil {
				logg.Warn("Configuration source not reachable", zap.String("location", location), zap.Error(err))
			}
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		mgr := loader.NewManager()
		mgr.Register(a.validatorsFeature())
		mgr.Register(a.subnetsFeature())
		mgr.Register(a.integrityFeature())

		// RayID first so every later log line carries it
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		app.Get("/health", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok"})
		})
		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(auth.Config{ApiKey: a.cfg.Server.ApiKey}))

		loaded, err := mgr.LoadAll(app)
		if err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}
		logg.Info("Features loaded", zap.Strings("features", loaded))

		sched := scheduler.New(ctx, a.cfg.Scheduler, logg)
		if a.cfg.Scheduler.Enabled {
			for _, f := range mgr.Features() {
				scheduled, ok := f.(interface {
					Schedule(*scheduler.Scheduler) error
				})
				if !ok || !f.IsEnabled() {
					continue
				}
				if err := scheduled.Schedule(sched); err != nil {
					logg.Fatal("Failed to schedule jobs", zap.String("feature", f.Name()), zap.Error(err))
				}
			}
			sched.Start()
			logg.Info("Scheduler started", zap.Strings("jobs", sched.Jobs()))
		}

		go func() {
			logg.Info("Starting server", zap.String("port", a.cfg.Server.Port))
			if err := app.Listen(":" + a.cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		<-ctx.Done()
		logg.Info("Shutting down server...")
		if a.cfg.Scheduler.Enabled {
			sched.Stop()
		}
		timeout := time.Duration(a.cfg.Server.ShutdownTimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		_ = app.ShutdownWithTimeout(timeout)
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
