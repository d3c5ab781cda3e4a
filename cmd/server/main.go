package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "resume-builder/internal/adapter/http"
	repo "resume-builder/internal/adapter/repository"
	"resume-builder/internal/adapter/storage"
	"resume-builder/internal/config"
	"resume-builder/internal/export"
	"resume-builder/internal/infrastructure/migration"
	"resume-builder/internal/practice"
	"resume-builder/internal/render"
	"resume-builder/internal/templates"
	"resume-builder/internal/usecase"
	infra "resume-builder/pkg/infrastructure"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := config.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database not available", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := migration.RunMigrations(ctx, pool); err != nil {
		os.Exit(1)
	}

	reg, err := templates.Load(cfg.TemplateDefault)
	if err != nil {
		slog.Error("load templates", "error", err)
		os.Exit(1)
	}

	raster := infra.NewChromedpRasterizer(cfg.ChromePath, cfg.ExportTimeout)
	if err := raster.Available(); err != nil {
		slog.Warn("PDF export disabled", "error", err)
	}

	deps := usecase.Deps{
		Repo:     repo.NewResumesRepo(pool),
		Profiles: repo.NewProfilesRepo(pool),
		Registry: reg,
		Renderer: render.New(reg, render.WithImageTimeout(cfg.ImageFetchTimeout), render.WithLogger(log)),
		Pipeline: export.NewPipeline(raster, export.WithPipelineLogger(log)),
		Logger:   log,
	}
	if cfg.UploadsEnabled() {
		up, err := storage.NewR2Uploader(ctx, cfg.R2)
		if err != nil {
			slog.Error("storage not available", "error", err)
			os.Exit(1)
		}
		deps.Uploader = up
	} else {
		slog.Warn("uploads disabled, R2 settings missing")
	}
	svc := usecase.NewService(deps)

	app := fiber.New(fiber.Config{
		BodyLimit:    storage.MaxUploadBytes + 1<<20,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.ExportTimeout + 30*time.Second,
	})
	app.Use(recover.New())
	app.Use(logger.New())

	api := app.Group("/api")
	httpadapter.NewHandler(svc).Register(api)
	if cfg.PracticeFixtures {
		httpadapter.NewPracticeHandler(practice.Default()).Register(api)
		slog.Info("practice fixtures mounted")
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	slog.Info("server listening", "port", cfg.Port, "export_available", svc.CanExport())
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
