package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"floorplan-editor/internal/common/config"
	"floorplan-editor/internal/common/logging"
	"floorplan-editor/internal/common/middleware"
	"floorplan-editor/internal/editor/controller"
	"floorplan-editor/internal/editor/handlers"
	"floorplan-editor/internal/editor/journal"
	"floorplan-editor/internal/editor/render"
	"floorplan-editor/internal/editor/session"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/sirupsen/logrus"
)

// ============================================================
// Floorplan Editor Service
// ============================================================

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.IsProduction())
	log := logging.For("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	j, err := journal.Open(ctx, journal.MemoryDSN)
	if err != nil {
		log.WithError(err).Fatal("Failed to open journal")
	}
	defer j.Close()

	sessions := session.NewManager(editorFactory(cfg.SeedDemo))
	renderer := render.NewRenderer(float64(cfg.SurfaceWidth), float64(cfg.SurfaceHeight))
	editorHandler := handlers.NewEditorHandler(sessions, j, renderer)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Floorplan Editor",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger(cfg.QuietPointer))
	app.Use(middleware.CORS(cfg.CORSOrigins))

	// ============================================================
	// Routes
	// ============================================================

	handlers.Register(app, editorHandler, sessions)

	// ============================================================
	// Background
	// ============================================================

	go sweepSessions(ctx, sessions, j, cfg.SessionTTL, cfg.SweepInterval)

	go func() {
		<-ctx.Done()
		log.Info("Shutting down")
		if err := app.Shutdown(); err != nil {
			log.WithError(err).Error("Shutdown failed")
		}
	}()

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Environment}).Info("Starting Floorplan Editor")

	if err := app.Listen(addr); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}
}

func editorFactory(seedDemo bool) func() *controller.Editor {
	return func() *controller.Editor {
		if seedDemo {
			return controller.New(controller.WithPlan(controller.DemoPlan()))
		}
		return controller.New()
	}
}

// sweepSessions закрывает простаивающие сессии, пока ctx не отменён.
func sweepSessions(ctx context.Context, sessions *session.Manager, j *journal.Journal, ttl, interval time.Duration) {
	log := logging.For("sweeper")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, id := range sessions.Sweep(ttl) {
				if err := j.Forget(ctx, id); err != nil {
					log.WithError(err).WithField("session_id", id).Warn("Failed to forget journal")
				}
				log.WithField("session_id", id).Info("Idle session closed")
			}
		}
	}
}
