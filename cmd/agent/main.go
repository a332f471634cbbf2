package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"trackiq_agent/internal/api"
	"trackiq_agent/internal/capture"
	"trackiq_agent/internal/config"
	"trackiq_agent/internal/controllers"
	"trackiq_agent/internal/device"
	"trackiq_agent/internal/logger"
	"trackiq_agent/internal/middleware"
	"trackiq_agent/internal/routes"
	"trackiq_agent/internal/session"
	"trackiq_agent/internal/store"
	"trackiq_agent/internal/syncer"
)

func main() {
	cfg := config.Load()

	// Initialize structured logging to file
	logger.Setup(cfg.LogFile, cfg.LogLevel)

	// Connect to the local database
	db := config.InitDB(cfg)

	st := store.New(db)
	sess, err := session.Load(db)
	if err != nil {
		log.Fatalf("failed to load auth state: %v", err)
	}

	dev := device.Collect(db, cfg)
	client := api.NewClient(cfg)
	orch := syncer.New(st, sess, client, dev)
	loop := capture.New(st, orch, cfg)

	// Forced logout stops sampling until the next login.
	orch.SetUnauthorizedHook(loop.Stop)

	ctx := context.Background()
	src := positionSource(cfg)

	if sess.IsSignedIn() {
		if err := loop.Start(ctx, src); err != nil {
			logrus.WithError(err).Error("Could not start capture loop at startup.")
		}
		// Startup doubles as the "app resumed" trigger: drain whatever was
		// left pending when the process last exited.
		go func() {
			if err := orch.SyncPending(ctx); err != nil {
				logrus.WithError(err).Warn("Startup sync failed, samples stay pending.")
			}
		}()
	}

	go resyncLoop(ctx, orch, sess, cfg.ResyncInterval)

	apiHandlers := &controllers.API{
		Store:   st,
		Session: sess,
		Syncer:  orch,
		Client:  client,
		Loop:    loop,
		Hub:     controllers.NewFeedHub(st),
		StartTracking: func() error {
			return loop.Start(ctx, src)
		},
		StopTracking: loop.Stop,
	}

	r := routes.SetupRouter(apiHandlers)

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	log.Printf("🚀 Agent control API running at %s", cfg.ListenAddr)
	log.Fatal(http.ListenAndServe(cfg.ListenAddr, handler))
}

// positionSource picks the fix source. Only the simulated receiver ships for
// now; a real platform adapter plugs in through the same interface.
func positionSource(cfg config.Config) capture.Source {
	return &capture.SimulatedSource{
		Latitude:   12.9716,
		Longitude:  77.5946,
		StepMeters: 40,
		SpeedMPS:   1.2,
		Interval:   cfg.MovingInterval,
	}
}

// resyncLoop periodically re-drains the pending queue while signed in, the
// daemon analog of syncing on app resume.
func resyncLoop(ctx context.Context, orch *syncer.Orchestrator, sess *session.Store, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		if !sess.IsSignedIn() {
			continue
		}
		if err := orch.SyncPending(ctx); err != nil {
			logrus.WithError(err).Warn("Periodic sync failed, samples stay pending.")
		}
	}
}
