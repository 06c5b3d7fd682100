package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/batchmates/batchmates/internal/api"
	"github.com/batchmates/batchmates/internal/config"
	"github.com/batchmates/batchmates/internal/db"
	"github.com/batchmates/batchmates/internal/metrics"
	"github.com/batchmates/batchmates/internal/models"
	"github.com/batchmates/batchmates/internal/service"
	"github.com/batchmates/batchmates/internal/store"
	"github.com/batchmates/batchmates/internal/ws"
)

const shutdownTimeout = 15 * time.Second

func runServe(ctx context.Context, e *env) error {
	cfg, log := e.cfg, e.log

	profiles := store.NewProfileFile(cfg.ProfilesFile, log, store.WithOnReload(func(p []models.Profile) {
		metrics.ProfilesLoaded.Set(float64(len(p)))
	}))
	if err := profiles.Load(); err != nil {
		log.WithError(err).Warn("profiles unavailable until the file is written")
	}
	metrics.ProfilesLoaded.Set(float64(profiles.Count()))

	base := store.Base{Pool: e.pool, Log: log}
	neighbors := service.NewNeighborService(store.NewInterestStore(base), log, cfg.NeighborCacheSize, cfg.NeighborCacheTTL)
	hub := ws.NewHub(log)
	sessions := service.NewExploreService(neighbors, profiles, hub, log, cfg.MaxSessions, cfg.SessionTTL)

	bridge := db.NewNotifyBridge(log, e.pool, neighbors)
	if err := bridge.Start(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: api.NewRouter(gctx, &api.RouterDeps{
			Log:         log,
			DB:          e.pool,
			Hub:         hub,
			Profiles:    service.NewProfileService(profiles, log),
			Neighbors:   neighbors,
			Explore:     sessions,
			CORSOrigins: cfg.CORSOrigins,
			Version:     config.Version,
			RateLimit:   cfg.RateLimit,
			RateBurst:   cfg.RateBurst,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		if err := profiles.Watch(gctx); err != nil {
			log.WithError(err).Warn("profiles file will not be reloaded")
		}
		return nil
	})

	g.Go(func() error {
		log.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		hub.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
