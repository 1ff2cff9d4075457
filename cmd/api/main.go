package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"pv-sizing/internal/api"
	"pv-sizing/internal/config"
	"pv-sizing/internal/data"
	"pv-sizing/internal/log"
	"pv-sizing/internal/store"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load server config: %v\n", err)
		os.Exit(1)
	}
	if err := log.Init(cfg.Debug); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if wd, err := os.Getwd(); err == nil {
		log.Infof("Working directory: %s", wd)
	}
	log.Infow("server config",
		"env", cfg.Env,
		"data_dir", cfg.DataDir,
		"panel_dir", cfg.PanelDir,
		"store_path", cfg.StorePath,
		"pvgis", cfg.EnablePVGIS)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var st *store.Store
	if cfg.StorePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.StorePath), 0o755); err != nil {
			log.Fatalf("Failed to create store directory: %v", err)
		}
		st, err = store.Open(cfg.StorePath)
		if err != nil {
			log.Fatalf("Failed to open store: %v", err)
		}
		defer st.Close()
	} else {
		log.Warnf("STORE_PATH is empty, projections will not be persisted")
	}

	var pvgis *data.PVGISClient
	if cfg.EnablePVGIS {
		pvgis = data.NewPVGISClient(cfg.PVGISBaseURL)
		if cfg.EnablePVGISCache && !cfg.IsProduction() {
			pvgis.Cache = data.NewResponseCache(cfg.PVGISCacheTTL).StartCleanup()
			log.Infof("PVGIS response cache enabled (ttl %s)", cfg.PVGISCacheTTL)
		}
	}

	router := api.NewRouter(api.Options{
		Store:       st,
		PVGIS:       pvgis,
		DataDir:     cfg.DataDir,
		PanelDir:    cfg.PanelDir,
		StaticDir:   cfg.StaticDir,
		CORSOrigins: cfg.AllowedOrigins(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting API server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Infof("Received shutdown signal")
	case err := <-errCh:
		log.Errorf("Server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Shutdown: %v", err)
	}
	log.Infof("Shutdown complete")
}
