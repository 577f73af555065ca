package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/text/language"

	"github.com/vk/searchengine/internal/blocklist"
	"github.com/vk/searchengine/internal/config"
	"github.com/vk/searchengine/internal/i18n"
	"github.com/vk/searchengine/internal/metrics"
	"github.com/vk/searchengine/internal/search/engine"
	"github.com/vk/searchengine/internal/search/query"
	"github.com/vk/searchengine/internal/server"
)

// runServe starts the web frontend and blocks until ctx is cancelled.
func (a *App) runServe(ctx context.Context) error {
	cfg := config.Default()
	if a.config.ConfigPath != "" {
		var err error
		cfg, err = config.Load(a.config.ConfigPath)
		if err != nil {
			return err
		}
	}
	if a.config.Listen != "" {
		cfg.Listen = a.config.Listen
	}

	var blocked *blocklist.List
	if cfg.BlocklistPath != "" {
		var err error
		blocked, err = blocklist.Load(cfg.BlocklistPath)
		if err != nil {
			a.logger.Warn("Blocklist not loaded, serving unfiltered results.",
				"path", cfg.BlocklistPath, "error", err)
		} else {
			a.logger.Info("Blocklist loaded.", "domains", blocked.Len())
		}
	}

	var recorder engine.Recorder
	if cfg.MetricsDSN != "" {
		store, err := metrics.Open(ctx, cfg.MetricsDSN)
		if err != nil {
			return err
		}
		defer store.Close()
		recorder = store
	}

	langs := make([]language.Tag, 0, len(cfg.Languages))
	for _, l := range cfg.Languages {
		tag, err := language.Parse(l)
		if err != nil {
			return fmt.Errorf("config language %q: %w", l, err)
		}
		langs = append(langs, tag)
	}

	translator, err := i18n.New()
	if err != nil {
		return err
	}

	searcher := engine.NewSearcher(nil, engine.DefaultEngines(), recorder, cfg.EngineTimeout.Std())

	srv, err := server.New(server.Config{
		Parser:     query.NewParser(langs...),
		Searcher:   searcher,
		Blocklist:  blocked,
		Translator: translator,
		Signer:     server.NewSigner(cfg.ProxySecret),
		StaticDir:  cfg.StaticDir,
		BaseURL:    cfg.BaseURL,
	})
	if err != nil {
		return err
	}

	return a.serveHTTP(ctx, cfg.Listen, srv.Handler())
}

// serveHTTP runs the listener and shuts it down cleanly on ctx cancel.
func (a *App) serveHTTP(ctx context.Context, listen string, handler http.Handler) error {
	httpServer := &http.Server{
		Addr:              listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Request contexts inherit the app logger.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("🚀 Server listening.", "addr", listen)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		a.logger.Info("🏁 Server stopped.")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
