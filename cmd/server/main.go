package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cshum/vipsgen/vips"
	"go.uber.org/zap"

	"platzhalter/internal/cache"
	"platzhalter/internal/config"
	httphandlers "platzhalter/internal/http"
	"platzhalter/internal/image_renderer"
	"platzhalter/internal/logger"
	"platzhalter/internal/pipeline"
	"platzhalter/internal/request"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	vipsConfig := &vips.Config{
		ConcurrencyLevel: cfg.VipsConcurrency,
		MaxCacheMem:      cfg.VipsMaxCacheMB * 1024 * 1024, // Convert MB to bytes
		MaxCacheFiles:    0,
		MaxCacheSize:     0,
		ReportLeaks:      false,
		CacheTrace:       false,
		VectorEnabled:    true,
	}

	vips.SetLogging(func(domain string, level vips.LogLevel, message string) {
		if level >= vips.LogLevelError {
			log.Error("vips", zap.String("domain", domain), zap.Int("level", int(level)), zap.String("message", message))
		} else if level >= vips.LogLevelWarning {
			log.Warn("vips", zap.String("domain", domain), zap.Int("level", int(level)), zap.String("message", message))
		}
	}, vips.LogLevelError)

	vips.Startup(vipsConfig)
	defer vips.Shutdown()

	log.Info("VIPS initialized",
		zap.Int("max_cache_mb", cfg.VipsMaxCacheMB),
		zap.Int("concurrency", cfg.VipsConcurrency),
	)

	store, err := cache.NewStore(cfg.Store, cfg.SQLitePath, cfg.FileStoreDir, cfg.MemoryMaxBytes, log)
	if err != nil {
		log.Fatal("Failed to initialize store", zap.Error(err))
	}

	renderer := image_renderer.New(log)
	resolver := pipeline.New(store, renderer, log)

	handlers := httphandlers.New(cfg, log, resolver)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handlers.HandleHealthz)
	mux.HandleFunc("/favicon.ico", handlers.HandleFavicon)
	mux.HandleFunc("/", handlers.HandleImage)

	handler := handlers.CORSMiddleware(handlers.RequestLoggingMiddleware(mux))

	if len(cfg.WarmupSizes) > 0 {
		go warmupSizes(cfg, resolver, log)
	}

	server := &http.Server{
		Addr:    cfg.Host,
		Handler: handler,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("host", cfg.Host))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := store.Close(ctx); err != nil {
		log.Error("Failed to close store", zap.Error(err))
	}

	log.Info("Server stopped")
}

// warmupSizes pre-renders the configured common sizes with default
// parameters so the first real request for them is a hit.
func warmupSizes(cfg *config.Config, resolver *pipeline.Resolver, log *zap.Logger) {
	log.Info("Starting warmup", zap.Strings("sizes", cfg.WarmupSizes))

	workerLimit := cfg.WarmupWorkers
	if workerLimit <= 0 {
		workerLimit = 1
	}

	workerChan := make(chan struct{}, workerLimit)
	var wg sync.WaitGroup

	for _, size := range cfg.WarmupSizes {
		img, err := request.Parse(size, url.Values{}, cfg.MaxDimension)
		if err != nil {
			log.Warn("Skipping invalid warmup size", zap.String("size", size), zap.Error(err))
			continue
		}

		wg.Add(1)
		workerChan <- struct{}{} // Acquire worker slot

		go func(img request.Image) {
			defer wg.Done()
			defer func() { <-workerChan }() // Release worker slot

			if _, err := resolver.Resolve(context.Background(), img); err != nil {
				log.Debug("Warmup render failed", zap.Int("width", img.Width), zap.Int("height", img.Height), zap.Error(err))
			}
		}(img)
	}

	wg.Wait()
	log.Info("Warmup completed")
}
