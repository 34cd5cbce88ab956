package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/Yichu-bro/Myfaff/internal/api"
	"github.com/Yichu-bro/Myfaff/internal/app"
	"github.com/Yichu-bro/Myfaff/internal/config"
	"github.com/Yichu-bro/Myfaff/internal/profile"
	"github.com/Yichu-bro/Myfaff/internal/simulate"
	"github.com/Yichu-bro/Myfaff/internal/store"
	"github.com/Yichu-bro/Myfaff/internal/tgbot"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Persistence first: Postgres when configured, in-memory otherwise.
	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer st.Close()

	// Profile lookup, optionally wrapped in a Redis cache.
	lookup, rdb := buildLookup(ctx, cfg)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	application := &app.App{
		Store:    st,
		Profiles: lookup,
		Sim:      simulate.New(cfg.SimFailurePct),
		Cost:     cfg.ActionCost,
	}

	// Telegram bot (optional by env).
	if cfg.RunBot {
		bot, err := tgbot.New(cfg, application)
		if err != nil {
			log.Fatalf("bot init: %v", err)
		}
		bot.StartPolling(ctx)
		log.Printf("telegram polling enabled")
	}

	// HTTP server.
	guard := api.NewGuard(cfg.RatePerMinute, cfg.MaxBodyBytes)
	apiSrv := &api.API{Cfg: cfg, App: application, Guard: guard}

	root := chi.NewRouter()
	root.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		probeCtx, probeCancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer probeCancel()
		storeOK := st.Ping(probeCtx) == nil

		w.Header().Set("Content-Type", "application/json")
		if !storeOK {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":       storeOK,
			"run_bot":  cfg.RunBot,
			"profiles": cfg.ProfileMode,
			"ts":       time.Now().Unix(),
		})
	})
	root.Mount("/api", apiSrv.Router())

	// Static webapp bundle.
	root.Handle("/*", http.FileServer(http.Dir("webapp")))

	if guard != nil {
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					guard.Sweep()
				}
			}
		}()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           root,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("http listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	// Graceful shutdown.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	cancel()

	ctxShut, cancelShut := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShut()
	_ = srv.Shutdown(ctxShut)
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	opts := store.Options{
		StartingCoins: cfg.StartingCoins,
		DefaultRegion: cfg.DefaultRegion,
		HistoryLimit:  int(cfg.HistoryLimit),
	}
	if cfg.DatabaseURL == "" {
		log.Printf("DATABASE_URL empty, using in-memory store (state is lost on restart)")
		return store.NewMemory(opts), nil
	}
	pg, err := store.OpenPostgres(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		return nil, err
	}
	if err := pg.Migrate(ctx); err != nil {
		pg.Close()
		return nil, err
	}
	log.Printf("postgres store ready")
	return pg, nil
}

func buildLookup(ctx context.Context, cfg config.Config) (profile.Lookup, *redis.Client) {
	var lookup profile.Lookup
	if cfg.ProfileMode == "remote" {
		lookup = profile.NewClient(cfg.ProfileAPIURL)
		log.Printf("profile lookup: remote (%s)", cfg.ProfileAPIURL)
	} else {
		lookup = profile.NewMock()
		log.Printf("profile lookup: mock")
	}

	if cfg.RedisURL == "" {
		return lookup, nil
	}
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("redis url: %v, cache disabled", err)
		return lookup, nil
	}
	rdb := redis.NewClient(opt)
	pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
	defer pingCancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Printf("redis ping: %v, cache disabled", err)
		_ = rdb.Close()
		return lookup, nil
	}
	ttl := time.Duration(cfg.ProfileCacheS) * time.Second
	log.Printf("profile cache enabled (ttl=%s)", ttl)
	return profile.NewCached(lookup, rdb, ttl), rdb
}
