package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Luqman-Ismat/engivault-api-sub002/internal/analytics"
	"github.com/Luqman-Ismat/engivault-api-sub002/internal/auth"
	"github.com/Luqman-Ismat/engivault-api-sub002/internal/calc/batch"
	"github.com/Luqman-Ismat/engivault-api-sub002/internal/calc/gas"
	"github.com/Luqman-Ismat/engivault-api-sub002/internal/calc/hydraulics"
	"github.com/Luqman-Ismat/engivault-api-sub002/internal/calc/report"
	"github.com/Luqman-Ismat/engivault-api-sub002/internal/calc/spreadsheet"
	"github.com/Luqman-Ismat/engivault-api-sub002/internal/config"
	"github.com/Luqman-Ismat/engivault-api-sub002/internal/live"
	"github.com/Luqman-Ismat/engivault-api-sub002/internal/repo"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var wg sync.WaitGroup

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", gas.ChokedHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

func HandleList(mux *mux.Router, cfg config.Config, userRepo repo.Repository) {
	authEnv := &auth.Authenv{JWTkey: []byte(cfg.TokenKey), Repo: userRepo}
	usageH := &analytics.UsageHandler{Repo: userRepo}
	limiter := auth.NewIPRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)

	// secured calculations are authenticated and counted
	calc := func(h http.HandlerFunc) http.Handler {
		return authEnv.AuthMiddleware(usageH.Middleware(h))
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		gas.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	api := mux.PathPrefix("/api/v1").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/auth/login", authEnv.AuthHandler).Methods("POST")
	api.HandleFunc("/auth/register", authEnv.RegisterHandler).Methods("POST")

	runner := &batch.Runner{Workers: cfg.BatchWorkers, Options: cfg.Engine}
	gasH := &gas.Handler{Options: cfg.Engine}
	batchH := &batch.Handler{Runner: runner}
	sheetH := &spreadsheet.Handler{Runner: runner, Options: cfg.Engine, MaxUploadMB: cfg.MaxUploadMB}
	reportH := &report.Handler{Options: cfg.Engine}
	hydraulicsH := &hydraulics.Handler{}

	api.Handle("/gas/pressure-drop", calc(gasH.PressureDrop)).Methods("POST")
	api.Handle("/gas/pressure-drop/batch", calc(batchH.PressureDrop)).Methods("POST")
	api.Handle("/gas/pressure-drop/import", calc(sheetH.ImportDrops)).Methods("POST")
	api.Handle("/gas/fanno", calc(gasH.Fanno)).Methods("POST")
	api.Handle("/gas/fanno/export", calc(sheetH.ExportFanno)).Methods("POST")
	api.Handle("/gas/rayleigh", calc(gasH.Rayleigh)).Methods("POST")
	api.Handle("/gas/rayleigh/export", calc(sheetH.ExportRayleigh)).Methods("POST")
	api.Handle("/gas/report", calc(reportH.Generate)).Methods("POST")

	api.Handle("/fluid-mechanics/compressible-flow", calc(gasH.CompressibleFlow)).Methods("POST")
	api.Handle("/fluid-mechanics/normal-shock", calc(gasH.NormalShock)).Methods("POST")
	api.Handle("/fluid-mechanics/choked-flow", calc(gasH.ChokedFlow)).Methods("POST")

	api.Handle("/calculate/pressure-drop", calc(hydraulicsH.PressureDrop)).Methods("POST")
	api.Handle("/calculate/flow-rate", calc(hydraulicsH.FlowRate)).Methods("POST")

	api.Handle("/analytics/usage", authEnv.AuthMiddleware(http.HandlerFunc(usageH.GetUsage))).Methods("GET")

	liveSrv := live.NewServer(cfg.Engine)
	liveSrv.Upgrader.CheckOrigin = func(r *http.Request) bool {
		return true
	}
	api.Handle("/live", authEnv.AuthMiddleware(http.HandlerFunc(liveSrv.Serve))).Methods("GET")
}

// openRepo uses Postgres when DATABASE_URL is set and an in-memory store
// otherwise.
func openRepo(ctx context.Context, cfg config.Config) (repo.Repository, func(), error) {
	db, err := auth.InitDB(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if db == nil {
		log.Warn("DATABASE_URL not set, users and usage are kept in memory")
		return repo.NewMemoryRepository(), func() {}, nil
	}
	pg := repo.NewPostgresUserDB(db)
	if err := pg.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return pg, func() { db.Close() }, nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	config.SetupLogging(cfg.LogLevel, cfg.LogFormat)

	userRepo, closeRepo, err := openRepo(ctx, cfg)
	if err != nil {
		log.WithField("error", err).Fatal("database unavailable")
	}
	defer closeRepo()

	mux := mux.NewRouter()
	HandleList(mux, cfg, userRepo)
	handler := CORS(mux)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.WithFields(log.Fields{"addr": cfg.Addr, "tls": cfg.TLSCert != ""}).Info("starting server")
		var err error
		if cfg.TLSCert != "" && cfg.TLSKey != "" {
			err = server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.WithField("error", err).Error("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, closing active connections")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithField("error", err).Fatal("server shutdown failed")
	}
	log.Info("server stopped")

	wg.Wait()
}
