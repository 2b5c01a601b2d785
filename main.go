package main

import (
	"PumpStation/internal/auth"
	"PumpStation/internal/calc/premium/autodesign"
	"PumpStation/internal/calc/premium/batch"
	"PumpStation/internal/calc/premium/importer"
	"PumpStation/internal/calc/premium/recommend"
	"PumpStation/internal/calc/pumpstation"
	"PumpStation/internal/calc/report"
	"PumpStation/internal/config"
	"PumpStation/internal/metrics"
	"PumpStation/internal/profile"
	"PumpStation/internal/repo"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var wg sync.WaitGroup

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs one line per request.
func RequestLogger(log logrus.FieldLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
				"remote":   r.RemoteAddr,
			}).Info("request")
		})
	}
}

// HandleList registers every route on router.
func HandleList(router *mux.Router, cfg *config.Config, userRepo repo.Repository, rec *metrics.Recorder, log logrus.FieldLogger) {
	solver := pumpstation.NewSolver(log.WithField("component", "solver"))

	authEnv := &auth.Authenv{JWTkey: []byte(cfg.TokenKey), Repo: userRepo, Log: log, SecureCookie: cfg.TLS()}
	profileH := &profile.ProfileHandler{Repo: userRepo, Log: log}
	calcH := &pumpstation.Handler{Solver: solver, Log: log, Metrics: rec}
	reportH := &report.Handler{Solver: solver, Repo: userRepo, Log: log, Metrics: rec}
	batchH := &batch.Handler{Solver: solver, Log: log, Metrics: rec}
	importH := &importer.Handler{Solver: solver, Log: log, Metrics: rec}
	sizeH := &autodesign.Handler{Solver: solver, Log: log, Metrics: rec}
	motorH := &recommend.Handler{Solver: solver, Log: log, Metrics: rec}

	limiter := auth.NewIPRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)

	router.Handle("/metrics", rec.Handler()).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	login := api.NewRoute().Subrouter()
	login.Use(limiter.LimitMiddleware)
	login.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")
	login.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")
	api.HandleFunc("/logout", authEnv.LogoutHandler).Methods("POST")

	tools := api.PathPrefix("/tools/pumpstation").Subrouter()
	tools.Use(authEnv.OptionalUser)
	tools.HandleFunc("/calc", calcH.Calc).Methods("POST")
	tools.HandleFunc("/report", reportH.Generate).Methods("POST")

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	secureApi.HandleFunc("/profile", profileH.GetProfile).Methods("GET")
	secureApi.HandleFunc("/profile", profileH.UpdateProfile).Methods("PATCH", "PUT")
	secureApi.HandleFunc("/profile/{id:[0-9]+}", profileH.GetProfile).Methods("GET")

	secureApi.HandleFunc("/tools/pumpstation/batch", batchH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/pumpstation/import", importH.Import).Methods("POST")
	secureApi.HandleFunc("/tools/pumpstation/import/template", importH.Template).Methods("GET")
	secureApi.HandleFunc("/tools/pumpstation/size", sizeH.Size).Methods("POST")
	secureApi.HandleFunc("/tools/pumpstation/motor", motorH.Motor).Methods("POST")

	authFileServer := http.FileServer(http.Dir(filepath.Join(cfg.StaticDir, "auth")))
	router.PathPrefix("/auth/").
		Handler(authEnv.RedirectIfLoggedIn(http.StripPrefix("/auth", authFileServer)))
	router.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir)))
}

func openRepo(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (repo.Repository, func(), error) {
	if cfg.DatabaseURL == "memory" {
		log.Warn("using in-memory user store; accounts are lost on restart")
		return repo.NewMemoryUserDB(), func() {}, nil
	}
	db, err := repo.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
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
		logrus.Fatal(err)
	}
	log, err := cfg.Logger()
	if err != nil {
		logrus.Fatal(err)
	}

	userRepo, closeRepo, err := openRepo(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("opening user store")
	}
	defer closeRepo()

	router := mux.NewRouter()
	router.Use(RequestLogger(log))
	HandleList(router, cfg, userRepo, metrics.New(), log)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           CORS(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.WithFields(logrus.Fields{"addr": cfg.Addr, "tls": cfg.TLS()}).Info("starting server")
		var err error
		if cfg.TLS() {
			err = server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, closing active connections")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("stopping server")
	}
	wg.Wait()
	log.Info("server stopped")
}
