package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"trainsys/client/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// Server обслуживает маршруты API по HTTP.
type Server struct {
	cfg      *Config
	store    *Store
	logger   *logging.Logger
	limiter  *rate.Limiter
	metrics  *metrics
	registry *prometheus.Registry
	router   *mux.Router
}

// New создаёт сервер и заполняет хранилище начальными данными.
func New(cfg *Config, logger *logging.Logger) (*Server, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.applyDefaults()
	store := NewStore(cfg.BcryptCost)
	if err := store.Seed(cfg); err != nil {
		return nil, err
	}
	registry := prometheus.NewRegistry()
	s := &Server{
		cfg:      cfg,
		store:    store,
		logger:   logger,
		limiter:  newLimiter(cfg),
		metrics:  newMetrics(registry),
		registry: registry,
	}
	s.router = s.routes()
	logger.Infof("loaded %d users, %d trains", len(cfg.Users), len(cfg.Trains))
	return s, nil
}

// Store возвращает хранилище сервера.
func (s *Server) Store() *Store {
	return s.store
}

// Handler возвращает корневой обработчик.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.loggingMiddleware)
	router.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := router.PathPrefix(s.cfg.Prefix).Subrouter()
	api.Use(s.rateLimitMiddleware)
	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/user/{userId}", s.authMiddleware(s.handleGetUser)).Methods(http.MethodGet)
	api.HandleFunc("/user/{userId}/privilege", s.adminMiddleware(s.handleSetPrivilege)).Methods(http.MethodPut)
	api.HandleFunc("/user/{userId}/password", s.authMiddleware(s.handleSetPassword)).Methods(http.MethodPut)
	api.HandleFunc("/train", s.adminMiddleware(s.handleAddTrain)).Methods(http.MethodPost)
	api.HandleFunc("/train/{trainId}", s.authMiddleware(s.handleGetTrain)).Methods(http.MethodGet)
	api.HandleFunc("/ticket/release", s.adminMiddleware(s.handleRelease)).Methods(http.MethodPost)
	api.HandleFunc("/ticket/expire", s.adminMiddleware(s.handleExpire)).Methods(http.MethodPost)
	api.HandleFunc("/ticket/remaining", s.authMiddleware(s.handleRemaining)).Methods(http.MethodGet)
	api.HandleFunc("/ticket/buy", s.authMiddleware(s.handleBuy)).Methods(http.MethodPost)
	api.HandleFunc("/ticket/orders", s.authMiddleware(s.handleOrders)).Methods(http.MethodGet)
	api.HandleFunc("/ticket/refund", s.authMiddleware(s.handleRefund)).Methods(http.MethodPost)
	api.HandleFunc("/route/display", s.handleRouteDisplay).Methods(http.MethodGet)
	api.HandleFunc("/route/best", s.handleRouteBest).Methods(http.MethodGet)
	api.HandleFunc("/route/accessibility", s.handleRouteAccessibility).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "no such endpoint")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return router
}

// Run обслуживает запросы до отмены ctx, затем корректно завершает сервер.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("starting server on %s", s.cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Infof("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Infof("server exited")
	return nil
}
