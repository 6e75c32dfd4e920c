// Package server exposes the dashboard over HTTP: the page, one endpoint per
// handler, health and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"stockdash/internal/dashboard"
)

// Options configures a Server.
type Options struct {
	Addr           string
	HandlerTimeout time.Duration
	// Debug enables per-request access logs.
	Debug bool
	// Provider is reported by /healthz.
	Provider string
}

// Server is the single application value that serves the dashboard.
type Server struct {
	opts       Options
	controller *dashboard.Controller
	logger     log.FieldLogger
	router     *mux.Router
	httpServer *http.Server
	now        func() time.Time
}

// New builds the router and the underlying http.Server.
func New(opts Options, controller *dashboard.Controller, logger log.FieldLogger) *Server {
	if logger == nil {
		logger = log.StandardLogger()
	}
	s := &Server{
		opts:       opts,
		controller: controller,
		logger:     logger,
		router:     mux.NewRouter(),
		now:        time.Now,
	}
	s.routes()
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	if s.opts.Debug {
		s.router.Use(s.accessLog)
	}
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/profile", s.handleProfile).Methods(http.MethodPost)
	api.HandleFunc("/price", s.handlePrice).Methods(http.MethodPost)
	api.HandleFunc("/indicator", s.handleIndicator).Methods(http.MethodPost)
	api.HandleFunc("/forecast", s.handleForecast).Methods(http.MethodPost)
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.opts.Addr).Info("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight handlers.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handlerContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.opts.HandlerTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), s.opts.HandlerTimeout)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if err := renderPage(w, s.now()); err != nil {
		s.logger.WithError(err).Error("render page")
		s.respondError(w, errTypeInternal, http.StatusInternalServerError, err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, &HealthResponse{Status: "ok", Provider: s.opts.Provider})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	var form profileForm
	if err := decodeForm(r, &form); err != nil {
		s.fail(w, err)
		return
	}
	ctx, cancel := s.handlerContext(r)
	defer cancel()

	out, err := s.controller.Profile(ctx, form.input())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, newProfileResponse(out))
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	s.handleChart(w, r, s.controller.PriceChart)
}

func (s *Server) handleIndicator(w http.ResponseWriter, r *http.Request) {
	s.handleChart(w, r, s.controller.Indicator)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request, run func(context.Context, dashboard.ChartInput) (dashboard.ChartOutput, error)) {
	var form chartForm
	if err := decodeForm(r, &form); err != nil {
		s.fail(w, err)
		return
	}
	in, err := form.input(s.now())
	if err != nil {
		s.fail(w, err)
		return
	}
	ctx, cancel := s.handlerContext(r)
	defer cancel()

	out, err := run(ctx, in)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, &ChartResponse{Chart: out.Chart})
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	var form forecastForm
	if err := decodeForm(r, &form); err != nil {
		s.fail(w, err)
		return
	}
	ctx, cancel := s.handlerContext(r)
	defer cancel()

	out, err := s.controller.Forecast(ctx, form.input())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, &ChartResponse{Chart: out.Chart})
}

func (s *Server) respond(w http.ResponseWriter, response interface{}) {
	if err := setResponse(response, w); err != nil {
		s.logger.WithError(err).Warn("write response")
	}
}

func (s *Server) respondError(w http.ResponseWriter, errType string, status int, err error) {
	if werr := setErrorResponse(errType, status, err, w); werr != nil {
		s.logger.WithError(werr).Warn("write error response")
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	errType, status := classify(err)
	s.respondError(w, errType, status, err)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		begin := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.WithFields(log.Fields{
			"method":  r.Method,
			"path":    r.URL.Path,
			"status":  rec.status,
			"elapsed": time.Since(begin),
		}).Debug("http request")
	})
}
