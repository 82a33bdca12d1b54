package server

import (
	"context"
	"errors"
	"net/http"
	"os"

	_ "github.com/akolanti/DocRAG/cmd/api/docs"
	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/handlers"
	"github.com/akolanti/DocRAG/internal/middleware"
	"github.com/akolanti/DocRAG/pkg/logger_i"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

var (
	server  *http.Server
	_logger = logger_i.NewLogger("Server")
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	CloseServices    context.CancelFunc
}

// NewRouter registers the API behind the middleware chain. Health, metrics and docs stay open.
func NewRouter(h *handlers.Handler, m *middleware.Middleware) *chi.Mux {
	r := chi.NewRouter()
	initSwagger(r)
	//register prometheus
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", handlers.HealthHandler)

	r.Post("/documents", m.Wrap(h.UploadDocumentsHandler))
	r.Get("/documents", m.Wrap(h.ListDocumentsHandler))
	r.Get("/documents/{id}", m.Wrap(h.GetDocumentHandler))
	r.Post("/search", m.Wrap(h.SearchHandler))
	r.Post("/chat", m.Wrap(h.ChatHandler))
	r.Get("/status", m.Wrap(h.StatusHandler))
	r.Delete("/index", m.Wrap(h.ClearIndexHandler))
	return r
}

func initSwagger(r *chi.Mux) {
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}

func CreateServer(listenAddr string, handler http.Handler) {
	server = &http.Server{
		Addr:         listenAddr,
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error", err.Error(), "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	_logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		if server != nil {
			server.SetKeepAlivesEnabled(false)
			if err := server.Shutdown(ctx); err != nil {
				_logger.Error("Could not shutdown gracefully", "error", err)
			}
		}

		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully shut down")
	case <-ctx.Done():
		_logger.Info("Force Shut down")
		os.Exit(1)
	}
}
