package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/alwitt/bluelight/config"
	"github.com/apex/log"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterParams handlers and options of the API router
type RouterParams struct {
	Entries       *EntryHandler
	Health        *HealthHandler
	Authenticator *Authenticator
	// MetricsPath path of the prometheus endpoint, disabled when empty
	MetricsPath string
}

/*
BuildRouter define the API routes

	@param params RouterParams - handlers and options
	@returns the router
*/
func BuildRouter(params RouterParams) *mux.Router {
	router := mux.NewRouter()
	router.Use(metricsMiddleware)

	// Probes and metrics are not authenticated
	router.HandleFunc("/health/live", params.Health.Live).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", params.Health.Ready).Methods(http.MethodGet)
	if params.MetricsPath != "" {
		router.Handle(params.MetricsPath, promhttp.Handler()).Methods(http.MethodGet)
	}

	secured := router.NewRoute().Subrouter()
	secured.Use(params.Authenticator.Middleware)

	entries := params.Entries
	// Attachment routes first so "anlage" is never taken for an entry ID
	secured.HandleFunc("/etb/anlage/{id}/inhalt", entries.GetAttachmentContentHandler()).
		Methods(http.MethodGet)
	secured.HandleFunc("/etb/anlage/{id}", entries.GetAttachmentHandler()).
		Methods(http.MethodGet)

	secured.HandleFunc("/etb", entries.CreateEntryHandler()).Methods(http.MethodPost)
	secured.HandleFunc("/etb", entries.ListEntriesHandler()).Methods(http.MethodGet)
	secured.HandleFunc("/etb/{id}", entries.GetEntryHandler()).Methods(http.MethodGet)
	secured.HandleFunc("/etb/{id}", entries.UpdateEntryHandler()).Methods(http.MethodPatch)
	secured.HandleFunc("/etb/{id}/schliessen", entries.CloseEntryHandler()).
		Methods(http.MethodPatch, http.MethodPost)
	secured.HandleFunc("/etb/{id}/close", entries.CloseEntryHandler()).
		Methods(http.MethodPatch, http.MethodPost)
	secured.HandleFunc("/etb/{id}/ueberschreiben", entries.SupersedeEntryHandler()).
		Methods(http.MethodPost)
	secured.HandleFunc("/etb/{id}/verlauf", entries.EntryHistoryHandler()).
		Methods(http.MethodGet)
	secured.HandleFunc("/etb/{id}/anlage", entries.AddAttachmentHandler()).
		Methods(http.MethodPost)
	secured.HandleFunc("/etb/{id}/anlagen", entries.ListAttachmentsHandler()).
		Methods(http.MethodGet)

	secured.HandleFunc("/audit/events", entries.ListAuditEventsHandler()).
		Methods(http.MethodGet)
	secured.HandleFunc("/admin/encryption/rotate", entries.RotateEncryptionKeyHandler()).
		Methods(http.MethodPost)

	return router
}

// Server API HTTP server
type Server struct {
	httpServer *http.Server
	cfg        config.HTTPConfig
	logTags    log.Fields
}

/*
NewServer define new API HTTP server

	@param cfg config.HTTPConfig - server configuration
	@param handler http.Handler - the API router
	@returns server
*/
func NewServer(cfg config.HTTPConfig, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.ListenAddr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		cfg:     cfg,
		logTags: log.Fields{"package": "bluelight", "module": "api", "component": "http-server"},
	}
}

/*
Run serve requests until the context is cancelled, then shut down gracefully

	@param ctx context.Context - lifetime of the server
*/
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithFields(s.logTags).WithField("addr", s.cfg.ListenAddr).Info("HTTP server starting")
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.WithFields(s.logTags).Info("Shutting down HTTP server")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed [%w]", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown failed [%w]", err)
	}
	log.WithFields(s.logTags).Info("HTTP server stopped")
	return nil
}
