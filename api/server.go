package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/whereis/config"
	"github.com/meghashyamc/whereis/db/kvdb"
	"github.com/meghashyamc/whereis/logger"
	"github.com/meghashyamc/whereis/services/saved"
	"github.com/meghashyamc/whereis/services/search"
	"github.com/meghashyamc/whereis/validation"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	router        *gin.Engine
	httpServer    *http.Server
	cfg           *config.Config
	kvdb          kvdb.DB
	searchService *search.Service
	savedService  *saved.Service
	validator     *validation.Validator
	logger        logger.Logger
}

// Run serves the HTTP API until ctx is cancelled or the process is
// interrupted, then shuts the server down.
func Run(ctx context.Context, cfg *config.Config, logger logger.Logger) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)

	defer cancel()

	s := &server{
		cfg:    cfg,
		logger: logger,
	}
	if err := s.setupDependencies(); err != nil {
		return err
	}
	s.setupRouter()

	errs := s.setupHTTPServer()

	return s.waitForShutdown(ctx, errs)
}

func (s *server) setupDependencies() error {
	var err error
	s.kvdb, err = kvdb.New(s.logger, s.cfg.GetKVDBPath())
	if err != nil {
		s.logger.Error("error creating kvDB", "err", err.Error())
		return err
	}
	s.searchService, err = search.New(s.logger, s.cfg.GetMaxResults())
	if err != nil {
		s.logger.Error("error creating search service", "err", err.Error())
		s.kvdb.Close()
		return err
	}
	s.savedService = saved.New(s.logger, s.kvdb)
	s.validator, err = validation.New(s.logger)
	if err != nil {
		s.logger.Error("error creating validator", "err", err.Error())
		s.kvdb.Close()
		return err
	}

	return nil

}

func (s *server) setupRouter() {
	router := newRouter()

	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(s.logger))

	setupRoutes(router, s.logger, s.searchService, s.savedService, s.validator)

	s.router = router
}

func (s *server) setupHTTPServer() <-chan error {

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", s.cfg.GetPort()),
		Handler: s.router.Handler(),
	}
	s.httpServer = httpServer

	errs := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "addr", httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	return errs
}

func (s *server) waitForShutdown(ctx context.Context, errs <-chan error) error {
	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errs:
		if serveErr != nil {
			s.logger.Error("http server failed", "err", serveErr.Error())
		}
	}

	s.logger.Info("starting to shut down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	defer s.kvdb.Close()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("error shutting down http server", "err", err)
		return err
	}
	s.logger.Info("shut down http server successfully")

	return serveErr
}
