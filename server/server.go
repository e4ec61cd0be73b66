package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/viant/approvio/service/engine"
)

// Server exposes the orchestrator over HTTP: submission, decision delivery
// and status lookup. It is pure dispatch; shape validation and status-code
// mapping only, every business rule lives in the engine.
type Server struct {
	*http.Server

	engine   *engine.Service
	logger   *zap.Logger
	listener net.Listener
	group    *sync.WaitGroup
	lastErr  error
}

// NewServer creates an HTTP server for the supplied engine. A nil logger
// falls back to a no-op logger.
func NewServer(addr string, svc *engine.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	ret := &Server{
		engine: svc,
		logger: logger,
	}
	ret.Server = &http.Server{Addr: addr, Handler: ret.Handler()}
	return ret
}

// Handler builds the route table; exposed separately so tests can drive the
// server through httptest without a listener.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.POST("/requests", s.handleSubmit)
	router.OPTIONS("/requests", s.handlePreflight)
	router.GET("/requests", s.handleList)
	router.GET("/requests/:requestId", s.handleStatus)
	router.POST("/decisions", s.handleDecide)
	router.OPTIONS("/decisions", s.handlePreflight)
	router.GET("/healthz", s.handleHealth)
	return router
}

// Start begins serving; the call does not block.
func (s *Server) Start() error {
	if s.listener != nil {
		return errors.New("server already started")
	}
	addr := s.Addr
	if addr == "" {
		addr = ":http"
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.group = &sync.WaitGroup{}
	s.group.Add(1)
	go func() {
		defer s.group.Done()
		err := s.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			if strings.Contains(err.Error(), "use of closed network connection") {
				return
			}
			s.lastErr = err
		}
	}()
	s.logger.Info("listening", zap.String("addr", listener.Addr().String()))
	return nil
}

// Stop shuts the server down, waiting for in-flight requests up to timeout.
func (s *Server) Stop(timeout time.Duration) error {
	if s.listener == nil {
		return errors.New("server not started")
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		return err
	}
	s.group.Wait()
	return s.lastErr
}
