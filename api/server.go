package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"gocuria/api/handlers"
	"gocuria/ledger"
	"gocuria/wallet"
)

// Server exposes the peer protocol and the local node operations over HTTP.
type Server struct {
	deps   *handlers.Deps
	addr   string
	mux    *http.ServeMux
	http   *http.Server
	logger *slog.Logger
}

// NewServer creates a new API server
func NewServer(l *ledger.Ledger, keyring *wallet.Keyring, addr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "api")

	server := &Server{
		deps:   &handlers.Deps{Ledger: l, Keyring: keyring, Logger: logger},
		addr:   addr,
		mux:    http.NewServeMux(),
		logger: logger,
	}
	server.setupRoutes()
	server.http = &http.Server{
		Addr:              addr,
		Handler:           server.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return server
}

// setupRoutes configures all HTTP endpoints
func (s *Server) setupRoutes() {
	// Peer protocol
	s.handle("/broadcast-transaction", handlers.HandleBroadcastTransaction)
	s.handle("/broadcast-block", handlers.HandleBroadcastBlock)
	s.handle("/chain", handlers.HandleChain)

	// Local operations
	s.handle("/transaction", handlers.HandleTransactions)
	s.handle("/transactions", handlers.HandleTransactions)
	s.handle("/mine", handlers.HandleMine)
	s.handle("/resolve-conflicts", handlers.HandleResolveConflicts)
	s.handle("/balance", handlers.HandleBalance)
	s.handle("/wallet", handlers.HandleWallet)
	s.handle("/node", handlers.HandleNode)
	s.handle("/node/", handlers.HandleNode) // Handles /node/{addr}
	s.handle("/nodes", handlers.HandleNodes)
}

func (s *Server) handle(pattern string, h func(http.ResponseWriter, *http.Request, *handlers.Deps)) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h(w, r, s.deps)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "took", time.Since(start))
	})
}

// Handler returns the routed handler, for embedding in tests or other servers.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("HTTP API listening", "addr", ln.Addr().String())
	err := s.http.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
