// Package server serves static files from a read-only root.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/spf13/afero"

	"github.com/wasmserve/wasmserve/internal/config"
	"github.com/wasmserve/wasmserve/internal/mimetypes"
)

type Server struct {
	cfg   *config.Config
	root  afero.Fs
	types *mimetypes.Table
	log   *slog.Logger
	gzip  func(http.Handler) http.HandlerFunc
}

// New creates a server for root. The table is shared read-only across
// requests and must not be modified by the caller afterwards.
func New(cfg *config.Config, root afero.Fs, types *mimetypes.Table) (*Server, error) {
	// Compressed and identity bodies must not share a strong validator.
	wrap, err := gzhttp.NewWrapper(gzhttp.SuffixETag("-gzip"))
	if err != nil {
		return nil, fmt.Errorf("gzip wrapper: %w", err)
	}
	return &Server{
		cfg:   cfg,
		root:  root,
		types: types,
		log:   slog.Default().With("component", "server"),
		gzip:  wrap,
	}, nil
}

// OpenRoot confines all file access to dir. The directory is resolved once,
// so later changes to the working directory do not move the root.
func OpenRoot(dir string) (afero.Fs, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid root directory: %w", err)
	}
	info, err := afero.NewOsFs().Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("open root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open root: %s is not a directory", abs)
	}
	return afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), abs)), nil
}

// Listen binds the configured address.
func Listen(cfg *config.Config) (net.Listener, error) {
	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", cfg.Addr(), err)
	}
	return ln, nil
}

// Banner is the single line printed once the listener is bound.
func Banner(addr net.Addr) string {
	port := 0
	if tcp, ok := addr.(*net.TCPAddr); ok {
		port = tcp.Port
	}
	return fmt.Sprintf("🌍 serving at port %d", port)
}

// Handler returns the request handler, gzip-wrapped when compression is on.
func (s *Server) Handler() http.Handler {
	if s.cfg.Compress {
		return s.gzip(s)
	}
	return s
}

// Serve accepts connections on ln until ctx is cancelled. Each connection
// is handled on its own goroutine by net/http.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}

	done := make(chan struct{})
	shutdownErr := make(chan error, 1)

	go func() {
		select {
		case <-done:
			shutdownErr <- nil
			return
		case <-ctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		shutdownErr <- httpServer.Shutdown(shutdownCtx)
	}()

	if err := httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		close(done)
		return fmt.Errorf("serve: %w", err)
	}

	if err := <-shutdownErr; err != nil {
		s.log.Warn("HTTP server shutdown error", "error", err)
	}
	return nil
}
