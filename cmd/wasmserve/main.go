package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/wasmserve/wasmserve/internal/config"
	"github.com/wasmserve/wasmserve/internal/mimetypes"
	"github.com/wasmserve/wasmserve/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config.Default()); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	types, err := mimetypes.New(cfg.Overrides)
	if err != nil {
		return fmt.Errorf("mime table: %w", err)
	}

	root, err := server.OpenRoot(cfg.Root)
	if err != nil {
		return err
	}

	ln, err := server.Listen(cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, root, types)
	if err != nil {
		_ = ln.Close()
		return err
	}

	fmt.Println(server.Banner(ln.Addr()))

	return srv.Serve(ctx, ln)
}
