package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/szip/internal/attach"
	"github.com/nguyengg/szip/internal/collect"
	"github.com/nguyengg/szip/internal/config"
	"github.com/nguyengg/szip/zip/stored"
)

const (
	// DefaultAddr is the address serve listens on if neither --addr nor .szip gives one.
	DefaultAddr = ":8080"

	shutdownTimeout = 5 * time.Second
)

type Serve struct {
	Addr    string         `long:"addr" description:"the address to listen on; takes precedence over .szip setting (default: :8080)" value-name:"ADDR"`
	Collect collectOptions `group:"Collect Options"`
	Archive archiveOptions `group:"Archive Options"`
	Args    struct {
		Dirs []flags.Filename `positional-arg-name:"dir" description:"the files and directories to add to the archive; they are read again on every request" required:"yes"`
	} `positional-args:"yes"`
}

func (c *Serve) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	addr := firstNonEmpty(c.Addr, config.ForServe().Addr, DefaultAddr)
	paths := filenames(c.Args.Dirs)
	a := c.Archive.attachment(fallbackName(paths[0]))

	srv := &http.Server{
		Addr:    addr,
		Handler: c.handler(a, paths),
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	log.Printf(`serving "%s" at %s`, a.Filename(), addr)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	log.Printf("server stopped")
	return nil
}

func (c *Serve) handler(a attach.Attachment, paths []string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", attach.Handler(a, func(ctx context.Context) ([]stored.Entry, error) {
		return collect.Files(ctx, paths, c.Collect.apply)
	}, log.Default()))
	return mux
}
