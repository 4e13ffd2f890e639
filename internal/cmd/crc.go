package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/szip/internal"
	"github.com/nguyengg/szip/zip/crc"
)

type Crc struct {
	Args struct {
		Files []flags.Filename `positional-arg-name:"file" description:"the files to compute CRC-32 for" required:"yes"`
	} `positional-args:"yes"`

	// out defaults to os.Stdout.
	out io.Writer
}

func (c *Crc) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	if c.out == nil {
		c.out = os.Stdout
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	success := 0
	n := len(c.Args.Files)
	for i, file := range c.Args.Files {
		sum, err := checksumFile(ctx, string(file))
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}

			internal.NewLogger(i, n, string(file)).Printf("checksum error: %v", err)
			continue
		}

		_, _ = fmt.Fprintf(c.out, "%08x  %s\n", sum, file)
		success++
	}

	if success != n {
		log.Printf("successfully computed checksum for %d/%d files", success, n)
		return fmt.Errorf("failed to compute checksum for %d/%d files", n-success, n)
	}

	return nil
}

// checksumFile streams the file through crc.New.
func checksumFile(ctx context.Context, name string) (uint32, error) {
	f, err := os.Open(name)
	if err != nil {
		return 0, fmt.Errorf("open file error: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat file error: %w", err)
	}
	if fi.IsDir() {
		return 0, fmt.Errorf("%s is a directory", name)
	}

	h := crc.New()
	var w io.Writer = h
	if fi.Size() >= progressThreshold {
		bar := internal.DefaultBytes(fi.Size(), `checksum "`+filepath.Base(name)+`"`)
		defer bar.Close()
		w = io.MultiWriter(h, bar)
	}

	if _, err = io.Copy(w, &contextReader{ctx: ctx, r: f}); err != nil {
		return 0, err
	}

	return h.Sum32(), nil
}

// contextReader fails reads once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *contextReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}

	return r.r.Read(p)
}
