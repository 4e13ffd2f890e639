package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/szip/internal"
	"github.com/nguyengg/szip/internal/repack"
	"github.com/nguyengg/szip/zip/stored"
)

type Repack struct {
	Output string `short:"o" long:"output" description:"write the archive to this path, replacing any existing file; only valid with a single archive" value-name:"FILE"`
	Args   struct {
		Files []flags.Filename `positional-arg-name:"archive" description:"the archives to be repacked" required:"yes"`
	} `positional-args:"yes"`
}

func (c *Repack) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	if c.Output != "" && len(c.Args.Files) > 1 {
		return fmt.Errorf("--output cannot be used with more than one archive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	success := 0
	n := len(c.Args.Files)
	for i, file := range c.Args.Files {
		logger := internal.NewLogger(i, n, string(file))

		if err := c.repack(internal.WithLogger(ctx, logger), string(file)); err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Printf("repack was interrupted")
				break
			}

			logger.Printf("repack error: %v", err)
			continue
		}

		success++
	}

	log.Printf("successfully repacked %d/%d files", success, n)
	if success != n {
		return fmt.Errorf("failed to repack %d/%d files", n-success, n)
	}

	return nil
}

func (c *Repack) repack(ctx context.Context, name string) error {
	logger := internal.Logger(ctx)

	src, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("open file error: %w", err)
	}
	defer src.Close()

	// src must stay an *os.File since zip and 7z extraction need io.ReaderAt and io.Seeker.
	pl := internal.NewProgressLogger(logger, "extracted", 0, 5*time.Second)
	entries, err := repack.Entries(ctx, filepath.Base(name), src, func(opts *repack.Options) {
		opts.Progress = pl
	})
	_ = pl.Close()
	if err != nil {
		return err
	}

	size, err := stored.Size(entries)
	if err != nil {
		return fmt.Errorf("create archive error: %w", err)
	}

	stem, _ := internal.StemAndExt(filepath.Base(name))
	f, err := createOutput(c.Output, stem, ZipExt)
	if err != nil {
		return err
	}

	if _, err = writeArchive(f, entries); err != nil {
		return fmt.Errorf("write archive error: %w", err)
	}

	logger.Printf(`wrote %d entries (%s) to "%s"`, len(entries), humanize.IBytes(uint64(size)), f.Name())
	return nil
}
