package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/szip/internal/collect"
	"github.com/nguyengg/szip/zip/stored"
)

type Create struct {
	Output  string         `short:"o" long:"output" description:"write the archive to this path, replacing any existing file; by default a new file named after the archive is created in the working directory" value-name:"FILE"`
	Collect collectOptions `group:"Collect Options"`
	Archive archiveOptions `group:"Archive Options"`
	Args    struct {
		Files []flags.Filename `positional-arg-name:"file" description:"the files and directories to add to the archive" required:"yes"`
	} `positional-args:"yes"`
}

func (c *Create) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	paths := filenames(c.Args.Files)
	entries, err := collect.Files(ctx, paths, c.Collect.apply, withProgressBar)
	if err != nil {
		return fmt.Errorf("collect files error: %w", err)
	}

	// validate before creating the output file so that a bad entry leaves nothing behind.
	size, err := stored.Size(entries)
	if err != nil {
		return fmt.Errorf("create archive error: %w", err)
	}

	a := c.Archive.attachment(fallbackName(paths[0]))
	f, err := createOutput(c.Output, a.Stem(), a.Ext)
	if err != nil {
		return err
	}

	if _, err = writeArchive(f, entries); err != nil {
		return fmt.Errorf("write archive error: %w", err)
	}

	log.Printf(`wrote %d entries (%s) to "%s"`, len(entries), humanize.IBytes(uint64(size)), f.Name())
	return nil
}
