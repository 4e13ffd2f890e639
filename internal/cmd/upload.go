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
	"github.com/nguyengg/szip/internal/config"
	"github.com/nguyengg/szip/internal/publish"
	"github.com/nguyengg/szip/zip/stored"
)

type Upload struct {
	Bucket      string         `short:"b" long:"bucket" description:"the S3 bucket to upload to; takes precedence over .szip setting" value-name:"BUCKET"`
	Prefix      string         `short:"k" long:"prefix" description:"the key prefix to prepend to the archive's file name; takes precedence over .szip setting" value-name:"PREFIX"`
	XZ          bool           `long:"xz" description:"compress the archive with xz before uploading"`
	Concurrency int            `long:"concurrency" description:"the maximum number of parts to upload in parallel" default:"5"`
	Collect     collectOptions `group:"Collect Options"`
	Archive     archiveOptions `group:"Archive Options"`
	Args        struct {
		Files []flags.Filename `positional-arg-name:"file" description:"the files and directories to add to the archive" required:"yes"`
	} `positional-args:"yes"`
}

func (c *Upload) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	if c.Concurrency <= 0 {
		return fmt.Errorf("--concurrency must be positive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	uCfg := config.ForUpload()
	bucket, prefix := c.Bucket, c.Prefix
	if bucket == "" {
		if uCfg.Bucket == "" {
			return fmt.Errorf("no bucket given with --bucket or in %s", config.FileName)
		}

		bucket = uCfg.Bucket
		prefix = firstNonEmpty(prefix, uCfg.Prefix)
	}

	paths := filenames(c.Args.Files)
	entries, err := collect.Files(ctx, paths, c.Collect.apply, withProgressBar)
	if err != nil {
		return fmt.Errorf("collect files error: %w", err)
	}

	archive, err := stored.Build(entries)
	if err != nil {
		return fmt.Errorf("create archive error: %w", err)
	}

	bCfg := config.ForBucket(bucket)
	client, err := config.NewS3ClientForBucket(ctx, bucket)
	if err != nil {
		return fmt.Errorf("create s3 client error: %w", err)
	}

	a := c.Archive.attachment(fallbackName(paths[0]))
	log.Printf(`start uploading "%s" (%d entries, %s)`, a.Filename(), len(entries), humanize.IBytes(uint64(len(archive))))

	output, err := publish.Upload(ctx, client, publish.Input{
		Bucket:              bucket,
		Prefix:              prefix,
		Key:                 a.Filename(),
		ExpectedBucketOwner: bCfg.ExpectedBucketOwner,
		StorageClass:        bCfg.StorageClass,
		ContentType:         a.ContentType,
		Archive:             archive,
		XZ:                  c.XZ || uCfg.XZ,
		Concurrency:         c.Concurrency,
		Logger:              log.Default(),
	})
	if err != nil {
		return fmt.Errorf("upload error: %w", err)
	}

	log.Printf(`uploaded %s to s3://%s/%s`, humanize.IBytes(uint64(output.Size)), output.Bucket, output.Key)
	if output.ChecksumCRC32 != "" {
		log.Printf("crc32 checksum: %s", output.ChecksumCRC32)
	}

	return nil
}
