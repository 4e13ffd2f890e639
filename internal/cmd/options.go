package cmd

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/szip/internal"
	"github.com/nguyengg/szip/internal/attach"
	"github.com/nguyengg/szip/internal/collect"
	"github.com/nguyengg/szip/internal/config"
	"github.com/nguyengg/szip/zip/stored"
)

const (
	// ZipExt and ZipContentType are used when neither flags nor .szip give the archive a name.
	ZipExt         = ".zip"
	ZipContentType = "application/zip"

	// progressThreshold is the minimum file size to show a progress bar for.
	progressThreshold = 16 * 1024 * 1024
)

type archiveOptions struct {
	Name        string `long:"name" description:"name of the archive; takes precedence over .szip setting" value-name:"NAME"`
	Version     string `long:"version" description:"version of the archive, appended to the name as -v<version>; takes precedence over .szip setting" value-name:"VERSION"`
	Ext         string `long:"ext" description:"extension of the archive, default to .apk if a name is given; takes precedence over .szip setting" value-name:"EXT"`
	ContentType string `long:"content-type" description:"MIME type of the archive when served or uploaded; takes precedence over .szip setting" value-name:"TYPE"`
}

// attachment merges the flags with [archive] settings.
//
// If neither gives the archive a name, fallback is used as the name and the archive is a plain ".zip" file.
func (o *archiveOptions) attachment(fallback string) attach.Attachment {
	cfg := config.ForArchive()
	a := attach.Attachment{
		Name:        firstNonEmpty(o.Name, cfg.Name),
		Version:     firstNonEmpty(o.Version, cfg.Version),
		Ext:         firstNonEmpty(o.Ext, cfg.Ext),
		ContentType: firstNonEmpty(o.ContentType, cfg.ContentType),
	}

	if a.Name == "" {
		a.Name = fallback
		a.Ext = firstNonEmpty(a.Ext, ZipExt)
		a.ContentType = firstNonEmpty(a.ContentType, ZipContentType)
		return a
	}

	a.Ext = firstNonEmpty(a.Ext, attach.DefaultExt)
	a.ContentType = firstNonEmpty(a.ContentType, attach.DefaultContentType)
	return a
}

type collectOptions struct {
	JunkRoot        bool `long:"junk-root" description:"put the contents of directories at the root of the archive instead of under a directory named after each"`
	AllowDuplicates bool `long:"allow-duplicates" description:"allow two files to have the same name in the archive"`
}

func (o *collectOptions) apply(opts *collect.Options) {
	opts.JunkRoot = o.JunkRoot
	opts.AllowDuplicates = o.AllowDuplicates
}

// withProgressBar shows a progress bar while reading large files.
func withProgressBar(opts *collect.Options) {
	opts.Progress = func(path string, size int64) io.WriteCloser {
		if size < progressThreshold {
			return nil
		}

		return internal.DefaultBytes(size, `reading "`+filepath.Base(path)+`"`)
	}
}

// fallbackName names an archive after the given file or directory.
//
// Directories keep their base name as-is while files lose their extension.
func fallbackName(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return filepath.Base(path)
	}

	stem, _ := internal.StemAndExt(filepath.Base(path))
	return stem
}

// createOutput truncates output if given, or creates a new "stem.ext" file in the working directory.
func createOutput(output, stem, ext string) (*os.File, error) {
	if output != "" {
		return os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
	}

	return internal.OpenExclFile(".", stem, ext)
}

// writeArchive writes entries to f then closes it. The file is removed on any error.
func writeArchive(f *os.File, entries []stored.Entry) (n int64, err error) {
	if n, err = stored.WriteTo(f, entries); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return n, err
	}

	if err = f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return n, err
	}

	return n, nil
}

func filenames(files []flags.Filename) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = string(f)
	}

	return paths
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}

	return ""
}
