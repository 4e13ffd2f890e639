// Package repack turns the regular files of any archive supported by github.com/mholt/archives into stored.Entry
// values so that they can be re-emitted as a stored-method ZIP.
package repack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/mholt/archives"
	"github.com/nguyengg/szip/zip/stored"
)

// ErrUnsupportedFormat is returned if the input is not an archive that can be extracted.
var ErrUnsupportedFormat = errors.New("unsupported archive format")

// Options customises Entries.
type Options struct {
	// Progress, if given, receives the bytes of every extracted file.
	Progress io.Writer
}

// Entries identifies the format of the archive from its name and header bytes, then extracts every regular file into an
// entry in archive order.
//
// Zip and 7z archives require src to implement io.ReaderAt and io.Seeker (an *os.File does). Tarballs, optionally
// compressed with gzip, xz, zstd, etc., can be read from any io.Reader. Directories, symlinks and other non-regular
// files are skipped.
func Entries(ctx context.Context, name string, src io.Reader, optFns ...func(*Options)) ([]stored.Entry, error) {
	opts := &Options{}
	for _, fn := range optFns {
		fn(opts)
	}

	format, stream, err := archives.Identify(ctx, name, src)
	switch {
	case errors.Is(err, archives.NoMatch):
		return nil, fmt.Errorf(`identify "%s" error: %w`, name, ErrUnsupportedFormat)
	case err != nil:
		return nil, fmt.Errorf(`identify "%s" error: %w`, name, err)
	}

	ex, ok := format.(archives.Extractor)
	if !ok {
		return nil, fmt.Errorf(`extract "%s" (%s) error: %w`, name, format.Extension(), ErrUnsupportedFormat)
	}

	var entries []stored.Entry
	if err = ex.Extract(ctx, stream, func(ctx context.Context, f archives.FileInfo) error {
		if !f.Mode().IsRegular() {
			return nil
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf(`open "%s" error: %w`, f.NameInArchive, err)
		}
		defer rc.Close()

		var r io.Reader = rc
		if opts.Progress != nil {
			r = io.TeeReader(rc, opts.Progress)
		}

		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf(`read "%s" error: %w`, f.NameInArchive, err)
		}

		entries = append(entries, stored.Entry{Name: CleanName(f.NameInArchive), Content: data})
		return nil
	}); err != nil {
		return nil, fmt.Errorf(`extract "%s" error: %w`, name, err)
	}

	return entries, nil
}

// CleanName normalises a name from an archive to a relative, slash-separated path.
//
// Tarballs created with `tar -C dir .` name their files "./a.txt", which most ZIP extractors would treat literally.
func CleanName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Clean("/" + name)
	return strings.TrimPrefix(name, "/")
}
