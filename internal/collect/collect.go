// Package collect reads files and directories into stored.Entry values.
package collect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/nguyengg/szip/zip/stored"
)

const (
	// DefaultBufferSize is the default value for [Options.BufferSize], which is 32 KiB.
	DefaultBufferSize = 32 * 1024
)

// ErrDuplicateName is returned by Files if two files map to the same name in the archive.
var ErrDuplicateName = errors.New("duplicate name in archive")

// Options customises Files.
type Options struct {
	// JunkRoot determines whether files from a directory are put under a directory named after it or not.
	//
	// For example, when collecting directory named "app" with JunkRoot being false, its files are named:
	//
	//	app/AndroidManifest.xml
	//	app/res/values/strings.xml
	//
	// If JunkRoot is true, the files are named:
	//
	//	AndroidManifest.xml
	//	res/values/strings.xml
	JunkRoot bool

	// AllowDuplicates disables the duplicate name check.
	//
	// The ZIP format tolerates duplicate names but most extractors only keep one of them.
	AllowDuplicates bool

	// Progress, if given, is called once per file to create a writer that receives the file's bytes as they are read.
	//
	// The returned writer is closed once the file has been read. It may return nil to skip progress for that file.
	Progress func(path string, size int64) io.WriteCloser

	// BufferSize is the length of the buffer being used for reading files.
	//
	// Default to DefaultBufferSize.
	BufferSize int
}

// Files reads the given paths into entries.
//
// A regular file becomes one entry named after its base name. A directory is walked recursively in lexical order and
// each of its regular files becomes one entry; see Options.JunkRoot for how these are named. Entries are returned in
// the order of paths. Names always use forward slashes.
func Files(ctx context.Context, paths []string, optFns ...func(*Options)) ([]stored.Entry, error) {
	opts := &Options{
		BufferSize: DefaultBufferSize,
	}
	for _, fn := range optFns {
		fn(opts)
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}

	c := &collector{
		opts: opts,
		buf:  make([]byte, opts.BufferSize),
		seen: make(map[string]string),
	}

	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf(`stat "%s" error: %w`, p, err)
		}

		if !fi.IsDir() {
			if err = c.add(ctx, p, fi.Name()); err != nil {
				return nil, err
			}
			continue
		}

		root := p
		if abs, err := filepath.Abs(p); err == nil {
			root = abs
		}
		base := filepath.Base(root)

		if err = WalkRegularFiles(ctx, p, func(name string, _ fs.DirEntry) error {
			rel, err := filepath.Rel(p, name)
			if err != nil {
				return err
			}

			rel = filepath.ToSlash(rel)
			if !opts.JunkRoot {
				rel = path.Join(base, rel)
			}

			return c.add(ctx, name, rel)
		}); err != nil {
			return nil, err
		}
	}

	return c.entries, nil
}

type collector struct {
	opts    *Options
	buf     []byte
	seen    map[string]string
	entries []stored.Entry
}

func (c *collector) add(ctx context.Context, src, name string) error {
	if prev, ok := c.seen[name]; ok && !c.opts.AllowDuplicates {
		return fmt.Errorf(`add "%s" error: %w: "%s" was already added from "%s"`, src, ErrDuplicateName, name, prev)
	}
	c.seen[name] = src

	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf(`open file "%s" error: %w`, src, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf(`stat file "%s" error: %w`, src, err)
	}

	content := &bytes.Buffer{}
	content.Grow(int(fi.Size()))

	var w io.Writer = content
	var pw io.WriteCloser
	if c.opts.Progress != nil {
		if pw = c.opts.Progress(src, fi.Size()); pw != nil {
			w = io.MultiWriter(content, pw)
		}
	}

	_, err = copyBufferWithContext(ctx, w, f, c.buf)
	if pw != nil {
		_ = pw.Close()
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}

		return fmt.Errorf(`read file "%s" error: %w`, src, err)
	}

	c.entries = append(c.entries, stored.Entry{Name: name, Content: content.Bytes()})
	return nil
}

// copyBufferWithContext is a variant of io.CopyBuffer that checks ctx between reads.
func copyBufferWithContext(ctx context.Context, dst io.Writer, src io.Reader, buf []byte) (written int64, err error) {
	for {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		nr, er := src.Read(buf)
		if nr > 0 {
			nw, ew := dst.Write(buf[0:nr])
			switch {
			case ew != nil:
				return written, ew
			case nr != nw:
				return written, io.ErrShortWrite
			}

			written += int64(nw)
		}

		if er == io.EOF {
			return written, nil
		}
		if er != nil {
			return written, er
		}
	}
}

// WalkRegularFiles is a specialisation of filepath.WalkDir that applies the callback only to regular files.
//
// filepath.WalkDir visits files in lexical order, which becomes the order of entries in the archive.
func WalkRegularFiles(ctx context.Context, root string, fn func(path string, d fs.DirEntry) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			// ctx.Err is not supposed to return nil here if ctx.Done() is closed.
			if err = ctx.Err(); err == nil {
				return filepath.SkipAll
			}
			return err
		default:
			break
		}

		switch {
		case err != nil, d.IsDir(), !d.Type().IsRegular():
			return err
		default:
			return fn(path, d)
		}
	})
}
