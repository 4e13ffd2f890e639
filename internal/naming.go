package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// OpenExclFile creates a new file for writing with the condition that the file did not exist prior to this call.
//
// The first argument is the parent directory of the file to be created, then the stem and the extension. If
// "stem.ext" already exists, "stem-1.ext", "stem-2.ext", etc. are tried in that order.
//
// The file is opened with flag `os.O_RDWR|os.O_CREATE|os.O_EXCL` and permission `0666`. Caller is responsible for
// closing the file upon a successful return.
func OpenExclFile(parent, stem, ext string) (file *os.File, err error) {
	name := filepath.Join(parent, stem+ext)
	for i := 0; ; {
		switch file, err = os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0666); {
		case err == nil:
			return
		case errors.Is(err, os.ErrExist):
			i++
			name = filepath.Join(parent, fmt.Sprintf("%s-%d%s", stem, i, ext))
		default:
			return nil, fmt.Errorf("create file error: %w", err)
		}
	}
}

// StemAndExt is a variant of filepath.Ext that allows extended extension to be detected while also returning the stem.
//
// For example, `filepath.Ext("app.tar.gz")` would return ".gz", but `StemAndExt("app.tar.gz")` would return ".tar.gz"
// for the extension, "app" for the stem, which lets repack name its output "app.zip" instead of "app.tar.zip".
//
// Only extensions of 5 characters or fewer are counted, so if there is no `.` in the last 6 characters the returned ext
// is empty.
func StemAndExt(path string) (stem, ext string) {
	n := len(path) - 1
	for i, j := n, max(0, n-6); i >= j; i-- {
		switch path[i] {
		case '\\', '/':
			stem = path[i+1:]
			return
		case '.':
			ext = path[i:] + ext
			path = path[:i]
			n = len(path)
			i, j = n, max(0, n-6)
			continue
		}
	}

	stem = filepath.Base(path)
	return
}
