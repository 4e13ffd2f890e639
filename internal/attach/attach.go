// Package attach serves built archives as HTTP file downloads.
package attach

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/nguyengg/szip/zip/stored"
)

const (
	// DefaultExt is the default value of [Attachment.Ext].
	DefaultExt = ".apk"
	// DefaultContentType is the default value of [Attachment.ContentType].
	DefaultContentType = "application/vnd.android.package-archive"
)

// Attachment describes how a built archive is presented to HTTP clients.
type Attachment struct {
	Name    string
	Version string

	// Ext is the file name extension including the leading dot.
	//
	// Default to DefaultExt.
	Ext string

	// ContentType is the value of the Content-Type response header.
	//
	// Default to DefaultContentType.
	ContentType string
}

// Filename returns "<name>-v<version><ext>", for example "demo-v1.2.0.apk".
//
// If Version is empty, the "-v<version>" part is omitted.
func (a Attachment) Filename() string {
	return a.Stem() + a.ext()
}

// Stem returns Filename without the extension.
func (a Attachment) Stem() string {
	if a.Version == "" {
		return a.Name
	}

	return a.Name + "-v" + a.Version
}

func (a Attachment) ext() string {
	if a.Ext == "" {
		return DefaultExt
	}

	return a.Ext
}

func (a Attachment) contentType() string {
	if a.ContentType == "" {
		return DefaultContentType
	}

	return a.ContentType
}

// SetHeaders sets Content-Type, Content-Disposition, and Content-Length for an archive of the given size.
func SetHeaders(h http.Header, a Attachment, size int64) {
	h.Set("Content-Type", a.contentType())
	h.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, a.Filename()))
	h.Set("Content-Length", strconv.FormatInt(size, 10))
}

// Write sends the archive as the response body with attachment headers.
func Write(w http.ResponseWriter, a Attachment, archive []byte) error {
	SetHeaders(w.Header(), a, int64(len(archive)))
	w.WriteHeader(http.StatusOK)

	_, err := w.Write(archive)
	return err
}

// EntriesFunc returns the entries of the archive to serve. It is called once per request.
type EntriesFunc func(ctx context.Context) ([]stored.Entry, error)

// Handler returns an http.Handler that builds a fresh archive from entries for every GET or HEAD request.
//
// HEAD requests receive the same headers as GET but no body. Any error from entries or stored.Build results in a
// 500 response; the error is logged with logger but not sent to the client.
func Handler(a Attachment, entries EntriesFunc, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		es, err := entries(r.Context())
		if err != nil {
			logger.Printf("%s %s: collect entries error: %v", r.Method, r.URL.Path, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		archive, err := stored.Build(es)
		if err != nil {
			logger.Printf("%s %s: build archive error: %v", r.Method, r.URL.Path, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if r.Method == http.MethodHead {
			SetHeaders(w.Header(), a, int64(len(archive)))
			w.WriteHeader(http.StatusOK)
			return
		}

		if err = Write(w, a, archive); err != nil {
			logger.Printf("%s %s: write response error: %v", r.Method, r.URL.Path, err)
			return
		}

		logger.Printf("%s %s: sent %s (%d entries, %d bytes)", r.Method, r.URL.Path, a.Filename(), len(es), len(archive))
	})
}
