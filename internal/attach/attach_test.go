package attach

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nguyengg/szip/zip/stored"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachment_Filename(t *testing.T) {
	tests := []struct {
		name       string
		attachment Attachment
		expected   string
	}{
		{
			name:       "defaults",
			attachment: Attachment{Name: "demo", Version: "1.2.0"},
			expected:   "demo-v1.2.0.apk",
		},
		{
			name:       "custom ext",
			attachment: Attachment{Name: "demo", Version: "2", Ext: ".zip"},
			expected:   "demo-v2.zip",
		},
		{
			name:       "no version",
			attachment: Attachment{Name: "demo"},
			expected:   "demo.apk",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.attachment.Filename())
		})
	}
}

func TestAttachment_Stem(t *testing.T) {
	assert.Equal(t, "demo-v1.2.0", Attachment{Name: "demo", Version: "1.2.0", Ext: ".apk"}.Stem())
	assert.Equal(t, "demo", Attachment{Name: "demo"}.Stem())
}

func TestWrite(t *testing.T) {
	archive, err := stored.Build([]stored.Entry{{Name: "a.txt", Content: []byte("hello")}})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, Write(rec, Attachment{Name: "demo", Version: "1.0"}, archive))

	res := rec.Result()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/vnd.android.package-archive", res.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="demo-v1.0.apk"`, res.Header.Get("Content-Disposition"))
	assert.Equal(t, "113", res.Header.Get("Content-Length"))
	assert.Equal(t, archive, rec.Body.Bytes())
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestHandler(t *testing.T) {
	entries := []stored.Entry{
		{Name: "AndroidManifest.xml", Content: []byte("<manifest/>")},
		{Name: "classes.dex", Content: []byte{0x64, 0x65, 0x78, 0x0a}},
	}
	calls := 0
	h := Handler(Attachment{Name: "demo", Version: "3", ContentType: "application/zip", Ext: ".zip"}, func(ctx context.Context) ([]stored.Entry, error) {
		calls++
		return entries, nil
	}, testLogger())

	srv := httptest.NewServer(h)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/demo-v3.zip")
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	_ = res.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/zip", res.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="demo-v3.zip"`, res.Header.Get("Content-Disposition"))
	assert.Equal(t, int64(len(body)), res.ContentLength)

	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "AndroidManifest.xml", zr.File[0].Name)
	assert.Equal(t, "classes.dex", zr.File[1].Name)

	// HEAD gets the same headers without body.
	res, err = http.Head(srv.URL)
	require.NoError(t, err)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, int64(len(body)), res.ContentLength)

	assert.Equal(t, 2, calls)
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		entries  EntriesFunc
		expected int
	}{
		{
			name:   "method not allowed",
			method: http.MethodPost,
			entries: func(ctx context.Context) ([]stored.Entry, error) {
				return nil, nil
			},
			expected: http.StatusMethodNotAllowed,
		},
		{
			name:   "entries error",
			method: http.MethodGet,
			entries: func(ctx context.Context) ([]stored.Entry, error) {
				return nil, errors.New("disk on fire")
			},
			expected: http.StatusInternalServerError,
		},
		{
			name:   "invalid entry",
			method: http.MethodGet,
			entries: func(ctx context.Context) ([]stored.Entry, error) {
				return []stored.Entry{{Name: ""}}, nil
			},
			expected: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Handler(Attachment{Name: "demo"}, tt.entries, testLogger()).ServeHTTP(rec, httptest.NewRequest(tt.method, "/", nil))

			assert.Equal(t, tt.expected, rec.Code)
			assert.Empty(t, rec.Header().Get("Content-Disposition"))
		})
	}
}
