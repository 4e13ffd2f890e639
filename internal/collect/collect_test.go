package collect

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/nguyengg/szip/zip/stored"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeTree creates files relative to root with the given contents.
func makeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
}

func names(entries []stored.Entry) []string {
	var s []string
	for _, e := range entries {
		s = append(s, e.Name)
	}
	return s
}

func TestFiles(t *testing.T) {
	tmp := t.TempDir()
	app := filepath.Join(tmp, "app")
	makeTree(t, app, map[string]string{
		"res/values/strings.xml": "<resources/>",
		"AndroidManifest.xml":    "<manifest/>",
		"classes.dex":            "dex\n035\x00",
		"res/layout/main.xml":    "",
	})
	makeTree(t, tmp, map[string]string{"README.txt": "readme"})

	tests := []struct {
		name     string
		paths    []string
		opts     func(*Options)
		expected []string
	}{
		{
			name:  "directory keeps root",
			paths: []string{app},
			expected: []string{
				"app/AndroidManifest.xml",
				"app/classes.dex",
				"app/res/layout/main.xml",
				"app/res/values/strings.xml",
			},
		},
		{
			name:  "directory with junk root",
			paths: []string{app},
			opts: func(o *Options) {
				o.JunkRoot = true
			},
			expected: []string{
				"AndroidManifest.xml",
				"classes.dex",
				"res/layout/main.xml",
				"res/values/strings.xml",
			},
		},
		{
			name:     "file then directory preserves argument order",
			paths:    []string{filepath.Join(tmp, "README.txt"), filepath.Join(app, "res")},
			expected: []string{"README.txt", "res/layout/main.xml", "res/values/strings.xml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var optFns []func(*Options)
			if tt.opts != nil {
				optFns = append(optFns, tt.opts)
			}

			entries, err := Files(context.Background(), tt.paths, optFns...)
			require.NoErrorf(t, err, "Files() error = %v", err)
			assert.Equal(t, tt.expected, names(entries))
		})
	}
}

func TestFiles_Content(t *testing.T) {
	tmp := t.TempDir()
	data := make([]byte, 100*1024)
	for i := range data {
		data[i] = byte(i)
	}
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "big.bin"), data, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "empty"), nil, 0644))

	entries, err := Files(context.Background(), []string{filepath.Join(tmp, "big.bin"), filepath.Join(tmp, "empty")}, func(o *Options) {
		o.BufferSize = 1000
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, data, entries[0].Content)
	assert.Empty(t, entries[1].Content)
	assert.Equal(t, stored.Store, entries[0].Method)
}

func TestFiles_Duplicates(t *testing.T) {
	tmp := t.TempDir()
	makeTree(t, tmp, map[string]string{
		"a/x.txt": "one",
		"b/x.txt": "two",
	})
	paths := []string{filepath.Join(tmp, "a", "x.txt"), filepath.Join(tmp, "b", "x.txt")}

	_, err := Files(context.Background(), paths)
	assert.ErrorIs(t, err, ErrDuplicateName)

	entries, err := Files(context.Background(), paths, func(o *Options) {
		o.AllowDuplicates = true
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"x.txt", "x.txt"}, names(entries))
	assert.Equal(t, []byte("two"), entries[1].Content)
}

func TestFiles_Missing(t *testing.T) {
	_, err := Files(context.Background(), []string{filepath.Join(t.TempDir(), "missing")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFiles_Cancelled(t *testing.T) {
	tmp := t.TempDir()
	makeTree(t, tmp, map[string]string{"a.txt": "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Files(ctx, []string{tmp})
	assert.ErrorIs(t, err, context.Canceled)
}

type countingCloser struct {
	written int64
	closed  bool
}

func (c *countingCloser) Write(p []byte) (int, error) {
	c.written += int64(len(p))
	return len(p), nil
}

func (c *countingCloser) Close() error {
	c.closed = true
	return nil
}

func TestFiles_Progress(t *testing.T) {
	tmp := t.TempDir()
	makeTree(t, tmp, map[string]string{"a.txt": "hello", "b.txt": "world!"})

	progress := map[string]*countingCloser{}
	_, err := Files(context.Background(), []string{tmp}, func(o *Options) {
		o.Progress = func(path string, size int64) io.WriteCloser {
			if filepath.Base(path) == "b.txt" {
				return nil
			}

			c := &countingCloser{}
			progress[filepath.Base(path)] = c
			assert.Equal(t, int64(5), size)
			return c
		}
	})
	require.NoError(t, err)

	require.Contains(t, progress, "a.txt")
	assert.Equal(t, int64(5), progress["a.txt"].written)
	assert.True(t, progress["a.txt"].closed)
	assert.NotContains(t, progress, "b.txt")
}
