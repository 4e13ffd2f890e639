package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-ini/ini"
	"github.com/mitchellh/go-homedir"
)

// FileName is the name of the configuration file that Load searches for.
const FileName = ".szip"

// Loader can be used for loading .szip configuration as well as overridden with default settings.
type Loader struct {
	// Profile is the AWS profile to use, taking precedence over bucket-based AWS profile setting.
	Profile string

	cfg           *ini.File
	s3clientCache sync.Map
}

// homeDir is replaced in tests.
var homeDir = homedir.Dir

// Load will traverse the directory hierarchy upwards to find the first ".szip" file available and load its contents
// into the Loader. If there is none, "~/.szip" is tried last.
//
// The name of the .szip file is returned, or empty string if none was found.
func (l *Loader) Load(ctx context.Context) (string, error) {
	cur, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		path := filepath.Join(cur, FileName)
		fi, err := os.Stat(path)
		switch {
		case err == nil && !fi.IsDir():
			return path, l.LoadFile(path)
		case err != nil && !os.IsNotExist(err):
			return "", err
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return l.loadHome()
		}
		cur = parent
	}
}

func (l *Loader) loadHome() (string, error) {
	home, err := homeDir()
	if err != nil || home == "" {
		return "", nil
	}

	path := filepath.Join(home, FileName)
	if fi, err := os.Stat(path); err != nil || fi.IsDir() {
		return "", nil
	}

	return path, l.LoadFile(path)
}

// LoadFile loads the given INI file into the Loader.
//
// If the file cannot be parsed, the Loader is reset to empty configuration and the error is returned.
func (l *Loader) LoadFile(path string) (err error) {
	if l.cfg, err = ini.Load(path); err != nil {
		l.cfg = ini.Empty()
		return err
	}

	return nil
}

// LoadProfile is a convenient method to set Loader.Profile then call Load.
func (l *Loader) LoadProfile(ctx context.Context, profile string) (string, error) {
	l.Profile = profile
	return l.Load(ctx)
}

// section returns the named section, or nil if the loader is empty or does not have it.
func (l *Loader) section(name string) *ini.Section {
	if l.cfg == nil {
		return nil
	}

	sec, err := l.cfg.GetSection(name)
	if err != nil {
		return nil
	}

	return sec
}

// NewLoader returns an empty Loader.
func NewLoader() *Loader {
	return &Loader{cfg: ini.Empty()}
}

// DefaultLoader is the default Loader instance for package-level methods.
var DefaultLoader = NewLoader()

// Load calls Loader.Load on the DefaultLoader instance.
func Load(ctx context.Context) (string, error) {
	return DefaultLoader.Load(ctx)
}

// LoadFile calls Loader.LoadFile on the DefaultLoader instance.
func LoadFile(path string) error {
	return DefaultLoader.LoadFile(path)
}

// LoadProfile calls Loader.LoadProfile on the DefaultLoader instance.
func LoadProfile(ctx context.Context, profile string) (string, error) {
	return DefaultLoader.LoadProfile(ctx, profile)
}
