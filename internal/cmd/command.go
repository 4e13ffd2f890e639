package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/szip/internal/config"
)

type Szip struct {
	Profile string         `short:"p" long:"profile" description:"override AWS_PROFILE if given"`
	Config  flags.Filename `short:"c" long:"config" description:"load this configuration file instead of searching for .szip from the working directory upwards" value-name:"FILE"`

	Create Create `command:"create" alias:"c" description:"create a stored zip archive from files and directories"`
	Repack Repack `command:"repack" alias:"r" description:"rewrite tar, zip, 7z, etc. archives as stored zip archives"`
	Crc    Crc    `command:"crc" description:"print the CRC-32 of files"`
	Serve  Serve  `command:"serve" description:"serve directories as a downloadable archive over HTTP"`
	Upload Upload `command:"upload" alias:"up" description:"create a stored zip archive and upload it to S3"`
}

func NewParser() (*flags.Parser, error) {
	opts := &Szip{}

	p := flags.NewNamedParser("szip", flags.Default)
	if _, err := p.AddGroup("Global Options", "", opts); err != nil {
		return nil, err
	}

	p.CommandHandler = func(command flags.Commander, args []string) error {
		if command == nil {
			return nil
		}

		if err := opts.setup(context.Background()); err != nil {
			return err
		}

		return command.Execute(args)
	}

	return p, nil
}

// setup applies the global options before any command runs.
func (s *Szip) setup(ctx context.Context) error {
	if s.Profile != "" {
		if err := os.Setenv("AWS_PROFILE", s.Profile); err != nil {
			return fmt.Errorf("set AWS_PROFILE error: %w", err)
		}
	}

	if s.Config != "" {
		config.DefaultLoader.Profile = s.Profile
		if err := config.LoadFile(string(s.Config)); err != nil {
			return fmt.Errorf("load config file error: %w", err)
		}

		return nil
	}

	if _, err := config.LoadProfile(ctx, s.Profile); err != nil {
		return fmt.Errorf("load %s error: %w", config.FileName, err)
	}

	return nil
}
