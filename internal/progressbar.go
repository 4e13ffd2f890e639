package internal

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"
)

// DefaultBytes is equivalent to progressbar.DefaultBytes but with higher progressbar.OptionThrottle.
func DefaultBytes(maxBytes int64, description string, options ...progressbar.Option) *progressbar.ProgressBar {
	return progressbar.NewOptions64(maxBytes,
		append([]progressbar.Option{
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(10),
			progressbar.OptionThrottle(1 * time.Second),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() {
				_, _ = fmt.Fprint(os.Stderr, "\n")
			}),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetRenderBlankState(true)},
			options...)...)
}

// NewProgressLogger returns an io.WriteCloser that tallies bytes written to it and logs about them at most once every
// interval.
//
// For example, with verb "read", the logger prints `read X / Y so far` where X is the number of bytes written so far
// and Y the expected size, both in human-friendly format (e.g. 5 KiB, 1 MiB). Close prints the final tally.
//
// If size is not positive, the expected size is unknown and only X is printed.
func NewProgressLogger(logger *log.Logger, verb string, size int64, interval time.Duration) io.WriteCloser {
	return &progressLogger{
		logger: logger,
		verb:   verb,
		rate:   &rate.Sometimes{Interval: interval},
		size:   size,
	}
}

type progressLogger struct {
	logger       *log.Logger
	verb         string
	rate         *rate.Sometimes
	offset, size int64
}

func (l *progressLogger) Write(p []byte) (n int, err error) {
	n = len(p)
	l.offset += int64(n)

	l.rate.Do(func() {
		if l.size <= 0 {
			l.logger.Printf("%s %s so far", l.verb, humanize.IBytes(uint64(l.offset)))
			return
		}

		l.logger.Printf("%s %s / %s so far", l.verb, humanize.IBytes(uint64(l.offset)), humanize.IBytes(uint64(l.size)))
	})

	return n, nil
}

func (l *progressLogger) Close() error {
	if l.size <= 0 || l.offset == l.size {
		l.logger.Printf("%s %s in total", l.verb, humanize.IBytes(uint64(l.offset)))
	} else {
		l.logger.Printf("%s %s / %s in total", l.verb, humanize.IBytes(uint64(l.offset)), humanize.IBytes(uint64(l.size)))
	}

	return nil
}
