package bootstrap

import (
	"io"
	"time"

	"github.com/kbukum/asrgate/logger"
)

// Option customizes NewApp.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	shutdownTimeout time.Duration
	summaryOut      io.Writer
}

// WithLogger replaces the logger built from the config.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) { o.logger = l }
}

// WithShutdownTimeout bounds Shutdown. Non-positive values are ignored.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	}
}

// WithSummaryOutput redirects the startup summary, which goes to stdout by default.
func WithSummaryOutput(w io.Writer) Option {
	return func(o *appOptions) { o.summaryOut = w }
}
