// Package monitoring holds the process-wide structured logger shared by
// the pipeline packages and the CLIs. Library code logs through L() and
// stays silent until a CLI installs a real logger with Init.
package monitoring

import "go.uber.org/zap"

var logger = zap.NewNop().Sugar()

// Init builds and installs the process logger. Verbose selects the
// development encoder. The returned zap logger is handed back so callers
// can defer Sync.
func Init(verbose bool) (*zap.Logger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if verbose {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	logger = l.Sugar()
	return l, nil
}

// L returns the current process logger.
func L() *zap.SugaredLogger { return logger }

// SetLogger replaces the process logger. Passing nil installs a no-op
// logger; tests use this to mute output.
func SetLogger(l *zap.SugaredLogger) {
	if l == nil {
		logger = zap.NewNop().Sugar()
		return
	}
	logger = l
}

// Logf logs a formatted message at info level.
func Logf(format string, v ...interface{}) { logger.Infof(format, v...) }
