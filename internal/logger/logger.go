// Package logger holds the process-wide zap logger shared by the store,
// analysis, seed and app packages. Collaborators that want their own logger
// still take a *zap.SugaredLogger in their constructor; this package only
// decides the encoder once per process.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init configures the global logger for the given environment. "production"
// gets the JSON encoder; everything else gets the console encoder. Repeated
// calls are no-ops.
func Init(env string) {
	once.Do(func() {
		var base *zap.Logger
		var err error

		if env == "production" {
			base, err = zap.NewProduction()
		} else {
			base, err = zap.NewDevelopment()
		}

		if err != nil {
			base = zap.NewNop()
		}

		sugar = base.Sugar()
	})
}

// Get returns the global sugared logger, initializing a development logger
// when Init has not run yet.
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init("development")
	}
	return sugar
}

// Sync flushes buffered entries. Called on shutdown.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
