package logger

import (
	"os"

	"go.uber.org/zap"
)

// Init initializes the global zap logger and returns it.
// LOG_MODE=prod selects the JSON production encoder; anything else
// (including unset) keeps the development console encoder.
func Init() (*zap.Logger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if os.Getenv("LOG_MODE") == "prod" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(l)
	return l, nil
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = zap.L().Sync()
}
