package logger

import (
	"go.uber.org/zap"
)

// New builds a console logger for local runs and a JSON production logger
// otherwise.
func New(env string) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if env == "local" {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(l)
	return l
}
