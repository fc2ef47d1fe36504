package logger

import "go.uber.org/zap"

// Log is the process-wide logger. It discards everything until Init is called.
var Log = zap.NewNop()

func Init(env string) error {
	var (
		l   *zap.Logger
		err error
	)
	if env == "dev" || env == "development" {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}

	Log = l
	zap.ReplaceGlobals(l)
	return nil
}

func Sync() {
	_ = Log.Sync()
}
