package async

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	loggerMu sync.RWMutex
	logger   = logrus.StandardLogger()
)

// SetLogger replaces the logger used to report task errors and panics.
// A nil logger restores the logrus standard logger.
func SetLogger(l *logrus.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if l == nil {
		l = logrus.StandardLogger()
	}
	logger = l
}

func currentLogger() *logrus.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// SafeGo runs fn on its own goroutine under a context derived from parentCtx
// and bounded by timeout. A returned error is logged at warn level and a panic
// is recovered and logged with its stack; neither reaches the caller.
func SafeGo(parentCtx context.Context, timeout time.Duration, taskName string, fn func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(parentCtx, timeout)
		defer cancel()

		defer func() {
			if r := recover(); r != nil {
				currentLogger().WithFields(logrus.Fields{
					"task":  taskName,
					"panic": r,
					"stack": string(debug.Stack()),
				}).Error("panic in background task")
			}
		}()

		if err := fn(ctx); err != nil {
			currentLogger().WithError(err).WithField("task", taskName).Warn("background task failed")
		}
	}()
}
