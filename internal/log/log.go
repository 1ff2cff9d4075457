// Package log wraps a zap sugared logger behind package-level helpers.
package log

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	mu    sync.RWMutex
	sugar *zap.SugaredLogger
	base  *zap.Logger
)

// Init replaces the package logger. Debug selects the development config.
func Init(debug bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		l, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %w", err)
	}
	mu.Lock()
	base = l
	sugar = l.Sugar()
	mu.Unlock()
	return nil
}

// SetLogger installs an existing logger, e.g. zap.NewNop() in tests.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	base = l.WithOptions(zap.AddCallerSkip(1))
	sugar = base.Sugar()
	mu.Unlock()
}

// Logger returns the base zap logger, creating a production one on first use.
func Logger() *zap.Logger {
	get()
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func get() *zap.SugaredLogger {
	mu.RLock()
	s := sugar
	mu.RUnlock()
	if s != nil {
		return s
	}
	mu.Lock()
	defer mu.Unlock()
	if sugar == nil {
		base, _ = zap.NewProduction(zap.AddCallerSkip(1))
		sugar = base.Sugar()
	}
	return sugar
}

// Sync flushes buffered entries.
func Sync() {
	mu.RLock()
	s := sugar
	mu.RUnlock()
	if s != nil {
		_ = s.Sync()
	}
}

func Debugf(template string, args ...interface{}) { get().Debugf(template, args...) }

func Debugw(msg string, keysAndValues ...interface{}) { get().Debugw(msg, keysAndValues...) }

func Infof(template string, args ...interface{}) { get().Infof(template, args...) }

func Infow(msg string, keysAndValues ...interface{}) { get().Infow(msg, keysAndValues...) }

func Warnf(template string, args ...interface{}) { get().Warnf(template, args...) }

func Warnw(msg string, keysAndValues ...interface{}) { get().Warnw(msg, keysAndValues...) }

func Errorf(template string, args ...interface{}) { get().Errorf(template, args...) }

func Errorw(msg string, keysAndValues ...interface{}) { get().Errorw(msg, keysAndValues...) }

func Fatalf(template string, args ...interface{}) { get().Fatalf(template, args...) }
