package common

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/rs/zerolog"
)

// Packages with their own logger. All of them get the configured level.
var loggerNames = []string{"serializer", "server", "transport/rpc", "client"}

// --------------------------------------------------------------------------
// Custom Logger (implements dragonboats logger.ILogger)
// --------------------------------------------------------------------------

// gaeaLogger implements the ILogger interface on top of a zerolog logger
type gaeaLogger struct {
	level logger.LogLevel
	zl    zerolog.Logger
}

func (l *gaeaLogger) SetLevel(level logger.LogLevel) {
	l.level = level
}

func (l *gaeaLogger) Debugf(format string, args ...interface{}) {
	if l.level >= logger.DEBUG {
		l.zl.Debug().Msgf(format, args...)
	}
}

func (l *gaeaLogger) Infof(format string, args ...interface{}) {
	if l.level >= logger.INFO {
		l.zl.Info().Msgf(format, args...)
	}
}

func (l *gaeaLogger) Warningf(format string, args ...interface{}) {
	if l.level >= logger.WARNING {
		l.zl.Warn().Msgf(format, args...)
	}
}

func (l *gaeaLogger) Errorf(format string, args ...interface{}) {
	if l.level >= logger.ERROR {
		l.zl.Error().Msgf(format, args...)
	}
}

func (l *gaeaLogger) Panicf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if l.level >= logger.CRITICAL {
		l.zl.Error().Msg(msg)
	}
	panic(msg)
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

// logOutput is where all package loggers write to
var logOutput io.Writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}

// CreateLogger implements dragonboats logger.Factory
func CreateLogger(pkgName string) logger.ILogger {
	return newLogger(logOutput, pkgName)
}

func newLogger(out io.Writer, pkgName string) *gaeaLogger {
	return &gaeaLogger{
		level: logger.INFO,
		zl:    zerolog.New(out).With().Timestamp().Str("pkg", pkgName).Logger(),
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// ParseLogLevel converts a string level to logger.LogLevel
func ParseLogLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DEBUG, nil
	case "info", "":
		return logger.INFO, nil
	case "warning", "warn":
		return logger.WARNING, nil
	case "error":
		return logger.ERROR, nil
	default:
		return logger.INFO, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

// InitLoggers installs the zerolog backed factory and sets the level of all
// package loggers. Call it once, before the server or client is created.
func InitLoggers(level string) error {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return err
	}

	logger.SetLoggerFactory(CreateLogger)

	for _, name := range loggerNames {
		logger.GetLogger(name).SetLevel(lvl)
	}
	return nil
}
