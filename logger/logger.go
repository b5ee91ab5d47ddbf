// logger/logger.go
package logger

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	log zerolog.Logger
	mu  sync.Mutex
)

func init() {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "2006-01-02 15:04:05",
	}
	log = zerolog.New(output).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}

// SetLevel sets the minimum log level from a level name (debug, info,
// warn, error). Unknown names fall back to info with a warning.
func SetLevel(levelStr string) {
	mu.Lock()
	defer mu.Unlock()

	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		log.Warn().Str("level", levelStr).Msg("invalid log level, defaulting to info")
		level = zerolog.InfoLevel
	}
	log = log.Level(level)
}

// Debug logs a debug message
func Debug(v ...interface{}) {
	log.Debug().Msg(fmt.Sprint(v...))
}

// Debugf logs a formatted debug message
func Debugf(format string, v ...interface{}) {
	log.Debug().Msgf(format, v...)
}

// Info logs an info message
func Info(v ...interface{}) {
	log.Info().Msg(fmt.Sprint(v...))
}

// Infof logs a formatted info message
func Infof(format string, v ...interface{}) {
	log.Info().Msgf(format, v...)
}

// Warn logs a warning message
func Warn(v ...interface{}) {
	log.Warn().Msg(fmt.Sprint(v...))
}

// Warnf logs a formatted warning message
func Warnf(format string, v ...interface{}) {
	log.Warn().Msgf(format, v...)
}

// Error logs an error message
func Error(v ...interface{}) {
	log.Error().Msg(fmt.Sprint(v...))
}

// Errorf logs a formatted error message
func Errorf(format string, v ...interface{}) {
	log.Error().Msgf(format, v...)
}

// Fatal logs an error message and exits the program
func Fatal(v ...interface{}) {
	log.Fatal().Msg(fmt.Sprint(v...))
}

// Fatalf logs a formatted error message and exits the program
func Fatalf(format string, v ...interface{}) {
	log.Fatal().Msgf(format, v...)
}
