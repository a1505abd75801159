package logger

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	sugar atomic.Pointer[zap.SugaredLogger]
)

func init() {
	l, err := build("text", "stdout")
	if err != nil {
		l = zap.NewNop()
	}
	sugar.Store(l.Sugar())
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zap() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel converts DEBUG/INFO/WARN/ERROR (any case) into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// SetLevel changes the minimum level. Unknown names are ignored.
func SetLevel(name string) {
	if l, err := ParseLevel(name); err == nil {
		level.SetLevel(l.zap())
	}
}

// Configure replaces the output of the package logger.
//
// format is "text" (console encoder) or "json"; output is "stdout",
// "stderr" or a file path.
func Configure(levelName, format, output string) error {
	l, err := ParseLevel(levelName)
	if err != nil {
		return err
	}
	zl, err := build(format, output)
	if err != nil {
		return err
	}
	level.SetLevel(l.zap())
	sugar.Store(zl.Sugar())
	return nil
}

// Set installs an existing zap logger, e.g. zaptest.NewLogger(t) in tests.
// The logger's own level applies in addition to SetLevel.
func Set(l *zap.Logger) {
	sugar.Store(l.Sugar())
}

// Sync flushes buffered log entries.
func Sync() error {
	return sugar.Load().Sync()
}

func build(format, output string) (*zap.Logger, error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")

	var enc zapcore.Encoder
	switch strings.ToLower(format) {
	case "", "text":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	var ws zapcore.WriteSyncer
	switch output {
	case "", "stdout":
		ws = zapcore.Lock(os.Stdout)
	case "stderr":
		ws = zapcore.Lock(os.Stderr)
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log output: %w", err)
		}
		ws = zapcore.AddSync(f)
	}

	return zap.New(zapcore.NewCore(enc, ws, level)), nil
}

func Debug(format string, v ...any) {
	sugar.Load().Debugf(format, v...)
}

func Info(format string, v ...any) {
	sugar.Load().Infof(format, v...)
}

func Warn(format string, v ...any) {
	sugar.Load().Warnf(format, v...)
}

func Error(format string, v ...any) {
	sugar.Load().Errorf(format, v...)
}
