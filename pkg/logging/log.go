package logging

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where NewLog writes. Zero values fall back to a "log"
// directory, "system.log" and info level.
type Options struct {
	Dir     string
	File    string
	Level   string
	Console bool // also write to stdout

	// BodyPaths are request paths whose small JSON bodies the access log
	// records.
	BodyPaths []string
}

func (o Options) withDefaults() Options {
	if o.Dir == "" {
		o.Dir = "log"
	}
	if o.File == "" {
		o.File = "system.log"
	}
	if o.Level == "" {
		o.Level = "info"
	}
	return o
}

// ParseLevel accepts zap level names ("debug", "info", "warn", "error").
func ParseLevel(s string) (zapcore.Level, error) {
	return zapcore.ParseLevel(strings.TrimSpace(s))
}

func ensureLogDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// NewLog builds a JSON logger writing to a size-rotated file under o.Dir and,
// if o.Console is set, to stdout as well.
func NewLog(o Options) (*zap.Logger, error) {
	o = o.withDefaults()
	lvl, err := ParseLevel(o.Level)
	if err != nil {
		return nil, err
	}
	if err := ensureLogDir(o.Dir); err != nil {
		return nil, err
	}

	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(o.Dir, o.File),
		MaxSize:    50, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
	})

	cores := []zapcore.Core{zapcore.NewCore(zapcore.NewJSONEncoder(cfg), w, lvl)}
	if o.Console {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.Lock(os.Stdout), lvl))
	}
	return zap.New(zapcore.NewTee(cores...)), nil
}
