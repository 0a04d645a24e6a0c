// internal/logger/logger.go
//
// Structured JSON logging (zap + lumberjack).
//
// Context
// -------
// Lifecycle, gate, and audit events land in one JSON file per day under
// `<root>/logs/YYYY-MM-DD.log`.  Lumberjack rotates, compresses, and
// prunes the files, so no external logrotate job is needed.  Interactive
// runs also tee everything to stdout in console form.
//
// The returned logger is installed as the process-wide default, so
// `zap.S()` works from any package after boot.
package logger

import (
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Dev environments can lower the threshold with ATRIUM_LOG_LEVEL=debug.
func level() zapcore.Level {
	if v := os.Getenv("ATRIUM_LOG_LEVEL"); v != "" {
		var l zapcore.Level
		if err := l.UnmarshalText([]byte(v)); err == nil {
			return l
		}
	}
	return zap.InfoLevel
}

// New opens today's log file under rootDir/logs and returns the sugared
// logger.  tee attaches a console core for interactive runs.
func New(rootDir string, tee bool) (*zap.SugaredLogger, error) {
	dir := filepath.Join(rootDir, "logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	sink := &lumberjack.Logger{
		Filename:   filepath.Join(dir, time.Now().Format("2006-01-02")+".log"),
		MaxSize:    50, // MB
		MaxBackups: 7,
		MaxAge:     14, // days
		Compress:   true,
	}

	enc := zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}

	lvl := level()
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(sink), lvl),
	}
	if tee {
		cores = append(cores,
			zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(os.Stdout), lvl))
	}

	z := zap.New(
		zapcore.NewTee(cores...),
		zap.ErrorOutput(zapcore.AddSync(sink)),
	).Sugar()
	zap.ReplaceGlobals(z.Desugar())

	z.Infow("logger online", "tee", tee, "level", lvl.String())
	return z, nil
}
