package cli

import (
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/aryankumar/esadmin/internal/util"
)

// Rotation limits for --log-file
const (
	logMaxSizeMB  = 10
	logMaxBackups = 3
	logMaxAgeDays = 28
)

// logCloser is the open --log-file, closed when Execute returns
var logCloser io.Closer

// setupLogging configures structured logging with slog. Logs go to stderr
// unless a log file is set, in which case they go to a rotating file.
func setupLogging(cmd *cobra.Command, logFile string) error {
	level := slog.LevelInfo
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var w io.Writer = cmd.ErrOrStderr()
	if logFile != "" {
		lj := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    logMaxSizeMB,
			MaxBackups: logMaxBackups,
			MaxAge:     logMaxAgeDays,
			Compress:   true,
		}
		w = lj
		logCloser = lj
	}

	var handler slog.Handler
	switch format := strings.ToLower(viper.GetString("log-format")); format {
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return util.NewValidationError("log-format", format, "must be text or json")
	}

	slog.SetDefault(slog.New(handler))
	slog.Debug("verbose logging enabled")
	return nil
}

func closeLog() {
	if logCloser != nil {
		logCloser.Close()
		logCloser = nil
	}
}
