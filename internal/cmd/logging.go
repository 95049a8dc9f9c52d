package cmd

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger *slog.Logger

// initLogging routes slog through a charmbracelet handler on stderr and,
// when log-file is set, a rotating file.
func initLogging() {
	var out io.Writer = os.Stderr
	if path := viper.GetString("log-file"); path != "" {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   path,
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
			LocalTime:  true,
		})
	}

	handler := log.NewWithOptions(out, log.Options{
		ReportCaller:    false,
		ReportTimestamp: true,
		Level:           parseLevel(viper.GetString("log-level"), viper.GetBool("verbose")),
	})

	logger = slog.New(handler)
	slog.SetDefault(logger)
}

func parseLevel(level string, verbose bool) log.Level {
	if verbose {
		return log.DebugLevel
	}
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
