package ioc

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

func InitLogger() {
	type Config struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	}

	cfg := Config{Level: "info", Format: "text"}
	if err := viper.UnmarshalKey("log", &cfg); err != nil {
		panic(err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		panic(err)
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
