package ioc

import (
	"context"
	"log/slog"
	"time"

	"github.com/KNICEX/market-monitor/internal/service/llm/gemini"
	"github.com/KNICEX/market-monitor/internal/service/monitor"
	"github.com/KNICEX/market-monitor/internal/service/notification"
	"github.com/google/generative-ai-go/genai"
	"github.com/spf13/viper"
	"google.golang.org/api/option"
)

type geminiConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	ApiKey  []string `mapstructure:"api_key"`
	Model   string   `mapstructure:"model"`
}

func loadGeminiConfig() geminiConfig {
	var cfg geminiConfig
	if err := viper.UnmarshalKey("llm.gemini", &cfg); err != nil {
		panic(err)
	}
	return cfg
}

func InitGeminiCli() *genai.Client {
	cfg := loadGeminiConfig()
	if len(cfg.ApiKey) == 0 {
		panic("no gemini api key set")
	}

	cli, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.ApiKey[0]))
	if err != nil {
		panic(err)
	}
	return cli
}

// InitNotifiers 日志通知总是开启, 按配置追加 webhook 与大模型点评
func InitNotifiers() []monitor.Notifier {
	notifiers := []monitor.Notifier{monitor.NewLogNotifier()}
	notifiers = append(notifiers, initWebhookNotifiers()...)
	cfg := loadGeminiConfig()
	if !cfg.Enabled {
		return notifiers
	}
	svc := gemini.NewService(InitGeminiCli(),
		gemini.WithModel(cfg.Model),
		gemini.WithTemperature(0.3),
		gemini.WithMaxOutputTokens(256))
	slog.Info("llm commentary enabled", "model", cfg.Model)
	return append(notifiers, monitor.NewLLMNotifier(svc))
}

func initWebhookNotifiers() []monitor.Notifier {
	type Config struct {
		Urls    []string `mapstructure:"urls"`
		Timeout int      `mapstructure:"timeout"`
	}

	var cfg Config
	if err := viper.UnmarshalKey("notify.webhook", &cfg); err != nil {
		panic(err)
	}
	if len(cfg.Urls) == 0 {
		return nil
	}
	svc := notification.NewWebhookService(time.Duration(cfg.Timeout) * time.Second)
	notifiers := make([]monitor.Notifier, 0, len(cfg.Urls))
	for _, url := range cfg.Urls {
		notifiers = append(notifiers, monitor.NewWebhookNotifier(svc, url))
	}
	return notifiers
}
