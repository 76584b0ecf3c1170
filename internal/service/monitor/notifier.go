package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KNICEX/market-monitor/internal/service/llm"
	"github.com/KNICEX/market-monitor/internal/service/notification"
)

type logNotifier struct{}

// NewLogNotifier 仅记录日志
func NewLogNotifier() Notifier {
	return logNotifier{}
}

func (logNotifier) Notify(ctx context.Context, alert Alert) error {
	slog.Info("alert", "symbol", alert.Code, "name", alert.Name, "kind", alert.Kind,
		"timeframe", alert.Timeframe, "price", alert.Price, "desc", alert.Description)
	return nil
}

// llmNotifier 请大模型对新信号给出一句点评, 结果只写日志
type llmNotifier struct {
	svc     llm.Service
	timeout time.Duration
}

func NewLLMNotifier(svc llm.Service) Notifier {
	return &llmNotifier{
		svc:     svc,
		timeout: 30 * time.Second,
	}
}

func (n *llmNotifier) Notify(ctx context.Context, alert Alert) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	answer, err := n.svc.AskOnce(ctx, llm.Question{Content: commentaryPrompt(alert)})
	if err != nil {
		return fmt.Errorf("llm commentary: %w", err)
	}
	slog.Info("signal commentary", "symbol", alert.Code, "kind", alert.Kind,
		"commentary", strings.TrimSpace(answer.Content), "input_token", answer.InputToken,
		"output_token", answer.OutputToken)
	return nil
}

func commentaryPrompt(alert Alert) string {
	name := alert.Name
	if name == "" {
		name = alert.Code
	}
	return fmt.Sprintf("A technical signal just fired for %s (%s).\n"+
		"timeframe: %s\nsignal: %s\ndetail: %s\nprice: %s\ntime: %s\n"+
		"In at most two sentences, explain what this signal usually implies and what would invalidate it. "+
		"Do not give trading advice.",
		name, alert.Code, alert.Timeframe, alert.Kind, alert.Description, alert.Price.String(),
		alert.EventTime.Format(time.DateTime))
}

type webhookNotifier struct {
	svc notification.WebhookService
	url string
}

// NewWebhookNotifier 把告警 POST 到外部 webhook
func NewWebhookNotifier(svc notification.WebhookService, url string) Notifier {
	return &webhookNotifier{
		svc: svc,
		url: url,
	}
}

func (n *webhookNotifier) Notify(ctx context.Context, alert Alert) error {
	return n.svc.Send(ctx, n.url, map[string]any{
		"id":          alert.Id,
		"stock_code":  alert.Code,
		"name":        alert.Name,
		"timeframe":   alert.Timeframe,
		"signal_type": alert.Kind,
		"price":       alert.Price.String(),
		"description": alert.Description,
		"bar_time":    alert.EventTime,
		"timestamp":   alert.Timestamp,
	})
}
