package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestWebhookNotifier(t *testing.T) {
	svc := new(MockWebhookService)
	svc.On("Send", mock.Anything, "http://hook", mock.MatchedBy(func(data map[string]any) bool {
		return data["stock_code"] == "BTCUSDT" && data["signal_type"] == "wall" && data["price"] == "61000.5"
	})).Return(nil).Once()

	n := NewWebhookNotifier(svc, "http://hook")
	require.NoError(t, n.Notify(context.Background(), Alert{
		Id:    1,
		Code:  "BTCUSDT",
		Kind:  "wall",
		Price: decimal.RequireFromString("61000.5"),
	}))
	svc.AssertExpectations(t)
}

func TestLLMNotifierPrompt(t *testing.T) {
	prompt := commentaryPrompt(Alert{
		Code:        "BTCUSDT",
		Timeframe:   "5m",
		Kind:        "macd_bull_div",
		Price:       decimal.RequireFromString("61000"),
		Description: "5m MACD bullish divergence",
		EventTime:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	assert.Contains(t, prompt, "BTCUSDT (BTCUSDT)")
	assert.Contains(t, prompt, "macd_bull_div")
	assert.Contains(t, prompt, "2024-03-01 10:00:00")
}
