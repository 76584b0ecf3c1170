package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/KNICEX/market-monitor/internal/entity"
	"github.com/KNICEX/market-monitor/internal/repo"
	"github.com/KNICEX/market-monitor/internal/service/breadth"
	"github.com/KNICEX/market-monitor/internal/service/marketdata"
	"github.com/KNICEX/market-monitor/internal/service/monitor"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const recentSignalLimit = 100

// Monitor 扫描调度器的控制面
type Monitor interface {
	Start(ctx context.Context) bool
	Stop()
	Status() monitor.Status
	UpdateInterval(seconds int) error
}

type BreadthSource interface {
	Stats() breadth.Stats
}

type Handler struct {
	// ctx 后台任务的生命周期, 不能用请求的 context 启动扫描
	ctx       context.Context
	monitor   Monitor
	breadth   BreadthSource
	watchlist repo.WatchlistRepo
	signals   repo.SignalRepo
	provider  marketdata.Provider
}

func NewHandler(ctx context.Context, m Monitor, b BreadthSource, watchlist repo.WatchlistRepo,
	signals repo.SignalRepo, provider marketdata.Provider) *Handler {
	return &Handler{
		ctx:       ctx,
		monitor:   m,
		breadth:   b,
		watchlist: watchlist,
		signals:   signals,
		provider:  provider,
	}
}

func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.monitor.Status())
}

func (h *Handler) Start(c *gin.Context) {
	started := h.monitor.Start(h.ctx)
	c.JSON(http.StatusOK, gin.H{"started": started, "status": h.monitor.Status()})
}

func (h *Handler) Stop(c *gin.Context) {
	h.monitor.Stop()
	c.JSON(http.StatusOK, gin.H{"status": h.monitor.Status()})
}

func (h *Handler) UpdateInterval(c *gin.Context) {
	var req struct {
		Interval int `json:"interval" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.monitor.UpdateInterval(req.Interval); err != nil {
		slog.Error("failed to persist interval", "interval", req.Interval, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "interval applied but not saved"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"interval": req.Interval})
}

func (h *Handler) Breadth(c *gin.Context) {
	c.JSON(http.StatusOK, h.breadth.Stats())
}

type stockResp struct {
	Code      string           `json:"code"`
	Name      string           `json:"name"`
	AddedAt   time.Time        `json:"added_at"`
	Price     *decimal.Decimal `json:"price"`
	ChangePct *decimal.Decimal `json:"change_pct"`
}

// ListStocks 监控列表附带实时行情, 行情失败时只返回列表
func (h *Handler) ListStocks(c *gin.Context) {
	ctx := c.Request.Context()
	symbols, err := h.watchlist.FindAll(ctx)
	if err != nil {
		slog.Error("failed to list watch-list", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	quotes := map[string]marketdata.Quote{}
	if len(symbols) > 0 {
		codes := lo.Map(symbols, func(s entity.WatchedSymbol, _ int) string { return s.Code })
		if q, err := h.provider.Quotes(ctx, codes); err != nil {
			slog.Warn("failed to get quotes", "error", err)
		} else {
			quotes = q
		}
	}
	resp := lo.Map(symbols, func(s entity.WatchedSymbol, _ int) stockResp {
		r := stockResp{Code: s.Code, Name: s.Name, AddedAt: s.CreatedAt}
		if q, ok := quotes[s.Code]; ok {
			r.Price = &q.Price
			r.ChangePct = &q.ChangePct
		}
		return r
	})
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) AddStock(c *gin.Context) {
	var req struct {
		Query string `json:"query" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	inst, err := h.provider.Resolve(ctx, strings.TrimSpace(req.Query))
	if errors.Is(err, marketdata.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "symbol not found"})
		return
	}
	if err != nil {
		slog.Error("failed to resolve symbol", "query", req.Query, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "resolve failed"})
		return
	}
	err = h.watchlist.Create(ctx, entity.WatchedSymbol{Code: inst.Code, Name: inst.Name})
	if errors.Is(err, repo.ErrDuplicate) {
		c.JSON(http.StatusConflict, gin.H{"error": "already watched", "code": inst.Code})
		return
	}
	if err != nil {
		slog.Error("failed to add symbol", "symbol", inst.Code, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	slog.Info("symbol watched", "symbol", inst.Code, "name", inst.Name)
	c.JSON(http.StatusCreated, gin.H{"code": inst.Code, "name": inst.Name})
}

func (h *Handler) DeleteStock(c *gin.Context) {
	code := c.Param("code")
	if err := h.watchlist.Delete(c.Request.Context(), code); err != nil {
		slog.Error("failed to delete symbol", "symbol", code, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	slog.Info("symbol unwatched", "symbol", code)
	c.JSON(http.StatusOK, gin.H{"code": code})
}

// RecentSignals 最近的信号历史, 名称取自当前监控列表
func (h *Handler) RecentSignals(c *gin.Context) {
	ctx := c.Request.Context()
	rows, err := h.signals.FindRecent(ctx, recentSignalLimit)
	if err != nil {
		slog.Error("failed to list signals", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	names := make(map[string]string)
	for _, code := range lo.Uniq(lo.Map(rows, func(s entity.Signal, _ int) string { return s.Code })) {
		name, err := h.watchlist.DisplayName(ctx, code)
		if err != nil {
			slog.Warn("failed to lookup name", "symbol", code, "error", err)
			continue
		}
		names[code] = name
	}
	resp := lo.Map(rows, func(s entity.Signal, _ int) monitor.Alert {
		price, err := decimal.NewFromString(s.Price)
		if err != nil {
			price = decimal.Zero
		}
		return monitor.Alert{
			Id:          s.Id,
			Code:        s.Code,
			Name:        names[s.Code],
			Timeframe:   s.Timeframe,
			Kind:        s.Kind,
			Price:       price,
			Description: s.Description,
			EventTime:   s.BarTime,
			Timestamp:   s.CreatedAt,
		}
	})
	c.JSON(http.StatusOK, resp)
}
