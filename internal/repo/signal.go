package repo

import (
	"context"
	"time"

	"github.com/KNICEX/market-monitor/internal/entity"
	"gorm.io/gorm"
)

type SignalRepo interface {
	Create(ctx context.Context, signal entity.Signal) (int64, error)
	// ExistsBar K线信号按K线时间精确匹配
	ExistsBar(ctx context.Context, code, timeframe, kind string, barTime time.Time) (bool, error)
	// ExistsTickSince tick 信号在 since 之后是否已记录
	ExistsTickSince(ctx context.Context, code, kind string, since time.Time) (bool, error)
	FindRecent(ctx context.Context, limit int) ([]entity.Signal, error)
}

const tickTimeframe = "tick"

type signalRepo struct {
	db *gorm.DB
}

func NewSignalRepo(db *gorm.DB) SignalRepo {
	return &signalRepo{
		db: db,
	}
}

func (r *signalRepo) Create(ctx context.Context, signal entity.Signal) (int64, error) {
	if signal.CreatedAt.IsZero() {
		signal.CreatedAt = time.Now()
	}
	// 统一存 UTC, sqlite 中时间按字符串比较
	signal.BarTime = signal.BarTime.UTC()
	signal.CreatedAt = signal.CreatedAt.UTC()
	err := r.db.WithContext(ctx).Create(&signal).Error
	if err != nil {
		return 0, translate(err)
	}
	return signal.Id, nil
}

func (r *signalRepo) ExistsBar(ctx context.Context, code, timeframe, kind string, barTime time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Signal{}).
		Where("code = ? AND timeframe = ? AND kind = ? AND bar_time = ?", code, timeframe, kind, barTime.UTC()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *signalRepo) ExistsTickSince(ctx context.Context, code, kind string, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Signal{}).
		Where("code = ? AND timeframe = ? AND kind = ? AND created_at > ?", code, tickTimeframe, kind, since.UTC()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *signalRepo) FindRecent(ctx context.Context, limit int) ([]entity.Signal, error) {
	var signals []entity.Signal
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&signals).Error
	if err != nil {
		return nil, err
	}
	return signals, nil
}
