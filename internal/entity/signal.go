package entity

import (
	"time"
)

// Signal 信号历史. K线信号以 (code, timeframe, kind, bar_time) 唯一;
// tick 信号的 bar_time 为检测时刻, 按 created_at 做一分钟窗口去重
type Signal struct {
	Id          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Code        string    `gorm:"uniqueIndex:signal_bar_key,priority:1;size:20;not null" json:"code"`
	Timeframe   string    `gorm:"uniqueIndex:signal_bar_key,priority:2;size:10" json:"timeframe"`
	Kind        string    `gorm:"uniqueIndex:signal_bar_key,priority:3;size:50" json:"kind"`
	BarTime     time.Time `gorm:"uniqueIndex:signal_bar_key,priority:4" json:"bar_time"`
	Price       string    `json:"price"`
	Description string    `json:"description"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (Signal) TableName() string {
	return "signal_history"
}
