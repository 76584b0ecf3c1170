package entity

import (
	"time"
)

// WatchedSymbol 监控列表中的标的
type WatchedSymbol struct {
	Id        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Code      string    `gorm:"uniqueIndex;size:20;not null" json:"code"`
	Name      string    `gorm:"size:50" json:"name"`
	CreatedAt time.Time `gorm:"index" json:"added_at"`
}

func (WatchedSymbol) TableName() string {
	return "monitored_symbols"
}
