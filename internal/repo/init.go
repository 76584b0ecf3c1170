package repo

import (
	"errors"

	"github.com/KNICEX/market-monitor/internal/entity"
	"gorm.io/gorm"
)

// ErrDuplicate 违反唯一索引, 需要 gorm.Config.TranslateError
var ErrDuplicate = errors.New("repo: duplicate record")

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(&entity.WatchedSymbol{}, &entity.Signal{})
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}
