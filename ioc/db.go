package ioc

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/KNICEX/market-monitor/internal/repo"
	"github.com/spf13/viper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB() *gorm.DB {
	type Config struct {
		DSN string `mapstructure:"dsn"`
	}

	cfg := Config{DSN: "./data/monitor.db"}
	if err := viper.UnmarshalKey("db", &cfg); err != nil {
		panic(err)
	}

	if !strings.HasPrefix(cfg.DSN, "file:") && cfg.DSN != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DSN), 0o755); err != nil {
			panic(err)
		}
	}
	db, err := gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{
		// 唯一索引冲突转换为 gorm.ErrDuplicatedKey
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		panic(err)
	}
	if err := repo.InitTables(db); err != nil {
		panic(err)
	}
	return db
}
