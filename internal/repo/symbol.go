package repo

import (
	"context"
	"errors"

	"github.com/KNICEX/market-monitor/internal/entity"
	"gorm.io/gorm"
)

type WatchlistRepo interface {
	Create(ctx context.Context, symbol entity.WatchedSymbol) error
	Delete(ctx context.Context, code string) error
	FindAll(ctx context.Context) ([]entity.WatchedSymbol, error)
	Codes(ctx context.Context) ([]string, error)
	// DisplayName returns "" for codes not in the watch-list.
	DisplayName(ctx context.Context, code string) (string, error)
}

type watchlistRepo struct {
	db *gorm.DB
}

func NewWatchlistRepo(db *gorm.DB) WatchlistRepo {
	return &watchlistRepo{
		db: db,
	}
}

func (repo *watchlistRepo) Create(ctx context.Context, symbol entity.WatchedSymbol) error {
	return translate(repo.db.WithContext(ctx).Create(&symbol).Error)
}

func (repo *watchlistRepo) Delete(ctx context.Context, code string) error {
	return repo.db.WithContext(ctx).Where("code = ?", code).Delete(&entity.WatchedSymbol{}).Error
}

func (repo *watchlistRepo) FindAll(ctx context.Context) ([]entity.WatchedSymbol, error) {
	var symbols []entity.WatchedSymbol
	err := repo.db.WithContext(ctx).Order("created_at DESC").Find(&symbols).Error
	if err != nil {
		return nil, err
	}
	return symbols, nil
}

func (repo *watchlistRepo) Codes(ctx context.Context) ([]string, error) {
	var codes []string
	err := repo.db.WithContext(ctx).Model(&entity.WatchedSymbol{}).Order("id").Pluck("code", &codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

func (repo *watchlistRepo) DisplayName(ctx context.Context, code string) (string, error) {
	var symbol entity.WatchedSymbol
	err := repo.db.WithContext(ctx).Where("code = ?", code).First(&symbol).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return symbol.Name, nil
}
