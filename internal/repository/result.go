package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/rocketscienceinc/chatgames-backend/internal/entity"
)

const defaultRecentLimit = 5

// ResultRepository - finished rounds kept in Postgres. A nil repository records nothing.
type ResultRepository struct {
	db *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	if db == nil {
		return nil
	}

	return &ResultRepository{db: db}
}

func (that *ResultRepository) Migrate(ctx context.Context) error {
	if that == nil {
		return nil
	}

	if err := that.db.WithContext(ctx).AutoMigrate(&entity.GameRecord{}); err != nil {
		return fmt.Errorf("failed to migrate game records: %w", err)
	}

	return nil
}

func (that *ResultRepository) Record(ctx context.Context, record *entity.GameRecord) error {
	if that == nil {
		return nil
	}

	if err := that.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create game record: %w", err)
	}

	return nil
}

// Recent - newest records of the group first.
func (that *ResultRepository) Recent(ctx context.Context, groupID string, limit int) ([]entity.GameRecord, error) {
	if that == nil {
		return nil, nil
	}

	if limit <= 0 {
		limit = defaultRecentLimit
	}

	var records []entity.GameRecord
	err := that.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at desc").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find game records: %w", err)
	}

	return records, nil
}
