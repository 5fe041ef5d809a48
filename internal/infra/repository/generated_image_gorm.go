package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/JamalC77/chaosstickers-backend/internal/domain/model"
	repo "github.com/JamalC77/chaosstickers-backend/internal/repository"
)

type GeneratedImageGormRepository struct {
	db *gorm.DB
}

func NewGeneratedImageGormRepository(db *gorm.DB) *GeneratedImageGormRepository {
	return &GeneratedImageGormRepository{db: db}
}

func (r *GeneratedImageGormRepository) Create(ctx context.Context, image *model.GeneratedImage) error {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return err
	}
	return nil
}

func (r *GeneratedImageGormRepository) FindByID(ctx context.Context, imageID int64) (model.GeneratedImage, error) {
	var g model.GeneratedImage
	err := r.db.WithContext(ctx).Where("id = ?", imageID).First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.GeneratedImage{}, repo.ErrNotFound
	}
	if err != nil {
		return model.GeneratedImage{}, err
	}
	return g, nil
}

// FindByIDs は一括取得。欠けたIDの扱いは呼び出し側に任せる。
func (r *GeneratedImageGormRepository) FindByIDs(ctx context.Context, imageIDs []int64) ([]model.GeneratedImage, error) {
	if len(imageIDs) == 0 {
		return []model.GeneratedImage{}, nil
	}
	var images []model.GeneratedImage
	err := r.db.WithContext(ctx).Where("id IN ?", imageIDs).Find(&images).Error
	if err != nil {
		return []model.GeneratedImage{}, err
	}
	return images, nil
}
