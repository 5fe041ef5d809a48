package repository

import (
	"context"

	"github.com/JamalC77/chaosstickers-backend/internal/domain/model"
)

// 生成画像の取得を約束。フルフィルメント側は読み取りのみで、
// Createは生成パイプラインが使う。
type GeneratedImageRepository interface {
	Create(ctx context.Context, image *model.GeneratedImage) error
	FindByID(ctx context.Context, imageID int64) (model.GeneratedImage, error)
	// FindByIDs はID群を一括取得する。見つからないIDは結果に含まれないだけで
	// エラーにはしない（欠落の判定は呼び出し側）。
	FindByIDs(ctx context.Context, imageIDs []int64) ([]model.GeneratedImage, error)
}
