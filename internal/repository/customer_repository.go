package repository

import (
	"context"

	"github.com/JamalC77/chaosstickers-backend/internal/domain/model"
)

// 顧客の保存・取得を約束
type CustomerRepository interface {
	// Upsert はemailをキーにfind-or-createを1回のatomicな操作で行う。
	// 既存なら表示名だけ更新する。同時配送でも顧客が二重に作られないこと。
	Upsert(ctx context.Context, email string, name string) (model.Customer, error)
	FindByID(ctx context.Context, customerID int64) (model.Customer, error)
}
