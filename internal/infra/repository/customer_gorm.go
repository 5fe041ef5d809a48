package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JamalC77/chaosstickers-backend/internal/domain/model"
	repo "github.com/JamalC77/chaosstickers-backend/internal/repository"
)

type CustomerGormRepository struct {
	db *gorm.DB
}

func NewCustomerGormRepository(db *gorm.DB) *CustomerGormRepository {
	return &CustomerGormRepository{db: db}
}

// Upsert はemailのunique制約を仲裁役にしたatomicなfind-or-create。
// check-then-actにするとwebhookの同時配送で顧客が二重に出来るのでON CONFLICTで書く。
func (r *CustomerGormRepository) Upsert(ctx context.Context, email string, name string) (model.Customer, error) {
	c := model.Customer{Email: email, Name: name}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"name": name}),
		}).
		Create(&c).Error
	if err != nil {
		return model.Customer{}, err
	}

	// ON CONFLICT DO UPDATE経由だとIDが返らないドライバ構成があるので読み直す
	if c.ID == 0 {
		if err := r.db.WithContext(ctx).Where("email = ?", email).First(&c).Error; err != nil {
			return model.Customer{}, err
		}
	}
	return c, nil
}

func (r *CustomerGormRepository) FindByID(ctx context.Context, customerID int64) (model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).Where("id = ?", customerID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Customer{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Customer{}, err
	}
	return c, nil
}
