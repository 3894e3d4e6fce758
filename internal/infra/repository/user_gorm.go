package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userGormRepository struct {
	db *gorm.DB
}

// DI
// main.goでこれをnewしてusecaseに注入します。
func NewUserGormRepository(db *gorm.DB) repo.UserRepository {
	return &userGormRepository{db: db}
}

// Create はユーザーを新規作成
func (r *userGormRepository) Create(ctx context.Context, user *model.User) error {
	return translateError(r.db.WithContext(ctx).Create(user).Error)
}

// IDでユーザーを1件取得
func (r *userGormRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translateError(err)
	}
	return &u, nil
}

// emailでユーザーを1件取得
func (r *userGormRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translateError(err)
	}
	return &u, nil
}

// パスワード更新とtoken_version+1を1文で行う
func (r *userGormRepository) ResetPassword(ctx context.Context, userID int64, passwordHash string) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"password_hash": passwordHash,
			"token_version": gorm.Expr("token_version + ?", 1),
		})
	if res.Error != nil {
		return res.Error
	}
	// 0件更新は「対象がない」
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// emailが無ければ作成、あれば名前・パスワード・ロールを上書きしてtoken_version+1。
// 注文や在庫履歴が紐づくので行は消さない。
func (r *userGormRepository) UpsertByEmail(ctx context.Context, user *model.User) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "email"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"name":          gorm.Expr("EXCLUDED.name"),
				"password_hash": gorm.Expr("EXCLUDED.password_hash"),
				"role":          gorm.Expr("EXCLUDED.role"),
				"token_version": gorm.Expr("users.token_version + 1"),
				"updated_at":    gorm.Expr("EXCLUDED.updated_at"),
			}),
		}).
		Create(user).Error
	return translateError(err)
}
