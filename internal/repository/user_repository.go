package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成。emailが重複していたらErrConflict
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。無ければErrNotFound
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	//メールからユーザーを一件取得する。無ければErrNotFound
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	//パスワードを差し替えてtoken_versionを+1（発行済みトークンを無効化）
	ResetPassword(ctx context.Context, userID int64, passwordHash string) error
	//同じemailがあれば上書き、無ければ作成（seed用）
	UpsertByEmail(ctx context.Context, user *model.User) error
}
