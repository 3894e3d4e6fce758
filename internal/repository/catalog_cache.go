package repository

import (
	"context"
	"errors"
)

var ErrCacheMiss = errors.New("cache miss")

// カタログ（カテゴリ・商品一覧）の読み取りキャッシュ。
// 値はJSONで保存する。キーは"products", "product:1"のような形。
type CatalogCache interface {
	// 無ければErrCacheMiss
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, v any) error
	// 在庫・価格を含むエントリ（商品一覧/商品/カテゴリ詳細）を全部捨てる
	InvalidateProducts(ctx context.Context) error
}
