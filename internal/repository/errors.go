package repository

import "errors"

var (
	// 対象の行が存在しない
	ErrNotFound = errors.New("not found")
	// 一意制約違反（emailの重複など）
	ErrConflict = errors.New("conflict")
)
