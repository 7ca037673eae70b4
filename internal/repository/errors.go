package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// 一意制約（番号の重複など）
	ErrDuplicate = errors.New("duplicate")
)
