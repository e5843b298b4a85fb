package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Base is embedded by the domain repositories.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection scoped to ctx. A nil ctx returns the bare connection.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// First loads the first T matching where. A miss is gorm.ErrRecordNotFound.
func First[T any](tx *gorm.DB, where string, args ...any) (*T, error) {
	var row T
	if err := tx.Where(where, args...).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// UpdateColumns writes columns on the T rows matching where without hooks. It returns
// gorm.ErrRecordNotFound when nothing matched.
func UpdateColumns[T any](tx *gorm.DB, columns map[string]any, where string, args ...any) error {
	if len(columns) == 0 {
		return nil
	}
	res := tx.Model(new(T)).Where(where, args...).UpdateColumns(columns)
	switch {
	case res.Error != nil:
		return res.Error
	case res.RowsAffected == 0:
		return gorm.ErrRecordNotFound
	}
	return nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
