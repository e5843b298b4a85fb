package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// DBSink upserts cart documents into cart_snapshots.
type DBSink struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDBSink(db *gorm.DB) (*DBSink, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	return &DBSink{db: db, now: time.Now}, nil
}

func (d *DBSink) Load(ctx context.Context, key string) (State, bool, error) {
	var row models.CartSnapshot
	err := d.db.WithContext(ctx).Where("storage_key = ?", key).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return State{Items: []LineItem{}}, false, nil
		}
		return State{}, false, fmt.Errorf("load cart %s: %w", key, err)
	}
	state, err := Decode([]byte(row.Payload))
	if err != nil {
		return State{}, false, err
	}
	return state, true, nil
}

func (d *DBSink) Save(ctx context.Context, key string, state State) error {
	payload, err := Encode(state)
	if err != nil {
		return err
	}
	row := models.CartSnapshot{
		StorageKey: key,
		Payload:    string(payload),
		UpdatedAt:  d.now().UTC(),
	}
	err = d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save cart %s: %w", key, err)
	}
	return nil
}

// PurgeIdle deletes snapshots not written since cutoff and reports how many were removed.
func (d *DBSink) PurgeIdle(ctx context.Context, cutoff time.Time) (int64, error) {
	res := d.db.WithContext(ctx).Where("updated_at < ?", cutoff.UTC()).Delete(&models.CartSnapshot{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge idle carts: %w", res.Error)
	}
	return res.RowsAffected, nil
}
