package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/performance-bonus/internal/bonus"
	allocationDatamodel "github.com/frahmantamala/performance-bonus/internal/core/datamodel/allocation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DraftStore struct {
	db *gorm.DB
}

func NewDraftStore(db *gorm.DB) bonus.Store {
	return &DraftStore{db: db}
}

func (s *DraftStore) Get(ctx context.Context, businessID, departmentID string, year int) (*bonus.Draft, error) {
	var row allocationDatamodel.Draft
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND draft_key = ?", businessID, bonus.Key(departmentID, year)).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return bonus.FromDataModel(&row), nil
}

// Put inserts the first version of a draft or updates the row guarded by the
// version it was read at, so a concurrent writer turns into ErrStaleDraft.
func (s *DraftStore) Put(ctx context.Context, d *bonus.Draft) error {
	row := bonus.ToDataModel(d)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing allocationDatamodel.Draft
		err := tx.Where("business_id = ? AND draft_key = ?", row.BusinessID, row.Key).Take(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if d.Version != 0 {
				return bonus.ErrStaleDraft
			}
			row.Version = 1
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return bonus.ErrStaleDraft
			}
			return nil

		case err != nil:
			return err
		}

		if d.Version != 0 && d.Version != existing.Version {
			return bonus.ErrStaleDraft
		}
		row.Version = existing.Version + 1
		res := tx.Model(row).
			Where("version = ?", existing.Version).
			Select("*").
			Updates(row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return bonus.ErrStaleDraft
		}
		return nil
	})
	if err != nil {
		return err
	}

	d.Version = row.Version
	return nil
}
