package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/performance-bonus/internal/bonus"
	allocationDatamodel "github.com/frahmantamala/performance-bonus/internal/core/datamodel/allocation"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// DraftStore keeps each draft as one JSON document. The version check reads
// then writes without WATCH, so it narrows the stale-write window rather
// than closing it.
type DraftStore struct {
	client goredis.Cmdable
	prefix string
}

func NewDraftStore(client goredis.Cmdable, prefix string) *DraftStore {
	if prefix == "" {
		prefix = "bonus"
	}
	return &DraftStore{client: client, prefix: prefix}
}

type document struct {
	BusinessID   string                               `json:"business_id"`
	DepartmentID string                               `json:"department_id"`
	Year         int                                  `json:"year"`
	TotalBudget  decimal.Decimal                      `json:"total_budget"`
	Allocations  map[string]allocationDatamodel.Entry `json:"allocations"`
	Status       string                               `json:"status"`
	Version      int64                                `json:"version"`
	LastSaved    time.Time                            `json:"last_saved"`
}

func (s *DraftStore) key(businessID, draftKey string) string {
	return fmt.Sprintf("%s:allocation:%s:%s", s.prefix, businessID, draftKey)
}

func (s *DraftStore) Get(ctx context.Context, businessID, departmentID string, year int) (*bonus.Draft, error) {
	raw, err := s.client.Get(ctx, s.key(businessID, bonus.Key(departmentID, year))).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decode(raw)
}

func (s *DraftStore) Put(ctx context.Context, d *bonus.Draft) error {
	stored, err := s.Get(ctx, d.BusinessID, d.DepartmentID, d.Year)
	if err != nil {
		return err
	}

	next := int64(1)
	switch {
	case stored == nil && d.Version != 0:
		return bonus.ErrStaleDraft
	case stored != nil:
		if d.Version != 0 && d.Version != stored.Version {
			return bonus.ErrStaleDraft
		}
		next = stored.Version + 1
	}

	payload, err := encode(d, next)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(d.BusinessID, d.Key()), payload, 0).Err(); err != nil {
		return err
	}

	d.Version = next
	return nil
}

func encode(d *bonus.Draft, version int64) ([]byte, error) {
	row := bonus.ToDataModel(d)
	return json.Marshal(document{
		BusinessID:   row.BusinessID,
		DepartmentID: row.DepartmentID,
		Year:         row.Year,
		TotalBudget:  row.TotalBudget,
		Allocations:  row.Allocations,
		Status:       row.Status,
		Version:      version,
		LastSaved:    row.LastSaved.UTC(),
	})
}

func decode(raw []byte) (*bonus.Draft, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode allocation draft: %w", err)
	}
	return bonus.FromDataModel(&allocationDatamodel.Draft{
		BusinessID:   doc.BusinessID,
		Key:          bonus.Key(doc.DepartmentID, doc.Year),
		DepartmentID: doc.DepartmentID,
		Year:         doc.Year,
		TotalBudget:  doc.TotalBudget,
		Allocations:  doc.Allocations,
		Status:       doc.Status,
		Version:      doc.Version,
		LastSaved:    doc.LastSaved,
	}), nil
}
