package repo

import (
	"context"

	"github.com/lukinkratas/zapis-stavy/internal/model"
)

var readingSchema = Schema{
	Table:       "readings",
	Columns:     []string{"id", "created_at", "meter_id", "user_id", "value"},
	Insertable:  []string{"meter_id", "user_id", "value"},
	Updatable:   []string{"value"},
	OwnerColumn: "user_id",
	ForeignKeys: []string{"meter_id"},
}

type ReadingRepo struct {
	store *Store[model.Reading]
}

func NewReadingRepo(db *DB) *ReadingRepo {
	return &ReadingRepo{store: NewStore[model.Reading](db, readingSchema)}
}

func (r *ReadingRepo) Create(ctx context.Context, in model.ReadingCreate) (*model.Reading, error) {
	return r.store.Insert(ctx, Fields{
		"meter_id": in.MeterID,
		"user_id":  in.UserID,
		"value":    in.Value,
	})
}

func (r *ReadingRepo) FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Reading, error) {
	return r.store.SelectByID(ctx, id, ownerID)
}

func (r *ReadingRepo) Update(ctx context.Context, id, ownerID string, upd model.ReadingUpdate) (*model.Reading, error) {
	fields := Fields{}
	if upd.Value != nil {
		fields["value"] = *upd.Value
	}
	return r.store.Update(ctx, id, ownerID, fields)
}

func (r *ReadingRepo) Delete(ctx context.Context, id, ownerID string) error {
	return r.store.Delete(ctx, id, ownerID)
}

func (r *ReadingRepo) ListByMeter(ctx context.Context, meterID, ownerID string, page model.Page) ([]model.Reading, error) {
	return r.store.SelectByForeignKey(ctx, "meter_id", meterID, ownerID, page)
}
