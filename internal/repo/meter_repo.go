package repo

import (
	"context"

	"github.com/lukinkratas/zapis-stavy/internal/model"
)

var meterSchema = Schema{
	Table:       "meters",
	Columns:     []string{"id", "created_at", "user_id", "name", "description"},
	Insertable:  []string{"user_id", "name", "description"},
	Updatable:   []string{"name", "description"},
	OwnerColumn: "user_id",
	ForeignKeys: []string{"user_id"},
}

type MeterRepo struct {
	store *Store[model.Meter]
}

func NewMeterRepo(db *DB) *MeterRepo {
	return &MeterRepo{store: NewStore[model.Meter](db, meterSchema)}
}

func (r *MeterRepo) Create(ctx context.Context, in model.MeterCreate) (*model.Meter, error) {
	fields := Fields{
		"user_id": in.UserID,
		"name":    in.Name,
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	return r.store.Insert(ctx, fields)
}

func (r *MeterRepo) FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Meter, error) {
	return r.store.SelectByID(ctx, id, ownerID)
}

func (r *MeterRepo) Update(ctx context.Context, id, ownerID string, upd model.MeterUpdate) (*model.Meter, error) {
	fields := Fields{}
	if upd.Name != nil {
		fields["name"] = *upd.Name
	}
	if upd.Description != nil {
		fields["description"] = *upd.Description
	}
	return r.store.Update(ctx, id, ownerID, fields)
}

func (r *MeterRepo) Delete(ctx context.Context, id, ownerID string) error {
	return r.store.Delete(ctx, id, ownerID)
}

func (r *MeterRepo) ListByOwner(ctx context.Context, ownerID string, page model.Page) ([]model.Meter, error) {
	return r.store.SelectByForeignKey(ctx, "user_id", ownerID, ownerID, page)
}

// List pages over every meter regardless of owner; it backs operator tooling only.
func (r *MeterRepo) List(ctx context.Context, page model.Page) ([]model.Meter, error) {
	return r.store.SelectAll(ctx, page)
}
