package service

import (
	"context"

	"github.com/lukinkratas/zapis-stavy/internal/model"
)

// UserStore is satisfied by *repo.UserRepo.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error)
	Delete(ctx context.Context, id string) error
}

// MeterStore is satisfied by *repo.MeterRepo.
type MeterStore interface {
	Create(ctx context.Context, in model.MeterCreate) (*model.Meter, error)
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Meter, error)
	Update(ctx context.Context, id, ownerID string, upd model.MeterUpdate) (*model.Meter, error)
	Delete(ctx context.Context, id, ownerID string) error
	ListByOwner(ctx context.Context, ownerID string, page model.Page) ([]model.Meter, error)
	List(ctx context.Context, page model.Page) ([]model.Meter, error)
}

// ReadingStore is satisfied by *repo.ReadingRepo.
type ReadingStore interface {
	Create(ctx context.Context, in model.ReadingCreate) (*model.Reading, error)
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Reading, error)
	Update(ctx context.Context, id, ownerID string, upd model.ReadingUpdate) (*model.Reading, error)
	Delete(ctx context.Context, id, ownerID string) error
	ListByMeter(ctx context.Context, meterID, ownerID string, page model.Page) ([]model.Reading, error)
}
