package repo

import (
	"context"

	"github.com/lukinkratas/zapis-stavy/internal/model"
)

var userSchema = Schema{
	Table:      "users",
	Columns:    []string{"id", "created_at", "email", "password"},
	Insertable: []string{"email", "password"},
	Updatable:  []string{"email", "password"},
	Lookups:    []string{"email"},
}

// UserRepo is not owner-scoped; callers pass the account id they are allowed to touch.
type UserRepo struct {
	store *Store[model.User]
}

func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{store: NewStore[model.User](db, userSchema)}
}

func (r *UserRepo) Create(ctx context.Context, email, passwordHash string) (*model.User, error) {
	return r.store.Insert(ctx, Fields{
		"email":    email,
		"password": passwordHash,
	})
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.store.SelectByID(ctx, id, "")
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.store.SelectOneBy(ctx, "email", email)
}

func (r *UserRepo) Update(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error) {
	fields := Fields{}
	if upd.Email != nil {
		fields["email"] = *upd.Email
	}
	if upd.PasswordHash != nil {
		fields["password"] = *upd.PasswordHash
	}
	return r.store.Update(ctx, id, "", fields)
}

// Delete removes the account; meters and readings go with it through ON DELETE CASCADE.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, id, "")
}
