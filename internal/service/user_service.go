package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/lukinkratas/zapis-stavy/internal/model"
	appErr "github.com/lukinkratas/zapis-stavy/internal/pkg/errors"
)

type UserInput struct {
	Email    *string
	Password *string
}

// UserService only ever touches the caller's own account. Any other id is treated
// as absent.
type UserService struct {
	users UserStore
	auth  *AuthService
}

func NewUserService(users UserStore, auth *AuthService) *UserService {
	return &UserService{users: users, auth: auth}
}

func (s *UserService) Get(ctx context.Context, caller *model.User, id string) (*model.User, error) {
	if caller.ID != id {
		return nil, fmt.Errorf("%w: user %s", appErr.ErrNotFound, id)
	}
	return s.users.GetByID(ctx, id)
}

func (s *UserService) Update(ctx context.Context, caller *model.User, id string, in UserInput) (*model.User, error) {
	if caller.ID != id {
		return nil, fmt.Errorf("%w: user %s", appErr.ErrNotFound, id)
	}
	upd := model.UserUpdate{}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email == "" {
			return nil, fmt.Errorf("%w: email must not be empty", appErr.ErrInvalid)
		}
		upd.Email = &email
	}
	if in.Password != nil {
		if *in.Password == "" {
			return nil, fmt.Errorf("%w: password must not be empty", appErr.ErrInvalid)
		}
		hash, err := s.auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		upd.PasswordHash = &hash
	}
	user, err := s.users.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.auth.Evict(user.ID)
	return user, nil
}

// Delete removes the caller's account and everything it owns. Deleting any other id
// is a no-op.
func (s *UserService) Delete(ctx context.Context, caller *model.User, id string) error {
	if caller.ID != id {
		return nil
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.auth.Evict(id)
	logutil.GetLogger(ctx).Info("user deleted", zap.String("user_id", id))
	return nil
}
