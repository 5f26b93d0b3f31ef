package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/lukinkratas/zapis-stavy/internal/model"
	appErr "github.com/lukinkratas/zapis-stavy/internal/pkg/errors"
)

type MeterInput struct {
	Name        *string
	Description *string
}

type MeterService struct {
	meters   MeterStore
	readings ReadingStore
}

func NewMeterService(meters MeterStore, readings ReadingStore) *MeterService {
	return &MeterService{meters: meters, readings: readings}
}

func (s *MeterService) Create(ctx context.Context, userID string, in MeterInput) (*model.Meter, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, fmt.Errorf("%w: name required", appErr.ErrInvalid)
	}
	return s.meters.Create(ctx, model.MeterCreate{
		UserID:      userID,
		Name:        strings.TrimSpace(*in.Name),
		Description: in.Description,
	})
}

// Get returns the meter together with one page of its readings, oldest first.
func (s *MeterService) Get(ctx context.Context, userID, id string, page model.Page) (*model.MeterWithReadings, error) {
	meter, err := s.meters.FindByIDAndOwner(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	readings, err := s.readings.ListByMeter(ctx, id, userID, page)
	if err != nil {
		return nil, err
	}
	return &model.MeterWithReadings{Meter: meter, Readings: readings}, nil
}

func (s *MeterService) List(ctx context.Context, userID string, page model.Page) ([]model.Meter, error) {
	return s.meters.ListByOwner(ctx, userID, page)
}

// ListAll is not owner-scoped and is reachable from the CLI only.
func (s *MeterService) ListAll(ctx context.Context, page model.Page) ([]model.Meter, error) {
	return s.meters.List(ctx, page)
}

func (s *MeterService) Update(ctx context.Context, userID, id string, in MeterInput) (*model.Meter, error) {
	upd := model.MeterUpdate{Description: in.Description}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", appErr.ErrInvalid)
		}
		upd.Name = &name
	}
	return s.meters.Update(ctx, id, userID, upd)
}

func (s *MeterService) Delete(ctx context.Context, userID, id string) error {
	return s.meters.Delete(ctx, id, userID)
}
