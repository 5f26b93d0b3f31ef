package service

import (
	"context"
	"fmt"

	"github.com/lukinkratas/zapis-stavy/internal/model"
	appErr "github.com/lukinkratas/zapis-stavy/internal/pkg/errors"
)

type ReadingService struct {
	readings ReadingStore
	meters   MeterStore
}

func NewReadingService(readings ReadingStore, meters MeterStore) *ReadingService {
	return &ReadingService{readings: readings, meters: meters}
}

// Create records a value against a meter the caller owns; a foreign or missing meter
// is reported as not found.
func (s *ReadingService) Create(ctx context.Context, userID, meterID string, value *float64) (*model.Reading, error) {
	if value == nil {
		return nil, fmt.Errorf("%w: value required", appErr.ErrInvalid)
	}
	if _, err := s.meters.FindByIDAndOwner(ctx, meterID, userID); err != nil {
		return nil, err
	}
	return s.readings.Create(ctx, model.ReadingCreate{
		MeterID: meterID,
		UserID:  userID,
		Value:   *value,
	})
}

func (s *ReadingService) ListByMeter(ctx context.Context, userID, meterID string, page model.Page) ([]model.Reading, error) {
	if _, err := s.meters.FindByIDAndOwner(ctx, meterID, userID); err != nil {
		return nil, err
	}
	return s.readings.ListByMeter(ctx, meterID, userID, page)
}

func (s *ReadingService) Update(ctx context.Context, userID, id string, value *float64) (*model.Reading, error) {
	return s.readings.Update(ctx, id, userID, model.ReadingUpdate{Value: value})
}

func (s *ReadingService) Delete(ctx context.Context, userID, id string) error {
	return s.readings.Delete(ctx, id, userID)
}
