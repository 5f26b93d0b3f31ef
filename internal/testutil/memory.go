package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lukinkratas/zapis-stavy/internal/model"
	appErr "github.com/lukinkratas/zapis-stavy/internal/pkg/errors"
)

// Memory is an in-process stand-in for the three PostgreSQL relations. It keeps the
// behaviour the services rely on: unique emails, unique meter names per owner,
// owner-scoped lookups, idempotent deletes, cascades and oldest-first ordering.
type Memory struct {
	mu       sync.Mutex
	clock    time.Time
	users    map[string]model.User
	meters   map[string]model.Meter
	readings map[string]model.Reading
}

func NewMemory() *Memory {
	return &Memory{
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:    map[string]model.User{},
		meters:   map[string]model.Meter{},
		readings: map[string]model.Reading{},
	}
}

func (m *Memory) Users() *MemoryUsers       { return &MemoryUsers{m: m} }
func (m *Memory) Meters() *MemoryMeters     { return &MemoryMeters{m: m} }
func (m *Memory) Readings() *MemoryReadings { return &MemoryReadings{m: m} }

func (m *Memory) tick() time.Time {
	m.clock = m.clock.Add(time.Millisecond)
	return m.clock
}

func notFound(table, id string) error {
	return fmt.Errorf("%w: %s %s", appErr.ErrNotFound, table, id)
}

func paginate[T any](items []T, page model.Page, createdAt func(T) time.Time, id func(T) string) []T {
	sort.Slice(items, func(i, j int) bool {
		a, b := createdAt(items[i]), createdAt(items[j])
		if !a.Equal(b) {
			return a.Before(b)
		}
		return id(items[i]) < id(items[j])
	})
	page = page.Normalize()
	if page.Offset >= len(items) {
		return []T{}
	}
	end := page.Offset + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[page.Offset:end]
}

type MemoryUsers struct{ m *Memory }

func (r *MemoryUsers) Create(_ context.Context, email, passwordHash string) (*model.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == email {
			return nil, fmt.Errorf("%w: email %s", appErr.ErrConflict, email)
		}
	}
	u := model.User{ID: uuid.NewString(), CreatedAt: r.m.tick(), Email: email, PasswordHash: passwordHash}
	r.m.users[u.ID] = u
	return &u, nil
}

func (r *MemoryUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, notFound("users", id)
	}
	return &u, nil
}

func (r *MemoryUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, notFound("users", email)
}

func (r *MemoryUsers) Update(_ context.Context, id string, upd model.UserUpdate) (*model.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, notFound("users", id)
	}
	if upd.Email != nil {
		for _, other := range r.m.users {
			if other.ID != id && other.Email == *upd.Email {
				return nil, fmt.Errorf("%w: email %s", appErr.ErrConflict, *upd.Email)
			}
		}
		u.Email = *upd.Email
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	r.m.users[id] = u
	return &u, nil
}

func (r *MemoryUsers) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.users, id)
	for mid, meter := range r.m.meters {
		if meter.UserID == id {
			delete(r.m.meters, mid)
		}
	}
	for rid, reading := range r.m.readings {
		if reading.UserID == id {
			delete(r.m.readings, rid)
		}
	}
	return nil
}

type MemoryMeters struct{ m *Memory }

func (r *MemoryMeters) Create(_ context.Context, in model.MeterCreate) (*model.Meter, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[in.UserID]; !ok {
		return nil, notFound("users", in.UserID)
	}
	for _, meter := range r.m.meters {
		if meter.UserID == in.UserID && meter.Name == in.Name {
			return nil, fmt.Errorf("%w: meter name %s", appErr.ErrConflict, in.Name)
		}
	}
	meter := model.Meter{
		ID:          uuid.NewString(),
		CreatedAt:   r.m.tick(),
		UserID:      in.UserID,
		Name:        in.Name,
		Description: in.Description,
	}
	r.m.meters[meter.ID] = meter
	return &meter, nil
}

func (r *MemoryMeters) FindByIDAndOwner(_ context.Context, id, ownerID string) (*model.Meter, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	meter, ok := r.m.meters[id]
	if !ok || meter.UserID != ownerID {
		return nil, notFound("meters", id)
	}
	return &meter, nil
}

func (r *MemoryMeters) Update(_ context.Context, id, ownerID string, upd model.MeterUpdate) (*model.Meter, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	meter, ok := r.m.meters[id]
	if !ok || meter.UserID != ownerID {
		return nil, notFound("meters", id)
	}
	if upd.Name != nil {
		for _, other := range r.m.meters {
			if other.ID != id && other.UserID == ownerID && other.Name == *upd.Name {
				return nil, fmt.Errorf("%w: meter name %s", appErr.ErrConflict, *upd.Name)
			}
		}
		meter.Name = *upd.Name
	}
	if upd.Description != nil {
		description := *upd.Description
		meter.Description = &description
	}
	r.m.meters[id] = meter
	return &meter, nil
}

func (r *MemoryMeters) Delete(_ context.Context, id, ownerID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	meter, ok := r.m.meters[id]
	if !ok || meter.UserID != ownerID {
		return nil
	}
	delete(r.m.meters, id)
	for rid, reading := range r.m.readings {
		if reading.MeterID == id {
			delete(r.m.readings, rid)
		}
	}
	return nil
}

func (r *MemoryMeters) ListByOwner(_ context.Context, ownerID string, page model.Page) ([]model.Meter, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	items := make([]model.Meter, 0)
	for _, meter := range r.m.meters {
		if meter.UserID == ownerID {
			items = append(items, meter)
		}
	}
	return paginate(items, page, meterCreatedAt, meterID), nil
}

func (r *MemoryMeters) List(_ context.Context, page model.Page) ([]model.Meter, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	items := make([]model.Meter, 0, len(r.m.meters))
	for _, meter := range r.m.meters {
		items = append(items, meter)
	}
	return paginate(items, page, meterCreatedAt, meterID), nil
}

func meterCreatedAt(m model.Meter) time.Time { return m.CreatedAt }
func meterID(m model.Meter) string           { return m.ID }

type MemoryReadings struct{ m *Memory }

func (r *MemoryReadings) Create(_ context.Context, in model.ReadingCreate) (*model.Reading, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.meters[in.MeterID]; !ok {
		return nil, notFound("meters", in.MeterID)
	}
	reading := model.Reading{
		ID:        uuid.NewString(),
		CreatedAt: r.m.tick(),
		MeterID:   in.MeterID,
		UserID:    in.UserID,
		Value:     in.Value,
	}
	r.m.readings[reading.ID] = reading
	return &reading, nil
}

func (r *MemoryReadings) FindByIDAndOwner(_ context.Context, id, ownerID string) (*model.Reading, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	reading, ok := r.m.readings[id]
	if !ok || reading.UserID != ownerID {
		return nil, notFound("readings", id)
	}
	return &reading, nil
}

func (r *MemoryReadings) Update(_ context.Context, id, ownerID string, upd model.ReadingUpdate) (*model.Reading, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	reading, ok := r.m.readings[id]
	if !ok || reading.UserID != ownerID {
		return nil, notFound("readings", id)
	}
	if upd.Value != nil {
		reading.Value = *upd.Value
	}
	r.m.readings[id] = reading
	return &reading, nil
}

func (r *MemoryReadings) Delete(_ context.Context, id, ownerID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if reading, ok := r.m.readings[id]; ok && reading.UserID == ownerID {
		delete(r.m.readings, id)
	}
	return nil
}

func (r *MemoryReadings) ListByMeter(_ context.Context, meterID, ownerID string, page model.Page) ([]model.Reading, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	items := make([]model.Reading, 0)
	for _, reading := range r.m.readings {
		if reading.MeterID == meterID && reading.UserID == ownerID {
			items = append(items, reading)
		}
	}
	return paginate(items, page,
		func(r model.Reading) time.Time { return r.CreatedAt },
		func(r model.Reading) string { return r.ID },
	), nil
}
