package model

import "time"

type Reading struct {
	ID        string    `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	MeterID   string    `json:"meter_id" db:"meter_id"`
	UserID    string    `json:"-" db:"user_id"`
	Value     float64   `json:"value" db:"value"`
}

type ReadingCreate struct {
	MeterID string
	UserID  string
	Value   float64
}

type ReadingUpdate struct {
	Value *float64
}
