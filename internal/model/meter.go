package model

import "time"

type Meter struct {
	ID          string    `json:"id" db:"id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UserID      string    `json:"user_id" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
}

type MeterCreate struct {
	UserID      string
	Name        string
	Description *string
}

// MeterUpdate has no owner field: a meter never changes hands.
type MeterUpdate struct {
	Name        *string
	Description *string
}

type MeterWithReadings struct {
	Meter    *Meter    `json:"meter"`
	Readings []Reading `json:"readings"`
}
