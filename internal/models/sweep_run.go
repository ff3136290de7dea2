package models

import (
	"time"

	"gorm.io/datatypes"
)

// SweepRun records one pass of the background batch-resolution sweep.
type SweepRun struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	WalletsScanned int `gorm:"not null"`
	WalletsLocked  int `gorm:"not null"`
	SlotsResolved  int `gorm:"not null"`
	Failures       int `gorm:"not null"`

	PointsAwarded uint64 `gorm:"not null"`

	// Breakdown holds per-wallet outcomes as JSON for later inspection.
	Breakdown datatypes.JSON `gorm:"type:jsonb"`

	StartedAt  time.Time `gorm:"type:timestamptz;not null"`
	FinishedAt time.Time `gorm:"type:timestamptz;not null;index"`
	CreatedAt  time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (SweepRun) TableName() string {
	return "sweep_runs"
}
