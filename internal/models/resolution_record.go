package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ResolutionRecord is the audit read-model for a resolved prediction slot.
// The ledger stays authoritative for points; this row exists so history
// survives the on-chain slot being cleared for reuse.
type ResolutionRecord struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	Wallet         string `gorm:"type:varchar(64);not null;uniqueIndex:uniq_resolution_slot,priority:1;index"`
	Category       string `gorm:"type:varchar(10);not null;uniqueIndex:uniq_resolution_slot,priority:2"`
	SlotRank       int    `gorm:"not null;uniqueIndex:uniq_resolution_slot,priority:3"`
	EntryTimestamp int64  `gorm:"not null;uniqueIndex:uniq_resolution_slot,priority:4"`

	Asset    string `gorm:"type:varchar(64);not null;index"`
	Duration int64  `gorm:"not null"`

	EntryPrice      decimal.Decimal `gorm:"type:numeric(30,9);not null"`
	ResolutionPrice decimal.Decimal `gorm:"type:numeric(30,9);not null"`

	PredictedPct float64 `gorm:"not null"`
	ActualPct    float64 `gorm:"not null"`

	Points uint64 `gorm:"not null"`
	Label  string `gorm:"type:varchar(20);not null"`

	TxSignature string    `gorm:"type:varchar(128);not null"`
	ResolvedBy  string    `gorm:"type:varchar(64);not null"`
	ResolvedAt  time.Time `gorm:"type:timestamptz;not null;index"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (ResolutionRecord) TableName() string {
	return "resolution_records"
}
